package schema

import (
	"github.com/ayusingh-54/supply-chain-analytics/pkg/types"
)

// Report is the outcome of validating a table's columns against a
// category definition. It is a value, not an error: callers decide
// whether an invalid report rejects the upload.
type Report struct {
	Category types.Category `json:"category"`

	// SchemaValid is true when every required column is present
	SchemaValid bool `json:"schema_valid"`

	// MissingColumns lists required columns absent from the table
	MissingColumns []string `json:"missing_columns"`

	// RequiredPresent lists required columns found in the table
	RequiredPresent []string `json:"required_present"`

	// ExtraColumns lists table columns that are neither required nor
	// optional for the category. They are reported, never rejected.
	ExtraColumns []string `json:"extra_columns"`
}

// Validate checks the table's normalized column names against the
// category definition. Column order and row contents do not matter
// here; cell-level checks belong to the quality checker.
func Validate(table *types.Table, category types.Category) (Report, error) {
	def, err := Get(category)
	if err != nil {
		return Report{}, err
	}

	have := make(map[string]bool, len(table.Columns))
	for _, c := range table.Columns {
		have[c] = true
	}

	rep := Report{
		Category:        category,
		MissingColumns:  []string{},
		RequiredPresent: []string{},
		ExtraColumns:    []string{},
	}

	for _, name := range def.Required() {
		if have[name] {
			rep.RequiredPresent = append(rep.RequiredPresent, name)
		} else {
			rep.MissingColumns = append(rep.MissingColumns, name)
		}
	}

	for _, c := range table.Columns {
		if _, known := def.Column(c); !known {
			rep.ExtraColumns = append(rep.ExtraColumns, c)
		}
	}

	rep.SchemaValid = len(rep.MissingColumns) == 0
	return rep, nil
}
