package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestPipelineError_Error(t *testing.T) {
	err := New(ErrCategoryStorage, CodeWriteFailed, "write failed")
	expected := "[STORAGE:WRITE_FAILED] write failed"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestPipelineError_ErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrCategoryStorage, CodeWriteFailed, "write failed", cause)
	expected := "[STORAGE:WRITE_FAILED] write failed: connection refused"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestPipelineError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(ErrCategoryStore, CodeStoreError, "insert failed", cause)
	if !errors.Is(err, cause) {
		t.Error("Unwrap should allow errors.Is to find the cause")
	}
}

func TestPipelineError_Is(t *testing.T) {
	err1 := New(ErrCategoryStorage, CodeWriteFailed, "first")
	err2 := New(ErrCategoryStorage, CodeWriteFailed, "second")
	err3 := New(ErrCategoryStorage, CodeReadFailed, "different code")

	if !errors.Is(err1, err2) {
		t.Error("errors with same category+code should match via Is")
	}
	if errors.Is(err1, err3) {
		t.Error("errors with different codes should not match via Is")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		category  ErrorCategory
		code      string
		retryable bool
	}{
		{ErrCategoryStorage, CodeWriteFailed, true},
		{ErrCategoryStorage, CodeReadFailed, true},
		{ErrCategoryStorage, CodeObjectNotFound, false},
		{ErrCategoryGraph, CodeGraphSyncFailed, true},
		{ErrCategoryIngest, CodeParseError, false},
		{ErrCategorySchema, CodeSchemaInvalid, false},
		{ErrCategoryStore, CodeStoreError, false},
		{ErrCategoryInternal, CodeUnexpected, false},
	}

	for _, tt := range tests {
		err := New(tt.category, tt.code, "test")
		if IsRetryable(err) != tt.retryable {
			t.Errorf("%s:%s retryable=%v, want %v", tt.category, tt.code, IsRetryable(err), tt.retryable)
		}
	}
}

func TestGetCategory(t *testing.T) {
	err := New(ErrCategoryIngest, CodeParseError, "bad csv")
	if GetCategory(err) != ErrCategoryIngest {
		t.Errorf("got %q, want %q", GetCategory(err), ErrCategoryIngest)
	}
	if GetCategory(fmt.Errorf("plain error")) != "" {
		t.Error("non-PipelineError should return empty category")
	}
}

func TestGetCode(t *testing.T) {
	err := New(ErrCategoryIngest, CodeParseError, "bad csv")
	if GetCode(err) != CodeParseError {
		t.Errorf("got %q, want %q", GetCode(err), CodeParseError)
	}
	if GetCode(fmt.Errorf("plain error")) != "" {
		t.Error("non-PipelineError should return empty code")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(ErrCategorySchema, CodeSchemaInvalid, "missing columns")
	detailed := err.WithDetails(map[string]interface{}{"missing": []string{"sku"}})

	if detailed.Details["missing"] == nil {
		t.Error("WithDetails should set details")
	}
	// Original should be unmodified
	if err.Details != nil {
		t.Error("WithDetails should not modify original")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	cause := fmt.Errorf("io error")

	in := NewIngestError(CodeParseError, "ragged row", cause)
	if in.Category != ErrCategoryIngest || !errors.Is(in, cause) {
		t.Error("NewIngestError mismatch")
	}

	sc := NewSchemaError("required columns missing")
	if sc.Category != ErrCategorySchema || sc.Code != CodeSchemaInvalid {
		t.Error("NewSchemaError mismatch")
	}

	st := NewStoreError(CodeStoreError, "tx failed", cause)
	if st.Category != ErrCategoryStore || !errors.Is(st, cause) {
		t.Error("NewStoreError mismatch")
	}

	so := NewStorageError(CodeWriteFailed, "disk full", cause)
	if so.Category != ErrCategoryStorage {
		t.Error("NewStorageError mismatch")
	}

	g := NewGraphError("mirror unreachable", cause)
	if g.Category != ErrCategoryGraph || !g.Retryable {
		t.Error("NewGraphError mismatch")
	}

	i := NewInternalError("unexpected", cause)
	if i.Category != ErrCategoryInternal || i.Code != CodeUnexpected {
		t.Error("NewInternalError mismatch")
	}
}
