// Package main generates reproducible sample data files for the four
// supply-chain categories.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ayusingh-54/supply-chain-analytics/internal/samples"
)

func main() {
	var (
		outDir    string
		seed      int64
		salesRows int
		poRows    int
	)

	flag.StringVar(&outDir, "out", "./sample_data", "Output directory for sample CSV files")
	flag.Int64Var(&seed, "seed", 42, "Random seed; the same seed always produces the same files")
	flag.IntVar(&salesRows, "sales-rows", 500, "Number of sales rows")
	flag.IntVar(&poRows, "po-rows", 200, "Number of purchase-order rows")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "supplychain-sample - sample data generator\n\n")
		fmt.Fprintf(os.Stderr, "Usage: supplychain-sample [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	paths, err := samples.NewGenerator(seed).WriteAll(outDir, salesRows, poRows)
	if err != nil {
		log.Fatalf("Failed to generate sample data: %v", err)
	}

	for category, path := range paths {
		fmt.Printf("%-16s %s\n", category, path)
	}
}
