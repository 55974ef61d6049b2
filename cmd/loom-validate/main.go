// Package main implements the loom-validate binary. It checks an employee
// CSV file against the HR schema and prints the full violation report.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/loomhr/loom/internal/dataset"
)

func main() {
	var input string
	flag.StringVar(&input, "input", "", "Path to the employee CSV file")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "loom-validate - Validate an employee CSV against the HR schema\n\n")
		fmt.Fprintf(os.Stderr, "Usage: loom-validate --input employees.csv\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if input == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(input)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	defer f.Close()

	table, err := dataset.ReadCSV(f, dataset.DateColumns)
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}

	validator, err := dataset.NewSchemaValidator(dataset.HRSchema())
	if err != nil {
		log.Fatalf("Failed to build validator: %v", err)
	}

	if err := validator.Validate(table); err != nil {
		if verr, ok := dataset.AsValidationError(err); ok {
			fmt.Fprintf(os.Stderr, "%s: %d violation(s)\n", input, len(verr.Violations))
			for _, v := range verr.Violations {
				fmt.Fprintf(os.Stderr, "  [%s] %s: %s\n", v.Rule, v.Column, v.Message)
			}
		} else {
			fmt.Fprintf(os.Stderr, "%s: %v\n", input, err)
		}
		os.Exit(1)
	}

	fmt.Printf("%s: OK (%d rows, %d columns)\n", input, table.NumRows(), table.NumCols())
}
