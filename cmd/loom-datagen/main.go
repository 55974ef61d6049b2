// Package main implements the loom-datagen binary. It writes a synthetic
// employee dataset as CSV, suitable for demos and for seeding loom-train.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/loomhr/loom/internal/dataset"
	"github.com/loomhr/loom/internal/synth"
)

func main() {
	var (
		rows   int
		seed   int64
		output string
	)

	flag.IntVar(&rows, "rows", 200, "Number of employee rows to generate")
	flag.Int64Var(&seed, "seed", 42, "Random seed")
	flag.StringVar(&output, "output", "", "Output CSV file (default: stdout)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "loom-datagen - Generate a synthetic employee CSV\n\n")
		fmt.Fprintf(os.Stderr, "Usage: loom-datagen [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if rows < 1 {
		log.Fatalf("rows must be positive, got %d", rows)
	}

	table := synth.New(seed).Generate(rows)

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			log.Fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	if err := dataset.WriteCSV(out, table); err != nil {
		log.Fatalf("Failed to write CSV: %v", err)
	}

	if output != "" {
		fmt.Fprintf(os.Stderr, "Wrote %d rows to %s\n", rows, output)
	}
}
