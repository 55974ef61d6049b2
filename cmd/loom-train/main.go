// Package main implements the loom-train binary. It trains an attrition
// model from an employee CSV file and records it in the model registry, so
// the server starts with a model already in place.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/loomhr/loom/internal/agents"
	"github.com/loomhr/loom/internal/config"
	"github.com/loomhr/loom/internal/dataset"
	"github.com/loomhr/loom/internal/model"
	"github.com/loomhr/loom/internal/registry"
	"github.com/loomhr/loom/internal/storage"
)

func main() {
	var (
		input   string
		dataDir string
		trees   int
		depth   int
		seed    int64
	)

	defaults := model.DefaultForestConfig()
	flag.StringVar(&input, "input", "", "Path to the training CSV file")
	flag.StringVar(&dataDir, "data-dir", "./data/loom", "Base directory for data files")
	flag.IntVar(&trees, "trees", defaults.NumTrees, "Number of trees in the forest")
	flag.IntVar(&depth, "depth", defaults.MaxDepth, "Maximum tree depth")
	flag.Int64Var(&seed, "seed", defaults.Seed, "Training seed")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "loom-train - Train an attrition model from an employee CSV\n\n")
		fmt.Fprintf(os.Stderr, "Usage: loom-train --input employees.csv [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if input == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.DefaultConfig()
	cfg.DataDir = dataDir
	cfg.Training.NumTrees = trees
	cfg.Training.MaxDepth = depth
	cfg.Training.Seed = seed
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("Failed to create directories: %v", err)
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

	store, err := storage.NewLocalStorage(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	reg, err := registry.NewSQLiteRegistry(cfg.RegistryPath())
	if err != nil {
		log.Fatalf("Failed to open model registry: %v", err)
	}
	defer reg.Close()

	agent, err := agents.NewAttrition(model.NewArtifactStore(store), reg,
		agents.WithForestConfig(cfg.ForestConfig()))
	if err != nil {
		log.Fatalf("Failed to create attrition agent: %v", err)
	}

	rec, err := agent.Train(context.Background(), table)
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}

	fmt.Printf("Trained model %s\n", rec.ModelID)
	fmt.Printf("  rows:           %d\n", rec.RowCount)
	fmt.Printf("  features:       %d\n", rec.FeatureCount)
	fmt.Printf("  artifact path:  %s\n", rec.ArtifactPath)
	fmt.Printf("  train accuracy: %.3f\n", rec.Metrics["train_accuracy"])
}
