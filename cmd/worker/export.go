package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"

	"github.com/projectkeeper/project-keeper/config"
	"github.com/projectkeeper/project-keeper/internal/bootstrap"
	"github.com/projectkeeper/project-keeper/internal/projects/repository"
)

// RunExport writes every project from the configured Record Store as a
// JSON array to the given file, or stdout.
func RunExport(args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	stores, err := bootstrap.OpenStores(ctx, cfg)
	if err != nil {
		log.Fatalf("stores: %v", err)
	}
	defer stores.Close()

	var out io.Writer = os.Stdout
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Create(args[0])
		if err != nil {
			log.Fatalf("create %s: %v", args[0], err)
		}
		defer f.Close()
		out = f
	}

	n, err := exportProjects(ctx, stores.Records, out)
	if err != nil {
		log.Fatalf("export: %v", err)
	}
	log.Printf("exported %d projects", n)
}

func exportProjects(ctx context.Context, store repository.Store, w io.Writer) (int, error) {
	items, err := store.List(ctx)
	if err != nil {
		return 0, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return 0, err
	}
	return len(items), nil
}
