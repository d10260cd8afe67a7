// Command ela-variants manages the variant registry outside the corpus
// passes: exporting the review CSV, importing a reviewed one, and printing
// registry statistics.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/EurasianLatinArchive/ELA/pkg/ela/config"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/entity"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/variants"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML configuration (optional)")
		snapshot   = flag.String("snapshot", "", "Registry snapshot path (overrides config)")
		export     = flag.String("export", "", "Write the registry as a review CSV to this path ('-' for stdout)")
		imp        = flag.String("import", "", "Import a reviewed CSV from this path")
		merge      = flag.Bool("merge", false, "Merge the imported CSV over the snapshot instead of replacing it")
		stats      = flag.Bool("stats", false, "Print registry statistics")
	)
	flag.Parse()

	if *export == "" && *imp == "" && !*stats {
		log.Fatal("one of --export, --import or --stats is required")
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	if *snapshot != "" {
		cfg.Paths.Snapshot = *snapshot
	}

	store := variants.NewStore()
	if _, err := os.Stat(cfg.Paths.Snapshot); err == nil {
		if err := store.LoadSnapshot(cfg.Paths.Snapshot); err != nil {
			log.Fatalf("load snapshot: %v", err)
		}
	} else if *imp == "" {
		log.Fatalf("no snapshot at %s", cfg.Paths.Snapshot)
	}

	if *imp != "" {
		f, err := os.Open(*imp)
		if err != nil {
			log.Fatalf("open csv: %v", err)
		}
		err = store.ImportCSV(f, *merge)
		f.Close()
		if err != nil {
			log.Fatalf("import csv: %v", err)
		}
		if err := store.SaveSnapshot(cfg.Paths.Snapshot); err != nil {
			log.Fatalf("save snapshot: %v", err)
		}
		fmt.Printf("imported %s into %s (%d variants)\n", *imp, cfg.Paths.Snapshot, store.Len())
	}

	if *export != "" {
		out := os.Stdout
		if *export != "-" {
			f, err := os.Create(*export)
			if err != nil {
				log.Fatalf("create csv: %v", err)
			}
			defer f.Close()
			out = f
		}
		if err := store.ExportCSV(out); err != nil {
			log.Fatalf("export csv: %v", err)
		}
	}

	if *stats {
		records := store.Records()
		perType := make(map[entity.Type]int)
		geocoded := 0
		for _, rec := range records {
			perType[rec.Type]++
			if rec.Geocode != nil {
				geocoded++
			}
		}
		fmt.Printf("records: %d, variants: %d\n", len(records), store.Len())
		for _, t := range entity.AllTypes() {
			fmt.Printf("  %s: %d\n", t, perType[t])
		}
		fmt.Printf("  geocoded: %d\n", geocoded)
	}
}
