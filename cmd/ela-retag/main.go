// Command ela-retag runs the production pass: documents are rewritten
// against the reviewed variant registry, occurrences replaced by canonical
// forms and place names annotated with coordinates.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/EurasianLatinArchive/ELA/pkg/ela"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/config"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/entity"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/gazetteer"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/gazetteer/sqlite"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/variants"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML configuration (optional)")
		src        = flag.String("src", "", "Source corpus to rewrite (overrides config corpus root)")
		dst        = flag.String("dst", "", "Production output root (overrides config)")
		typeList   = flag.String("types", "", "Comma-separated entity types to rewrite (default all: persName,placeName,geogName)")
		review     = flag.String("review", "", "Reviewed CSV to import before rewriting (optional)")
		merge      = flag.Bool("merge", false, "Merge the reviewed CSV over the snapshot instead of replacing it")
		verbose    = flag.Bool("verbose", false, "Per-document debug logging")
	)
	flag.Parse()

	logger := newLogger(*verbose)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	// The production pass always rewrites the original corpus; the
	// intermediate tree exists only for review.
	if *src != "" {
		cfg.Paths.CorpusRoot = *src
	}
	if *dst != "" {
		cfg.Paths.ProductionDir = *dst
	}

	types, err := parseTypes(*typeList)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	store := variants.NewStore()
	if _, err := os.Stat(cfg.Paths.Snapshot); err == nil {
		if err := store.LoadSnapshot(cfg.Paths.Snapshot); err != nil {
			log.Fatalf("load snapshot: %v", err)
		}
	}
	if *review != "" {
		f, err := os.Open(*review)
		if err != nil {
			log.Fatalf("open review csv: %v", err)
		}
		err = store.ImportCSV(f, *merge)
		f.Close()
		if err != nil {
			log.Fatalf("import review csv: %v", err)
		}
		logger.Info().Int("variants", store.Len()).Str("csv", *review).Bool("merge", *merge).Msg("review imported")
		if err := store.SaveSnapshot(cfg.Paths.Snapshot); err != nil {
			log.Fatalf("save snapshot: %v", err)
		}
	}
	if store.Len() == 0 {
		log.Fatal("empty variant registry: run ela-discover or import a review CSV first")
	}

	var gaz gazetteer.Index
	if _, err := os.Stat(cfg.Paths.GazetteerDB); err == nil {
		if gaz, err = sqlite.Open(ctx, cfg.Paths.GazetteerDB); err != nil {
			log.Fatalf("open gazetteer: %v", err)
		}
		defer gaz.Close()
	}

	p := ela.New(ela.Options{Store: store, Gazetteer: gaz, Types: types, Logger: logger})
	sum, err := p.Retag(ctx, cfg.Paths.CorpusRoot, cfg.Paths.ProductionDir)
	if err != nil {
		log.Fatalf("retag: %v", err)
	}

	logger.Info().
		Int("processed", sum.Processed).
		Int("skipped", sum.Skipped).
		Dur("elapsed", sum.Elapsed).
		Msg("production pass complete")
}

func parseTypes(list string) ([]entity.Type, error) {
	if list == "" {
		return nil, nil
	}
	var types []entity.Type
	for _, name := range strings.Split(list, ",") {
		t, ok := entity.ParseType(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown entity type %q (valid: persName, placeName, geogName)", name)
		}
		types = append(types, t)
	}
	return types, nil
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
