// Command ela-discover runs the discovery pass: it collects existing entity
// tags from the source corpus into the variant registry, tags untagged
// occurrences in a mirrored intermediate tree, and exports the registry as a
// review CSV for the editors.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/rs/zerolog"

	"github.com/EurasianLatinArchive/ELA/pkg/ela"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/config"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/extract/simple"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/gazetteer"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/gazetteer/sqlite"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/variants"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML configuration (optional)")
		src        = flag.String("src", "", "Source corpus root (overrides config)")
		dst        = flag.String("dst", "", "Intermediate output root (overrides config)")
		minWords   = flag.Int("min-words", 2, "Minimum capitalized words for a recognizer candidate")
		noRec      = flag.Bool("no-recognizer", false, "Collect and tag known variants only")
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
	if *src != "" {
		cfg.Paths.CorpusRoot = *src
	}
	if *dst != "" {
		cfg.Paths.IntermediateDir = *dst
	}

	ctx := context.Background()

	store := variants.NewStore()
	if _, err := os.Stat(cfg.Paths.Snapshot); err == nil {
		if err := store.LoadSnapshot(cfg.Paths.Snapshot); err != nil {
			log.Fatalf("load snapshot: %v", err)
		}
		logger.Info().Int("variants", store.Len()).Str("snapshot", cfg.Paths.Snapshot).Msg("registry loaded")
	}

	var gaz gazetteer.Index
	if _, err := os.Stat(cfg.Paths.GazetteerDB); err == nil {
		if gaz, err = sqlite.Open(ctx, cfg.Paths.GazetteerDB); err != nil {
			log.Fatalf("open gazetteer: %v", err)
		}
		defer gaz.Close()
	}

	opts := ela.Options{Store: store, Gazetteer: gaz, Logger: logger}
	if !*noRec {
		rec := simple.New()
		rec.MinWords = *minWords
		opts.Recognizer = rec
	}

	sum, err := ela.New(opts).Discover(ctx, cfg.Paths.CorpusRoot, cfg.Paths.IntermediateDir)
	if err != nil {
		log.Fatalf("discover: %v", err)
	}

	if err := store.SaveSnapshot(cfg.Paths.Snapshot); err != nil {
		log.Fatalf("save snapshot: %v", err)
	}
	f, err := os.Create(cfg.Paths.ReviewCSV)
	if err != nil {
		log.Fatalf("create review csv: %v", err)
	}
	if err := store.ExportCSV(f); err != nil {
		f.Close()
		log.Fatalf("export review csv: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("close review csv: %v", err)
	}

	logger.Info().
		Int("processed", sum.Processed).
		Int("skipped", sum.Skipped).
		Int("variants", store.Len()).
		Str("review_csv", cfg.Paths.ReviewCSV).
		Msg("discovery complete")
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
