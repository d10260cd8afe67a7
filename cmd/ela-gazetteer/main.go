// Command ela-gazetteer builds and queries the local gazetteer database from
// the Pleiades and GeoNames dumps. Loading replaces all prior entries of a
// source, so re-running after a dataset refresh is safe.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/EurasianLatinArchive/ELA/pkg/ela/config"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/gazetteer"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/gazetteer/sqlite"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML configuration (optional)")
		dbPath     = flag.String("db", "", "Gazetteer database path (overrides config)")
		pleiades   = flag.String("pleiades", "", "Pleiades places CSV path (overrides config, implies -load-pleiades)")
		geonames   = flag.String("geonames", "", "GeoNames allCountries dump path (overrides config, implies -load-geonames)")
		loadPle    = flag.Bool("load-pleiades", false, "Load the configured Pleiades places CSV")
		loadGeo    = flag.Bool("load-geonames", false, "Load the configured GeoNames dump")
		lookup     = flag.String("lookup", "", "Print every candidate entry for a place name")
		counts     = flag.Bool("counts", false, "Print per-source entry counts")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	if *dbPath != "" {
		cfg.Paths.GazetteerDB = *dbPath
	}
	if *pleiades != "" {
		cfg.Paths.PleiadesCSV = *pleiades
		*loadPle = true
	}
	if *geonames != "" {
		cfg.Paths.GeonamesDump = *geonames
		*loadGeo = true
	}

	if !*loadPle && !*loadGeo && *lookup == "" && !*counts {
		log.Fatal("one of -load-pleiades, -load-geonames, -lookup or -counts is required")
	}

	ctx := context.Background()
	idx, err := sqlite.Open(ctx, cfg.Paths.GazetteerDB)
	if err != nil {
		log.Fatalf("open gazetteer db: %v", err)
	}
	defer idx.Close()

	if *loadPle {
		loadPleiades(ctx, idx, cfg.Paths.PleiadesCSV)
	}
	if *loadGeo {
		loadGeonames(ctx, idx, cfg.Paths.GeonamesDump)
	}

	if *lookup != "" {
		entries, err := idx.Lookup(ctx, *lookup)
		if err != nil {
			log.Fatalf("lookup: %v", err)
		}
		for _, e := range entries {
			fmt.Printf("%s\t%d\t%s\t%f\t%f\n", e.Source, e.PlaceID, e.Name, e.Lat, e.Lon)
		}
	}

	if *counts {
		for _, source := range []string{gazetteer.SourcePleiades, gazetteer.SourceGeonames} {
			n, err := idx.Count(ctx, source)
			if err != nil {
				log.Fatalf("count %s: %v", source, err)
			}
			fmt.Printf("%s: %d\n", source, n)
		}
	}
}

func loadPleiades(ctx context.Context, idx gazetteer.Index, path string) {
	f, bar := openWithProgress(path, "pleiades")
	defer f.Close()

	br := progressbar.NewReader(f, bar)
	pr, err := gazetteer.NewPleiadesReader(&br)
	if err != nil {
		log.Fatalf("pleiades: %v", err)
	}
	n, err := idx.Load(ctx, gazetteer.SourcePleiades, pr)
	if err != nil {
		log.Fatalf("load pleiades: %v", err)
	}
	fmt.Printf("pleiades: %d entries indexed, %d rows skipped\n", n, pr.Skipped())
}

func loadGeonames(ctx context.Context, idx gazetteer.Index, path string) {
	f, bar := openWithProgress(path, "geonames")
	defer f.Close()

	br := progressbar.NewReader(f, bar)
	gr := gazetteer.NewGeonamesReader(&br)
	n, err := idx.Load(ctx, gazetteer.SourceGeonames, gr)
	if err != nil {
		log.Fatalf("load geonames: %v", err)
	}
	fmt.Printf("geonames: %d entries indexed, %d lines skipped\n", n, gr.Skipped())
}

func openWithProgress(path, label string) (*os.File, *progressbar.ProgressBar) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("open %s: %v", label, err)
	}
	info, err := f.Stat()
	if err != nil {
		log.Fatalf("stat %s: %v", label, err)
	}
	return f, progressbar.DefaultBytes(info.Size(), "loading "+label)
}
