package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/EurasianLatinArchive/ELA/pkg/ela/internalerr"
)

// Paths groups every filesystem location the pipeline touches.
type Paths struct {
	CorpusRoot      string `yaml:"corpus_root"`
	IntermediateDir string `yaml:"intermediate_dir"`
	ProductionDir   string `yaml:"production_dir"`
	ReviewCSV       string `yaml:"review_csv"`
	Snapshot        string `yaml:"snapshot"`
	GazetteerDB     string `yaml:"gazetteer_db"`
	PleiadesCSV     string `yaml:"pleiades_csv"`
	GeonamesDump    string `yaml:"geonames_dump"`
}

// Config is the pipeline configuration.
type Config struct {
	Paths Paths `yaml:"paths"`
}

// Default returns the configuration used when no file is given: everything
// relative to the working directory, laid out the way the archive checkouts
// are.
func Default() Config {
	return Config{
		Paths: Paths{
			CorpusRoot:      "ELA_TEI",
			IntermediateDir: "ELA_TEI_tagged",
			ProductionDir:   "ELA_TEI_production",
			ReviewCSV:       "variants_review.csv",
			Snapshot:        "variants.json",
			GazetteerDB:     "ela.db",
			PleiadesCSV:     "pleiades-places.csv",
			GeonamesDump:    "allCountries.txt",
		},
	}
}

// Load reads a YAML configuration file. Fields absent from the file keep
// their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	if cfg.Paths.CorpusRoot == "" {
		return cfg, fmt.Errorf("%w: corpus_root must not be empty", internalerr.ErrInvalidConfig)
	}
	return cfg, nil
}
