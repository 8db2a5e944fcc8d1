package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dacharyc/revdiff"
	"gopkg.in/yaml.v3"
)

// config holds settings from the config file. Flags override every field.
type config struct {
	OutputDir   string        `yaml:"output_dir"`
	Header1     string        `yaml:"header1"`
	Header2     string        `yaml:"header2"`
	MinParSim   float64       `yaml:"min_par_sim"`
	MinSentSim  float64       `yaml:"min_sent_sim"`
	SimSlack    float64       `yaml:"sim_slack"`
	Window      int           `yaml:"window"`
	Similarity  string        `yaml:"similarity"`
	StopWords   string        `yaml:"stop_words"`
	Algorithm   string        `yaml:"algorithm"`
	Tokenizer   string        `yaml:"tokenizer"`
	Delimiters  string        `yaml:"delimiters"`
	Punctuation bool          `yaml:"punctuation"`
	Workers     int           `yaml:"workers"`
	IncludeSame bool          `yaml:"include_same"`
	Format      string        `yaml:"format"`
	NoColor     bool          `yaml:"no_color"`
	Color       string        `yaml:"color"`
	StartDelete string        `yaml:"start_delete"`
	StopDelete  string        `yaml:"stop_delete"`
	StartInsert string        `yaml:"start_insert"`
	StopInsert  string        `yaml:"stop_insert"`
	NoDeleted   bool          `yaml:"no_deleted"`
	NoInserted  bool          `yaml:"no_inserted"`
	NoCommon    bool          `yaml:"no_common"`
	LessMode    bool          `yaml:"less_mode"`
	Printer     bool          `yaml:"printer"`
	LogLevel    string        `yaml:"log_level"`
	Timeout     time.Duration `yaml:"timeout"`
}

// defaultConfig returns the default configuration.
func defaultConfig() config {
	markers := revdiff.DefaultFormatOptions()
	return config{
		OutputDir:  ".",
		Header1:    "Draft 1",
		Header2:    "Draft 2",
		MinParSim:  revdiff.DefaultMinParagraphSim,
		MinSentSim: revdiff.DefaultMinSentenceSim,
		SimSlack:   revdiff.DefaultSimSlack,
		Window:     revdiff.DefaultWindow,
		Similarity: "tfidf",
		Algorithm:  string(revdiff.AlgorithmMyers),
		Tokenizer:  "words",
		Format:     "html",
		LogLevel:   "info",

		StartDelete: markers.StartDelete,
		StopDelete:  markers.StopDelete,
		StartInsert: markers.StartInsert,
		StopInsert:  markers.StopInsert,
	}
}

// findConfigFile returns the path of the config file to load. An explicit
// path must exist; otherwise the XDG location is used if present, and ""
// means no config file.
func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", nil // No home dir, use defaults
		}
		xdgConfig = filepath.Join(home, ".config")
	}
	path := filepath.Join(xdgConfig, "revdiff", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return "", nil
}

// loadConfig reads the YAML file at path on top of the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	if err := decodeConfig(f, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// decodeConfig decodes YAML from r into cfg. Unknown keys are rejected; an
// empty document leaves cfg unchanged.
func decodeConfig(r io.Reader, cfg *config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

// validate checks that cfg holds a coherent set of values. It returns a
// joined error listing every problem found.
func (c config) validate() error {
	var errs []error

	for _, th := range []struct {
		name  string
		value float64
	}{
		{"min_par_sim", c.MinParSim},
		{"min_sent_sim", c.MinSentSim},
		{"sim_slack", c.SimSlack},
	} {
		if th.value < 0 || th.value > 1 {
			errs = append(errs, fmt.Errorf("%s %v is out of range [0, 1]", th.name, th.value))
		}
	}

	if c.Window < 1 {
		errs = append(errs, fmt.Errorf("window %d must be at least 1", c.Window))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d must not be negative", c.Workers))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout %s must not be negative", c.Timeout))
	}
	if !revdiff.Algorithm(c.Algorithm).Valid() {
		errs = append(errs, fmt.Errorf("algorithm %q is invalid; valid values: myers, histogram", c.Algorithm))
	}

	enums := []struct {
		name   string
		value  string
		values []string
	}{
		{"similarity", c.Similarity, []string{"tfidf", "token", "jaro"}},
		{"tokenizer", c.Tokenizer, []string{"words", "fields"}},
		{"format", c.Format, []string{"html", "text"}},
		{"log_level", c.LogLevel, []string{"debug", "info", "warn", "error"}},
	}
	for _, e := range enums {
		if !slices.Contains(e.values, e.value) {
			errs = append(errs, fmt.Errorf("%s %q is invalid; valid values: %s", e.name, e.value, strings.Join(e.values, ", ")))
		}
	}

	if c.Color != "" && c.Color != "default" {
		if _, _, err := revdiff.ParseColorSpec(c.Color); err != nil {
			errs = append(errs, fmt.Errorf("color: %w", err))
		}
	}

	return errors.Join(errs...)
}

// readStopWords reads whitespace separated words from path.
func readStopWords(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stop words: %w", err)
	}
	return strings.Fields(string(data)), nil
}
