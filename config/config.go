// Package config loads the YAML configuration of semalign.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/revelaction/semalign/align"
	"github.com/revelaction/semalign/pipeline"
	"github.com/revelaction/semalign/sense"
)

type Nonsense struct {
	Pairs  []sense.Pair `yaml:"pairs"`
	Lemmas []string     `yaml:"lemmas"`
}

type Lookup struct {
	Timeout time.Duration `yaml:"timeout"`
	Retries int           `yaml:"retries"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config holds the run settings. Command line flags take precedence.
type Config struct {
	Workers        int  `yaml:"workers"`
	WithNonsense   bool `yaml:"with_nonsense"`
	KeepUnresolved bool `yaml:"keep_unresolved"`
	FailFast       bool `yaml:"fail_fast"`

	// Duplicates are the punctuation marks skipped when doubled.
	Duplicates []string `yaml:"duplicates"`

	Nonsense    Nonsense          `yaml:"nonsense"`
	Corrections map[string]string `yaml:"corrections"`
	Lookup      Lookup            `yaml:"lookup"`
	Log         Log               `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Workers:     runtime.NumCPU(),
		Duplicates:  []string{","},
		Nonsense:    Nonsense{Pairs: sense.DefaultPairs(), Lemmas: []string{"be"}},
		Corrections: sense.DefaultCorrections(),
		Lookup:      Lookup{Timeout: 5 * time.Second, Retries: 3},
		Log:         Log{Level: "info", Format: "text"},
	}
}

// Parse decodes YAML over the defaults. Fields missing from data keep their
// default value. A corrections map given in data replaces the built-in one.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	builtin := cfg.Corrections
	cfg.Corrections = nil

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("yaml decoding error: %w", err)
	}

	if cfg.Corrections == nil {
		cfg.Corrections = builtin
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the configuration file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative: %d", c.Workers))
	}
	if c.Lookup.Retries < 1 {
		errs = append(errs, fmt.Errorf("lookup retries must be at least 1: %d", c.Lookup.Retries))
	}
	if c.Lookup.Timeout < 0 {
		errs = append(errs, fmt.Errorf("lookup timeout must not be negative: %s", c.Lookup.Timeout))
	}
	for _, d := range c.Duplicates {
		if d == "" {
			errs = append(errs, errors.New("empty duplicate punctuation"))
		}
	}
	for _, p := range c.Nonsense.Pairs {
		if p.Key == "" {
			errs = append(errs, errors.New("nonsense pair without key"))
		}
	}
	for from, to := range c.Corrections {
		if _, err := sense.ParseKey(to); err != nil {
			errs = append(errs, fmt.Errorf("correction of %s: %w", from, err))
		}
	}
	return errors.Join(errs...)
}

// Filter returns the nonsense filter of the configuration.
func (c Config) Filter() *sense.Filter {
	return sense.NewFilter(c.Nonsense.Pairs, c.Nonsense.Lemmas)
}

// NewProcessor returns a sentence processor resolving senses through inv,
// bounded by the lookup timeout and retries.
func (c Config) NewProcessor(inv sense.Inventory) *pipeline.Processor {
	r := sense.NewResolver(sense.WithRetry(inv, c.Lookup.Retries, c.Lookup.Timeout))
	r.Corrections = sense.Corrections(c.Corrections)
	r.Filter = c.Filter()
	r.WithNonsense = c.WithNonsense

	return &pipeline.Processor{
		Aligner:        &align.Aligner{Duplicates: c.Duplicates},
		Resolver:       r,
		KeepUnresolved: c.KeepUnresolved,
	}
}
