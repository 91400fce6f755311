// Package config loads the command line tool's settings from a YAML file.
package config

import (
	"bytes"
	"io"
	"os"
	"runtime"

	"github.com/Ahmed-Sermani/go-pagerank/pagerank"
	"github.com/Ahmed-Sermani/go-pagerank/service/ranker"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by every estimator run.
type Config struct {
	DampingFactor        float64  `yaml:"damping_factor"`
	Samples              int      `yaml:"samples"`
	ConvergenceThreshold float64  `yaml:"convergence_threshold"`
	MaxIterations        int      `yaml:"max_iterations"`
	Seed                 int64    `yaml:"seed"`
	Workers              int      `yaml:"workers"`
	Methods              []string `yaml:"methods"`
	LogLevel             string   `yaml:"log_level"`
}

// Default returns the settings used when no file is provided.
func Default() *Config {
	return &Config{
		DampingFactor:        pagerank.DefaultDampingFactor,
		Samples:              pagerank.DefaultSamples,
		ConvergenceThreshold: pagerank.ConvergenceThreshold,
		Workers:              runtime.NumCPU(),
		Methods:              []string{string(ranker.MethodSampling), string(ranker.MethodIteration)},
		LogLevel:             logrus.InfoLevel.String(),
	}
}

// Load reads the YAML file at path on top of Default and validates the
// result. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err = dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, xerrors.Errorf("parse config %s: %w", path, err)
	}

	if err = cfg.Validate(); err != nil {
		return nil, xerrors.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var err error
	if !(c.DampingFactor > 0 && c.DampingFactor < 1) {
		err = multierror.Append(err, xerrors.Errorf("damping_factor must be in the range (0, 1); got %v", c.DampingFactor))
	}
	if c.Samples < 1 {
		err = multierror.Append(err, xerrors.Errorf("samples must be at least 1; got %d", c.Samples))
	}
	if !(c.ConvergenceThreshold > 0) {
		err = multierror.Append(err, xerrors.Errorf("convergence_threshold must be positive; got %v", c.ConvergenceThreshold))
	}
	if c.MaxIterations < 0 {
		err = multierror.Append(err, xerrors.Errorf("max_iterations must not be negative; got %d", c.MaxIterations))
	}
	if c.Workers < 1 {
		err = multierror.Append(err, xerrors.Errorf("workers must be at least 1; got %d", c.Workers))
	}
	if len(c.Methods) == 0 {
		err = multierror.Append(err, xerrors.New("at least one method must be specified"))
	}
	if _, mErr := c.ParsedMethods(); mErr != nil {
		err = multierror.Append(err, mErr)
	}
	if _, lErr := logrus.ParseLevel(c.LogLevel); lErr != nil {
		err = multierror.Append(err, xerrors.Errorf("log_level: %w", lErr))
	}
	return err
}

// ParsedMethods returns the configured methods without duplicates, in the
// order they were listed.
func (c *Config) ParsedMethods() ([]ranker.Method, error) {
	var (
		out  []ranker.Method
		seen = make(map[ranker.Method]bool)
	)
	for _, name := range c.Methods {
		m, err := ranker.ParseMethod(name)
		if err != nil {
			return nil, err
		}
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out, nil
}
