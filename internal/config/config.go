// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package config loads the prostgen settings that may come from the
// environment. Command line flags default to these values.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/mstoykov/envconfig"
	"github.com/sirupsen/logrus"

	"gopkg.microglot.org/prostgen.go/internal/gen"
)

type Config struct {
	Roots          []string `envconfig:"PROSTGEN_ROOTS"`
	Output         string   `envconfig:"PROSTGEN_OUTPUT"`
	Plugin         string   `envconfig:"PROSTGEN_PLUGIN"`
	PluginParam    string   `envconfig:"PROSTGEN_PLUGIN_PARAM"`
	ExternFormat   string   `envconfig:"PROSTGEN_EXTERN_FORMAT"`
	MaxConcurrency int      `envconfig:"PROSTGEN_MAX_CONCURRENCY"`
	LogLevel       string   `envconfig:"PROSTGEN_LOG_LEVEL"`
	LogFormat      string   `envconfig:"PROSTGEN_LOG_FORMAT"`
}

func Default() Config {
	return Config{
		Roots:        []string{"."},
		Output:       ".",
		ExternFormat: string(gen.FormatText),
		LogLevel:     logrus.InfoLevel.String(),
		LogFormat:    "text",
	}
}

// Load overlays the environment on top of Default. A nil lookup reads the
// process environment.
func Load(lookup func(string) (string, bool)) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	c := Default()
	if err := envconfig.Process("", &c, lookup); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error
	if _, err := gen.ParseFormat(c.ExternFormat); err != nil {
		errs = append(errs, err)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if c.MaxConcurrency < 0 {
		errs = append(errs, fmt.Errorf("max concurrency must not be negative, got %d", c.MaxConcurrency))
	}
	if len(c.Roots) == 0 {
		errs = append(errs, errors.New("at least one root is required"))
	}
	return errors.Join(errs...)
}

// Logger builds the logger the settings describe. Validate first.
func (c Config) Logger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		l.SetLevel(level)
	}
	if c.LogFormat == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return l
}
