// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package config holds the YAML configuration of the oracle command.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/go-air/oracle"
)

// EnvVar names the environment variable holding the configuration path
// when none is given on the command line.
const EnvVar = "ORACLE_CONFIG"

// Config is the configuration of the oracle command.
type Config struct {
	// Backend is sat, z3 or swine.
	Backend string        `yaml:"backend"`
	Timeout time.Duration `yaml:"timeout"`
	Jobs    int           `yaml:"jobs"`
	Z3      Z3            `yaml:"z3"`
	Swine   Swine         `yaml:"swine"`
	Log     Log           `yaml:"log"`
	// MetricsAddr, if set, is the listen address of the metrics
	// endpoint.
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
}

type Z3 struct {
	Path string   `yaml:"path"`
	Args []string `yaml:"args,omitempty"`
}

type Swine struct {
	Path string   `yaml:"path"`
	Drop []string `yaml:"drop,omitempty"`
}

type Log struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// Default returns the configuration used in the absence of a file.
func Default() Config {
	return Config{
		Backend: oracle.Sat.String(),
		Jobs:    1,
		Z3:      Z3{Path: "z3", Args: []string{"-in", "-smt2"}},
		Swine:   Swine{Path: "swine", Drop: []string{"declare-fun exp"}},
		Log:     Log{Level: "warn", Format: "text"}}
}

// Load reads the configuration at path, or at $ORACLE_CONFIG if path is
// empty.  Without either it returns Default.  Fields missing from the
// file keep their default.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	f, e := os.Open(path)
	if e != nil {
		return Config{}, fmt.Errorf("failed to open config: %w", e)
	}
	defer f.Close()
	c, e := Decode(f)
	if e != nil {
		return Config{}, fmt.Errorf("%s: %w", path, e)
	}
	return c, nil
}

// Decode reads a configuration over Default from r and validates it.
func Decode(r io.Reader) (Config, error) {
	c := Default()
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if e := d.Decode(&c); e != nil && !errors.Is(e, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", e)
	}
	if e := c.Validate(); e != nil {
		return Config{}, e
	}
	return c, nil
}

// Write renders c as YAML.
func (c Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if e := enc.Encode(c); e != nil {
		return e
	}
	return enc.Close()
}

// Validate checks the values of c.
func (c Config) Validate() error {
	if _, e := oracle.ParseKind(c.Backend); e != nil {
		return e
	}
	if c.Timeout < 0 {
		return fmt.Errorf("negative timeout %s", c.Timeout)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be positive, got %d", c.Jobs)
	}
	if _, e := c.level(); e != nil {
		return e
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.Log.Format)
	}
	return nil
}

// Kind returns the configured backend.
func (c Config) Kind() (oracle.Kind, error) {
	return oracle.ParseKind(c.Backend)
}

// Options returns the oracle options configured by c, logging to l.
func (c Config) Options(l *slog.Logger) []oracle.Option {
	opts := []oracle.Option{
		oracle.WithTimeout(c.Timeout),
		oracle.WithZ3(c.Z3.Path, c.Z3.Args...),
		oracle.WithSwine(c.Swine.Path, c.Swine.Drop...),
	}
	if l != nil {
		opts = append(opts, oracle.WithLogger(l))
	}
	return opts
}

func (c Config) level() (slog.Level, error) {
	var l slog.Level
	if e := l.UnmarshalText([]byte(c.Log.Level)); e != nil {
		return l, fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return l, nil
}

// Logger returns a logger writing to w at the configured level and
// format.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	l, e := c.level()
	if e != nil {
		return nil, e
	}
	ho := &slog.HandlerOptions{Level: l}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, ho)), nil
	}
	return slog.New(slog.NewTextHandler(w, ho)), nil
}
