// Copyright 2026 The trigsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

// Package config loads the trigger emulation setup from YAML files.
//
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/snemo/trigsim"
	"github.com/snemo/trigsim/lut"
)

// TablePaths holds the files of the five trigger memories. An empty path
// selects the default program of that memory.
//
type TablePaths struct {
	Mem1 string `yaml:"mem1"`
	Mem2 string `yaml:"mem2"`
	Mem3 string `yaml:"mem3"`
	Mem4 string `yaml:"mem4"`
	Mem5 string `yaml:"mem5"`
}

func (p *TablePaths) get(id lut.MemoryID) string {
	return [...]string{p.Mem1, p.Mem2, p.Mem3, p.Mem4, p.Mem5}[id]
}

// Config is the emulation setup.
//
type Config struct {
	Module           int          `yaml:"module"`
	Workers          int          `yaml:"workers"`
	NearSourceLayers int          `yaml:"near_source_layers"`
	LogLevel         string       `yaml:"log_level"`
	TableFiles       TablePaths   `yaml:"tables"`
	Programs         lut.Programs `yaml:"programs"`

	dir string // relative table paths are resolved from dir
}

// Default returns the reference setup.
//
func Default() *Config {
	return &Config{
		Module:           0,
		Workers:          0,
		NearSourceLayers: trigsim.Reference().NearSourceLayers,
		LogLevel:         "info",
		Programs:         lut.DefaultPrograms(),
	}
}

// Decode reads a YAML configuration from r. Missing keys keep their default
// value and unknown keys are an error.
//
func Decode(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads the named configuration file.
//
func Load(name string) (*Config, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	c, err := Decode(bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	c.dir = filepath.Dir(name)
	return c, nil
}

// Validate checks c.
//
func (c *Config) Validate() error {
	if c.Module < 0 {
		return errors.Errorf("config: invalid module number %d", c.Module)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "config")
	}
	g := c.Geometry()
	if err := g.Validate(); err != nil {
		return errors.Wrap(err, "config")
	}
	return errors.Wrap(c.Programs.Validate(), "config")
}

// Geometry returns the reference geometry adjusted to c.
//
func (c *Config) Geometry() trigsim.Geometry {
	g := trigsim.Reference()
	g.NearSourceLayers = c.NearSourceLayers
	return g
}

// Encode writes c to w as YAML.
//
func (c *Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "encode config")
	}
	return enc.Close()
}

// Tables loads or programs the five trigger memories.
//
func (c *Config) Tables() (lut.Set, error) {
	var s lut.Set
	for id := lut.Mem1; id < lut.NumMemories; id++ {
		var (
			t   *lut.Table
			err error
		)
		if p := c.TableFiles.get(id); p != "" {
			if !filepath.IsAbs(p) && c.dir != "" {
				p = filepath.Join(c.dir, p)
			}
			t, err = lut.LoadFile(p)
		} else {
			t, err = c.Programs.Build(id)
		}
		if err != nil {
			return s, errors.Wrap(err, id.String())
		}
		s[id] = t
	}
	return s, errors.Wrap(s.Check(), "config")
}

// Logger returns a logger writing to w at the configured level.
//
func (c *Config) Logger(w io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	l.SetLevel(lvl)
	return l, nil
}
