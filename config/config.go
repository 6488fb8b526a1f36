// Package config loads binding engine settings from TOML.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/geoknoesis/rdfbind/bind"
	"github.com/geoknoesis/rdfbind/rdf"
)

const defaultConfig = `
# rdfbind configuration.

[binding]
allow-relative-uris = false
infer-type-from-shape = false
lenient-literals = false
loose-roots = false
query-result-as-container = true
max-depth = 512

[namespaces]

[skolem]
prefix = "urn:skolem:"

[log]
# debug, info, warn, error
level = "info"
`

// ErrInvalid is returned for configuration values that fail validation.
var ErrInvalid = errors.New("config: invalid value")

// BindingConfig holds the engine flags of the [binding] table.
type BindingConfig struct {
	AllowRelativeURIs      bool `toml:"allow-relative-uris"`
	InferTypeFromShape     bool `toml:"infer-type-from-shape"`
	LenientLiterals        bool `toml:"lenient-literals"`
	LooseRoots             bool `toml:"loose-roots"`
	QueryResultAsContainer bool `toml:"query-result-as-container"`
	MaxDepth               int  `toml:"max-depth"`
}

// SkolemConfig sets the IRI prefix used when skolemizing blank nodes.
type SkolemConfig struct {
	Prefix string `toml:"prefix"`
}

// LogConfig holds the [log] table.
type LogConfig struct {
	Level string `toml:"level"`
}

// Config mirrors the TOML file layout.
type Config struct {
	Binding    BindingConfig     `toml:"binding"`
	Namespaces map[string]string `toml:"namespaces"`
	Skolem     SkolemConfig      `toml:"skolem"`
	Log        LogConfig         `toml:"log"`
}

// Default returns the built-in configuration, which matches the engine defaults.
func Default() *Config {
	c := &Config{}
	if _, err := toml.Decode(defaultConfig, c); err != nil {
		panic(fmt.Sprintf("config: decode defaults: %v", err))
	}
	return c
}

// Load reads path over the defaults. An empty path returns Default().
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := checkUndecoded(md); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes TOML text over the defaults.
func Parse(text string) (*Config, error) {
	c := Default()
	md, err := toml.Decode(text, c)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := checkUndecoded(md); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

func checkUndecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return fmt.Errorf("%w: unknown keys %s", ErrInvalid, strings.Join(names, ", "))
}

func (c *Config) validate() error {
	if c.Binding.MaxDepth <= 0 {
		return fmt.Errorf("%w: max-depth must be positive, got %d", ErrInvalid, c.Binding.MaxDepth)
	}
	for prefix, ns := range c.Namespaces {
		if prefix == "" || strings.ContainsAny(prefix, ": ") {
			return fmt.Errorf("%w: namespace prefix %q", ErrInvalid, prefix)
		}
		if !rdf.IsAbsoluteIRI(ns) {
			return fmt.Errorf("%w: namespace %s=%q is not an absolute IRI", ErrInvalid, prefix, ns)
		}
	}
	if !rdf.IsAbsoluteIRI(c.Skolem.Prefix) {
		return fmt.Errorf("%w: skolem prefix %q is not an absolute IRI", ErrInvalid, c.Skolem.Prefix)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() (log.Level, error) {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, c.Log.Level)
	}
	return level, nil
}

// Options converts the binding settings into engine options. logger may be nil.
func (c *Config) Options(logger *log.Logger) []bind.Option {
	b := c.Binding
	opts := []bind.Option{
		bind.OptQueryResultAsContainer(b.QueryResultAsContainer),
		bind.OptMaxDepth(b.MaxDepth),
	}
	if b.AllowRelativeURIs {
		opts = append(opts, bind.OptAllowRelativeURIs())
	}
	if b.InferTypeFromShape {
		opts = append(opts, bind.OptInferTypeFromShape())
	}
	if b.LenientLiterals {
		opts = append(opts, bind.OptLenientLiterals())
	}
	if b.LooseRoots {
		opts = append(opts, bind.OptLooseRoots())
	}
	if len(c.Namespaces) > 0 {
		opts = append(opts, bind.OptNamespaces(c.Namespaces))
	}
	if logger != nil {
		opts = append(opts, bind.OptLogger(logger))
	}
	return opts
}
