// Package config loads the YAML file that selects the rule storage and
// declares the attributes rules may reference.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/jvitoroc/gorules/eval"
)

const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"

	DefaultPath = "rule_engine.db"
)

type AttributeType string

const (
	TypeInt    AttributeType = "int"
	TypeFloat  AttributeType = "float"
	TypeString AttributeType = "string"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrInvalidValue  = errors.New("invalid value")

	AllDrivers = []string{DriverSQLite, DriverFile}
)

type Config struct {
	Storage    Storage     `yaml:"storage"`
	Attributes []Attribute `yaml:"attributes"`
	Strict     bool        `yaml:"strict"`
}

type Storage struct {
	Driver string `yaml:"driver"`
	// Path is the database file for the sqlite driver and the data
	// directory for the file driver.
	Path string `yaml:"path"`
}

type Attribute struct {
	Name string        `yaml:"name"`
	Type AttributeType `yaml:"type"`
}

func Default() *Config {
	return &Config{
		Storage: Storage{
			Driver: DriverSQLite,
			Path:   DefaultPath,
		},
		Attributes: []Attribute{
			{Name: "age", Type: TypeInt},
			{Name: "department", Type: TypeString},
			{Name: "salary", Type: TypeInt},
			{Name: "experience", Type: TypeInt},
		},
	}
}

// Load reads the config at path. A missing file yields [Default].
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return Parse(bytes.NewReader(data))
}

// Parse decodes a config document. Omitted fields keep their defaults.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	cfg.Attributes = nil

	dec := yaml.NewDecoder(r, yaml.DisallowUnknownField())
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, yaml.FormatError(err, false, true))
	}

	if cfg.Attributes == nil {
		cfg.Attributes = Default().Attributes
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains(AllDrivers, c.Storage.Driver) {
		errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q, want one of %s",
			c.Storage.Driver, strings.Join(AllDrivers, ", ")))
	}

	if c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path: must not be empty"))
	}

	seen := make(map[string]bool, len(c.Attributes))
	for i, a := range c.Attributes {
		switch {
		case a.Name == "":
			errs = append(errs, fmt.Errorf("attributes[%d]: name must not be empty", i))
		case seen[a.Name]:
			errs = append(errs, fmt.Errorf("attributes[%d]: duplicate attribute %q", i, a.Name))
		}
		seen[a.Name] = true

		switch a.Type {
		case TypeInt, TypeFloat, TypeString:
		default:
			errs = append(errs, fmt.Errorf("attributes[%d]: unknown type %q", i, a.Type))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}

	return nil
}

// Write encodes the config to path, creating parent directories.
func (c *Config) Write(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf, yaml.Indent(2), yaml.IndentSequence(true))
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

func (c *Config) Catalog() eval.Catalog {
	catalog := make(eval.Catalog, 0, len(c.Attributes))
	for _, a := range c.Attributes {
		catalog = append(catalog, a.Name)
	}

	return catalog
}

func (c *Config) Attribute(name string) (Attribute, bool) {
	for _, a := range c.Attributes {
		if a.Name == name {
			return a, true
		}
	}

	return Attribute{}, false
}

// ParseValue converts user input to the attribute's value type. Empty input
// reports ok=false so the attribute is left out of the record.
func (a Attribute) ParseValue(input string) (any, bool, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, false, nil
	}

	switch a.Type {
	case TypeInt:
		v, err := strconv.ParseInt(input, 10, 64)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidValue, a.Name, input)
		}
		return v, true, nil

	case TypeFloat:
		v, err := strconv.ParseFloat(input, 64)
		if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, false, fmt.Errorf("%w: %s must be a number, got %q", ErrInvalidValue, a.Name, input)
		}
		return v, true, nil
	}

	return input, true, nil
}
