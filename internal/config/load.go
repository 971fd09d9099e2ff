package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE []byte

// ErrUnsupportedFormat is returned for files that are neither YAML nor CUE.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Load reads a config file, choosing the decoder by extension, and checks
// that the merged options are valid.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg *Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		cfg, err = ParseYAML(data)
	case ".cue":
		cfg, err = ParseCUE(data, path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Options().Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseYAML decodes YAML, rejecting unknown fields.
func ParseYAML(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &cfg, nil
}

// ParseCUE compiles CUE source, unifies it with the #Config schema and
// decodes the concrete result. filename is used in error positions.
func ParseCUE(data []byte, filename string) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("building config schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse CUE: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}
