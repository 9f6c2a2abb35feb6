// Package config loads the optional .pysyntax.yaml file read by the
// pysyntax command. The file is validated against an embedded JSON Schema
// before it is decoded, so unknown keys and wrong types are reported with
// the offending location.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/opal-lang/pysyntax/core/version"
)

// FileName is the config file looked up by Find.
const FileName = ".pysyntax.yaml"

// Format selects how the check command prints diagnostics.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config is the decoded configuration. Flags given on the command line
// override individual fields.
type Config struct {
	TargetVersion version.Version
	ShowWarnings  bool
	Format        Format
	Exclude       []string

	// Path is the file the config was read from, empty for defaults.
	Path string
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		TargetVersion: version.Latest,
		ShowWarnings:  true,
		Format:        FormatText,
	}
}

// file mirrors the YAML layout. Pointers distinguish absent keys from zero
// values.
type file struct {
	TargetVersion *string  `yaml:"target-version"`
	ShowWarnings  *bool    `yaml:"show-warnings"`
	Format        *string  `yaml:"format"`
	Exclude       []string `yaml:"exclude"`
}

//go:embed schema.json
var schemaJSON string

const schemaURL = "schema://pysyntax.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true
		compiler.Formats = map[string]func(interface{}) bool{
			"python-version": func(v interface{}) bool {
				s, ok := v.(string)
				if !ok {
					return true
				}
				_, err := version.Parse(s)
				return err == nil
			},
		}
		if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("config schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Parse validates and decodes YAML config data. An empty document yields
// the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return cfg, fmt.Errorf("invalid YAML: %w", err)
	}
	if doc == nil {
		return cfg, nil
	}

	// The validator expects JSON values; a YAML mapping with non-string keys
	// fails here rather than deeper in validation.
	normalized, err := toJSONValue(doc)
	if err != nil {
		return cfg, err
	}
	sch, err := compiledSchema()
	if err != nil {
		return cfg, err
	}
	if err := sch.Validate(normalized); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return cfg, fmt.Errorf("invalid config: %s", describe(ve))
		}
		return cfg, fmt.Errorf("invalid config: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return cfg, fmt.Errorf("invalid YAML: %w", err)
	}
	if f.TargetVersion != nil {
		v, err := version.Parse(*f.TargetVersion)
		if err != nil {
			return cfg, fmt.Errorf("invalid config: target-version: %w", err)
		}
		cfg.TargetVersion = v
	}
	if f.ShowWarnings != nil {
		cfg.ShowWarnings = *f.ShowWarnings
	}
	if f.Format != nil {
		cfg.Format = Format(*f.Format)
	}
	cfg.Exclude = f.Exclude
	return cfg, nil
}

func toJSONValue(doc interface{}) (interface{}, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return v, nil
}

// describe flattens a validation error to its most specific causes, one per
// line, each prefixed with the JSON pointer of the offending value.
func describe(ve *jsonschema.ValidationError) string {
	var out []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			out = append(out, fmt.Sprintf("%s: %s", loc, e.Message))
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return strings.Join(out, "; ")
}

// Load reads and parses the config at path.
func Load(fsys afero.Fs, path string) (Config, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return Default(), fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Find looks for FileName in dir and its parents and loads the first one
// found. It returns the defaults when there is none.
func Find(fsys afero.Fs, dir string) (Config, error) {
	dir = filepath.Clean(dir)
	for {
		candidate := filepath.Join(dir, FileName)
		_, err := fsys.Stat(candidate)
		switch {
		case err == nil:
			return Load(fsys, candidate)
		case !errors.Is(err, fs.ErrNotExist):
			return Default(), fmt.Errorf("reading config: %w", err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// Excluded reports whether name matches one of the exclude patterns. A
// pattern matches the slash-separated path or any suffix of it that starts
// at a path element, so "build/*.py" excludes "src/build/gen.py".
func (c Config) Excluded(name string) bool {
	name = filepath.ToSlash(filepath.Clean(name))
	for _, pattern := range c.Exclude {
		for rest := name; ; {
			if ok, _ := path.Match(pattern, rest); ok {
				return true
			}
			i := strings.IndexByte(rest, '/')
			if i < 0 {
				break
			}
			rest = rest[i+1:]
		}
	}
	return false
}
