package protogolden

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// TestCase is one golden scenario.
type TestCase struct {
	Name    string `yaml:"name"`
	Fixture string `yaml:"fixture"`
	// Imports are fixtures the primary fixture imports. They are staged
	// before invocation; none are staged when empty.
	Imports []string `yaml:"imports,omitempty"`
	Variant string   `yaml:"variant"`
}

func (tc TestCase) String() string {
	if tc.Name != "" {
		return tc.Name
	}
	return strings.ReplaceAll(cleanFixture(tc.Fixture), "/", "_") + "_" + tc.Variant
}

// Catalog is the on-disk description of a golden suite.
type Catalog struct {
	// Frontend is "builtin" for the in-process reference generator, or a
	// shell-style command line for an external front end.
	Frontend      string     `yaml:"frontend"`
	GeneratorFlag string     `yaml:"generator_flag"`
	Fixtures      string     `yaml:"fixtures"`
	Layout        Layout     `yaml:"layout"`
	Cases         []TestCase `yaml:"cases"`
}

// LoadCatalog decodes a YAML catalog and validates it. Unknown keys are
// rejected.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var c Catalog
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadCatalogFile reads the catalog at path. A relative Fixtures directory is
// resolved against the catalog's directory.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := LoadCatalog(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !filepath.IsAbs(c.Fixtures) {
		c.Fixtures = filepath.Join(filepath.Dir(path), c.Fixtures)
	}
	return c, nil
}

// Validate checks the catalog and fills in default case names and layout.
func (c *Catalog) Validate() error {
	if c.GeneratorFlag == "" {
		return errors.New("catalog: generator_flag is required")
	}
	if c.Fixtures == "" {
		return errors.New("catalog: fixtures is required")
	}
	c.Layout = c.Layout.withDefaults()
	seen := make(map[string]bool, len(c.Cases))
	for i := range c.Cases {
		tc := &c.Cases[i]
		if err := tc.validate(); err != nil {
			return fmt.Errorf("catalog: case %d: %w", i, err)
		}
		if tc.Name == "" {
			tc.Name = tc.String()
		}
		if seen[tc.Name] {
			return fmt.Errorf("catalog: duplicate case name %q", tc.Name)
		}
		seen[tc.Name] = true
	}
	return nil
}

func (tc TestCase) validate() error {
	if cleanFixture(tc.Fixture) == "" {
		return errors.New("fixture is required")
	}
	if tc.Variant == "" {
		return errors.New("variant is required")
	}
	if strings.ContainsAny(tc.Variant, `/\`) {
		return fmt.Errorf("variant %q must not contain path separators", tc.Variant)
	}
	for _, imp := range tc.Imports {
		if cleanFixture(imp) == "" {
			return errors.New("empty import fixture")
		}
	}
	return nil
}
