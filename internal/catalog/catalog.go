// Package catalog holds the static battle format, playstyle and Pokemon tables.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

// Format is a competitive battle format
type Format struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// Category groups related playstyles
type Category struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// Playstyle is a team archetype the user can ask for
type Playstyle struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Category    string `yaml:"category" json:"category"`
}

// Catalog is immutable after Load
type Catalog struct {
	Formats    []Format    `yaml:"formats"`
	Categories []Category  `yaml:"categories"`
	Playstyles []Playstyle `yaml:"playstyles"`
	Pokemon    []string    `yaml:"pokemon"`

	formatsByID    map[string]Format
	playstylesByID map[string]Playstyle
}

// Load parses the embedded catalog
func Load() (*Catalog, error) {
	return Parse(embedded)
}

// MustLoad is Load for package initialization and tests
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes a catalog document and indexes it by id
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c.formatsByID = make(map[string]Format, len(c.Formats))
	for _, f := range c.Formats {
		if f.ID == "" {
			return nil, fmt.Errorf("format %q has no id", f.Name)
		}
		if _, dup := c.formatsByID[f.ID]; dup {
			return nil, fmt.Errorf("duplicate format id %q", f.ID)
		}
		c.formatsByID[f.ID] = f
	}

	categories := make(map[string]struct{}, len(c.Categories))
	for _, cat := range c.Categories {
		categories[cat.ID] = struct{}{}
	}

	c.playstylesByID = make(map[string]Playstyle, len(c.Playstyles))
	for _, p := range c.Playstyles {
		if p.ID == "" {
			return nil, fmt.Errorf("playstyle %q has no id", p.Name)
		}
		if _, dup := c.playstylesByID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate playstyle id %q", p.ID)
		}
		if _, ok := categories[p.Category]; !ok {
			return nil, fmt.Errorf("playstyle %q has unknown category %q", p.ID, p.Category)
		}
		c.playstylesByID[p.ID] = p
	}

	return &c, nil
}

// Format looks up a battle format by id
func (c *Catalog) Format(id string) (Format, bool) {
	f, ok := c.formatsByID[id]
	return f, ok
}

// Playstyle looks up a playstyle by id
func (c *Catalog) Playstyle(id string) (Playstyle, bool) {
	p, ok := c.playstylesByID[id]
	return p, ok
}

// PlaystylesByCategory returns the playstyles of one category in catalog order
func (c *Catalog) PlaystylesByCategory(category string) []Playstyle {
	var out []Playstyle
	for _, p := range c.Playstyles {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
