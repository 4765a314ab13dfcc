// Package catalog holds the static parts registry the forge builds from.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
)

//go:embed parts.yaml
var defaultCatalogYAML []byte

// Category is a build slot and the parts that can fill it
type Category struct {
	Key      models.CategoryKey `json:"key" yaml:"key"`
	Name     string             `json:"name" yaml:"name"`
	Required bool               `json:"required" yaml:"required"`
	Requires models.CategoryKey `json:"requires,omitempty" yaml:"requires,omitempty"` // prerequisite category, empty if none
	Parts    []models.Part      `json:"parts,omitempty" yaml:"parts"`
}

// Template is a starter build described by part IDs
type Template struct {
	Name        string                        `json:"name" yaml:"name"`
	Description string                        `json:"description,omitempty" yaml:"description,omitempty"`
	Platform    models.PlatformConfiguration  `json:"platform" yaml:"platform"`
	Parts       map[models.CategoryKey]string `json:"parts" yaml:"parts"`
}

// Catalog is an immutable, ordered set of categories
type Catalog struct {
	categories []Category
	index      map[models.CategoryKey]int
	templates  []Template
}

type catalogFile struct {
	Categories []Category `yaml:"categories"`
	Templates  []Template `yaml:"templates"`
}

// Default returns the embedded sample catalog
func Default() *Catalog {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from a YAML file
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog document
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	c, err := New(f.Categories)
	if err != nil {
		return nil, err
	}
	if err := c.addTemplates(f.Templates); err != nil {
		return nil, err
	}
	return c, nil
}

// New builds a catalog from categories, inserting the sentinel part first in
// every category and validating the result.
func New(categories []Category) (*Catalog, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("catalog has no categories")
	}

	c := &Catalog{
		categories: make([]Category, 0, len(categories)),
		index:      make(map[models.CategoryKey]int, len(categories)),
	}

	for _, cat := range categories {
		if cat.Key == "" {
			return nil, fmt.Errorf("category with empty key")
		}
		if _, dup := c.index[cat.Key]; dup {
			return nil, fmt.Errorf("duplicate category %q", cat.Key)
		}
		normalized, err := normalizeCategory(cat)
		if err != nil {
			return nil, err
		}
		c.index[cat.Key] = len(c.categories)
		c.categories = append(c.categories, normalized)
	}

	if err := c.validateDependencies(); err != nil {
		return nil, err
	}
	return c, nil
}

func normalizeCategory(cat Category) (Category, error) {
	if cat.Name == "" {
		cat.Name = string(cat.Key)
	}

	parts := make([]models.Part, 0, len(cat.Parts)+1)
	parts = append(parts, models.SentinelPart())
	seen := map[string]bool{models.SentinelID: true}

	for _, p := range cat.Parts {
		if p.IsSentinel() {
			continue
		}
		if p.ID == "" {
			return Category{}, fmt.Errorf("category %q: part with empty id", cat.Key)
		}
		if seen[p.ID] {
			return Category{}, fmt.Errorf("category %q: duplicate part %q", cat.Key, p.ID)
		}
		if p.Price < 0 {
			return Category{}, fmt.Errorf("category %q: part %q has negative price", cat.Key, p.ID)
		}
		if len(p.Compatibility.FirearmTypes) == 0 {
			return Category{}, fmt.Errorf("category %q: part %q lists no firearm types", cat.Key, p.ID)
		}
		for _, ft := range p.Compatibility.FirearmTypes {
			if !ft.Valid() {
				return Category{}, fmt.Errorf("category %q: part %q: unknown firearm type %q", cat.Key, p.ID, ft)
			}
		}
		seen[p.ID] = true
		parts = append(parts, p.Clone())
	}

	cat.Parts = parts
	return cat, nil
}

// validateDependencies rejects unknown prerequisites and cycles
func (c *Catalog) validateDependencies() error {
	for _, cat := range c.categories {
		if cat.Requires == "" {
			continue
		}
		if _, ok := c.index[cat.Requires]; !ok {
			return fmt.Errorf("category %q requires unknown category %q", cat.Key, cat.Requires)
		}
		seen := map[models.CategoryKey]bool{cat.Key: true}
		for next := cat.Requires; next != ""; next = c.categories[c.index[next]].Requires {
			if seen[next] {
				return fmt.Errorf("category %q has a dependency cycle", cat.Key)
			}
			seen[next] = true
		}
	}
	return nil
}

func (c *Catalog) addTemplates(templates []Template) error {
	for _, t := range templates {
		if t.Name == "" {
			return fmt.Errorf("template with empty name")
		}
		if err := t.Platform.Validate(); err != nil {
			return fmt.Errorf("template %q: %w", t.Name, err)
		}
		for key, id := range t.Parts {
			if _, ok := c.Part(key, id); !ok {
				return fmt.Errorf("template %q: no part %q in %s", t.Name, id, key)
			}
		}
		c.templates = append(c.templates, copyTemplate(t))
	}
	return nil
}

// Templates returns the starter builds
func (c *Catalog) Templates() []Template {
	out := make([]Template, len(c.templates))
	for i, t := range c.templates {
		out[i] = copyTemplate(t)
	}
	return out
}

// Keys returns the category keys in display order
func (c *Catalog) Keys() []models.CategoryKey {
	keys := make([]models.CategoryKey, len(c.categories))
	for i, cat := range c.categories {
		keys[i] = cat.Key
	}
	return keys
}

// Categories returns a copy of every category, parts included
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		out[i] = copyCategory(cat)
	}
	return out
}

// Category returns a copy of one category
func (c *Catalog) Category(key models.CategoryKey) (Category, bool) {
	i, ok := c.index[key]
	if !ok {
		return Category{}, false
	}
	return copyCategory(c.categories[i]), true
}

// Has reports whether key is a catalog category
func (c *Catalog) Has(key models.CategoryKey) bool {
	_, ok := c.index[key]
	return ok
}

// Parts returns a copy of the parts listed under key, sentinel first
func (c *Catalog) Parts(key models.CategoryKey) []models.Part {
	i, ok := c.index[key]
	if !ok {
		return nil
	}
	return copyParts(c.categories[i].Parts)
}

// Part looks up a single part by category and ID
func (c *Catalog) Part(key models.CategoryKey, id string) (models.Part, bool) {
	i, ok := c.index[key]
	if !ok {
		return models.Part{}, false
	}
	for _, p := range c.categories[i].Parts {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return models.Part{}, false
}

// Requires returns the prerequisite of key, if any
func (c *Catalog) Requires(key models.CategoryKey) (models.CategoryKey, bool) {
	i, ok := c.index[key]
	if !ok || c.categories[i].Requires == "" {
		return "", false
	}
	return c.categories[i].Requires, true
}

// Dependents returns every category that directly or transitively requires key,
// in display order.
func (c *Catalog) Dependents(key models.CategoryKey) []models.CategoryKey {
	var out []models.CategoryKey
	for _, cat := range c.categories {
		for next := cat.Requires; next != ""; next = c.categories[c.index[next]].Requires {
			if next == key {
				out = append(out, cat.Key)
				break
			}
		}
	}
	return out
}

func copyCategory(cat Category) Category {
	cat.Parts = copyParts(cat.Parts)
	return cat
}

func copyParts(parts []models.Part) []models.Part {
	out := make([]models.Part, len(parts))
	for i, p := range parts {
		out[i] = p.Clone()
	}
	return out
}

func copyTemplate(t Template) Template {
	parts := make(map[models.CategoryKey]string, len(t.Parts))
	for k, v := range t.Parts {
		parts[k] = v
	}
	t.Parts = parts
	return t
}
