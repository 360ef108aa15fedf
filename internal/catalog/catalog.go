// Package catalog holds the static ISL module catalog used by the dictionary,
// the flashcard views and the quiz generator.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"isl-backend/internal/models"
)

//go:embed data/modules.yaml
var defaultData []byte

type catalogFile struct {
	Modules []moduleSpec `yaml:"modules"`
}

type moduleSpec struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Icon        string        `yaml:"icon"`
	Category    string        `yaml:"category"`
	Generate    *generateSpec `yaml:"generate"`
	Items       []itemSpec    `yaml:"items"`
}

// generateSpec expands one item per label. Templates accept {index}, {label}
// and {lower}.
type generateSpec struct {
	ID     string   `yaml:"id"`
	Media  string   `yaml:"media"`
	Labels []string `yaml:"labels"`
}

type itemSpec struct {
	ID       string `yaml:"id"`
	Label    string `yaml:"label"`
	Category string `yaml:"category"`
	Media    string `yaml:"media"`
	Video    string `yaml:"video"`
	NoVideo  bool   `yaml:"no_video"`
}

type Catalog struct {
	modules []models.Module
	byID    map[string]int
	items   []models.FlashcardItem
}

// Default returns the catalog shipped with the binary.
func Default() (*Catalog, error) {
	return Load(defaultData)
}

// MustDefault is Default for callers that cannot recover from a broken
// embedded catalog.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Load parses and validates a YAML catalog document.
func Load(data []byte) (*Catalog, error) {
	var file catalogFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("parse catalog: multiple documents are not supported")
		}
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	modules := make([]models.Module, 0, len(file.Modules))
	for _, spec := range file.Modules {
		modules = append(modules, buildModule(spec))
	}
	return New(modules)
}

// New builds a catalog from already constructed modules.
func New(modules []models.Module) (*Catalog, error) {
	c := &Catalog{
		modules: modules,
		byID:    make(map[string]int, len(modules)),
	}
	seenItems := make(map[string]string)

	for i, m := range modules {
		if strings.TrimSpace(m.ID) == "" {
			return nil, fmt.Errorf("module %d: id is required", i)
		}
		if _, dup := c.byID[m.ID]; dup {
			return nil, fmt.Errorf("module %q: duplicate id", m.ID)
		}
		c.byID[m.ID] = i

		for _, item := range m.Items {
			if item.ID == "" {
				return nil, fmt.Errorf("module %q: item without id", m.ID)
			}
			if strings.TrimSpace(item.Label) == "" {
				return nil, fmt.Errorf("module %q: item %q has no label", m.ID, item.ID)
			}
			if owner, dup := seenItems[item.ID]; dup {
				return nil, fmt.Errorf("item %q: defined in both %q and %q", item.ID, owner, m.ID)
			}
			seenItems[item.ID] = m.ID
			c.items = append(c.items, item)
		}
	}

	return c, nil
}

func buildModule(spec moduleSpec) models.Module {
	m := models.Module{
		ID:          spec.ID,
		Name:        spec.Name,
		Description: spec.Description,
		Icon:        spec.Icon,
	}

	if g := spec.Generate; g != nil {
		for i, label := range g.Labels {
			r := strings.NewReplacer(
				"{index}", strconv.Itoa(i),
				"{label}", label,
				"{lower}", strings.ToLower(label),
			)
			m.Items = append(m.Items, models.FlashcardItem{
				ID:       r.Replace(g.ID),
				Label:    label,
				Category: spec.Category,
				MediaURL: r.Replace(g.Media),
				VideoURL: VideoPath(label),
			})
		}
	}

	for _, it := range spec.Items {
		item := models.FlashcardItem{
			ID:       it.ID,
			Label:    it.Label,
			Category: it.Category,
			MediaURL: it.Media,
			VideoURL: it.Video,
		}
		if item.Category == "" {
			item.Category = spec.Category
		}
		if item.VideoURL == "" && !it.NoVideo {
			item.VideoURL = VideoPath(it.Label)
		}
		m.Items = append(m.Items, item)
	}

	return m
}

// VideoPath derives the default video location from a label:
// "Good Morning" -> "/assets/videos/good-morning.mp4".
func VideoPath(label string) string {
	return "/assets/videos/" + strings.Join(strings.Fields(strings.ToLower(label)), "-") + ".mp4"
}

func (c *Catalog) Modules() []models.Module {
	return c.modules
}

func (c *Catalog) ModuleByID(id string) (models.Module, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Module{}, false
	}
	return c.modules[i], true
}

// AllItems returns every item across modules in catalog order. It is the
// dictionary listing and the global distractor pool.
func (c *Catalog) AllItems() []models.FlashcardItem {
	return c.items
}

// Search filters items whose label contains query, ignoring case.
func (c *Catalog) Search(query string) []models.FlashcardItem {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.items
	}

	var results []models.FlashcardItem
	for _, item := range c.items {
		if strings.Contains(strings.ToLower(item.Label), q) {
			results = append(results, item)
		}
	}
	return results
}
