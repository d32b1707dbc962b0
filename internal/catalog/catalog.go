// Package catalog is read-only access to the static, versioned job dataset.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"trizen-careers/internal/model"
)

// AllFilter disables a category or location filter.
const AllFilter = "all"

//go:embed jobs.yaml
var defaultData []byte

type dataset struct {
	Version string      `yaml:"version"`
	Jobs    []model.Job `yaml:"jobs"`
}

// Catalog is an immutable job dataset.
type Catalog struct {
	version string
	jobs    []model.Job
	byID    map[string]int
	bySlug  map[string]int
}

// Query holds search filters. Empty or "all" Category/Location mean no filter.
type Query struct {
	Term     string `form:"search"`
	Category string `form:"category"`
	Location string `form:"location"`
}

// Load parses a YAML dataset. Job ids and slugs must be unique and ids non-empty.
func Load(data []byte) (*Catalog, error) {
	var ds dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse job catalog: %w", err)
	}

	c := &Catalog{
		version: ds.Version,
		jobs:    ds.Jobs,
		byID:    make(map[string]int, len(ds.Jobs)),
		bySlug:  make(map[string]int, len(ds.Jobs)),
	}
	for i, j := range ds.Jobs {
		if j.ID == "" {
			return nil, fmt.Errorf("job at index %d has no id", i)
		}
		if _, dup := c.byID[j.ID]; dup {
			return nil, fmt.Errorf("duplicate job id %s", j.ID)
		}
		c.byID[j.ID] = i
		if j.Slug != "" {
			if _, dup := c.bySlug[j.Slug]; dup {
				return nil, fmt.Errorf("duplicate job slug %s", j.Slug)
			}
			c.bySlug[j.Slug] = i
		}
	}
	return c, nil
}

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	c, err := Load(defaultData)
	if err != nil {
		panic(err)
	}
	return c
}

// Version of the loaded dataset.
func (c *Catalog) Version() string {
	return c.version
}

// All returns every job in dataset order.
func (c *Catalog) All() []model.Job {
	out := make([]model.Job, len(c.jobs))
	copy(out, c.jobs)
	return out
}

// FindByID returns the job with the given id. The bool is false when it does not exist.
func (c *Catalog) FindByID(id string) (model.Job, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Job{}, false
	}
	return c.jobs[i], true
}

// FindBySlug returns the job with the given slug.
func (c *Catalog) FindBySlug(slug string) (model.Job, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return model.Job{}, false
	}
	return c.jobs[i], true
}

// Search filters the catalog, preserving dataset order.
// Term matches title or description case-insensitively; category and location match exactly.
func (c *Catalog) Search(q Query) []model.Job {
	term := strings.ToLower(strings.TrimSpace(q.Term))
	out := make([]model.Job, 0, len(c.jobs))

	for _, j := range c.jobs {
		if term != "" &&
			!strings.Contains(strings.ToLower(j.Title), term) &&
			!strings.Contains(strings.ToLower(j.Description), term) {
			continue
		}
		if active(q.Category) && j.Category != q.Category {
			continue
		}
		if active(q.Location) && j.Location != q.Location {
			continue
		}
		out = append(out, j)
	}
	return out
}

// Categories returns the distinct job categories, sorted.
func (c *Catalog) Categories() []string {
	return c.distinct(func(j model.Job) string { return j.Category })
}

// Locations returns the distinct job locations, sorted.
func (c *Catalog) Locations() []string {
	return c.distinct(func(j model.Job) string { return j.Location })
}

func (c *Catalog) distinct(field func(model.Job) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, j := range c.jobs {
		v := field(j)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func active(filter string) bool {
	return filter != "" && filter != AllFilter
}
