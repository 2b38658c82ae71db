package catalog

import (
	"fmt"
	"slices"
)

// Catalog is an immutable, ordered set of factors with lookup indices.
type Catalog struct {
	name      string
	factors   []Factor
	byID      map[string]int
	byPathway map[Pathway][]Factor
	concepts  []string
}

// New validates factors and builds a catalog. Input order is kept for display.
func New(name string, factors []Factor) (*Catalog, error) {
	if err := validateFactors(factors); err != nil {
		return nil, err
	}

	c := &Catalog{
		name:      name,
		factors:   slices.Clone(factors),
		byID:      make(map[string]int, len(factors)),
		byPathway: make(map[Pathway][]Factor),
	}

	seen := make(map[string]bool)
	for i := range c.factors {
		f := &c.factors[i]
		f.Antagonists = slices.Clone(f.Antagonists)
		c.byID[f.ID] = i
		c.byPathway[f.Pathway] = append(c.byPathway[f.Pathway], *f)
		if f.Concept != "" && !seen[f.Concept] {
			seen[f.Concept] = true
			c.concepts = append(c.concepts, f.Concept)
		}
	}
	return c, nil
}

// Name returns the catalog name.
func (c *Catalog) Name() string { return c.name }

// Len returns the number of factors.
func (c *Catalog) Len() int { return len(c.factors) }

// Get returns a factor by ID.
func (c *Catalog) Get(id string) (Factor, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Factor{}, false
	}
	f := c.factors[i]
	f.Antagonists = slices.Clone(f.Antagonists)
	return f, true
}

// MustGet returns a factor by ID or an error naming the missing ID.
func (c *Catalog) MustGet(id string) (Factor, error) {
	f, ok := c.Get(id)
	if !ok {
		return Factor{}, fmt.Errorf("factor not found: %q", id)
	}
	return f, nil
}

// Factors returns all factors in catalog order.
func (c *Catalog) Factors() []Factor {
	out := make([]Factor, len(c.factors))
	for i, f := range c.factors {
		f.Antagonists = slices.Clone(f.Antagonists)
		out[i] = f
	}
	return out
}

// IDs returns all factor IDs in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.factors))
	for i, f := range c.factors {
		ids[i] = f.ID
	}
	return ids
}

// ByPathway returns the factors of one pathway in catalog order.
func (c *Catalog) ByPathway(p Pathway) []Factor {
	return slices.Clone(c.byPathway[p])
}

// Concepts returns the distinct analytics concepts in first-seen order.
func (c *Catalog) Concepts() []string {
	return slices.Clone(c.concepts)
}

// ConceptMap returns the factor ID to concept mapping used by analytics.
func (c *Catalog) ConceptMap() map[string]string {
	m := make(map[string]string, len(c.factors))
	for _, f := range c.factors {
		if f.Concept != "" {
			m[f.ID] = f.Concept
		}
	}
	return m
}
