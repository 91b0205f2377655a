package detection

import (
	"fmt"
	"io"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/meridiancde/nmtc-backend/internal/core/domain"
)

// Thresholds are the classification viability cut-offs. They are distinct
// from the workflow gating thresholds in domain.ResolveWorkflowDecision.
type Thresholds struct {
	High   float64 `yaml:"high"`
	Medium float64 `yaml:"medium"`
	Low    float64 `yaml:"low"`
}

func defaultThresholds() Thresholds {
	return Thresholds{High: 0.7, Medium: 0.4, Low: 0.2}
}

// Overrides tunes scoring weights and thresholds without touching the
// compiled pattern sets, which stay code-owned.
type Overrides struct {
	Weights    map[string]float64 `yaml:"weights"`
	Thresholds *Thresholds        `yaml:"thresholds"`
}

type compiledTerm struct {
	category string
	term     string
	re       *regexp.Regexp
}

// Registry owns the compiled pattern catalogue. It is built once at process
// start and read-only afterwards; concurrent classification calls share it.
type Registry struct {
	patterns   map[domain.DocumentType]map[string][]*regexp.Regexp
	weights    map[string]float64
	thresholds Thresholds

	fields    map[string][]*regexp.Regexp
	structure map[string]*regexp.Regexp
	terms     []compiledTerm
}

func NewRegistry() (*Registry, error) {
	return NewRegistryWithOverrides(nil)
}

// NewRegistryWithOverrides reads optional YAML weight/threshold overrides.
// A pattern that fails to compile is a configuration defect and fatal.
func NewRegistryWithOverrides(overrides io.Reader) (*Registry, error) {
	r := &Registry{
		patterns:   make(map[domain.DocumentType]map[string][]*regexp.Regexp, len(documentPatterns)),
		weights:    make(map[string]float64, len(defaultScoringWeights)),
		thresholds: defaultThresholds(),
		fields:     make(map[string][]*regexp.Regexp, len(keyFieldPatterns)),
		structure:  make(map[string]*regexp.Regexp, len(structurePatterns)),
	}
	for category, weight := range defaultScoringWeights {
		r.weights[category] = weight
	}

	for docType, categories := range documentPatterns {
		compiled := make(map[string][]*regexp.Regexp, len(categories))
		for category, exprs := range categories {
			res, err := compileAll(exprs)
			if err != nil {
				return nil, fmt.Errorf("compile %s/%s: %w", docType, category, err)
			}
			compiled[category] = res
		}
		r.patterns[docType] = compiled
	}

	for category, exprs := range keyFieldPatterns {
		res, err := compileAll(exprs)
		if err != nil {
			return nil, fmt.Errorf("compile field category %s: %w", category, err)
		}
		r.fields[category] = res
	}

	for name, expr := range structurePatterns {
		re, err := regexp.Compile(`(?im)` + expr)
		if err != nil {
			return nil, fmt.Errorf("compile structure indicator %s: %w", name, err)
		}
		r.structure[name] = re
	}

	for _, category := range complianceTermCategories {
		for _, term := range complianceTerms[category] {
			re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(term))
			if err != nil {
				return nil, fmt.Errorf("compile compliance term %q: %w", term, err)
			}
			r.terms = append(r.terms, compiledTerm{category: category, term: term, re: re})
		}
	}

	if overrides != nil {
		if err := r.applyOverrides(overrides); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func compileAll(exprs []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(`(?im)` + expr)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", expr, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func (r *Registry) applyOverrides(src io.Reader) error {
	raw, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("read pattern overrides: %w", err)
	}
	var ov Overrides
	if err := yaml.Unmarshal(raw, &ov); err != nil {
		return fmt.Errorf("parse pattern overrides: %w", err)
	}

	for category, weight := range ov.Weights {
		if weight < 0 || weight > 1 {
			return fmt.Errorf("weight for %s out of range [0,1]: %g", category, weight)
		}
		r.weights[category] = weight
	}
	if ov.Thresholds != nil {
		t := *ov.Thresholds
		if t.Low <= 0 || t.Low > t.Medium || t.Medium > t.High || t.High > 1 {
			return fmt.Errorf("thresholds must satisfy 0 < low <= medium <= high <= 1, got %+v", t)
		}
		r.thresholds = t
	}
	return nil
}

// PatternsFor returns the compiled category map for one document type.
func (r *Registry) PatternsFor(docType domain.DocumentType) map[string][]*regexp.Regexp {
	return r.patterns[docType]
}

// AllTypes returns every classifiable type in stable registry order,
// excluding the unknown sentinel.
func (r *Registry) AllTypes() []domain.DocumentType {
	out := make([]domain.DocumentType, len(typeOrder))
	copy(out, typeOrder)
	return out
}

// CategoriesFor returns a type's pattern category names sorted for
// deterministic scoring iteration.
func (r *Registry) CategoriesFor(docType domain.DocumentType) []string {
	categories := make([]string, 0, len(r.patterns[docType]))
	for category := range r.patterns[docType] {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

func (r *Registry) Weight(category string) float64 {
	if w, ok := r.weights[category]; ok {
		return w
	}
	return defaultCategoryWeight
}

func (r *Registry) Thresholds() Thresholds {
	return r.thresholds
}

// TypeDescription describes one supported type for the read API.
type TypeDescription struct {
	Type        domain.DocumentType `json:"type"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
}

func (r *Registry) SupportedTypes() []TypeDescription {
	out := make([]TypeDescription, 0, len(typeOrder))
	for _, docType := range typeOrder {
		out = append(out, TypeDescription{
			Type:        docType,
			Name:        docType.DisplayName(),
			Description: typeDescriptions[docType],
		})
	}
	return out
}
