package services

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/zatekoja/healthcapacity/pkg/errors"
)

// CompatibilityCategory is one broad care category. A facility type belongs
// to the category when it equals an alias or contains a keyword.
type CompatibilityCategory struct {
	Name     string   `yaml:"name"`
	Aliases  []string `yaml:"aliases"`
	Keywords []string `yaml:"keywords"`
	// Absorbs lists categories whose patients this category can take in.
	Absorbs []string `yaml:"absorbs"`
}

// CompatibilityTable decides which facility types are substitutable for
// redirection. Categories are matched in declaration order, so specialised
// categories should come before general ones.
type CompatibilityTable struct {
	Categories []CompatibilityCategory `yaml:"categories"`

	aliases map[string]string
	absorbs map[string]map[string]bool
}

// NewCompatibilityTable validates categories and builds the lookup indexes
func NewCompatibilityTable(categories []CompatibilityCategory) (*CompatibilityTable, error) {
	t := &CompatibilityTable{
		Categories: categories,
		aliases:    make(map[string]string),
		absorbs:    make(map[string]map[string]bool),
	}

	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		name := normalizeType(c.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("compatibility category name is required")
		}
		if known[name] {
			return nil, apperrors.NewValidationError(fmt.Sprintf("duplicate compatibility category %q", c.Name))
		}
		known[name] = true
	}

	for _, c := range categories {
		name := normalizeType(c.Name)
		for _, alias := range append([]string{c.Name}, c.Aliases...) {
			key := normalizeType(alias)
			if key == "" {
				continue
			}
			if owner, exists := t.aliases[key]; exists && owner != name {
				return nil, apperrors.NewValidationError(
					fmt.Sprintf("alias %q is claimed by both %q and %q", alias, owner, name))
			}
			t.aliases[key] = name
		}

		for _, absorbed := range c.Absorbs {
			target := normalizeType(absorbed)
			if !known[target] {
				return nil, apperrors.NewValidationError(
					fmt.Sprintf("category %q absorbs unknown category %q", c.Name, absorbed))
			}
			if t.absorbs[name] == nil {
				t.absorbs[name] = make(map[string]bool)
			}
			t.absorbs[name][target] = true
		}
	}

	return t, nil
}

// LoadCompatibilityTable reads a YAML compatibility table from path
func LoadCompatibilityTable(path string) (*CompatibilityTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading compatibility table: %w", err)
	}
	return ParseCompatibilityTable(data)
}

// ParseCompatibilityTable parses a YAML compatibility table
func ParseCompatibilityTable(data []byte) (*CompatibilityTable, error) {
	var raw struct {
		Categories []CompatibilityCategory `yaml:"categories"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("parsing compatibility table: %v", err))
	}
	if len(raw.Categories) == 0 {
		return nil, apperrors.NewValidationError("compatibility table has no categories")
	}
	return NewCompatibilityTable(raw.Categories)
}

// DefaultCompatibilityTable returns the built-in category grouping. General
// multidisciplinary hospitals absorb pediatric, cardiology, surgical and
// rehabilitation patients; maternity, oncology, infectious, tuberculosis and
// psychiatric care only move within their own category.
func DefaultCompatibilityTable() *CompatibilityTable {
	table, err := NewCompatibilityTable([]CompatibilityCategory{
		{
			Name:     "pediatric",
			Aliases:  []string{"children's hospital", "pediatric hospital"},
			Keywords: []string{"pediatr", "paediatr", "children", "child", "детск", "педиатр"},
		},
		{
			Name:     "maternity",
			Aliases:  []string{"maternity hospital", "perinatal center"},
			Keywords: []string{"maternity", "perinatal", "obstetric", "родильн", "роддом", "перинатал", "акушер"},
		},
		{
			Name:     "oncology",
			Aliases:  []string{"oncology center", "cancer center"},
			Keywords: []string{"oncolog", "cancer", "онколог"},
		},
		{
			Name:     "tuberculosis",
			Aliases:  []string{"tuberculosis dispensary"},
			Keywords: []string{"tuberculosis", "phthisi", "туберкул", "фтизи"},
		},
		{
			Name:     "infectious",
			Aliases:  []string{"infectious diseases hospital"},
			Keywords: []string{"infectious", "инфекц"},
		},
		{
			Name:     "psychiatric",
			Aliases:  []string{"psychiatric hospital", "mental health center"},
			Keywords: []string{"psychiat", "mental", "психиатр", "психоневр"},
		},
		{
			Name:     "cardiology",
			Aliases:  []string{"cardiology center"},
			Keywords: []string{"cardio", "кардио"},
		},
		{
			Name:     "surgery",
			Aliases:  []string{"surgical hospital", "trauma center"},
			Keywords: []string{"surg", "trauma", "хирург", "травм"},
		},
		{
			Name:     "rehabilitation",
			Aliases:  []string{"rehabilitation center"},
			Keywords: []string{"rehab", "реабилит"},
		},
		{
			Name: "general",
			Aliases: []string{
				"general hospital", "multidisciplinary hospital", "city hospital",
				"district hospital", "central district hospital", "regional hospital",
			},
			Keywords: []string{"general", "multidisciplinary", "multi-profile", "многопрофил", "городская больница", "районная больница", "областная больница"},
			Absorbs:  []string{"pediatric", "cardiology", "surgery", "rehabilitation"},
		},
	})
	if err != nil {
		panic(fmt.Sprintf("default compatibility table is invalid: %v", err))
	}
	return table
}

// Resolve returns the category of a facility type
func (t *CompatibilityTable) Resolve(facilityType string) (string, bool) {
	key := normalizeType(facilityType)
	if key == "" || t == nil {
		return "", false
	}
	if name, ok := t.aliases[key]; ok {
		return name, true
	}
	for _, c := range t.Categories {
		for _, kw := range c.Keywords {
			if kw = normalizeType(kw); kw != "" && strings.Contains(key, kw) {
				return normalizeType(c.Name), true
			}
		}
	}
	return "", false
}

// IsCompatibleFacilityType reports whether patients can be redirected between
// the two facility types. The relation is symmetric; unknown or empty types
// are only compatible with the identical string.
func (t *CompatibilityTable) IsCompatibleFacilityType(typeA, typeB string) bool {
	a, b := normalizeType(typeA), normalizeType(typeB)
	if a == b {
		return true
	}

	catA, okA := t.Resolve(a)
	catB, okB := t.Resolve(b)
	if !okA || !okB {
		return false
	}
	if catA == catB {
		return true
	}
	return t.absorbs[catA][catB] || t.absorbs[catB][catA]
}

func normalizeType(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
