package compliance

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	apperrors "complianceadvisor/internal/errors"
)

//go:embed rules.toml
var embeddedTable string

// Classification is the (country, entity type, product category) tuple a
// checklist is keyed by.
type Classification struct {
	Country         string
	EntityType      string
	ProductCategory string
}

// Requirements is the checklist for a classification. Both lists are sorted
// and free of duplicates.
type Requirements struct {
	Documents  []string `json:"documents"`
	Compliance []string `json:"compliance"`
}

// Options lists the values the rule table declares, in declaration order.
type Options struct {
	Countries         []string `json:"countries"`
	EntityTypes       []string `json:"entityTypes"`
	ProductCategories []string `json:"productCategories"`
}

type ruleEntry struct {
	Country         string   `toml:"country"`
	EntityType      string   `toml:"entity_type"`
	ProductCategory string   `toml:"product_category"`
	Compliance      []string `toml:"compliance"`
}

type tableFile struct {
	EUJurisdictions   []string            `toml:"eu_jurisdictions"`
	Countries         []string            `toml:"countries"`
	EntityTypes       []string            `toml:"entity_types"`
	ProductCategories []string            `toml:"product_categories"`
	Documents         map[string][]string `toml:"documents"`
	Defaults          map[string][]string `toml:"defaults"`
	Rules             []ruleEntry         `toml:"rule"`
}

// Rules is a validated, read-only rule table. It is safe for concurrent use.
type Rules struct {
	options   Options
	eu        map[string]struct{}
	documents map[string][]string
	defaults  map[string][]string
	rules     map[Classification][]string
}

// Default returns the rule table compiled into the binary.
func Default() (*Rules, error) {
	return Parse(embeddedTable)
}

// LoadFile reads and validates a rule table from a TOML file.
func LoadFile(path string) (*Rules, error) {
	var f tableFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("decode rule table %s: %w", path, err)
	}
	return build(f, md)
}

// Parse decodes and validates a rule table from TOML text.
func Parse(data string) (*Rules, error) {
	var f tableFile
	md, err := toml.Decode(data, &f)
	if err != nil {
		return nil, fmt.Errorf("decode rule table: %w", err)
	}
	return build(f, md)
}

func build(f tableFile, md toml.MetaData) (*Rules, error) {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("rule table: unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := validate(f); err != nil {
		return nil, fmt.Errorf("rule table: %w", err)
	}

	r := &Rules{
		options: Options{
			Countries:         slices.Clone(f.Countries),
			EntityTypes:       slices.Clone(f.EntityTypes),
			ProductCategories: slices.Clone(f.ProductCategories),
		},
		eu:        make(map[string]struct{}, len(f.EUJurisdictions)),
		documents: make(map[string][]string, len(f.Documents)),
		defaults:  make(map[string][]string, len(f.Defaults)),
		rules:     make(map[Classification][]string, len(f.Rules)),
	}
	for _, c := range f.EUJurisdictions {
		r.eu[c] = struct{}{}
	}
	for entity, docs := range f.Documents {
		r.documents[entity] = normalize(docs)
	}
	for product, list := range f.Defaults {
		r.defaults[product] = slices.Clone(list)
	}
	for _, rule := range f.Rules {
		key := Classification{rule.Country, rule.EntityType, rule.ProductCategory}
		r.rules[key] = slices.Clone(rule.Compliance)
	}
	return r, nil
}

func validate(f tableFile) error {
	var errs []error
	countries := toSet(f.Countries)
	entities := toSet(f.EntityTypes)
	products := toSet(f.ProductCategories)

	if len(entities) == 0 {
		errs = append(errs, errors.New("entity_types must not be empty"))
	}
	for _, c := range f.EUJurisdictions {
		if _, ok := countries[c]; !ok {
			errs = append(errs, fmt.Errorf("eu_jurisdictions: undeclared country %q", c))
		}
	}
	for entity := range f.Documents {
		if _, ok := entities[entity]; !ok {
			errs = append(errs, fmt.Errorf("documents: undeclared entity type %q", entity))
		}
	}
	for _, entity := range f.EntityTypes {
		if _, ok := f.Documents[entity]; !ok {
			errs = append(errs, fmt.Errorf("documents: no list for entity type %q", entity))
		}
	}
	for product := range f.Defaults {
		if _, ok := products[product]; !ok {
			errs = append(errs, fmt.Errorf("defaults: undeclared product category %q", product))
		}
	}

	seen := make(map[Classification]struct{}, len(f.Rules))
	for i, rule := range f.Rules {
		if _, ok := countries[rule.Country]; !ok {
			errs = append(errs, fmt.Errorf("rule %d: undeclared country %q", i, rule.Country))
		}
		if _, ok := entities[rule.EntityType]; !ok {
			errs = append(errs, fmt.Errorf("rule %d: undeclared entity type %q", i, rule.EntityType))
		}
		if _, ok := products[rule.ProductCategory]; !ok {
			errs = append(errs, fmt.Errorf("rule %d: undeclared product category %q", i, rule.ProductCategory))
		}
		key := Classification{rule.Country, rule.EntityType, rule.ProductCategory}
		if _, dup := seen[key]; dup {
			errs = append(errs, fmt.Errorf("rule %d: duplicate entry for %v", i, key))
		}
		seen[key] = struct{}{}
	}
	return errors.Join(errs...)
}

// RequirementsFor returns the checklist for c. The exact triple is looked up
// first, then the product category default; EU jurisdictions always carry
// GDPR. Documents depend on the entity type alone. An entity type the table
// does not declare yields ErrUnknownEntityType.
func (r *Rules) RequirementsFor(c Classification) (Requirements, error) {
	docs, ok := r.documents[c.EntityType]
	if !ok {
		return Requirements{}, fmt.Errorf("%w: %q", apperrors.ErrUnknownEntityType, c.EntityType)
	}

	compliance, ok := r.rules[c]
	if !ok {
		compliance = r.defaults[c.ProductCategory]
	}
	compliance = slices.Clone(compliance)
	if _, eu := r.eu[c.Country]; eu && !slices.Contains(compliance, "GDPR") {
		compliance = append(compliance, "GDPR")
	}

	return Requirements{
		Documents:  slices.Clone(docs),
		Compliance: normalize(compliance),
	}, nil
}

// Options returns the declared enumerations.
func (r *Rules) Options() Options {
	return Options{
		Countries:         slices.Clone(r.options.Countries),
		EntityTypes:       slices.Clone(r.options.EntityTypes),
		ProductCategories: slices.Clone(r.options.ProductCategories),
	}
}

// normalize returns a sorted, deduplicated, non-nil copy.
func normalize(in []string) []string {
	out := make([]string, 0, len(in))
	out = append(out, in...)
	sort.Strings(out)
	return slices.Compact(out)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
