package refdata

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"ondc-conformance/internal/verr"
)

// File names inside a reference data directory.
const (
	CitiesFile             = "cities.json"
	CategoriesFile         = "categories.json"
	AttributesFile         = "attributes.json"
	CategoryAttributesFile = "category_attributes.json"
	AttributeColumnsFile   = "attributes_column.json"
	AttributeValuesDir     = "attribute_values"
)

const defaultDomainCacheSize = 256

// CityRecord is one row of the city registry.
type CityRecord struct {
	City    string `json:"City"`
	StdCode string `json:"STD Code"`
	Pincode int64  `json:"Pincode"`
}

// Options tunes a Tables instance.
type Options struct {
	DomainCacheSize int
	Policy          MissingDomainPolicy
}

// Tables is the immutable reference bundle. Core tables are read once at
// construction; attribute value domains are read on first use and memoized.
type Tables struct {
	stdCodes   map[string]struct{}
	pincodes   map[string]struct{}
	categories map[string]struct{}
	attributes map[string]struct{}
	mandatory  map[string][]string
	policy     MissingDomainPolicy

	domains *lru.Cache[string, domainEntry]
	loader  func(name string) (*Domain, bool, error)
}

type domainEntry struct {
	domain *Domain
	found  bool
}

var _ Provider = (*Tables)(nil)

// Load reads the reference tables from dir.
func Load(dir string, opts Options) (*Tables, error) {
	var cities []CityRecord
	if err := readJSON(filepath.Join(dir, CitiesFile), &cities); err != nil {
		return nil, err
	}
	var categories []string
	if err := readJSON(filepath.Join(dir, CategoriesFile), &categories); err != nil {
		return nil, err
	}
	var attributes []string
	if err := readJSON(filepath.Join(dir, AttributesFile), &attributes); err != nil {
		return nil, err
	}
	var matrix []map[string]string
	if err := readJSON(filepath.Join(dir, CategoryAttributesFile), &matrix); err != nil {
		return nil, err
	}
	var columns map[string]string
	if err := readJSON(filepath.Join(dir, AttributeColumnsFile), &columns); err != nil {
		return nil, err
	}

	t, err := newTables(opts)
	if err != nil {
		return nil, err
	}
	t.indexCities(cities)
	t.indexList(t.categories, categories, false)
	t.indexList(t.attributes, attributes, true)
	t.indexMatrix(matrix, columns)

	valuesDir := filepath.Join(dir, AttributeValuesDir)
	t.loader = func(name string) (*Domain, bool, error) {
		return loadDomainFile(valuesDir, name)
	}
	zap.S().Infof("refdata: loaded %d cities, %d categories, %d attributes from %s",
		len(cities), len(categories), len(attributes), dir)
	return t, nil
}

// Static is an in-memory description of the reference tables.
type Static struct {
	Cities     []CityRecord
	Categories []string
	Attributes []string
	// Matrix rows carry a "category" key plus column -> "M"/"O" flags.
	Matrix  []map[string]string
	Columns map[string]string
	// Domains is keyed by normalized attribute name.
	Domains map[string]*Domain
}

// NewStatic builds Tables from in-memory data.
func NewStatic(s Static, opts Options) (*Tables, error) {
	t, err := newTables(opts)
	if err != nil {
		return nil, err
	}
	t.indexCities(s.Cities)
	t.indexList(t.categories, s.Categories, false)
	t.indexList(t.attributes, s.Attributes, true)
	t.indexMatrix(s.Matrix, s.Columns)
	t.loader = func(name string) (*Domain, bool, error) {
		d, ok := s.Domains[name]
		if !ok || d == nil || d.Empty() {
			return nil, false, nil
		}
		return d, true, nil
	}
	return t, nil
}

func newTables(opts Options) (*Tables, error) {
	size := opts.DomainCacheSize
	if size <= 0 {
		size = defaultDomainCacheSize
	}
	cache, err := lru.New[string, domainEntry](size)
	if err != nil {
		return nil, fmt.Errorf("refdata: domain cache: %w", err)
	}
	policy := opts.Policy
	if policy == "" {
		policy = PolicySoft
	}
	return &Tables{
		stdCodes:   map[string]struct{}{},
		pincodes:   map[string]struct{}{},
		categories: map[string]struct{}{},
		attributes: map[string]struct{}{},
		mandatory:  map[string][]string{},
		policy:     policy,
		domains:    cache,
	}, nil
}

func (t *Tables) indexCities(cities []CityRecord) {
	for _, c := range cities {
		if c.StdCode != "" {
			t.stdCodes[c.StdCode] = struct{}{}
		}
		t.pincodes[strconv.FormatInt(c.Pincode, 10)] = struct{}{}
	}
}

func (t *Tables) indexList(dst map[string]struct{}, values []string, normalize bool) {
	for _, v := range values {
		if normalize {
			v = Normalize(v)
		}
		dst[v] = struct{}{}
	}
}

func (t *Tables) indexMatrix(matrix []map[string]string, columns map[string]string) {
	for _, row := range matrix {
		category := row["category"]
		if category == "" {
			continue
		}
		var codes []string
		for column, flag := range row {
			if column == "category" || flag != "M" {
				continue
			}
			code, ok := columns[column]
			if !ok || code == "" {
				code = column
			}
			codes = append(codes, code)
		}
		sort.Strings(codes)
		t.mandatory[category] = codes
	}
}

func (t *Tables) StdCodeExists(code string) bool {
	_, ok := t.stdCodes[code]
	return ok
}

// PincodeExists compares numerically, so "0560001" and "560001" are the same pincode.
func (t *Tables) PincodeExists(code string) bool {
	n, err := strconv.ParseInt(strings.TrimSpace(code), 10, 64)
	if err != nil {
		return false
	}
	_, ok := t.pincodes[strconv.FormatInt(n, 10)]
	return ok
}

func (t *Tables) IsCategory(id string) bool {
	_, ok := t.categories[id]
	return ok
}

func (t *Tables) IsAttribute(normalized string) bool {
	_, ok := t.attributes[normalized]
	return ok
}

func (t *Tables) MandatoryAttributes(categoryID string) []string {
	return append([]string(nil), t.mandatory[categoryID]...)
}

func (t *Tables) Policy() MissingDomainPolicy { return t.policy }

func (t *Tables) ValueDomain(normalized string) (*Domain, bool, error) {
	if e, ok := t.domains.Get(normalized); ok {
		return e.domain, e.found, nil
	}
	d, found, err := t.loader(normalized)
	if err != nil {
		// Not memoized: a transient read failure should not stick.
		return nil, false, err
	}
	t.domains.Add(normalized, domainEntry{domain: d, found: found})
	return d, found, nil
}

func loadDomainFile(dir, name string) (*Domain, bool, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return nil, false, nil
	}
	var raw map[string]json.RawMessage
	err := readJSON(filepath.Join(dir, name+".json"), &raw)
	if errors.Is(err, fs.ErrNotExist) {
		zap.S().Debugf("refdata: no value domain for attribute %q", name)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	d, err := decodeDomain(name, raw)
	if err != nil {
		return nil, false, fmt.Errorf("%w: attribute %s: %v", verr.ErrReference, name, err)
	}
	if d.Empty() {
		return nil, false, nil
	}
	return d, true, nil
}

func decodeDomain(name string, raw map[string]json.RawMessage) (*Domain, error) {
	d := &Domain{}
	switch name {
	case "colour":
		var pairs [][]string
		if body, ok := raw[name]; ok {
			if err := json.Unmarshal(body, &pairs); err != nil {
				return nil, err
			}
		}
		for _, p := range pairs {
			var c [2]string
			copy(c[:], p)
			d.Colours = append(d.Colours, c)
		}
	case "size":
		d.ByCategory = map[string][]string{}
		for key, body := range raw {
			var values []string
			if err := json.Unmarshal(body, &values); err != nil {
				return nil, err
			}
			if key == name {
				d.Values = values
				continue
			}
			d.ByCategory[key] = values
		}
		if len(d.ByCategory) == 0 {
			d.ByCategory = nil
		}
	default:
		if body, ok := raw[name]; ok {
			if err := json.Unmarshal(body, &d.Values); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s: %w", verr.ErrReference, path, err)
		}
		return fmt.Errorf("%w: read %s: %v", verr.ErrReference, path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", verr.ErrReference, path, err)
	}
	return nil
}
