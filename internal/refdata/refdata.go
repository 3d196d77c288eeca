// Package refdata serves the static ONDC retail reference tables: the
// city/std-code/pincode registry, the category enumeration, the
// category-attribute mandatory matrix and attribute value domains.
package refdata

import (
	"strings"
)

// Provider is the lookup contract the validators depend on.
type Provider interface {
	StdCodeExists(code string) bool
	PincodeExists(code string) bool
	// IsCategory reports whether id belongs to the item category enumeration.
	IsCategory(id string) bool
	// IsAttribute reports whether the normalized name is a known attribute.
	IsAttribute(normalized string) bool
	// MandatoryAttributes lists the attribute codes marked mandatory for a
	// category, already mapped through the column table.
	MandatoryAttributes(categoryID string) []string
	// ValueDomain returns the allowed values of an attribute. ok is false
	// when no domain is registered, which callers treat as "no constraint"
	// unless the policy says otherwise.
	ValueDomain(normalized string) (d *Domain, ok bool, err error)
	Policy() MissingDomainPolicy
}

// MissingDomainPolicy decides what an unregistered value domain means.
type MissingDomainPolicy string

const (
	// PolicySoft accepts any value when no domain is registered.
	PolicySoft MissingDomainPolicy = "soft"
	// PolicyStrict reports a violation when no domain is registered.
	PolicyStrict MissingDomainPolicy = "strict"
)

// Domain is the allowed-value set of one attribute.
type Domain struct {
	// Values is the flat list for ordinary attributes.
	Values []string
	// Colours holds [name, value] pairs; a match on either is accepted.
	Colours [][2]string
	// ByCategory scopes values to a category id (used by "size").
	ByCategory map[string][]string
}

// Allows reports whether value is in the domain for the given attribute and category.
func (d *Domain) Allows(attribute, categoryID, value string) bool {
	switch attribute {
	case "colour":
		for _, c := range d.Colours {
			if c[0] == value || c[1] == value {
				return true
			}
		}
		return false
	case "size":
		if len(d.ByCategory) == 0 {
			return contains(d.Values, value)
		}
		return contains(d.ByCategory[categoryID], value)
	default:
		return contains(d.Values, value)
	}
}

// Empty reports whether the domain carries no values at all.
func (d *Domain) Empty() bool {
	return len(d.Values) == 0 && len(d.Colours) == 0 && len(d.ByCategory) == 0
}

// Normalize lowercases an attribute code and replaces spaces with underscores.
func Normalize(code string) string {
	return strings.ReplaceAll(strings.ToLower(code), " ", "_")
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
