package document

// Typed views over the node kinds the rule set distinguishes. A view is only
// a name for a Node; it does not assert the node is well formed.

type (
	Envelope    struct{ Node }
	Catalog     struct{ Node }
	Provider    struct{ Node }
	Item        struct{ Node }
	Location    struct{ Node }
	Category    struct{ Node }
	Tag         struct{ Node }
	Fulfillment struct{ Node }
	Order       struct{ Node }
)

func (e Envelope) Context() Node { return e.Get("context") }
func (e Envelope) Message() Node { return e.Get("message") }

func (c Catalog) Descriptor() Node   { return c.Get("bpp/descriptor") }
func (c Catalog) Fulfillments() Node { return c.Get("bpp/fulfillments") }
func (c Catalog) Providers() Node    { return c.Get("bpp/providers") }

// ProviderList returns the providers when present as a non-empty array.
func (c Catalog) ProviderList() ([]Provider, bool) {
	return viewsOf(c.Providers(), func(n Node) Provider { return Provider{n} })
}

func (p Provider) Locations() ([]Location, bool) {
	return viewsOf(p.Get("locations"), func(n Node) Location { return Location{n} })
}

func (p Provider) Categories() ([]Category, bool) {
	return viewsOf(p.Get("categories"), func(n Node) Category { return Category{n} })
}

func (p Provider) Items() ([]Item, bool) {
	return viewsOf(p.Get("items"), func(n Node) Item { return Item{n} })
}

func (p Provider) Fulfillments() ([]Fulfillment, bool) {
	return viewsOf(p.Get("fulfillments"), func(n Node) Fulfillment { return Fulfillment{n} })
}

// CategoryIDs collects the string ids of the provider's categories.
func (p Provider) CategoryIDs() map[string]struct{} {
	ids := map[string]struct{}{}
	cats, _ := p.Categories()
	for _, c := range cats {
		if id, ok := c.Get("id").Str(); ok {
			ids[id] = struct{}{}
		}
	}
	return ids
}

func (i Item) Tags() ([]Tag, bool) {
	return viewsOf(i.Get("tags"), func(n Node) Tag { return Tag{n} })
}

func (c Category) Tags() ([]Tag, bool) {
	return viewsOf(c.Get("tags"), func(n Node) Tag { return Tag{n} })
}

// List returns the tag's list entries.
func (t Tag) List() ([]Node, bool) {
	return t.Get("list").NonEmptyElements()
}

func viewsOf[T any](n Node, wrap func(Node) T) ([]T, bool) {
	els, ok := n.NonEmptyElements()
	if !ok {
		return nil, false
	}
	out := make([]T, len(els))
	for i, el := range els {
		out[i] = wrap(el)
	}
	return out, true
}
