package verr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathRendering(t *testing.T) {
	p := Root("message", "catalog").Index("bpp/providers", 0).Index("items", 2).Key("price").Key("currency")
	assert.Equal(t, "message_catalog_bpp/providers0_items2_price_currency", p.String())
	assert.Equal(t, "message > catalog > bpp/providers0 > items2 > price > currency", p.Human())
}

func TestPathIsImmutable(t *testing.T) {
	base := Root("message")
	a := base.Key("a")
	b := base.Key("b")
	assert.Equal(t, "message", base.String())
	assert.Equal(t, "message_a", a.String())
	assert.Equal(t, "message_b", b.String())
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	assert.True(t, c.IsEmpty())

	c.Record(Root("context", "city"), "bad city")
	c.Recordf(Root("context", "ttl"), "missing %s", "ttl")
	c.RecordKey("context", "missing context")

	other := NewCollector()
	other.Record(Root("message"), "missing message")
	c.Merge(other)
	c.Merge(nil)

	assert.False(t, c.IsEmpty())
	assert.Equal(t, 4, c.Len())
	assert.Equal(t, []ValidationError{
		{Key: "context_city", Message: "bad city"},
		{Key: "context_ttl", Message: "missing ttl"},
		{Key: "context", Message: "missing context"},
		{Key: "message", Message: "missing message"},
	}, c.All())
}

func TestCollectorKeepsDuplicates(t *testing.T) {
	c := NewCollector()
	c.Record(Root("x"), "one")
	c.Record(Root("x"), "one")
	assert.Equal(t, 2, c.Len())
}
