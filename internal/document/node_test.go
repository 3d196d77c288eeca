package document

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ondc-conformance/internal/verr"
)

func TestParseRejectsNonObjects(t *testing.T) {
	for _, raw := range []string{`{`, `[]`, `"x"`, `{} {}`, ``, `{}]`, `{"a":1}}`, `{"a":1}x`} {
		_, err := Parse([]byte(raw))
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, verr.ErrParse), raw)
	}
}

func TestNodeAccessors(t *testing.T) {
	n, err := Parse([]byte(`{
		"s": "v", "e": "", "b": true, "num": 3, "nil": null,
		"arr": [1, "two"], "empty": [], "obj": {"k": "v"}
	}`))
	require.NoError(t, err)

	s, ok := n.Get("s").Str()
	assert.True(t, ok)
	assert.Equal(t, "v", s)

	_, ok = n.Get("e").NonEmptyStr()
	assert.False(t, ok)
	_, ok = n.Get("num").Str()
	assert.False(t, ok)

	b, ok := n.Get("b").Bool()
	assert.True(t, ok)
	assert.True(t, b)

	assert.Equal(t, Null, n.Get("nil").Kind())
	assert.True(t, n.Has("nil"))
	assert.False(t, n.Get("nil").Exists())
	assert.Equal(t, Missing, n.Get("absent").Kind())
	assert.False(t, n.Has("absent"))
	assert.Equal(t, Missing, n.Get("s").Get("deeper").Kind())

	els, ok := n.Get("arr").Elements()
	assert.True(t, ok)
	require.Len(t, els, 2)
	assert.Equal(t, Number, els[0].Kind())
	assert.Equal(t, String, els[1].Kind())

	_, ok = n.Get("empty").NonEmptyElements()
	assert.False(t, ok)

	assert.True(t, n.Get("obj").IsObject())
	assert.Equal(t, []string{"arr", "b", "e", "empty", "nil", "num", "obj", "s"}, n.Keys())
}

func TestProviderViews(t *testing.T) {
	n, err := Parse([]byte(`{"bpp/providers": [{
		"categories": [{"id": "c1"}, {"id": "c2"}, {"id": 3}],
		"items": [{"id": "i1", "tags": [{"code": "origin", "list": [{"code": "country", "value": "IND"}]}]}]
	}]}`))
	require.NoError(t, err)

	providers, ok := Catalog{n}.ProviderList()
	require.True(t, ok)
	require.Len(t, providers, 1)

	ids := providers[0].CategoryIDs()
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, "c1")

	items, ok := providers[0].Items()
	require.True(t, ok)
	tags, ok := items[0].Tags()
	require.True(t, ok)
	list, ok := tags[0].List()
	require.True(t, ok)
	code, _ := list[0].Get("code").Str()
	assert.Equal(t, "country", code)

	_, ok = providers[0].Locations()
	assert.False(t, ok)
}
