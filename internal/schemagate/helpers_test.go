package schemagate

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"ondc-conformance/internal/document"
	"ondc-conformance/internal/refdata"
	"ondc-conformance/internal/verr"
)

func testTables(t *testing.T, policy refdata.MissingDomainPolicy) *refdata.Tables {
	t.Helper()
	tables, err := refdata.NewStatic(refdata.Static{
		Cities: []refdata.CityRecord{
			{City: "Bengaluru", StdCode: "080", Pincode: 560001},
			{City: "Bengaluru", StdCode: "080", Pincode: 560076},
			{City: "Delhi", StdCode: "011", Pincode: 110001},
		},
		Categories: []string{"Shirts", "T Shirts", "Jeans", "Sarees"},
		Attributes: []string{"Gender", "Colour", "Size", "Brand", "Size Chart", "Fabric"},
		Matrix: []map[string]string{
			{"category": "Shirts", "Gender": "M", "Colour": "M", "Size": "M", "Brand": "M", "Fabric": "O"},
			{"category": "Jeans", "Brand": "M"},
		},
		Columns: map[string]string{
			"Gender": "gender", "Colour": "colour", "Size": "size", "Brand": "brand", "Fabric": "fabric",
		},
		Domains: map[string]*refdata.Domain{
			"gender": {Values: []string{"male", "female", "unisex"}},
			"colour": {Colours: [][2]string{{"Red", "#FF0000"}, {"Navy Blue", "#000080"}}},
			"size": {
				Values:     []string{"S", "M", "L"},
				ByCategory: map[string][]string{"Shirts": {"S", "M", "L", "XL"}, "Jeans": {"30", "32", "34"}},
			},
		},
	}, refdata.Options{Policy: policy})
	require.NoError(t, err)
	return tables
}

func newTestValidator(t *testing.T) *Validator {
	return New(testTables(t, refdata.PolicySoft), WithFanOutLimit(4))
}

// fixture decodes testdata/<name> into a mutable tree.
func fixture(t *testing.T, name string) map[string]any {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	return doc
}

type deleteKey struct{}

// del removes the key when passed to set.
var del = deleteKey{}

// set replaces the value at a dot separated path. Numeric segments index
// arrays. Passing del removes the final key.
func set(t *testing.T, doc map[string]any, path string, value any) {
	t.Helper()
	segs := strings.Split(path, ".")
	var cur any = doc
	for i, seg := range segs {
		last := i == len(segs)-1
		switch node := cur.(type) {
		case map[string]any:
			if last {
				if _, ok := value.(deleteKey); ok {
					delete(node, seg)
				} else {
					node[seg] = value
				}
				return
			}
			cur = node[seg]
		case []any:
			idx, err := strconv.Atoi(seg)
			require.NoError(t, err, "segment %q of %s", seg, path)
			require.Less(t, idx, len(node), path)
			if last {
				node[idx] = value
				return
			}
			cur = node[idx]
		default:
			t.Fatalf("cannot descend into %s at %q", path, seg)
		}
	}
}

func node(t *testing.T, doc map[string]any) document.Envelope {
	t.Helper()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	n, err := document.Parse(raw)
	require.NoError(t, err)
	return document.Envelope{Node: n}
}

func keys(errs []verr.ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Key
	}
	return out
}

// catalogErrors validates the message.catalog part of doc.
func catalogErrors(t *testing.T, v *Validator, doc map[string]any) []verr.ValidationError {
	t.Helper()
	env := node(t, doc)
	return v.ValidateCatalog(env.Message(), env.Context().Get("timestamp").Text()).All()
}

func onSearchContextErrors(t *testing.T, v *Validator, doc map[string]any) []verr.ValidationError {
	t.Helper()
	env := node(t, doc)
	return v.ValidateContext(env.Context(), ContextRules{Kind: "on_search"}).All()
}

const (
	provider0 = "message.catalog.bpp/providers.0"
	item0     = provider0 + ".items.0"
	location0 = provider0 + ".locations.0"
	category0 = provider0 + ".categories.0"

	provider0Key = "message_catalog_bpp/providers0"
	item0Key     = provider0Key + "_items0"
	location0Key = provider0Key + "_locations0"
	category0Key = provider0Key + "_categories0"
)
