package schemagate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ondc-conformance/internal/model"
	"ondc-conformance/internal/verr"
)

func TestCityValidation(t *testing.T) {
	v := newTestValidator(t)
	cases := []struct {
		city   string
		errors int
	}{
		{"std:080", 0},
		{"std:011", 0},
		{"xyz:080", 1},
		{"std:999", 1},
		{"xyz:999", 2},
		{"std080", 1},
		{"std:080:1", 1},
	}
	for _, tc := range cases {
		doc := fixture(t, "on_search.json")
		set(t, doc, "context.city", tc.city)
		errs := onSearchContextErrors(t, v, doc)
		assert.Len(t, errs, tc.errors, tc.city)
		for _, e := range errs {
			assert.Equal(t, "context_city", e.Key)
		}
	}

	doc := fixture(t, "on_search.json")
	set(t, doc, "context.city", del)
	assert.Equal(t, []string{"context_city"}, keys(onSearchContextErrors(t, v, doc)))
}

func TestRoutingIDsAndURIs(t *testing.T) {
	v := newTestValidator(t)
	cases := []struct {
		field string
		value any
		ok    bool
	}{
		{"bap_id", "https://x.com", false},
		{"bap_id", "WWW.buyer.com", false},
		{"bap_id", "buyer.com", true},
		{"bpp_id", "http-seller", false},
		{"bap_uri", "x.com", false},
		{"bap_uri", "https://x.com", true},
		{"bpp_uri", "http://x.com", false},
		{"bpp_uri", 42, false},
	}
	for _, tc := range cases {
		doc := fixture(t, "on_search.json")
		set(t, doc, "context."+tc.field, tc.value)
		errs := keys(onSearchContextErrors(t, v, doc))
		if tc.ok {
			assert.Empty(t, errs, "%s=%v", tc.field, tc.value)
		} else {
			assert.Equal(t, []string{"context_" + tc.field}, errs, "%s=%v", tc.field, tc.value)
		}
	}
}

func TestContextLiteralsAndTimestamp(t *testing.T) {
	v := newTestValidator(t)
	doc := fixture(t, "on_search.json")
	set(t, doc, "context.domain", "ONDC:RET10")
	set(t, doc, "context.action", "search")
	set(t, doc, "context.country", "USA")
	set(t, doc, "context.core_version", "1.1.0")
	set(t, doc, "context.timestamp", "2024-02-30T10:00:00.000Z")
	assert.ElementsMatch(t, []string{
		"context_domain",
		"context_action",
		"context_country",
		"context_core_version",
		"context_timestamp",
	}, keys(onSearchContextErrors(t, v, doc)))
}

func TestParseTimestamp(t *testing.T) {
	for _, s := range []string{"2024-01-01T00:00:00.000Z", "1970-01-01T00:00:00.000Z"} {
		assert.True(t, IsValidTimestamp(s), s)
	}
	for _, s := range []string{
		"2024-01-01T00:00:00Z",
		"2024-01-01T00:00:00.000+05:30",
		"2024-13-01T00:00:00.000Z",
		"1969-12-31T23:59:59.999Z",
		"",
	} {
		assert.False(t, IsValidTimestamp(s), s)
	}
}

func statusContext(t *testing.T, v *Validator, doc map[string]any, anchorTS string) []verr.ValidationError {
	t.Helper()
	env := node(t, doc)
	return v.ValidateContext(env.Context(), ContextRules{Kind: model.KindOnStatus, AnchorTimestamp: anchorTS}).All()
}

func TestOnStatusContext(t *testing.T) {
	v := newTestValidator(t)

	t.Run("valid", func(t *testing.T) {
		assert.Empty(t, statusContext(t, v, fixture(t, "on_status.json"), "2024-01-10T10:00:00.000Z"))
	})

	t.Run("ids and ttl required", func(t *testing.T) {
		doc := fixture(t, "on_status.json")
		set(t, doc, "context.transaction_id", 7)
		set(t, doc, "context.message_id", "")
		set(t, doc, "context.ttl", del)
		assert.ElementsMatch(t, []string{
			"context_transaction_id",
			"context_message_id",
			"context_ttl",
		}, keys(statusContext(t, v, doc, "")))
	})

	t.Run("timestamp must be after the anchor", func(t *testing.T) {
		doc := fixture(t, "on_status.json")
		set(t, doc, "context.timestamp", "2024-01-10T10:00:00.000Z")
		errs := statusContext(t, v, doc, "2024-01-10T10:00:00.000Z")
		require.Len(t, errs, 1)
		assert.Equal(t, "context_timestamp", errs[0].Key)

		set(t, doc, "context.timestamp", "2024-01-10T10:00:00.001Z")
		assert.Empty(t, statusContext(t, v, doc, "2024-01-10T10:00:00.000Z"))
	})
}
