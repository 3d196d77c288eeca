// Package processing runs one document through the context and domain
// validators and turns the merged violations into a ValidationReport.
package processing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ondc-conformance/internal/anchor"
	"ondc-conformance/internal/document"
	"ondc-conformance/internal/metrics"
	"ondc-conformance/internal/model"
	"ondc-conformance/internal/schemagate"
	"ondc-conformance/internal/seqstore"
	"ondc-conformance/internal/verr"
)

// Violation keys produced here rather than by a validator.
const (
	keyAnchor    = "on_confirm_json_file"
	keyTimestamp = "context_timestamp"
)

// Request is one document to validate.
type Request struct {
	Kind model.Kind
	// Stage is the lifecycle stage an on_status message reports. When empty
	// it is read from the first fulfillment state code, then the order state.
	Stage string
	Body  []byte
}

// Engine is safe for concurrent use.
type Engine struct {
	validator *schemagate.Validator
	sequencer *seqstore.Sequencer
	anchors   anchor.Source
	now       func() time.Time
}

// NewEngine wires the validators to the stateful collaborators. anchors and
// sequencer may be nil, in which case on_status cross-message checks report
// the missing anchor and the ordering check is skipped.
func NewEngine(v *schemagate.Validator, sequencer *seqstore.Sequencer, anchors anchor.Source) *Engine {
	return &Engine{validator: v, sequencer: sequencer, anchors: anchors, now: time.Now}
}

// Validate returns every violation found in req.Body. The only error is a
// document that cannot be parsed (wrapping verr.ErrParse) or an unknown kind.
func (e *Engine) Validate(ctx context.Context, req Request) (*model.ValidationReport, error) {
	start := e.now()
	if _, err := model.ParseKind(string(req.Kind)); err != nil {
		return nil, err
	}
	root, err := document.Parse(req.Body)
	if err != nil {
		metrics.ParseFailure()
		return nil, err
	}
	env := document.Envelope{Node: root}

	c := verr.NewCollector()
	hasContext := presence(c, env.Context(), "context")
	hasMessage := presence(c, env.Message(), "message")

	stage := req.Stage
	switch req.Kind {
	case model.KindOnSearch:
		if hasContext {
			c.Merge(e.validator.ValidateContext(env.Context(), schemagate.ContextRules{Kind: req.Kind}))
		}
		if hasMessage {
			c.Merge(e.validator.ValidateCatalog(env.Message(), env.Context().Get("timestamp").Text()))
		}
	case model.KindOnStatus:
		if stage == "" {
			stage = e.reportedStage(env.Message())
		}
		e.validateStatus(ctx, c, env, hasContext, hasMessage, stage)
	}

	errs := c.All()
	report := &model.ValidationReport{
		ID:        uuid.NewString(),
		Kind:      req.Kind,
		Stage:     stage,
		Context:   contextMeta(env.Context()),
		Valid:     len(errs) == 0,
		Errors:    errs,
		CheckedAt: e.now().UTC().Format(time.RFC3339Nano),
	}
	metrics.ObserveValidation(string(req.Kind), len(errs), e.now().Sub(start))
	return report, nil
}

func (e *Engine) validateStatus(ctx context.Context, c *verr.Collector, env document.Envelope, hasContext, hasMessage bool, stage string) {
	txn := env.Context().Get("transaction_id").Text()
	confirmed := e.lookupAnchor(ctx, c, txn)

	rules := schemagate.ContextRules{Kind: model.KindOnStatus}
	if confirmed != nil {
		rules.AnchorTimestamp = confirmed.Timestamp
	}
	if hasContext {
		c.Merge(e.validator.ValidateContext(env.Context(), rules))
	}
	if hasMessage {
		c.Merge(e.validator.ValidateOrder(env.Message(), confirmed))
	}

	timestamp := env.Context().Get("timestamp").Text()
	if e.sequencer == nil || !schemagate.IsValidTimestamp(timestamp) {
		return
	}
	scope := txn
	if confirmed != nil && confirmed.OrderID != "" {
		scope = confirmed.OrderID
	} else if id := env.Message().Get("order").Get("id").Text(); id != "" {
		scope = id
	}
	scope = seqstore.SanitizeScope(scope)

	violations, err := e.sequencer.Observe(ctx, scope, stage, timestamp)
	switch {
	case errors.Is(err, seqstore.ErrUnknownStage):
		c.RecordKey(keyTimestamp, fmt.Sprintf("lifecycle stage %q is not one of the known order stages", stage))
	case err != nil:
		metrics.SequenceFailure()
		zap.S().Errorw("could not record lifecycle timestamp", "scope", scope, "stage", stage, "error", err)
		c.RecordKey(keyTimestamp, "could not record lifecycle timestamp")
	}
	for _, v := range violations {
		c.RecordKey(keyTimestamp, "Timestamp should be greater than all previous order states: "+v.String())
	}
}

func (e *Engine) lookupAnchor(ctx context.Context, c *verr.Collector, txn string) *anchor.Anchor {
	if e.anchors == nil {
		c.RecordKey(keyAnchor, "no on_confirm source configured")
		return nil
	}
	a, err := e.anchors.Get(ctx, txn)
	switch {
	case err == nil:
		return a
	case errors.Is(err, anchor.ErrNotFound):
		c.RecordKey(keyAnchor, "on_confirm message not found for this transaction")
	default:
		zap.S().Errorw("could not load on_confirm", "transaction_id", txn, "error", err)
		c.RecordKey(keyAnchor, "on_confirm message could not be read")
	}
	return nil
}

func presence(c *verr.Collector, n document.Node, key string) bool {
	if n.IsObject() {
		return true
	}
	c.Record(verr.Root(key), "missing required field "+key)
	return false
}

// reportedStage picks the stage a message claims when the caller did not
// say: the first known of the fulfillment state code and the order state.
func (e *Engine) reportedStage(message document.Node) string {
	order := message.Get("order")
	var candidates []string
	if fs, ok := order.Get("fulfillments").Elements(); ok && len(fs) > 0 {
		candidates = append(candidates, fs[0].Get("state").Get("descriptor").Get("code").Text())
	}
	candidates = append(candidates, order.Get("state").Text())
	for _, s := range candidates {
		if s != "" && e.sequencer != nil && e.sequencer.Known(s) {
			return s
		}
	}
	for _, s := range candidates {
		if s != "" {
			return s
		}
	}
	return ""
}

func contextMeta(ctx document.Node) model.ContextMeta {
	return model.ContextMeta{
		Domain:        ctx.Get("domain").Text(),
		Action:        ctx.Get("action").Text(),
		City:          ctx.Get("city").Text(),
		BapID:         ctx.Get("bap_id").Text(),
		BppID:         ctx.Get("bpp_id").Text(),
		TransactionID: ctx.Get("transaction_id").Text(),
		MessageID:     ctx.Get("message_id").Text(),
		Timestamp:     ctx.Get("timestamp").Text(),
	}
}
