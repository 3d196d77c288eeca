package schemagate

import (
	"golang.org/x/sync/errgroup"

	"ondc-conformance/internal/verr"
)

// fanOut validates n siblings concurrently. Each branch writes to its own
// collector; the results are merged in index order once every branch has
// finished, so the returned order does not depend on scheduling. Branches
// never fail, so no sibling is ever cancelled.
func (v *Validator) fanOut(n int, branch func(i int, c *verr.Collector)) *verr.Collector {
	out := verr.NewCollector()
	if n == 0 {
		return out
	}
	locals := make([]*verr.Collector, n)
	var g errgroup.Group
	g.SetLimit(v.limit)
	for i := 0; i < n; i++ {
		i := i
		locals[i] = verr.NewCollector()
		g.Go(func() error {
			branch(i, locals[i])
			return nil
		})
	}
	_ = g.Wait()
	for _, l := range locals {
		out.Merge(l)
	}
	return out
}
