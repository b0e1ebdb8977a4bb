// Package reconcile holds the generic pieces of a two-sided reconciliation: an
// authoritative source and a store that is repaired to match it.
//
// # Components
//
// Engine: Index keys records, Keys lists them in order and Compare reports presence
// on each side plus a go-cmp diff when both sides hold a key.
//
// Plan: an ordered list of Actions with per-type counts. Apply executes a plan
// through an Executor, continuing past failures and returning them joined.
// Dry runs execute nothing.
//
// Gather: loads several indices concurrently before comparison starts.
//
// Guard: collapses overlapping runs over the same scope into one and keeps the
// last successful outcome per scope.
//
// # Usage Example
//
//	source := reconcile.Index(posts, func(p Post) string { return p.TS })
//	store := reconcile.Index(rows, func(r Row) string { return r.TS })
//	plan := reconcile.NewPlan()
//	for _, key := range reconcile.Keys(source) {
//	    p := reconcile.Compare(key, source, store)
//	    switch {
//	    case !p.StorePresent:
//	        plan.Add(reconcile.Action{Type: reconcile.ActionInsert, Key: key})
//	    case p.Mismatch != "":
//	        plan.Add(reconcile.Action{Type: reconcile.ActionUpdate, Key: key})
//	    }
//	}
//	n, err := reconcile.Apply(ctx, plan, executor, reconcile.Options{})
package reconcile
