// Package recon reconciles an in-memory desired-state collection against
// rows persisted in the backing store, producing the minimal set of
// create/update/delete operations that converges the store to the desired
// state.
//
// # Algorithm
//
// A pass builds an identity index over the desired objects, then streams
// persisted rows in batches inside one transaction. Each row's natural-key
// identity is derived with the same extraction used for desired objects:
// matched rows are updated, or left alone when already converged (consuming
// the index entry at most once either way), and unmatched rows are stale and
// deleted when the strategy allows. After the
// commit, every index entry never matched to a row is created in a second
// transaction. The diff is set-based; correctness never depends on the
// interleaving order of scanned rows.
//
// # Guards
//
// A per-pass uniqueness guard catches primary keys observed twice (a
// non-distinct source query), and an integrity guard verifies required
// foreign-key columns before every write. Under the strict policy a
// violation aborts the enclosing transaction; under the lenient policy the
// offending entry is logged, dropped, and counted in Result.Skipped.
//
// # Full-replacement mode
//
// A collection carrying the complete universe of identities bypasses the
// per-row diff: every persisted row whose identity lies outside the universe
// is deleted in bounded per-transaction batches.
//
// # Usage
//
//	rec := recon.New(db, logger, recon.Config{Policy: "strict"})
//	col := &recon.Collection{
//	    Name:       "devices",
//	    Table:      "devices",
//	    KeyColumns: []string{"serial_number"},
//	    Objects:    objects,
//	    Strategy:   recon.Strategy{CreateAllowed: true, DeleteAllowed: true},
//	}
//	if err := rec.Reconcile(ctx, col); err != nil {
//	    return err
//	}
//	// col.Result holds the created/updated/deleted sequences.
//
// The package does not retry; retry policy belongs to the caller. With soft
// deletion configured, already-deleted rows are excluded from the scan so
// repeated passes stay idempotent. Duplicate creation across a
// crash between the two phases is prevented by a store-level uniqueness
// constraint on the natural key, not by this package.
package recon
