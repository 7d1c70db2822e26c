package recon

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Reconciler converges the backing store to a collection's desired state,
// producing the minimal set of create/update/delete operations. One logical
// worker drives each Reconcile call; independent calls over disjoint
// identity spaces may run concurrently against the store.
type Reconciler struct {
	db     *gorm.DB
	log    *zap.Logger
	policy Policy
	cfg    Config
}

// New creates a Reconciler. The violation policy comes from the configuration
// value, never from ambient state.
func New(db *gorm.DB, log *zap.Logger, cfg Config) *Reconciler {
	return &Reconciler{
		db:     db,
		log:    log,
		policy: ParsePolicy(cfg.Policy),
		cfg:    cfg,
	}
}

// indexEntry pairs a desired object with the mutable attribute copy the
// engine writes. Writing the copy keeps the caller's objects read-only and
// gives the reconnect hook a place to patch foreign keys.
type indexEntry struct {
	obj   *Object
	attrs Attributes
}

// Reconcile runs one pass over the collection. Two transaction boundaries
// exist per normal pass: the update/delete phase, then the create phase. A
// crash between them is recoverable; re-running the pass converges, provided
// the store enforces a uniqueness constraint on the natural key.
func (r *Reconciler) Reconcile(ctx context.Context, col *Collection) error {
	if col == nil || (len(col.Objects) == 0 && col.Universe == nil) {
		return nil
	}

	col.Result.reset()

	log := r.log.With(
		zap.String("collection", col.Name),
		zap.String("table", col.Table),
		zap.String("pass_id", uuid.NewString()),
	)
	log.Info("reconcile pass started",
		zap.Int("desired", len(col.Objects)),
		zap.Bool("create_allowed", col.Strategy.CreateAllowed),
		zap.Bool("delete_allowed", col.Strategy.DeleteAllowed),
		zap.Bool("full_replacement", col.Universe != nil),
		zap.String("policy", string(r.policy)),
	)

	// Full-replacement mode bypasses the per-row diff entirely.
	if col.Universe != nil {
		deleted, err := newPurger(r.db, col, log, r.cfg).purge(ctx, col.Universe)
		if err != nil {
			log.Error("purge failed", zap.Int64("deleted", deleted), zap.Error(err))
			return fmt.Errorf("reconcile %s: purge: %w", col.Name, err)
		}
		log.Info("purge finished", zap.Int64("deleted", deleted))
		return nil
	}

	index := r.buildIndex(col)

	if err := r.updateDeletePhase(ctx, col, index, log); err != nil {
		log.Error("update/delete phase failed",
			zap.Int("desired", len(col.Objects)),
			zap.Error(err),
		)
		return fmt.Errorf("reconcile %s: update/delete phase: %w", col.Name, err)
	}
	log.Info("update/delete phase committed",
		zap.Int("updated", len(col.Result.Updated)),
		zap.Int("deleted", len(col.Result.Deleted)),
		zap.Int("unmatched", len(index)),
	)

	// Cross-record remapping point: the hook sees exactly the entries that
	// matched no persisted row, before any of them is created.
	if col.Reconnect != nil && len(index) > 0 {
		remaining := make(map[Identity]*Object, len(index))
		attrs := make(map[Identity]Attributes, len(index))
		for id, e := range index {
			remaining[id] = e.obj
			attrs[id] = e.attrs
		}
		col.Reconnect(col, remaining, attrs)
	}

	if col.Strategy.CreateAllowed && len(index) > 0 {
		if err := r.createPhase(ctx, col, index, log); err != nil {
			log.Error("create phase failed",
				zap.Int("unmatched", len(index)),
				zap.Error(err),
			)
			return fmt.Errorf("reconcile %s: create phase: %w", col.Name, err)
		}
	}

	log.Info("reconcile pass finished",
		zap.Int("created", len(col.Result.Created)),
		zap.Int("updated", len(col.Result.Updated)),
		zap.Int("deleted", len(col.Result.Deleted)),
		zap.Int("skipped", col.Result.Skipped),
	)
	return nil
}

// buildIndex maps identity to (object, attribute copy) over all desired
// objects. O(n) in the collection size.
func (r *Reconciler) buildIndex(col *Collection) map[Identity]indexEntry {
	index := make(map[Identity]indexEntry, len(col.Objects))
	for _, obj := range col.Objects {
		id := col.IdentityOf(obj.Attributes)
		index[id] = indexEntry{obj: obj, attrs: obj.Attributes.Clone()}
	}
	return index
}

// updateDeletePhase streams persisted rows inside one transaction, matching
// each against the index. Matched rows are updated (at most once; the entry
// is consumed), unmatched rows are stale and deleted when allowed.
func (r *Reconciler) updateDeletePhase(ctx context.Context, col *Collection, index map[Identity]indexEntry, log *zap.Logger) error {
	mark := col.Result.mark()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		uniq := newUniquenessGuard(r.policy, log)
		integ := newIntegrityGuard(r.policy, log, col.RequiredForeignKeys)
		w := newRecordWriter(tx, col)
		sc := newScanner(tx, col, r.cfg)

		for {
			rows, err := sc.next()
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				return nil
			}

			for _, row := range rows {
				ok, err := uniq.check(row.pk)
				if err != nil {
					return err
				}
				if !ok {
					// Lenient duplicate: the row is neither matched,
					// updated, nor deleted.
					col.Result.Skipped++
					continue
				}

				id := col.IdentityOf(row.attrs)
				entry, found := index[id]
				if !found {
					if col.Strategy.DeleteAllowed {
						if err := w.delete(row.pk, id); err != nil {
							return err
						}
					}
					continue
				}

				// At-most-once consumption: a second row with the same
				// identity would trip the store's own uniqueness, and a
				// consumed entry can no longer be created.
				delete(index, id)

				ok, err = integ.check(id, entry.attrs)
				if err != nil {
					return err
				}
				if !ok {
					col.Result.Skipped++
					continue
				}

				// Already converged rows are a no-op; an unconditional
				// update would make repeated passes report phantom work.
				if attrsEqual(entry.attrs, row.attrs) {
					continue
				}

				if err := w.update(row.pk, id, entry.attrs); err != nil {
					return err
				}
			}
		}
	})
	if err != nil {
		col.Result.rollbackTo(mark)
	}
	return err
}

// createPhase creates every desired entry never matched to a persisted row,
// in the collection's original object order.
func (r *Reconciler) createPhase(ctx context.Context, col *Collection, index map[Identity]indexEntry, log *zap.Logger) error {
	mark := col.Result.mark()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		integ := newIntegrityGuard(r.policy, log, col.RequiredForeignKeys)
		w := newRecordWriter(tx, col)

		for _, obj := range col.Objects {
			id := col.IdentityOf(obj.Attributes)
			entry, remaining := index[id]
			if !remaining {
				continue
			}

			ok, err := integ.check(id, entry.attrs)
			if err != nil {
				return err
			}
			if !ok {
				col.Result.Skipped++
				continue
			}

			if _, err := w.create(id, entry.attrs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		col.Result.rollbackTo(mark)
	}
	return err
}
