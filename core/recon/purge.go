package recon

import (
	"context"
	"fmt"

	"inventory-sync/core/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// purger implements full-replacement mode: given the complete universe of
// identities, every persisted row whose identity is outside it is deleted.
// Rows are streamed and deleted in bounded batches, one transaction per
// batch, to cap memory and lock duration.
type purger struct {
	db        *gorm.DB
	col       *Collection
	log       *zap.Logger
	batchSize int
}

func newPurger(db *gorm.DB, col *Collection, log *zap.Logger, cfg Config) *purger {
	return &purger{db: db, col: col, log: log, batchSize: cfg.purgeBatchSize()}
}

// purge deletes the complement of the universe and returns the deleted count.
func (p *purger) purge(ctx context.Context, universe []Identity) (int64, error) {
	member := make(map[Identity]struct{}, len(universe))
	for _, id := range universe {
		member[id] = struct{}{}
	}

	pkCol := p.col.pkColumn()
	columns := append([]string{pkCol}, p.col.KeyColumns...)

	var deleted int64
	var cursor int64
	for {
		var batchDeleted int64
		var last int64
		var short bool

		mark := p.col.Result.mark()
		err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			q := tx.Table(p.col.Table).
				Select(columns).
				Where(pkCol+" > ?", cursor)
			if p.col.deleteMethod() == DeleteSoft {
				q = q.Where(p.col.softDeleteColumn() + " IS NULL")
			}

			var batch []map[string]any
			err := q.Order(pkCol).
				Limit(p.batchSize).
				Find(&batch).Error
			if err != nil {
				return fmt.Errorf("purge scan %s after pk=%d: %w", p.col.Table, cursor, err)
			}

			short = len(batch) < p.batchSize
			w := newRecordWriter(tx, p.col)
			for _, m := range batch {
				pk := utils.ToInt64(m[pkCol])
				if pk > last {
					last = pk
				}
				id := p.col.IdentityOf(Attributes(m))
				if _, ok := member[id]; ok {
					continue
				}
				if err := w.delete(pk, id); err != nil {
					return err
				}
				batchDeleted++
			}
			return nil
		})
		if err != nil {
			p.col.Result.rollbackTo(mark)
			return deleted, err
		}

		deleted += batchDeleted
		if last > cursor {
			cursor = last
		}
		if short {
			return deleted, nil
		}
	}
}
