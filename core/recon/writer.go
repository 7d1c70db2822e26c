package recon

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// recordWriter performs create/update/delete against single persisted rows,
// stamping the bookkeeping columns the model declares support for. All writes
// run inside the transaction the writer was created with, and every applied
// mutation is appended to the collection's result sequences.
type recordWriter struct {
	tx  *gorm.DB
	col *Collection
	now time.Time
}

func newRecordWriter(tx *gorm.DB, col *Collection) *recordWriter {
	return &recordWriter{tx: tx, col: col, now: time.Now()}
}

// dateOf truncates a timestamp to its calendar date for *_on columns.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// create persists a new row from the desired attributes plus created/updated
// stamps and the type discriminator. Returns the generated primary key.
func (w *recordWriter) create(id Identity, attrs Attributes) (int64, error) {
	row := make(map[string]any, len(attrs)+5)
	for k, v := range attrs {
		row[k] = v
	}
	caps := w.col.Capabilities
	if caps.CreatedAt {
		row["created_at"] = w.now
	}
	if caps.CreatedOn {
		row["created_on"] = dateOf(w.now)
	}
	if caps.UpdatedAt {
		row["updated_at"] = w.now
	}
	if caps.UpdatedOn {
		row["updated_on"] = dateOf(w.now)
	}
	if caps.TypeColumn {
		row["type"] = w.col.TypeValue
	}

	if err := w.tx.Table(w.col.Table).Create(row).Error; err != nil {
		return 0, fmt.Errorf("create %q: %w", id, err)
	}

	// Map-based creates do not back-fill the generated key; read it back by
	// natural key inside the same transaction.
	pk, err := w.lookupPK(attrs)
	if err != nil {
		return 0, fmt.Errorf("create %q: resolve generated key: %w", id, err)
	}

	w.col.Result.Created = append(w.col.Result.Created, Change{Identity: id, PK: pk})
	return pk, nil
}

// update patches the row in place with the desired attributes plus refreshed
// update stamps.
func (w *recordWriter) update(pk int64, id Identity, attrs Attributes) error {
	row := make(map[string]any, len(attrs)+2)
	for k, v := range attrs {
		row[k] = v
	}
	caps := w.col.Capabilities
	if caps.UpdatedAt {
		row["updated_at"] = w.now
	}
	if caps.UpdatedOn {
		row["updated_on"] = dateOf(w.now)
	}

	err := w.tx.Table(w.col.Table).
		Where(w.col.pkColumn()+" = ?", pk).
		Updates(row).Error
	if err != nil {
		return fmt.Errorf("update %q (pk=%d): %w", id, pk, err)
	}

	w.col.Result.Updated = append(w.col.Result.Updated, Change{Identity: id, PK: pk})
	return nil
}

// delete removes the row using the collection's configured delete method.
func (w *recordWriter) delete(pk int64, id Identity) error {
	var err error
	if w.col.deleteMethod() == DeleteSoft {
		err = w.tx.Table(w.col.Table).
			Where(w.col.pkColumn()+" = ?", pk).
			Updates(map[string]any{w.col.softDeleteColumn(): w.now}).Error
	} else {
		err = w.tx.Table(w.col.Table).
			Where(w.col.pkColumn()+" = ?", pk).
			Delete(nil).Error
	}
	if err != nil {
		return fmt.Errorf("delete %q (pk=%d): %w", id, pk, err)
	}

	w.col.Result.Deleted = append(w.col.Result.Deleted, Change{Identity: id, PK: pk})
	return nil
}

// lookupPK resolves the store-assigned primary key for a natural key.
func (w *recordWriter) lookupPK(attrs Attributes) (int64, error) {
	q := w.tx.Table(w.col.Table).Select(w.col.pkColumn())
	for _, kc := range w.col.KeyColumns {
		q = q.Where(kc+" = ?", attrs[kc])
	}
	if w.col.deleteMethod() == DeleteSoft {
		q = q.Where(w.col.softDeleteColumn() + " IS NULL")
	}
	var pk int64
	if err := q.Take(&pk).Error; err != nil {
		return 0, err
	}
	return pk, nil
}
