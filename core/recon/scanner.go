package recon

import (
	"fmt"
	"sort"

	"inventory-sync/core/utils"

	"gorm.io/gorm"
)

// storeRow is one persisted row as seen by the scan. In bulk mode the
// attributes carry only the natural-key columns; in row mode the full row.
type storeRow struct {
	pk    int64
	attrs Attributes
}

// scanner streams persisted rows from the backing store in batches, paginated
// by primary key so rows deleted mid-scan never shift the cursor. No ordering
// guarantee is assumed beyond the pagination itself; the diff is set-based.
type scanner struct {
	tx        *gorm.DB
	col       *Collection
	batchSize int
	columns   []string // nil means select all columns
	cursor    int64
	done      bool
}

func newScanner(tx *gorm.DB, col *Collection, cfg Config) *scanner {
	s := &scanner{tx: tx, col: col}
	switch col.fetchMode() {
	case FetchRows:
		// Row-object mode: full rows, small fixed batches. For small
		// pre-materialized sets that need every column preserved.
		s.batchSize = cfg.rowBatchSize()
	default:
		// Bulk mode: only the columns the diff needs, large batches.
		s.batchSize = cfg.bulkBatchSize()
		s.columns = bulkColumns(col)
	}
	return s
}

// bulkColumns is the primary key plus every column the desired objects
// reference. Key columns drive matching; the rest drive the no-op
// comparison. Bookkeeping columns and anything else on the table are not
// fetched.
func bulkColumns(col *Collection) []string {
	seen := map[string]struct{}{col.pkColumn(): {}}
	columns := []string{col.pkColumn()}
	add := func(name string) {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			columns = append(columns, name)
		}
	}
	for _, kc := range col.KeyColumns {
		add(kc)
	}
	for _, obj := range col.Objects {
		for name := range obj.Attributes {
			add(name)
		}
	}
	sort.Strings(columns[1:])
	return columns
}

// next returns the next batch of rows, or an empty slice once the table is
// exhausted.
func (s *scanner) next() ([]storeRow, error) {
	if s.done {
		return nil, nil
	}

	q := s.tx.Table(s.col.Table)
	if s.columns != nil {
		q = q.Select(s.columns)
	}
	// Rows already soft-deleted are settled; visiting them again would
	// re-delete on every pass.
	if s.col.deleteMethod() == DeleteSoft {
		q = q.Where(s.col.softDeleteColumn() + " IS NULL")
	}

	var batch []map[string]any
	err := q.Where(s.col.pkColumn()+" > ?", s.cursor).
		Order(s.col.pkColumn()).
		Limit(s.batchSize).
		Find(&batch).Error
	if err != nil {
		return nil, fmt.Errorf("scan %s after pk=%d: %w", s.col.Table, s.cursor, err)
	}

	if len(batch) < s.batchSize {
		s.done = true
	}

	rows := make([]storeRow, 0, len(batch))
	for _, m := range batch {
		pk := utils.ToInt64(m[s.col.pkColumn()])
		rows = append(rows, storeRow{pk: pk, attrs: Attributes(m)})
		if pk > s.cursor {
			s.cursor = pk
		}
	}
	return rows, nil
}
