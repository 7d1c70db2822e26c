package recon

import (
	"strings"

	"inventory-sync/core/utils"
)

// Attributes maps column names to values for one entity.
type Attributes map[string]any

// Clone returns a shallow copy of the attribute map.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Identity is the joined natural-key tuple of an entity. It is the matching
// key between desired objects and persisted rows.
type Identity string

// identitySep separates natural-key components. Unit separator, so ordinary
// column values cannot collide across positions.
const identitySep = "\x1f"

// Object is one desired entity supplied by the caller. Objects are owned by
// the collection and are never mutated during a pass.
type Object struct {
	// Attributes holds the desired column values, keyed by column name.
	Attributes Attributes
}

// Capabilities declares which bookkeeping columns the target model supports.
// The writer only stamps columns the model declares.
type Capabilities struct {
	CreatedAt  bool // created_at timestamp
	CreatedOn  bool // created_on date
	UpdatedAt  bool // updated_at timestamp
	UpdatedOn  bool // updated_on date
	TypeColumn bool // polymorphic type discriminator
}

// Strategy controls which mutation classes a pass may perform.
type Strategy struct {
	// CreateAllowed permits creation of desired objects with no matching row.
	CreateAllowed bool
	// DeleteAllowed permits deletion of persisted rows with no matching object.
	DeleteAllowed bool
}

// DeleteMethod selects how stale rows are removed.
type DeleteMethod string

const (
	// DeleteHard removes the row from the table.
	DeleteHard DeleteMethod = "hard"
	// DeleteSoft stamps the collection's soft-delete column instead.
	DeleteSoft DeleteMethod = "soft"
)

// FetchMode selects how the scanner reads persisted rows.
type FetchMode string

const (
	// FetchBulk reads only the primary key and the columns the desired
	// objects reference, in large batches. Suited to large universes where
	// full rows are not needed.
	FetchBulk FetchMode = "bulk"
	// FetchRows reads full rows in small fixed batches, preserving every
	// column of the persisted entity.
	FetchRows FetchMode = "rows"
)

// ReconnectFunc is invoked between the update/delete phase and the create
// phase with the entries that matched no persisted row. Implementations may
// patch the attribute copies (remapping foreign keys after a dependency has
// been reconciled) before creation; the desired objects themselves stay
// read-only.
type ReconnectFunc func(c *Collection, remaining map[Identity]*Object, attrs map[Identity]Attributes)

// Collection is the desired state for one target table plus the knobs that
// control a reconciliation pass. It is built entirely by the caller before
// Reconcile is invoked, and accumulates the pass Result.
type Collection struct {
	// Name identifies the collection in logs and errors.
	Name string

	// Table is the target table in the backing store.
	Table string

	// PKColumn is the store-assigned primary key column. Defaults to "id".
	PKColumn string

	// KeyColumns is the ordered natural-key column list shared by desired
	// objects and persisted rows.
	KeyColumns []string

	// Objects is the ordered set of desired entities. Identities are assumed
	// unique; the caller pre-validates the desired side.
	Objects []*Object

	// Capabilities declares supported bookkeeping columns.
	Capabilities Capabilities

	// TypeValue is stamped into the "type" column on create when
	// Capabilities.TypeColumn is set.
	TypeValue string

	// Strategy controls create/delete permissions for this pass.
	Strategy Strategy

	// Universe, when non-nil, switches the pass to full-replacement mode:
	// every persisted row whose identity is outside the universe is purged
	// and no per-row diff runs.
	Universe []Identity

	// Reconnect, when non-nil, is invoked once between the two phases.
	Reconnect ReconnectFunc

	// RequiredForeignKeys lists columns that must be present and non-nil on
	// an entry before it is written.
	RequiredForeignKeys []string

	// DeleteMethod selects soft or hard deletion. Defaults to hard.
	DeleteMethod DeleteMethod

	// SoftDeleteColumn is the column stamped by soft deletion.
	// Defaults to "deleted_at".
	SoftDeleteColumn string

	// FetchMode is the scanner preference. Defaults to bulk.
	FetchMode FetchMode

	// Result accumulates the outcome of the most recent pass.
	Result Result
}

// Change records one applied mutation.
type Change struct {
	// Identity is the natural-key tuple of the affected entity.
	Identity Identity
	// PK is the store-assigned primary key of the affected row.
	// Zero for creates when the row could not be read back.
	PK int64
}

// Result holds the ordered created/updated/deleted sequences of one pass.
type Result struct {
	Created []Change
	Updated []Change
	Deleted []Change

	// Skipped counts entries dropped under the lenient policy (duplicate
	// rows, integrity failures). Skipped entries never appear in the
	// sequences above.
	Skipped int
}

// reset clears the result before a new pass.
func (r *Result) reset() {
	r.Created = nil
	r.Updated = nil
	r.Deleted = nil
	r.Skipped = 0
}

// resultMark snapshots the result lengths so entries appended inside a
// transaction can be dropped again if it rolls back.
type resultMark struct {
	created, updated, deleted, skipped int
}

func (r *Result) mark() resultMark {
	return resultMark{
		created: len(r.Created),
		updated: len(r.Updated),
		deleted: len(r.Deleted),
		skipped: r.Skipped,
	}
}

func (r *Result) rollbackTo(m resultMark) {
	r.Created = r.Created[:m.created]
	r.Updated = r.Updated[:m.updated]
	r.Deleted = r.Deleted[:m.deleted]
	r.Skipped = m.skipped
}

func (c *Collection) pkColumn() string {
	if c.PKColumn == "" {
		return "id"
	}
	return c.PKColumn
}

func (c *Collection) softDeleteColumn() string {
	if c.SoftDeleteColumn == "" {
		return "deleted_at"
	}
	return c.SoftDeleteColumn
}

func (c *Collection) deleteMethod() DeleteMethod {
	if c.DeleteMethod == "" {
		return DeleteHard
	}
	return c.DeleteMethod
}

func (c *Collection) fetchMode() FetchMode {
	if c.FetchMode == "" {
		return FetchBulk
	}
	return c.FetchMode
}

// IdentityOf derives the natural-key identity from an attribute map using the
// collection's key columns. The same derivation is applied to desired objects
// and scanned rows, so both sides always agree on matching.
func (c *Collection) IdentityOf(attrs Attributes) Identity {
	parts := make([]string, len(c.KeyColumns))
	for i, col := range c.KeyColumns {
		parts[i] = utils.ToString(attrs[col])
	}
	return Identity(strings.Join(parts, identitySep))
}
