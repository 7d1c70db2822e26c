package recon

import (
	"fmt"

	"go.uber.org/zap"
)

// uniquenessGuard detects duplicate primary keys within one scan pass.
// It is created per pass and discarded afterwards; there is no shared state
// between passes.
type uniquenessGuard struct {
	policy Policy
	log    *zap.Logger
	seen   map[int64]struct{}
}

func newUniquenessGuard(policy Policy, log *zap.Logger) *uniquenessGuard {
	return &uniquenessGuard{
		policy: policy,
		log:    log,
		seen:   make(map[int64]struct{}),
	}
}

// check records the primary key and reports whether it is new. A repeated key
// under the strict policy returns ErrDistinctViolation; under the lenient
// policy it is logged and reported as not-ok so the caller skips the row.
func (g *uniquenessGuard) check(pk int64) (bool, error) {
	if _, dup := g.seen[pk]; !dup {
		g.seen[pk] = struct{}{}
		return true, nil
	}
	if g.policy == PolicyStrict {
		return false, fmt.Errorf("%w: pk=%d", ErrDistinctViolation, pk)
	}
	g.log.Warn("duplicate primary key in scan, skipping row", zap.Int64("pk", pk))
	return false, nil
}

// integrityGuard verifies required foreign-key columns are present before a
// write.
type integrityGuard struct {
	policy   Policy
	log      *zap.Logger
	required []string
}

func newIntegrityGuard(policy Policy, log *zap.Logger, required []string) *integrityGuard {
	return &integrityGuard{policy: policy, log: log, required: required}
}

// check reports whether every required column is present and non-nil on the
// candidate attributes. A missing column under the strict policy returns
// ErrIntegrityViolation; under the lenient policy it is logged and the entry
// is reported as not-ok so the caller drops it.
func (g *integrityGuard) check(id Identity, attrs Attributes) (bool, error) {
	for _, col := range g.required {
		if v, ok := attrs[col]; !ok || v == nil {
			if g.policy == PolicyStrict {
				return false, fmt.Errorf("%w: identity=%q column=%q", ErrIntegrityViolation, id, col)
			}
			g.log.Warn("required foreign key missing, dropping entry",
				zap.String("identity", string(id)),
				zap.String("column", col),
			)
			return false, nil
		}
	}
	return true, nil
}
