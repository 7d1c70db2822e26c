package recon

import "errors"

// ErrDistinctViolation signals a primary key observed twice within one scan
// pass, meaning the backing query is not distinct over the collection's rows.
var ErrDistinctViolation = errors.New("distinct violation: primary key seen twice in one pass")

// ErrIntegrityViolation signals a required foreign-key column absent on an
// entry about to be written.
var ErrIntegrityViolation = errors.New("integrity violation: required foreign key missing")

// Policy decides whether a consistency violation aborts the pass or is
// downgraded to a warning. It is passed in at construction; there is no
// ambient default.
type Policy string

const (
	// PolicyStrict aborts the transaction on any violation.
	PolicyStrict Policy = "strict"
	// PolicyLenient logs the violation and drops the offending entry.
	PolicyLenient Policy = "lenient"
)

// ParsePolicy maps a configuration string to a Policy.
// Unknown values fall back to strict, the safe side.
func ParsePolicy(s string) Policy {
	if Policy(s) == PolicyLenient {
		return PolicyLenient
	}
	return PolicyStrict
}
