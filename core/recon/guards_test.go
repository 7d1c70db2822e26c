package recon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestUniquenessGuard(t *testing.T) {
	t.Run("Strict", func(t *testing.T) {
		g := newUniquenessGuard(PolicyStrict, zap.NewNop())

		ok, err := g.check(1)
		assert.True(t, ok)
		assert.NoError(t, err)

		ok, err = g.check(2)
		assert.True(t, ok)
		assert.NoError(t, err)

		ok, err = g.check(1)
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrDistinctViolation)
	})

	t.Run("Lenient", func(t *testing.T) {
		g := newUniquenessGuard(PolicyLenient, zap.NewNop())

		ok, err := g.check(1)
		assert.True(t, ok)
		assert.NoError(t, err)

		ok, err = g.check(1)
		assert.False(t, ok)
		assert.NoError(t, err)

		// Unrelated keys keep passing after a violation.
		ok, err = g.check(2)
		assert.True(t, ok)
		assert.NoError(t, err)
	})
}

func TestIntegrityGuard(t *testing.T) {
	tests := []struct {
		name   string
		attrs  Attributes
		wantOK bool
	}{
		{"AllPresent", Attributes{"parent_id": 1, "site_id": 2}, true},
		{"MissingColumn", Attributes{"parent_id": 1}, false},
		{"NilValue", Attributes{"parent_id": 1, "site_id": nil}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name+"Strict", func(t *testing.T) {
			g := newIntegrityGuard(PolicyStrict, zap.NewNop(), []string{"parent_id", "site_id"})
			ok, err := g.check("x", tt.attrs)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrIntegrityViolation)
			}
		})

		t.Run(tt.name+"Lenient", func(t *testing.T) {
			g := newIntegrityGuard(PolicyLenient, zap.NewNop(), []string{"parent_id", "site_id"})
			ok, err := g.check("x", tt.attrs)
			assert.Equal(t, tt.wantOK, ok)
			assert.NoError(t, err)
		})
	}

	t.Run("NoRequirements", func(t *testing.T) {
		g := newIntegrityGuard(PolicyStrict, zap.NewNop(), nil)
		ok, err := g.check("x", Attributes{})
		assert.True(t, ok)
		assert.NoError(t, err)
	})
}
