package ids

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/pathlink/pkg/diag"
)

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry[int]()
	require.NoError(t, r.Register("a", 1))

	v, ok := r.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry[int]()
	require.NoError(t, r.Register("a", 1))

	err := r.Register("a", 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrDuplicateID))

	v, _ := r.Lookup("a")
	assert.Equal(t, 1, v, "duplicate must not overwrite")
}

func TestRegisterEmptyID(t *testing.T) {
	r := NewRegistry[int]()
	assert.ErrorIs(t, r.Register("", 1), diag.ErrInvalidParameter)
}

func TestUnregisterFreesID(t *testing.T) {
	r := NewRegistry[int]()
	require.NoError(t, r.Register("a", 1))
	r.Unregister("a")

	assert.False(t, r.Contains("a"))
	assert.NoError(t, r.Register("a", 3))
}

func TestGenerateUniqueBatch(t *testing.T) {
	r := NewRegistry[string]()
	require.NoError(t, r.Register("id1", "x"))

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := r.GenerateUnique("id")
		assert.True(t, strings.HasPrefix(id, "id"))
		assert.False(t, seen[id], "id %s generated twice in one batch", id)
		seen[id] = true
	}

	for id := range seen {
		require.NoError(t, r.Register(id, id))
	}
	assert.Equal(t, 1001, r.Len())
}

func TestReleaseReservation(t *testing.T) {
	r := NewRegistry[int]()
	id := r.GenerateUnique("g")
	assert.True(t, r.Contains(id))

	r.Release(id)
	assert.False(t, r.Contains(id))
}

func TestReserve(t *testing.T) {
	r := NewRegistry[int]()
	require.NoError(t, r.Reserve("anchor1"))

	assert.ErrorIs(t, r.Reserve("anchor1"), diag.ErrDuplicateID)
	assert.NoError(t, r.Register("anchor1", 1), "a reservation is consumed by registration")

	require.NoError(t, r.Register("shape", 2))
	assert.ErrorIs(t, r.Reserve("shape"), diag.ErrDuplicateID)
}
