package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggle_KeepsInsertionOrder(t *testing.T) {
	s := NewSet()
	s.Toggle(3)
	s.Toggle(1)
	s.Toggle(2)
	assert.Equal(t, []int64{3, 1, 2}, s.IDs())

	// Removing a middle member preserves the relative order of the rest.
	s.Toggle(1)
	assert.Equal(t, []int64{3, 2}, s.IDs())
	assert.False(t, s.Contains(1))

	s.Toggle(1)
	assert.Equal(t, []int64{3, 2, 1}, s.IDs())
}

func TestSetAll_Idempotent(t *testing.T) {
	all := []int64{10, 20, 30}

	s := NewSet()
	s.Toggle(20)

	s.SetAll(true, all)
	assert.Equal(t, all, s.IDs())

	// Toggling on twice yields the same set as once.
	s.SetAll(true, all)
	assert.Equal(t, all, s.IDs())

	// On then off returns to empty.
	s.SetAll(false, all)
	assert.Zero(t, s.Len())
}

func TestCardinalityGates(t *testing.T) {
	s := NewSet()
	assert.False(t, s.CanEdit())
	assert.False(t, s.CanDelete())

	s.Toggle(1)
	assert.True(t, s.CanEdit())
	assert.True(t, s.CanDelete())

	s.Toggle(2)
	assert.False(t, s.CanEdit())
	assert.True(t, s.CanDelete())
}

func TestFromIDs_DropsDuplicates(t *testing.T) {
	s := FromIDs([]int64{5, 7, 5, 9, 7})
	assert.Equal(t, []int64{5, 7, 9}, s.IDs())
}
