package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount_FullBudget(t *testing.T) {
	now := time.Now()
	acc := NewAccount(10, now)

	assert.Equal(t, 10, acc.Session.AvailableRolls)
	assert.Empty(t, acc.Session.Rolled)
	assert.Nil(t, acc.Session.ClaimedID)
	assert.Equal(t, now, acc.Session.LastReset)
	assert.NotNil(t, acc.Collection)
	assert.NotNil(t, acc.Friends)
}

func TestFindEntry(t *testing.T) {
	acc := NewAccount(10, time.Now())
	acc.Collection = append(acc.Collection, CollectionEntry{Character: Character{ID: 7, Name: "A"}, Level: 2})

	entry := acc.FindEntry(7)
	require.NotNil(t, entry)
	assert.Equal(t, 2, entry.Level)

	// returned pointer mutates the stored entry
	entry.Level++
	assert.Equal(t, 3, acc.Collection[0].Level)

	assert.Nil(t, acc.FindEntry(8))
}

func TestHasRolled(t *testing.T) {
	acc := NewAccount(10, time.Now())
	acc.Session.Rolled = append(acc.Session.Rolled, Character{ID: 3})

	assert.True(t, acc.HasRolled(3))
	assert.False(t, acc.HasRolled(4))
}

func TestHasFriend(t *testing.T) {
	acc := NewAccount(10, time.Now())
	acc.Friends = append(acc.Friends, "bob")

	assert.True(t, acc.HasFriend("bob"))
	assert.False(t, acc.HasFriend("carol"))
}

func sampleEntries() []CollectionEntry {
	return []CollectionEntry{
		{Character: Character{ID: 1, Name: "Beta", Series: "Zeta", Age: "20", Favourites: 100}, Level: 1},
		{Character: Character{ID: 2, Name: "Alpha", Series: "", Age: "30", Favourites: 5000}, Level: 3},
		{Character: Character{ID: 3, Name: "Gamma", Series: "Alpha Show", Age: "", Favourites: 900}, Level: 2},
	}
}

func TestSortCollection_Level(t *testing.T) {
	entries := sampleEntries()
	SortCollection(entries, SortByLevel)
	assert.Equal(t, []int{2, 3, 1}, ids(entries))
}

func TestSortCollection_DefaultIsLevel(t *testing.T) {
	entries := sampleEntries()
	SortCollection(entries, "bogus")
	assert.Equal(t, []int{2, 3, 1}, ids(entries))
}

func TestSortCollection_Name(t *testing.T) {
	entries := sampleEntries()
	SortCollection(entries, SortByName)
	assert.Equal(t, []int{2, 1, 3}, ids(entries))
}

func TestSortCollection_SeriesUnknownLast(t *testing.T) {
	entries := sampleEntries()
	SortCollection(entries, SortBySeries)
	// empty series sorts as "Unknown"
	assert.Equal(t, []int{3, 2, 1}, ids(entries))
}

func TestSortCollection_AgeDescending(t *testing.T) {
	entries := sampleEntries()
	SortCollection(entries, SortByAge)
	assert.Equal(t, []int{2, 1, 3}, ids(entries))
}

func TestSortCollection_FavoritesDescending(t *testing.T) {
	entries := sampleEntries()
	SortCollection(entries, SortByFavorites)
	assert.Equal(t, []int{2, 3, 1}, ids(entries))
}

func ids(entries []CollectionEntry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
