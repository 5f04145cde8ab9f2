package models

import (
	"sort"
	"strings"
	"time"
)

// CollectionEntry is a claimed character plus its level. Levels start
// at 1 and only increase; re-claiming an owned character levels it up
// instead of duplicating the entry.
type CollectionEntry struct {
	Character
	Level int `json:"level"`
}

// RollState is the per-period session state of one account.
type RollState struct {
	AvailableRolls int         `json:"available_rolls"`
	Rolled         []Character `json:"rolled"`
	RevealIndex    int         `json:"reveal_index"`
	ClaimedID      *int        `json:"claimed_id,omitempty"`
	LastReset      time.Time   `json:"last_reset"`
}

type Account struct {
	Collection []CollectionEntry `json:"collection"`
	RollCount  int               `json:"roll_count"`
	Friends    []string          `json:"friends"`
	Session    RollState         `json:"session"`
}

// NewAccount returns a fresh account with a full roll budget and an
// open claim slot.
func NewAccount(maxRolls int, now time.Time) *Account {
	return &Account{
		Collection: []CollectionEntry{},
		Friends:    []string{},
		Session: RollState{
			AvailableRolls: maxRolls,
			Rolled:         []Character{},
			LastReset:      now,
		},
	}
}

// FindEntry returns the collection entry for id, or nil.
func (a *Account) FindEntry(id int) *CollectionEntry {
	for i := range a.Collection {
		if a.Collection[i].ID == id {
			return &a.Collection[i]
		}
	}
	return nil
}

// HasRolled reports whether id is among the current period's rolls.
func (a *Account) HasRolled(id int) bool {
	for i := range a.Session.Rolled {
		if a.Session.Rolled[i].ID == id {
			return true
		}
	}
	return false
}

func (a *Account) HasFriend(name string) bool {
	for _, f := range a.Friends {
		if f == name {
			return true
		}
	}
	return false
}

// Collection sort keys. Level and favorites sort descending, name and
// series ascending, age descending.
const (
	SortByLevel     = "level"
	SortByFavorites = "favorites"
	SortByName      = "name"
	SortBySeries    = "series"
	SortByAge       = "age"
)

// SortCollection orders entries by the given key. Unknown keys fall
// back to level, matching the default view.
func SortCollection(entries []CollectionEntry, by string) {
	switch by {
	case SortByName:
		sort.SliceStable(entries, func(i, j int) bool {
			return strings.Compare(entries[i].Name, entries[j].Name) < 0
		})
	case SortBySeries:
		sort.SliceStable(entries, func(i, j int) bool {
			return strings.Compare(seriesOrUnknown(&entries[i]), seriesOrUnknown(&entries[j])) < 0
		})
	case SortByAge:
		sort.SliceStable(entries, func(i, j int) bool {
			ai, _ := entries[i].ParsedAge()
			aj, _ := entries[j].ParsedAge()
			return ai > aj
		})
	case SortByFavorites:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Favourites > entries[j].Favourites
		})
	case SortByLevel:
		fallthrough
	default:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Level > entries[j].Level
		})
	}
}

func seriesOrUnknown(e *CollectionEntry) string {
	if e.Series == "" {
		return "Unknown"
	}
	return e.Series
}
