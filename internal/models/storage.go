package models

// Storage is the persistence envelope: every account keyed by username
// plus the current-user pointer, in one versioned document.
type Storage struct {
	Version     int                 `json:"version"`
	Accounts    map[string]*Account `json:"accounts"`
	CurrentUser string              `json:"current_user,omitempty"`
}

const StorageVersion = 2

func NewStorage() *Storage {
	return &Storage{
		Version:  StorageVersion,
		Accounts: make(map[string]*Account),
	}
}
