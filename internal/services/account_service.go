package services

import (
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"susrolld/internal/models"
	"susrolld/internal/structures"
	"time"
)

var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoCurrentUser      = errors.New("no user logged in")
	ErrFriendCodeNotFound = errors.New("friend code not found")
	ErrCannotAddSelf      = errors.New("cannot add yourself as a friend")
	ErrNotInCollection    = errors.New("character not in collection")
)

const friendCodeLen = 8

// AccountServiceInterface is the durable keyed map of username to
// account state plus the current-user pointer. All account mutation is
// funneled through WithAccount so snapshots never observe a half
// applied change.
type AccountServiceInterface interface {
	CreateAccount(name string, now time.Time) error
	CurrentUser() string
	SetCurrentUser(name string) error
	Usernames() []string
	CollectionSizes() map[string]int
	WithAccount(name string, fn func(*models.Account) error) error
	FriendCode(name string) string
	AddFriend(code string) (friend string, already bool, err error)
	Friends() []string
	RemoveFromCollection(user string, id int) error
	SortedCollection(user string, sortBy string) ([]models.CollectionEntry, error)
	TotalRollCount(user string) (int, error)
	WipeAll()
	Snapshot() *models.Storage
	Restore(storage *models.Storage)
}

type AccountService struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
	current  string
	maxRolls int
}

func NewAccountService(conf *structures.Config) AccountServiceInterface {
	return &AccountService{
		accounts: make(map[string]*models.Account),
		maxRolls: conf.Gacha.MaxRolls,
	}
}

func (s *AccountService) CreateAccount(name string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[name]; ok {
		return ErrUsernameTaken
	}
	s.accounts[name] = models.NewAccount(s.maxRolls, now)
	s.current = name
	return nil
}

func (s *AccountService) CurrentUser() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *AccountService) SetCurrentUser(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[name]; !ok {
		return ErrUserNotFound
	}
	s.current = name
	return nil
}

func (s *AccountService) Usernames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.accounts))
	for name := range s.accounts {
		names = append(names, name)
	}
	return names
}

func (s *AccountService) CollectionSizes() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sizes := make(map[string]int, len(s.accounts))
	for name, acc := range s.accounts {
		sizes[name] = len(acc.Collection)
	}
	return sizes
}

func (s *AccountService) WithAccount(name string, fn func(*models.Account) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[name]
	if !ok {
		return ErrUserNotFound
	}
	return fn(acc)
}

// FriendCode derives the short share code for a username: base64 of the
// name stripped to alphanumerics, truncated to 8 symbols, uppercased.
// Deterministic, so lookup recomputes instead of storing an index.
func (s *AccountService) FriendCode(name string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(name))
	var b strings.Builder
	for _, r := range encoded {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() == friendCodeLen {
			break
		}
	}
	return strings.ToUpper(b.String())
}

func (s *AccountService) AddFriend(code string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == "" {
		return "", false, ErrNoCurrentUser
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	var friend string
	for name := range s.accounts {
		if s.FriendCode(name) == code {
			friend = name
			break
		}
	}
	if friend == "" {
		return "", false, ErrFriendCodeNotFound
	}
	if friend == s.current {
		return "", false, ErrCannotAddSelf
	}

	acc := s.accounts[s.current]
	if acc.HasFriend(friend) {
		return friend, true, nil
	}
	acc.Friends = append(acc.Friends, friend)
	return friend, false, nil
}

func (s *AccountService) Friends() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[s.current]
	if !ok {
		return nil
	}
	friends := make([]string, len(acc.Friends))
	copy(friends, acc.Friends)
	return friends
}

func (s *AccountService) RemoveFromCollection(user string, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[user]
	if !ok {
		return ErrUserNotFound
	}
	for i := range acc.Collection {
		if acc.Collection[i].ID == id {
			acc.Collection = append(acc.Collection[:i], acc.Collection[i+1:]...)
			return nil
		}
	}
	return ErrNotInCollection
}

func (s *AccountService) SortedCollection(user string, sortBy string) ([]models.CollectionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[user]
	if !ok {
		return nil, ErrUserNotFound
	}
	entries := make([]models.CollectionEntry, len(acc.Collection))
	copy(entries, acc.Collection)
	models.SortCollection(entries, sortBy)
	return entries, nil
}

func (s *AccountService) TotalRollCount(user string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[user]
	if !ok {
		return 0, ErrUserNotFound
	}
	return acc.RollCount, nil
}

func (s *AccountService) WipeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = make(map[string]*models.Account)
	s.current = ""
}

func (s *AccountService) Snapshot() *models.Storage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	storage := models.NewStorage()
	storage.CurrentUser = s.current
	for name, acc := range s.accounts {
		storage.Accounts[name] = copyAccount(acc)
	}
	return storage
}

func (s *AccountService) Restore(storage *models.Storage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = make(map[string]*models.Account, len(storage.Accounts))
	for name, acc := range storage.Accounts {
		restored := copyAccount(acc)
		normalizeAccount(restored, s.maxRolls)
		s.accounts[name] = restored
	}
	s.current = ""
	if _, ok := s.accounts[storage.CurrentUser]; ok {
		s.current = storage.CurrentUser
	}
}

func copyAccount(acc *models.Account) *models.Account {
	cp := *acc
	cp.Collection = make([]models.CollectionEntry, len(acc.Collection))
	copy(cp.Collection, acc.Collection)
	cp.Friends = make([]string, len(acc.Friends))
	copy(cp.Friends, acc.Friends)
	cp.Session.Rolled = make([]models.Character, len(acc.Session.Rolled))
	copy(cp.Session.Rolled, acc.Session.Rolled)
	if acc.Session.ClaimedID != nil {
		id := *acc.Session.ClaimedID
		cp.Session.ClaimedID = &id
	}
	return &cp
}

// normalizeAccount repairs fields that older snapshots may lack so the
// invariants hold after a restore.
func normalizeAccount(acc *models.Account, maxRolls int) {
	if acc.Collection == nil {
		acc.Collection = []models.CollectionEntry{}
	}
	if acc.Friends == nil {
		acc.Friends = []string{}
	}
	if acc.Session.Rolled == nil {
		acc.Session.Rolled = []models.Character{}
	}
	if acc.Session.AvailableRolls < 0 || acc.Session.AvailableRolls > maxRolls {
		acc.Session.AvailableRolls = maxRolls
	}
	if acc.Session.RevealIndex > len(acc.Session.Rolled) {
		acc.Session.RevealIndex = len(acc.Session.Rolled)
	}
	for i := range acc.Collection {
		if acc.Collection[i].Level < 1 {
			acc.Collection[i].Level = 1
		}
	}
}
