package gacha

import (
	"context"
	"sync"
	"susrolld/internal/gacha/interfaces"
	"susrolld/internal/models"
	"susrolld/internal/providers"
	"susrolld/internal/services"
	"susrolld/internal/structures"
	"time"

	"go.uber.org/atomic"
)

// Session drives the roll/claim/reset life cycle for the active user.
// All account state lives in the account service; the session enforces
// the per-period state machine on top of it and persists after every
// mutation, best effort. A second roll while one is outstanding is
// rejected, never queued.
type Session struct {
	service services.AccountServiceInterface
	fetcher FetcherInterface
	saver   interfaces.SaverInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface

	maxRolls    int
	revealDelay time.Duration

	rolling atomic.Bool

	mu        sync.Mutex
	countdown string

	now   func() time.Time
	after func(d time.Duration, fn func())
}

func NewSession(service services.AccountServiceInterface, fetcher FetcherInterface, saver interfaces.SaverInterface, conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) *Session {
	return &Session{
		service:     service,
		fetcher:     fetcher,
		saver:       saver,
		logger:      logger,
		metrics:     metrics,
		maxRolls:    conf.Gacha.MaxRolls,
		revealDelay: conf.Gacha.RevealDelay,
		now:         time.Now,
		after:       func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
}

// CreateAccount registers a new username and makes it the active user.
func (s *Session) CreateAccount(name string) error {
	if err := s.service.CreateAccount(name, s.now()); err != nil {
		return err
	}
	s.saver.SaveBestEffort()
	return nil
}

// MaxRolls returns the per-period roll budget.
func (s *Session) MaxRolls() int {
	return s.maxRolls
}

// Save persists current state, best effort. Exposed for mutations that
// happen outside the session itself.
func (s *Session) Save() {
	s.saver.SaveBestEffort()
}

// BindUser makes name the active user, applying the login-time reset
// check in the same pass so stale period state is never exposed.
func (s *Session) BindUser(name string) error {
	if err := s.service.SetCurrentUser(name); err != nil {
		return err
	}
	now := s.now()
	err := s.service.WithAccount(name, func(acc *models.Account) error {
		if ShouldReset(acc.Session.LastReset, now) {
			resetState(&acc.Session, s.maxRolls, now)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.saver.SaveBestEffort()
	return nil
}

// Roll fetches one character and commits it to the current period.
// On fetch exhaustion nothing changes: the roll budget is only spent
// on success.
func (s *Session) Roll(ctx context.Context) (models.Character, error) {
	user := s.service.CurrentUser()
	if user == "" {
		return models.Character{}, ErrNotLoggedIn
	}

	if !s.rolling.CompareAndSwap(false, true) {
		return models.Character{}, ErrRollInFlight
	}
	defer s.rolling.Store(false)

	err := s.service.WithAccount(user, func(acc *models.Account) error {
		if acc.Session.AvailableRolls <= 0 {
			return ErrNoRollsRemaining
		}
		return nil
	})
	if err != nil {
		s.metrics.IncRolls(providers.RollResultRejected)
		return models.Character{}, err
	}

	character, err := s.fetcher.FetchOne(ctx, nil)
	if err != nil {
		s.metrics.IncRolls(providers.RollResultExhausted)
		return models.Character{}, err
	}

	err = s.service.WithAccount(user, func(acc *models.Account) error {
		if acc.Session.AvailableRolls <= 0 {
			return ErrNoRollsRemaining
		}
		acc.Session.Rolled = append(acc.Session.Rolled, character)
		acc.Session.AvailableRolls--
		acc.RollCount++
		return nil
	})
	if err != nil {
		s.metrics.IncRolls(providers.RollResultRejected)
		return models.Character{}, err
	}

	s.saver.SaveBestEffort()
	s.metrics.IncRolls(providers.RollResultSuccess)
	s.scheduleReveal(user, 1)
	return character, nil
}

// RollBatch rolls up to n characters in one operation, deduplicated
// within the batch. A shortfall is accepted; only obtained characters
// consume rolls.
func (s *Session) RollBatch(ctx context.Context, n int) ([]models.Character, error) {
	user := s.service.CurrentUser()
	if user == "" {
		return nil, ErrNotLoggedIn
	}

	if !s.rolling.CompareAndSwap(false, true) {
		return nil, ErrRollInFlight
	}
	defer s.rolling.Store(false)

	want := 0
	err := s.service.WithAccount(user, func(acc *models.Account) error {
		if acc.Session.AvailableRolls <= 0 {
			return ErrNoRollsRemaining
		}
		want = min(n, acc.Session.AvailableRolls)
		return nil
	})
	if err != nil {
		s.metrics.IncRolls(providers.RollResultRejected)
		return nil, err
	}

	characters, err := s.fetcher.FetchMany(ctx, want)
	if err != nil {
		s.metrics.IncRolls(providers.RollResultExhausted)
		return nil, err
	}
	if len(characters) == 0 {
		s.metrics.IncRolls(providers.RollResultExhausted)
		return nil, ErrFetchExhausted
	}

	err = s.service.WithAccount(user, func(acc *models.Account) error {
		for _, ch := range characters {
			if acc.Session.AvailableRolls <= 0 {
				break
			}
			acc.Session.Rolled = append(acc.Session.Rolled, ch)
			acc.Session.AvailableRolls--
			acc.RollCount++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.saver.SaveBestEffort()
	for range characters {
		s.metrics.IncRolls(providers.RollResultSuccess)
	}
	s.scheduleReveal(user, len(characters))
	return characters, nil
}

// Claim commits one rolled character into the collection. One claim
// per period; claiming an owned character levels it up instead of
// duplicating the entry.
func (s *Session) Claim(id int) error {
	user := s.service.CurrentUser()
	if user == "" {
		return ErrNotLoggedIn
	}

	var claimed models.Character
	err := s.service.WithAccount(user, func(acc *models.Account) error {
		if acc.Session.ClaimedID != nil {
			return ErrAlreadyClaimed
		}
		if !acc.HasRolled(id) {
			return ErrNotRolled
		}
		if entry := acc.FindEntry(id); entry != nil {
			entry.Level++
			claimed = entry.Character
		} else {
			for _, ch := range acc.Session.Rolled {
				if ch.ID == id {
					acc.Collection = append(acc.Collection, models.CollectionEntry{Character: ch, Level: 1})
					claimed = ch
					break
				}
			}
		}
		claimedID := id
		acc.Session.ClaimedID = &claimedID
		return nil
	})
	if err != nil {
		return err
	}

	s.saver.SaveBestEffort()
	s.metrics.IncClaims(string(models.RarityOf(&claimed)))
	return nil
}

// Reset restores the full roll budget and clears the period state for
// the active user. The collection is untouched.
func (s *Session) Reset() error {
	user := s.service.CurrentUser()
	if user == "" {
		return ErrNotLoggedIn
	}

	now := s.now()
	err := s.service.WithAccount(user, func(acc *models.Account) error {
		resetState(&acc.Session, s.maxRolls, now)
		return nil
	})
	if err != nil {
		return err
	}

	s.saver.SaveBestEffort()
	s.metrics.IncResets()
	return nil
}

// Tick runs the 1-second reset evaluation: refresh the countdown and
// reset the active session once the hourly boundary passed. A roll in
// flight when the boundary crosses completes normally and lands in
// whatever period is current when it finishes; the next tick then
// resets it away.
func (s *Session) Tick() {
	now := s.now()

	s.mu.Lock()
	s.countdown = Countdown(now)
	s.mu.Unlock()

	user := s.service.CurrentUser()
	if user == "" {
		return
	}

	due := false
	_ = s.service.WithAccount(user, func(acc *models.Account) error {
		due = ShouldReset(acc.Session.LastReset, now)
		return nil
	})
	if !due {
		return
	}

	if err := s.Reset(); err != nil {
		s.logger.Errorf(providers.TypeApp, "Periodic reset failed: %s", err)
		return
	}
	s.logger.Infof(providers.TypeApp, "Session reset for %s", user)
}

// Countdown returns the last computed time-until-reset display string.
func (s *Session) Countdown() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countdown == "" {
		return Countdown(s.now())
	}
	return s.countdown
}

// Wipe clears every account, the current-user pointer and the fetch
// throttling state. Irreversible.
func (s *Session) Wipe() {
	s.service.WipeAll()
	s.fetcher.Reset()
	s.saver.SaveBestEffort()
	s.logger.Warnf(providers.TypeApp, "All data wiped")
}

func (s *Session) scheduleReveal(user string, n int) {
	s.after(s.revealDelay, func() {
		err := s.service.WithAccount(user, func(acc *models.Account) error {
			acc.Session.RevealIndex = min(acc.Session.RevealIndex+n, len(acc.Session.Rolled))
			return nil
		})
		if err != nil {
			return
		}
		s.saver.SaveBestEffort()
	})
}

func resetState(st *models.RollState, maxRolls int, now time.Time) {
	st.AvailableRolls = maxRolls
	st.Rolled = []models.Character{}
	st.RevealIndex = 0
	st.ClaimedID = nil
	st.LastReset = now
}
