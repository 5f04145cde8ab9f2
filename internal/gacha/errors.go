package gacha

import "errors"

var (
	// ErrNotLoggedIn is returned when a session operation runs with no
	// bound user.
	ErrNotLoggedIn = errors.New("no user logged in")

	// ErrNoRollsRemaining is returned when the period's roll budget is
	// spent.
	ErrNoRollsRemaining = errors.New("no rolls remaining")

	// ErrRollInFlight rejects a roll while another is outstanding;
	// rolls are never queued.
	ErrRollInFlight = errors.New("roll already in progress")

	// ErrAlreadyClaimed is returned when the period's single claim slot
	// is taken.
	ErrAlreadyClaimed = errors.New("already claimed this period")

	// ErrNotRolled is returned when claiming a character that is not
	// among the period's rolls.
	ErrNotRolled = errors.New("character was not rolled this period")

	// ErrFetchExhausted is returned when the fetch attempt budget ran
	// out without an acceptable character. Retryable.
	ErrFetchExhausted = errors.New("no character found, try again in a moment")
)
