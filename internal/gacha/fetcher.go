package gacha

import (
	"context"
	"math/rand/v2"
	"sync"
	"susrolld/internal/models"
	"susrolld/internal/providers"
	"susrolld/internal/structures"
	"time"
)

// CharacterSource is one page-addressable upstream of character
// records. Pages may be empty, partially populated, or fail outright;
// no uniqueness or ordering is guaranteed across calls.
type CharacterSource interface {
	Characters(ctx context.Context, page, perPage int) ([]models.Character, int, error)
}

// FetcherInterface obtains acceptable characters from an unreliable
// source with a bounded retry budget.
type FetcherInterface interface {
	FetchOne(ctx context.Context, exclude map[int]bool) (models.Character, error)
	FetchMany(ctx context.Context, n int) ([]models.Character, error)
	Reset()
}

type Fetcher struct {
	source  CharacterSource
	limiter *RateLimiter
	logger  providers.Logger
	metrics providers.MetricsProviderInterface

	maxAttempts int
	perPage     int
	pageSpace   int

	mu        sync.Mutex
	lastPages int // page space refined from the source's reported page count
}

func NewFetcher(source CharacterSource, limiter *RateLimiter, conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) FetcherInterface {
	return &Fetcher{
		source:      source,
		limiter:     limiter,
		logger:      logger,
		metrics:     metrics,
		maxAttempts: conf.Source.MaxAttempts,
		perPage:     conf.Source.PerPage,
		pageSpace:   conf.Source.PageSpace,
	}
}

// FetchOne retries random pages until one yields an acceptable
// character: non-empty name and image, age absent or adult, id not in
// exclude. Character pages upstream are sparse and inconsistently
// populated, so acceptance is filtered client-side rather than trusting
// any single page. Exhausting the attempt budget returns
// ErrFetchExhausted; the caller decides whether to surface or retry.
func (f *Fetcher) FetchOne(ctx context.Context, exclude map[int]bool) (models.Character, error) {
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		page := rand.IntN(f.currentPageSpace()) + 1

		if err := f.limiter.Throttle(ctx); err != nil {
			return models.Character{}, err
		}

		f.metrics.IncFetchAttempts()
		start := time.Now()
		records, lastPage, err := f.source.Characters(ctx, page, f.perPage)
		f.metrics.ObserveSourceDuration(time.Since(start))
		if err != nil {
			if ctx.Err() != nil {
				return models.Character{}, ctx.Err()
			}
			f.logger.Debugf(providers.TypeApp, "fetch attempt %d failed on page %d: %s", attempt, page, err)
			continue
		}
		f.refinePageSpace(lastPage)

		valid := records[:0:0]
		for _, ch := range records {
			if ch.Acceptable() && !exclude[ch.ID] {
				valid = append(valid, ch)
			}
		}
		if len(valid) == 0 {
			continue
		}
		return valid[rand.IntN(len(valid))], nil
	}
	return models.Character{}, ErrFetchExhausted
}

// FetchMany collects up to n characters with distinct ids. A shortfall
// is not an error; callers work with however many were found.
func (f *Fetcher) FetchMany(ctx context.Context, n int) ([]models.Character, error) {
	out := make([]models.Character, 0, n)
	exclude := make(map[int]bool, n)
	for len(out) < n {
		ch, err := f.FetchOne(ctx, exclude)
		if err != nil {
			if err == ErrFetchExhausted {
				break
			}
			return out, err
		}
		out = append(out, ch)
		exclude[ch.ID] = true
	}
	return out, nil
}

// Reset clears the limiter window and the refined page space.
func (f *Fetcher) Reset() {
	f.limiter.Reset()
	f.mu.Lock()
	f.lastPages = 0
	f.mu.Unlock()
}

func (f *Fetcher) currentPageSpace() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lastPages > 0 && f.lastPages < f.pageSpace {
		return f.lastPages
	}
	return f.pageSpace
}

func (f *Fetcher) refinePageSpace(lastPage int) {
	if lastPage <= 0 {
		return
	}
	f.mu.Lock()
	f.lastPages = lastPage
	f.mu.Unlock()
}
