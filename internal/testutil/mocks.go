package testutil

import (
	"context"
	"sync"
	"susrolld/internal/models"
	"susrolld/internal/providers"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// HasLevel reports whether any entry was recorded at the given level.
func (m *MockLogger) HasLevel(level string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Logs {
		if e.Level == level {
			return true
		}
	}
	return false
}

// MockCache implements providers.CacheProviderInterface over a plain map.
type MockCache struct {
	mu     sync.Mutex
	Data   map[string][]byte
	Clears int
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data = make(map[string][]byte)
	m.Clears++
}

// MockMetrics implements providers.MetricsProviderInterface and counts
// calls per concern.
type MockMetrics struct {
	mu            sync.Mutex
	Requests      int
	CacheHits     int
	CacheMisses   int
	Rolls         map[string]int
	Claims        map[string]int
	Resets        int
	FetchAttempts int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Rolls:  make(map[string]int),
		Claims: make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}
func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}
func (m *MockMetrics) IncRolls(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rolls[result]++
}
func (m *MockMetrics) IncClaims(rarity string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Claims[rarity]++
}
func (m *MockMetrics) IncResets() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Resets++
}
func (m *MockMetrics) IncFetchAttempts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchAttempts++
}
func (m *MockMetrics) ObserveSourceDuration(_ time.Duration)      {}
func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {}

// MockSource implements gacha.CharacterSource by replaying scripted
// pages in order, repeating the last one when the script runs out.
type MockSource struct {
	mu       sync.Mutex
	Pages    [][]models.Character
	LastPage int
	Err      error
	Calls    int
}

func (m *MockSource) Characters(_ context.Context, _, _ int) ([]models.Character, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, 0, m.Err
	}
	if len(m.Pages) == 0 {
		return nil, m.LastPage, nil
	}
	idx := m.Calls - 1
	if idx >= len(m.Pages) {
		idx = len(m.Pages) - 1
	}
	return m.Pages[idx], m.LastPage, nil
}

// MockFetcher implements gacha.FetcherInterface with a fixed queue of
// characters. ExhaustedErr is returned once the queue runs dry; tests
// set it to the package's exhaustion sentinel.
type MockFetcher struct {
	mu           sync.Mutex
	Queue        []models.Character
	Err          error
	ExhaustedErr error
	ResetCalls   int
}

func (m *MockFetcher) FetchOne(_ context.Context, exclude map[int]bool) (models.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Character{}, m.Err
	}
	for i, ch := range m.Queue {
		if !exclude[ch.ID] {
			m.Queue = append(m.Queue[:i], m.Queue[i+1:]...)
			return ch, nil
		}
	}
	return models.Character{}, m.ExhaustedErr
}

func (m *MockFetcher) FetchMany(ctx context.Context, n int) ([]models.Character, error) {
	out := make([]models.Character, 0, n)
	exclude := make(map[int]bool, n)
	for len(out) < n {
		ch, err := m.FetchOne(ctx, exclude)
		if err != nil {
			break
		}
		out = append(out, ch)
		exclude[ch.ID] = true
	}
	return out, nil
}

func (m *MockFetcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResetCalls++
}

// MockCompressor passes data through unchanged, with optional forced
// errors.
type MockCompressor struct {
	CompressErr   error
	DecompressErr error
	Closed        bool
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressErr != nil {
		return nil, m.CompressErr
	}
	return val, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressErr != nil {
		return nil, m.DecompressErr
	}
	return val, nil
}

func (m *MockCompressor) Close() {
	m.Closed = true
}

// MockSaver implements the best-effort persistence hook and counts
// invocations.
type MockSaver struct {
	mu    sync.Mutex
	Saves int
}

func (m *MockSaver) SaveBestEffort() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves++
}

func (m *MockSaver) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Saves
}
