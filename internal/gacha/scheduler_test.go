package gacha

import (
	"os"
	"path/filepath"
	"susrolld/internal/services"
	"susrolld/internal/structures"
	"susrolld/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T, path string) (*Scheduler, services.AccountServiceInterface) {
	t.Helper()
	conf := &structures.Config{
		Gacha:       structures.GachaConfig{MaxRolls: 10, RevealDelay: time.Millisecond},
		Persistence: structures.Persistence{FilePath: path, SaveInterval: time.Minute},
	}
	svc := services.NewAccountService(conf)
	fm := NewFileManager(&testutil.MockCompressor{}, svc, conf, &testutil.MockLogger{}, testutil.NewMockMetrics())
	fetcher := &testutil.MockFetcher{ExhaustedErr: ErrFetchExhausted}
	session := NewSession(svc, fetcher, fm, conf, &testutil.MockLogger{}, testutil.NewMockMetrics())
	sched := NewScheduler(conf, &testutil.MockLogger{}, session, fm).(*Scheduler)
	return sched, svc
}

func TestScheduler_PersistAndRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sched.dat")
	sched, svc := newTestScheduler(t, path)
	require.NoError(t, svc.CreateAccount("alice", time.Now()))

	require.NoError(t, sched.Persist())
	_, err := os.Stat(path)
	require.NoError(t, err)

	sched2, svc2 := newTestScheduler(t, path)
	require.NoError(t, sched2.Restore())
	assert.Equal(t, "alice", svc2.CurrentUser())
}

func TestScheduler_RestoreMissingFile(t *testing.T) {
	sched, _ := newTestScheduler(t, filepath.Join(t.TempDir(), "missing.dat"))
	assert.NoError(t, sched.Restore())
}

func TestScheduler_StopWithoutInit(t *testing.T) {
	sched, _ := newTestScheduler(t, filepath.Join(t.TempDir(), "x.dat"))
	assert.NotPanics(t, func() { sched.Stop() })
}

func TestScheduler_InitAndStop(t *testing.T) {
	sched, _ := newTestScheduler(t, filepath.Join(t.TempDir(), "y.dat"))
	sched.Init()
	sched.Stop()
}
