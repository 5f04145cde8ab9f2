package gacha

import (
	"os"
	"path/filepath"
	"susrolld/internal/models"
	"susrolld/internal/services"
	"susrolld/internal/structures"
	"susrolld/internal/testutil"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileManagerConfig(path string) *structures.Config {
	return &structures.Config{
		Gacha:       structures.GachaConfig{MaxRolls: 10},
		Persistence: structures.Persistence{FilePath: path},
	}
}

func newTestFileManager(t *testing.T, path string) (*FileManager, services.AccountServiceInterface, *testutil.MockLogger) {
	t.Helper()
	conf := fileManagerConfig(path)
	svc := services.NewAccountService(conf)
	logger := &testutil.MockLogger{}
	fm := NewFileManager(&testutil.MockCompressor{}, svc, conf, logger, testutil.NewMockMetrics())
	return fm, svc, logger
}

func TestFileManager_SaveToFile_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.dat")
	fm, svc, _ := newTestFileManager(t, path)
	require.NoError(t, svc.CreateAccount("alice", time.Now()))

	require.NoError(t, fm.SaveToFile(path))

	_, err := os.Stat(path)
	assert.NoError(t, err)

	// Temp file should not exist
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileManager_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.dat")
	fm, svc, _ := newTestFileManager(t, path)
	require.NoError(t, svc.CreateAccount("alice", time.Now()))
	require.NoError(t, svc.WithAccount("alice", func(acc *models.Account) error {
		acc.Collection = append(acc.Collection, models.CollectionEntry{Character: models.Character{ID: 7, Name: "A"}, Level: 2})
		acc.RollCount = 4
		return nil
	}))

	require.NoError(t, fm.SaveToFile(path))

	fm2, svc2, _ := newTestFileManager(t, path)
	require.NoError(t, fm2.LoadFromFile(path))

	assert.Equal(t, "alice", svc2.CurrentUser())
	require.NoError(t, svc2.WithAccount("alice", func(acc *models.Account) error {
		assert.Equal(t, 4, acc.RollCount)
		require.Len(t, acc.Collection, 1)
		assert.Equal(t, 7, acc.Collection[0].ID)
		return nil
	}))
}

func TestFileManager_LoadFromFile_FileNotExist(t *testing.T) {
	fm, _, _ := newTestFileManager(t, "/nonexistent/file.dat")
	assert.NoError(t, fm.LoadFromFile("/nonexistent/file.dat"))
}

func TestFileManager_LoadFromFile_LegacyPlainMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.dat")

	// old format: accounts map without the versioned envelope
	legacy := map[string]*models.Account{
		"alice": {
			Collection: []models.CollectionEntry{{Character: models.Character{ID: 1, Name: "A"}, Level: 1}},
			RollCount:  2,
		},
	}
	raw, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0644))

	fm, svc, logger := newTestFileManager(t, path)
	require.NoError(t, fm.LoadFromFile(path))

	assert.True(t, logger.HasLevel("warn"))
	require.NoError(t, svc.WithAccount("alice", func(acc *models.Account) error {
		assert.Equal(t, 2, acc.RollCount)
		assert.NotNil(t, acc.Session.Rolled)
		// zero LastReset makes the next tick grant a fresh budget
		assert.True(t, ShouldReset(acc.Session.LastReset, time.Now()))
		return nil
	}))
}

func TestFileManager_LoadFromFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.dat")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	fm, _, _ := newTestFileManager(t, path)
	assert.Error(t, fm.LoadFromFile(path))
}

func TestFileManager_SaveBestEffort_SwallowsErrors(t *testing.T) {
	fm, _, logger := newTestFileManager(t, "/nonexistent/dir/file.dat")

	fm.SaveBestEffort()
	assert.True(t, logger.HasLevel("error"))
}
