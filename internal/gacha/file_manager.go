package gacha

import (
	"os"
	"susrolld/internal/gacha/interfaces"
	"susrolld/internal/models"
	"susrolld/internal/providers"
	"susrolld/internal/services"
	"susrolld/internal/structures"
	"time"

	json "github.com/goccy/go-json"
)

type FileManager struct {
	config     *structures.Config
	service    services.AccountServiceInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
}

func NewFileManager(compressor interfaces.CompressorInterface, service services.AccountServiceInterface, conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) *FileManager {
	return &FileManager{
		config:     conf,
		compressor: compressor,
		service:    service,
		logger:     logger,
		metrics:    metrics,
	}
}

func (f *FileManager) SaveToFile(fileName string) error {
	start := time.Now()
	storage := f.service.Snapshot()

	jsonData, err := json.Marshal(storage)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	if err = os.Rename(tmpFile, fileName); err != nil {
		return err
	}
	f.metrics.ObservePersistenceDuration(time.Since(start))
	return nil
}

// SaveBestEffort persists to the configured file and logs failures
// instead of returning them. Mutating operations call this after every
// state change so a crash loses at most the last write.
func (f *FileManager) SaveBestEffort() {
	if err := f.SaveToFile(f.config.Persistence.FilePath); err != nil {
		f.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
	}
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	// Try current format (versioned envelope)
	var storage models.Storage
	if err := json.Unmarshal(decompressedData, &storage); err == nil && storage.Accounts != nil {
		f.service.Restore(&storage)
		return nil
	}

	// Try old format (bare accounts map, no envelope)
	f.logger.Warnf(providers.TypeApp, "Inconsistent DB found, try to migrate from old data format")
	var accounts map[string]*models.Account
	if err := json.Unmarshal(decompressedData, &accounts); err != nil {
		f.logger.Warnf(providers.TypeApp, "Migration failed")
		return err
	}
	f.logger.Warnf(providers.TypeApp, "Migration from v1 format successful")
	f.service.Restore(&models.Storage{
		Version:  models.StorageVersion,
		Accounts: accounts,
	})

	return nil
}
