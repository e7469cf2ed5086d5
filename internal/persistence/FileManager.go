package persistence

import (
	"os"

	"ade/internal/models"
	"ade/internal/persistence/interfaces"
	"ade/internal/providers"
	"ade/internal/services"

	json "github.com/goccy/go-json"
)

type FileManager struct {
	service    services.EngineServiceInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, service services.EngineServiceInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		service:    service,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string) error {
	storage := f.service.GetSnapshot()

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

	return os.Rename(tmpFile, fileName)
}

// LoadFromFile restores visitor state from disk. A missing file is a clean
// start. An unreadable or corrupt one degrades to empty state with a warning,
// since losing advisory counters must never fail startup.
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
		f.logger.Warnf(providers.TypeApp, "State file %s is not readable, starting empty: %s", fileName, err)
		return nil
	}

	var storage models.Storage
	if err := json.Unmarshal(decompressedData, &storage); err != nil || storage.Visitors == nil {
		f.logger.Warnf(providers.TypeApp, "State file %s is corrupt, starting empty", fileName)
		return nil
	}

	for id, state := range storage.Visitors {
		f.service.PutVisitorData(id, state)
	}
	return nil
}
