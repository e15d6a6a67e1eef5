package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/bilalabdelkadir/teftef-trader/internal/model"
)

// LoadState reads settings from a JSON file. Returns zero settings if the file doesn't exist.
func LoadState(filePath string) (*model.Settings, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.Settings{}, nil
		}
		return nil, err
	}
	var s model.Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveState writes settings to a JSON file, creating its directory if needed.
func SaveState(filePath string, s *model.Settings) error {
	s.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
