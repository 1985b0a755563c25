// Package state persists client-side preferences in a simple JSON key-value
// file. There is no schema versioning: unknown keys are preserved, missing
// keys fall back to zero values.
package state

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Prefs is the durable client state. None of it is authoritative: the backend
// owns contexts and logs; these are only the knobs the user last chose.
type Prefs struct {
	CurrentContext string `json:"current_context"`
	SelectedChat   string `json:"selected_chat"`
	SelectedTask   string `json:"selected_task"`
	DarkMode       bool   `json:"dark_mode"`
	SpeechEnabled  bool   `json:"speech_enabled"`
}

// Load reads preferences from path. A missing file yields defaults (dark mode
// on), not an error; a corrupt file is an error so the caller can decide.
func Load(path string) (Prefs, error) {
	prefs := Prefs{DarkMode: true}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, err
	}
	if err := json.Unmarshal(data, &prefs); err != nil {
		return Prefs{DarkMode: true}, err
	}
	return prefs, nil
}

// Save writes preferences to path, creating parent directories as needed.
func Save(path string, prefs Prefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultPath places the prefs file under the user config directory.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "agentdeck", "state.json"), nil
}
