package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/atinyakov/TwoHearts/internal/models"
)

// stored is the on-disk form of a session.
type stored struct {
	Token    string          `json:"token"`
	Identity models.Identity `json:"identity"`
}

// load reads the session file. A missing file yields (nil, nil).
func load(path string) (*stored, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var s stored
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return nil, err
	}
	if s.Token == "" {
		return nil, errors.New("session file has no token")
	}
	return &s, nil
}

// save writes the session file readable by the owner only.
func save(path string, s *stored) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(s)
}

func remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
