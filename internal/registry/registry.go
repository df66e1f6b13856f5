// Package registry persists device push registrations. It backs the
// push-registration lookup used when a queued delivery request names a user
// without carrying a resolved endpoint.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Registration records one device push endpoint for a user.
type Registration struct {
	UserID       string    `json:"user_id"`
	Endpoint     string    `json:"endpoint"`
	RegisteredAt time.Time `json:"registered_at"`
}

var mu sync.Mutex

const registryFileName = "buildmate_push_registrations.json"

func registryFilePath() string {
	if dir := os.Getenv("BUILDMATE_REGISTRY_DIR"); dir != "" {
		return filepath.Join(dir, registryFileName)
	}
	// Prefer a persistent location; fall back to the working directory rather
	// than a temp dir that may be cleared on reboot.
	defaultDir := "/var/lib/buildmate"
	if err := os.MkdirAll(defaultDir, 0o755); err == nil {
		return filepath.Join(defaultDir, registryFileName)
	}
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, registryFileName)
	}
	return filepath.Join(os.TempDir(), registryFileName)
}

// loadAllUnlocked reads the registry file WITHOUT acquiring the package
// mutex. Caller must hold the lock if concurrent access is possible.
func loadAllUnlocked() (map[string]Registration, error) {
	p := registryFilePath()
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]Registration), nil
		}
		return nil, fmt.Errorf("load registry: %w", err)
	}
	out := make(map[string]Registration)
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal registry: %w", err)
	}
	return out, nil
}

// saveAllUnlocked writes the registry file WITHOUT acquiring the package
// mutex. Caller must hold the lock if concurrent access is possible.
func saveAllUnlocked(m map[string]Registration) error {
	p := registryFilePath()
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("mkdir registry dir: %w", err)
	}
	if err := os.WriteFile(p, b, 0o640); err != nil {
		return fmt.Errorf("write registry file: %w", err)
	}
	return nil
}

// Register persists a push registration keyed by user ID, replacing any
// previous endpoint for that user. The package mutex is held for the whole
// read-modify-write cycle to avoid lost updates.
func Register(r Registration) error {
	mu.Lock()
	defer mu.Unlock()
	m, err := loadAllUnlocked()
	if err != nil {
		return err
	}
	m[r.UserID] = r
	return saveAllUnlocked(m)
}

// Remove deletes a user's push registration. Protected by the package mutex.
func Remove(userID string) error {
	mu.Lock()
	defer mu.Unlock()
	m, err := loadAllUnlocked()
	if err != nil {
		return err
	}
	delete(m, userID)
	return saveAllUnlocked(m)
}

// Lookup returns a user's push registration, if any.
func Lookup(userID string) (Registration, bool, error) {
	mu.Lock()
	defer mu.Unlock()
	m, err := loadAllUnlocked()
	if err != nil {
		return Registration{}, false, err
	}
	r, ok := m[userID]
	return r, ok, nil
}

// All returns every persisted push registration.
func All() (map[string]Registration, error) {
	mu.Lock()
	defer mu.Unlock()
	return loadAllUnlocked()
}
