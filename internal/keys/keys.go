// Package keys stores API credentials in the OS keyring, with a file
// fallback for headless environments (CI, containers) where no keyring
// daemon runs.
package keys

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring storage
	KeyringService = "omen-cli"
	// OpenAIKeyName is the credential name for the model API key
	OpenAIKeyName = "openai_api_key"
	// FallbackDir holds credentials when the keyring is unavailable
	FallbackDir = ".omen"
)

// useFileBasedStorage probes keyring availability once per call. Headless
// Linux without a secret service fails the probe.
func useFileBasedStorage() bool {
	testKey := "_test_keyring_access_"
	if err := keyring.Set(KeyringService, testKey, "test"); err != nil {
		return true
	}
	keyring.Delete(KeyringService, testKey)
	return false
}

func fallbackPath(name string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	dir := filepath.Join(home, FallbackDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return filepath.Join(dir, name), nil
}

// Save stores a credential under name.
func Save(name, value string) error {
	if useFileBasedStorage() {
		path, err := fallbackPath(name)
		if err != nil {
			return err
		}
		log.Debug().Str("path", path).Msg("Keyring unavailable, using file storage")
		return os.WriteFile(path, []byte(value), 0600)
	}
	if err := keyring.Set(KeyringService, name, value); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}
	return nil
}

// Load retrieves a credential by name. A missing credential is an error.
func Load(name string) (string, error) {
	if useFileBasedStorage() {
		path, err := fallbackPath(name)
		if err != nil {
			return "", err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("credential %q not found: %w", name, err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	value, err := keyring.Get(KeyringService, name)
	if err != nil {
		return "", fmt.Errorf("credential %q not found: %w", name, err)
	}
	return value, nil
}

// Delete removes a credential. Deleting a missing credential is not an error.
func Delete(name string) error {
	if useFileBasedStorage() {
		path, err := fallbackPath(name)
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	if err := keyring.Delete(KeyringService, name); err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}
