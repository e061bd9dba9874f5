package config

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "pgbrowse"

// StorePassword saves a target's password in the OS keyring.
func StorePassword(target, password string) error {
	if err := keyring.Set(keyringService, target, password); err != nil {
		return fmt.Errorf("keyring set: %w", err)
	}
	return nil
}

// DeletePassword removes a target's password from the OS keyring. A missing entry is not an error.
func DeletePassword(target string) error {
	err := keyring.Delete(keyringService, target)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete: %w", err)
	}
	return nil
}

// ResolveDSN returns the connection string for a target, filling in a password
// from the keyring when the profile has a username but no password.
func ResolveDSN(c Connection) (string, error) {
	if c.URL != "" || c.Password != "" || c.Username == "" {
		return c.DSN(), nil
	}

	password, err := keyring.Get(keyringService, c.Name)
	if errors.Is(err, keyring.ErrNotFound) {
		return c.DSN(), nil
	}
	if err != nil {
		return "", fmt.Errorf("keyring get: %w", err)
	}

	c.Password = password
	return c.DSN(), nil
}
