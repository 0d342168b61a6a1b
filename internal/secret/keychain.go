package secret

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// KeychainService is the item service name backend passwords are filed under.
const KeychainService = "sketchbook"

// keychainItemNotFound is the exit status of `security` for a missing item.
const keychainItemNotFound = 44

// commandRunner runs the `security` tool and returns its stdout.
type commandRunner func(args ...string) ([]byte, error)

func runSecurity(args ...string) ([]byte, error) {
	out, err := exec.Command("security", args...).Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		err = fmt.Errorf("%s: %w", strings.TrimSpace(string(exitErr.Stderr)), err)
	}
	return out, err
}

// KeychainStore keeps backend passwords in the macOS login keychain through
// the `security` CLI. On other systems every lookup comes back empty.
type KeychainStore struct {
	service string
	run     commandRunner
}

// NewKeychainStore creates a KeychainStore filing items under KeychainService.
func NewKeychainStore() *KeychainStore {
	return &KeychainStore{service: KeychainService, run: runSecurity}
}

// Set stores value, replacing an existing item.
func (k *KeychainStore) Set(key string, value []byte) error {
	_, err := k.run("add-generic-password", "-U", "-a", key, "-s", k.service, "-w", string(value))
	if err != nil {
		return fmt.Errorf("keychain set %s: %w", key, err)
	}
	return nil
}

// Get returns nil when the item does not exist or no keychain is available.
func (k *KeychainStore) Get(key string) ([]byte, error) {
	out, err := k.run("find-generic-password", "-a", key, "-s", k.service, "-w")
	if err != nil {
		if missingItem(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("keychain get %s: %w", key, err)
	}
	return []byte(strings.TrimRight(string(out), "\r\n")), nil
}

// Delete removes the item. Deleting a missing item is not an error.
func (k *KeychainStore) Delete(key string) error {
	_, err := k.run("delete-generic-password", "-a", key, "-s", k.service)
	if err != nil && !missingItem(err) {
		return fmt.Errorf("keychain delete %s: %w", key, err)
	}
	return nil
}

// missingItem treats an absent `security` binary like an absent item.
func missingItem(err error) bool {
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr) && exitErr.ExitCode() == keychainItemNotFound
}
