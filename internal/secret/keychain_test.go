package secret

import (
	"errors"
	"fmt"
	"os/exec"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fakeKeychain answers `security` invocations from a map.
type fakeKeychain struct {
	items map[string]string
	calls [][]string
	err   error
}

func (f *fakeKeychain) run(args ...string) ([]byte, error) {
	f.calls = append(f.calls, args)
	if f.err != nil {
		return nil, f.err
	}
	account := args[2]
	switch args[0] {
	case "add-generic-password":
		f.items[args[3]] = args[7]
		return nil, nil
	case "find-generic-password":
		v, ok := f.items[account]
		if !ok {
			return nil, fmt.Errorf("security: %w", exec.ErrNotFound)
		}
		return []byte(v + "\n"), nil
	case "delete-generic-password":
		delete(f.items, account)
		return nil, nil
	}
	return nil, errors.New("unexpected command")
}

func newFakeKeychain() (*KeychainStore, *fakeKeychain) {
	f := &fakeKeychain{items: map[string]string{}}
	return &KeychainStore{service: KeychainService, run: f.run}, f
}

func TestKeychainStore_RoundTrip(t *testing.T) {
	k, f := newFakeKeychain()

	if err := k.Set("storage-password", []byte("s3cret")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := k.Get("storage-password")
	if err != nil || string(got) != "s3cret" {
		t.Errorf("Get = %q, %v", got, err)
	}
	if err := k.Delete("storage-password"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err = k.Get("storage-password")
	if err != nil || got != nil {
		t.Errorf("after Delete, Get = %q, %v", got, err)
	}

	want := []string{"add-generic-password", "-U", "-a", "storage-password", "-s", "sketchbook", "-w", "s3cret"}
	if diff := cmp.Diff(want, f.calls[0]); diff != "" {
		t.Errorf("set args (-want +got):\n%s", diff)
	}
}

func TestKeychainStore_Errors(t *testing.T) {
	k, f := newFakeKeychain()
	f.err = errors.New("user interaction is not allowed")

	if _, err := k.Get("storage-password"); err == nil {
		t.Error("Get should report a locked keychain")
	}
	if err := k.Set("storage-password", []byte("x")); err == nil {
		t.Error("Set should report a locked keychain")
	}

	f.err = exec.ErrNotFound
	if got, err := k.Get("storage-password"); err != nil || got != nil {
		t.Errorf("without a keychain, Get = %q, %v", got, err)
	}
	if err := k.Delete("storage-password"); err != nil {
		t.Errorf("without a keychain, Delete = %v", err)
	}
}
