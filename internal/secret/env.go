package secret

import (
	"os"
	"strings"
)

// EnvStore reads secrets from environment variables named Prefix + KEY, with
// the key upper-cased and dashes and dots turned into underscores.
type EnvStore struct {
	Prefix string
}

// NewEnvStore creates an EnvStore; "db-password" under prefix "SKETCHBOOK_"
// is read from SKETCHBOOK_DB_PASSWORD.
func NewEnvStore(prefix string) *EnvStore {
	return &EnvStore{Prefix: prefix}
}

func (e *EnvStore) name(key string) string {
	return e.Prefix + strings.NewReplacer("-", "_", ".", "_").Replace(strings.ToUpper(key))
}

func (e *EnvStore) Get(key string) ([]byte, error) {
	v, ok := os.LookupEnv(e.name(key))
	if !ok {
		return nil, nil
	}
	return []byte(v), nil
}

func (e *EnvStore) Set(key string, value []byte) error {
	return os.Setenv(e.name(key), string(value))
}

func (e *EnvStore) Delete(key string) error {
	return os.Unsetenv(e.name(key))
}
