package secret

// SecretStore provides a pluggable interface for storing sensitive data
// such as the database password of a server backend.
type SecretStore interface {
	// Set stores a secret value under the given key.
	Set(key string, value []byte) error

	// Get retrieves the secret value for the given key.
	// Returns empty slice and nil error if key does not exist.
	Get(key string) ([]byte, error)

	// Delete removes the secret for the given key.
	Delete(key string) error
}

// Chain reads from each store in order and returns the first non-empty
// value. Writes go to the first store.
type Chain []SecretStore

func (c Chain) Get(key string) ([]byte, error) {
	for _, s := range c {
		v, err := s.Get(key)
		if err != nil {
			return nil, err
		}
		if len(v) > 0 {
			return v, nil
		}
	}
	return nil, nil
}

func (c Chain) Set(key string, value []byte) error {
	if len(c) == 0 {
		return nil
	}
	return c[0].Set(key, value)
}

func (c Chain) Delete(key string) error {
	for _, s := range c {
		if err := s.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// EnvPrefix namespaces the environment variables EnvStore reads.
const EnvPrefix = "SKETCHBOOK_"

// Default looks in the environment first and falls back to the keychain.
func Default() Chain {
	return Chain{NewEnvStore(EnvPrefix), NewKeychainStore()}
}
