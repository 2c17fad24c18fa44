package identity

import "errors"

// Keyring holds the shared signing secrets. The first key signs new tokens;
// every key is accepted during verification so the secret can be rotated
// without invalidating tokens issued under the previous key.
type Keyring struct {
	keys [][]byte
}

// NewKeyring builds a keyring from the primary secret and any number of
// still-accepted older secrets. Empty secondaries are skipped.
func NewKeyring(primary string, secondaries ...string) (*Keyring, error) {
	if primary == "" {
		return nil, errors.New("identity: signing secret must be provided")
	}
	keys := [][]byte{[]byte(primary)}
	for _, s := range secondaries {
		if s == "" {
			continue
		}
		keys = append(keys, []byte(s))
	}
	return &Keyring{keys: keys}, nil
}

// SigningKey returns the key used for newly issued tokens.
func (k *Keyring) SigningKey() []byte {
	return k.keys[0]
}

// VerificationKeys returns every accepted key, signing key first.
func (k *Keyring) VerificationKeys() [][]byte {
	return k.keys
}
