package near

import (
	"crypto/ed25519"
	"crypto/subtle"
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"github.com/pkg/errors"
)

const ed25519Prefix = "ed25519:"

var (
	ErrUnsupportedKeyType = errors.New("only ed25519 keys are supported")
	ErrInvalidKeyEncoding = errors.New("key is not valid base58")
	ErrKeyCleared         = errors.New("key pair has been cleared")
	ErrKeyMismatch        = errors.New("public half of the secret key does not match its seed")
)

type PublicKey struct {
	data ed25519.PublicKey
}

func ParsePublicKey(encoded string) (PublicKey, error) {
	data, err := decodeKey(encoded)
	if err != nil {
		return PublicKey{}, err
	}
	if len(data) != ed25519.PublicKeySize {
		return PublicKey{}, errors.Errorf("invalid public key length %d", len(data))
	}
	return PublicKey{data: ed25519.PublicKey(data)}, nil
}

func (p PublicKey) Bytes() []byte {
	return append([]byte(nil), p.data...)
}

func (p PublicKey) String() string {
	return ed25519Prefix + base58.Encode(p.data)
}

// KeyPair holds an ed25519 secret for the duration of a single operation.
// Call Clear as soon as the key is no longer needed.
type KeyPair struct {
	secret ed25519.PrivateKey
}

// ParseKeyPair loads a key of the form ed25519:<base58>, where the payload is either the
// 64 byte expanded secret or the 32 byte seed.
func ParseKeyPair(encoded string) (*KeyPair, error) {
	data, err := decodeKey(encoded)
	if err != nil {
		return nil, err
	}

	switch len(data) {
	case ed25519.PrivateKeySize:
		// the public half is derived from the seed, never taken from the input
		secret := ed25519.NewKeyFromSeed(data[:ed25519.SeedSize])
		matches := subtle.ConstantTimeCompare(secret[ed25519.SeedSize:], data[ed25519.SeedSize:]) == 1
		wipe(data)
		if !matches {
			wipe(secret)
			return nil, ErrKeyMismatch
		}
		return &KeyPair{secret: secret}, nil
	case ed25519.SeedSize:
		kp := &KeyPair{secret: ed25519.NewKeyFromSeed(data)}
		wipe(data)
		return kp, nil
	default:
		wipe(data)
		return nil, errors.Errorf("invalid secret key length %d", len(data))
	}
}

func (k *KeyPair) PublicKey() PublicKey {
	if k.cleared() {
		return PublicKey{}
	}
	public := k.secret.Public().(ed25519.PublicKey)
	return PublicKey{data: append(ed25519.PublicKey(nil), public...)}
}

func (k *KeyPair) Sign(message []byte) ([]byte, error) {
	if k.cleared() {
		return nil, ErrKeyCleared
	}
	return ed25519.Sign(k.secret, message), nil
}

// Clear zeroes the secret. The key pair is unusable afterwards.
func (k *KeyPair) Clear() {
	if k == nil {
		return
	}
	wipe(k.secret)
	k.secret = nil
}

func (k *KeyPair) cleared() bool {
	return k == nil || len(k.secret) != ed25519.PrivateKeySize
}

// String never reveals the secret.
func (k *KeyPair) String() string {
	if k.cleared() {
		return "KeyPair(cleared)"
	}
	return "KeyPair(" + k.PublicKey().String() + ")"
}

func (k *KeyPair) GoString() string {
	return k.String()
}

func decodeKey(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.Contains(encoded, ":") {
		if !strings.HasPrefix(strings.ToLower(encoded), ed25519Prefix) {
			return nil, ErrUnsupportedKeyType
		}
		encoded = encoded[len(ed25519Prefix):]
	}
	if encoded == "" {
		return nil, ErrInvalidKeyEncoding
	}
	data := base58.Decode(encoded)
	if len(data) == 0 {
		return nil, ErrInvalidKeyEncoding
	}
	return data, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
