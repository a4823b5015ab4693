package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Params are the Argon2id cost parameters of one hash.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

var (
	// PasswordParams hash customer passwords (OWASP 2024 recommended minimum).
	PasswordParams = Params{Time: 3, Memory: 64 * 1024, Threads: 4, KeyLen: 32, SaltLen: 16}
	// KeyParams hash API keys. Keys carry 128 random bits, so one pass is enough.
	KeyParams = Params{Time: 1, Memory: 64 * 1024, Threads: 4, KeyLen: 32, SaltLen: 16}
)

var (
	// ErrInvalidHash indicates the hash format is invalid.
	ErrInvalidHash = errors.New("invalid hash format")
	// ErrIncompatibleVersion indicates the hash version is not supported.
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
)

// HashPassword hashes a customer password with PasswordParams.
func HashPassword(password string) (string, error) {
	return Hash(password, PasswordParams)
}

// HashAPIKey hashes a plaintext API key with KeyParams.
func HashAPIKey(key string) (string, error) {
	return Hash(key, KeyParams)
}

// Hash returns the PHC string of secret:
// $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
func Hash(secret string, p Params) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(secret), salt, p.Time, p.Memory, p.Threads, p.KeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.Memory,
		p.Time,
		p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// decoded is a parsed PHC string.
type decoded struct {
	params Params
	salt   []byte
	hash   []byte
}

func decodeHash(encodedHash string) (*decoded, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, ErrInvalidHash
	}
	if version != argon2.Version {
		return nil, ErrIncompatibleVersion
	}

	var d decoded
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &d.params.Memory, &d.params.Time, &d.params.Threads); err != nil {
		return nil, ErrInvalidHash
	}

	var err error
	if d.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, ErrInvalidHash
	}
	if d.hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, ErrInvalidHash
	}
	if len(d.hash) == 0 {
		return nil, ErrInvalidHash
	}
	d.params.KeyLen = uint32(len(d.hash))
	d.params.SaltLen = uint32(len(d.salt))
	return &d, nil
}

// VerifyPassword checks secret against a PHC hash in constant time.
// The cost parameters are read from the hash itself.
func VerifyPassword(secret, encodedHash string) (bool, error) {
	d, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(secret), d.salt, d.params.Time, d.params.Memory, d.params.Threads, d.params.KeyLen)
	return subtle.ConstantTimeCompare(computed, d.hash) == 1, nil
}

// NeedsRehash reports whether encodedHash was produced with parameters other than p.
func NeedsRehash(encodedHash string, p Params) bool {
	d, err := decodeHash(encodedHash)
	if err != nil {
		return true
	}
	return d.params.Time != p.Time || d.params.Memory != p.Memory ||
		d.params.Threads != p.Threads || d.params.KeyLen != p.KeyLen
}

// QuickHash returns a SHA256 hash of the input for cache keys.
// This is NOT for password storage, only for cache key derivation.
func QuickHash(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:16])
}
