// Package password computes and verifies argon2id password digests.
//
// Digests are stored in the PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// An optional secret (pepper) is mixed into the input, so a leaked record
// store alone is not enough to mount an offline guessing attack.
package password

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Params are the argon2id cost parameters.
type Params struct {
	Memory  uint32 // KiB
	Time    uint32
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultParams is the argon2id cost used for stored passwords.
var DefaultParams = Params{
	Memory:  16 * 1024,
	Time:    2,
	Threads: 2,
	SaltLen: 16,
	KeyLen:  32,
}

var (
	// ErrEmpty is returned when hashing an empty password.
	ErrEmpty = errors.New("password: empty input")

	// ErrMalformed is returned when a stored digest cannot be parsed.
	ErrMalformed = errors.New("password: malformed digest")
)

// Hasher computes and verifies digests with a fixed secret and cost.
type Hasher struct {
	secret []byte
	params Params
}

// NewHasher creates a Hasher. An empty secret disables peppering.
func NewHasher(secret string, params Params) *Hasher {
	return &Hasher{secret: []byte(secret), params: params}
}

// Hash returns the encoded digest of plain.
func (h *Hasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmpty
	}

	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("password: generate salt: %w", err)
	}

	key := argon2.IDKey(h.input(plain), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory, h.params.Time, h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the digest of plain with the salt and cost stored in
// encoded and compares the two in constant time.
func (h *Hasher) Verify(plain, encoded string) (bool, error) {
	p, salt, want, err := decode(encoded)
	if err != nil {
		return false, err
	}

	got := argon2.IDKey(h.input(plain), salt, p.Time, p.Memory, p.Threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// input mixes the secret into the password with HMAC-SHA256.
func (h *Hasher) input(plain string) []byte {
	if len(h.secret) == 0 {
		return []byte(plain)
	}
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(plain))
	return mac.Sum(nil)
}

func decode(encoded string) (Params, []byte, []byte, error) {
	var p Params

	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, hash
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, ErrMalformed
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, ErrMalformed
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, ErrMalformed
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, ErrMalformed
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, ErrMalformed
	}

	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}
