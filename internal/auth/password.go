package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Scheme identifies the digest algorithm a stored hash was produced with.
type Scheme string

const (
	SchemeBcrypt   Scheme = "bcrypt"
	SchemeArgon2id Scheme = "argon2id"
)

const (
	argonMemory      = 64 * 1024
	argonIterations  = 2
	argonParallelism = 1
	argonKeyLen      = 32
	argonSaltLen     = 16

	// DefaultBcryptCost is the cost used when none is configured.
	DefaultBcryptCost = 12

	bcryptMaxInput = 72
)

// ErrUnknownScheme is returned when a stored hash has no recognised prefix.
var ErrUnknownScheme = errors.New("auth: unknown password hash scheme")

// Hasher produces salted slow digests and verifies them by the scheme
// encoded in the stored hash.
type Hasher struct {
	scheme     Scheme
	bcryptCost int

	dummyOnce sync.Once
	dummy     string
}

// HasherOption configures a Hasher.
type HasherOption func(*Hasher) error

// WithScheme selects the scheme used for new hashes.
func WithScheme(s Scheme) HasherOption {
	return func(h *Hasher) error {
		switch s {
		case SchemeBcrypt, SchemeArgon2id:
			h.scheme = s
			return nil
		}
		return fmt.Errorf("%w: %q", ErrUnknownScheme, s)
	}
}

// WithBcryptCost sets the bcrypt cost, clamped to the range bcrypt accepts.
func WithBcryptCost(cost int) HasherOption {
	return func(h *Hasher) error {
		if cost < bcrypt.MinCost {
			cost = bcrypt.MinCost
		}
		if cost > bcrypt.MaxCost {
			cost = bcrypt.MaxCost
		}
		h.bcryptCost = cost
		return nil
	}
}

// NewHasher returns a bcrypt Hasher unless options say otherwise.
func NewHasher(opts ...HasherOption) (*Hasher, error) {
	h := &Hasher{scheme: SchemeBcrypt, bcryptCost: DefaultBcryptCost}
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Scheme returns the scheme used for new hashes.
func (h *Hasher) Scheme() Scheme { return h.scheme }

// Hash derives a digest of plain with a fresh salt.
func (h *Hasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	switch h.scheme {
	case SchemeArgon2id:
		return hashArgon2id(plain)
	default:
		b, err := bcrypt.GenerateFromPassword([]byte(plain), h.bcryptCost)
		if err != nil {
			if errors.Is(err, bcrypt.ErrPasswordTooLong) {
				return "", fmt.Errorf("%w: password too long", ErrInvalidInput)
			}
			return "", err
		}
		return string(b), nil
	}
}

// Verify reports whether plain matches stored. A mismatch is (false, nil);
// an unreadable stored hash is an error.
func (h *Hasher) Verify(plain, stored string) (bool, error) {
	scheme, ok := SchemeOf(stored)
	if !ok {
		return false, ErrUnknownScheme
	}
	switch scheme {
	case SchemeArgon2id:
		return verifyArgon2id(plain, stored)
	default:
		// bcrypt ignores input past 72 bytes; Hash never accepts such input.
		if len(plain) > bcryptMaxInput {
			return false, nil
		}
		err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, fmt.Errorf("auth: bcrypt hash: %w", err)
		}
	}
}

// VerifyDummy spends the same work as a real verification. It runs when a
// login names an unknown email so timing does not reveal registration.
func (h *Hasher) VerifyDummy(plain string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = h.Hash("unused-password-for-timing")
	})
	if h.dummy != "" {
		_, _ = h.Verify(plain, h.dummy)
	}
}

// NeedsRehash reports whether stored was produced by a scheme other than the current one.
func (h *Hasher) NeedsRehash(stored string) bool {
	scheme, ok := SchemeOf(stored)
	return !ok || scheme != h.scheme
}

// SchemeOf inspects the prefix of a stored hash.
func SchemeOf(stored string) (Scheme, bool) {
	switch {
	case strings.HasPrefix(stored, "$argon2id$"):
		return SchemeArgon2id, true
	case strings.HasPrefix(stored, "$2a$"), strings.HasPrefix(stored, "$2b$"), strings.HasPrefix(stored, "$2y$"):
		return SchemeBcrypt, true
	}
	return "", false
}

func hashArgon2id(plain string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(plain), salt, argonIterations, argonMemory, argonParallelism, argonKeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonIterations, argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func verifyArgon2id(plain, stored string) (bool, error) {
	// $argon2id$v=19$m=65536,t=2,p=1$salt$key
	parts := strings.Split(stored, "$")
	if len(parts) != 6 {
		return false, errors.New("auth: malformed argon2id hash")
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, errors.New("auth: unsupported argon2id version")
	}
	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false, fmt.Errorf("auth: argon2id params: %w", err)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("auth: argon2id salt: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false, errors.New("auth: argon2id key")
	}
	got := argon2.IDKey([]byte(plain), salt, iterations, memory, parallelism, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
