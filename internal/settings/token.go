// internal/settings/token.go
package settings

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var ErrMalformedTokenHash = errors.New("settings: malformed admin token hash")

// argon2Cost is embedded in every encoded hash, so hashes produced with an
// older cost keep verifying after it changes.
type argon2Cost struct {
	memory  uint32
	passes  uint32
	threads uint8
	keyLen  uint32
}

var tokenCost = argon2Cost{memory: 64 * 1024, passes: 1, threads: 4, keyLen: 32}

// HashToken encodes an admin token as
// $argon2id$v=19$m=<KiB>,t=<passes>,p=<threads>$<salt>$<key>, the value
// ADMIN_TOKEN_HASH expects.
func HashToken(token string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	key := argon2.IDKey([]byte(token), salt, tokenCost.passes, tokenCost.memory, tokenCost.threads, tokenCost.keyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, tokenCost.memory, tokenCost.passes, tokenCost.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyToken reports whether token matches an encoded hash from HashToken.
func VerifyToken(token, encoded string) (bool, error) {
	cost, salt, key, err := decodeTokenHash(encoded)
	if err != nil {
		return false, err
	}
	candidate := argon2.IDKey([]byte(token), salt, cost.passes, cost.memory, cost.threads, cost.keyLen)
	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

func decodeTokenHash(encoded string) (argon2Cost, []byte, []byte, error) {
	var cost argon2Cost

	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return cost, nil, nil, ErrMalformedTokenHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return cost, nil, nil, fmt.Errorf("%w: unsupported version %q", ErrMalformedTokenHash, parts[2])
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &cost.memory, &cost.passes, &cost.threads); err != nil {
		return cost, nil, nil, fmt.Errorf("%w: cost %q", ErrMalformedTokenHash, parts[3])
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return cost, nil, nil, fmt.Errorf("%w: salt: %v", ErrMalformedTokenHash, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return cost, nil, nil, fmt.Errorf("%w: key", ErrMalformedTokenHash)
	}
	cost.keyLen = uint32(len(key))

	return cost, salt, key, nil
}
