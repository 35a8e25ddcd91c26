package env

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// Charset selects the alphabet of a generated secret.
type Charset string

const (
	CharsetAlphanumeric Charset = "alphanumeric"
	CharsetHex          Charset = "hex"
	CharsetBase64URL    Charset = "base64url"
)

// MinSecretLength is the shortest secret GenerateSecret returns.
const MinSecretLength = 32

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// defaultLength returns the rendered length of 32 bytes of entropy.
func (c Charset) defaultLength() int {
	switch c {
	case CharsetHex:
		return 64
	case CharsetBase64URL:
		return 43
	default:
		return 40
	}
}

// Generator describes how a key's value is generated. Purpose is a label
// for listings; it does not influence the output.
type Generator struct {
	Charset Charset `yaml:"charset"`
	Length  int     `yaml:"length,omitempty"`
	Purpose string  `yaml:"purpose"`
}

// Generate returns a fresh random value.
func (g Generator) Generate() (string, error) {
	return GenerateSecret(g.Charset, g.Length)
}

// GenerateSecret returns a cryptographically random string of the given
// length in the given charset. A length below MinSecretLength (including
// zero) is raised to the charset's default, which is never shorter.
func GenerateSecret(charset Charset, length int) (string, error) {
	if charset == "" {
		charset = CharsetAlphanumeric
	}
	if length < MinSecretLength {
		length = charset.defaultLength()
	}

	switch charset {
	case CharsetAlphanumeric:
		return randomFromAlphabet(alphanumeric, length)
	case CharsetHex:
		b, err := randomBytes((length + 1) / 2)
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(b)[:length], nil
	case CharsetBase64URL:
		b, err := randomBytes(length*3/4 + 3)
		if err != nil {
			return "", err
		}
		return base64.RawURLEncoding.EncodeToString(b)[:length], nil
	default:
		return "", fmt.Errorf("env: unknown charset %q", charset)
	}
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("env: read random bytes: %w", err)
	}
	return b, nil
}

// randomFromAlphabet draws length characters uniformly from alphabet using
// rejection sampling.
func randomFromAlphabet(alphabet string, length int) (string, error) {
	limit := 256 - (256 % len(alphabet))
	var sb strings.Builder
	sb.Grow(length)

	buf := make([]byte, length)
	for sb.Len() < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("env: read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			sb.WriteByte(alphabet[int(b)%len(alphabet)])
			if sb.Len() == length {
				break
			}
		}
	}
	return sb.String(), nil
}
