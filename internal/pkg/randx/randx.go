/*
Package randx provides functions for generating unique identifiers and
cryptographically secure random tokens.

It is used for user, message, and connection IDs (standard UUIDs) and for
Base62-encoded upload file keys.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// FileKeyLength is the length of the random part of an upload file key.
	FileKeyLength = 16
)

// NewID generates a standard UUID v4 string, used as the unique identifier
// for users, messages, and connections.
func NewID() string {
	return uuid.New().String()
}

// Base62Token generates a Base62 string of the given length using a
// cryptographically secure random number generator.
func Base62Token(length int) (string, error) {
	result := make([]byte, length)
	max := big.NewInt(int64(len(Base62Chars)))

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random token: %w", err)
		}
		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// FileKey generates a random storage key for an uploaded file, preserving the
// original file extension (which must include the leading dot, or be empty).
func FileKey(ext string) (string, error) {
	token, err := Base62Token(FileKeyLength)
	if err != nil {
		return "", err
	}
	return token + ext, nil
}
