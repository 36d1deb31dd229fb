package pkg

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

// GenerateMatchID - generates a short unique identifier for a match.
func GenerateMatchID() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(99999999))
	if err != nil {
		return "", fmt.Errorf("failed to generate match id: %w", err)
	}

	return n.String(), nil
}

// GeneratePlayerID - generates a new unique player identity for anonymous
// connections.
func GeneratePlayerID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate player id: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
