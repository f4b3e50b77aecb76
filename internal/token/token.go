package token

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const (
	// 18 bytes gives 144 bits of entropy and a 24-character token.
	entropyBytes = 18
	maxAttempts  = 5
)

// ExistsFunc reports whether a candidate token is already stored.
type ExistsFunc func(ctx context.Context, token string) (bool, error)

// Generator mints URL-safe share tokens. Candidates are checked against the
// store and regenerated on collision; with this much entropy a collision is
// practically impossible, but the check is still required so a duplicate can
// never be silently overwritten.
type Generator struct {
	Exists ExistsFunc
}

func (g *Generator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		buf := make([]byte, entropyBytes)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("token: read random: %w", err)
		}
		candidate := base64.RawURLEncoding.EncodeToString(buf)

		taken, err := g.Exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("token: uniqueness check: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("token: no unique candidate after %d attempts", maxAttempts)
}
