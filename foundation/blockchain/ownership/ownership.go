// Package ownership issues the challenge messages a wallet owner signs to
// prove they control an address, and verifies the signed responses.
package ownership

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ardanlabs/starchain/foundation/blockchain/signature"
)

// Tag is the protocol tag embedded at the end of every challenge.
const Tag = "starRegistry"

// DefaultWindow is how long a challenge stays valid when no window is
// configured.
const DefaultWindow = 5 * time.Minute

// Set of errors returned when verifying a submission.
var (
	ErrExpired      = errors.New("challenge expired")
	ErrUnauthorized = errors.New("address unauthorized")
)

// Config represents the configuration for the verifier.
type Config struct {
	Window time.Duration    // How long a challenge stays valid.
	Now    func() time.Time // Clock used for issuing and checking challenges.
}

// Verifier issues and checks ownership challenges. No challenge is kept
// server side; freshness comes from the timestamp embedded in the message.
type Verifier struct {
	window time.Duration
	now    func() time.Time
}

// New constructs a verifier for use.
func New(cfg Config) *Verifier {
	window := cfg.Window
	if window <= 0 {
		window = DefaultWindow
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Verifier{
		window: window,
		now:    now,
	}
}

// Window returns the configured validity window.
func (v *Verifier) Window() time.Duration {
	return v.window
}

// IssueChallenge returns the message the owner of the address must sign,
// in the form address:unixSeconds:starRegistry.
func (v *Verifier) IssueChallenge(address string) string {
	return fmt.Sprintf("%s:%d:%s", address, v.now().Unix(), Tag)
}

// Verify checks the message is a fresh challenge for the address and that
// the signature over it was produced by the owner of the address.
func (v *Verifier) Verify(message string, address string, sig string) error {
	challenge, err := Parse(message)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	if !signature.SameAddress(challenge.Address, address) {
		return fmt.Errorf("%w: challenge was issued for %s", ErrUnauthorized, challenge.Address)
	}

	elapsed := v.now().Truncate(time.Second).Sub(challenge.IssuedAt)
	switch {
	case elapsed < 0:
		return fmt.Errorf("%w: challenge issued in the future", ErrUnauthorized)

	case elapsed > v.window:
		return fmt.Errorf("%w: elapsed %s, window %s", ErrExpired, elapsed, v.window)
	}

	if err := signature.VerifyMessage(message, address, sig); err != nil {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	return nil
}

// =============================================================================

// Challenge represents the parts of a challenge message.
type Challenge struct {
	Address  string
	IssuedAt time.Time
}

// Parse breaks the message into its parts. The timestamp is the second
// to last field so the parse does not depend on the address format.
func Parse(message string) (Challenge, error) {
	parts := strings.Split(message, ":")
	if len(parts) < 3 {
		return Challenge{}, fmt.Errorf("malformed challenge %q", message)
	}

	n := len(parts)
	if parts[n-1] != Tag {
		return Challenge{}, fmt.Errorf("unknown challenge tag %q", parts[n-1])
	}

	secs, err := strconv.ParseInt(parts[n-2], 10, 64)
	if err != nil {
		return Challenge{}, fmt.Errorf("challenge timestamp: %w", err)
	}

	c := Challenge{
		Address:  strings.Join(parts[:n-2], ":"),
		IssuedAt: time.Unix(secs, 0),
	}

	return c, nil
}
