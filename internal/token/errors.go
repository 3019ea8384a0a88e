// ABOUTME: Failure kinds for token decoding and verification
// ABOUTME: Sentinel errors matched with errors.Is plus a label helper for metrics

package token

import (
	"errors"
)

// Verification failure kinds.
var (
	// ErrMalformedToken means the string is not three decodable segments with
	// well-formed header and claims.
	ErrMalformedToken = errors.New("malformed token")

	// ErrBadSignature means the signature does not match the header and claims
	// under the process signing key.
	ErrBadSignature = errors.New("bad token signature")

	// ErrExpired means the token is authentic but its exp claim has passed.
	ErrExpired = errors.New("token expired")

	// ErrWrongTokenUse means an authentic, unexpired token was presented where
	// the other token kind is required (e.g. an access token at refresh).
	ErrWrongTokenUse = errors.New("wrong token use")
)

// ErrWeakSecret is returned when the signing secret is shorter than MinSecretLength.
var ErrWeakSecret = errors.New("signing secret too short")

// Kind returns a short stable label for a verification error, suitable for
// metric labels and log fields. Unknown errors map to "error"; nil maps to "ok".
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMalformedToken):
		return "malformed"
	case errors.Is(err, ErrBadSignature):
		return "bad_signature"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrWrongTokenUse):
		return "wrong_use"
	default:
		return "error"
	}
}
