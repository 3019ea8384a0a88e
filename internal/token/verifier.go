// ABOUTME: Verifies token structure, signature and expiry in that order
// ABOUTME: Each failure surfaces as exactly one sentinel kind

package token

import (
	"fmt"
	"time"
)

// Verifier checks tokens minted by an Issuer sharing the same signing key.
type Verifier struct {
	codec  *Codec
	signer *Signer
	now    func() time.Time
}

// NewVerifier creates a Verifier.
func NewVerifier(codec *Codec, signer *Signer, opts ...Option) *Verifier {
	o := applyOptions(opts)
	return &Verifier{
		codec:  codec,
		signer: signer,
		now:    o.now,
	}
}

// Verify decodes the token, checks its signature with the pinned algorithm and
// checks that it has not expired. It does not check token_use; see VerifyUse.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	d, err := v.codec.Decode(tokenString)
	if err != nil {
		return nil, err
	}

	if !v.signer.Verify(d.SigningInput, d.Signature) || !d.canonicalSignature() {
		return nil, ErrBadSignature
	}

	if d.Claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp claim", ErrMalformedToken)
	}
	if !v.now().Before(d.Claims.ExpiresAt.Time) {
		return nil, ErrExpired
	}

	claims := d.Claims
	return &claims, nil
}

// VerifyUse is Verify plus a check that the token was minted for use.
func (v *Verifier) VerifyUse(tokenString string, use Use) (*Claims, error) {
	claims, err := v.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Use != use {
		return nil, fmt.Errorf("%w: want %s, got %q", ErrWrongTokenUse, use, claims.Use)
	}
	return claims, nil
}

// IsValid reports whether the token verifies. It discards the failure kind and
// must not drive decisions that treat expiry differently from tampering.
func (v *Verifier) IsValid(tokenString string) bool {
	_, err := v.Verify(tokenString)
	return err == nil
}
