// ABOUTME: Encodes and decodes the three-segment header.claims.signature form
// ABOUTME: Decoding failures of any kind are reported as ErrMalformedToken

package token

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Decoded is a token split into its parts. Nothing in it has been verified.
type Decoded struct {
	Header       Header
	Claims       Claims
	Signature    []byte
	SigningInput string

	rawSignature string
}

// canonicalSignature reports whether the signature segment is the canonical
// encoding of Signature. Lenient base64 accepts alternate trailing bits.
func (d *Decoded) canonicalSignature() bool {
	return encodeSegment(d.Signature) == d.rawSignature
}

// Codec converts between header/claims values and token strings.
type Codec struct {
	signer *Signer
	parser *jwt.Parser
}

// NewCodec creates a Codec that signs with signer.
func NewCodec(signer *Signer) *Codec {
	return &Codec{
		signer: signer,
		parser: jwt.NewParser(),
	}
}

// Encode serializes header and claims, signs them, and returns the token string.
func (c *Codec) Encode(header Header, claims *Claims) (string, error) {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("encoding header: %w", err)
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("encoding claims: %w", err)
	}

	signingInput := encodeSegment(headerJSON) + "." + encodeSegment(claimsJSON)
	sig, err := c.signer.Sign(signingInput)
	if err != nil {
		return "", err
	}

	return signingInput + "." + encodeSegment(sig), nil
}

// Decode splits a token string into header, claims and signature without
// checking the signature.
func (c *Codec) Decode(tokenString string) (*Decoded, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(parts))
	}

	var d Decoded
	if err := c.decodeJSON(parts[0], &d.Header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedToken, err)
	}
	if err := c.decodeJSON(parts[1], &d.Claims); err != nil {
		return nil, fmt.Errorf("%w: claims: %v", ErrMalformedToken, err)
	}

	sig, err := c.parser.DecodeSegment(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: signature: %v", ErrMalformedToken, err)
	}
	if len(sig) == 0 {
		return nil, fmt.Errorf("%w: empty signature", ErrMalformedToken)
	}

	d.Signature = sig
	d.SigningInput = parts[0] + "." + parts[1]
	d.rawSignature = parts[2]
	return &d, nil
}

func (c *Codec) decodeJSON(segment string, v any) error {
	if segment == "" {
		return fmt.Errorf("empty segment")
	}
	raw, err := c.parser.DecodeSegment(segment)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// encodeSegment applies the unpadded base64url encoding used for every segment.
func encodeSegment(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}
