// Package token issues and verifies the signed access/refresh tokens that carry
// a library user's session between requests.
//
// # Token Format
//
// Tokens use the compact three-segment form header.claims.signature, each segment
// base64url encoded without padding. The header is fixed to {"alg":"HS256","typ":"JWT"}.
// Verification always uses HMAC-SHA256 with the process signing key; the header's
// alg field is never consulted.
//
// # Claims
//
//   - userId:    numeric user identifier (the subject)
//   - is_admin:  role at issuance time
//   - token_use: "access" or "refresh"
//   - iss:       always "Library API Authorization"
//   - iat, exp:  issuance and expiry, seconds since epoch
//   - jti:       unique token identifier
//
// # Components
//
//	signer, err := NewSigner(secret)         // HMAC sign/verify, pinned algorithm
//	codec := NewCodec(signer)                // encode/decode the three segments
//	issuer := NewIssuer(codec, access, refresh)
//	verifier := NewVerifier(codec, signer)
//
// Most callers use NewManager, which wires all four from a Config.
//
// # Failure Kinds
//
// Verify classifies every failure as exactly one of ErrMalformedToken,
// ErrBadSignature or ErrExpired. Only ErrExpired is recoverable (by refreshing);
// callers match kinds with errors.Is.
package token
