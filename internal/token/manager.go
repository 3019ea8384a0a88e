// ABOUTME: Immutable token configuration and the Manager that wires all components
// ABOUTME: Built once at startup from config and shared read-only across requests

package token

import (
	"errors"
	"fmt"
	"time"
)

// Config is the token subsystem's view of the service configuration.
type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Validate checks that the configuration can mint usable pairs.
func (c Config) Validate() error {
	if len(c.Secret) < MinSecretLength {
		return fmt.Errorf("%w: got %d bytes, need at least %d", ErrWeakSecret, len(c.Secret), MinSecretLength)
	}
	if c.AccessTTL <= 0 {
		return errors.New("access token lifetime must be positive")
	}
	if c.RefreshTTL <= c.AccessTTL {
		return errors.New("refresh token lifetime must exceed access token lifetime")
	}
	return nil
}

// Manager bundles an Issuer and a Verifier over one signing key.
type Manager struct {
	*Issuer
	*Verifier
}

// NewManager validates cfg and builds the signer, codec, issuer and verifier.
func NewManager(cfg Config, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	signer, err := NewSigner(cfg.Secret)
	if err != nil {
		return nil, err
	}
	codec := NewCodec(signer)

	return &Manager{
		Issuer:   NewIssuer(codec, cfg.AccessTTL, cfg.RefreshTTL, opts...),
		Verifier: NewVerifier(codec, signer, opts...),
	}, nil
}
