package jwtkit

import (
	"crypto/sha256"
	"crypto/x509"
	"strings"
	"sync"

	"github.com/mr-tron/base58"
)

const (
	// DefaultKeyID labels a configured key whose kid could not be computed.
	DefaultKeyID = "ent-rs256"
	// EphemeralKeyID labels generated in-memory keys. Tokens signed with an
	// ephemeral key are invalidated by a process restart.
	EphemeralKeyID = "ent-ephemeral"
)

// KeyConfig is the externally supplied key material for the provider.
type KeyConfig struct {
	// PrivateKeyPEM is an optional PEM-encoded RSA private key. When empty
	// the provider generates an ephemeral key on first use.
	PrivateKeyPEM string
	// KeyID overrides the derived key id.
	KeyID string
}

// KeyProvider is the single source of truth for the entitlement-signing key.
// The key is materialized lazily on first use; initialization is single-flight
// so concurrent first callers observe exactly one key. The key is never
// rotated mid-process.
type KeyProvider struct {
	cfg KeyConfig

	once   sync.Once
	signer *RSASigner
	err    error
}

func NewKeyProvider(cfg KeyConfig) *KeyProvider {
	return &KeyProvider{cfg: cfg}
}

// Signer returns the materialized signing key, provisioning it on first call.
// All callers after a failed provisioning observe the same error; the
// provider does not retry.
func (p *KeyProvider) Signer() (*RSASigner, error) {
	p.once.Do(p.provision)
	return p.signer, p.err
}

// JWK returns the public-key description for publication.
func (p *KeyProvider) JWK() (JWK, error) {
	s, err := p.Signer()
	if err != nil {
		return JWK{}, err
	}
	return RSAPublicToJWK(s.PublicKey(), s.KID(), s.Algorithm()), nil
}

// JWKS returns the published key set: exactly the current public key.
func (p *KeyProvider) JWKS() (JWKS, error) {
	k, err := p.JWK()
	if err != nil {
		return JWKS{}, err
	}
	return JWKS{Keys: []JWK{k}}, nil
}

func (p *KeyProvider) provision() {
	pem := strings.TrimSpace(p.cfg.PrivateKeyPEM)
	if pem == "" {
		kid := p.cfg.KeyID
		if kid == "" {
			kid = EphemeralKeyID
		}
		p.signer, p.err = NewRSASigner(2048, kid)
		return
	}
	signer, err := NewRSASignerFromPEM("", []byte(pem))
	if err != nil {
		p.err = err
		return
	}
	kid := p.cfg.KeyID
	if kid == "" {
		kid = keyFingerprint(signer)
	}
	if kid == "" {
		kid = DefaultKeyID
	}
	signer.kid = kid
	p.signer = signer
}

// keyFingerprint derives a stable key id from the public key so the same PEM
// always publishes under the same kid across restarts.
func keyFingerprint(s *RSASigner) string {
	der, err := x509.MarshalPKIXPublicKey(s.PublicKey())
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(der)
	return "ent-" + base58.Encode(sum[:12])
}
