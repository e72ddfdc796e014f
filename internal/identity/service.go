package identity

import (
	"encoding/base64"
	"fmt"
	"strings"

	"peerlink/internal/crypto"
	"peerlink/internal/domain"
)

// Service manages the local identity using a backing store.
type Service struct {
	store domain.IdentityStore
}

// New returns an identity service backed by the given store.
func New(s domain.IdentityStore) *Service { return &Service{store: s} }

// LoadOrCreate reads the persisted keypair, generating and persisting a fresh
// one on first run. Storage failures are surfaced to the caller.
func (s *Service) LoadOrCreate() (domain.Identity, error) {
	id, ok, err := s.store.LoadIdentity()
	if err != nil {
		return domain.Identity{}, fmt.Errorf("load identity: %w", err)
	}
	if ok {
		return id, nil
	}
	return s.generate()
}

// Export returns the private key seed in a transport-safe text encoding.
func (s *Service) Export() (string, error) {
	id, ok, err := s.store.LoadIdentity()
	if err != nil {
		return "", fmt.Errorf("load identity: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("no identity to export")
	}
	return base64.RawURLEncoding.EncodeToString(id.Priv.Slice()), nil
}

// Import decodes a seed, derives the matching public key, persists the pair
// and returns it as the new active identity. A malformed seed fails with
// domain.ErrInvalidFormat and leaves the previous identity untouched.
func (s *Service) Import(seed string) (domain.Identity, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(seed))
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrInvalidFormat, err)
	}
	var priv domain.X25519Private
	if len(raw) != len(priv) {
		return domain.Identity{}, fmt.Errorf("%w: seed must decode to %d bytes (got %d)",
			domain.ErrInvalidFormat, len(priv), len(raw))
	}
	copy(priv[:], raw)
	crypto.Wipe(raw)

	pub, err := crypto.PublicFromPrivate(priv)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrInvalidFormat, err)
	}

	id := domain.Identity{Pub: pub, Priv: priv}
	if err := s.store.SaveIdentity(id); err != nil {
		return domain.Identity{}, fmt.Errorf("persist imported identity: %w", err)
	}
	return id, nil
}

// Regenerate discards the persisted keypair and replaces it with a fresh one.
func (s *Service) Regenerate() (domain.Identity, error) {
	return s.generate()
}

func (s *Service) generate() (domain.Identity, error) {
	priv, pub, err := crypto.GenerateX25519()
	if err != nil {
		return domain.Identity{}, err
	}
	id := domain.Identity{Pub: pub, Priv: priv}
	if err := s.store.SaveIdentity(id); err != nil {
		return domain.Identity{}, fmt.Errorf("persist identity: %w", err)
	}
	return id, nil
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
