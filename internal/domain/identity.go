package domain

// ShortID is the truncated public-key digest used to address a peer's mailbox
// and to display a peer to the user. It is a convenience, not a security
// boundary.
type ShortID string

// String returns the string form of the short identifier.
func (id ShortID) String() string { return string(id) }

// Identity holds the long-term X25519 keypair of the local party.
type Identity struct {
	Pub  X25519Public  `json:"pub"`
	Priv X25519Private `json:"priv"`
}
