package domain

// SignalKind discriminates the connection-setup events exchanged through a
// peer's mailbox.
type SignalKind string

const (
	SignalOffer  SignalKind = "offer"
	SignalAnswer SignalKind = "answer"
	SignalICE    SignalKind = "ice"
)

// SessionDescription is the opaque transport-negotiation blob produced and
// consumed by the Transport collaborator (SDP in the WebRTC implementation).
type SessionDescription struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

// ICECandidate is an opaque connectivity candidate discovered by the
// transport and forwarded to the remote side.
type ICECandidate struct {
	Candidate     string `json:"candidate"`
	SDPMid        string `json:"sdp_mid,omitempty"`
	SDPMLineIndex uint16 `json:"sdp_mline_index,omitempty"`
}

// SignalEvent is one item in a mailbox. Offers and answers carry the sender's
// public key so the receiver can derive the session key without a further
// round trip; ICE events carry only the candidate.
type SignalEvent struct {
	Kind        SignalKind          `json:"type"`
	From        ShortID             `json:"from"`
	PublicKey   []byte              `json:"pubkey,omitempty"`
	Description *SessionDescription `json:"description,omitempty"`
	Candidate   *ICECandidate       `json:"candidate,omitempty"`
	SentAtUnix  int64               `json:"ts"`
}

// Frame is the wire format for one encrypted payload on an open data channel.
type Frame struct {
	Nonce  []byte `json:"nonce"`
	Cipher []byte `json:"cipher"`
}

// Message is a decrypted (or undecryptable) chat payload delivered to the
// user. Unreadable is set when the payload arrived before the session key was
// known or failed authentication; Text is empty in that case.
type Message struct {
	From       ShortID
	Text       string
	Unreadable bool
}
