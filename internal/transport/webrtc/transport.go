package webrtc

import (
	"fmt"

	"github.com/pion/webrtc/v4"

	"peerlink/internal/domain"
)

// DefaultSTUNServers are used when the configuration names none.
var DefaultSTUNServers = []string{"stun:stun.l.google.com:19302"}

// Factory returns a domain.TransportFactory building pion-backed transports
// with the given STUN servers.
func Factory(stunServers []string) domain.TransportFactory {
	if len(stunServers) == 0 {
		stunServers = DefaultSTUNServers
	}
	cfg := webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{{URLs: stunServers}},
	}
	return func() (domain.Transport, error) {
		pc, err := webrtc.NewPeerConnection(cfg)
		if err != nil {
			return nil, fmt.Errorf("new peer connection: %w", err)
		}
		return &Transport{pc: pc}, nil
	}
}

// Transport wraps one webrtc.PeerConnection.
type Transport struct {
	pc *webrtc.PeerConnection
}

var _ domain.Transport = (*Transport)(nil)

func (t *Transport) CreateOffer() (domain.SessionDescription, error) {
	offer, err := t.pc.CreateOffer(nil)
	if err != nil {
		return domain.SessionDescription{}, err
	}
	return fromPion(offer), nil
}

func (t *Transport) CreateAnswer() (domain.SessionDescription, error) {
	answer, err := t.pc.CreateAnswer(nil)
	if err != nil {
		return domain.SessionDescription{}, err
	}
	return fromPion(answer), nil
}

func (t *Transport) SetLocalDescription(desc domain.SessionDescription) error {
	sd, err := toPion(desc)
	if err != nil {
		return err
	}
	return t.pc.SetLocalDescription(sd)
}

func (t *Transport) SetRemoteDescription(desc domain.SessionDescription) error {
	sd, err := toPion(desc)
	if err != nil {
		return err
	}
	return t.pc.SetRemoteDescription(sd)
}

func (t *Transport) AddICECandidate(cand domain.ICECandidate) error {
	mid := cand.SDPMid
	idx := cand.SDPMLineIndex
	return t.pc.AddICECandidate(webrtc.ICECandidateInit{
		Candidate:     cand.Candidate,
		SDPMid:        &mid,
		SDPMLineIndex: &idx,
	})
}

func (t *Transport) CreateDataChannel(label string) (domain.DataChannel, error) {
	dc, err := t.pc.CreateDataChannel(label, nil)
	if err != nil {
		return nil, err
	}
	return &dataChannel{dc: dc}, nil
}

func (t *Transport) OnICECandidate(fn func(domain.ICECandidate)) {
	t.pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			// Gathering finished.
			return
		}
		init := c.ToJSON()
		cand := domain.ICECandidate{Candidate: init.Candidate}
		if init.SDPMid != nil {
			cand.SDPMid = *init.SDPMid
		}
		if init.SDPMLineIndex != nil {
			cand.SDPMLineIndex = *init.SDPMLineIndex
		}
		fn(cand)
	})
}

func (t *Transport) OnDataChannel(fn func(domain.DataChannel)) {
	t.pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		fn(&dataChannel{dc: dc})
	})
}

func (t *Transport) OnFailure(fn func(error)) {
	t.pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		switch state {
		case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateClosed:
			fn(fmt.Errorf("peer connection %s", state))
		}
	})
}

func (t *Transport) Close() error { return t.pc.Close() }

type dataChannel struct {
	dc *webrtc.DataChannel
}

var _ domain.DataChannel = (*dataChannel)(nil)

func (c *dataChannel) Label() string { return c.dc.Label() }

func (c *dataChannel) Send(p []byte) error { return c.dc.Send(p) }

func (c *dataChannel) OnOpen(fn func()) { c.dc.OnOpen(fn) }

func (c *dataChannel) OnMessage(fn func(p []byte)) {
	c.dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		fn(msg.Data)
	})
}

func (c *dataChannel) Close() error { return c.dc.Close() }

func fromPion(sd webrtc.SessionDescription) domain.SessionDescription {
	return domain.SessionDescription{Type: sd.Type.String(), SDP: sd.SDP}
}

func toPion(desc domain.SessionDescription) (webrtc.SessionDescription, error) {
	var t webrtc.SDPType
	switch desc.Type {
	case "offer":
		t = webrtc.SDPTypeOffer
	case "answer":
		t = webrtc.SDPTypeAnswer
	default:
		return webrtc.SessionDescription{}, fmt.Errorf("unsupported description type %q", desc.Type)
	}
	return webrtc.SessionDescription{Type: t, SDP: desc.SDP}, nil
}
