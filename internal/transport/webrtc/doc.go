// Package webrtc adapts pion's PeerConnection to the domain.Transport
// contract. It covers only what the connection manager needs: offer/answer
// exchange, trickled ICE candidates, and a single reliable data channel.
package webrtc
