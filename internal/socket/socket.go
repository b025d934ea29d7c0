// Package socket defines the transport collaborator used by C6, the
// active prober: a small connect/handshake/send/receive/close surface
// that active.go drives without knowing whether it is talking to a
// bare TCP listener or one behind TLS.
//
// The TCP dial follows Checker.performTCPCheck
// (net.DialTimeout against host:port); the TLS handshake is grounded
// on ACMEManager's tls.Config construction, adapted from
// server-side certificate serving to client-side verification.
package socket

import (
	"context"
	"time"
)

// TLSConfig configures the optional TLS handshake performed after
// Connect. A zero value means "no TLS" when passed to a Socket that
// checks Enabled before handshaking.
type TLSConfig struct {
	Enabled            bool
	ServerName         string
	InsecureSkipVerify bool
	// ClientCertPEM and ClientKeyPEM, when both set, present a client
	// certificate during the handshake.
	ClientCertPEM []byte
	ClientKeyPEM  []byte
	// RootCAsPEM, when set, replaces the system trust store for
	// validating the peer certificate.
	RootCAsPEM []byte
}

// Socket is a single-use, non-reusable connection abstraction: Connect
// once, optionally Handshake, exchange Send/Receive, then Close.
type Socket interface {
	Connect(ctx context.Context, addr string, timeout time.Duration) error
	Handshake(ctx context.Context, cfg TLSConfig, timeout time.Duration) error
	Send(ctx context.Context, data []byte, timeout time.Duration) error
	Receive(ctx context.Context, timeout time.Duration) ([]byte, error)
	Close() error
}
