package socket

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"time"
)

// TCPSocket is the default Socket, dialing plain TCP and optionally
// upgrading the connection to TLS on Handshake, the client-side
// mirror of a server-side ACME TLS config.
type TCPSocket struct {
	conn net.Conn
}

// NewTCP returns an unconnected TCPSocket.
func NewTCP() *TCPSocket { return &TCPSocket{} }

func (s *TCPSocket) Connect(ctx context.Context, addr string, timeout time.Duration) error {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("socket: dial %s: %w", addr, err)
	}
	s.conn = conn
	return nil
}

// Handshake upgrades the already-connected socket to TLS. It is a
// no-op when cfg.Enabled is false.
func (s *TCPSocket) Handshake(ctx context.Context, cfg TLSConfig, timeout time.Duration) error {
	if !cfg.Enabled {
		return nil
	}
	if s.conn == nil {
		return fmt.Errorf("socket: handshake before connect")
	}

	tlsCfg := &tls.Config{
		ServerName:         cfg.ServerName,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}

	if len(cfg.RootCAsPEM) > 0 {
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(cfg.RootCAsPEM) {
			return fmt.Errorf("socket: no valid certificates in RootCAsPEM")
		}
		tlsCfg.RootCAs = pool
	}

	if len(cfg.ClientCertPEM) > 0 && len(cfg.ClientKeyPEM) > 0 {
		cert, err := tls.X509KeyPair(cfg.ClientCertPEM, cfg.ClientKeyPEM)
		if err != nil {
			return fmt.Errorf("socket: client certificate: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}

	if deadline, ok := ctx.Deadline(); ok {
		s.conn.SetDeadline(deadline)
	} else if timeout > 0 {
		s.conn.SetDeadline(time.Now().Add(timeout))
	}
	defer s.conn.SetDeadline(time.Time{})

	tlsConn := tls.Client(s.conn, tlsCfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return fmt.Errorf("socket: tls handshake: %w", err)
	}
	s.conn = tlsConn
	return nil
}

func (s *TCPSocket) Send(ctx context.Context, data []byte, timeout time.Duration) error {
	if s.conn == nil {
		return fmt.Errorf("socket: send before connect")
	}
	if err := s.conn.SetWriteDeadline(deadlineFor(ctx, timeout)); err != nil {
		return fmt.Errorf("socket: set write deadline: %w", err)
	}
	if _, err := s.conn.Write(data); err != nil {
		return fmt.Errorf("socket: write: %w", err)
	}
	return nil
}

func (s *TCPSocket) Receive(ctx context.Context, timeout time.Duration) ([]byte, error) {
	if s.conn == nil {
		return nil, fmt.Errorf("socket: receive before connect")
	}
	if err := s.conn.SetReadDeadline(deadlineFor(ctx, timeout)); err != nil {
		return nil, fmt.Errorf("socket: set read deadline: %w", err)
	}
	buf := make([]byte, 4096)
	n, err := s.conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("socket: read: %w", err)
	}
	return buf[:n], nil
}

func (s *TCPSocket) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func deadlineFor(ctx context.Context, timeout time.Duration) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	if timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(timeout)
}
