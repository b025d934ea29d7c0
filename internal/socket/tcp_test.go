package socket

import (
	"context"
	"crypto/tls"
	"net"
	"testing"
	"time"
)

func TestTCPSocketConnectSendReceive(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 5)
		conn.Read(buf)
		conn.Write([]byte("pong"))
	}()

	s := NewTCP()
	ctx := context.Background()
	if err := s.Connect(ctx, ln.Addr().String(), time.Second); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer s.Close()

	if err := s.Send(ctx, []byte("ping"), time.Second); err != nil {
		t.Fatalf("Send: %v", err)
	}
	got, err := s.Receive(ctx, time.Second)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if string(got) != "pong" {
		t.Fatalf("Receive = %q, want pong", got)
	}
}

func TestTCPSocketConnectRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close() // nothing listening now

	s := NewTCP()
	if err := s.Connect(context.Background(), addr, 200*time.Millisecond); err == nil {
		t.Fatal("Connect to closed listener succeeded, want error")
	}
}

func TestTCPSocketHandshakeUpgradesToTLS(t *testing.T) {
	cert, err := generateSelfSignedCert()
	if err != nil {
		t.Fatalf("generateSelfSignedCert: %v", err)
	}

	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{Certificates: []tls.Certificate{cert}})
	if err != nil {
		t.Fatalf("tls.Listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 5)
		conn.Read(buf)
		conn.Write([]byte("pong"))
	}()

	s := NewTCP()
	ctx := context.Background()
	if err := s.Connect(ctx, ln.Addr().String(), time.Second); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer s.Close()

	err = s.Handshake(ctx, TLSConfig{Enabled: true, InsecureSkipVerify: true}, time.Second)
	if err != nil {
		t.Fatalf("Handshake: %v", err)
	}

	if err := s.Send(ctx, []byte("ping"), time.Second); err != nil {
		t.Fatalf("Send: %v", err)
	}
	got, err := s.Receive(ctx, time.Second)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if string(got) != "pong" {
		t.Fatalf("Receive = %q, want pong", got)
	}
}

func TestHandshakeNoopWhenDisabled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	s := NewTCP()
	ctx := context.Background()
	if err := s.Connect(ctx, ln.Addr().String(), time.Second); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer s.Close()

	if err := s.Handshake(ctx, TLSConfig{Enabled: false}, time.Second); err != nil {
		t.Fatalf("Handshake with Enabled=false returned error: %v", err)
	}
}
