// Package netcheck detects whether the host has working IPv6 connectivity.
package netcheck

import (
	"context"
	"log/slog"
	"net"
	"time"
)

// Probe target: a public IPv6 resolver. UDP dial only selects a route, no
// packet is sent.
const (
	probeAddr    = "[2400:3200::1]:80"
	probeTimeout = 2 * time.Second
)

// Dialer opens network connections.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// IPv6Supported reports whether the host can route IPv6 traffic.
func IPv6Supported(ctx context.Context) bool {
	return Probe(ctx, &net.Dialer{Timeout: probeTimeout}, probeAddr)
}

// Probe reports whether a UDP socket towards addr can be opened with d.
func Probe(ctx context.Context, d Dialer, addr string) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	conn, err := d.DialContext(ctx, "udp6", addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Resolve turns an "on", "off" or "auto" mode into a decision, probing the
// network only in auto mode.
func Resolve(ctx context.Context, mode string, logger *slog.Logger) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	}

	supported := IPv6Supported(ctx)
	logger.Info("detected ipv6 support", "supported", supported)
	return supported
}
