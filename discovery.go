package main

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/grandcat/zeroconf"
)

// Bridge is a Philips Hue bridge found on the local network.
type Bridge struct {
	ID       string
	Model    string
	Name     string
	IP       net.IP
	Port     int
	Hostname string
}

func (b Bridge) String() string {
	return fmt.Sprintf("%s (%s) at %s:%d", b.Name, b.ID, b.IP, b.Port)
}

// ScanBridges browses mDNS for Hue bridges until ctx is done and returns the
// distinct bridges seen.
func ScanBridges(ctx context.Context) ([]Bridge, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("creating mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(ctx, "_hue._tcp", "local.", entries); err != nil {
		return nil, fmt.Errorf("browsing for Hue bridges: %w", err)
	}
	return collectBridges(ctx, entries), nil
}

// collectBridges drains entries until it is closed or ctx is done, dropping
// repeated announcements of the same bridge ID.
func collectBridges(ctx context.Context, entries <-chan *zeroconf.ServiceEntry) []Bridge {
	var bridges []Bridge
	seen := make(map[string]bool)
	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return bridges
			}
			b := parseBridge(entry)
			if b.ID != "" {
				if seen[b.ID] {
					continue
				}
				seen[b.ID] = true
			}
			bridges = append(bridges, b)
		case <-ctx.Done():
			return bridges
		}
	}
}

func parseBridge(entry *zeroconf.ServiceEntry) Bridge {
	b := Bridge{
		Name:     entry.Instance,
		Port:     entry.Port,
		Hostname: entry.HostName,
	}

	if len(entry.AddrIPv4) > 0 {
		b.IP = entry.AddrIPv4[0]
	} else if len(entry.AddrIPv6) > 0 {
		b.IP = entry.AddrIPv6[0]
	}

	for _, txt := range entry.Text {
		key, value, ok := strings.Cut(txt, "=")
		if !ok {
			continue
		}
		switch key {
		case "bridgeid":
			b.ID = value
		case "modelid":
			b.Model = value
		}
	}

	return b
}
