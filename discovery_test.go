package main

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func hueEntry(id, ip string) *zeroconf.ServiceEntry {
	e := zeroconf.NewServiceEntry("Hue Bridge - "+id, "_hue._tcp", "local.")
	e.Port = 443
	e.HostName = "hue.local."
	e.AddrIPv4 = []net.IP{net.ParseIP(ip)}
	e.Text = []string{"bridgeid=" + id, "modelid=BSB002", "junk"}
	return e
}

func TestParseBridge(t *testing.T) {
	b := parseBridge(hueEntry("ecb5fafffe000001", "192.168.1.20"))
	if b.ID != "ecb5fafffe000001" || b.Model != "BSB002" || b.Port != 443 || !b.IP.Equal(net.ParseIP("192.168.1.20")) {
		t.Errorf("unexpected bridge: %+v", b)
	}
}

func TestCollectBridgesDeduplicates(t *testing.T) {
	entries := make(chan *zeroconf.ServiceEntry, 3)
	entries <- hueEntry("a", "10.0.0.1")
	entries <- hueEntry("a", "10.0.0.1")
	entries <- hueEntry("b", "10.0.0.2")
	close(entries)

	bridges := collectBridges(context.Background(), entries)
	if len(bridges) != 2 {
		t.Fatalf("expected 2 bridges, got %d", len(bridges))
	}
	if bridges[0].ID != "a" || bridges[1].ID != "b" {
		t.Errorf("unexpected bridges: %v", bridges)
	}
}

func TestCollectBridgesStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// never closed, never written
	entries := make(chan *zeroconf.ServiceEntry)
	if bridges := collectBridges(ctx, entries); len(bridges) != 0 {
		t.Errorf("expected no bridges, got %v", bridges)
	}
}
