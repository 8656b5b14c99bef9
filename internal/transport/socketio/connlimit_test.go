package socketio

import (
	"fmt"
	"testing"
)

func TestConnectionLimiterLocalhostAlwaysAllowed(t *testing.T) {
	cl := NewConnectionLimiter(1)

	for i := 0; i < 10; i++ {
		if evicted := cl.TryAdd(fmt.Sprintf("local-%d", i), "127.0.0.1:5000"); evicted != "" {
			t.Errorf("localhost connection %d should not evict anyone, got %s", i, evicted)
		}
	}
	if cl.External() != 0 {
		t.Errorf("loopback clients must not count as external, got %d", cl.External())
	}
}

func TestConnectionLimiterLoopbackForms(t *testing.T) {
	for _, addr := range []string{"::1", "[::1]:80", "::ffff:127.0.0.1", "127.0.0.5"} {
		if !isLocalIP(hostOf(addr)) {
			t.Errorf("%q should be local", addr)
		}
	}
	if isLocalIP(hostOf("192.168.1.5:3000")) {
		t.Error("LAN address should be external")
	}
}

func TestConnectionLimiterSecondExternalEvictsOldest(t *testing.T) {
	cl := NewConnectionLimiter(1)

	if evicted := cl.TryAdd("ext-1", "192.168.1.100"); evicted != "" {
		t.Errorf("first external should not evict anyone, got %s", evicted)
	}
	if evicted := cl.TryAdd("ext-2", "192.168.1.101"); evicted != "ext-1" {
		t.Errorf("expected eviction of ext-1, got %q", evicted)
	}
}

func TestConnectionLimiterDuplicateAddIgnored(t *testing.T) {
	cl := NewConnectionLimiter(1)
	cl.TryAdd("ext-1", "10.0.0.1")

	if evicted := cl.TryAdd("ext-1", "10.0.0.1"); evicted != "" {
		t.Errorf("re-adding a tracked client should not evict, got %q", evicted)
	}
	if cl.External() != 1 {
		t.Errorf("expected 1 external, got %d", cl.External())
	}
}

func TestConnectionLimiterRemoveFreesSlot(t *testing.T) {
	cl := NewConnectionLimiter(1)
	cl.TryAdd("ext-1", "10.0.0.1")
	cl.Remove("ext-1")
	cl.Remove("never-added")

	if evicted := cl.TryAdd("ext-2", "10.0.0.2"); evicted != "" {
		t.Errorf("slot should be free after Remove, evicted %q", evicted)
	}
}

func TestConnectionLimiterEvictionOrder(t *testing.T) {
	cl := NewConnectionLimiter(2)
	cl.TryAdd("a", "10.0.0.1")
	cl.TryAdd("b", "10.0.0.2")
	cl.TryAdd("local", "127.0.0.1")

	if evicted := cl.TryAdd("c", "10.0.0.3"); evicted != "a" {
		t.Errorf("expected oldest external a evicted, got %q", evicted)
	}
	if evicted := cl.TryAdd("d", "10.0.0.4"); evicted != "b" {
		t.Errorf("expected b evicted next, got %q", evicted)
	}
}
