package identity

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func writeAddress(t *testing.T, root, iface, mac string) {
	t.Helper()
	dir := filepath.Join(root, iface)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "address"), []byte(mac+"\n"), 0o644); err != nil {
		t.Fatalf("write address: %v", err)
	}
}

func TestResolveKnownEmitter(t *testing.T) {
	root := t.TempDir()
	writeAddress(t, root, "eth0", "b8:27:eb:7d:fd:97")

	r := NewResolver(root, nil, zerolog.Nop())
	id, err := r.Resolve("eth0")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id.ShortCode != "06" {
		t.Fatalf("expected emitter code 06, got %q", id.ShortCode)
	}
	if id.HardwareMAC != "b8:27:eb:7d:fd:97" {
		t.Fatalf("unexpected mac: %q", id.HardwareMAC)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeAddress(t, root, "eth0", "b8:27:eb:85:7a:5e")

	r := NewResolver(root, nil, zerolog.Nop())
	first, err := r.Resolve("eth0")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := r.Resolve("eth0")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first != second {
		t.Fatalf("resolution not idempotent: %+v vs %+v", first, second)
	}
}

func TestResolveMissingInterfaceFailsHard(t *testing.T) {
	r := NewResolver(t.TempDir(), nil, zerolog.Nop())

	_, err := r.Resolve("eth0")
	if !errors.Is(err, ErrIdentityUnavailable) {
		t.Fatalf("expected ErrIdentityUnavailable, got %v", err)
	}
}

func TestResolveMalformedAddressFailsHard(t *testing.T) {
	root := t.TempDir()
	writeAddress(t, root, "eth0", "not-a-mac")

	r := NewResolver(root, nil, zerolog.Nop())
	_, err := r.Resolve("eth0")
	if !errors.Is(err, ErrIdentityUnavailable) {
		t.Fatalf("expected ErrIdentityUnavailable, got %v", err)
	}
}

func TestResolveUnmappedEmitter(t *testing.T) {
	root := t.TempDir()
	writeAddress(t, root, "eth0", "b8:27:eb:aa:bb:cc")

	r := NewResolver(root, nil, zerolog.Nop())
	_, err := r.Resolve("eth0")
	if !errors.Is(err, ErrUnknownEmitter) {
		t.Fatalf("expected ErrUnknownEmitter, got %v", err)
	}
}

func TestResolveWithOverrideMap(t *testing.T) {
	root := t.TempDir()
	writeAddress(t, root, "wlan0", "02:00:00:de:ad:01")

	r := NewResolver(root, map[string]string{"de:ad:01": "77"}, zerolog.Nop())
	id, err := r.Resolve("wlan0")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id.ShortCode != "77" {
		t.Fatalf("expected emitter code 77, got %q", id.ShortCode)
	}
}

func TestLoadMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emitters.yaml")
	content := "\"7d:fd:97\": \"06\"\n\"DE:AD:01\": \"77\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write map: %v", err)
	}

	table, err := LoadMap(path)
	if err != nil {
		t.Fatalf("load map: %v", err)
	}
	if table["de:ad:01"] != "77" {
		t.Fatalf("expected normalized lowercase key, got %v", table)
	}
}

func TestLoadMapRejectsBadSuffix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emitters.yaml")
	if err := os.WriteFile(path, []byte("\"deadbeef\": \"01\"\n"), 0o644); err != nil {
		t.Fatalf("write map: %v", err)
	}

	if _, err := LoadMap(path); err == nil {
		t.Fatal("expected malformed suffix to be rejected")
	}
}
