/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package identity maps a node's hardware address to its short emitter code.
package identity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

var (
	// ErrIdentityUnavailable indicates the interface's hardware address
	// could not be read. This is a hard configuration failure; an
	// unreadable interface must never degrade to a zero identity.
	ErrIdentityUnavailable = errors.New("identity unavailable")

	// ErrUnknownEmitter indicates the hardware address is readable but not
	// present in the emitter map.
	ErrUnknownEmitter = errors.New("unknown emitter")
)

// Identity is the resolved emitter identity, read-only after resolution.
type Identity struct {
	HardwareMAC string
	ShortCode   string
}

// Resolver resolves interface names to emitter identities. Resolution has
// no side effects and is idempotent.
type Resolver struct {
	sysfsRoot string
	table     map[string]string
	logger    zerolog.Logger
}

// NewResolver creates a resolver reading hardware addresses below sysfsRoot
// (normally /sys/class/net). A nil table selects the built-in emitter map.
func NewResolver(sysfsRoot string, table map[string]string, logger zerolog.Logger) *Resolver {
	if table == nil {
		table = defaultEmitterMap()
	}
	return &Resolver{
		sysfsRoot: sysfsRoot,
		table:     table,
		logger:    logger.With().Str("component", "identity").Logger(),
	}
}

// Resolve reads the hardware address of the named interface and looks up
// its last three octets in the emitter map.
func (r *Resolver) Resolve(interfaceName string) (Identity, error) {
	addrPath := filepath.Join(r.sysfsRoot, interfaceName, "address")
	raw, err := os.ReadFile(addrPath)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: read %s: %v", ErrIdentityUnavailable, addrPath, err)
	}

	mac := strings.ToLower(strings.TrimSpace(string(raw)))
	octets := strings.Split(mac, ":")
	if len(octets) != 6 {
		return Identity{}, fmt.Errorf("%w: malformed hardware address %q on %s", ErrIdentityUnavailable, mac, interfaceName)
	}

	suffix := strings.Join(octets[3:], ":")
	code, ok := r.table[suffix]
	if !ok {
		return Identity{}, fmt.Errorf("%w: %s (suffix %s) has no emitter code", ErrUnknownEmitter, mac, suffix)
	}

	r.logger.Debug().
		Str("interface", interfaceName).
		Str("mac", mac).
		Str("emitter_code", code).
		Msg("identity resolved")

	return Identity{HardwareMAC: mac, ShortCode: code}, nil
}

// defaultEmitterMap is the fleet's fixed hardware-suffix to code table.
func defaultEmitterMap() map[string]string {
	return map[string]string{
		"7d:fd:97": "06",
		"7d:fd:a6": "09",
		"85:7a:5e": "29",
		"85:78:a5": "30",
		"6e:4e:8a": "40",
	}
}
