package config

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/nitzanw/switcherctl/internal/discovery"
)

// DefaultCacheMaxAge is how long a cached sighting counts as fresh.
const DefaultCacheMaxAge = 60 * time.Second

// Pairing errors
var (
	// ErrAliasInUse means the alias is already bound to a different device
	ErrAliasInUse = errors.New("alias already paired to another device")

	// ErrAliasNotFound means no pairing exists under the alias
	ErrAliasNotFound = errors.New("alias not paired")

	// ErrEmptyAlias means a pairing was attempted with a blank alias
	ErrEmptyAlias = errors.New("alias must not be empty")
)

// Registry represents the entire persistent state file: the discovery cache
// plus the user's pairings.
type Registry struct {
	Version  int                      `yaml:"version"`
	Cache    map[string]*CachedDevice `yaml:"cache,omitempty"`    // Keyed by device id
	Pairings map[string]*PairedDevice `yaml:"pairings,omitempty"` // Keyed by alias
}

// CachedDevice is one device's discovery history.
type CachedDevice struct {
	Device         *discovery.Device `yaml:"device"`
	LastSeen       time.Time         `yaml:"last_seen"`
	DiscoveryCount int               `yaml:"discovery_count"`
}

// PairedDevice binds a user-chosen alias to a physical device. IP and name
// track the latest sighting so paired commands work without a fresh scan.
type PairedDevice struct {
	DeviceID  string    `yaml:"device_id"`
	IPAddress string    `yaml:"ip_address"`
	Name      string    `yaml:"name,omitempty"`
	PairedAt  time.Time `yaml:"paired_at"`
	LastSeen  time.Time `yaml:"last_seen"`
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:  1,
		Cache:    make(map[string]*CachedDevice),
		Pairings: make(map[string]*PairedDevice),
	}
}

// AddDevice records a discovery sighting in the cache. A device already in
// the cache gets its record replaced and its discovery count bumped.
func (r *Registry) AddDevice(d *discovery.Device) {
	if r.Cache == nil {
		r.Cache = make(map[string]*CachedDevice)
	}

	entry, exists := r.Cache[d.DeviceID]
	if !exists {
		entry = &CachedDevice{}
		r.Cache[d.DeviceID] = entry
	}
	entry.Device = d
	entry.LastSeen = time.Now()
	entry.DiscoveryCount++
}

// FreshDevices returns cached devices last seen within maxAge, sorted by
// device id.
func (r *Registry) FreshDevices(maxAge time.Duration) []*CachedDevice {
	cutoff := time.Now().Add(-maxAge)
	fresh := make([]*CachedDevice, 0, len(r.Cache))
	for _, entry := range r.Cache {
		if entry.LastSeen.After(cutoff) {
			fresh = append(fresh, entry)
		}
	}
	sort.Slice(fresh, func(i, j int) bool {
		return fresh[i].Device.DeviceID < fresh[j].Device.DeviceID
	})
	return fresh
}

// PruneCache evicts entries not seen for twice maxAge. Entries between maxAge
// and twice maxAge are stale for display purposes but kept, since the device
// probably still exists. Returns the number of evicted entries.
func (r *Registry) PruneCache(maxAge time.Duration) int {
	cutoff := time.Now().Add(-2 * maxAge)
	evicted := 0
	for id, entry := range r.Cache {
		if entry.LastSeen.Before(cutoff) {
			delete(r.Cache, id)
			evicted++
		}
	}
	return evicted
}

// ClearCache drops every cached sighting. Pairings are untouched. Returns the
// number of entries removed.
func (r *Registry) ClearCache() int {
	n := len(r.Cache)
	r.Cache = make(map[string]*CachedDevice)
	return n
}

// Pair binds alias to the device. Re-pairing the same device under a new
// alias drops its old alias; an alias already bound to a different device is
// rejected with ErrAliasInUse.
func (r *Registry) Pair(alias string, d *discovery.Device) error {
	if alias == "" {
		return ErrEmptyAlias
	}
	if r.Pairings == nil {
		r.Pairings = make(map[string]*PairedDevice)
	}

	if existing, taken := r.Pairings[alias]; taken && existing.DeviceID != d.DeviceID {
		return fmt.Errorf("%w: %q is bound to device %s", ErrAliasInUse, alias, existing.DeviceID)
	}

	// One alias per device: a re-pair under a new name replaces the old one.
	for old, p := range r.Pairings {
		if p.DeviceID == d.DeviceID && old != alias {
			delete(r.Pairings, old)
		}
	}

	now := time.Now()
	r.Pairings[alias] = &PairedDevice{
		DeviceID:  d.DeviceID,
		IPAddress: d.IPAddress,
		Name:      d.Name,
		PairedAt:  now,
		LastSeen:  now,
	}
	return nil
}

// Unpair removes the pairing under alias.
func (r *Registry) Unpair(alias string) error {
	if _, ok := r.Pairings[alias]; !ok {
		return fmt.Errorf("%w: %q", ErrAliasNotFound, alias)
	}
	delete(r.Pairings, alias)
	return nil
}

// ResolveAlias looks up the pairing under alias.
func (r *Registry) ResolveAlias(alias string) (*PairedDevice, bool) {
	p, ok := r.Pairings[alias]
	return p, ok
}

// AliasFor returns the alias a device id is paired under, if any.
func (r *Registry) AliasFor(deviceID string) (string, bool) {
	for alias, p := range r.Pairings {
		if p.DeviceID == deviceID {
			return alias, true
		}
	}
	return "", false
}

// RecordSighting refreshes a pairing's address, name and last-seen time when
// its device shows up in a discovery scan. No-op for unpaired devices.
func (r *Registry) RecordSighting(d *discovery.Device) {
	for _, p := range r.Pairings {
		if p.DeviceID == d.DeviceID {
			p.IPAddress = d.IPAddress
			p.Name = d.Name
			p.LastSeen = time.Now()
			return
		}
	}
}

// PairingAlias is one alias/pairing tuple for sorted listings.
type PairingAlias struct {
	Alias  string
	Device *PairedDevice
}

// ListPairings returns all pairings sorted by alias.
func (r *Registry) ListPairings() []PairingAlias {
	out := make([]PairingAlias, 0, len(r.Pairings))
	for alias, p := range r.Pairings {
		out = append(out, PairingAlias{Alias: alias, Device: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Alias < out[j].Alias })
	return out
}
