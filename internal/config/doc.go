// Package config provides persistent state for the switcherctl tool.
//
// This package manages a YAML-based registry that stores two kinds of
// client-side state: a discovery cache (devices recently heard broadcasting,
// with sighting metadata) and pairings (user-chosen aliases bound to device
// ids). The registry follows OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The registry file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/switcherctl/config.yaml or $HOME/.config/switcherctl/config.yaml
//   - macOS: $HOME/.config/switcherctl/config.yaml
//   - Windows: %LOCALAPPDATA%\switcherctl\config.yaml
//
// # Usage Example
//
//	// Load the global registry
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Record freshly discovered devices
//	for _, d := range devices {
//	    registry.AddDevice(d)
//	}
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
