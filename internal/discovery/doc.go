// Package discovery provides UDP broadcast discovery for Switcher Power Plug
// devices.
//
// Switcher plugs periodically broadcast a 165-byte announcement frame on UDP
// port 10002; nothing needs to be sent to trigger them. This package decodes
// those frames into Device records and runs a duration-bounded listener that
// collects every distinct device heard within the window.
//
// # Discovery Process
//
//  1. Bind a broadcast-enabled UDP socket on 0.0.0.0:10002
//  2. Receive frames until the configured duration elapses
//  3. Decode each frame; non-Switcher traffic is silently skipped
//  4. Deduplicate by device id (first broadcast wins within one window)
//  5. Return the collected device set
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	devices, err := scanner.Scan(context.Background(), 30*time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range devices {
//	    fmt.Printf("found %s (%s) at %s\n", d.Name, d.DeviceID, d.IPAddress)
//	}
//
// Only the Power Plug device family (type code 0x01A8) is recognized; frames
// from other Switcher models are skipped like any other non-matching traffic.
package discovery
