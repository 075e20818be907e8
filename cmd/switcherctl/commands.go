package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/nitzanw/switcherctl/internal/config"
	"github.com/nitzanw/switcherctl/internal/control"
	"github.com/nitzanw/switcherctl/internal/discovery"
	"github.com/nitzanw/switcherctl/internal/ui"
)

// Device addressing flags, shared by the commands that talk to one plug
var (
	flagIP    string
	flagID    string
	flagAlias string
)

// Discover flags
var (
	discoverTimeout int
	noCache         bool
	cacheTimeout    int
	cacheOnly       bool
)

// Other command flags
var (
	renameName  string
	forceFlag   bool
	verboseList bool
	pairID      string
	pairIP      string
)

func init() {
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(onCmd)
	rootCmd.AddCommand(offCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(pairCmd)
	rootCmd.AddCommand(unpairCmd)
	rootCmd.AddCommand(listPairedCmd)
	rootCmd.AddCommand(clearCacheCmd)
}

// addDeviceFlags registers the addressing flags on a device command.
// A device is addressed either by --alias, or by --id (with --ip to skip
// the cache lookup).
func addDeviceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagIP, "ip", "", "Device IP address")
	cmd.Flags().StringVar(&flagID, "id", "", "Device id (6 hex chars, from discover)")
	cmd.Flags().StringVar(&flagAlias, "alias", "", "Paired device alias")
}

// resolveTarget turns the addressing flags into a concrete (ip, id) pair,
// consulting pairings and the discovery cache. label is what the device is
// called in output.
func resolveTarget(reg *config.Registry) (ip, id, label string, err error) {
	if flagAlias != "" {
		if flagIP != "" || flagID != "" {
			return "", "", "", errors.New("--alias cannot be combined with --ip/--id")
		}
		paired, ok := reg.ResolveAlias(flagAlias)
		if !ok {
			return "", "", "", fmt.Errorf("no device paired as %q (see 'switcherctl list-paired')", flagAlias)
		}
		if paired.IPAddress == "" {
			return "", "", "", fmt.Errorf("no known address for %q, run 'switcherctl discover' first", flagAlias)
		}
		return paired.IPAddress, paired.DeviceID, flagAlias, nil
	}

	if flagID == "" {
		return "", "", "", errors.New("device id required: pass --id (with optional --ip) or --alias")
	}
	if flagIP != "" {
		return flagIP, flagID, flagID, nil
	}

	entry, ok := reg.Cache[flagID]
	if !ok {
		return "", "", "", fmt.Errorf("device %s not in cache, run 'switcherctl discover' or pass --ip", flagID)
	}
	return entry.Device.IPAddress, flagID, entry.Device.Name, nil
}

// discoverCmd scans the network for plugs
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover Switcher plugs on the network",
	Long: `Listen for Switcher Power Plug broadcasts and list every device heard.

Plugs announce themselves periodically over UDP; discovery is purely
passive and needs no credentials. Results are merged with the local cache
so recently seen devices show up even when their next broadcast falls
outside the listen window.`,
	Example: `  # Listen for the default 30 seconds
  switcherctl discover

  # Quick 5-second scan
  switcherctl discover --timeout 5

  # Show only cached devices, no network traffic
  switcherctl discover --cache-only

  # Ignore the cache entirely
  switcherctl discover --no-cache`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&discoverTimeout, "timeout", 30, "Listen window in seconds")
	discoverCmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore cached devices")
	discoverCmd.Flags().IntVar(&cacheTimeout, "cache-timeout", 60, "Cache freshness window in seconds")
	discoverCmd.Flags().BoolVar(&cacheOnly, "cache-only", false, "List cached devices without scanning")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if noCache && cacheOnly {
		return errors.New("--no-cache and --cache-only are mutually exclusive")
	}

	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}
	maxAge := time.Duration(cacheTimeout) * time.Second

	// seen collects the rows to print: cached entries first, live sightings
	// overwrite them.
	type sighting struct {
		device   *discovery.Device
		lastSeen time.Time // zero for live results
	}
	seen := make(map[string]sighting)

	if !noCache {
		for _, entry := range reg.FreshDevices(maxAge) {
			seen[entry.Device.DeviceID] = sighting{device: entry.Device, lastSeen: entry.LastSeen}
		}
	}

	if !cacheOnly {
		fmt.Printf("Listening for Switcher plugs (%ds)...\n\n", discoverTimeout)

		devices, err := discovery.NewScanner().Scan(cmd.Context(), time.Duration(discoverTimeout)*time.Second)
		if err != nil {
			return fmt.Errorf("discovery failed: %w", err)
		}
		for _, d := range devices {
			reg.AddDevice(d)
			reg.RecordSighting(d)
			seen[d.DeviceID] = sighting{device: d}
		}
	}

	reg.PruneCache(maxAge)
	if err := reg.Save(); err != nil {
		fmt.Println(ui.WarnStyle.Render("warning: could not save cache: " + err.Error()))
	}

	if len(seen) == 0 {
		fmt.Println("No devices found.")
		fmt.Println()
		fmt.Println("Troubleshooting:")
		fmt.Println("  - Plugs broadcast roughly once a second; try a longer --timeout")
		fmt.Println("  - Make sure you are on the same network segment as the plugs")
		fmt.Println("  - Broadcasts arrive on UDP port 10002; check local firewall rules")
		return nil
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Println(ui.TitleStyle.Render(fmt.Sprintf("Found %d device(s):", len(seen))))
	fmt.Println()
	for _, id := range ids {
		s := seen[id]
		alias, _ := reg.AliasFor(id)
		fmt.Println(ui.DeviceRow(s.device, alias, s.lastSeen))
		if alias == "" {
			fmt.Println(ui.PairSuggestion(s.device))
		}
	}
	fmt.Println()
	fmt.Println(ui.MutedStyle.Render("Use 'switcherctl status --id <id>' to query a device"))

	return nil
}

// onCmd switches a plug on
var onCmd = &cobra.Command{
	Use:   "on",
	Short: "Turn a plug on",
	Long: `Turn a Switcher plug on and wait until the device confirms the new state.

The device applies commands asynchronously, so the plug's state is polled
after sending; if it never reports on, the command fails with a
confirmation error even though it may still apply late.`,
	Example: `  # By paired alias
  switcherctl on --alias kitchen

  # By id, address from cache
  switcherctl on --id 9b5a2c

  # Fully explicit
  switcherctl on --ip 192.168.1.42 --id 9b5a2c`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPower(cmd.Context(), discovery.StateOn)
	},
}

// offCmd switches a plug off
var offCmd = &cobra.Command{
	Use:   "off",
	Short: "Turn a plug off",
	Long:  `Turn a Switcher plug off and wait until the device confirms the new state.`,
	Example: `  # By paired alias
  switcherctl off --alias kitchen

  # By id, address from cache
  switcherctl off --id 9b5a2c`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPower(cmd.Context(), discovery.StateOff)
	},
}

func init() {
	addDeviceFlags(onCmd)
	addDeviceFlags(offCmd)
}

func runPower(ctx context.Context, want discovery.DeviceState) error {
	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}
	ip, id, label, err := resolveTarget(reg)
	if err != nil {
		return err
	}

	ctrl := control.NewController(ip, id)

	var opErr error
	if want == discovery.StateOn {
		opErr = ctrl.TurnOn(ctx)
	} else {
		opErr = ctrl.TurnOff(ctx)
	}
	if opErr != nil {
		fmt.Println(ui.RenderFailure(
			fmt.Sprintf("could not turn %s %s", label, want),
			opErr,
			control.GetTroubleshootingHint(opErr),
		))
		return errors.New(control.GetShortErrorMessage(opErr))
	}

	fmt.Println(ui.NewSuccessResult(fmt.Sprintf("%s is now %s", label, want)).
		AddDetail("Device", id).
		AddDetail("Address", ip).
		Render())
	return nil
}

// statusCmd queries a plug's state
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a plug's state and power draw",
	Example: `  # By paired alias
  switcherctl status --alias kitchen

  # By id
  switcherctl status --id 9b5a2c`,
	RunE: runStatus,
}

func init() {
	addDeviceFlags(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}
	ip, id, label, err := resolveTarget(reg)
	if err != nil {
		return err
	}

	status, err := control.NewController(ip, id).GetStatus(cmd.Context())
	if err != nil {
		fmt.Println(ui.RenderFailure(
			"could not read status of "+label,
			err,
			control.GetTroubleshootingHint(err),
		))
		return errors.New(control.GetShortErrorMessage(err))
	}

	fmt.Println(ui.TitleStyle.Render(label))
	fmt.Printf("  %s %s\n", ui.KeyStyle.Render("State:"), ui.StateBadge(status.State))
	fmt.Printf("  %s %s\n", ui.KeyStyle.Render("Power:"), ui.ValueStyle.Render(fmt.Sprintf("%d W", status.PowerConsumption)))
	fmt.Printf("  %s %s\n", ui.KeyStyle.Render("Address:"), ui.MutedStyle.Render(ip))
	fmt.Printf("  %s %s\n", ui.KeyStyle.Render("Device id:"), ui.MutedStyle.Render(id))
	return nil
}

// renameCmd assigns a new device name
var renameCmd = &cobra.Command{
	Use:   "rename",
	Short: "Rename a plug",
	Long: `Assign a new name to a Switcher plug. The name is stored on the device
itself and shows up in its broadcasts; it must be 2 to 32 bytes long.`,
	Example: `  # Rename by alias
  switcherctl rename --alias kitchen --name "Coffee Corner"

  # Rename by id
  switcherctl rename --id 9b5a2c --name "Coffee Corner"`,
	RunE: runRename,
}

func init() {
	addDeviceFlags(renameCmd)
	renameCmd.Flags().StringVar(&renameName, "name", "", "New device name (2-32 bytes)")
	_ = renameCmd.MarkFlagRequired("name")
}

func runRename(cmd *cobra.Command, args []string) error {
	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}
	ip, id, label, err := resolveTarget(reg)
	if err != nil {
		return err
	}

	if err := control.NewController(ip, id).SetName(cmd.Context(), renameName); err != nil {
		fmt.Println(ui.RenderFailure(
			"could not rename "+label,
			err,
			control.GetTroubleshootingHint(err),
		))
		return errors.New(control.GetShortErrorMessage(err))
	}

	// Keep local records in step with the device.
	if entry, ok := reg.Cache[id]; ok {
		entry.Device.Name = renameName
	}
	if alias, ok := reg.AliasFor(id); ok {
		reg.Pairings[alias].Name = renameName
	}
	if err := reg.Save(); err != nil {
		fmt.Println(ui.WarnStyle.Render("warning: could not save cache: " + err.Error()))
	}

	fmt.Println(ui.NewSuccessResult("renamed to "+renameName).
		AddDetail("Device", id).
		AddDetail("Address", ip).
		Render())
	return nil
}

// pairCmd binds an alias to a device
var pairCmd = &cobra.Command{
	Use:   "pair <alias>",
	Short: "Pair a device under an alias",
	Long: `Bind a short alias to a device so later commands can address it by name.

The device is taken from the discovery cache by --id; pass --ip as well to
pair a device that has not been discovered yet. Pairing the same device
again under a new alias replaces the old alias.`,
	Example: `  # Pair a cached device
  switcherctl pair kitchen --id 9b5a2c

  # Pair without a prior scan
  switcherctl pair kitchen --id 9b5a2c --ip 192.168.1.42`,
	Args: cobra.ExactArgs(1),
	RunE: runPair,
}

func init() {
	pairCmd.Flags().StringVar(&pairID, "id", "", "Device id (6 hex chars)")
	pairCmd.Flags().StringVar(&pairIP, "ip", "", "Device IP address (optional when cached)")
	_ = pairCmd.MarkFlagRequired("id")
}

func runPair(cmd *cobra.Command, args []string) error {
	alias := args[0]

	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}

	var device *discovery.Device
	if entry, ok := reg.Cache[pairID]; ok {
		device = entry.Device
	} else {
		if pairIP == "" {
			return fmt.Errorf("device %s not in cache, run 'switcherctl discover' or pass --ip", pairID)
		}
		device = &discovery.Device{
			DeviceID:   pairID,
			IPAddress:  pairIP,
			DeviceType: discovery.PowerPlugTypeLabel,
			State:      discovery.StateUnknown,
		}
	}

	if err := reg.Pair(alias, device); err != nil {
		return err
	}
	if err := reg.Save(); err != nil {
		return err
	}

	fmt.Printf("%s paired %q as %s\n", ui.SuccessStyle.Render(ui.SuccessMarker), alias, device.DeviceID)
	return nil
}

// unpairCmd removes an alias
var unpairCmd = &cobra.Command{
	Use:   "unpair <alias>",
	Short: "Remove a device pairing",
	Example: `  switcherctl unpair kitchen

  # Skip the confirmation prompt
  switcherctl unpair kitchen --force`,
	Args: cobra.ExactArgs(1),
	RunE: runUnpair,
}

func init() {
	unpairCmd.Flags().BoolVar(&forceFlag, "force", false, "Skip confirmation")
}

func runUnpair(cmd *cobra.Command, args []string) error {
	alias := args[0]

	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}
	paired, ok := reg.ResolveAlias(alias)
	if !ok {
		return fmt.Errorf("no device paired as %q", alias)
	}

	if !forceFlag && !ui.Confirm(fmt.Sprintf("Unpair %q (device %s)?", alias, paired.DeviceID)) {
		return nil
	}

	if err := reg.Unpair(alias); err != nil {
		return err
	}
	if err := reg.Save(); err != nil {
		return err
	}

	fmt.Printf("%s unpaired %q\n", ui.SuccessStyle.Render(ui.SuccessMarker), alias)
	return nil
}

// listPairedCmd lists all pairings
var listPairedCmd = &cobra.Command{
	Use:   "list-paired",
	Short: "List paired devices",
	Example: `  switcherctl list-paired

  # Include pairing and sighting timestamps
  switcherctl list-paired --verbose`,
	RunE: runListPaired,
}

func init() {
	listPairedCmd.Flags().BoolVar(&verboseList, "verbose", false, "Show pairing details")
}

func runListPaired(cmd *cobra.Command, args []string) error {
	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}

	pairings := reg.ListPairings()
	if len(pairings) == 0 {
		fmt.Println("No paired devices. Pair one with 'switcherctl pair <alias> --id <id>'.")
		return nil
	}

	for _, p := range pairings {
		name := p.Device.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("%s %-16s %s %s\n",
			ui.PairedMarkerStyle.Render(ui.PairedMarker),
			p.Alias,
			ui.ValueStyle.Render(name),
			ui.MutedStyle.Render("id="+p.Device.DeviceID+"  "+p.Device.IPAddress),
		)
		if verboseList {
			fmt.Printf("    %s\n", ui.MutedStyle.Render(fmt.Sprintf(
				"paired %s, last seen %s",
				p.Device.PairedAt.Format("2006-01-02 15:04"),
				p.Device.LastSeen.Format("2006-01-02 15:04"),
			)))
		}
	}
	return nil
}

// clearCacheCmd wipes the discovery cache
var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Clear the discovery cache",
	Long: `Remove every cached device record. Pairings are kept; only the discovery
cache (device addresses and sighting history) is wiped.`,
	Example: `  switcherctl clear-cache

  # Skip the confirmation prompt
  switcherctl clear-cache --force`,
	RunE: runClearCache,
}

func init() {
	clearCacheCmd.Flags().BoolVar(&forceFlag, "force", false, "Skip confirmation")
}

func runClearCache(cmd *cobra.Command, args []string) error {
	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}

	if len(reg.Cache) == 0 {
		fmt.Println("Cache is already empty.")
		return nil
	}

	if !forceFlag && !ui.ClearCacheConfirmation(len(reg.Cache)) {
		return nil
	}

	removed := reg.ClearCache()
	if err := reg.Save(); err != nil {
		return err
	}

	fmt.Printf("%s removed %d cached device record(s)\n", ui.SuccessStyle.Render(ui.SuccessMarker), removed)
	return nil
}
