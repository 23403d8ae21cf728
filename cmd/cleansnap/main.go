package main

import (
	"fmt"
	"os"
	"syscall"

	"cleansnap/internal/app"
	"cleansnap/internal/config"
	"cleansnap/internal/storage"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a CleanApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Scan", "Delete").
func newApp(cmd *cobra.Command, operation string) (*app.CleanApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewCleanApp(cmd.Context(), cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// promptPIN reads a PIN from the terminal without echoing it.
func promptPIN(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pin, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading pin: %w", err)
	}
	return string(pin), nil
}

// printProgress renders a simple percentage progress line.
func printProgress(fraction float64) {
	fmt.Fprintf(os.Stderr, "\rscanning... %3.0f%%", fraction*100)
	if fraction >= 1.0 {
		fmt.Fprintln(os.Stderr)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cleansnap",
	Short: "Media library cleanup and private vault",
}

// config command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		hostID := uuid.New().String()
		cfg := config.NewConfig(hostID, defaults["base_dir"])
		cfg.Library.Roots = configInitRoots

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Host ID: %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configInitRoots []string

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Host ID:  %s\n", cfg.HostID)
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		fmt.Printf("Library:  %s %v\n", cfg.Library.Type, cfg.Library.Roots)
		fmt.Printf("Vault:    %s (encrypt=%v)\n", cfg.Vault.Type, cfg.Vault.Encrypt)
		return nil
	},
}

// scan command

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the library for duplicates, bursts, screenshots, and large files",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Scan")
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Scan(cmd.Context(), printProgress)
		if err != nil {
			return err
		}

		fmt.Printf("Assets scanned:    %d\n", result.AssetCount)
		fmt.Printf("Duplicate groups:  %d (%d removable, %s)\n",
			len(result.DuplicateGroups), result.DuplicateCount, storage.FormatBytes(result.SavingsBytes))
		fmt.Printf("Burst groups:      %d\n", len(result.SimilarGroups))
		fmt.Printf("Screenshots:       %d\n", len(result.Screenshots))
		fmt.Printf("Large files:       %d\n", len(result.LargeFiles))
		fmt.Printf("Videos:            %d\n", len(result.Videos))
		if result.Unfingerprinted > 0 {
			fmt.Printf("Unreadable:        %d (excluded from duplicate grouping)\n", result.Unfingerprinted)
		}
		savings := storage.PotentialSavings(result.DuplicateGroups, result.Screenshots)
		fmt.Printf("Potential savings: %s\n", storage.FormatBytes(savings))
		return nil
	},
}

// duplicates command

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "List exact-duplicate groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Duplicates")
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Scan(cmd.Context(), printProgress)
		if err != nil {
			return err
		}

		if len(result.DuplicateGroups) == 0 {
			fmt.Println("No exact duplicates found.")
			return nil
		}
		for i, g := range result.DuplicateGroups {
			fmt.Printf("Group %d: %d copies, %s reclaimable\n", i, len(g.Members), storage.FormatBytes(g.PotentialSavings))
			for j, m := range g.Members {
				marker := " "
				if j == 0 {
					marker = "*" // keeper
				}
				fmt.Printf("  %s %s (%s)\n", marker, m.ID, storage.FormatBytes(m.ByteSize))
			}
		}
		return nil
	},
}

// similar command

var similarCmd = &cobra.Command{
	Use:   "similar",
	Short: "List burst groups (photos taken within the same hour)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Similar")
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Scan(cmd.Context(), printProgress)
		if err != nil {
			return err
		}

		if len(result.SimilarGroups) == 0 {
			fmt.Println("No burst groups found.")
			return nil
		}
		for i, g := range result.SimilarGroups {
			fmt.Printf("Group %d: %d photos around %s\n", i, len(g.Members), g.BucketKey.Format("2006-01-02 15:00"))
			for _, m := range g.Members {
				fmt.Printf("    %s (%s)\n", m.ID, storage.FormatBytes(m.ByteSize))
			}
		}
		return nil
	},
}

// screenshots command

var screenshotsCmd = &cobra.Command{
	Use:   "screenshots",
	Short: "List screenshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Screenshots")
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Scan(cmd.Context(), printProgress)
		if err != nil {
			return err
		}
		for _, s := range result.Screenshots {
			fmt.Printf("%s (%s)\n", s.ID, storage.FormatBytes(s.ByteSize))
		}
		return nil
	},
}

// large command

var largeCmd = &cobra.Command{
	Use:   "large",
	Short: "List large files, biggest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Large")
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Scan(cmd.Context(), printProgress)
		if err != nil {
			return err
		}
		for _, f := range result.LargeFiles {
			fmt.Printf("%s (%s, %s)\n", f.ID, storage.FormatBytes(f.ByteSize), f.Kind)
		}
		return nil
	},
}

// clean command

var (
	cleanKeepFirst   bool
	cleanScreenshots bool
	cleanToggle      []string
	cleanDryRun      bool
	cleanYes         bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Select and delete redundant assets",
	Long: `Scans the library, builds a selection, and deletes it in one batch.

--keep-first selects everything except the first-seen copy in every
duplicate group. --screenshots adds all screenshots. --toggle flips
individual asset ids in or out of the selection, including keepers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Delete")
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.Scan(cmd.Context(), printProgress); err != nil {
			return err
		}

		svc := a.Service()
		if cleanKeepFirst {
			if err := svc.SelectKeepFirstAll(); err != nil {
				return err
			}
		}
		if cleanScreenshots {
			if err := svc.SelectScreenshots(); err != nil {
				return err
			}
		}
		for _, id := range cleanToggle {
			svc.Toggle(id)
		}

		selected := svc.SelectionIDs()
		if len(selected) == 0 {
			fmt.Println("Nothing selected.")
			return nil
		}

		fmt.Printf("Selected %d assets for deletion:\n", len(selected))
		for _, id := range selected {
			fmt.Printf("  %s\n", id)
		}
		if cleanDryRun {
			return nil
		}

		if !cleanYes {
			fmt.Print("Delete these assets? [y/N] ")
			var answer string
			fmt.Scanln(&answer)
			if answer != "y" && answer != "Y" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		count, err := svc.CommitDeletion(cmd.Context())
		if err != nil {
			return fmt.Errorf("deletion failed (selection kept, re-run to retry): %w", err)
		}
		fmt.Printf("Deleted %d assets.\n", count)
		return nil
	},
}

// status command

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show storage figures and scan history",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Status")
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.StorageInfo()
		if err != nil {
			return err
		}
		fmt.Printf("Disk:    %s used of %s (%.0f%%), %s free\n",
			storage.FormatBytes(info.UsedSpace), storage.FormatBytes(info.TotalSpace),
			info.UsedPercentage()*100, storage.FormatBytes(info.FreeSpace))
		fmt.Printf("Library: %s\n", storage.FormatBytes(info.LibrarySize))

		history, err := a.Service().ScanHistory(5)
		if err != nil {
			return err
		}
		if len(history) == 0 {
			fmt.Println("\nNo scans recorded yet. Run `cleansnap scan`.")
			return nil
		}
		fmt.Println("\nRecent scans:")
		for _, rec := range history {
			fmt.Printf("  %s  %d assets, %d removable duplicates, %s reclaimable\n",
				rec.FinishedAt.Format("2006-01-02 15:04"), rec.AssetCount,
				rec.DuplicateCount, storage.FormatBytes(rec.SavingsBytes))
		}
		return nil
	},
}

// vault commands

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "PIN-protected private storage",
}

var vaultSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure the vault PIN",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "VaultSetup")
		if err != nil {
			return err
		}
		defer a.Close()

		pin, err := promptPIN("Choose a 4-digit PIN: ")
		if err != nil {
			return err
		}
		if err := a.Vault().SetupPIN(pin); err != nil {
			return err
		}
		fmt.Println("Vault PIN configured.")
		return nil
	},
}

// unlockVault prompts for the PIN and unlocks the vault for this process.
func unlockVault(a *app.CleanApp) error {
	pin, err := promptPIN("PIN: ")
	if err != nil {
		return err
	}
	return a.Vault().VerifyPIN(pin)
}

var vaultAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Add a file's content to the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "VaultAdd")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := unlockVault(a); err != nil {
			return err
		}

		payload, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		entry, err := a.Vault().AddEntry(payload)
		if err != nil {
			return err
		}
		fmt.Printf("Added entry %s (%s)\n", entry.ID, storage.FormatBytes(int64(len(entry.Payload))))
		return nil
	},
}

var vaultListCmd = &cobra.Command{
	Use:   "list",
	Short: "List vault entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "VaultList")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := unlockVault(a); err != nil {
			return err
		}

		entries := a.Vault().Entries()
		if len(entries) == 0 {
			fmt.Println("Vault is empty.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %s  %s\n", e.ID, e.AddedAt.Format("2006-01-02 15:04"),
				storage.FormatBytes(int64(len(e.Payload))))
		}
		return nil
	},
}

var vaultRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an entry from the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "VaultRemove")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := unlockVault(a); err != nil {
			return err
		}
		if err := a.Vault().RemoveEntry(args[0]); err != nil {
			return err
		}
		fmt.Println("Removed.")
		return nil
	},
}

var vaultExportCmd = &cobra.Command{
	Use:   "export <id> <dest>",
	Short: "Write a vault entry's payload to a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "VaultExport")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := unlockVault(a); err != nil {
			return err
		}

		for _, e := range a.Vault().Entries() {
			if e.ID == args[0] {
				if err := os.WriteFile(args[1], e.Payload, 0600); err != nil {
					return fmt.Errorf("writing %s: %w", args[1], err)
				}
				fmt.Printf("Exported %s to %s\n", e.ID, args[1])
				return nil
			}
		}
		return fmt.Errorf("no vault entry with id %s", args[0])
	},
}

var vaultChangePinCmd = &cobra.Command{
	Use:   "change-pin",
	Short: "Change the vault PIN",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "VaultChangePin")
		if err != nil {
			return err
		}
		defer a.Close()

		oldPIN, err := promptPIN("Current PIN: ")
		if err != nil {
			return err
		}
		newPIN, err := promptPIN("New 4-digit PIN: ")
		if err != nil {
			return err
		}
		if err := a.Vault().ChangePIN(oldPIN, newPIN); err != nil {
			return err
		}
		fmt.Println("Vault PIN changed.")
		return nil
	},
}

func init() {
	configInitCmd.Flags().StringSliceVar(&configInitRoots, "root", nil, "library root directory (repeatable)")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	cleanCmd.Flags().BoolVar(&cleanKeepFirst, "keep-first", false, "select all but the first copy in every duplicate group")
	cleanCmd.Flags().BoolVar(&cleanScreenshots, "screenshots", false, "select all screenshots")
	cleanCmd.Flags().StringSliceVar(&cleanToggle, "toggle", nil, "toggle an asset id in or out of the selection (repeatable)")
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "show the selection without deleting")
	cleanCmd.Flags().BoolVarP(&cleanYes, "yes", "y", false, "skip the confirmation prompt")

	vaultCmd.AddCommand(vaultSetupCmd)
	vaultCmd.AddCommand(vaultAddCmd)
	vaultCmd.AddCommand(vaultListCmd)
	vaultCmd.AddCommand(vaultRemoveCmd)
	vaultCmd.AddCommand(vaultExportCmd)
	vaultCmd.AddCommand(vaultChangePinCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(duplicatesCmd)
	rootCmd.AddCommand(similarCmd)
	rootCmd.AddCommand(screenshotsCmd)
	rootCmd.AddCommand(largeCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(vaultCmd)
}
