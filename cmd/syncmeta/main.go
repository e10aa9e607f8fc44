package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"syncmeta-go/internal/app"
	"syncmeta-go/internal/config"
	"syncmeta-go/internal/syncmeta"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withApp reads the config, creates a SyncApp for operation and runs fn with it.
// schema selects the constructor that skips the schema version check.
func withApp(operation string, schema bool, fn func(ctx context.Context, a *app.SyncApp) error) error {
	defaults, err := app.GetDefaults()
	if err != nil {
		return fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults.ConfigPath)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	newApp := app.NewSyncApp
	if schema {
		newApp = app.NewSchemaApp
	}
	a, err := newApp(cfg, operation)
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}
	defer a.Close()

	if err := fn(context.Background(), a); err != nil {
		a.Fail(err)
		return err
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:          "syncmeta",
	Short:        "Record and compare file metadata snapshots between sync sources",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration for this source",
	RunE: func(cmd *cobra.Command, args []string) error {
		sourcePath, _ := cmd.Flags().GetString("source-path")

		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		if sourcePath == "" {
			if sourcePath, err = os.Getwd(); err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}
		}
		sourcePath, err = filepath.Abs(sourcePath)
		if err != nil {
			return fmt.Errorf("resolving source path: %w", err)
		}

		sourceID := uuid.New().String()
		cfg := config.NewConfig(sourceID, sourcePath, defaults.BaseDir)

		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Printf("Source ID:   %s\n", sourceID)
		fmt.Printf("Source Path: %s\n", sourcePath)
		fmt.Printf("Base Dir:    %s\n", defaults.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults.ConfigPath)
		fmt.Printf("Source ID:   %s\n", cfg.Source.ID)
		fmt.Printf("Source Path: %s\n", cfg.Source.Path)
		fmt.Printf("Store:       %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Hash:        %s\n", cfg.Scan.HashAlgorithm)
		fmt.Printf("File IDs:    %s\n", cfg.Scan.FileIDs)
		if len(cfg.Scan.Ignore) > 0 {
			fmt.Printf("Ignore:      %s\n", strings.Join(cfg.Scan.Ignore, ", "))
		}
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		return nil
	},
}

// schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manage the metadata store schema",
}

var schemaInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or upgrade the schema, keeping existing rows",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("schema init", true, func(ctx context.Context, a *app.SyncApp) error {
			if err := a.InitSchema(ctx); err != nil {
				return err
			}
			fmt.Println("Schema is up to date.")
			return nil
		})
	},
}

var schemaResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop and recreate the schema, discarding the rows of every source",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			ok, err := confirm("This deletes the recorded snapshots of ALL sources. Continue?")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Aborted.")
				return nil
			}
		}

		return withApp("schema reset", true, func(ctx context.Context, a *app.SyncApp) error {
			if err := a.ResetSchema(ctx); err != nil {
				return err
			}
			fmt.Println("Schema reset.")
			return nil
		})
	},
}

// confirm asks a yes/no question on the terminal. Without a terminal on stdin
// it refuses, so scripts must pass --force.
func confirm(question string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("refusing to reset without a terminal; pass --force")
	}

	fmt.Printf("%s [y/N] ", question)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

// snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Scan, record and inspect snapshots",
}

var snapshotScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Print the live snapshot of this source",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("snapshot scan", false, func(ctx context.Context, a *app.SyncApp) error {
			snap, err := a.Scan()
			if err != nil {
				return err
			}
			printSnapshot(snap)
			return nil
		})
	},
}

var snapshotRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Scan this source and persist the snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("snapshot record", false, func(ctx context.Context, a *app.SyncApp) error {
			snap, err := a.Record(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Recorded %d files for source %s.\n", snap.Len(), snap.SourceID)
			return nil
		})
	},
}

var snapshotForeignCmd = &cobra.Command{
	Use:   "foreign",
	Short: "Print the last recorded snapshot of every other source",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("snapshot foreign", false, func(ctx context.Context, a *app.SyncApp) error {
			snap, err := a.Foreign(ctx)
			if err != nil {
				return err
			}
			printSnapshot(snap)
			return nil
		})
	},
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the last recorded snapshot of this source",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("snapshot show", false, func(ctx context.Context, a *app.SyncApp) error {
			snap, err := a.Persisted(ctx)
			if err != nil {
				return err
			}
			printSnapshot(snap)
			return nil
		})
	},
}

var snapshotBaselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Summarize the local scan against the other sources' snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("snapshot baseline", false, func(ctx context.Context, a *app.SyncApp) error {
			b, err := a.Baseline(ctx)
			if err != nil {
				return err
			}
			printBaseline(b)
			return nil
		})
	},
}

func printSnapshot(snap *syncmeta.Snapshot) {
	if snap.Len() == 0 {
		fmt.Println("No files recorded.")
		return
	}
	for _, it := range snap.Items {
		fmt.Printf("%-12s  %s  %10d:%-10d  %-12s  %s\n",
			shortHash(it.HashCode),
			it.LastModified.Local().Format("2006-01-02 15:04:05"),
			it.FSID1, it.FSID2,
			shortID(it.SourceID),
			it.RelativePath,
		)
	}
	fmt.Printf("\n%d files\n", snap.Len())
}

// printBaseline prints the count of paths present on one side only or with
// differing content. It reports, it does not reconcile.
func printBaseline(b *syncmeta.Baseline) {
	var localOnly, foreignOnly, differing int
	for i := range b.Local.Items {
		it := &b.Local.Items[i]
		other := b.Foreign.Lookup(it.RelativePath)
		switch {
		case other == nil:
			localOnly++
		case other.HashCode != it.HashCode:
			differing++
		}
	}
	for i := range b.Foreign.Items {
		if b.Local.Lookup(b.Foreign.Items[i].RelativePath) == nil {
			foreignOnly++
		}
	}

	fmt.Printf("Local files:        %d\n", b.Local.Len())
	fmt.Printf("Foreign rows:       %d\n", b.Foreign.Len())
	fmt.Printf("Only local:         %d\n", localOnly)
	fmt.Printf("Only foreign:       %d\n", foreignOnly)
	fmt.Printf("Content differs:    %d\n", differing)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:8] + "…"
	}
	return id
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Maintain the metadata store",
}

var dbExportCmd = &cobra.Command{
	Use:   "export PATH",
	Short: "Write a consistent copy of the store to PATH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("db export", false, func(ctx context.Context, a *app.SyncApp) error {
			if err := a.Export(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Exported store to %s\n", args[0])
			return nil
		})
	},
}

func init() {
	// config
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configInitCmd.Flags().String("source-path", "", "Root directory of this source (default: current directory)")

	// schema
	schemaCmd.AddCommand(schemaInitCmd)
	schemaCmd.AddCommand(schemaResetCmd)
	schemaResetCmd.Flags().Bool("force", false, "Do not ask for confirmation")

	// snapshot
	snapshotCmd.AddCommand(snapshotScanCmd)
	snapshotCmd.AddCommand(snapshotRecordCmd)
	snapshotCmd.AddCommand(snapshotForeignCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotCmd.AddCommand(snapshotBaselineCmd)

	// db
	dbCmd.AddCommand(dbExportCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(dbCmd)
}
