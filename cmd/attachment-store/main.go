package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/daykeep/attachment-store/internal/app"
	"github.com/daykeep/attachment-store/internal/attachment"
	"github.com/daykeep/attachment-store/internal/config"
	"github.com/daykeep/attachment-store/internal/journal"
	"github.com/daykeep/attachment-store/internal/logger"
	"github.com/daykeep/attachment-store/internal/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgDir    string
	configID  string
	logLevel  string
	logFormat string
	log       *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "attachment-store",
	Short: "Date-scoped attachment storage",
	Long: `Stores files attached to calendar dates under <data_root>/<YYYY-MM-DD>/_files/,
resolving name collisions deterministically and keeping an optional journal
of add and delete operations.`,
}

func init() {
	// Setup default logger until we load config
	log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(log)

	cobra.OnInitialize(initConfig)

	// Command line flags
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config-dir", "", "config directory (default is ./config)")
	rootCmd.PersistentFlags().StringVar(&configID, "config-id", "", "specific config ID to use")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override logging format (text, json, dev)")

	// Bind flags to viper
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	journalCmd.Flags().StringVar(&journalDate, "date", "", "filter by date key")
	journalCmd.Flags().StringVar(&journalStatus, "status", "", "filter by status (stored, failed, deleted)")
	journalCmd.Flags().StringVar(&journalAction, "action", "", "filter by action (add, delete)")

	rootCmd.AddCommand(addCmd, listCmd, deleteCmd, openCmd, revealCmd, journalCmd, watchCmd)
}

func initConfig() {
	configDir := "./config"
	if cfgDir != "" {
		configDir = cfgDir
	}

	config.InitLogger(log)
	if err := config.LoadConfigs(configDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configs: %v\n", err)
		os.Exit(1)
	}

	if len(config.ListConfigs()) == 0 {
		fmt.Fprintf(os.Stderr, "No configurations found in %s\n", configDir)
		os.Exit(1)
	}
}

func activeConfig() (*types.Config, error) {
	if configID != "" {
		return config.GetConfig(configID)
	}

	enabled := config.GetEnabledConfigs()
	switch len(enabled) {
	case 0:
		return nil, fmt.Errorf("no enabled configurations, pass --config-id")
	case 1:
		return enabled[0], nil
	default:
		return nil, fmt.Errorf("multiple enabled configurations, pick one with --config-id")
	}
}

// setup resolves the active configuration and builds the store + journal
// for it. Flag overrides bound through viper win over the profile values.
func setup() (*types.Config, attachment.Store, *journal.Manager, error) {
	cfg, err := activeConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	applyLoggingOverrides(cfg)
	log = logger.Setup(cfg)
	slog.SetDefault(log)

	store, jm, err := app.StoreFor(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, store, jm, nil
}

// applyLoggingOverrides lets flag values bound through viper win over the
// profile's logging section.
func applyLoggingOverrides(cfg *types.Config) {
	if v := viper.GetString("logging.level"); v != "" {
		cfg.Logging.Level = v
	}
	if v := viper.GetString("logging.format"); v != "" {
		cfg.Logging.Format = v
	}
}

var addCmd = &cobra.Command{
	Use:   "add <date> <file>...",
	Short: "Attach files to a date",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, jm, err := setup()
		if err != nil {
			return err
		}
		defer jm.Close()

		dateKey, sources := args[0], args[1:]
		stored, addErr := store.AddFiles(dateKey, sources)
		journalAdds(jm, dateKey, sources, stored, addErr)

		for _, name := range stored {
			fmt.Println(name)
		}
		return addErr
	},
}

// journalAdds records one journal entry per source, pairing stored names
// back to the sources they came from.
func journalAdds(jm *journal.Manager, dateKey string, sources, stored []string, addErr error) {
	failed := make(map[string][]error)
	if addErr != nil {
		var batch *attachment.BatchError
		if errors.As(addErr, &batch) {
			for _, f := range batch.Failures {
				failed[f.Source] = append(failed[f.Source], f.Err)
			}
		} else {
			// The whole batch failed before any copy (bad date, folder
			// creation); nothing per-file to record.
			return
		}
	}

	i := 0
	for _, src := range sources {
		if causes := failed[src]; len(causes) > 0 {
			jm.RecordFailed(dateKey, src, causes[0])
			failed[src] = causes[1:]
			continue
		}
		if i < len(stored) {
			jm.RecordStored(dateKey, stored[i], src)
			i++
		}
	}
}

var listCmd = &cobra.Command{
	Use:   "list <date>",
	Short: "List the attachments of a date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, jm, err := setup()
		if err != nil {
			return err
		}
		defer jm.Close()

		attachments, err := store.ListFiles(args[0])
		if err != nil {
			return err
		}

		for _, a := range attachments {
			fmt.Printf("%-40s %10s  %s\n", a.Name, a.SizeHuman, a.ModTime.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <date> <name>",
	Short: "Delete one attachment of a date",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, jm, err := setup()
		if err != nil {
			return err
		}
		defer jm.Close()

		if err := store.DeleteFile(args[0], args[1]); err != nil {
			return err
		}
		jm.RecordDeleted(args[0], args[1])
		return nil
	},
}

var openCmd = &cobra.Command{
	Use:   "open <date> <name>",
	Short: "Open an attachment with the OS default application",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, jm, err := setup()
		if err != nil {
			return err
		}
		defer jm.Close()

		return store.OpenFile(args[0], args[1])
	},
}

var revealCmd = &cobra.Command{
	Use:   "reveal <date>",
	Short: "Reveal a date's attachment folder in the file browser",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, jm, err := setup()
		if err != nil {
			return err
		}
		defer jm.Close()

		return store.OpenDateFolder(args[0])
	},
}

var (
	journalDate   string
	journalStatus string
	journalAction string
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show recorded attachment operations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, jm, err := setup()
		if err != nil {
			return err
		}
		defer jm.Close()

		filter := map[string]string{}
		if journalDate != "" {
			filter["date_key"] = journalDate
		}
		if journalStatus != "" {
			filter["status"] = journalStatus
		}
		if journalAction != "" {
			filter["action"] = journalAction
		}

		records, err := jm.Records(filter)
		if err != nil {
			return err
		}

		for _, r := range records {
			name := r.FileName
			if name == "" {
				name = r.Source
			}
			fmt.Printf("%s  %-6s %-7s %s  %s\n",
				r.RecordedAt.Format("2006-01-02 15:04:05"), r.Action, r.Status, r.DateKey, name)
			if r.Error != "" {
				fmt.Printf("    %s\n", r.Error)
			}
		}
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run in hosting mode: reload configs on change and run journal maintenance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir := "./config"
		if cfgDir != "" {
			configDir = cfgDir
		}

		// Hosting mode follows the active profile's logging section; with
		// several enabled profiles and no --config-id there is no single
		// section to follow, so the bootstrap logger stays.
		if cfg, err := activeConfig(); err == nil {
			applyLoggingOverrides(cfg)
			log = logger.Setup(cfg)
			slog.SetDefault(log)
		}

		application, err := app.New(log, configDir, configID)
		if err != nil {
			return fmt.Errorf("failed to create application: %w", err)
		}
		defer application.Stop()

		if err := application.Start(); err != nil {
			return fmt.Errorf("failed to start application: %w", err)
		}

		// Wait for shutdown signal
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		log.Info("shutting down")
		return nil
	},
}
