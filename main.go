package main

import (
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"dupefinder/database"
	"dupefinder/logging"
	"dupefinder/signalhandler"
	"dupefinder/utils"
)

var (
	dbPath     string
	configPath string
	debugMode  bool
	logPath    string
	workers    int

	db          *sql.DB
	stopSignals func()
	cleanupOnce sync.Once
)

var rootCmd = &cobra.Command{
	Use:   "dupefinder",
	Short: "Find duplicate photos and videos in a fingerprinted catalog",
	Long: `dupefinder groups the assets of a photo catalog into duplicate sets using
fingerprints computed by an external hashing tool (exact hash, dHash, pHash).

Import the hasher's manifest first, then list duplicate sets, ask which files
are safe to delete when one folder holds the masters, or look up the
duplicates of a single file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		if debugMode {
			if err := logging.SetupLogger(logPath); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to setup logging: %v\n", err)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "Debug mode enabled. Logging to: %s\n", logPath)
			}
		}

		var err error
		db, err = initDatabaseWithRetry(dbPath)
		if err != nil {
			return err
		}

		stopSignals = signalhandler.SetupHandler(cleanup)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		cleanup()
	},
}

func cleanup() {
	cleanupOnce.Do(func() {
		if db != nil {
			db.Close()
		}
		logging.CloseLogger()
	})
}

// initDatabaseWithRetry opens the catalog, retrying while another process holds a lock
func initDatabaseWithRetry(path string) (*sql.DB, error) {
	const maxRetries = 3

	var err error
	for i := 0; i < maxRetries; i++ {
		var conn *sql.DB
		conn, err = database.InitDatabase(path)
		if err == nil {
			return conn, nil
		}

		if i < maxRetries-1 {
			logging.LogWarning("Error initializing database (attempt %d/%d): %v - retrying...", i+1, maxRetries, err)
			time.Sleep(time.Second * time.Duration(i+1))
		}
	}
	return nil, fmt.Errorf("error initializing database %s after %d attempts: %w", path, maxRetries, err)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dbPath, "database", utils.GetDefaultDatabasePath(), "path to the catalog database")
	flags.StringVar(&configPath, "config", "", "similarity policy file (YAML)")
	flags.BoolVar(&debugMode, "debug", false, "write a debug log")
	flags.StringVar(&logPath, "logfile", "dupefinder.log", "debug log path")
	flags.IntVar(&workers, "workers", 0, "comparison workers (0 = automatic)")
	addPolicyFlags(flags)
}

func main() {
	err := rootCmd.Execute()
	if stopSignals != nil {
		stopSignals()
	}
	cleanup()
	if err != nil {
		os.Exit(1)
	}
}
