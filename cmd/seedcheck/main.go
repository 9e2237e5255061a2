package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	datadir   = btcutil.AppDataDir("seedcheck-cli", false)
	statePath = filepath.Join(datadir, "state.json")

	initialState = map[string]string{
		"rpcserver": "localhost:18100",
		"timeout":   "10s",
	}

	rootCmd = &cobra.Command{
		Use:   "seedcheck",
		Short: "CLI for seedcheck daemon",
		Long: "This CLI lets you generate recovery phrases and verify their " +
			"backups against a running seedcheck daemon",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if _, err := os.Stat(datadir); os.IsNotExist(err) {
				os.Mkdir(datadir, os.ModeDir|0755)
			}
		},
		Version: formatVersion(),
	}
)

func init() {
	rootCmd.AddCommand(configCmd, seedCmd, sessionCmd, backupCmd, verifyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
