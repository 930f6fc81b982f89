package main

import (
	"fmt"
	"os"

	pgc "github.com/MixinNetwork/pgc-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	config     Config
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pgc",
	Short: "Confidential transfer verifier and ledger",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		config, err = LoadConfig(configPath)
		if err != nil {
			return err
		}
		logger, err = config.Logger()
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the yaml config")
	rootCmd.AddCommand(ipaFixtureCmd)
	rootCmd.AddCommand(verifyIPACmd)
	rootCmd.AddCommand(demoCmd)
}

func newParams() (*pgc.Params, error) {
	return pgc.NewParams(config.Bitsize, config.Parties)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
