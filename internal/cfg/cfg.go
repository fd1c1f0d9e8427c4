// Package cfg provides configuration and command-line interface setup for tubevault.
package cfg

import (
	"context"
	"strings"
	"time"

	"tubevault/internal/domain/consts"
	"tubevault/internal/domain/keys"
	"tubevault/internal/utils/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "tubevault",
	Short: "Tubevault collects and downloads videos into a local vault.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Level = viper.GetInt(keys.DebugLevel)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// InitCommands initializes all commands and their flags.
func InitCommands() error {
	viper.AutomaticEnv()
	viper.SetEnvPrefix("tubevault")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if err := initProgramFlags(rootCmd); err != nil {
		return err
	}

	rootCmd.AddCommand(
		addCmd(),
		listCmd(),
		searchCmd(),
		downloadCmd(),
		deleteCmd(),
		serveCmd(),
	)
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// initProgramFlags sets program-wide flags and binds them to viper.
func initProgramFlags(rootCmd *cobra.Command) error {
	rootCmd.PersistentFlags().String(keys.DataDir, "", "Application data directory (default ~/.tubevault)")
	if err := viper.BindPFlag(keys.DataDir, rootCmd.PersistentFlags().Lookup(keys.DataDir)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().Int(keys.DebugLevel, 0, "Debug verbosity level (0-5)")
	if err := viper.BindPFlag(keys.DebugLevel, rootCmd.PersistentFlags().Lookup(keys.DebugLevel)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().Int(keys.MaxConcurrent, consts.DefaultMaxConcurrent, "Maximum simultaneous downloads (0 = unlimited)")
	if err := viper.BindPFlag(keys.MaxConcurrent, rootCmd.PersistentFlags().Lookup(keys.MaxConcurrent)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().Duration(keys.StallTimeout, consts.DefaultStallTimeout, "Fail a download receiving no data for this long")
	if err := viper.BindPFlag(keys.StallTimeout, rootCmd.PersistentFlags().Lookup(keys.StallTimeout)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().String(keys.ServerPort, "", "HTTP server port for the serve command")
	if err := viper.BindPFlag(keys.ServerPort, rootCmd.PersistentFlags().Lookup(keys.ServerPort)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().Bool(keys.BrowserCookies, false, "Load browser cookies for restricted videos")
	if err := viper.BindPFlag(keys.BrowserCookies, rootCmd.PersistentFlags().Lookup(keys.BrowserCookies)); err != nil {
		return err
	}

	return nil
}

// stallTimeout reads the configured stall timeout, guarding nonsense values.
func stallTimeout() time.Duration {
	d := viper.GetDuration(keys.StallTimeout)
	if d <= 0 {
		d = consts.DefaultStallTimeout
	}
	return d
}
