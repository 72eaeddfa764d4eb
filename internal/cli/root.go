package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/salvage-search/salvage-tools/internal/branding"
	"github.com/salvage-search/salvage-tools/internal/config"
	"github.com/salvage-search/salvage-tools/internal/logging"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	cfgFile string
	verbose bool

	logger = logging.Discard()
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/"+branding.HomeDir()+"/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every file and request")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` bundles the build-time utilities of the browser extension:
fetching the make/model lookup table from the auction site and packaging
the extension for each supported browser.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.New(cmd.ErrOrStderr(), logging.Options{Verbose: verbose})
		return config.Load(cfgFile)
	},
}

// Execute runs the root command with build info injected via ldflags.
// Interrupts cancel the command context.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// stringSetting returns the flag value when it was set on the command line
// and the config value for key otherwise.
func stringSetting(cmd *cobra.Command, flag, key string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	return config.Get(key)
}

func boolSetting(cmd *cobra.Command, flag, key string) bool {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetBool(flag)
		return v
	}
	return config.GetBool(key)
}
