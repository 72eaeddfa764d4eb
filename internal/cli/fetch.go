package cli

import (
	"fmt"

	"github.com/salvage-search/salvage-tools/internal/catalog"
	"github.com/salvage-search/salvage-tools/internal/config"
	"github.com/salvage-search/salvage-tools/internal/fetcher"
	"github.com/salvage-search/salvage-tools/internal/registry"
	"github.com/spf13/cobra"
)

func init() {
	f := fetchCmd.Flags()
	f.String("makes", "", "Make registry JSON (make name -> make id)")
	f.String("output", "", "Output file for the make/model catalog")
	f.String("start-at", "", "Skip makes whose name sorts before this value (empty fetches all)")
	f.String("endpoint", "", "Model search endpoint URL")
	f.Bool("append", false, "Append to the output file instead of replacing it")
	f.Bool("strict", false, "Exit non-zero when the run stops before every make is fetched")
	f.Float64("rate", 0, "Maximum requests per second (0 = unlimited)")
	f.Duration("timeout", 0, "Per-request timeout (default from config, 30s)")

	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch-models",
	Short: "Build the make/model lookup table from the auction search API",
	Long: `Queries the auction site's model search once per make in the make registry
and writes a catalog of normalized model keys to the output file.

The first failed request stops the run. Makes gathered before the failure
are still written, and the command exits 0 unless --strict is given.

  salvage-tools fetch-models
  salvage-tools fetch-models --start-at "" --output out/models.json
  salvage-tools fetch-models --append   # keep appending like older runs did`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		makesPath := stringSetting(cmd, "makes", config.KeyFetchMakes)
		outputPath := stringSetting(cmd, "output", config.KeyFetchOutput)
		startAt := stringSetting(cmd, "start-at", config.KeyFetchStartAt)
		endpoint := stringSetting(cmd, "endpoint", config.KeyFetchEndpoint)
		appendOut := boolSetting(cmd, "append", config.KeyFetchAppend)
		strict, _ := cmd.Flags().GetBool("strict")

		perSecond := config.GetFloat(config.KeyFetchRate)
		if cmd.Flags().Changed("rate") {
			perSecond, _ = cmd.Flags().GetFloat64("rate")
		}
		timeout := config.GetDuration(config.KeyFetchTimeout)
		if cmd.Flags().Changed("timeout") {
			timeout, _ = cmd.Flags().GetDuration("timeout")
		}

		reg, err := registry.Load(makesPath)
		if err != nil {
			return err
		}

		client := fetcher.NewClient(
			fetcher.WithEndpoint(endpoint),
			fetcher.WithUserAgent(config.Get(config.KeyFetchUserAgent)),
			fetcher.WithRunAndDrive(config.GetBool(config.KeyFetchRunAndDrive)),
			fetcher.WithTimeout(timeout),
			fetcher.WithRate(perSecond),
		)

		mode := catalog.Truncate
		if appendOut {
			mode = catalog.Append
		}

		logger.Debug("starting fetch", "registry", makesPath, "makes", reg.Len(), "start_at", startAt, "endpoint", endpoint)

		res, err := fetcher.RunAndPersist(cmd.Context(), client, reg,
			fetcher.Options{StartAt: startAt, Logger: logger},
			fetcher.Output{Path: outputPath, Mode: mode},
		)
		if err != nil {
			return err
		}

		if !res.Complete() {
			logger.Error("fetch stopped early",
				"make", res.FailedMake,
				"err", res.Err,
				"kept", len(res.Catalog),
			)
			if strict {
				return fmt.Errorf("fetch stopped at %s: %w", res.FailedMake, res.Err)
			}
			return nil
		}

		logger.Info("fetch complete",
			"makes", len(res.Catalog),
			"models", res.Catalog.ModelCount(),
			"skipped", len(res.Skipped),
		)
		return nil
	},
}
