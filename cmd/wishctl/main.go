package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"wishpact/internal/app/bootstrap"
	"wishpact/internal/platform/config"

	"github.com/spf13/cobra"
)

const programName = "wishctl"

var globalFlags = struct {
	driver string
}{}

// withRuntime wires the configured store and runs fn against it.
func withRuntime(cmd *cobra.Command, fn func(context.Context, *bootstrap.Runtime) (any, error)) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if globalFlags.driver != "" {
		cfg.StoreDriver = globalFlags.driver
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	rt, err := bootstrap.NewRuntime(cmd.Context(), cfg, programName)
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := fn(cmd.Context(), rt)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Operate a wishpact deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&globalFlags.driver, "store", "", "override STORE_DRIVER (memory, sqlite, postgres)")
	rootCmd.AddCommand(
		reconcileCommand(),
		treasuryCommand(),
		leaderboardCommand(),
		proposalsCommand(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
