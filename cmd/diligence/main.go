package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"public_diligence/pkg/core/config"
	"public_diligence/pkg/core/logger"
	"public_diligence/pkg/core/pipeline"
)

func main() {
	godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "diligence",
		Short: "Desktop diligence report generator for public companies",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newRunCommand())
	return rootCmd
}

func newRunCommand() *cobra.Command {
	var (
		outDir     string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "run \"Apple, Microsoft\"",
		Short: "Run the diligence pipeline for comma-separated company names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			names := pipeline.SplitCompanies(strings.Join(args, ","))
			if len(names) == 0 {
				return fmt.Errorf("no company names provided")
			}

			provider := pipeline.NewLiveProvider(cfg.Provider)
			orchestrator := pipeline.New(provider)

			fmt.Printf("Running analysis for: %s\n", strings.Join(names, ", "))
			outcomes := orchestrator.RunBatch(cmd.Context(), names)

			for _, outcome := range outcomes {
				if !outcome.Succeeded() {
					fmt.Printf("  %s\n", outcome.Notice())
					continue
				}
				path := filepath.Join(outDir, outcome.Report.FileName)
				if err := os.WriteFile(path, outcome.Report.Data, 0644); err != nil {
					logger.Log.Warnf("Failed to write %s: %v", path, err)
					continue
				}
				fmt.Printf("  Report generated for %s: %s\n", outcome.Company, path)
			}

			// Per-company failures are batch-recoverable, not CLI errors.
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory for generated reports")
	cmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file")

	return cmd
}
