package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"sdkgen/config"
	"sdkgen/internal/logging"
)

var (
	cfgFile  string
	cfg      *config.Config
	rootDir  string
	logLevel string
	debug    bool
	noColor  bool
)

var rootCmd = &cobra.Command{
	Use:   "sdkgen",
	Short: "Generate plugin-sdk class bindings from an exported function table",
	Long: `sdkgen reads the function table written by the IDA plugin-sdk exporter,
classifies every member function of the requested classes (constructors,
destructors, virtuals, statics, methods), and renders C++ headers and
sources that call the original functions through the plugin SDK.

Example usage:
  sdkgen classes "CAE*"              # List matching classes in the table
  sdkgen inspect CPed                # Show how CPed's functions are classified
  sdkgen generate CPed CVehicle      # Generate bindings for two classes
  sdkgen generate --all --jobs 8     # Generate every class in the table`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if cmd.Flags().Changed("log-level") {
			cfg.Logging.Level = logLevel
		}
		if noColor {
			cfg.Logging.Color = false
		}
		if debug {
			cfg.Debug = true
			cfg.Logging.Level = "debug"
		}

		level, err := logging.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return err
		}
		logger := logging.New(os.Stderr, level, cfg.Logging.Color)
		cmd.SetContext(logging.WithLogger(cmd.Context(), logger))

		return nil
	},
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("sdkgen failed", "err", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./sdkgen.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug mode: verbose logs and dumps of classified functions")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored log output")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
