// Package cmd provides the CLI commands for Tasklog.
//
// This software is a derivative work based on Zeit (https://github.com/mrusme/zeit)
// Original work copyright (c) マリウス (mrusme)
// Modifications copyright (c) Manav Panchal
//
// Licensed under the SEGV License, Version 1.0
// See LICENSE file for full license text.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/tasklog/internal/config"
	"github.com/manav03panchal/tasklog/internal/errors"
	"github.com/manav03panchal/tasklog/internal/logging"
	"github.com/manav03panchal/tasklog/internal/output"
	"github.com/manav03panchal/tasklog/internal/runtime"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFormat string
	flagColor  string
	flagDebug  bool
	flagConfig string
)

// rt is the shared runtime context.
var rt *runtime.Context

// annotationNoRuntime marks commands that run without opening the stores.
const annotationNoRuntime = "tasklog/no-runtime"

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tasklog",
	Short: "Track multi-day tasks one day at a time",
	Long: `Tasklog tracks tasks that span a range of days. Every day in the range
gets its own log with notes, a completion percentage and attached documents.

Examples:
  tasklog task create "Write report" --from 2024-03-01 --to 2024-03-05
  tasklog day record 0190a1b2 today --percent 40 --notes "outline done"
  tasklog doc attach 0190a1b2 today draft.pdf
  tasklog task show 0190a1b2
  tasklog export --as yaml`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// __complete still opens the runtime so task ids can be looked up.
		if cmd.Name() == "help" || cmd.Annotations[annotationNoRuntime] != "" {
			return nil
		}

		format, err := output.ParseFormat(flagFormat)
		if err != nil {
			return errors.NewUserError(err.Error(), "Use --format cli, json or plain.")
		}
		colorMode, err := output.ParseColorMode(flagColor)
		if err != nil {
			return errors.NewUserError(err.Error(), "Use --color auto, always or never.")
		}

		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		if flagDebug {
			logging.Init(logging.DebugConfig())
		} else {
			logging.Init(cfg.Logging())
		}

		opts := runtime.DefaultOptions()
		opts.Config = cfg
		opts.Format = format
		opts.ColorMode = colorMode
		opts.Debug = flagDebug

		runCtx := logging.StartRun(context.Background(), cmd.CommandPath())
		cmd.SetContext(runCtx)

		rt, err = runtime.New(runCtx, opts)
		if err != nil {
			return err
		}
		logging.FromContext(runCtx).Debug("command started")
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		err := closeRuntime()
		logging.Close()
		return err
	},
	RunE: runTaskList,
}

func closeRuntime() error {
	if rt == nil {
		return nil
	}
	err := rt.Close()
	rt = nil
	return err
}

// Execute runs the root command and reports any error on stderr, or as a
// JSON error object with --format json.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}
	// PersistentPostRunE is skipped when RunE fails.
	closeRuntime()
	logging.Close()

	err = runtime.WrapDiskFullError(err)
	if flagFormat == string(output.FormatJSON) {
		f := output.NewFormatter()
		f.Writer = os.Stderr
		_ = output.NewJSONFormatter(f).PrintError(errors.GetCategory(err).String(), err.Error(), errors.GetSuggestion(err))
	} else {
		fmt.Fprintln(os.Stderr, "Error: "+runtime.FormatError(err))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "cli",
		"Output format: cli, json, plain")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"Config file (default: $XDG_CONFIG_HOME/tasklog/config.yaml)")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version information",
	Annotations: map[string]string{annotationNoRuntime: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("tasklog %s\n", Version)
		cmd.Printf("  commit: %s\n", Commit)
		cmd.Printf("  built: %s\n", BuildTime)
		cmd.Println("")
		cmd.Println("Based on Zeit (https://github.com/mrusme/zeit)")
		cmd.Println("Licensed under SEGV License v1.0")
	},
}
