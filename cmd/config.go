package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/tasklog/internal/config"
	"github.com/manav03panchal/tasklog/internal/errors"
	"github.com/manav03panchal/tasklog/internal/output"
)

// configCmd represents the config command.
var configCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"cfg"},
	Short:   "Inspect configuration",
	Long: `Show the effective configuration after the config file and environment
variables are applied. Secrets are masked.

Examples:
  tasklog config show
  tasklog config show --format json
  tasklog config path`,
	Annotations: map[string]string{annotationNoRuntime: "true"},
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show the effective configuration",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoRuntime: "true"},
	RunE:        runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the config file location",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoRuntime: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		path := flagConfig
		if path == "" {
			path = config.DefaultFile()
		}
		cmd.Println(path)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(flagFormat)
	if err != nil {
		return errors.NewUserError(err.Error(), "Use --format cli, json or plain.")
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	f := output.NewFormatter()
	f.Writer = cmd.OutOrStdout()
	f.Format = format
	if format == output.FormatJSON {
		return f.JSON(cfg.Masked())
	}
	return f.YAML(cfg.Masked())
}
