package cmd

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/manav03panchal/tasklog/internal/errors"
	"github.com/manav03panchal/tasklog/internal/output"
	"github.com/manav03panchal/tasklog/internal/tracker"
)

// Export command flags.
var (
	exportFlagAs     string
	exportFlagOutput string
)

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:     "export [TASK_ID]",
	Aliases: []string{"ex", "dump"},
	Short:   "Export tasks with their days and document metadata",
	Long: `Export every task, or one task, with all days and document metadata.
Document content is not included; use 'tasklog doc get' for that.

Examples:
  tasklog export
  tasklog export 0190a1b2
  tasklog export --as yaml -o backup.yaml`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeTaskArgs,
	RunE:              runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFlagAs, "as", output.ExportJSON, "Export format: json, yaml")
	exportCmd.Flags().StringVarP(&exportFlagOutput, "output", "o", "", "Output file (stdout if omitted)")
	exportCmd.RegisterFlagCompletionFunc("as", cobra.FixedCompletions(
		[]string{output.ExportJSON, output.ExportYAML}, cobra.ShellCompDirectiveNoFileComp))

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	switch exportFlagAs {
	case output.ExportJSON, output.ExportYAML, "yml":
	default:
		return errors.NewUserErrorWithField("as", exportFlagAs,
			"unknown export format "+exportFlagAs, "Use --as json or --as yaml.")
	}

	var views []tracker.TaskView
	if len(args) == 1 {
		task, err := rt.Tasks.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		view, err := rt.Tasks.Get(cmd.Context(), task.ID)
		if err != nil {
			return err
		}
		views = append(views, *view)
	} else {
		all, err := rt.Tasks.List(cmd.Context())
		if err != nil {
			return err
		}
		views = all
	}

	tasks := make([]*output.TaskOutput, 0, len(views))
	for i := range views {
		docs, err := documentsByLog(cmd.Context(), views[i].Task.ID)
		if err != nil {
			return err
		}
		tasks = append(tasks, output.NewTaskOutput(&views[i], true, docs))
	}
	export := output.NewExport(rt.Now(), tasks)

	if exportFlagOutput == "" {
		return rt.Formatter.WriteExport(export, exportFlagAs)
	}

	file, err := os.Create(exportFlagOutput)
	if err != nil {
		return errors.NewSystemErrorWithOp("export", "cannot create "+exportFlagOutput, err)
	}
	defer file.Close()

	f := output.NewFormatter()
	f.Writer = file
	if err := f.WriteExport(export, exportFlagAs); err != nil {
		return err
	}

	if !rt.IsJSON() {
		rt.CLIFormatter().Success("Exported " + pluralTasks(len(tasks)) + " to " + exportFlagOutput)
	}
	return nil
}

func pluralTasks(n int) string {
	if n == 1 {
		return "1 task"
	}
	return humanize.Comma(int64(n)) + " tasks"
}
