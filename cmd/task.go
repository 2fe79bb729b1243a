package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/tasklog/internal/calendar"
	"github.com/manav03panchal/tasklog/internal/errors"
	"github.com/manav03panchal/tasklog/internal/model"
	"github.com/manav03panchal/tasklog/internal/parser"
	"github.com/manav03panchal/tasklog/internal/tracker"
)

// taskCmd represents the task command.
var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"tasks", "t"},
	Short:   "Manage tasks",
	Long: `List, create and change tasks. A task owns one daily log for every day
from its start date to its end date.

Examples:
  tasklog task
  tasklog task create "Write report" --from 2024-03-01 --to 2024-03-05
  tasklog task show 0190a1b2
  tasklog task rename 0190a1b2 "Write final report"
  tasklog task range 0190a1b2 2024-03-02 2024-03-08
  tasklog task repair 0190a1b2`,
	RunE: runTaskList,
}

// Task subcommand flags.
var (
	taskCreateFlagFrom string
	taskCreateFlagTo   string
	taskRangeFlagDrop  bool
	taskRepairFlagDrop bool
)

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks, most recently updated first",
	Args:    cobra.NoArgs,
	RunE:    runTaskList,
}

var taskCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a task and one empty log per day",
	Long: `Create a task spanning --from to --to inclusive. Dates accept YYYY-MM-DD,
relative days (today, tomorrow, +3) and phrases like "next friday".
Without --to the task covers a single day.`,
	Args: cobra.ExactArgs(1),
	RunE: runTaskCreate,
}

var taskShowCmd = &cobra.Command{
	Use:               "show TASK_ID",
	Short:             "Show a task with its days",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskArgs,
	RunE:              runTaskShow,
}

var taskRenameCmd = &cobra.Command{
	Use:               "rename TASK_ID NAME",
	Short:             "Rename a task",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeTaskArgs,
	RunE:              runTaskRename,
}

var taskRangeCmd = &cobra.Command{
	Use:   "range TASK_ID START END",
	Short: "Move a task's date range",
	Long: `Move a task's date range. Days in both the old and new range keep their
notes and percent; new days start empty; days leaving the range are deleted.

Days leaving the range that still have documents are refused unless
--drop-attachments is given, which deletes those documents too.`,
	Args:              cobra.ExactArgs(3),
	ValidArgsFunction: completeTaskArgs,
	RunE:              runTaskRange,
}

var taskRepairCmd = &cobra.Command{
	Use:   "repair TASK_ID",
	Short: "Recreate missing days and remove stray ones",
	Long: `Bring a task's logs back in line with its date range after an
interrupted command. Running it again changes nothing.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskArgs,
	RunE:              runTaskRepair,
}

func init() {
	taskCreateCmd.Flags().StringVar(&taskCreateFlagFrom, "from", "today", "First day")
	taskCreateCmd.Flags().StringVar(&taskCreateFlagTo, "to", "", "Last day (default: same as --from)")
	taskRangeCmd.Flags().BoolVar(&taskRangeFlagDrop, "drop-attachments", false, "Delete documents on days leaving the range")
	taskRepairCmd.Flags().BoolVar(&taskRepairFlagDrop, "drop-attachments", false, "Delete documents on stray days")

	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskRenameCmd)
	taskCmd.AddCommand(taskRangeCmd)
	taskCmd.AddCommand(taskRepairCmd)
	rootCmd.AddCommand(taskCmd)
}

func runTaskList(cmd *cobra.Command, args []string) error {
	views, err := rt.Tasks.List(cmd.Context())
	if err != nil {
		return err
	}

	if rt.IsJSON() {
		return rt.JSONFormatter().PrintTasks(views)
	}
	rt.CLIFormatter().PrintTasks(views)
	return nil
}

func runTaskCreate(cmd *cobra.Command, args []string) error {
	start, end, err := parseRange(taskCreateFlagFrom, taskCreateFlagTo)
	if err != nil {
		return err
	}

	task, err := rt.Tasks.Create(cmd.Context(), tracker.CreateTask{Name: args[0], Start: start, End: end})
	if task != nil && err != nil && !rt.IsJSON() {
		rt.CLIFormatter().Warning("Task " + task.ID + " was created without all of its days.")
	}
	if err != nil {
		return err
	}

	if rt.IsJSON() {
		view, err := rt.Tasks.Get(cmd.Context(), task.ID)
		if err != nil {
			return err
		}
		return rt.JSONFormatter().PrintTask(view, nil)
	}
	rt.CLIFormatter().PrintTaskCreated(task)
	return nil
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	task, err := rt.Tasks.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	view, err := rt.Tasks.Get(cmd.Context(), task.ID)
	if err != nil {
		return err
	}
	docs, err := documentsByLog(cmd.Context(), task.ID)
	if err != nil {
		return err
	}

	if rt.IsJSON() {
		return rt.JSONFormatter().PrintTask(view, docs)
	}
	rt.CLIFormatter().PrintTask(view, docs)
	return nil
}

func runTaskRename(cmd *cobra.Command, args []string) error {
	task, err := rt.Tasks.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	renamed, err := rt.Tasks.Rename(cmd.Context(), tracker.RenameTask{TaskID: task.ID, Name: args[1]})
	if err != nil {
		return err
	}

	if rt.IsJSON() {
		view, err := rt.Tasks.Get(cmd.Context(), renamed.ID)
		if err != nil {
			return err
		}
		return rt.JSONFormatter().PrintTask(view, nil)
	}
	rt.CLIFormatter().Success("Renamed to " + rt.CLIFormatter().TaskName(renamed.Name))
	return nil
}

func runTaskRange(cmd *cobra.Command, args []string) error {
	task, err := rt.Tasks.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	start, end, err := parseRange(args[1], args[2])
	if err != nil {
		return err
	}

	result, err := rt.Tasks.UpdateRange(cmd.Context(), tracker.UpdateRange{
		TaskID:          task.ID,
		Start:           start,
		End:             end,
		DropAttachments: taskRangeFlagDrop,
	})
	if err != nil {
		return err
	}

	if rt.IsJSON() {
		return rt.JSONFormatter().PrintRange(result)
	}
	rt.CLIFormatter().PrintRange(result)
	return nil
}

func runTaskRepair(cmd *cobra.Command, args []string) error {
	task, err := rt.Tasks.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	result, err := rt.Tasks.Repair(cmd.Context(), task.ID, taskRepairFlagDrop)
	if err != nil {
		return err
	}

	if rt.IsJSON() {
		return rt.JSONFormatter().PrintRange(result)
	}
	rt.CLIFormatter().PrintRange(result)
	return nil
}

// parseRange parses CLI date arguments against the runtime clock.
func parseRange(start, end string) (calendar.Date, calendar.Date, error) {
	s, e, err := parser.ParseRange(start, end, rt.Now())
	return s, e, asUserInput(err)
}

// parseDate parses one CLI date argument against the runtime clock.
func parseDate(input string) (calendar.Date, error) {
	d, err := parser.ParseDate(input, rt.Now())
	return d, asUserInput(err)
}

// documentsByLog groups a task's documents by log ID.
func documentsByLog(ctx context.Context, taskID string) (map[string][]model.Document, error) {
	days, err := rt.Docs.ListForTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	docs := make(map[string][]model.Document, len(days))
	for _, day := range days {
		docs[day.LogID] = day.Documents
	}
	return docs, nil
}

// asUserInput converts parse failures into user errors with examples.
func asUserInput(err error) error {
	var ie *parser.InputError
	if errors.As(err, &ie) {
		return ie.ToUserError()
	}
	return err
}
