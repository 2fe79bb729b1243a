package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/tasklog/internal/model"
	"github.com/manav03panchal/tasklog/internal/parser"
	"github.com/manav03panchal/tasklog/internal/tracker"
)

// dayCmd shows one day of a task.
var dayCmd = &cobra.Command{
	Use:     "day TASK_ID [DATE]",
	Aliases: []string{"d"},
	Short:   "Show or update one day of a task",
	Long: `Show one day of a task (today by default), or record progress for it.

Examples:
  tasklog day 0190a1b2
  tasklog day 0190a1b2 2024-03-02
  tasklog day record 0190a1b2 today --percent 40 --notes "outline done"
  tasklog day record 0190a1b2 yesterday --percent 75%
  tasklog day done 0190a1b2 today`,
	Args:              cobra.RangeArgs(1, 2),
	ValidArgsFunction: completeTaskArgs,
	RunE:              runDayShow,
}

// Day subcommand flags.
var (
	dayRecordFlagNotes   string
	dayRecordFlagPercent string
	dayDoneFlagNotes     string
)

var dayRecordCmd = &cobra.Command{
	Use:   "record TASK_ID DATE",
	Short: "Save notes and/or a percent for a day",
	Long: `Save notes, a completion percent, or both for one day. Fields that are
not given keep their current values. Percent must be 0-100.`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeTaskArgs,
	RunE:              runDayRecord,
}

var dayDoneCmd = &cobra.Command{
	Use:               "done TASK_ID DATE",
	Short:             "Mark a day 100% complete",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeTaskArgs,
	RunE:              runDayDone,
}

func init() {
	dayRecordCmd.Flags().StringVarP(&dayRecordFlagNotes, "notes", "n", "", "Progress notes for the day")
	dayRecordCmd.Flags().StringVarP(&dayRecordFlagPercent, "percent", "p", "", "Completion percent, e.g. 40 or 40%")
	dayDoneCmd.Flags().StringVarP(&dayDoneFlagNotes, "notes", "n", "", "Progress notes for the day")

	dayCmd.AddCommand(dayRecordCmd)
	dayCmd.AddCommand(dayDoneCmd)
	rootCmd.AddCommand(dayCmd)
}

func runDayShow(cmd *cobra.Command, args []string) error {
	task, err := rt.Tasks.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	dateArg := "today"
	if len(args) > 1 {
		dateArg = args[1]
	}
	date, err := parseDate(dateArg)
	if err != nil {
		return err
	}

	l, err := rt.Tasks.Day(cmd.Context(), task.ID, date)
	if err != nil {
		return err
	}
	docs, err := rt.Docs.List(cmd.Context(), l.ID)
	if err != nil {
		return err
	}

	if rt.IsJSON() {
		return rt.JSONFormatter().PrintDay(l, docs)
	}
	rt.CLIFormatter().PrintDay(task, l, docs)
	return nil
}

func runDayRecord(cmd *cobra.Command, args []string) error {
	task, err := rt.Tasks.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	date, err := parseDate(args[1])
	if err != nil {
		return err
	}

	record := tracker.RecordProgress{TaskID: task.ID, Date: date}
	if cmd.Flags().Changed("notes") {
		record.Notes = &dayRecordFlagNotes
	}
	if cmd.Flags().Changed("percent") {
		p, err := parser.ParsePercent(dayRecordFlagPercent)
		if err != nil {
			return asUserInput(err)
		}
		record.Percent = &p
	}

	l, err := rt.Tasks.RecordProgress(cmd.Context(), record)
	if err != nil {
		return err
	}
	return printSaved(l)
}

func runDayDone(cmd *cobra.Command, args []string) error {
	task, err := rt.Tasks.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	date, err := parseDate(args[1])
	if err != nil {
		return err
	}

	done := tracker.MarkComplete{TaskID: task.ID, Date: date}
	if cmd.Flags().Changed("notes") {
		done.Notes = &dayDoneFlagNotes
	}

	l, err := rt.Tasks.MarkComplete(cmd.Context(), done)
	if err != nil {
		return err
	}
	return printSaved(l)
}

func printSaved(l *model.Log) error {
	if rt.IsJSON() {
		return rt.JSONFormatter().PrintDay(l, nil)
	}
	rt.CLIFormatter().PrintProgressSaved(l)
	return nil
}
