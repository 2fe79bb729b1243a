package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/tasklog/internal/attach"
	"github.com/manav03panchal/tasklog/internal/errors"
	"github.com/manav03panchal/tasklog/internal/output"
)

// Doc command flags.
var (
	docListFlagDate string
	docGetFlagOut   string
)

// docCmd groups document commands.
var docCmd = &cobra.Command{
	Use:     "doc",
	Aliases: []string{"docs", "documents"},
	Short:   "Attach and manage documents on task days",
	Long: `Attach files to a day of a task, list them, download them, or remove them.

Examples:
  tasklog doc attach 0190a1b2 today notes.pdf sketch.png
  tasklog doc list 0190a1b2
  tasklog doc list 0190a1b2 --date 2024-03-02
  tasklog doc get 0190a1b2-...-9f -o notes.pdf
  tasklog doc url 0190a1b2-...-9f
  tasklog doc rm 0190a1b2-...-9f`,
}

var docAttachCmd = &cobra.Command{
	Use:               "attach TASK_ID DATE FILE...",
	Aliases:           []string{"add", "upload"},
	Short:             "Attach files to a day",
	Long:              `Attach one or more files to a day. Attaching a file with the same name again replaces its content.`,
	Args:              cobra.MinimumNArgs(3),
	ValidArgsFunction: completeAttachArgs,
	RunE:              runDocAttach,
}

var docListCmd = &cobra.Command{
	Use:               "list TASK_ID",
	Aliases:           []string{"ls"},
	Short:             "List a task's documents",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskArgs,
	RunE:              runDocList,
}

var docGetCmd = &cobra.Command{
	Use:   "get DOC_ID",
	Short: "Download a document",
	Long:  `Download a document. Writes to ./FILENAME unless -o is given; use -o - for stdout.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocGet,
}

var docURLCmd = &cobra.Command{
	Use:   "url DOC_ID",
	Short: "Print a download link for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocURL,
}

var docRemoveCmd = &cobra.Command{
	Use:     "rm DOC_ID",
	Aliases: []string{"remove", "delete"},
	Short:   "Remove a document",
	Args:    cobra.ExactArgs(1),
	RunE:    runDocRemove,
}

func init() {
	docListCmd.Flags().StringVarP(&docListFlagDate, "date", "d", "", "Only list documents for this day")
	docGetCmd.Flags().StringVarP(&docGetFlagOut, "output", "o", "", "Output file, or - for stdout")

	docCmd.AddCommand(docAttachCmd)
	docCmd.AddCommand(docListCmd)
	docCmd.AddCommand(docGetCmd)
	docCmd.AddCommand(docURLCmd)
	docCmd.AddCommand(docRemoveCmd)
	rootCmd.AddCommand(docCmd)
}

func runDocAttach(cmd *cobra.Command, args []string) error {
	task, err := rt.Tasks.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	date, err := parseDate(args[1])
	if err != nil {
		return err
	}

	// Read everything first so a bad path fails before anything is uploaded.
	files := args[2:]
	contents := make([][]byte, len(files))
	for i, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.NewUserErrorWithField("file", path, "cannot read "+path, "Check the file path and permissions.")
		}
		contents[i] = data
	}

	l, err := rt.Tasks.EnsureDay(cmd.Context(), task.ID, date)
	if err != nil {
		return err
	}

	attached := make([]*output.DocumentOutput, 0, len(files))
	for i, path := range files {
		doc, err := rt.Docs.Attach(cmd.Context(), attach.AttachDocument{
			LogID:    l.ID,
			Filename: filepath.Base(path),
			Content:  contents[i],
		})
		if err != nil {
			return err
		}
		if rt.IsJSON() {
			attached = append(attached, output.NewDocumentOutput(doc, ""))
			continue
		}
		rt.CLIFormatter().PrintAttached(doc)
	}

	if rt.IsJSON() {
		return rt.JSONFormatter().JSON(output.DocumentsResponse{Documents: attached, Count: len(attached)})
	}
	return nil
}

func runDocList(cmd *cobra.Command, args []string) error {
	task, err := rt.Tasks.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	days, err := rt.Docs.ListForTask(cmd.Context(), task.ID)
	if err != nil {
		return err
	}

	if docListFlagDate != "" {
		date, err := parseDate(docListFlagDate)
		if err != nil {
			return err
		}
		var filtered []attach.DayDocuments
		for _, day := range days {
			if day.Date == date {
				filtered = append(filtered, day)
			}
		}
		days = filtered
	}

	if rt.IsJSON() {
		return rt.JSONFormatter().PrintDocuments(days)
	}
	rt.CLIFormatter().PrintDocuments(days)
	return nil
}

func runDocGet(cmd *cobra.Command, args []string) error {
	doc, obj, err := rt.Docs.Fetch(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if docGetFlagOut == "-" {
		_, err := os.Stdout.Write(obj.Data)
		return err
	}

	dest := docGetFlagOut
	if dest == "" {
		dest = doc.Filename
	}
	if err := os.WriteFile(dest, obj.Data, 0o644); err != nil {
		return errors.NewSystemErrorWithOp("write", "cannot write "+dest, err)
	}

	if rt.IsJSON() {
		return rt.JSONFormatter().PrintDocument(doc, "")
	}
	rt.CLIFormatter().Success("Saved " + doc.Filename + " to " + dest + " (" + output.FormatSize(obj.Size()) + ")")
	return nil
}

func runDocURL(cmd *cobra.Command, args []string) error {
	u, err := rt.Docs.URL(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if rt.IsJSON() {
		doc, err := rt.Docs.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return rt.JSONFormatter().PrintDocument(doc, u)
	}
	rt.CLIFormatter().Println(u)
	return nil
}

func runDocRemove(cmd *cobra.Command, args []string) error {
	report, err := rt.Docs.Remove(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if rt.IsJSON() {
		return rt.JSONFormatter().JSON(report)
	}
	rt.CLIFormatter().Success("Removed document " + args[0])
	rt.CLIFormatter().PrintWarnings(report.Warnings)
	return nil
}
