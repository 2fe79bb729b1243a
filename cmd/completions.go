package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

// completeTasks returns task IDs with their names as descriptions.
func completeTasks(cmd *cobra.Command, toComplete string) []string {
	if rt == nil || rt.Tasks == nil {
		return nil
	}

	views, err := rt.Tasks.List(cmd.Context())
	if err != nil {
		return nil
	}

	var completions []string
	for _, v := range views {
		if strings.HasPrefix(v.Task.ID, toComplete) {
			completions = append(completions, v.Task.ID+"\t"+v.Task.Name)
		}
	}
	return completions
}

// completeTaskArgs completes a task ID in the first position only.
func completeTaskArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return completeTasks(cmd, toComplete), cobra.ShellCompDirectiveNoFileComp
	}
	if len(args) == 1 {
		return completeDates(toComplete), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// completeAttachArgs completes a task, then a date, then files.
func completeAttachArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) < 2 {
		return completeTaskArgs(cmd, args, toComplete)
	}
	return nil, cobra.ShellCompDirectiveDefault
}

// completeDates suggests relative date keywords.
func completeDates(toComplete string) []string {
	dates := []string{
		"today\tthe current day",
		"yesterday\tthe previous day",
		"tomorrow\tthe next day",
	}

	var filtered []string
	for _, d := range dates {
		if strings.HasPrefix(strings.Split(d, "\t")[0], toComplete) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}
