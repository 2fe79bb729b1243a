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
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var flagCompletionNoDesc bool

// completionShells maps each supported shell to its script generator.
var completionShells = map[string]func(w io.Writer, desc bool) error{
	"bash": func(w io.Writer, desc bool) error {
		return rootCmd.GenBashCompletionV2(w, desc)
	},
	"zsh": func(w io.Writer, desc bool) error {
		if desc {
			return rootCmd.GenZshCompletion(w)
		}
		return rootCmd.GenZshCompletionNoDesc(w)
	},
	"fish": func(w io.Writer, desc bool) error {
		return rootCmd.GenFishCompletion(w, desc)
	},
	"powershell": func(w io.Writer, desc bool) error {
		if desc {
			return rootCmd.GenPowerShellCompletionWithDesc(w)
		}
		return rootCmd.GenPowerShellCompletion(w)
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion SHELL",
	Short: "Generate shell completion scripts",
	Long: `Generate a completion script for bash, zsh, fish or powershell.

Completions cover subcommands and flags, and also look up task ids (shown
with the task name), document ids and the days of a task's window from
your task store.

Bash:
  $ source <(tasklog completion bash)
  $ tasklog completion bash > ~/.local/share/bash-completion/completions/tasklog

Zsh:
  $ tasklog completion zsh > "${fpath[1]}/_tasklog"

Fish:
  $ tasklog completion fish > ~/.config/fish/completions/tasklog.fish

PowerShell:
  PS> tasklog completion powershell | Out-String | Invoke-Expression
`,
	Annotations:           map[string]string{annotationNoRuntime: "true"},
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		gen, ok := completionShells[args[0]]
		if !ok {
			return fmt.Errorf("unsupported shell %q", args[0])
		}
		return gen(cmd.OutOrStdout(), !flagCompletionNoDesc)
	},
}

func init() {
	completionCmd.Flags().BoolVar(&flagCompletionNoDesc, "no-descriptions", false, "omit task names and flag help from completions")
	rootCmd.AddCommand(completionCmd)
}
