// internal/cli/list_commands.go
package yolometrics

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Group commands for listing resources",
	}
	// commandsCmd prints the available commands and subcommands in a hierarchical, indented,
	// two-column format.
	commandsCmd := &cobra.Command{
		Use:   "commands",
		Short: "List all commands and subcommands in two columns",
		Long:  `The 'commands' subcommand lists all commands and subcommands in a hierarchical, indented format, with the command path in the first column and its short description in the second column.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runListCommands(cmd.OutOrStdout(), cmd.Root())
		},
	}
	listCmd.AddCommand(commandsCmd)
	return listCmd
}

// runListCommands prints the command tree in a two-column layout.
func runListCommands(w io.Writer, rootCmd *cobra.Command) {
	commandData := collectCommandData(rootCmd, "", "")

	maxPathLength := 0
	for _, data := range commandData {
		if len(data.path) > maxPathLength {
			maxPathLength = len(data.path)
		}
	}

	fmt.Fprintln(w, "Commands and Subcommands:")
	for _, data := range commandData {
		if strings.Contains(data.path, "completion") || strings.Contains(data.path, " help") {
			continue
		}
		fmt.Fprintf(w, "  %s%s%s\n", data.path, strings.Repeat(" ", maxPathLength-len(data.path)+2), data.description)
	}
}

// commandInfo holds the path and description of a command for display.
type commandInfo struct {
	path        string
	description string
}

// collectCommandData walks the command tree and returns a flattened slice of path/description
// pairs, indented by depth.
func collectCommandData(cmd *cobra.Command, currentPath string, indent string) []commandInfo {
	fullPath := cmd.Name()
	if currentPath != "" {
		fullPath = currentPath + " " + cmd.Name()
	}

	allData := []commandInfo{{path: indent + fullPath, description: cmd.Short}}
	for _, subCmd := range cmd.Commands() {
		allData = append(allData, collectCommandData(subCmd, fullPath, indent+"  ")...)
	}
	return allData
}
