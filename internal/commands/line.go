package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/maconomy-cli/maconomy/internal/parser"
)

var lineDeleteWeek weekFlags

var lineCmd = &cobra.Command{
	Use:   "line",
	Short: "Manage time sheet lines",
}

var lineDeleteCmd = &cobra.Command{
	Use:   "delete <n|last>",
	Short: "Delete a line from the time sheet",
	Long: `Delete a line by the number shown in 'maconomy get', or the last line.

Examples:
  maconomy line delete 2
  maconomy line delete last --week 46`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := parser.ParseLineNumber(args[0])
		if err != nil {
			return err
		}

		week, err := lineDeleteWeek.resolve(time.Now())
		if err != nil {
			return err
		}

		service, err := newTimeSheetService()
		if err != nil {
			return err
		}

		if err := service.DeleteLine(cmd.Context(), line, week); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted line %s in week %s\n", line, week)
		return nil
	},
}

func init() {
	addWeekFlags(lineDeleteCmd, &lineDeleteWeek)
	lineCmd.AddCommand(lineDeleteCmd)
}
