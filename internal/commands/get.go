package commands

import (
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"

	"github.com/maconomy-cli/maconomy/internal/tui"
)

var (
	getWeek   weekFlags
	getFormat string
	getFull   bool
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the time sheet",
	Long: `Show the time sheet of a week. Lines without hours are hidden unless --full is given.

Examples:
  maconomy get                  # Current week
  maconomy get --week 46        # Week 46 of this year
  maconomy get -p --format json # Last week as JSON`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if getFormat != "table" && getFormat != "json" {
			return goerr.New("invalid format, expected 'table' or 'json'", goerr.V("format", getFormat))
		}

		week, err := getWeek.resolve(time.Now())
		if err != nil {
			return err
		}

		service, err := newTimeSheetService()
		if err != nil {
			return err
		}

		sheet, err := service.GetTimeSheet(cmd.Context(), week)
		if err != nil {
			return err
		}

		if getFormat == "json" {
			out, err := tui.RenderJSON(sheet)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderTimeSheet(sheet, getFull))
		return nil
	},
}

func init() {
	addWeekFlags(getCmd, &getWeek)
	getCmd.Flags().StringVarP(&getFormat, "format", "f", "table", "Output format: table|json")
	getCmd.Flags().BoolVar(&getFull, "full", false, "Show lines without hours too")
}
