package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"
)

var (
	setLine   lineFlags
	clearLine lineFlags
)

var setCmd = &cobra.Command{
	Use:   "set <hours>",
	Short: "Set the hours of a line",
	Long: `Set the hours registered on one or more days for a job and task. The line is
created when the time sheet does not have it yet.

Examples:
  maconomy set 7.5 --job "Internal" --task "Meetings"
  maconomy set 8 -j "Internal" -t "Development" --day mon-thu --week 46`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hours, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return goerr.Wrap(err, "failed to parse hours", goerr.V("hours", args[0]))
		}

		week, days, err := setLine.resolve(time.Now())
		if err != nil {
			return err
		}

		service, err := newTimeSheetService()
		if err != nil {
			return err
		}

		if err := service.SetTime(cmd.Context(), hours, days, week, setLine.job, setLine.task); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Set %s hours on %s in week %s\n",
			strconv.FormatFloat(hours, 'f', -1, 64), days, week)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the hours of a line",
	Long: `Remove the hours registered on one or more days for a job and task.

Examples:
  maconomy clear --job "Internal" --task "Meetings" --day fri`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		week, days, err := clearLine.resolve(time.Now())
		if err != nil {
			return err
		}

		service, err := newTimeSheetService()
		if err != nil {
			return err
		}

		if err := service.Clear(cmd.Context(), days, week, clearLine.job, clearLine.task); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s in week %s\n", days, week)
		return nil
	},
}

func init() {
	addLineFlags(setCmd, &setLine)
	addLineFlags(clearCmd, &clearLine)
}
