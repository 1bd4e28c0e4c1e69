package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var submitWeek weekFlags

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit the time sheet for approval",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		week, err := submitWeek.resolve(time.Now())
		if err != nil {
			return err
		}

		service, err := newTimeSheetService()
		if err != nil {
			return err
		}

		if err := service.Submit(cmd.Context(), week); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Submitted week %s\n", week)
		return nil
	},
}

func init() {
	addWeekFlags(submitCmd, &submitWeek)
}
