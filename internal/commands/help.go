package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var helpCmd = &cobra.Command{
	Use:   "help [command]",
	Short: "Show comprehensive help for maconomy",
	Long:  `Display detailed help for all maconomy commands and flags.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			target, _, err := rootCmd.Find(args)
			if err == nil && target != rootCmd {
				_ = target.Help()
				return
			}
		}
		showCustomHelp(cmd.OutOrStdout())
	},
}

func showCustomHelp(w io.Writer) {
	fmt.Fprint(w, `
maconomy - Time registration from the terminal

COMMANDS:

  get                     Show the time sheet
    -f, --format          Output format: table|json
    --full                Include lines without hours

  set <hours>             Set hours on a line, creating it if needed
    -j, --job             Job name (required)
    -t, --task            Task name (required)
    -d, --day             Days, e.g. "mon", "mon, wed-fri" (default: today)

    Example:
      maconomy set 7.5 --job "Internal" --task "Meetings" --day mon-thu

  clear                   Remove hours from a line
    -j, --job             Job name (required)
    -t, --task            Task name (required)
    -d, --day             Days (default: today)

  line delete <n|last>    Delete a line by its number in 'get'

  submit                  Submit the week for approval
  logout                  Forget the stored session
  version                 Show version information
  help                    Show this help

WEEK SELECTION (get, set, clear, submit, line delete):
    -w, --week            Week number, e.g. 46, 1A, 40B (default: current week)
    -y, --year            Year of --week (default: current year)
    -p, --previous-week   Use the week before

    Weeks spanning two months are split into an A part (first month) and
    a B part (second month), each with its own time sheet.

GLOBAL FLAGS:
    --log-level           debug|info|warn|error (default: warn)
    --log-format          auto|console|json (default: auto)

CONFIGURATION:
    ./config.toml or ~/.config/maconomy-cli/config.toml

      maconomy_url = "https://maconomy.example.com"
      company_id = "company1"

      [authentication.sso]
      login_url = "https://maconomy.example.com/sso/login"

    Any value can be set in the environment as well, e.g.
    MACONOMY_COMPANY_ID or MACONOMY_AUTHENTICATION__SSO__LOGIN_URL.

`)
}
