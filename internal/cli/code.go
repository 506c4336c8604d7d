package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/otp-keys/pkg/otp"
)

func newCodeCommand(a *app) *cobra.Command {
	var (
		at      int64
		counter uint64
		grouped bool
	)

	cmd := &cobra.Command{
		Use:   "code <uri|->",
		Short: "Print the one-time code for an otpauth URI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.parseRecord(cmd, args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("counter") {
				rec.Counter = counter
			}

			now := a.now()
			if cmd.Flags().Changed("at") {
				now = time.Unix(at, 0)
			}

			code, err := otp.Generate(rec, now)
			if err != nil {
				return err
			}

			if rec.Type == otp.TypeTOTP {
				a.log.Debug().
					Uint("remaining", otp.SecondsRemaining(now, rec.Period)).
					Msg("code valid for current period")
			}

			if grouped || a.cfg.Display.Grouped {
				code = otp.FormatForDisplay(code)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), code)
			return err
		},
	}

	cmd.Flags().Int64Var(&at, "at", 0, "unix time in seconds to generate the TOTP code for (default now)")
	cmd.Flags().Uint64Var(&counter, "counter", 0, "HOTP counter overriding the one in the URI")
	cmd.Flags().BoolVar(&grouped, "grouped", false, "group digits for reading, e.g. 123 456")

	return cmd
}
