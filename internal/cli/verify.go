package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/otp-keys/pkg/otp"
)

func newVerifyCommand(a *app) *cobra.Command {
	var at int64

	cmd := &cobra.Command{
		Use:   "verify <uri|-> <code>",
		Short: "Check a one-time code against an otpauth URI",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.parseRecord(cmd, args[0])
			if err != nil {
				return err
			}

			auth, err := otp.NewAuthenticator(rec, otp.WithSkew(a.cfg.TOTP.Skew))
			if err != nil {
				return err
			}

			now := a.now()
			if cmd.Flags().Changed("at") {
				now = time.Unix(at, 0)
			}

			err = auth.Authenticate(cmd.Context(), args[1], now)
			if errors.Is(err, otp.ErrInvalidCode) {
				a.log.Info().Msg("code rejected")
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return err
		},
	}

	cmd.Flags().Int64Var(&at, "at", 0, "unix time in seconds to verify the TOTP code at (default now)")

	return cmd
}
