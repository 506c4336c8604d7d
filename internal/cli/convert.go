package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/otp-keys/pkg/otp"
	"github.com/jeremyhahn/otp-keys/pkg/otpauth"
)

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <migration-uri|->",
		Short: "Convert an otpauth-migration URI into one otpauth URI per account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uri, err := readURI(cmd, args[0])
			if err != nil {
				return err
			}

			records, err := otpauth.ParseMigration(uri, a.migrationOptions()...)
			if err != nil {
				return fmt.Errorf("invalid migration uri: %w", err)
			}
			a.log.Info().Int("entries", len(records)).Msg("imported migration payload")

			for _, rec := range records {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), otpauth.Serialize(rec)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newExportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <uri>...",
		Short: "Bundle otpauth URIs into a single otpauth-migration URI",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records := make([]otp.Record, 0, len(args))
			for _, arg := range args {
				rec, err := a.parseRecord(cmd, arg)
				if err != nil {
					return err
				}
				records = append(records, rec)
			}

			uri, err := otpauth.SerializeMigration(records...)
			if err != nil {
				return err
			}
			a.log.Info().Int("entries", len(records)).Msg("exported migration payload")

			_, err = fmt.Fprintln(cmd.OutOrStdout(), uri)
			return err
		},
	}
}
