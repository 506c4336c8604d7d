// Package cli implements the otpkeys command line interface.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jeremyhahn/otp-keys/internal/config"
	"github.com/jeremyhahn/otp-keys/pkg/logger"
	"github.com/jeremyhahn/otp-keys/pkg/otp"
	"github.com/jeremyhahn/otp-keys/pkg/otpauth"
)

// app carries the state shared by all commands.
type app struct {
	cfg *config.Config
	log zerolog.Logger
	now func() time.Time

	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCommand builds the otpkeys command tree.
func NewRootCommand() *cobra.Command {
	a := &app{now: time.Now}

	root := &cobra.Command{
		Use:           "otpkeys",
		Short:         "Generate one-time codes and convert otpauth URIs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ./config.yaml or $HOME/.config/otpkeys/config.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "", "log format (console or json)")

	root.AddCommand(
		newCodeCommand(a),
		newVerifyCommand(a),
		newParseCommand(a),
		newImportCommand(a),
		newExportCommand(a),
		newQRCommand(a),
	)

	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}

	a.cfg = cfg
	a.log = logger.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format).
		With().
		Str("command", cmd.Name()).
		Logger()
	return nil
}

func (a *app) migrationOptions() []otpauth.MigrationOption {
	if a.cfg.Migration.SubstituteDefaults {
		return []otpauth.MigrationOption{otpauth.WithDefaults()}
	}
	return nil
}

// parseRecord parses a URI argument into a record. Migration URIs yield
// their first entry.
func (a *app) parseRecord(cmd *cobra.Command, arg string) (otp.Record, error) {
	uri, err := readURI(cmd, arg)
	if err != nil {
		return otp.Record{}, err
	}

	rec, err := otpauth.Parse(uri, a.migrationOptions()...)
	if err != nil {
		a.log.Debug().Err(err).Msg("failed to parse uri")
		return otp.Record{}, fmt.Errorf("invalid uri: %w", err)
	}

	a.log.Debug().
		Str("type", string(rec.Type)).
		Str("issuer", rec.Issuer).
		Str("username", rec.Username).
		Str("algorithm", string(rec.Algorithm)).
		Uint("digits", rec.Digits).
		Msg("parsed uri")
	return rec, nil
}

// readURI returns arg, or the first line of stdin when arg is "-".
func readURI(cmd *cobra.Command, arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	return readLine(cmd.InOrStdin())
}

func readLine(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return "", fmt.Errorf("no uri on stdin")
	}
	return strings.TrimSpace(sc.Text()), nil
}
