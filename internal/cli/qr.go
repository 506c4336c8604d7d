package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/jeremyhahn/otp-keys/pkg/otpauth"
)

var recoveryLevels = map[string]qrcode.RecoveryLevel{
	"low":     qrcode.Low,
	"medium":  qrcode.Medium,
	"high":    qrcode.High,
	"highest": qrcode.Highest,
}

// TerminalQRCode renders a QR code with Unicode half blocks, two bitmap
// rows per line of text.
type TerminalQRCode struct {
	code *qrcode.QRCode
}

// NewTerminalQRCode encodes content at the given recovery level.
func NewTerminalQRCode(content string, level qrcode.RecoveryLevel) (*TerminalQRCode, error) {
	qr, err := qrcode.New(content, level)
	if err != nil {
		return nil, err
	}
	return &TerminalQRCode{code: qr}, nil
}

// Print writes the code to w. Dark modules are drawn as blocks, so the
// output reads best on a light background.
func (t *TerminalQRCode) Print(w io.Writer) error {
	bitmap := t.code.Bitmap()

	var sb strings.Builder
	for y := 0; y < len(bitmap); y += 2 {
		for x := range bitmap[y] {
			top := bitmap[y][x]
			bottom := y+1 < len(bitmap) && bitmap[y+1][x]
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func newQRCommand(a *app) *cobra.Command {
	var pngPath string

	cmd := &cobra.Command{
		Use:   "qr <uri|->",
		Short: "Render an otpauth URI as a QR code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.parseRecord(cmd, args[0])
			if err != nil {
				return err
			}

			if pngPath != "" {
				return a.writePNG(rec, pngPath)
			}

			level := recoveryLevels[strings.ToLower(a.cfg.QR.Level)]
			qr, err := NewTerminalQRCode(otpauth.Serialize(rec), level)
			if err != nil {
				return fmt.Errorf("failed to encode qr code: %w", err)
			}
			return qr.Print(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&pngPath, "png", "", "write a PNG image to this path instead of printing")

	return cmd
}
