package cli

import (
	"fmt"
	"image/png"
	"os"

	"github.com/jeremyhahn/otp-keys/pkg/otp"
	"github.com/jeremyhahn/otp-keys/pkg/otpauth"
)

func (a *app) writePNG(rec otp.Record, path string) error {
	key, err := otpauth.Key(rec)
	if err != nil {
		return err
	}

	img, err := key.Image(a.cfg.QR.Size, a.cfg.QR.Size)
	if err != nil {
		return fmt.Errorf("failed to render qr image: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	a.log.Info().Str("path", path).Int("size", a.cfg.QR.Size).Msg("wrote qr image")
	return f.Close()
}
