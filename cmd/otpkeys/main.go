package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"

	"github.com/jeremyhahn/otp-keys/internal/cli"
	"github.com/jeremyhahn/otp-keys/pkg/logger"
)

func main() {
	logger.Setup("error", "console")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("otpkeys failed")
		stop()
		os.Exit(1)
	}
}
