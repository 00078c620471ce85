// Command advisorctl drives the advisor voice pipeline from a terminal:
// typed utterances, tap-to-talk and the notification list.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	cli "github.com/spf13/pflag"

	"advisorvoice/internal/bootstrap"
	"advisorvoice/internal/config"
	"advisorvoice/internal/logging"
)

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	logLevel := cli.StringP("log", "l", "", "Log level (default ADVISOR_LOG_LEVEL or info)")
	speaker := cli.StringP("speaker", "s", "", "Speech output: console, espeak or none")
	listen := cli.BoolP("listen", "L", false, "Start listening right away")
	cli.Parse()

	if err := config.LoadEnvFiles(*envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if level := strings.TrimSpace(*logLevel); level != "" {
		cfg.LogLevel = level
	}
	cfg.Voice.Speaker = resolveSpeaker(*speaker, cfg.Voice.Speaker)

	logger := logging.Terminal(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console := newConsole(os.Stdout, logger)
	services, err := bootstrap.BuildWithConfig(cfg, bootstrap.Deps{
		Events:          console,
		Shell:           console,
		FrontendSpeaker: console,
		Observer:        console.notificationAdded,
		Logger:          logger,
	})
	if err != nil {
		logger.Error("startup failed", "err", err)
		os.Exit(1)
	}

	repl := newREPL(services.Conversation, services.Notifications, console)
	if *listen {
		repl.handle(ctx, ":listen")
	}

	if err := repl.Run(ctx, os.Stdin); err != nil {
		logger.Error("input failed", "err", err)
		os.Exit(1)
	}
}

// resolveSpeaker maps the flag onto a configured backend. The console plays
// the frontend's role in a terminal.
func resolveSpeaker(flag, configured string) string {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "":
		return configured
	case "console":
		return config.SpeakerFrontend
	default:
		return strings.ToLower(strings.TrimSpace(flag))
	}
}
