package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pixelparty/triathlon/internal/simulate"
	"github.com/pixelparty/triathlon/pkg/logger"
)

// Default simulation parameters.
const (
	defaultParticipants = 8
	defaultDuration     = 3 * time.Minute
	defaultTimeout      = 10 * time.Second
	defaultSkill        = 0.8
	defaultTopN         = 10
)

func newCmd(cfg *simulate.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "simulate",
		Short:         "Drive simulated participants through a live triathlon event.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return simulate.Run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&cfg.BaseURL, "url", "u", "http://localhost:8080", "base URL of the service")
	fs.StringVarP(&cfg.Event, "event", "e", "sprint", "event to run (sprint, swimming, cycling)")
	fs.StringVar(&cfg.InviteCode, "code", "SIMULATE", "invite code to rotate in and join with")
	fs.IntVarP(&cfg.Participants, "participants", "n", defaultParticipants, "number of simulated participants")
	fs.DurationVarP(&cfg.Duration, "duration", "d", defaultDuration, "maximum time to keep playing")
	fs.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	fs.Float64Var(&cfg.Skill, "skill", defaultSkill, "probability a participant plays a round step correctly")
	fs.IntVar(&cfg.TopN, "top", defaultTopN, "leaderboard entries to fetch at the end")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log each registered participant")

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	return cmd
}

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &simulate.Config{}
	cmd := newCmd(cfg)
	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Get().Error(ctx, "simulation failed", logger.Error(err))
		os.Exit(1)
	}
}
