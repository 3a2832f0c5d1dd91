package simulate

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/pixelparty/triathlon/pkg/logger"
)

// Run executes a full simulation: register participants, start the
// event, play mini-game rounds until everyone finishes or the duration
// elapses, then report the final leaderboard and standings.
func Run(ctx context.Context, cfg *Config) error {
	stats := &Stats{StartTime: time.Now()}

	log := logger.Get()
	log.Info(ctx, "starting triathlon simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("event", cfg.Event),
		logger.Int("participants", cfg.Participants),
		logger.String("duration", cfg.Duration.String()),
		logger.Any("skill", cfg.Skill))

	c := newClient(cfg.BaseURL, cfg.Timeout)

	if err := c.health(ctx); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	if err := c.rotateInvite(ctx, cfg.InviteCode); err != nil {
		return fmt.Errorf("invite rotation failed: %w", err)
	}

	players, err := register(ctx, c, cfg, stats)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	if err := c.startEvent(ctx, cfg.Event, 0); err != nil {
		return fmt.Errorf("event start failed: %w", err)
	}
	log.Info(ctx, "event started", logger.String("event", cfg.Event))

	runCtx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for _, p := range players {
		wg.Add(1)
		go func(p *player) {
			defer wg.Done()
			p.run(runCtx)
		}(p)
	}
	wg.Wait()

	for _, p := range players {
		prog, err := c.progress(ctx, p.id)
		if err == nil && prog.Finished {
			stats.Finished++
		}
	}

	if err := c.finishEvent(ctx, cfg.Event); err != nil {
		log.Warn(ctx, "event finish failed", logger.Error(err))
	}

	if err := report(ctx, c, cfg, stats); err != nil {
		return fmt.Errorf("result reporting failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	log.Info(ctx, "simulation completed",
		logger.Int("loggedIn", stats.LoggedIn),
		logger.Int("finished", stats.Finished),
		logger.Any("roundsAnswered", stats.RoundsAnswered),
		logger.Any("inputsRejected", stats.InputsRejected),
		logger.String("duration", stats.Duration.String()))
	return nil
}

// register logs in cfg.Participants simulated runners.
func register(ctx context.Context, c *client, cfg *Config, stats *Stats) ([]*player, error) {
	players := make([]*player, 0, cfg.Participants)
	for i := 1; i <= cfg.Participants; i++ {
		req := loginRequest{
			Event:      cfg.Event,
			InviteCode: cfg.InviteCode,
			Name:       fmt.Sprintf("Runner %02d", i),
			Email:      fmt.Sprintf("runner%02d@simulation.local", i),
		}
		resp, err := c.login(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("login for %q failed: %w", req.Name, err)
		}
		players = append(players, &player{
			client: c,
			id:     resp.ParticipantID,
			name:   resp.Name,
			skill:  cfg.Skill,
			rng:    rand.New(rand.NewSource(time.Now().UnixNano() + int64(i))),
			stats:  stats,
		})
		stats.LoggedIn++
		if cfg.Verbose {
			logger.Get().Info(ctx, "participant registered",
				logger.String("name", resp.Name),
				logger.String("id", resp.ParticipantID))
		}
	}
	return players, nil
}

// report prints the final leaderboard and podium standings.
func report(ctx context.Context, c *client, cfg *Config, stats *Stats) error {
	entries, err := c.leaderboard(ctx, cfg.Event, cfg.TopN)
	if err != nil {
		return err
	}
	stats.LeaderboardSize = len(entries)

	fmt.Printf("\nLeaderboard (%s, top %d):\n", cfg.Event, cfg.TopN)
	for _, e := range entries {
		fmt.Printf("  %3d. %-20s distance=%7.1f finish=%d\n",
			e.Rank, e.DisplayName, e.DistanceTraveled, e.FinishTime)
	}

	standings, err := c.standings(ctx, cfg.Event)
	if err != nil {
		return err
	}
	fmt.Printf("\nStandings (%s):\n", cfg.Event)
	for _, s := range standings {
		fmt.Printf("  %3d. %-20s %d pts\n", s.Place, s.DisplayName, s.Points)
	}
	return nil
}
