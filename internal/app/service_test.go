package service_test

import (
	"context"
	"os"
	"testing"
	"time"

	service "github.com/pixelparty/triathlon/internal/app"
	"github.com/pixelparty/triathlon/internal/domain/model"
	"github.com/pixelparty/triathlon/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newService(t *testing.T) *service.Service {
	t.Helper()
	svc := service.New(
		service.WithThrottle(20*time.Millisecond),
		service.WithBroadcastInterval(50*time.Millisecond),
		service.WithWorkerCount(2),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	if err := svc.SetInviteCode(context.Background(), "PARTY", true); err != nil {
		t.Fatalf("set invite code: %v", err)
	}
	return svc
}

func TestLoginValidation(t *testing.T) {
	convey.Convey("Given a service with an active invite code", t, func() {
		ctx := context.Background()
		svc := newService(t)

		convey.Convey("When a valid login arrives", func() {
			p, err := svc.Login(ctx, model.EventSprint, "PARTY", "Alice", "alice@example.com")

			convey.Convey("Then a participant is registered", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(p.ID, convey.ShouldNotBeBlank)
				convey.So(p.Name, convey.ShouldEqual, "Alice")
			})

			convey.Convey("Then the same email cannot register twice", func() {
				_, err := svc.Login(ctx, model.EventSprint, "PARTY", "Alice2", "Alice@Example.com")
				convey.So(err, convey.ShouldEqual, service.ErrEmailTaken)
			})
		})

		convey.Convey("When the invite code is wrong", func() {
			_, err := svc.Login(ctx, model.EventSprint, "WRONG", "Alice", "a@b.c")

			convey.Convey("Then login is rejected", func() {
				convey.So(err, convey.ShouldEqual, service.ErrInvalidInviteCode)
			})
		})

		convey.Convey("When the invite code has been deactivated", func() {
			convey.So(svc.SetInviteCode(ctx, "PARTY", false), convey.ShouldBeNil)
			_, err := svc.Login(ctx, model.EventSprint, "PARTY", "Alice", "a@b.c")

			convey.Convey("Then login is rejected", func() {
				convey.So(err, convey.ShouldEqual, service.ErrInvalidInviteCode)
			})
		})

		convey.Convey("When the display name is unusable", func() {
			for _, name := range []string{"", "   ", "123456", "this name is far too long to accept"} {
				_, err := svc.Login(ctx, model.EventSprint, "PARTY", name, "n@b.c")
				convey.So(err, convey.ShouldEqual, service.ErrInvalidName)
			}
		})

		convey.Convey("When the event is unknown", func() {
			_, err := svc.Login(ctx, model.EventType("jousting"), "PARTY", "Alice", "a@b.c")

			convey.Convey("Then login is rejected", func() {
				convey.So(err, convey.ShouldEqual, service.ErrUnknownEvent)
			})
		})

		convey.Convey("When the event is already live", func() {
			convey.So(svc.StartEvent(ctx, model.EventSprint, 0), convey.ShouldBeNil)
			_, err := svc.Login(ctx, model.EventSprint, "PARTY", "Late", "late@b.c")

			convey.Convey("Then the door is closed", func() {
				convey.So(err, convey.ShouldEqual, service.ErrEventAlreadyLive)
			})
		})
	})
}

func TestEventLifecycle(t *testing.T) {
	convey.Convey("Given a registered participant", t, func() {
		ctx := context.Background()
		svc := newService(t)

		p, err := svc.Login(ctx, model.EventSprint, "PARTY", "Alice", "alice@example.com")
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the event starts", func() {
			convey.So(svc.StartEvent(ctx, model.EventSprint, 0), convey.ShouldBeNil)

			convey.Convey("Then starting twice is rejected", func() {
				convey.So(svc.StartEvent(ctx, model.EventSprint, 0), convey.ShouldEqual, service.ErrEventAlreadyLive)
			})

			convey.Convey("Then the run accumulates time and distance", func() {
				waitFor(t, func() bool {
					snap, err := svc.Progress(ctx, p.ID)
					return err == nil && snap.DistanceTraveled > 0 && snap.Time > 0
				})

				convey.Convey("And a round is open for input", func() {
					game, prompt, err := svc.RoundState(ctx, p.ID)
					convey.So(err, convey.ShouldBeNil)
					convey.So(string(game), convey.ShouldNotBeBlank)
					convey.So(prompt, convey.ShouldNotBeEmpty)
				})
			})

			convey.Convey("Then throttled pushes reach the leaderboard", func() {
				waitFor(t, func() bool {
					entries, err := svc.TopN(ctx, model.EventSprint, 10)
					return err == nil && len(entries) == 1 && entries[0].DistanceTraveled > 0
				})

				entry, err := svc.Rank(ctx, model.EventSprint, p.ID)
				convey.So(err, convey.ShouldBeNil)
				convey.So(entry.Rank, convey.ShouldEqual, 1)
				convey.So(entry.DisplayName, convey.ShouldEqual, "Alice")
			})

			convey.Convey("When the event finishes", func() {
				convey.So(svc.FinishEvent(ctx, model.EventSprint), convey.ShouldBeNil)

				convey.Convey("Then the run is finished with a captured time", func() {
					snap, err := svc.Progress(ctx, p.ID)
					convey.So(err, convey.ShouldBeNil)
					convey.So(snap.Finished, convey.ShouldBeTrue)
				})

				convey.Convey("Then finishing again is rejected until reset", func() {
					convey.So(svc.ResetEvent(ctx, model.EventSprint), convey.ShouldBeNil)
					convey.So(svc.FinishEvent(ctx, model.EventSprint), convey.ShouldEqual, service.ErrEventNotLive)

					snap, err := svc.Progress(ctx, p.ID)
					convey.So(err, convey.ShouldBeNil)
					convey.So(snap.Started, convey.ShouldBeFalse)
					convey.So(snap.DistanceTraveled, convey.ShouldEqual, 0.0)
					convey.So(snap.Speed, convey.ShouldEqual, 100)
				})
			})
		})

		convey.Convey("When input arrives before any round is open", func() {
			err := svc.RoundInput(ctx, p.ID, model.RoundInput{Action: "press", Value: "a"})

			convey.Convey("Then it is rejected", func() {
				convey.So(err, convey.ShouldEqual, service.ErrNoActiveRound)
			})
		})

		convey.Convey("When an unknown participant queries", func() {
			_, err := svc.Progress(ctx, "ghost")
			convey.So(err, convey.ShouldEqual, service.ErrUnknownParticipant)

			_, err = svc.Rank(ctx, model.EventSprint, "ghost")
			convey.So(err, convey.ShouldEqual, service.ErrUnknownParticipant)
		})
	})
}

func TestCountdownStart(t *testing.T) {
	convey.Convey("Given a participant and a short countdown", t, func() {
		ctx := context.Background()
		svc := newService(t)

		p, err := svc.Login(ctx, model.EventCycling, "PARTY", "Bob", "bob@example.com")
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the event starts with a countdown", func() {
			convey.So(svc.StartEvent(ctx, model.EventCycling, 30*time.Millisecond), convey.ShouldBeNil)

			snap, err := svc.Progress(ctx, p.ID)
			convey.So(err, convey.ShouldBeNil)
			convey.So(snap.Started, convey.ShouldBeFalse)

			convey.Convey("Then the run begins once the countdown elapses", func() {
				waitFor(t, func() bool {
					snap, err := svc.Progress(ctx, p.ID)
					return err == nil && snap.Started
				})
			})
		})
	})
}

func TestStandingsThroughPipeline(t *testing.T) {
	convey.Convey("Given two participants racing", t, func() {
		ctx := context.Background()
		svc := newService(t)

		_, err := svc.Login(ctx, model.EventSwimming, "PARTY", "Ann", "ann@example.com")
		convey.So(err, convey.ShouldBeNil)
		_, err = svc.Login(ctx, model.EventSwimming, "PARTY", "Ben", "ben@example.com")
		convey.So(err, convey.ShouldBeNil)

		convey.So(svc.StartEvent(ctx, model.EventSwimming, 0), convey.ShouldBeNil)

		convey.Convey("When the event runs and finishes", func() {
			waitFor(t, func() bool {
				entries, err := svc.TopN(ctx, model.EventSwimming, 10)
				return err == nil && len(entries) == 2
			})
			convey.So(svc.FinishEvent(ctx, model.EventSwimming), convey.ShouldBeNil)

			convey.Convey("Then standings pay the prize table", func() {
				standings, err := svc.Standings(ctx, model.EventSwimming)
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(standings), convey.ShouldEqual, 2)
				convey.So(standings[0].Points, convey.ShouldEqual, 15)
			})
		})
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
