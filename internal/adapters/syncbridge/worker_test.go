package syncbridge_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/pixelparty/triathlon/internal/adapters/scorestore"
	"github.com/pixelparty/triathlon/internal/adapters/syncbridge"
	"github.com/pixelparty/triathlon/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestQueueSemantics(t *testing.T) {
	convey.Convey("Given a bounded queue", t, func() {
		ctx := context.Background()
		q := syncbridge.NewInMemoryQueue(syncbridge.WithCapacity(2), syncbridge.WithBufferSize(2))

		convey.Convey("When writes fit the capacity", func() {
			convey.So(q.Enqueue(ctx, write(1)), convey.ShouldBeTrue)
			convey.So(q.Enqueue(ctx, write(2)), convey.ShouldBeTrue)
			convey.So(q.Len(ctx), convey.ShouldEqual, 2)

			convey.Convey("Then an overflow write is rejected, not blocked", func() {
				convey.So(q.Enqueue(ctx, write(3)), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the queue closes", func() {
			convey.So(q.Close(), convey.ShouldBeNil)

			convey.Convey("Then enqueue refuses and close is idempotent", func() {
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
				convey.So(q.Enqueue(ctx, write(1)), convey.ShouldBeFalse)
				convey.So(q.Close(), convey.ShouldBeNil)
			})
		})
	})
}

func TestWorkerPoolWritesThrough(t *testing.T) {
	convey.Convey("Given a pool draining the queue into the store", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store, err := scorestore.NewMemoryStore(ctx)
		convey.So(err, convey.ShouldBeNil)
		defer store.Close()

		q := syncbridge.NewInMemoryQueue()
		pool := syncbridge.NewPool(2, q, store)
		pool.Start(ctx)
		defer func() { _ = pool.Shutdown(context.Background()) }()

		convey.Convey("When a merge write is enqueued over a seeded record", func() {
			path := scorestore.PathEventScore(model.EventSprint, "p1")
			convey.So(store.Set(ctx, path, map[string]any{
				"distanceTraveled": float64(0),
				"finishTime":       float64(0),
				"email":            "a@b.c",
				"userName":         "Alice",
			}), convey.ShouldBeNil)

			w := write(250)
			w.Record.FinishTime = 0
			convey.So(q.Enqueue(ctx, w), convey.ShouldBeTrue)

			convey.Convey("Then the store reflects the push with identity intact", func() {
				waitFor(t, func() bool {
					v, ok, _ := store.Get(ctx, path)
					if !ok {
						return false
					}
					doc := v.(map[string]any)
					return doc["distanceTraveled"] == float64(250)
				})

				v, _, _ := store.Get(ctx, path)
				doc := v.(map[string]any)
				convey.So(doc["userName"], convey.ShouldEqual, "Alice")
				convey.So(doc["email"], convey.ShouldEqual, "a@b.c")
			})
		})

		convey.Convey("When a replace write is enqueued", func() {
			w := write(500)
			w.ParticipantID = "p9"
			w.Merge = false
			convey.So(q.Enqueue(ctx, w), convey.ShouldBeTrue)

			convey.Convey("Then the record materializes at the score path", func() {
				path := scorestore.PathEventScore(model.EventSprint, "p9")
				waitFor(t, func() bool {
					_, ok, _ := store.Get(ctx, path)
					return ok
				})

				v, _, _ := store.Get(ctx, path)
				doc := v.(map[string]any)
				convey.So(doc["distanceTraveled"], convey.ShouldEqual, float64(500))
			})
		})
	})
}

func TestPoolPreservesPerParticipantOrder(t *testing.T) {
	convey.Convey("Given a multi-worker pool", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store, err := scorestore.NewMemoryStore(ctx)
		convey.So(err, convey.ShouldBeNil)
		defer store.Close()

		q := syncbridge.NewInMemoryQueue()
		pool := syncbridge.NewPool(4, q, store)
		pool.Start(ctx)

		convey.Convey("When a stale snapshot is enqueued just before the final one", func() {
			const runners = 50
			for i := 0; i < runners; i++ {
				id := fmt.Sprintf("p%d", i)
				stale := syncbridge.Write{
					Event:         model.EventSprint,
					ParticipantID: id,
					Record:        model.ScoreRecord{DistanceTraveled: 500},
					Merge:         true,
				}
				final := syncbridge.Write{
					Event:         model.EventSprint,
					ParticipantID: id,
					Record:        model.ScoreRecord{DistanceTraveled: 1000, FinishTime: 42},
					Merge:         true,
				}
				convey.So(q.Enqueue(ctx, stale), convey.ShouldBeTrue)
				convey.So(q.Enqueue(ctx, final), convey.ShouldBeTrue)
			}

			// Shutdown drains the queue completely, so any misordered
			// apply would leave the stale record behind.
			convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)

			convey.Convey("Then every participant's final record wins", func() {
				for i := 0; i < runners; i++ {
					path := scorestore.PathEventScore(model.EventSprint, fmt.Sprintf("p%d", i))
					v, ok, err := store.Get(ctx, path)
					convey.So(err, convey.ShouldBeNil)
					convey.So(ok, convey.ShouldBeTrue)

					doc := v.(map[string]any)
					convey.So(doc["distanceTraveled"], convey.ShouldEqual, float64(1000))
					convey.So(doc["finishTime"], convey.ShouldEqual, float64(42))
				}
			})
		})
	})
}
