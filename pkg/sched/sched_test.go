package sched_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/pixelparty/triathlon/pkg/sched"
	"github.com/smartystreets/goconvey/convey"
)

func TestHandle(t *testing.T) {
	convey.Convey("Given a handle wrapping a release function", t, func() {
		var calls atomic.Int32
		h := sched.NewHandle(func() { calls.Add(1) })

		convey.Convey("When Stop is called multiple times", func() {
			h.Stop()
			h.Stop()
			h.Stop()

			convey.Convey("Then the release function runs exactly once", func() {
				convey.So(calls.Load(), convey.ShouldEqual, 1)
			})
		})
	})
}

func TestRepeat(t *testing.T) {
	convey.Convey("Given a repeating timer", t, func() {
		var ticks atomic.Int32
		h := sched.Repeat(10*time.Millisecond, func() { ticks.Add(1) })

		convey.Convey("When it runs for several intervals and is stopped", func() {
			time.Sleep(55 * time.Millisecond)
			h.Stop()
			settled := ticks.Load()
			time.Sleep(30 * time.Millisecond)

			convey.Convey("Then it fired while running and never after Stop", func() {
				convey.So(settled, convey.ShouldBeGreaterThanOrEqualTo, 2)
				convey.So(ticks.Load(), convey.ShouldEqual, settled)
			})
		})
	})
}

func TestAfter(t *testing.T) {
	convey.Convey("Given a one-shot timer", t, func() {
		convey.Convey("When it is stopped before firing", func() {
			var fired atomic.Bool
			h := sched.After(30*time.Millisecond, func() { fired.Store(true) })
			h.Stop()
			time.Sleep(50 * time.Millisecond)

			convey.Convey("Then the callback never runs", func() {
				convey.So(fired.Load(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When it is allowed to fire", func() {
			var fired atomic.Bool
			sched.After(5*time.Millisecond, func() { fired.Store(true) })
			time.Sleep(30 * time.Millisecond)

			convey.Convey("Then the callback runs", func() {
				convey.So(fired.Load(), convey.ShouldBeTrue)
			})
		})
	})
}

func TestRegistry(t *testing.T) {
	convey.Convey("Given a registry of handles", t, func() {
		r := sched.NewRegistry()
		var stops atomic.Int32

		convey.Convey("When handles are tracked and StopAll is called twice", func() {
			for i := 0; i < 3; i++ {
				r.Add(sched.NewHandle(func() { stops.Add(1) }))
			}
			convey.So(r.Len(), convey.ShouldEqual, 3)

			r.StopAll()
			r.StopAll()

			convey.Convey("Then every handle is released exactly once", func() {
				convey.So(stops.Load(), convey.ShouldEqual, 3)
				convey.So(r.Len(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When a handle is added after release", func() {
			r.StopAll()
			var late atomic.Int32
			r.Add(sched.NewHandle(func() { late.Add(1) }))

			convey.Convey("Then it is stopped immediately", func() {
				convey.So(late.Load(), convey.ShouldEqual, 1)
				convey.So(r.Len(), convey.ShouldEqual, 0)
			})
		})
	})
}
