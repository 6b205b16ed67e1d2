package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/labx/internal/adapters/repository"
	"github.com/okian/labx/internal/domain/lead"
	. "github.com/smartystreets/goconvey/convey"
)

func leads(cats ...string) []lead.Record {
	out := make([]lead.Record, 0, len(cats))
	for i, c := range cats {
		out = append(out, lead.Record{
			Timestamp: time.Date(2024, time.January, 1+i, 9, 0, 0, 0, time.UTC),
			Score:     lead.NewScore(float64(i % 5)),
			Category:  c,
		})
	}
	return out
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)

	Convey("Given an empty store", t, func() {
		store := repository.NewMemoryStore(repository.WithClock(func() time.Time { return fixed }))

		Convey("Then it reports an empty dataset", func() {
			snap := store.Snapshot(ctx)
			So(store.Count(ctx), ShouldEqual, 0)
			So(snap.Records, ShouldNotBeNil)
			So(snap.Len(), ShouldEqual, 0)
			So(snap.Version, ShouldEqual, 0)
			So(store.Categories(ctx), ShouldBeEmpty)
		})

		Convey("When a dataset is loaded", func() {
			So(store.Replace(ctx, leads("Car", "Bike", "Car")), ShouldBeNil)

			Convey("Then count, categories and stamp follow the load", func() {
				snap := store.Snapshot(ctx)
				So(store.Count(ctx), ShouldEqual, 3)
				So(store.Categories(ctx), ShouldResemble, []string{"Car", "Bike"})
				So(snap.LoadedAt, ShouldEqual, fixed)
				So(snap.Version, ShouldEqual, 1)
			})

			Convey("And a second load replaces rather than appends", func() {
				So(store.Replace(ctx, leads("Van")), ShouldBeNil)
				So(store.Count(ctx), ShouldEqual, 1)
				So(store.Categories(ctx), ShouldResemble, []string{"Van"})
				So(store.Snapshot(ctx).Version, ShouldEqual, 2)
			})
		})

		Convey("When the caller mutates its slices", func() {
			in := leads("Car", "Bike")
			So(store.Replace(ctx, in), ShouldBeNil)
			in[0].Category = "Changed"

			snap := store.Snapshot(ctx)
			snap.Records[1].Category = "Changed"
			snap.Categories[0] = "Changed"

			Convey("Then the stored dataset is unaffected", func() {
				again := store.Snapshot(ctx)
				So(again.Records[0].Category, ShouldEqual, "Car")
				So(again.Records[1].Category, ShouldEqual, "Bike")
				So(again.Categories, ShouldResemble, []string{"Car", "Bike"})
			})
		})

		Convey("When the context is already canceled", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()
			err := store.Replace(canceled, leads("Car"))

			Convey("Then nothing is loaded", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When the store is closed", func() {
			So(store.Replace(ctx, leads("Car")), ShouldBeNil)
			So(store.Close(), ShouldBeNil)

			Convey("Then writes fail but reads still serve", func() {
				So(errors.Is(store.Replace(ctx, leads("Bike")), repository.ErrClosed), ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a seeded store", t, func() {
		store := repository.NewMemoryStore(repository.WithInitial(leads("Car", "Van")))

		Convey("Then the seed is visible immediately", func() {
			So(store.Count(ctx), ShouldEqual, 2)
			So(store.Snapshot(ctx).Version, ShouldEqual, 1)
		})
	})
}

func TestMemoryStoreConcurrency(t *testing.T) {
	Convey("Given concurrent readers and writers", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		var wg sync.WaitGroup

		for i := 0; i < 8; i++ {
			wg.Add(2)
			go func(n int) {
				defer wg.Done()
				batch := make([]string, n+1)
				for j := range batch {
					batch[j] = "Car"
				}
				_ = store.Replace(ctx, leads(batch...))
			}(i)
			go func() {
				defer wg.Done()
				snap := store.Snapshot(ctx)
				_ = snap.Len()
			}()
		}
		wg.Wait()

		Convey("Then every snapshot is internally consistent", func() {
			snap := store.Snapshot(ctx)
			So(snap.Len(), ShouldBeBetweenOrEqual, 1, 8)
			So(snap.Version, ShouldEqual, 8)
		})
	})
}
