package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/ben/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type backendCase struct {
	name string
	open func(t *testing.T) Store
}

func backends() []backendCase {
	return []backendCase{
		{name: "memory", open: func(t *testing.T) Store {
			return NewTreapStore(context.Background(), WithSeed(42))
		}},
		{name: "sqlite", open: func(t *testing.T) Store {
			s, err := OpenSQLite(context.Background(), MemoryPath)
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			return s
		}},
	}
}

func TestStoreContract(t *testing.T) {
	for _, b := range backends() {
		Convey("Given an empty "+b.name+" store", t, func() {
			ctx := context.Background()
			store := b.open(t)
			Reset(func() { _ = store.Close() })

			Convey("It has no records", func() {
				recs, err := store.Records(ctx)
				So(err, ShouldBeNil)
				So(recs, ShouldNotBeNil)
				So(recs, ShouldBeEmpty)

				n, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
				So(store.Ping(ctx), ShouldBeNil)
			})

			Convey("Increment creates a record with count 1", func() {
				So(store.Increment(ctx, "zmeskal"), ShouldBeNil)

				recs, err := store.Records(ctx)
				So(err, ShouldBeNil)
				So(recs, ShouldResemble, []model.GuessRecord{{Surname: "zmeskal", Count: 1}})
			})

			Convey("Repeated increments add exactly one each", func() {
				for i := 0; i < 3; i++ {
					So(store.Increment(ctx, "zmeskal"), ShouldBeNil)
				}
				recs, err := store.Records(ctx)
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 1)
				So(recs[0].Count, ShouldEqual, int64(3))
			})

			Convey("Records are ordered by count desc then surname asc", func() {
				for _, s := range []string{"tsmeskal", "zmeskal", "smeskal", "zmeskal", "zmeskal", "smeskal"} {
					So(store.Increment(ctx, s), ShouldBeNil)
				}
				recs, err := store.Records(ctx)
				So(err, ShouldBeNil)
				So(recs, ShouldResemble, []model.GuessRecord{
					{Surname: "zmeskal", Count: 3},
					{Surname: "smeskal", Count: 2},
					{Surname: "tsmeskal", Count: 1},
				})

				n, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 3)
			})

			Convey("Ties break alphabetically", func() {
				for _, s := range []string{"tsmeskal", "csmeskal", "zmeskal"} {
					So(store.Increment(ctx, s), ShouldBeNil)
				}
				recs, err := store.Records(ctx)
				So(err, ShouldBeNil)
				So(recs[0].Surname, ShouldEqual, "csmeskal")
				So(recs[1].Surname, ShouldEqual, "tsmeskal")
				So(recs[2].Surname, ShouldEqual, "zmeskal")
			})

			Convey("Non-canonical surnames are refused", func() {
				for _, s := range []string{"", "Zmeskal", "zmes", "amesakal", "zmeskal2", "zmeskal x"} {
					So(errors.Is(store.Increment(ctx, s), ErrInvalidRecord), ShouldBeTrue)
				}
				n, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
			})

			Convey("Concurrent increments lose no updates", func() {
				const workers, perWorker = 8, 25
				names := []string{"zmeskal", "smeskal"}

				var wg sync.WaitGroup
				errs := make(chan error, workers*perWorker)
				for w := 0; w < workers; w++ {
					wg.Add(1)
					go func(w int) {
						defer wg.Done()
						for i := 0; i < perWorker; i++ {
							errs <- store.Increment(ctx, names[(w+i)%len(names)])
						}
					}(w)
				}
				wg.Wait()
				close(errs)
				for err := range errs {
					So(err, ShouldBeNil)
				}

				recs, err := store.Records(ctx)
				So(err, ShouldBeNil)
				var total int64
				for _, r := range recs {
					total += r.Count
				}
				So(total, ShouldEqual, int64(workers*perWorker))
				So(recs, ShouldHaveLength, 2)
			})

			Convey("Replace swaps the whole tally", func() {
				So(store.Increment(ctx, "tsmeskal"), ShouldBeNil)

				err := store.Replace(ctx, []model.GuessRecord{
					{Surname: "smeskal", Count: 4},
					{Surname: "zmeskal", Count: 10},
				})
				So(err, ShouldBeNil)

				recs, err := store.Records(ctx)
				So(err, ShouldBeNil)
				So(recs, ShouldResemble, []model.GuessRecord{
					{Surname: "zmeskal", Count: 10},
					{Surname: "smeskal", Count: 4},
				})

				Convey("And increments continue from the loaded counts", func() {
					So(store.Increment(ctx, "smeskal"), ShouldBeNil)
					recs, err := store.Records(ctx)
					So(err, ShouldBeNil)
					So(recs[1], ShouldResemble, model.GuessRecord{Surname: "smeskal", Count: 5})
				})
			})

			Convey("Replace with nothing empties the store", func() {
				So(store.Increment(ctx, "zmeskal"), ShouldBeNil)
				So(store.Replace(ctx, nil), ShouldBeNil)
				n, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
			})

			Convey("Replace rejects bad input without touching state", func() {
				So(store.Increment(ctx, "zmeskal"), ShouldBeNil)

				err := store.Replace(ctx, []model.GuessRecord{{Surname: "smeskal", Count: 0}})
				So(errors.Is(err, ErrInvalidRecord), ShouldBeTrue)

				err = store.Replace(ctx, []model.GuessRecord{
					{Surname: "smeskal", Count: 1},
					{Surname: "smeskal", Count: 2},
				})
				So(errors.Is(err, ErrDuplicateRecord), ShouldBeTrue)

				recs, err := store.Records(ctx)
				So(err, ShouldBeNil)
				So(recs, ShouldResemble, []model.GuessRecord{{Surname: "zmeskal", Count: 1}})
			})

			Convey("A closed store reports ErrClosed", func() {
				So(store.Close(), ShouldBeNil)
				So(store.Close(), ShouldBeNil)
				So(store.Ping(ctx), ShouldEqual, ErrClosed)
				So(store.Increment(ctx, "zmeskal"), ShouldEqual, ErrClosed)
				_, err := store.Records(ctx)
				So(err, ShouldEqual, ErrClosed)
			})
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, BackendMemory, "")
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	_ = s.Close()

	s, err = Open(ctx, BackendSQLite, MemoryPath)
	if err != nil {
		t.Fatalf("sqlite backend: %v", err)
	}
	_ = s.Close()

	if _, err := Open(ctx, "postgres", ""); err == nil {
		t.Fatal("expected error for unknown backend")
	} else if got := fmt.Sprint(err); got != `unknown store backend: "postgres"` {
		t.Errorf("unexpected error text %q", got)
	}
}
