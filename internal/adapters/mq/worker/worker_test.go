package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/clubhouse/internal/adapters/mq/queue"
	"github.com/okian/clubhouse/internal/adapters/mq/worker"
	"github.com/okian/clubhouse/internal/domain/model"
	logging "github.com/okian/clubhouse/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	ch chan model.Notification
}

func newMockQueue() *mockQueue {
	return &mockQueue{ch: make(chan model.Notification, 128)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan model.Notification { return mq.ch }

func (mq *mockQueue) Close() error {
	close(mq.ch)
	return nil
}

func (mq *mockQueue) add(n model.Notification) { mq.ch <- n }

type mockPublisher struct {
	mu        sync.Mutex
	published map[string]model.Notification
	failing   map[string]error
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{
		published: make(map[string]model.Notification),
		failing:   make(map[string]error),
	}
}

func (p *mockPublisher) Publish(_ context.Context, n model.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err, ok := p.failing[n.ID]; ok {
		return err
	}
	p.published[n.ID] = n
	return nil
}

func (p *mockPublisher) fail(id string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failing[id] = err
}

func (p *mockPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func (p *mockPublisher) has(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.published[id]
	return ok
}

func notification(id string) model.Notification {
	return model.Notification{ID: id, Kind: model.KindNewsletter, Confirmation: "c-" + id, At: time.Now()}
}

// eventually polls cond for up to a second.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running worker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		pub := newMockPublisher()
		w := worker.NewInMemoryWorker(q, pub, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a notification arrives", func() {
			q.add(notification("n1"))

			convey.Convey("Then it is published", func() {
				convey.So(eventually(func() bool { return pub.has("n1") }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When publishing fails", func() {
			pub.fail("bad", errors.New("broker unavailable"))
			q.add(notification("bad"))
			q.add(notification("good"))

			convey.Convey("Then the worker keeps going", func() {
				convey.So(eventually(func() bool { return pub.has("good") }), convey.ShouldBeTrue)
				convey.So(pub.has("bad"), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer shutdownCancel()

			err := w.Shutdown(shutdownCtx)

			convey.Convey("Then it stops and a second shutdown is harmless", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a worker whose context is cancelled", t, func() {
		w := worker.NewInMemoryWorker(newMockQueue(), newMockPublisher())
		ctx, cancel := context.WithCancel(context.Background())
		go w.Run(ctx)
		cancel()

		convey.Convey("Then Run returns", func() {
			stopped := false
			select {
			case <-w.Done():
				stopped = true
			case <-time.After(time.Second):
			}
			convey.So(stopped, convey.ShouldBeTrue)
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool over a real queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(256))
		pub := newMockPublisher()

		convey.Convey("When the count is not positive", func() {
			pool := worker.NewPool(0, q, pub)

			convey.Convey("Then the default is used", func() {
				convey.So(pool.Size(), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When many notifications are enqueued concurrently", func() {
			pool := worker.NewPool(4, q, pub)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			pool.Start(ctx)

			const producers, each = 5, 20
			var wg sync.WaitGroup
			for i := 0; i < producers; i++ {
				wg.Add(1)
				go func(p int) {
					defer wg.Done()
					for j := 0; j < each; j++ {
						_ = q.Enqueue(ctx, notification(fmt.Sprintf("n-%d-%d", p, j)))
					}
				}(i)
			}
			wg.Wait()

			convey.Convey("Then every one is published exactly once", func() {
				convey.So(eventually(func() bool { return pub.count() == producers*each }), convey.ShouldBeTrue)
			})

			convey.Convey("Then shutdown closes the queue", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
				defer shutdownCancel()

				convey.So(pool.Shutdown(shutdownCtx), convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})
}

func TestPublisherFunc(t *testing.T) {
	var got string
	p := worker.PublisherFunc(func(_ context.Context, n model.Notification) error {
		got = n.ID
		return nil
	})
	if err := p.Publish(context.Background(), notification("x")); err != nil || got != "x" {
		t.Fatalf("got %q, %v", got, err)
	}
}
