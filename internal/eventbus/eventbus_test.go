package eventbus

import (
	"context"
	"sync"
	"testing"
)

type ping struct{ N int }
type pong struct{ N int }

func TestPublishReachesSubscribersOfSameType(t *testing.T) {
	Use(New())
	defer Use(nil)

	var got []int
	Subscribe(func(ctx context.Context, e ping) { got = append(got, e.N) })
	Subscribe(func(ctx context.Context, e pong) { t.Fatal("wrong event type delivered") })

	Publish(context.Background(), ping{N: 1})
	Publish(context.Background(), ping{N: 2})

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("got %v", got)
	}
}

func TestMultipleSubscribersAllReceive(t *testing.T) {
	Use(New())
	defer Use(nil)

	var a, b int
	Subscribe(func(ctx context.Context, e ping) { a++ })
	Subscribe(func(ctx context.Context, e ping) { b++ })

	Publish(context.Background(), ping{})
	if a != 1 || b != 1 {
		t.Fatalf("a=%d b=%d", a, b)
	}
}

func TestPublishWithoutBusIsNoop(t *testing.T) {
	Use(nil)
	Publish(context.Background(), ping{N: 1})
}

func TestConcurrentPublish(t *testing.T) {
	Use(New())
	defer Use(nil)

	var mu sync.Mutex
	count := 0
	Subscribe(func(ctx context.Context, e ping) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Publish(context.Background(), ping{})
		}()
	}
	wg.Wait()

	if count != 20 {
		t.Fatalf("count=%d", count)
	}
}
