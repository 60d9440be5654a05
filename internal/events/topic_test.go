package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeAndPublish(t *testing.T) {
	topic := NewTopic[int](false)

	var mu sync.Mutex
	var got []int
	unsubscribe := topic.Subscribe(func(v int) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, v)
	})

	topic.Publish(1)
	topic.Publish(2)

	mu.Lock()
	assert.Equal(t, []int{1, 2}, got)
	mu.Unlock()

	unsubscribe()
	topic.Publish(3)

	mu.Lock()
	assert.Equal(t, []int{1, 2}, got)
	mu.Unlock()
	assert.Equal(t, 0, topic.SubscriberCount())
}

func TestReplayLast(t *testing.T) {
	topic := NewTopic[string](true)
	topic.Publish("first")
	topic.Publish("second")

	var got string
	defer topic.Subscribe(func(v string) { got = v })()
	assert.Equal(t, "second", got)

	ch := make(chan string, 1)
	defer topic.SubscribeChan(ch)()
	select {
	case v := <-ch:
		assert.Equal(t, "second", v)
	default:
		t.Fatal("expected replayed value on channel")
	}
}

func TestNoReplayWithoutOptIn(t *testing.T) {
	topic := NewTopic[string](false)
	topic.Publish("early")

	called := false
	defer topic.Subscribe(func(string) { called = true })()
	assert.False(t, called)
}

func TestChannelSubscriberNeverBlocksPublish(t *testing.T) {
	topic := NewTopic[int](false)

	full := make(chan int, 1)
	full <- 99 // leave no room
	defer topic.SubscribeChan(full)()

	roomy := make(chan int, 2)
	defer topic.SubscribeChan(roomy)()

	topic.Publish(7) // must not block on the full channel

	require.Len(t, roomy, 1)
	assert.Equal(t, 7, <-roomy)
	assert.Equal(t, 99, <-full)
}

func TestUnsubscribeTwiceIsSafe(t *testing.T) {
	topic := NewTopic[int](false)
	unsubscribe := topic.Subscribe(func(int) {})
	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, topic.SubscriberCount())
}

func TestNilSubscriberPanics(t *testing.T) {
	topic := NewTopic[int](false)
	assert.Panics(t, func() { topic.Subscribe(nil) })
	assert.Panics(t, func() { topic.SubscribeChan(nil) })
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	topic := NewTopic[int](true)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				topic.Publish(n)
			}
		}(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			var mu sync.Mutex
			count := 0
			unsubscribe := topic.Subscribe(func(int) {
				mu.Lock()
				count++
				mu.Unlock()
			})
			unsubscribe()
		}()
	}
	wg.Wait()
}
