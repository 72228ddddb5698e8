package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinged struct{ n int }

func (pinged) EventName() string { return "test.Pinged" }

type ponged struct{}

func (ponged) EventName() string { return "test.Ponged" }

func TestPublishDeliversInRegistrationOrder(t *testing.T) {
	d := New()
	var calls []string

	Subscribe(d, func(_ context.Context, e pinged) error {
		calls = append(calls, "first")
		return nil
	})
	Subscribe(d, func(_ context.Context, e pinged) error {
		calls = append(calls, "second")
		return nil
	})

	d.Publish(context.Background(), pinged{n: 1})

	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestFailingHandlerDoesNotStopDelivery(t *testing.T) {
	var failures []string
	d := New(WithFailureHook(func(event string, err error) {
		failures = append(failures, event+": "+err.Error())
	}))
	secondCalls := 0

	Subscribe(d, func(context.Context, pinged) error { return errors.New("billing down") })
	Subscribe(d, func(context.Context, pinged) error {
		secondCalls++
		return nil
	})

	require.NotPanics(t, func() { d.Publish(context.Background(), pinged{}) })

	assert.Equal(t, 1, secondCalls)
	assert.Equal(t, []string{"test.Pinged: billing down"}, failures)
}

func TestPanickingHandlerIsRecovered(t *testing.T) {
	var failed error
	d := New(WithFailureHook(func(_ string, err error) { failed = err }))
	delivered := false

	Subscribe(d, func(context.Context, pinged) error { panic("boom") })
	Subscribe(d, func(context.Context, pinged) error {
		delivered = true
		return nil
	})

	require.NotPanics(t, func() { d.Publish(context.Background(), pinged{}) })
	assert.True(t, delivered)
	require.Error(t, failed)
	assert.Contains(t, failed.Error(), "boom")
}

func TestDuplicateRegistrationDeliversTwice(t *testing.T) {
	d := New()
	count := 0
	h := func(context.Context, pinged) error {
		count++
		return nil
	}
	Subscribe(d, h)
	Subscribe(d, h)

	d.Publish(context.Background(), pinged{})

	assert.Equal(t, 2, count)
	assert.Equal(t, 2, d.Handlers("test.Pinged"))
}

func TestPublishOnlyReachesMatchingName(t *testing.T) {
	d := New()
	var got []int
	Subscribe(d, func(_ context.Context, e pinged) error {
		got = append(got, e.n)
		return nil
	})

	d.Publish(context.Background(), ponged{})
	d.Publish(context.Background(), pinged{n: 7})

	assert.Equal(t, []int{7}, got)
	assert.Zero(t, d.Handlers("test.Ponged"))
}

func TestConcurrentRegisterAndPublish(t *testing.T) {
	d := New()
	var mu sync.Mutex
	total := 0

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			Subscribe(d, func(context.Context, pinged) error {
				mu.Lock()
				total++
				mu.Unlock()
				return nil
			})
		}()
		go func() {
			defer wg.Done()
			d.Publish(context.Background(), pinged{})
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, d.Handlers("test.Pinged"))

	mu.Lock()
	before := total
	mu.Unlock()
	d.Publish(context.Background(), pinged{})
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, before+20, total)
}
