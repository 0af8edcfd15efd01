// ABOUTME: Tests for the generic subscriber list
// ABOUTME: Checks ordering, unsubscribe and panic isolation
package observe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishInSubscriptionOrder(t *testing.T) {
	var b Broadcaster[int]
	var got []string

	b.Subscribe(func(v int) { got = append(got, "first") })
	b.Subscribe(func(v int) { got = append(got, "second") })
	b.Publish(1)

	assert.Equal(t, []string{"first", "second"}, got)
}

func TestUnsubscribe(t *testing.T) {
	var b Broadcaster[string]
	calls := 0

	unsub := b.Subscribe(func(string) { calls++ })
	b.Publish("a")
	unsub()
	unsub()
	b.Publish("b")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, b.Len())
}

func TestPanickingSubscriberDoesNotStopOthers(t *testing.T) {
	var b Broadcaster[int]
	var seen int

	b.Subscribe(func(int) { panic("boom") })
	b.Subscribe(func(v int) { seen = v })

	assert.NotPanics(t, func() { b.Publish(7) })
	assert.Equal(t, 7, seen)
}
