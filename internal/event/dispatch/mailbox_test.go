package dispatch_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/folio/internal/event/dispatch"
)

func TestMailboxDeliversInOrder(t *testing.T) {
	var mu sync.Mutex
	var got []int
	m := dispatch.NewMailbox(func(item any) {
		mu.Lock()
		got = append(got, item.(int))
		mu.Unlock()
	})

	for i := 0; i < 500; i++ {
		require.True(t, m.Push(i))
	}
	m.Close(true)

	select {
	case <-m.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("mailbox did not drain")
	}

	require.Len(t, got, 500)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
	assert.False(t, m.Push(501))
}

func TestMailboxCloseWithoutDrain(t *testing.T) {
	release := make(chan struct{})
	var delivered []any
	m := dispatch.NewMailbox(func(item any) {
		<-release
		delivered = append(delivered, item)
	})

	m.Push("first")
	// Wait for the consumer to take the first item.
	require.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, time.Millisecond)
	m.Push("second")
	m.Close(false)
	close(release)

	<-m.Done()
	assert.Equal(t, []any{"first"}, delivered)
}
