package ws

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-service/internal/models"
)

type fakeConn struct {
	events  []models.ChatEvent
	failure error
	closed  bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	if f.failure != nil {
		return f.failure
	}
	f.events = append(f.events, v.(models.ChatEvent))
	return nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func TestRegistryJoinAndLookup(t *testing.T) {
	registry := NewRegistry()
	conn := &fakeConn{}

	registry.Join("u1", conn)

	got, ok := registry.Lookup("u1")
	require.True(t, ok)
	assert.Same(t, conn, got)
	assert.Equal(t, 1, registry.Online())

	_, ok = registry.Lookup("u2")
	assert.False(t, ok)
}

func TestRegistryJoinDisplacesPreviousHandle(t *testing.T) {
	registry := NewRegistry()
	first := &fakeConn{}
	second := &fakeConn{}

	registry.Join("u1", first)
	registry.Join("u1", second)

	got, ok := registry.Lookup("u1")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, registry.Online())

	// Leaving with the displaced handle must not evict the current one.
	registry.Leave(first)
	got, ok = registry.Lookup("u1")
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestRegistryLeave(t *testing.T) {
	registry := NewRegistry()
	conn := &fakeConn{}

	registry.Join("u1", conn)
	registry.Leave(conn)

	_, ok := registry.Lookup("u1")
	assert.False(t, ok)
	assert.Equal(t, 0, registry.Online())

	// Leaving twice is harmless.
	registry.Leave(conn)
}

func TestDispatchPushesToReceiverAndEchoesSender(t *testing.T) {
	registry := NewRegistry()
	sender := &fakeConn{}
	receiver := &fakeConn{}
	registry.Join("u1", sender)
	registry.Join("u2", receiver)

	dispatcher := NewDispatcher(registry)
	msg := models.Message{ID: 7, ConversationID: "u1_u2", SenderID: "u1", ReceiverID: "u2", Body: "hi"}
	dispatcher.Dispatch(msg)

	require.Len(t, receiver.events, 1)
	assert.Equal(t, models.EventMessage, receiver.events[0].Type)
	assert.Equal(t, int64(7), receiver.events[0].Message.ID)

	require.Len(t, sender.events, 1)
	assert.Equal(t, models.EventMessageSent, sender.events[0].Type)
	assert.Equal(t, "hi", sender.events[0].Message.Body)
}

func TestDispatchEchoesSenderWhenReceiverOffline(t *testing.T) {
	registry := NewRegistry()
	sender := &fakeConn{}
	registry.Join("u1", sender)

	dispatcher := NewDispatcher(registry)
	dispatcher.Dispatch(models.Message{ID: 1, SenderID: "u1", ReceiverID: "u2", Body: "anyone there"})

	require.Len(t, sender.events, 1)
	assert.Equal(t, models.EventMessageSent, sender.events[0].Type)
}

// overlapConn counts writers inside WriteJSON at once. Anything above one is
// the interleave a gorilla connection rejects with a panic.
type overlapConn struct {
	writing  atomic.Int32
	overlaps atomic.Int32
	writes   atomic.Int32
}

func (c *overlapConn) WriteJSON(v interface{}) error {
	if c.writing.Add(1) > 1 {
		c.overlaps.Add(1)
	}
	time.Sleep(time.Millisecond)
	c.writing.Add(-1)
	c.writes.Add(1)
	return nil
}

func (c *overlapConn) Close() error { return nil }

func TestConcurrentDispatchSerializesWritesToSharedHandle(t *testing.T) {
	registry := NewRegistry()
	receiver := &overlapConn{}
	registry.Join("u2", newLockedConn(receiver))

	dispatcher := NewDispatcher(registry)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(sender string) {
			defer wg.Done()
			dispatcher.Dispatch(models.Message{ID: int64(1), SenderID: sender, ReceiverID: "u2", Body: "hi"})
		}(fmt.Sprintf("u%d", 10+i))
	}
	wg.Wait()

	assert.EqualValues(t, 0, receiver.overlaps.Load())
	assert.EqualValues(t, 8, receiver.writes.Load())
}

func TestDispatchEvictsDeadReceiverHandle(t *testing.T) {
	registry := NewRegistry()
	sender := &fakeConn{}
	receiver := &fakeConn{failure: errors.New("broken pipe")}
	registry.Join("u1", sender)
	registry.Join("u2", receiver)

	dispatcher := NewDispatcher(registry)
	dispatcher.Dispatch(models.Message{ID: 2, SenderID: "u1", ReceiverID: "u2", Body: "hello"})

	assert.True(t, receiver.closed)
	_, ok := registry.Lookup("u2")
	assert.False(t, ok)

	// The self-echo still went out despite the failed push.
	require.Len(t, sender.events, 1)
	assert.Equal(t, models.EventMessageSent, sender.events[0].Type)
}
