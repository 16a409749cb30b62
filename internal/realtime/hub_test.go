package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainBroadcast(t *testing.T) {
	t.Helper()
	for {
		select {
		case <-Events.Broadcast:
		default:
			return
		}
	}
}

func TestEmitPushesTypedEvent(t *testing.T) {
	drainBroadcast(t)

	Emit(EventTransferCommitted, map[string]interface{}{"transfer_id": 1})

	select {
	case raw := <-Events.Broadcast:
		var ev Event
		require.NoError(t, json.Unmarshal(raw, &ev))
		assert.Equal(t, EventTransferCommitted, ev.Type)
		assert.NotEmpty(t, ev.Timestamp)
	default:
		t.Fatal("tidak ada event di buffer")
	}
}

func TestEmitTidakBlockSaatBufferPenuh(t *testing.T) {
	drainBroadcast(t)

	// Isi buffer sampai penuh lalu emit sekali lagi: harus drop, bukan block.
	for i := 0; i < cap(Events.Broadcast); i++ {
		Events.Broadcast <- []byte("x")
	}
	Emit(EventQueueEntryCreated, nil)

	assert.Len(t, Events.Broadcast, cap(Events.Broadcast))
	drainBroadcast(t)
}
