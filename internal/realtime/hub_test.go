package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return &Client{send: make(chan []byte, 8)}
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case raw := <-c.send:
		var event Event
		require.NoError(t, json.Unmarshal(raw, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestHubRooms(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	subscriber := newTestClient()
	bystander := newTestClient()

	hub.join <- subscription{client: subscriber, room: RoomSchedules}
	hub.join <- subscription{client: bystander, room: RoomWorkOrder("wo1")}

	t.Run("DeliversToJoinedRoom", func(t *testing.T) {
		hub.Publish([]string{RoomSchedules}, EventScheduleUpdate, map[string]string{"technicianId": "t1"})

		event := receive(t, subscriber)
		require.Equal(t, EventScheduleUpdate, event.Event)
		require.False(t, event.Timestamp.IsZero())
		require.Empty(t, bystander.send)
	})

	t.Run("MultiRoomDeliversOnce", func(t *testing.T) {
		hub.join <- subscription{client: subscriber, room: RoomWorkOrder("wo1")}

		hub.Publish([]string{RoomSchedules, RoomWorkOrder("wo1")}, EventWorkOrderReassigned, nil)

		first := receive(t, subscriber)
		require.Equal(t, EventWorkOrderReassigned, first.Event)
		// Subscriber sits in both rooms but gets the event once.
		select {
		case <-subscriber.send:
			t.Fatal("event delivered twice to the same client")
		case <-time.After(50 * time.Millisecond):
		}

		event := receive(t, bystander)
		require.Equal(t, EventWorkOrderReassigned, event.Event)
	})

	t.Run("LeaveStopsDelivery", func(t *testing.T) {
		hub.leave <- subscription{client: subscriber, room: RoomSchedules}
		hub.leave <- subscription{client: subscriber, room: RoomWorkOrder("wo1")}

		hub.Publish([]string{RoomSchedules}, EventScheduleUpdate, nil)

		select {
		case <-subscriber.send:
			t.Fatal("received event after leaving the room")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("UnregisterClosesSend", func(t *testing.T) {
		client := newTestClient()
		hub.join <- subscription{client: client, room: RoomSchedules}
		hub.unregister <- client

		select {
		case _, open := <-client.send:
			require.False(t, open)
		case <-time.After(time.Second):
			t.Fatal("send channel not closed on unregister")
		}
	})
}

func TestShutdownClosesRoomlessClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	hub := NewHub(nil)
	go hub.Run(ctx)

	// Registered but never joined a room.
	client := newTestClient()
	hub.register <- client

	cancel()

	select {
	case _, open := <-client.send:
		require.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed on shutdown")
	}

	// Late unregisters must not block once the hub has stopped.
	select {
	case hub.unregister <- newTestClient():
	case <-hub.done:
	case <-time.After(time.Second):
		t.Fatal("unregister blocked after shutdown")
	}
}

func TestPublishNoRooms(t *testing.T) {
	hub := NewHub(nil)
	// Must not block or panic without a Run loop.
	hub.Publish(nil, EventScheduleUpdate, nil)
}

func TestRoomNames(t *testing.T) {
	require.Equal(t, "workorder:wo1", RoomWorkOrder("wo1"))
	require.Equal(t, "technician-schedule:t1", RoomTechnicianSchedule("t1"))
	require.Equal(t, "date-schedule:2026-09-01", RoomDateSchedule("2026-09-01"))
}
