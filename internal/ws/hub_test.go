package ws

import (
	"errors"
	"testing"
	"time"
)

type fakeSubscriber struct {
	received chan []byte
	sendErr  error
	closed   chan struct{}
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{received: make(chan []byte, 8), closed: make(chan struct{}, 1)}
}

func (f *fakeSubscriber) Send(payload []byte) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.received <- payload
	return nil
}

func (f *fakeSubscriber) Close() {
	select {
	case f.closed <- struct{}{}:
	default:
	}
}

func waitFor(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case payload := <-ch:
		return payload
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for payload")
		return nil
	}
}

func TestBroadcastReachesRoomMembers(t *testing.T) {
	hub := NewHub()
	first := newFakeSubscriber()
	second := newFakeSubscriber()
	hub.Register("team-1", first)
	hub.Register("team-1", second)

	hub.Broadcast("team-1", []byte("hello"))

	if got := string(waitFor(t, first.received)); got != "hello" {
		t.Fatalf("first subscriber got %q", got)
	}
	if got := string(waitFor(t, second.received)); got != "hello" {
		t.Fatalf("second subscriber got %q", got)
	}
}

func TestBroadcastScopedToRoom(t *testing.T) {
	hub := NewHub()
	inRoom := newFakeSubscriber()
	elsewhere := newFakeSubscriber()
	hub.Register("team-1", inRoom)
	hub.Register("team-2", elsewhere)

	hub.Broadcast("team-1", []byte("hello"))

	waitFor(t, inRoom.received)
	select {
	case payload := <-elsewhere.received:
		t.Fatalf("unexpected payload in other room: %q", payload)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	sub := newFakeSubscriber()
	hub.Register("team-1", sub)
	hub.Unregister("team-1", sub)

	hub.Broadcast("team-1", []byte("hello"))

	select {
	case payload := <-sub.received:
		t.Fatalf("unexpected payload after unregister: %q", payload)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFailingSubscriberDropped(t *testing.T) {
	hub := NewHub()
	broken := newFakeSubscriber()
	broken.sendErr = errors.New("gone")
	healthy := newFakeSubscriber()
	hub.Register("team-1", broken)
	hub.Register("team-1", healthy)

	hub.Broadcast("team-1", []byte("first"))
	waitFor(t, healthy.received)

	select {
	case <-broken.closed:
	case <-time.After(time.Second):
		t.Fatalf("failing subscriber was never closed")
	}

	hub.Broadcast("team-1", []byte("second"))
	if got := string(waitFor(t, healthy.received)); got != "second" {
		t.Fatalf("healthy subscriber got %q", got)
	}
}
