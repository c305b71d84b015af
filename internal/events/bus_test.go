package events

import (
	"sync"
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	bus := New()

	var mu sync.Mutex
	var got []LightPluggedEvent
	done := make(chan struct{}, 1)

	unsub := bus.Subscribe(func(e LightPluggedEvent) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
		select {
		case done <- struct{}{}:
		default:
		}
	})
	defer unsub()

	bus.Publish(LightPluggedEvent{Light: LightIdentity{Name: "Flag"}})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("subscriber never fired")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0].Light.Name != "Flag" {
		t.Errorf("got %v", got)
	}
}

func TestSubscriberTypeIsolation(t *testing.T) {
	bus := New()

	plugged := make(chan struct{}, 1)
	unplugged := make(chan struct{}, 1)

	defer bus.Subscribe(func(LightPluggedEvent) { plugged <- struct{}{} })()
	defer bus.Subscribe(func(LightUnpluggedEvent) { unplugged <- struct{}{} })()

	bus.Publish(LightUnpluggedEvent{Light: LightIdentity{Name: "Mute"}})

	select {
	case <-unplugged:
	case <-time.After(time.Second):
		t.Fatal("unplugged subscriber never fired")
	}
	select {
	case <-plugged:
		t.Fatal("plugged subscriber fired for unplug event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnknownHandlerIsNoop(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(int) {})
	unsub() // must not panic
}
