package handler

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"digitizer-service/internal/model"
)

func receive(t *testing.T, ch <-chan *model.DigitizerEvent) *model.DigitizerEvent {
	t.Helper()
	select {
	case e, ok := <-ch:
		if !ok {
			t.Fatalf("subscriber channel closed")
		}
		return e
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event")
	}
	return nil
}

func TestEventBusRoutesByType(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	go bus.Start()
	defer bus.Stop()

	ready := bus.Subscribe(model.EventAcquisitionReady)
	all := bus.SubscribeAll()

	bus.PublishEvent(model.NewEvent(model.EventDigitizerOpened, "test", nil))
	bus.PublishEvent(model.NewEvent(model.EventAcquisitionReady, "test", nil))

	if e := receive(t, ready); e.EventType != model.EventAcquisitionReady {
		t.Fatalf("typed subscriber got %s", e.EventType)
	}
	if e := receive(t, all); e.EventType != model.EventDigitizerOpened {
		t.Fatalf("expected opened first, got %s", e.EventType)
	}
	if e := receive(t, all); e.EventType != model.EventAcquisitionReady {
		t.Fatalf("expected ready second, got %s", e.EventType)
	}
}

func TestEventBusStopClosesSubscribers(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	done := make(chan struct{})
	go func() {
		bus.Start()
		close(done)
	}()

	sub := bus.SubscribeAll()
	bus.Stop()
	bus.Stop()
	<-done

	if _, ok := <-sub; ok {
		t.Fatalf("expected closed channel after stop")
	}

	// publishing after stop is a no-op
	bus.PublishEvent(model.NewEvent(model.EventDigitizerClosed, "test", nil))
}

func TestClientSubscriptions(t *testing.T) {
	c := &Client{ID: "c1"}
	if !c.Wants(string(model.EventCaptureCompleted)) {
		t.Fatalf("client without filters must receive everything")
	}

	c.Subscribe(string(model.EventAcquisitionReady))
	if c.Wants(string(model.EventCaptureCompleted)) || !c.Wants(string(model.EventAcquisitionReady)) {
		t.Fatalf("filter not applied")
	}

	c.Unsubscribe(string(model.EventAcquisitionReady))
	if !c.Wants(string(model.EventCaptureCompleted)) {
		t.Fatalf("removing the last filter must restore everything")
	}
}

func TestConnectionManagerBroadcast(t *testing.T) {
	cm := NewConnectionManager()
	ready := &Client{ID: "ready", Send: make(chan []byte, 1)}
	ready.Subscribe(string(model.EventAcquisitionReady))
	everything := &Client{ID: "all", Send: make(chan []byte, 1)}

	cm.Register(ready)
	cm.Register(everything)
	waitFor(t, func() bool { return cm.GetStats().TotalConnections == 2 })

	dropped := cm.Broadcast(string(model.EventDigitizerOpened), []byte("opened"))
	if len(dropped) != 0 {
		t.Fatalf("unexpected drops %v", dropped)
	}
	if len(ready.Send) != 0 || len(everything.Send) != 1 {
		t.Fatalf("opened event went to the wrong clients")
	}

	dropped = cm.Broadcast(string(model.EventAcquisitionReady), []byte("ready"))
	if len(dropped) != 1 || dropped[0] != "all" {
		t.Fatalf("expected full queue on 'all', got %v", dropped)
	}

	stats := cm.GetStats()
	if stats.BySubscription["*"] != 1 || stats.BySubscription[string(model.EventAcquisitionReady)] != 1 {
		t.Fatalf("unexpected stats %+v", stats.BySubscription)
	}

	cm.Unregister(ready)
	waitFor(t, func() bool { return cm.GetStats().TotalConnections == 1 })
	if _, ok := <-ready.Send; !ok {
		t.Fatalf("queued message lost")
	}
	if _, ok := <-ready.Send; ok {
		t.Fatalf("send channel must be closed after unregister")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}
