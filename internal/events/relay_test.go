package events_test

import (
	"testing"
	"time"

	"tubevault/internal/events"
)

func TestSubscribeReceivesInOrder(t *testing.T) {
	t.Parallel()

	r := events.NewRelay()
	ch, cancel := r.Subscribe()
	defer cancel()

	r.Progress("vid1", 10)
	r.Progress("vid1", 37)
	r.Completed("vid1", "/vault/vid1.mp4")

	want := []events.Event{
		{Kind: events.KindProgress, VideoID: "vid1", Percentage: 10},
		{Kind: events.KindProgress, VideoID: "vid1", Percentage: 37},
		{Kind: events.KindCompleted, VideoID: "vid1", Percentage: 100, FilePath: "/vault/vid1.mp4"},
	}

	for i, w := range want {
		select {
		case got := <-ch:
			if got != w {
				t.Errorf("event %d: expected %+v, got %+v", i, w, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestMultipleSubscribers(t *testing.T) {
	t.Parallel()

	r := events.NewRelay()
	ch1, cancel1 := r.Subscribe()
	defer cancel1()
	ch2, cancel2 := r.Subscribe()
	defer cancel2()

	r.Failed("vid1", "stream broke")

	for i, ch := range []<-chan events.Event{ch1, ch2} {
		select {
		case got := <-ch:
			if got.Kind != events.KindError || got.Message != "stream broke" {
				t.Errorf("subscriber %d: unexpected event %+v", i, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d never received the event", i)
		}
	}
}

func TestCancelClosesChannel(t *testing.T) {
	t.Parallel()

	r := events.NewRelay()
	ch, cancel := r.Subscribe()

	cancel()
	if _, ok := <-ch; ok {
		t.Error("expected channel closed after cancel")
	}

	// Cancel is idempotent and publishing after it does not panic.
	cancel()
	r.Progress("vid1", 50)
}

func TestPublishNeverBlocks(t *testing.T) {
	t.Parallel()

	r := events.NewRelay()
	_, cancel := r.Subscribe()
	defer cancel()

	// Far more events than the subscriber buffer holds; with nobody
	// draining, publishing must still return.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			r.Progress("vid1", i%101)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publishing blocked on a full subscriber")
	}
}
