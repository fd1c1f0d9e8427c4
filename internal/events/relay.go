// Package events relays transfer notifications to whoever is listening.
//
// Delivery is fire-and-forget: a subscriber that is not keeping up, or not
// listening at all, misses events. The record store stays the durable source
// of truth, so a missed event only delays a UI refresh.
package events

import (
	"sync"

	"tubevault/internal/utils/logging"
)

// Kind discriminates relay events.
type Kind string

const (
	KindProgress  Kind = "progress"
	KindCompleted Kind = "completed"
	KindError     Kind = "error"
)

// Event is one transfer notification, keyed by platform video ID.
type Event struct {
	Kind       Kind   `json:"kind"`
	VideoID    string `json:"video_id"`
	Percentage int    `json:"percentage,omitempty"`
	FilePath   string `json:"file_path,omitempty"`
	Message    string `json:"message,omitempty"`
}

const subscriberBuffer = 64

// Relay fans events out to subscribers. Publishing never blocks: events for
// a full subscriber channel are dropped.
type Relay struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// NewRelay returns an empty relay.
func NewRelay() *Relay {
	return &Relay{
		subs: make(map[int]chan Event),
	}
}

// Subscribe registers a listener. The returned cancel func must be called
// when the listener goes away; the channel is closed by it.
func (r *Relay) Subscribe() (<-chan Event, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.next
	r.next++

	ch := make(chan Event, subscriberBuffer)
	r.subs[id] = ch

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if sub, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Progress relays a progress percentage for a video.
func (r *Relay) Progress(videoID string, percentage int) {
	r.publish(Event{Kind: KindProgress, VideoID: videoID, Percentage: percentage})
}

// Completed relays a finished download and its file location.
func (r *Relay) Completed(videoID, filePath string) {
	r.publish(Event{Kind: KindCompleted, VideoID: videoID, Percentage: 100, FilePath: filePath})
}

// Failed relays a download failure message.
func (r *Relay) Failed(videoID, message string) {
	r.publish(Event{Kind: KindError, VideoID: videoID, Message: message})
}

// publish delivers e to every subscriber without blocking. Holding the lock
// for the whole fan-out keeps per-video ordering intact.
func (r *Relay) publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sub := range r.subs {
		select {
		case sub <- e:
		default:
			logging.D(2, "Dropped %s event for video %q: subscriber not keeping up", e.Kind, e.VideoID)
		}
	}
}
