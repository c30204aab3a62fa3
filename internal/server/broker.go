package server

import (
	"encoding/json"
	"sync"
)

const (
	EventRatingCreated = "rating.created"
	EventRatingUpdated = "rating.updated"
	EventRatingDeleted = "rating.deleted"
)

// RatingEvent is published whenever a venue's ratings change. AvgRating and
// ReviewCount are the venue's aggregates after the change.
type RatingEvent struct {
	Type        string  `json:"type"`
	VenueID     int64   `json:"venueId"`
	RatingID    int64   `json:"ratingId"`
	Username    string  `json:"username,omitempty"`
	Rating      int     `json:"rating,omitempty"`
	AvgRating   float64 `json:"avgRating"`
	ReviewCount int     `json:"reviewCount"`
}

// allVenues subscribes to every venue's events.
const allVenues int64 = 0

// Broker is an in-process pub/sub for rating events, keyed by venue ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[int64]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[int64]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the
// venue, or for every venue when venueID is allVenues.
func (b *Broker) Subscribe(venueID int64) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[venueID] == nil {
		b.subs[venueID] = make(map[chan []byte]struct{})
	}
	b.subs[venueID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(venueID int64, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[venueID], ch)
	if len(b.subs[venueID]) == 0 {
		delete(b.subs, venueID)
	}
	b.mu.Unlock()
}

func (b *Broker) Publish(event RatingEvent) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, key := range []int64{event.VenueID, allVenues} {
		for ch := range b.subs[key] {
			select {
			case ch <- data:
			default:
				// Drop if subscriber is slow.
			}
		}
	}
}
