package server

import (
	"context"
	"sync"
	"time"
)

const (
	RealtimeEventRecordChanged = "record-change"
	realtimeEventHeartbeat     = "heartbeat"
	realtimeSourceBackend      = "legalpro-backend"

	RealtimeActionCreated = "created"
	RealtimeActionUpdated = "updated"
	RealtimeActionDeleted = "deleted"
)

// RealtimeMessage announces that records of one resource changed for their owner.
type RealtimeMessage struct {
	UserID    string
	EventType string
	Resource  string
	Action    string
	RecordIDs []string
	Timestamp time.Time
}

type realtimePayload struct {
	Resource  string    `json:"resource"`
	Action    string    `json:"action"`
	RecordIDs []string  `json:"recordIds"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

func (m RealtimeMessage) payload() realtimePayload {
	return realtimePayload{
		Resource:  m.Resource,
		Action:    m.Action,
		RecordIDs: m.RecordIDs,
		Timestamp: m.Timestamp,
		Source:    realtimeSourceBackend,
	}
}

const realtimeBufferSize = 16

// RealtimeDispatcher fans record changes out to the owner's open event streams.
// Slow subscribers drop messages instead of blocking publishers.
type RealtimeDispatcher struct {
	mu       sync.RWMutex
	lastID   uint64
	byOwner  map[string]map[uint64]chan RealtimeMessage
	capacity int
}

func NewRealtimeDispatcher() *RealtimeDispatcher {
	return &RealtimeDispatcher{
		byOwner:  make(map[string]map[uint64]chan RealtimeMessage),
		capacity: realtimeBufferSize,
	}
}

// Subscribe opens a stream for userID. The stream is released when ctx ends or the
// returned cancel function is called, whichever happens first.
func (d *RealtimeDispatcher) Subscribe(ctx context.Context, userID string) (<-chan RealtimeMessage, func()) {
	if userID == "" {
		closed := make(chan RealtimeMessage)
		close(closed)
		return closed, func() {}
	}

	stream := make(chan RealtimeMessage, d.capacity)
	d.mu.Lock()
	d.lastID++
	id := d.lastID
	if d.byOwner[userID] == nil {
		d.byOwner[userID] = make(map[uint64]chan RealtimeMessage)
	}
	d.byOwner[userID][id] = stream
	d.mu.Unlock()

	var release sync.Once
	cancel := func() {
		release.Do(func() { d.drop(userID, id) })
	}
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return stream, cancel
}

// Publish delivers message to every open stream of its owner without blocking.
func (d *RealtimeDispatcher) Publish(message RealtimeMessage) {
	if message.UserID == "" || message.EventType == "" {
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, stream := range d.byOwner[message.UserID] {
		select {
		case stream <- message:
		default:
		}
	}
}

// SubscriberCount reports the open streams of one user.
func (d *RealtimeDispatcher) SubscriberCount(userID string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byOwner[userID])
}

func (d *RealtimeDispatcher) drop(userID string, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	streams := d.byOwner[userID]
	delete(streams, id)
	if len(streams) == 0 {
		delete(d.byOwner, userID)
	}
}
