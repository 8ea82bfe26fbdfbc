package activity

import (
	"encoding/json"
	"sync"
	"time"
)

// Repository stores activity events per device
type Repository interface {
	RecordEvent(deviceID string, eventType EventType, metadata EventMetadata) error
	GetEvents(deviceID string, since time.Time, eventTypes []EventType) ([]Event, error)
	Clear(deviceID string) error
}

// maxEventsPerDevice bounds the in-memory log; oldest entries drop first.
const maxEventsPerDevice = 500

// MemoryRepository stores events in memory
type MemoryRepository struct {
	mu       sync.RWMutex
	byDevice map[string][]Event
	nextID   int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byDevice: make(map[string][]Event),
		nextID:   1,
	}
}

func (r *MemoryRepository) RecordEvent(deviceID string, eventType EventType, metadata EventMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	event := Event{
		ID:        r.nextID,
		DeviceID:  deviceID,
		Type:      eventType,
		Timestamp: time.Now(),
		Metadata:  string(metadataJSON),
	}

	events := append(r.byDevice[deviceID], event)
	if len(events) > maxEventsPerDevice {
		events = events[len(events)-maxEventsPerDevice:]
	}
	r.byDevice[deviceID] = events
	r.nextID++

	return nil
}

func (r *MemoryRepository) GetEvents(deviceID string, since time.Time, eventTypes []EventType) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typeFilter := make(map[EventType]bool)
	for _, t := range eventTypes {
		typeFilter[t] = true
	}

	result := make([]Event, 0)
	for _, event := range r.byDevice[deviceID] {
		if event.Timestamp.Before(since) {
			continue
		}
		if len(eventTypes) > 0 && !typeFilter[event.Type] {
			continue
		}
		result = append(result, event)
	}

	return result, nil
}

func (r *MemoryRepository) Clear(deviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byDevice, deviceID)
	return nil
}
