package models

import "time"

// Event represents a batch of outcomes recorded for an organization
type Event struct {
	ID           int64
	Organization string
	Category     string
	Quantity     int64
	Timestamp    int64 // Unix seconds
}

// NewEvent creates a new Event with the current timestamp
func NewEvent(organization, category string, quantity int64) *Event {
	return &Event{
		Organization: organization,
		Category:     category,
		Quantity:     quantity,
		Timestamp:    time.Now().Unix(),
	}
}

// Bucket is one plotted point of a series: the summed quantity of all events
// whose timestamp falls in [Timestamp, Timestamp+interval)
type Bucket struct {
	Timestamp int64
	Count     int64
}

// Time returns the bucket start as a time.Time
func (b Bucket) Time() time.Time {
	return time.Unix(b.Timestamp, 0)
}
