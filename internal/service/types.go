package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Task is a server-owned task. The client never mutates one in place.
type Task struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description"`
	PriorityScore float64   `json:"priority_score"`
	CreatedAt     Timestamp `json:"created_at"`
}

// HasDescription reports whether the task carries a non-null description.
func (t Task) HasDescription() bool {
	return t.Description != nil
}

// NewTask is the body of a create request. A nil Description is sent as null.
type NewTask struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// Timestamp decodes the server's created_at, which is RFC 3339 when the
// database keeps the zone and a naive local form when it does not.
// Naive values are taken as UTC.
type Timestamp struct {
	time.Time
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}

	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	for _, layout := range naiveLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}
