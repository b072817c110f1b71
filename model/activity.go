package model

import (
	"encoding/json"
	"time"
)

// Activity is one immutable audit entry on a task.
type Activity struct {
	Type     ActivityType `json:"type"`
	Activity string       `json:"activity"`
	Date     time.Time    `json:"date"`
	By       string       `json:"by"`
}

// ActivityLog is the ordered audit trail of a task. Entries can only be appended.
type ActivityLog struct {
	entries []Activity
}

// NewActivityLog rebuilds a log from stored entries, oldest first.
func NewActivityLog(entries ...Activity) ActivityLog {
	return ActivityLog{entries: append([]Activity(nil), entries...)}
}

func (l *ActivityLog) Append(a Activity) {
	l.entries = append(l.entries, a)
}

func (l ActivityLog) Len() int { return len(l.entries) }

// Entries returns a copy of the log, oldest first.
func (l ActivityLog) Entries() []Activity {
	out := make([]Activity, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l ActivityLog) MarshalJSON() ([]byte, error) {
	if l.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.entries)
}

func (l *ActivityLog) UnmarshalJSON(data []byte) error {
	var entries []Activity
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	l.entries = entries
	return nil
}
