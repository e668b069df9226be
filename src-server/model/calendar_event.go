package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CalendarEvent is one scheduled item held by the event store.
//
// The store owns the ID; callers never set it. Start and End are kept in
// whatever serialized form they arrived in, see Moment.
type CalendarEvent struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Start  Moment `json:"start"`
	End    Moment `json:"end"`
	Color  string `json:"color"`
	AllDay bool   `json:"allDay,omitempty"`
}

// UnmarshalJSON is lenient. A field holding a value of the wrong type is left
// zero instead of failing the event, and anything but an object decodes to
// the zero event, so one damaged entry never costs the rest of a stored list.
func (e *CalendarEvent) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		*e = CalendarEvent{}
		return nil
	}

	var out CalendarEvent
	decodeField(fields, "id", &out.ID)
	decodeField(fields, "title", &out.Title)
	decodeField(fields, "start", &out.Start)
	decodeField(fields, "end", &out.End)
	decodeField(fields, "color", &out.Color)
	decodeField(fields, "allDay", &out.AllDay)
	*e = out
	return nil
}

func decodeField(fields map[string]json.RawMessage, name string, dst any) {
	raw, ok := fields[name]
	if !ok {
		return
	}
	// a mistyped value leaves dst untouched
	_ = json.Unmarshal(raw, dst)
}

// EventDraft is a CalendarEvent without its identity, the input of an add.
type EventDraft struct {
	Title  string `json:"title"`
	Start  Moment `json:"start"`
	End    Moment `json:"end"`
	Color  string `json:"color"`
	AllDay bool   `json:"allDay,omitempty"`
}

// WithID turns the draft into a full event.
func (d EventDraft) WithID(id string) CalendarEvent {
	return CalendarEvent{
		ID:     id,
		Title:  d.Title,
		Start:  d.Start,
		End:    d.End,
		Color:  d.Color,
		AllDay: d.AllDay,
	}
}

// EventPatch is a partial update. Nil fields keep the current value.
//
// There is no ID field: an event's identity can't be patched.
type EventPatch struct {
	Title  *string `json:"title,omitempty"`
	Start  *Moment `json:"start,omitempty"`
	End    *Moment `json:"end,omitempty"`
	Color  *string `json:"color,omitempty"`
	AllDay *bool   `json:"allDay,omitempty"`
}

// Apply returns a copy of e with the patch fields overlaid.
func (p EventPatch) Apply(e CalendarEvent) CalendarEvent {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Start != nil {
		e.Start = *p.Start
	}
	if p.End != nil {
		e.End = *p.End
	}
	if p.Color != nil {
		e.Color = *p.Color
	}
	if p.AllDay != nil {
		e.AllDay = *p.AllDay
	}
	return e
}

// IsEmpty reports whether the patch changes nothing.
func (p EventPatch) IsEmpty() bool {
	return p.Title == nil && p.Start == nil && p.End == nil && p.Color == nil && p.AllDay == nil
}

// Moment is a point in time as it is serialized: an ISO-8601 string.
//
// A native time.Time becomes a Moment through MomentOf, which formats it the
// way a date value is written to JSON, so both forms round-trip through
// storage unchanged.
type Moment string

// MomentOf formats t as RFC 3339 with sub-second precision when present.
func MomentOf(t time.Time) Moment {
	return Moment(t.Format(time.RFC3339Nano))
}

func (m Moment) String() string { return string(m) }

func (m Moment) IsZero() bool { return strings.TrimSpace(string(m)) == "" }

// layouts accepted by Time, most specific first; zone-less layouts are read
// in the caller's location
var momentLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Time parses the moment. Values without a zone offset are read in loc.
func (m Moment) Time(loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(string(m))
	if s == "" {
		return time.Time{}, fmt.Errorf("Moment.Time: empty value")
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range momentLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("Moment.Time: unrecognized format %q", s)
}

// UnmarshalJSON accepts a string, or a number taken as Unix milliseconds (a
// raw epoch date) which is normalized to RFC 3339 UTC.
func (m *Moment) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("Moment.UnmarshalJSON: %w", err)
		}
		*m = Moment(s)
		return nil
	}
	var millis json.Number
	if err := json.Unmarshal(data, &millis); err != nil {
		return fmt.Errorf("Moment.UnmarshalJSON: %w", err)
	}
	ms, err := millis.Int64()
	if err != nil {
		return fmt.Errorf("Moment.UnmarshalJSON: %w", err)
	}
	*m = MomentOf(time.UnixMilli(ms).UTC())
	return nil
}
