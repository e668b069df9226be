// Package ical renders the event list as an iCalendar (RFC 5545) feed so
// other calendar apps can subscribe to it.
package ical

import (
	"fmt"
	"joincal/src-server/model"
	"log/slog"
	"time"

	ics "github.com/arran4/golang-ical"
)

const (
	DefaultProdID = "-//joincal//calendar events//EN"
	DefaultName   = "joincal"

	// RFC 7986
	propertyColor = ics.ComponentProperty("COLOR")
)

// Render builds one VEVENT per event. Zone-less moments are read in loc.
// Events whose start can't be parsed are skipped.
func Render(events []model.CalendarEvent, prodID string, loc *time.Location) string {
	if prodID == "" {
		prodID = DefaultProdID
	}
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(prodID)
	cal.SetName(DefaultName)

	stamp := time.Now().UTC()
	for _, e := range events {
		if err := addEvent(cal, e, stamp, loc); err != nil {
			slog.Warn("skipping event in ical feed", "id", e.ID, "error", err)
		}
	}
	return cal.Serialize()
}

func addEvent(cal *ics.Calendar, e model.CalendarEvent, stamp time.Time, loc *time.Location) error {
	start, err := e.Start.Time(loc)
	if err != nil {
		return fmt.Errorf("addEvent: start: %w", err)
	}
	end, err := e.End.Time(loc)
	if err != nil {
		slog.Debug("event end unreadable, using start", "id", e.ID, "error", err)
		end = start
	}

	vevent := cal.AddEvent(e.ID)
	vevent.SetDtStampTime(stamp)
	vevent.SetSummary(e.Title)
	if e.Color != "" {
		vevent.SetProperty(propertyColor, e.Color)
	}

	if e.AllDay {
		start = start.In(loc)
		end = end.In(loc)
		// DTEND of an all-day event is exclusive
		if !end.After(start) {
			end = start.AddDate(0, 0, 1)
		}
		vevent.SetAllDayStartAt(start)
		vevent.SetAllDayEndAt(end)
		return nil
	}
	vevent.SetStartAt(start)
	vevent.SetEndAt(end)
	return nil
}
