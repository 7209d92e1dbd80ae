package calendar

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
)

// icsEventDuration is the block length given to events in calendar feeds
const icsEventDuration = time.Hour

// ExportICS serializes events as an iCalendar feed. The event id is used as the
// UID so subscribed calendars update entries in place.
func ExportICS(events []Event, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//tailorworks//alterations calendar//EN")

	for _, ev := range events {
		vevent := cal.AddEvent(ev.ID)
		vevent.SetDtStampTime(now)
		vevent.SetStartAt(ev.Date)
		vevent.SetEndAt(ev.Date.Add(icsEventDuration))
		vevent.SetSummary(ev.Title)
		vevent.SetDescription(fmt.Sprintf("%s for order %s (%s)", ev.Type, ev.OrderID, ev.Status))
	}

	return cal.Serialize()
}
