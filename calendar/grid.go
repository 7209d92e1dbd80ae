package calendar

import "time"

// GridCells is the number of day cells in a month view: six Sunday-first weeks.
const GridCells = 42

// Day is one cell of the month grid
type Day struct {
	Date           time.Time `json:"date"`
	IsCurrentMonth bool      `json:"isCurrentMonth"`
	Events         []Event   `json:"events"`
}

// Month is a month view ready for display
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Days  []Day      `json:"days"`
}

// BuildMonthGrid lays events out on the 42-cell grid of ref's month, in ref's
// location. Cells before and after the month belong to the adjacent months.
func BuildMonthGrid(ref time.Time, events []Event) []Day {
	first := firstOfMonth(ref)
	start := first.AddDate(0, 0, -int(first.Weekday()))

	days := make([]Day, 0, GridCells)
	for i := 0; i < GridCells; i++ {
		date := start.AddDate(0, 0, i)
		days = append(days, Day{
			Date:           date,
			IsCurrentMonth: date.Year() == first.Year() && date.Month() == first.Month(),
			Events:         eventsOn(date, events),
		})
	}
	return days
}

// NewMonth builds the month view containing ref
func NewMonth(ref time.Time, events []Event) Month {
	return Month{
		Year:  ref.Year(),
		Month: ref.Month(),
		Days:  BuildMonthGrid(ref, events),
	}
}

// NextMonth returns day 1 of the month after ref's
func NextMonth(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month()+1, 1, 0, 0, 0, 0, ref.Location())
}

// PrevMonth returns day 1 of the month before ref's
func PrevMonth(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month()-1, 1, 0, 0, 0, 0, ref.Location())
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func eventsOn(date time.Time, events []Event) []Event {
	out := make([]Event, 0)
	for _, ev := range events {
		if sameDay(ev.Date.In(date.Location()), date) {
			out = append(out, ev)
		}
	}
	return out
}
