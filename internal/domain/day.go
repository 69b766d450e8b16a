package domain

import "time"

// Day is a date-only key for a DailyQuest. Keying by a plain date in one
// reference timezone avoids the midnight-timestamp drift bugs that come with
// range queries over local-midnight timestamps.
type Day struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// DayOf returns the calendar day containing t in the given location.
func DayOf(t time.Time, loc *time.Location) Day {
	y, m, d := t.In(loc).Date()
	return Day{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC of the day, the canonical value stored in the
// daily_quests DATE column.
func (d Day) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Prev returns the previous calendar day (for streak lookups).
func (d Day) Prev() Day {
	t := d.Time().AddDate(0, 0, -1)
	y, m, dd := t.Date()
	return Day{Year: y, Month: m, Day: dd}
}

func (d Day) String() string {
	return d.Time().Format("2006-01-02")
}

func (d Day) Equal(other Day) bool {
	return d == other
}
