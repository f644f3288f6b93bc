package stats

import "time"

// Calendar maps timestamps onto calendar days, weeks and months.
type Calendar struct {
	Location  *time.Location
	WeekStart time.Weekday
}

func (c Calendar) loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// Day returns local midnight of the day containing t.
func (c Calendar) Day(t time.Time) time.Time {
	y, m, d := t.In(c.loc()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc())
}

// AddDays moves a day by n calendar days. DST-safe, unlike adding 24h.
func (c Calendar) AddDays(day time.Time, n int) time.Time {
	y, m, d := day.In(c.loc()).Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, c.loc())
}

// WeekOf returns the first day of the week containing t.
func (c Calendar) WeekOf(t time.Time) time.Time {
	day := c.Day(t)
	offset := (int(day.Weekday()) - int(c.WeekStart) + 7) % 7
	return c.AddDays(day, -offset)
}

// MonthOf returns the first day of the month containing t.
func (c Calendar) MonthOf(t time.Time) time.Time {
	y, m, _ := t.In(c.loc()).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, c.loc())
}

// AddMonths moves a month start by n months.
func (c Calendar) AddMonths(month time.Time, n int) time.Time {
	y, m, _ := month.In(c.loc()).Date()
	return time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, c.loc())
}

func dayKey(day time.Time) int64 {
	return day.Unix()
}
