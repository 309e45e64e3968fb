package domain

import (
	"fmt"
	"time"
)

const (
	LocaleRussian = "ru"
	LocaleEnglish = "en"

	DefaultLocale = LocaleRussian
)

// DateStyle picks the layout FormatDate produces.
type DateStyle int

const (
	// DateNumeric is DD.MM.YYYY for Russian and YYYY-MM-DD otherwise.
	DateNumeric DateStyle = iota
	// DateLong spells the month: "2 янв. 2020", "Jan 2, 2020".
	DateLong
)

var monthsShortRU = [12]string{
	"янв.", "февр.", "март", "апр.", "май", "июнь",
	"июль", "авг.", "сент.", "окт.", "нояб.", "дек.",
}

// MonthShort returns the abbreviated month name in locale.
func MonthShort(m time.Month, locale string) string {
	if m < time.January || m > time.December {
		return ""
	}
	if locale == LocaleEnglish {
		return m.String()[:3]
	}
	return monthsShortRU[m-1]
}

// FormatDate renders d for display in locale.
func FormatDate(d Date, style DateStyle, locale string) string {
	switch style {
	case DateLong:
		if locale == LocaleEnglish {
			return fmt.Sprintf("%s %d, %d", MonthShort(d.Month, locale), d.Day, d.Year)
		}
		return fmt.Sprintf("%d %s %d", d.Day, MonthShort(d.Month, locale), d.Year)
	default:
		if locale == LocaleEnglish {
			return d.String()
		}
		return fmt.Sprintf("%02d.%02d.%04d", d.Day, int(d.Month), d.Year)
	}
}

// FormatTimestamp renders a wall-clock instant in loc for locale, e.g.
// "05.03.2021, 14:07:09".
func FormatTimestamp(t time.Time, loc *time.Location, locale string) string {
	if t.IsZero() {
		return "—"
	}
	if loc != nil {
		t = t.In(loc)
	}
	if locale == LocaleEnglish {
		return t.Format("2006-01-02 15:04:05")
	}
	return t.Format("02.01.2006, 15:04:05")
}
