package entity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// bookingIDPattern is tried before the generic alphanumeric patterns
// because "ORD" + 8 alphanumerics is unambiguous; a looser pattern
// tried first would shadow it (§9's extraction precedence note).
var bookingIDPattern = regexp.MustCompile(`\bORD[A-Z0-9]{8}\b`)

var pincodePattern = regexp.MustCompile(`\b\d{6}\b`)

var isoDatePattern = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
var slashDatePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)

var weekdayPattern = regexp.MustCompile(`(?i)\b(next\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
var relativeDatePattern = regexp.MustCompile(`(?i)\b(today|tomorrow|day after tomorrow)\b`)

var time24Pattern = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
var time12Pattern = regexp.MustCompile(`(?i)\b(1[0-2]|0?[1-9])(:([0-5]\d))?\s*(am|pm)\b`)

var actionVerbPattern = regexp.MustCompile(`(?i)\b(book|cancel|reschedule)\b`)

var weekdayIndex = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
}

// ExtractBookingID returns the first ORD-prefixed booking id in text.
func ExtractBookingID(text string) (string, bool) {
	m := bookingIDPattern.FindString(text)
	return m, m != ""
}

// ExtractPincode returns the first 6-digit pincode-shaped token.
func ExtractPincode(text string) (string, bool) {
	m := pincodePattern.FindString(text)
	return m, m != ""
}

// ExtractActionVerb returns the first book/cancel/reschedule verb found.
func ExtractActionVerb(text string) (string, bool) {
	m := actionVerbPattern.FindString(text)
	if m == "" {
		return "", false
	}
	return strings.ToLower(m), true
}

// ExtractDate tries ISO, slash, weekday, and relative-date forms in
// that order and normalizes to YYYY-MM-DD relative to now.
func ExtractDate(text string, now time.Time) (raw, normalized string, ok bool) {
	if m := isoDatePattern.FindString(text); m != "" {
		return m, m, true
	}
	if m := slashDatePattern.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
		return m[0], d.Format("2006-01-02"), true
	}
	if m := relativeDatePattern.FindString(text); m != "" {
		lower := strings.ToLower(m)
		var d time.Time
		switch lower {
		case "today":
			d = now
		case "tomorrow":
			d = now.AddDate(0, 0, 1)
		case "day after tomorrow":
			d = now.AddDate(0, 0, 2)
		}
		return m, d.Format("2006-01-02"), true
	}
	if m := weekdayPattern.FindStringSubmatch(text); m != nil {
		target := weekdayIndex[strings.ToLower(m[2])]
		next := m[1] != ""
		d := nextWeekday(now, target, next)
		return m[0], d.Format("2006-01-02"), true
	}
	return "", "", false
}

func nextWeekday(now time.Time, target time.Weekday, forceNextWeek bool) time.Time {
	daysAhead := (int(target) - int(now.Weekday()) + 7) % 7
	if daysAhead == 0 {
		daysAhead = 7
	}
	if forceNextWeek {
		daysAhead += 7
	}
	return now.AddDate(0, 0, daysAhead)
}

// ExtractTime tries 24h then 12h am/pm forms, normalizing to HH:MM.
func ExtractTime(text string) (raw, normalized string, ok bool) {
	if m := time24Pattern.FindString(text); m != "" {
		return m, m, true
	}
	if m := time12Pattern.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[3] != "" {
			minute, _ = strconv.Atoi(m[3])
		}
		if strings.EqualFold(m[4], "pm") && hour != 12 {
			hour += 12
		}
		if strings.EqualFold(m[4], "am") && hour == 12 {
			hour = 0
		}
		return m[0], fmt.Sprintf("%02d:%02d", hour, minute), true
	}
	return "", "", false
}

// ExtractDateTime is the combined recognizer tried first when both a
// date and a time are expected (§4.7 step 1).
func ExtractDateTime(text string, now time.Time) (date, timeStr string, ok bool) {
	_, normDate, dateOK := ExtractDate(text, now)
	_, normTime, timeOK := ExtractTime(text)
	if dateOK && timeOK {
		return normDate, normTime, true
	}
	return "", "", false
}
