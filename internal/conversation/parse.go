package conversation

import (
	"strings"
	"time"
)

// reminderTimeLayout is the timestamp format expected for reminders.
const reminderTimeLayout = "2006-01-02_15:04"

type flightQuery struct {
	Origin      string
	Destination string
	Date        string
}

type hotelQuery struct {
	City     string
	CheckIn  string
	CheckOut string
}

type reminderQuery struct {
	FireAt  time.Time
	Message string
}

// parseFlightQuery expects exactly three whitespace-separated tokens:
// origin, destination, date.
func parseFlightQuery(text string) (flightQuery, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return flightQuery{}, &FormatError{Action: ActionFlight, Hint: "ORIGIN DESTINATION DATE"}
	}
	return flightQuery{Origin: fields[0], Destination: fields[1], Date: fields[2]}, nil
}

// parseHotelQuery expects exactly three tokens: city, check-in, check-out.
func parseHotelQuery(text string) (hotelQuery, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return hotelQuery{}, &FormatError{Action: ActionHotel, Hint: "CITY CHECKIN CHECKOUT"}
	}
	return hotelQuery{City: fields[0], CheckIn: fields[1], CheckOut: fields[2]}, nil
}

// parseRouteQuery splits on whitespace and requires at least two cities.
func parseRouteQuery(text string) ([]string, error) {
	cities := strings.Fields(text)
	if len(cities) < 2 {
		return nil, &FormatError{Action: ActionRoute, Hint: "at least 2 cities"}
	}
	return cities, nil
}

// parseReminderQuery splits the input at the first whitespace into a
// YYYY-MM-DD_HH:MM timestamp and a free-text remainder.
func parseReminderQuery(text string) (reminderQuery, error) {
	trimmed := strings.TrimSpace(text)
	idx := strings.IndexAny(trimmed, " \t")
	if idx < 0 {
		return reminderQuery{}, &FormatError{Action: ActionRemind, Hint: "YYYY-MM-DD_HH:MM MESSAGE"}
	}
	message := strings.TrimSpace(trimmed[idx+1:])
	if message == "" {
		return reminderQuery{}, &FormatError{Action: ActionRemind, Hint: "YYYY-MM-DD_HH:MM MESSAGE"}
	}
	fireAt, err := time.ParseInLocation(reminderTimeLayout, trimmed[:idx], time.Local)
	if err != nil {
		return reminderQuery{}, &FormatError{Action: ActionRemind, Hint: "YYYY-MM-DD_HH:MM MESSAGE"}
	}
	return reminderQuery{FireAt: fireAt, Message: message}, nil
}
