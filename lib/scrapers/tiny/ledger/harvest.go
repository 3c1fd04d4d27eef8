package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cutoff is the configured boundary date. Reservations dated on or
// before it qualify for deletion.
type Cutoff struct {
	Day   int
	Month int
	Year  int
}

// Boundary returns midnight of the day after the cutoff. A reservation
// qualifies when its timestamp is strictly before the boundary, which
// makes the cutoff day itself inclusive.
func (c Cutoff) Boundary() time.Time {
	return time.Date(c.Year, time.Month(c.Month), c.Day+1, 0, 0, 0, 0, time.Local)
}

// Reservation is a parsed ledger row. Reconstructed fresh on every page
// visit, never persisted.
type Reservation struct {
	Id       string
	Quantity float64
	RawDate  string
	Date     time.Time
}

// ParseRowDate parses the ledger's "DD/MM/YYYY - HH:MM" date cell. The
// time part is optional and defaults to midnight.
func ParseRowDate(text string) (time.Time, error) {
	parts := strings.SplitN(strings.TrimSpace(text), " - ", 2)
	datePart := strings.TrimSpace(parts[0])
	timePart := "00:00"
	if len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
		timePart = strings.TrimSpace(parts[1])
	}

	parsed, err := time.ParseInLocation("02/01/2006 15:04", datePart+" "+timePart, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse reservation date %q: %w", text, err)
	}
	return parsed, nil
}

// ParseQuantity parses the ledger's comma-decimal quantity cell, e.g.
// "3,5" or "1.234,56".
func ParseQuantity(text string) (float64, error) {
	normalized := strings.TrimSpace(text)
	if strings.Contains(normalized, ",") {
		normalized = strings.ReplaceAll(normalized, ".", "")
		normalized = strings.ReplaceAll(normalized, ",", ".")
	}

	quantity, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, fmt.Errorf("parse reservation quantity %q: %w", text, err)
	}
	return quantity, nil
}

// Harvest parses the rendered rows and keeps those dated on or before
// the cutoff. Rows without a selection checkbox are silently dropped
// since they cannot be acted on; malformed date or quantity text fails
// the whole harvest because it means the page markup no longer matches
// expectations.
func Harvest(rows []Row, cutoff Cutoff) ([]Reservation, error) {
	boundary := cutoff.Boundary()

	var eligible []Reservation
	for _, row := range rows {
		if row.SelectionID == "" {
			continue
		}

		date, err := ParseRowDate(row.DateText)
		if err != nil {
			return nil, err
		}
		quantity, err := ParseQuantity(row.QuantityText)
		if err != nil {
			return nil, err
		}

		if !date.Before(boundary) {
			continue
		}
		eligible = append(eligible, Reservation{
			Id:       row.SelectionID,
			Quantity: quantity,
			RawDate:  strings.TrimSpace(row.DateText),
			Date:     date,
		})
	}
	return eligible, nil
}
