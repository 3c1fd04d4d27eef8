package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseRowDate(t *testing.T) {
	parsed, err := ParseRowDate("05/06/2024 - 14:30")
	require.NoError(t, err)
	require.Equal(t, 2024, parsed.Year())
	require.Equal(t, time.June, parsed.Month())
	require.Equal(t, 5, parsed.Day())
	require.Equal(t, 14, parsed.Hour())
	require.Equal(t, 30, parsed.Minute())
}

func TestParseRowDateTimeOptional(t *testing.T) {
	parsed, err := ParseRowDate("05/06/2024")
	require.NoError(t, err)
	require.Equal(t, 5, parsed.Day())
	require.Equal(t, 0, parsed.Hour())
	require.Equal(t, 0, parsed.Minute())
}

func TestParseRowDateMalformed(t *testing.T) {
	_, err := ParseRowDate("2024-06-05")
	require.Error(t, err)
	_, err = ParseRowDate("")
	require.Error(t, err)
}

func TestParseQuantity(t *testing.T) {
	for text, want := range map[string]float64{
		"3,5":      3.5,
		"1.234,56": 1234.56,
		"10":       10,
		"0,001":    0.001,
	} {
		got, err := ParseQuantity(text)
		require.NoError(t, err, text)
		require.InDelta(t, want, got, 1e-9, text)
	}
}

func TestParseQuantityMalformed(t *testing.T) {
	_, err := ParseQuantity("dez")
	require.Error(t, err)
}

func TestCutoffBoundaryIsInclusiveOfTheCutoffDay(t *testing.T) {
	cutoff := Cutoff{Day: 10, Month: 6, Year: 2024}

	rows := []Row{
		{SelectionID: "a", DateText: "10/06/2024 - 23:59", QuantityText: "1"},
		{SelectionID: "b", DateText: "11/06/2024 - 00:00", QuantityText: "1"},
		{SelectionID: "c", DateText: "09/06/2024 - 08:00", QuantityText: "1"},
	}

	eligible, err := Harvest(rows, cutoff)
	require.NoError(t, err)
	require.Len(t, eligible, 2)
	require.Equal(t, "a", eligible[0].Id)
	require.Equal(t, "c", eligible[1].Id)
}

func TestCutoffMonthRollover(t *testing.T) {
	// day+1 on the last day of the month must normalize into the next
	// month, not produce an invalid date
	cutoff := Cutoff{Day: 31, Month: 1, Year: 2024}
	boundary := cutoff.Boundary()
	require.Equal(t, time.February, boundary.Month())
	require.Equal(t, 1, boundary.Day())
}

func TestHarvestSkipsRowsWithoutCheckbox(t *testing.T) {
	rows := []Row{
		{SelectionID: "", DateText: "01/01/2020 - 10:00", QuantityText: "2,5"},
		{SelectionID: "77", DateText: "01/01/2020 - 10:00", QuantityText: "2,5"},
	}

	eligible, err := Harvest(rows, Cutoff{Day: 1, Month: 1, Year: 2024})
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	require.Equal(t, "77", eligible[0].Id)
	require.InDelta(t, 2.5, eligible[0].Quantity, 1e-9)
	require.Equal(t, "01/01/2020 - 10:00", eligible[0].RawDate)
}

func TestHarvestMalformedDateIsFatal(t *testing.T) {
	rows := []Row{
		{SelectionID: "1", DateText: "segunda-feira", QuantityText: "1"},
	}
	_, err := Harvest(rows, Cutoff{Day: 1, Month: 1, Year: 2024})
	require.Error(t, err)
}

func TestHarvestMalformedQuantityIsFatal(t *testing.T) {
	rows := []Row{
		{SelectionID: "1", DateText: "01/01/2020", QuantityText: "??"},
	}
	_, err := Harvest(rows, Cutoff{Day: 1, Month: 1, Year: 2024})
	require.Error(t, err)
}
