package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/eshaffer321/travel-reconcile/internal/domain/records"
)

// LoadBookings reads a JSON array of booking records from path
func LoadBookings(path string) ([]records.BookingRecord, error) {
	var bookings []records.BookingRecord
	if err := readJSONArray(path, &bookings); err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	return bookings, nil
}

// LoadExpenses reads a JSON array of expense records from path
func LoadExpenses(path string) ([]records.ExpenseRecord, error) {
	var expenses []records.ExpenseRecord
	if err := readJSONArray(path, &expenses); err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	return expenses, nil
}

func readJSONArray(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return decodeJSON(f, v)
}

func decodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after the array")
	}
	return nil
}
