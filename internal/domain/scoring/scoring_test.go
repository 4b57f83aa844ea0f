package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/travel-reconcile/internal/domain/records"
)

// Helper to check for a reason by prefix
func hasReason(s Score, prefix string) bool {
	for _, r := range s.Reasons {
		if strings.HasPrefix(r, prefix) {
			return true
		}
	}
	return false
}

func deltaBooking() records.BookingRecord {
	return records.BookingRecord{
		ID:        "B1",
		CardLast4: "1234",
		Merchant:  "Delta Air Lines",
		Amount:    records.Amount(450.75),
		Currency:  "USD",
	}
}

func deltaExpense() records.ExpenseRecord {
	return records.ExpenseRecord{
		ID:          "E1",
		CardLast4:   "1234",
		Vendor:      "Delta Airlines",
		Amount:      records.Amount(450.75),
		Description: "Flight DL1234 SFO-JFK",
	}
}

func TestFlight_DeltaScenario(t *testing.T) {
	for _, strategy := range []Strategy{NewFlight(), NewAuto(), NewStrictFlight()} {
		t.Run(strategy.Name(), func(t *testing.T) {
			score := strategy.Score(deltaBooking(), deltaExpense())

			assert.GreaterOrEqual(t, score.Value, 0.9)
			assert.True(t, hasReason(score, "Card last 4 match"), score.Reasons)
			assert.True(t, hasReason(score, "Carrier code match: DL"), score.Reasons)
		})
	}
}

func TestFlight_CardMismatch_PolicyDivergence(t *testing.T) {
	matching := NewFlight().Score(deltaBooking(), deltaExpense())

	expense := deltaExpense()
	expense.CardLast4 = "9999"

	t.Run("strict gate scores zero", func(t *testing.T) {
		score := NewStrictFlight().Score(deltaBooking(), expense)
		assert.Equal(t, 0.0, score.Value)
		assert.True(t, hasReason(score, "Card mismatch"))
	})

	t.Run("weighted flight keeps partial credit", func(t *testing.T) {
		score := NewFlight().Score(deltaBooking(), expense)
		assert.Less(t, score.Value, matching.Value)
		assert.Greater(t, score.Value, 0.0)
		assert.False(t, hasReason(score, "Card last 4 match"))
	})
}

func TestStrictFlight_CardGate(t *testing.T) {
	strict := NewStrictFlight()
	cards := []string{"1234", "9876", "**** 5555", "4111111111110001"}

	for _, bc := range cards {
		for _, ec := range cards {
			b := deltaBooking()
			b.CardLast4 = bc
			e := deltaExpense()
			e.CardLast4 = ec

			score := strict.Score(b, e)
			if records.NormalizeCardLast4(bc) != records.NormalizeCardLast4(ec) {
				assert.Equal(t, 0.0, score.Value, "%s vs %s", bc, ec)
			} else {
				assert.Greater(t, score.Value, 0.0, "%s vs %s", bc, ec)
			}
		}
	}

	t.Run("unknown card fails the gate", func(t *testing.T) {
		b := deltaBooking()
		b.CardLast4 = ""
		assert.Equal(t, 0.0, strict.Score(b, deltaExpense()).Value)
	})
}

func TestGeneric_DeltaScenario(t *testing.T) {
	score := NewGeneric().Score(deltaBooking(), deltaExpense())

	// card 20 + amount 15 + vendor 10*0.93 over 45
	assert.InDelta(t, 0.99, score.Value, 0.001)
	assert.True(t, hasReason(score, "Card last 4 match"))
	assert.True(t, hasReason(score, "Amount match"))
	assert.True(t, hasReason(score, "Vendor match"))
}

func TestGeneric_AllCriteria(t *testing.T) {
	b := records.BookingRecord{
		ID:               "B1",
		TravelerName:     "Jane Doe",
		Merchant:         "Hilton Chicago",
		Origin:           "Chicago",
		Destination:      "Chicago",
		CardLast4:        "4242",
		Amount:           records.Amount(612.40),
		BookingDate:      records.NewDate(2025, 4, 1),
		DepartureDate:    records.NewDate(2025, 4, 14),
		BookingReference: "HX55120",
		Category:         records.CategoryHotel,
	}
	e := records.ExpenseRecord{
		ID:           "E1",
		EmployeeName: "Jane Doe",
		Vendor:       "Hilton",
		Description:  "Hotel folio HX55120",
		Amount:       records.Amount(612.40),
		CardLast4:    "4242",
		ExpenseDate:  records.NewDate(2025, 4, 15),
		Origin:       "Chicago",
		Destination:  "Chicago",
	}

	score := NewGeneric().Score(b, e)

	assert.True(t, hasReason(score, "Booking reference found"))
	assert.True(t, hasReason(score, "Date proximity: 1 day apart"))
	assert.True(t, hasReason(score, "Origin match"))
	assert.True(t, hasReason(score, "Destination match"))
	assert.GreaterOrEqual(t, score.Value, 0.9)
	assert.LessOrEqual(t, score.Value, 1.0)
}

func TestMissingFieldNeutrality(t *testing.T) {
	full := records.BookingRecord{
		ID:                      "B1",
		TravelerName:            "Jane Doe",
		Merchant:                "United Airlines",
		Origin:                  "ORD",
		Destination:             "LAX",
		CardLast4:               "4242",
		Currency:                "USD",
		Amount:                  records.Amount(380),
		ExpectedTransactionTime: records.NewDate(2025, 5, 2),
		BookingDate:             records.NewDate(2025, 5, 1),
		BookingReference:        "UA1120",
		Category:                records.CategoryFlight,
	}
	expense := records.ExpenseRecord{
		ID:           "E1",
		EmployeeName: "Jane Doe",
		Vendor:       "United",
		Description:  "UA1120 ORD/LAX",
		Amount:       records.Amount(380),
		Currency:     "USD",
		CardLast4:    "4242",
		ExpenseDate:  records.NewDate(2025, 5, 3),
		Origin:       "ORD",
		Destination:  "LAX",
	}

	// Each case blanks a field on the booking, then also on the expense.
	// Absent on one side must behave exactly like absent on both.
	cases := []struct {
		name    string
		reason  string
		booking func(*records.BookingRecord)
		expense func(*records.ExpenseRecord)
	}{
		{"card", "Card last 4", func(b *records.BookingRecord) { b.CardLast4 = "" }, func(e *records.ExpenseRecord) { e.CardLast4 = "" }},
		{"name", "Traveler name", func(b *records.BookingRecord) { b.TravelerName = "" }, func(e *records.ExpenseRecord) { e.EmployeeName = "" }},
		{"amount", "Amount", func(b *records.BookingRecord) { b.Amount.Valid = false }, func(e *records.ExpenseRecord) { e.Amount.Valid = false }},
		{"currency", "Currency", func(b *records.BookingRecord) { b.Currency = "" }, func(e *records.ExpenseRecord) { e.Currency = "" }},
		{"reference", "Booking reference", func(b *records.BookingRecord) { b.BookingReference = "" }, func(e *records.ExpenseRecord) { e.Description = "" }},
		{"card sentinel", "Card last 4", func(b *records.BookingRecord) { b.CardLast4 = "0000" }, func(e *records.ExpenseRecord) { e.CardLast4 = "" }},
	}

	strategies := []Strategy{NewGeneric(), NewFlight(), NewAuto()}

	for _, tc := range cases {
		for _, strategy := range strategies {
			t.Run(tc.name+"/"+strategy.Name(), func(t *testing.T) {
				b := full
				tc.booking(&b)
				oneSided := strategy.Score(b, expense)

				e := expense
				tc.expense(&e)
				bothSided := strategy.Score(b, e)

				assert.Equal(t, bothSided.Value, oneSided.Value)
				assert.False(t, hasReason(oneSided, tc.reason), oneSided.Reasons)
			})
		}
	}
}

func TestScoreBounds(t *testing.T) {
	bookings := []records.BookingRecord{
		{},
		deltaBooking(),
		{ID: "B2", Merchant: "Hertz", Amount: records.Amount(99.99), CardLast4: "1111", Category: records.CategoryCar},
		{ID: "B3", Origin: "SFO", Destination: "JFK", BookingReference: "DL555", TravelerName: "Sam Lee"},
	}
	expenses := []records.ExpenseRecord{
		{},
		deltaExpense(),
		{ID: "E2", Vendor: "Hertz Rent A Car", Amount: records.Amount(1), CardLast4: "1111"},
		{ID: "E3", Description: "DL 555 SFO-JFK", EmployeeName: "Lee Sam", Amount: records.Amount(-250)},
	}

	for _, strategy := range []Strategy{NewGeneric(), NewFlight(), NewStrictFlight(), NewAuto()} {
		for _, b := range bookings {
			for _, e := range expenses {
				v := strategy.Score(b, e).Value
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
			}
		}
	}
}

func TestEmptyRecords_ScoreZero(t *testing.T) {
	score := NewGeneric().Score(records.BookingRecord{}, records.ExpenseRecord{})
	assert.Equal(t, 0.0, score.Value)
	assert.Empty(t, score.Reasons)
}

func TestFlight_AmbiguousClassificationPenalty(t *testing.T) {
	b := records.BookingRecord{ID: "B1", CardLast4: "1234", Amount: records.Amount(200), Category: records.CategoryHotel}
	e := records.ExpenseRecord{ID: "E1", CardLast4: "1234", Amount: records.Amount(200), Vendor: "Marriott"}

	require.False(t, IsFlightCandidate(b, e))
	score := NewFlight().Score(b, e)

	assert.Equal(t, 0.7, score.Value)
	assert.True(t, hasReason(score, "Ambiguous flight classification"))
}

func TestFlight_PartialPayment(t *testing.T) {
	b := deltaBooking()
	b.Amount = records.Amount(900)
	e := deltaExpense()
	e.Amount = records.Amount(450)

	score := NewFlight().Score(b, e)
	assert.True(t, hasReason(score, "Partial payment"), score.Reasons)
}

func TestFlight_ReferenceEvidence(t *testing.T) {
	b := deltaBooking()
	b.BookingReference = "DL 1234"

	t.Run("reference substring", func(t *testing.T) {
		score := NewFlight().Score(b, deltaExpense())
		assert.True(t, hasReason(score, "Booking reference found"), score.Reasons)
	})

	t.Run("partial token match", func(t *testing.T) {
		b := deltaBooking()
		b.BookingReference = "QX7PLM"
		e := deltaExpense()
		e.Description = "Airfare conf QX7PLN"

		score := NewFlight().Score(b, e)
		assert.True(t, hasReason(score, "Partial reference match"), score.Reasons)
	})

	t.Run("no overlap contributes nothing", func(t *testing.T) {
		b := deltaBooking()
		b.BookingReference = "ZZTOP9"
		withRef := NewFlight().Score(b, deltaExpense())
		without := NewFlight().Score(deltaBooking(), deltaExpense())

		assert.Less(t, withRef.Value, without.Value, "an applicable miss raises the maximum")
		assert.False(t, hasReason(withRef, "Booking reference"))
	})
}

func TestFlight_RouteFromDescription(t *testing.T) {
	b := deltaBooking()
	b.Origin = "SFO"
	b.Destination = "JFK"

	score := NewFlight().Score(b, deltaExpense())
	assert.True(t, hasReason(score, "Route match: SFO -> JFK"), score.Reasons)
}

func TestIsFlightCandidate(t *testing.T) {
	e := records.ExpenseRecord{}

	assert.True(t, IsFlightCandidate(records.BookingRecord{Category: records.CategoryFlight}, e))
	assert.True(t, IsFlightCandidate(records.BookingRecord{TravelType: "Air travel"}, e))
	assert.True(t, IsFlightCandidate(records.BookingRecord{TravelType: "flights"}, e))
	assert.True(t, IsFlightCandidate(records.BookingRecord{Merchant: "Lufthansa"}, e))
	assert.True(t, IsFlightCandidate(records.BookingRecord{}, records.ExpenseRecord{Vendor: "Acme Airways"}))
	assert.True(t, IsFlightCandidate(records.BookingRecord{Origin: "SFO", Destination: "JFK"}, e))
	assert.False(t, IsFlightCandidate(records.BookingRecord{Origin: "SFO"}, e))
	assert.False(t, IsFlightCandidate(records.BookingRecord{Merchant: "Hyatt", TravelType: "repair"}, e))
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		s, err := ByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())
	}

	s, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, NameAuto, s.Name())

	_, err = ByName("optimal")
	require.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestAuto_RoutesByClassification(t *testing.T) {
	auto := NewAuto()

	flightScore := auto.Score(deltaBooking(), deltaExpense())
	assert.Equal(t, NewFlight().Score(deltaBooking(), deltaExpense()), flightScore)

	hotel := records.BookingRecord{ID: "H1", Merchant: "Hyatt", CardLast4: "1234", Amount: records.Amount(300), Category: records.CategoryHotel}
	expense := records.ExpenseRecord{ID: "E9", Vendor: "Hyatt Regency", CardLast4: "1234", Amount: records.Amount(300)}
	assert.Equal(t, NewGeneric().Score(hotel, expense), auto.Score(hotel, expense))

	// a hotel chain named after an airline is not a flight
	deltaHotel := records.BookingRecord{ID: "H2", Merchant: "Delta Hotels Montreal", CardLast4: "1234", Amount: records.Amount(220)}
	deltaStay := records.ExpenseRecord{ID: "E10", Vendor: "Delta Hotels", CardLast4: "1234", Amount: records.Amount(220)}
	assert.False(t, IsFlightCandidate(deltaHotel, deltaStay))
	score := auto.Score(deltaHotel, deltaStay)
	assert.Equal(t, NewGeneric().Score(deltaHotel, deltaStay), score)
	assert.False(t, hasReason(score, "Carrier code match"), score.Reasons)
}
