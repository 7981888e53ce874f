package ledger

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	catalogx "github.com/example/tablebook/agent/catalog"
)

func testLedger(t *testing.T) *Ledger {
	t.Helper()

	db, err := OpenDB(filepath.Join(t.TempDir(), "bookings.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cat := catalogx.New([]catalogx.Restaurant{
		{ID: "r1", Name: "The Chef's Counter", Location: "Arts District", Tags: []string{"quiet"}, Capacity: 4},
		{ID: "r2", Name: "Harbor Catch", Location: "Waterfront", Tags: []string{"seafood"}, Capacity: 50},
	})

	led, err := New(context.Background(), db, cat)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return led
}

func TestCheckAvailabilityValidation(t *testing.T) {
	t.Parallel()

	led := testLedger(t)
	ctx := context.Background()

	cases := []struct {
		name         string
		restaurantID string
		date         string
		time         string
		partySize    int
	}{
		{"non-positive party size", "r1", "2026-09-01", "19:00", 0},
		{"unknown restaurant", "r9", "2026-09-01", "19:00", 2},
		{"party above total capacity", "r1", "2026-09-01", "19:00", 5},
		{"malformed time", "r1", "2026-09-01", "9:5", 2},
		{"out-of-range time", "r1", "2026-09-01", "24:00", 2},
		{"malformed date", "r1", "tomorrow", "19:00", 2},
	}
	for _, tc := range cases {
		avail, err := led.CheckAvailability(ctx, tc.restaurantID, tc.date, tc.time, tc.partySize)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if avail.Available {
			t.Fatalf("%s: expected structured refusal, got %+v", tc.name, avail)
		}
		if avail.Message == "" {
			t.Fatalf("%s: refusal must carry a message", tc.name)
		}
	}
}

func TestCheckAvailabilityFreshSlot(t *testing.T) {
	t.Parallel()

	led := testLedger(t)
	ctx := context.Background()

	avail, err := led.CheckAvailability(ctx, "r1", "2026-09-01", "19:00", 4)
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if !avail.Available || avail.AvailableCapacity != 4 {
		t.Fatalf("expected available with capacity 4, got %+v", avail)
	}
}

func TestCheckAvailabilityRoundsTime(t *testing.T) {
	t.Parallel()

	led := testLedger(t)
	ctx := context.Background()

	avail, err := led.CheckAvailability(ctx, "r1", "2026-09-01", "18:45", 2)
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if avail.Time != "19:00" {
		t.Fatalf("expected rounded time 19:00, got %q", avail.Time)
	}
}

func TestMakeReservationRequiresContact(t *testing.T) {
	t.Parallel()

	led := testLedger(t)
	ctx := context.Background()

	booking, err := led.MakeReservation(ctx, Request{
		RestaurantID: "r1", Date: "2026-09-01", Time: "19:00", PartySize: 2,
		UserName: "", UserPhone: "555-0100",
	})
	if err != nil {
		t.Fatalf("MakeReservation: %v", err)
	}
	if booking.Success {
		t.Fatalf("expected refusal for empty name, got %+v", booking)
	}
}

func TestBookingSequenceFillsSlot(t *testing.T) {
	t.Parallel()

	led := testLedger(t)
	ctx := context.Background()

	first, err := led.MakeReservation(ctx, Request{
		RestaurantID: "r1", Date: "2026-09-01", Time: "19:10", PartySize: 3,
		UserName: "Ana", UserPhone: "555-0101",
	})
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if !first.Success || first.ReservationID == "" || first.Time != "19:00" {
		t.Fatalf("unexpected first booking: %+v", first)
	}

	second, err := led.MakeReservation(ctx, Request{
		RestaurantID: "r1", Date: "2026-09-01", Time: "19:00", PartySize: 2,
		UserName: "Ben", UserPhone: "555-0102",
	})
	if err != nil {
		t.Fatalf("second booking: %v", err)
	}
	if second.Success {
		t.Fatalf("second booking must fail, slot has 1 seat left: %+v", second)
	}
	if want := "Sorry, we only have space for 1 more people at 19:00, not 2."; second.Message != want {
		t.Fatalf("unexpected message %q, want %q", second.Message, want)
	}

	third, err := led.MakeReservation(ctx, Request{
		RestaurantID: "r1", Date: "2026-09-01", Time: "19:00", PartySize: 1,
		UserName: "Cleo", UserPhone: "555-0103",
	})
	if err != nil {
		t.Fatalf("third booking: %v", err)
	}
	if !third.Success {
		t.Fatalf("third booking for the last seat must succeed: %+v", third)
	}

	full, err := led.CheckAvailability(ctx, "r1", "2026-09-01", "19:00", 1)
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if full.Available || full.AvailableCapacity != 0 {
		t.Fatalf("slot must be at full capacity: %+v", full)
	}

	// A different slot at the same restaurant is unaffected.
	other, err := led.CheckAvailability(ctx, "r1", "2026-09-01", "20:00", 4)
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if !other.Available {
		t.Fatalf("other slot must be free: %+v", other)
	}
}

func TestConcurrentBookingsNeverOverbook(t *testing.T) {
	t.Parallel()

	led := testLedger(t)
	ctx := context.Background()

	const attempts = 8 // twice the capacity

	var wg sync.WaitGroup
	results := make([]Booking, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			booking, err := led.MakeReservation(ctx, Request{
				RestaurantID: "r1", Date: "2026-09-02", Time: "20:00", PartySize: 1,
				UserName: "Guest", UserPhone: "555-0199",
			})
			if err != nil {
				t.Errorf("booking %d: %v", i, err)
				return
			}
			results[i] = booking
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, b := range results {
		if b.Success {
			successes++
		}
	}
	if successes != 4 {
		t.Fatalf("expected exactly 4 committed bookings for capacity 4, got %d", successes)
	}

	avail, err := led.CheckAvailability(ctx, "r1", "2026-09-02", "20:00", 1)
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if avail.Available || avail.AvailableCapacity != 0 {
		t.Fatalf("slot must be exactly full after the race: %+v", avail)
	}
}
