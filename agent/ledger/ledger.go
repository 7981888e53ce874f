// Package ledger is the durable reservation store. It owns the capacity
// invariant: the committed party sizes for one (restaurant, date, hour)
// slot never exceed the restaurant's seating capacity, including under
// concurrent booking attempts.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	catalogx "github.com/example/tablebook/agent/catalog"
	slotx "github.com/example/tablebook/agent/slot"
)

// Reservation is one committed booking row. Never mutated or deleted.
type Reservation struct {
	bun.BaseModel `bun:"table:reservations"`

	ID           int64     `bun:"id,pk,autoincrement"`
	RestaurantID string    `bun:"restaurant_id,notnull"`
	BookingDate  string    `bun:"booking_date,notnull"`
	BookingTime  string    `bun:"booking_time,notnull"`
	PartySize    int       `bun:"party_size,notnull"`
	UserName     string    `bun:"user_name,notnull"`
	UserPhone    string    `bun:"user_phone,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull,nullzero,default:current_timestamp"`
}

// Availability reports whether a slot can take a party. A false
// Available with a Message is a structured refusal, not an error.
type Availability struct {
	Available          bool   `json:"available"`
	RestaurantID       string `json:"restaurant_id"`
	Date               string `json:"date"`
	Time               string `json:"time"`
	PartySize          int    `json:"party_size"`
	RestaurantCapacity int    `json:"restaurant_capacity,omitempty"`
	AvailableCapacity  int    `json:"available_capacity,omitempty"`
	Message            string `json:"message"`
}

// Request carries the booking parameters.
type Request struct {
	RestaurantID string
	Date         string
	Time         string
	PartySize    int
	UserName     string
	UserPhone    string
}

// Booking is the outcome of a reservation attempt.
type Booking struct {
	Success        bool   `json:"success"`
	ReservationID  string `json:"reservation_id,omitempty"`
	RestaurantID   string `json:"restaurant_id"`
	RestaurantName string `json:"restaurant_name,omitempty"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	PartySize      int    `json:"party_size"`
	UserName       string `json:"user_name"`
	UserPhone      string `json:"user_phone"`
	Message        string `json:"message"`
}

var errSlotConsumed = errors.New("slot capacity consumed concurrently")

// Ledger wraps the reservations table and the catalog it validates
// against. One instance is shared by all sessions.
type Ledger struct {
	db      *bun.DB
	catalog *catalogx.Catalog

	// mu serializes check-and-insert sequences within this process; the
	// re-check inside the transaction guards against other writers.
	mu sync.Mutex
}

// New runs the reservations migration and returns the ledger.
func New(ctx context.Context, db *bun.DB, cat *catalogx.Catalog) (*Ledger, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	if cat == nil {
		return nil, errors.New("catalog is required")
	}
	if _, err := db.NewCreateTable().Model((*Reservation)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("create reservations table: %w", err)
	}
	return &Ledger{db: db, catalog: cat}, nil
}

// CheckAvailability reports whether the rounded slot can seat the
// party. Validation failures come back as structured refusals; the
// error return is reserved for storage failures.
func (l *Ledger) CheckAvailability(ctx context.Context, restaurantID, date, bookingTime string, partySize int) (Availability, error) {
	out := Availability{
		RestaurantID: restaurantID,
		Date:         date,
		Time:         bookingTime,
		PartySize:    partySize,
	}

	if partySize <= 0 {
		out.Message = "Party size must be a positive number."
		return out, nil
	}
	rest, ok := l.catalog.ByID(restaurantID)
	if !ok {
		out.Message = fmt.Sprintf("Restaurant with ID %s not found.", restaurantID)
		return out, nil
	}
	out.RestaurantCapacity = rest.Capacity
	if partySize > rest.Capacity {
		out.Message = fmt.Sprintf("Sorry, this restaurant can only accommodate up to %d people in total.", rest.Capacity)
		return out, nil
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		out.Message = "Invalid date format. Please use YYYY-MM-DD format."
		return out, nil
	}
	rounded, ok := slotx.RoundToHour(bookingTime)
	if !ok {
		out.Message = "Invalid time format. Please use HH:MM format."
		return out, nil
	}
	out.Time = rounded

	booked, err := l.bookedTotal(ctx, l.db, slotx.Key{RestaurantID: restaurantID, Date: date, Time: rounded})
	if err != nil {
		return Availability{}, err
	}

	out.AvailableCapacity = rest.Capacity - booked
	out.Available = out.AvailableCapacity >= partySize

	switch {
	case out.Available:
		out.Message = "Tables are available at this time!"
	case booked == rest.Capacity:
		out.Message = fmt.Sprintf("Sorry, the restaurant is fully booked at %s.", rounded)
	case out.AvailableCapacity > 0:
		out.Message = fmt.Sprintf("Sorry, we only have space for %d more people at %s, not %d.", out.AvailableCapacity, rounded, partySize)
	default:
		out.Message = fmt.Sprintf("Sorry, we don't have availability for %d people at %s.", partySize, rounded)
	}
	return out, nil
}

// MakeReservation books a table. The availability re-check runs inside
// the same transaction as the insert; without it two concurrent
// bookings could each pass the outer check and together overbook the
// slot.
func (l *Ledger) MakeReservation(ctx context.Context, req Request) (Booking, error) {
	out := Booking{
		RestaurantID: req.RestaurantID,
		Date:         req.Date,
		Time:         req.Time,
		PartySize:    req.PartySize,
		UserName:     req.UserName,
		UserPhone:    req.UserPhone,
	}

	if strings.TrimSpace(req.UserName) == "" || strings.TrimSpace(req.UserPhone) == "" {
		out.Message = "Name and phone number are required for reservation."
		return out, nil
	}

	avail, err := l.CheckAvailability(ctx, req.RestaurantID, req.Date, req.Time, req.PartySize)
	if err != nil {
		return Booking{}, err
	}
	out.Time = avail.Time
	if !avail.Available {
		out.Message = avail.Message
		return out, nil
	}

	rest, _ := l.catalog.ByID(req.RestaurantID)
	key := slotx.Key{RestaurantID: req.RestaurantID, Date: req.Date, Time: avail.Time}
	res := &Reservation{
		RestaurantID: req.RestaurantID,
		BookingDate:  req.Date,
		BookingTime:  avail.Time,
		PartySize:    req.PartySize,
		UserName:     req.UserName,
		UserPhone:    req.UserPhone,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	err = l.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		booked, err := l.bookedTotal(ctx, tx, key)
		if err != nil {
			return err
		}
		if remaining := rest.Capacity - booked; remaining < req.PartySize {
			out.Message = fmt.Sprintf("Sorry, the restaurant became fully booked while processing your reservation. Only %d seats available.", remaining)
			return errSlotConsumed
		}
		if _, err := tx.NewInsert().Model(res).Exec(ctx); err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		return nil
	})
	if errors.Is(err, errSlotConsumed) {
		return out, nil
	}
	if err != nil {
		return Booking{}, err
	}

	out.Success = true
	out.ReservationID = fmt.Sprintf("res%d", res.ID)
	out.RestaurantName = rest.Name
	out.Message = fmt.Sprintf("Your reservation at %s for %d people on %s at %s has been confirmed!",
		rest.Name, req.PartySize, req.Date, avail.Time)

	log.Info().
		Str("reservation_id", out.ReservationID).
		Str("restaurant_id", req.RestaurantID).
		Str("date", req.Date).
		Str("time", avail.Time).
		Int("party_size", req.PartySize).
		Msg("reservation committed")
	return out, nil
}

func (l *Ledger) bookedTotal(ctx context.Context, db bun.IDB, key slotx.Key) (int, error) {
	var total int
	err := db.NewSelect().
		Model((*Reservation)(nil)).
		ColumnExpr("COALESCE(SUM(party_size), 0)").
		Where("restaurant_id = ?", key.RestaurantID).
		Where("booking_date = ?", key.Date).
		Where("booking_time = ?", key.Time).
		Scan(ctx, &total)
	if err != nil {
		return 0, fmt.Errorf("sum booked party sizes: %w", err)
	}
	return total, nil
}
