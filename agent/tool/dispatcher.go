// Package tool maps directives onto the catalog and ledger operations
// and serializes their outcomes for the conversation.
package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	catalogx "github.com/example/tablebook/agent/catalog"
	contractx "github.com/example/tablebook/agent/contract"
	ledgerx "github.com/example/tablebook/agent/ledger"
	slotx "github.com/example/tablebook/agent/slot"
)

// Outcome classifies a dispatch attempt.
type Outcome int

const (
	// OutcomeResult: the operation ran; the payload is its serialized result.
	OutcomeResult Outcome = iota
	// OutcomeError: the operation failed; the payload describes the failure.
	OutcomeError
	// OutcomeUnknownOperation: the directive named no known operation.
	OutcomeUnknownOperation
)

// Dispatcher routes directives to the shared catalog and ledger.
type Dispatcher struct {
	catalog *catalogx.Catalog
	ledger  *ledgerx.Ledger
}

func NewDispatcher(cat *catalogx.Catalog, led *ledgerx.Ledger) (*Dispatcher, error) {
	if cat == nil {
		return nil, errors.New("catalog is required")
	}
	if led == nil {
		return nil, errors.New("ledger is required")
	}
	return &Dispatcher{catalog: cat, ledger: led}, nil
}

// Dispatch executes one directive and serializes the outcome. Runtime
// failures are captured in the payload so the conversation can continue.
func (d *Dispatcher) Dispatch(ctx context.Context, dir contractx.Directive) (string, Outcome) {
	log.Info().
		Str("operation", dir.Name).
		Interface("parameters", dir.Parameters).
		Msg("dispatching tool call")

	call, err := ParseCall(dir)
	if errors.Is(err, contractx.ErrUnknownOperation) {
		return fmt.Sprintf("Invalid function name: %s", dir.Name), OutcomeUnknownOperation
	}
	if err != nil {
		return err.Error(), OutcomeError
	}

	payload, err := d.invoke(ctx, call)
	if err != nil {
		log.Error().Err(err).Str("operation", dir.Name).Msg("tool call failed")
		return err.Error(), OutcomeError
	}
	return payload, OutcomeResult
}

func (d *Dispatcher) invoke(ctx context.Context, call Call) (string, error) {
	switch call := call.(type) {
	case FindRestaurantCall:
		res := d.catalog.Search(catalogx.Filter{
			Name:      call.Name,
			Location:  call.Location,
			Tags:      call.Tags,
			PartySize: call.PartySize,
		})
		if res.Empty() {
			return marshal(map[string]any{"result": "No restaurants found matching your criteria."})
		}
		return marshal(map[string]any{"result": res.Restaurants})

	case CheckAvailabilityCall:
		avail, err := d.ledger.CheckAvailability(ctx, call.RestaurantID, call.Date, normalizeTime(call.Time), call.PartySize)
		if err != nil {
			return "", err
		}
		return marshal(avail)

	case MakeReservationCall:
		booking, err := d.ledger.MakeReservation(ctx, ledgerx.Request{
			RestaurantID: call.RestaurantID,
			Date:         call.Date,
			Time:         normalizeTime(call.Time),
			PartySize:    call.PartySize,
			UserName:     call.UserName,
			UserPhone:    call.UserPhone,
		})
		if err != nil {
			return "", err
		}
		return marshal(booking)

	default:
		return "", fmt.Errorf("unhandled call type %T", call)
	}
}

// normalizeTime rounds when the value parses; invalid values pass
// through so the ledger can report them.
func normalizeTime(t string) string {
	if rounded, ok := slotx.RoundToHour(t); ok {
		return rounded
	}
	return t
}

func marshal(v any) (string, error) {
	raw, err := sonic.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("serialize tool result: %w", err)
	}
	return string(raw), nil
}
