package tool

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	contractx "github.com/example/tablebook/agent/contract"
)

// Operation names recognized on the wire.
const (
	OpFindRestaurant    = "find_restaurant"
	OpCheckAvailability = "check_availability"
	OpMakeReservation   = "make_reservation"
)

// Call is the closed set of operations a directive can resolve to. An
// unknown operation name only exists as a parse failure of the
// directive, never as a runtime case.
type Call interface {
	isCall()
}

type FindRestaurantCall struct {
	Name      string   `json:"name"`
	Location  string   `json:"location"`
	Tags      []string `json:"tags"`
	PartySize *int     `json:"party_size"`
}

type CheckAvailabilityCall struct {
	RestaurantID string `json:"restaurant_id"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	PartySize    int    `json:"party_size"`
}

type MakeReservationCall struct {
	RestaurantID string `json:"restaurant_id"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	PartySize    int    `json:"party_size"`
	UserName     string `json:"user_name"`
	UserPhone    string `json:"user_phone"`
}

func (FindRestaurantCall) isCall()    {}
func (CheckAvailabilityCall) isCall() {}
func (MakeReservationCall) isCall()   {}

type requiredField struct {
	name  string
	value string
}

// ParseCall resolves a directive into a typed call. An unrecognized
// name returns contract.ErrUnknownOperation; anything else wrong with
// the parameters is an ordinary error the dispatcher reports as a
// recoverable tool failure.
func ParseCall(d contractx.Directive) (Call, error) {
	switch d.Name {
	case OpFindRestaurant:
		var call FindRestaurantCall
		if err := decodeParams(d.Parameters, &call); err != nil {
			return nil, err
		}
		return call, nil

	case OpCheckAvailability:
		var call CheckAvailabilityCall
		if err := decodeParams(d.Parameters, &call); err != nil {
			return nil, err
		}
		if err := requireFields([]requiredField{
			{"restaurant_id", call.RestaurantID},
			{"date", call.Date},
			{"time", call.Time},
		}); err != nil {
			return nil, err
		}
		return call, nil

	case OpMakeReservation:
		var call MakeReservationCall
		if err := decodeParams(d.Parameters, &call); err != nil {
			return nil, err
		}
		if err := requireFields([]requiredField{
			{"restaurant_id", call.RestaurantID},
			{"date", call.Date},
			{"time", call.Time},
			{"user_name", call.UserName},
			{"user_phone", call.UserPhone},
		}); err != nil {
			return nil, err
		}
		return call, nil

	default:
		return nil, fmt.Errorf("%w: %s", contractx.ErrUnknownOperation, d.Name)
	}
}

func decodeParams(params map[string]any, dst any) error {
	raw, err := sonic.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}
	if err := sonic.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

func requireFields(fields []requiredField) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: missing required parameter %q", contractx.ErrValidation, f.name)
		}
	}
	return nil
}
