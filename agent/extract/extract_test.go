package extract

import "testing"

func TestDirectiveAbsent(t *testing.T) {
	t.Parallel()

	for _, text := range []string{
		"",
		"Sure! We have a few Italian places downtown.",
		`{"result": "not a directive"}`,
		`the phrase "function_call" with no object around it`,
	} {
		if _, ok := Directive(text); ok {
			t.Fatalf("expected no directive in %q", text)
		}
	}
}

func TestDirectiveMalformed(t *testing.T) {
	t.Parallel()

	// Broken JSON around the key resolves to "no directive", not an error.
	if _, ok := Directive(`{"function_call": {"name": "find_restaurant",`); ok {
		t.Fatal("unterminated object must not extract")
	}
	if _, ok := Directive(`{"function_call": "not an object"}`); ok {
		t.Fatal("non-object function_call must not extract")
	}
}

func TestDirectiveBare(t *testing.T) {
	t.Parallel()

	d, ok := Directive(`{"function_call": {"name": "find_restaurant", "parameters": {"location": "Downtown"}}}`)
	if !ok {
		t.Fatal("expected a directive")
	}
	if d.Name != "find_restaurant" {
		t.Fatalf("unexpected name %q", d.Name)
	}
	if d.Parameters["location"] != "Downtown" {
		t.Fatalf("unexpected parameters %v", d.Parameters)
	}
}

func TestDirectiveSurroundedByProse(t *testing.T) {
	t.Parallel()

	text := `Let me check that for you.
{"function_call": {"name": "check_availability", "parameters": {"restaurant_id": "r1", "date": "2026-09-01", "time": "19:30", "party_size": 2}}}
One moment please.`

	d, ok := Directive(text)
	if !ok {
		t.Fatal("expected a directive")
	}
	if d.Name != "check_availability" {
		t.Fatalf("unexpected name %q", d.Name)
	}
	if d.Parameters["party_size"] != float64(2) {
		t.Fatalf("unexpected party_size %v", d.Parameters["party_size"])
	}
}

func TestDirectiveIgnoresEarlierBraces(t *testing.T) {
	t.Parallel()

	// A complete unrelated object before the directive must not confuse
	// the candidate scan.
	text := `Here is an example: {"foo": 1}. Now booking: {"function_call": {"name": "make_reservation", "parameters": {"user_name": "Ana {party}"}}}`

	d, ok := Directive(text)
	if !ok {
		t.Fatal("expected a directive")
	}
	if d.Name != "make_reservation" {
		t.Fatalf("unexpected name %q", d.Name)
	}
	if d.Parameters["user_name"] != "Ana {party}" {
		t.Fatalf("braces inside strings must survive: %v", d.Parameters)
	}
}
