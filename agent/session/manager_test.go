package session

import (
	"context"
	"testing"

	contractx "github.com/example/tablebook/agent/contract"
	orchestratorx "github.com/example/tablebook/agent/orchestrator"
	toolx "github.com/example/tablebook/agent/tool"
)

type stubGenerator struct{ reply string }

func (s stubGenerator) Generate(_ context.Context, _ []contractx.Turn) (string, error) {
	return s.reply, nil
}

type stubDispatcher struct{}

func (stubDispatcher) Dispatch(_ context.Context, _ contractx.Directive) (string, toolx.Outcome) {
	return "{}", toolx.OutcomeResult
}

func testFactory(t *testing.T) func() (*orchestratorx.Orchestrator, error) {
	t.Helper()
	return func() (*orchestratorx.Orchestrator, error) {
		return orchestratorx.New(stubGenerator{reply: "hello"}, stubDispatcher{}, orchestratorx.Config{})
	}
}

func TestManagerCreateAndGet(t *testing.T) {
	t.Parallel()

	mgr, err := NewManager(testFactory(t), Config{MaxSessions: 2})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	s, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.ID == "" {
		t.Fatal("session must get an id")
	}

	got, ok := mgr.Get(s.ID)
	if !ok || got != s {
		t.Fatalf("Get(%q) = %v, %v", s.ID, got, ok)
	}

	reply, err := s.HandleMessage(context.Background(), "hi")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if reply != "hello" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if len(s.History()) != 2 {
		t.Fatalf("unexpected history %+v", s.History())
	}
}

func TestManagerSessionsAreIndependent(t *testing.T) {
	t.Parallel()

	mgr, err := NewManager(testFactory(t), Config{MaxSessions: 2})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	a, _ := mgr.Create()
	b, _ := mgr.Create()

	if _, err := a.HandleMessage(context.Background(), "only in a"); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(a.History()) != 2 {
		t.Fatalf("session a history %+v", a.History())
	}
	if len(b.History()) != 0 {
		t.Fatalf("session b must stay empty, got %+v", b.History())
	}
}

func TestManagerEnforcesCap(t *testing.T) {
	t.Parallel()

	mgr, err := NewManager(testFactory(t), Config{MaxSessions: 1})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	first, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := mgr.Create(); err == nil {
		t.Fatal("expected cap error")
	}

	mgr.Remove(first.ID)
	if mgr.Len() != 0 {
		t.Fatalf("Len() = %d after removal", mgr.Len())
	}
	if _, err := mgr.Create(); err != nil {
		t.Fatalf("Create after removal: %v", err)
	}
}
