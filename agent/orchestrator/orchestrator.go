// Package orchestrator runs the bounded generate/dispatch loop that
// turns one user message into one final reply.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/example/tablebook/agent/contract"
	extractx "github.com/example/tablebook/agent/extract"
	toolx "github.com/example/tablebook/agent/tool"
)

// DefaultMaxToolCalls bounds sequential tool dispatches per user message.
const DefaultMaxToolCalls = 4

// Config carries loop settings, loaded from the environment.
type Config struct {
	MaxToolCalls int `envconfig:"MAX_TOOL_CALLS" default:"4"`
}

// Dispatcher executes one directive and reports how it went.
type Dispatcher interface {
	Dispatch(ctx context.Context, dir contractx.Directive) (string, toolx.Outcome)
}

// Orchestrator owns one conversation. Not safe for concurrent use;
// callers serialize access per conversation.
type Orchestrator struct {
	gen          contractx.Generator
	tools        Dispatcher
	maxToolCalls int
	history      []contractx.Turn
}

func New(gen contractx.Generator, tools Dispatcher, cfg Config) (*Orchestrator, error) {
	if gen == nil {
		return nil, errors.New("generator is required")
	}
	if tools == nil {
		return nil, errors.New("dispatcher is required")
	}
	maxCalls := cfg.MaxToolCalls
	if maxCalls <= 0 {
		maxCalls = DefaultMaxToolCalls
	}
	return &Orchestrator{gen: gen, tools: tools, maxToolCalls: maxCalls}, nil
}

type phase int

const (
	phaseRequesting phase = iota
	phaseDispatching
	phaseDone
	phaseAborted
)

// HandleMessage appends the user message to the conversation and drives
// the loop until the model produces a plain answer, the dispatch budget
// runs out, or generation fails. The returned reply is always
// user-presentable; err is non-nil only when generation itself failed,
// and then the reply describes that failure.
func (o *Orchestrator) HandleMessage(ctx context.Context, text string) (string, error) {
	o.history = append(o.history, contractx.Turn{Role: contractx.RoleUser, Content: text})

	var (
		final      string
		genErr     error
		reply      string
		directive  contractx.Directive
		dispatches int
	)

	state := phaseRequesting
	for state != phaseDone && state != phaseAborted {
		switch state {
		case phaseRequesting:
			raw, err := o.gen.Generate(ctx, o.history)
			if err != nil {
				log.Error().Err(err).Msg("generation failed")
				final = fmt.Sprintf("Error generating response: %v", err)
				genErr = err
				state = phaseAborted
				continue
			}
			reply = sanitize(raw)

			dir, found := extractx.Directive(reply)
			if !found {
				o.history = append(o.history, contractx.Turn{Role: contractx.RoleModel, Content: reply})
				final = reply
				state = phaseDone
				continue
			}
			directive = dir
			state = phaseDispatching

		case phaseDispatching:
			o.history = append(o.history, contractx.Turn{Role: contractx.RoleModel, Content: reply})

			result, outcome := o.tools.Dispatch(ctx, directive)
			switch outcome {
			case toolx.OutcomeUnknownOperation:
				// The model invented an operation; feed the refusal back
				// for future turns but answer with its own text now.
				o.history = append(o.history, contractx.Turn{Role: contractx.RoleUser, Content: result})
				final = reply
				state = phaseDone
				continue
			case toolx.OutcomeError:
				o.history = append(o.history, contractx.Turn{
					Role:    contractx.RoleUser,
					Content: "Error calling function: " + result,
				})
			default:
				o.history = append(o.history, contractx.Turn{
					Role:    contractx.RoleUser,
					Content: "Function result: " + result,
				})
			}

			dispatches++
			if dispatches >= o.maxToolCalls {
				log.Warn().Int("dispatches", dispatches).Msg("tool call budget exhausted")
				final = reply
				state = phaseDone
				continue
			}
			state = phaseRequesting
		}
	}

	return final, genErr
}

// History returns a copy of the conversation so far.
func (o *Orchestrator) History() []contractx.Turn {
	out := make([]contractx.Turn, len(o.history))
	copy(out, o.history)
	return out
}
