package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	catalogx "github.com/example/tablebook/agent/catalog"
	ledgerx "github.com/example/tablebook/agent/ledger"
	llmx "github.com/example/tablebook/agent/llm"
	orchestratorx "github.com/example/tablebook/agent/orchestrator"
	promptx "github.com/example/tablebook/agent/prompt"
	sessionx "github.com/example/tablebook/agent/session"
	toolx "github.com/example/tablebook/agent/tool"
	configx "github.com/example/tablebook/pkg/config"
	_ "github.com/example/tablebook/pkg/logger/autoload"
)

func main() {
	ctx := context.Background()

	ledgerConf := configx.MustNew[ledgerx.Config]("LEDGER")
	llmConf := configx.MustNew[llmx.Config]("GEMMA")
	loopConf := configx.MustNew[orchestratorx.Config]("AGENT")
	sessionConf := configx.MustNew[sessionx.Config]("AGENT")

	cat, err := catalogx.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load restaurant catalog")
	}

	db, err := ledgerx.OpenDB(ledgerConf.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("open reservation database")
	}
	defer db.Close()

	led, err := ledgerx.New(ctx, db, cat)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize reservation ledger")
	}

	tools, err := toolx.NewDispatcher(cat, led)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize tool dispatcher")
	}

	gen, err := llmx.NewClient(ctx, *llmConf, promptx.SystemInstructions(cat.Tags()))
	if err != nil {
		log.Fatal().Err(err).Msg("initialize model client")
	}

	manager, err := sessionx.NewManager(func() (*orchestratorx.Orchestrator, error) {
		return orchestratorx.New(gen, tools, *loopConf)
	}, *sessionConf)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize session manager")
	}

	sess, err := manager.Create()
	if err != nil {
		log.Fatal().Err(err).Msg("create session")
	}
	log.Info().Str("session_id", sess.ID).Msg("reservation assistant ready")

	fmt.Println("Welcome! Ask about restaurants or book a table. Type 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" {
			break
		}

		reply, err := sess.HandleMessage(ctx, text)
		if err != nil {
			log.Error().Err(err).Msg("message handling degraded")
		}
		fmt.Println(reply)
	}

	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("read input")
	}
	fmt.Println("Goodbye!")
}
