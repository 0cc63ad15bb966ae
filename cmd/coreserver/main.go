// Command coreserver wires every engine component together and runs
// one demo turn, the way the teacher's core/cmd/example builds a
// BaseAgent out of its pieces and starts it. There is no HTTP server
// here (§1 Non-goals excludes the outer API surface); a real deployment
// embeds *coordinator.Coordinator behind whatever transport it already
// runs.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/shaonidutta/converge-ai/agents"
	"github.com/shaonidutta/converge-ai/config"
	"github.com/shaonidutta/converge-ai/coordinator"
	"github.com/shaonidutta/converge-ai/dialog"
	"github.com/shaonidutta/converge-ai/embedding"
	"github.com/shaonidutta/converge-ai/entity"
	"github.com/shaonidutta/converge-ai/guardrail"
	"github.com/shaonidutta/converge-ai/intent"
	"github.com/shaonidutta/converge-ai/llm"
	"github.com/shaonidutta/converge-ai/logger"
	"github.com/shaonidutta/converge-ai/question"
	"github.com/shaonidutta/converge-ai/rag"
	"github.com/shaonidutta/converge-ai/slotfill"
	"github.com/shaonidutta/converge-ai/sweeper"
	"github.com/shaonidutta/converge-ai/vectorstore"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, os.Stdout, cfg.LogPretty)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})

	guardrails := guardrail.NewDefaultManager(guardrail.DefaultConfig(), rdb, log)
	dialogMgr := dialog.NewManager(dialog.NewRedisStore(rdb, log), cfg.DialogStateExpiry, log)

	catalog := entity.DefaultCatalog()
	extractorLLM := llm.NewAnthropicClient(cfg.LLMAPIKey, "claude-3-5-haiku-latest", cfg.MaxRetryAttempts, log)
	extractor := entity.NewExtractor(catalog, extractorLLM, "claude-3-5-haiku-latest", log)
	validator := entity.NewValidator(catalog)
	questions := question.NewGenerator()

	bookings := newDemoBookings()
	orchestrator := slotfill.NewOrchestrator(extractor, validator, questions, dialogMgr, bookings, catalog, log)

	classifierLLM := intent.NewLLMTier(extractorLLM, "claude-3-5-sonnet-latest", log)
	classifier := intent.NewClassifier(classifierLLM, log)

	embedder := embedding.NewOpenAIEmbeddingClient(cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension, log)
	vecHost, vecPort := splitHostPort(cfg.VectorStoreURL)
	vecStore, err := vectorstore.NewQdrantClient(vecHost, vecPort, cfg.VectorStoreAPIKey, embedder, log)
	if err != nil {
		log.Error("vector store unavailable, policy answers will degrade to low confidence", map[string]interface{}{"error": err.Error()})
	}
	policyLLM := llm.NewAnthropicClient(cfg.LLMAPIKey, "claude-3-5-sonnet-latest", cfg.MaxRetryAttempts, log)
	policyEngine := rag.NewEngine(rag.DefaultConfig(), embedder, vecStore, policyLLM, log)

	handlers := agents.DefaultHandlerMap(agents.Collaborators{
		Booking:      bookings,
		Complaint:    newDemoComplaints(),
		Refund:       demoRefunds{},
		Pricing:      demoPricing{catalog: catalog},
		Availability: demoAvailability{},
		Payment:      demoPayments{},
		Catalog:      demoCatalog{catalog: catalog},
		Policy:       policyEngine,
		Queue:        agents.NewPriorityQueue(),
	})

	history := newDemoHistory()
	coord := coordinator.New(guardrails, dialogMgr, classifier, orchestrator, handlers, history, demoAudit{}, log)

	sweep, err := sweeper.New(dialog.NewRedisStore(rdb, log), sweeper.DefaultSchedule, log)
	if err != nil {
		log.Error("sweeper setup failed", map[string]interface{}{"error": err.Error()})
	} else {
		sweep.Start()
		defer sweep.Stop()
	}

	ctx := context.Background()
	result := coord.HandleTurn(ctx, 1001, "", "Hi, I'd like to book a plumber for tomorrow at 4pm", "web")

	log.Info("demo turn complete", map[string]interface{}{
		"session_id":   result.SessionID,
		"intent":       string(result.Intent),
		"action_taken": string(result.ActionTaken),
		"response":     result.AssistantMessage.Text,
	})
}

func splitHostPort(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 6334
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 6334
	}
	return host, port
}
