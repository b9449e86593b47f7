package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"homepanel/internal/db"
	"homepanel/internal/engine"

	"github.com/hibiken/asynq"
)

// Worker processes queued scene runs and rule evaluations
type Worker struct {
	srv      *asynq.Server
	db       *db.DB
	executor *engine.Executor
	periodic *engine.PeriodicEvaluator
}

// NewWorker creates a worker pool backed by Redis
func NewWorker(redisAddr string, dbConn *db.DB, executor *engine.Executor, periodic *engine.PeriodicEvaluator) *Worker {
	return &Worker{
		srv:      asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{Concurrency: 10}),
		db:       dbConn,
		executor: executor,
		periodic: periodic,
	}
}

// Run blocks processing tasks until Stop is called
func (w *Worker) Run() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeRunScene, w.handleRunScene)
	mux.HandleFunc(TypeEvaluateRule, w.handleEvaluateRule)
	log.Println("TASKQUEUE: Workers started, waiting for tasks")
	return w.srv.Run(mux)
}

// Stop shuts the worker pool down
func (w *Worker) Stop() {
	w.srv.Stop()
	w.srv.Shutdown()
	log.Println("TASKQUEUE: Workers stopped")
}

func (w *Worker) handleRunScene(ctx context.Context, t *asynq.Task) error {
	var payload SceneRunPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", t.Type(), err)
	}
	log.Printf("TASKQUEUE: Running scene %s", payload.SceneID)
	w.executor.RunScene(ctx, payload.SceneID)
	return nil
}

func (w *Worker) handleEvaluateRule(ctx context.Context, t *asynq.Task) error {
	var payload RuleEvaluationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", t.Type(), err)
	}

	rule, err := w.db.GetRuleByID(ctx, payload.RuleID)
	if err != nil {
		return fmt.Errorf("load rule %s: %w", payload.RuleID, err)
	}
	if rule == nil {
		log.Printf("TASKQUEUE: Rule %s no longer exists, dropping evaluation", payload.RuleID)
		return nil
	}
	if !rule.Enabled {
		log.Printf("TASKQUEUE: Rule %s is disabled, skipping evaluation", payload.RuleID)
		return nil
	}

	if w.periodic.EvaluateRuleNow(ctx, *rule) {
		log.Printf("TASKQUEUE: Rule %s fired on demand", rule.ID)
	}
	return nil
}
