package taskqueue

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
)

// Task types handled by the worker
const (
	TypeRunScene     = "scene:run"
	TypeEvaluateRule = "rule:evaluate"
)

// SceneRunPayload carries a scene activation
type SceneRunPayload struct {
	SceneID string `json:"scene_id"`
}

// RuleEvaluationPayload carries an on-demand rule evaluation
type RuleEvaluationPayload struct {
	RuleID string `json:"rule_id"`
}

// Queue enqueues background work for the task workers
type Queue struct {
	client *asynq.Client
}

// NewQueue creates a queue backed by Redis
func NewQueue(redisAddr string) *Queue {
	return &Queue{client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})}
}

// Close releases the queue's Redis connection
func (q *Queue) Close() error {
	return q.client.Close()
}

// EnqueueSceneRun queues a scene activation
func (q *Queue) EnqueueSceneRun(sceneID string) error {
	payload, err := json.Marshal(SceneRunPayload{SceneID: sceneID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeRunScene, payload)
	info, err := q.client.Enqueue(task, asynq.MaxRetry(3), asynq.Timeout(10*time.Second))
	if err != nil {
		return fmt.Errorf("enqueue scene run for %s: %w", sceneID, err)
	}
	log.Printf("TASKQUEUE: Enqueued task %s to run scene %s", info.ID, sceneID)
	return nil
}

// EnqueueRuleEvaluation queues an immediate evaluation of one rule,
// used after a rule is created or updated via the API.
func (q *Queue) EnqueueRuleEvaluation(ruleID string) error {
	payload, err := json.Marshal(RuleEvaluationPayload{RuleID: ruleID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeEvaluateRule, payload)
	info, err := q.client.Enqueue(task, asynq.MaxRetry(3), asynq.Timeout(10*time.Second))
	if err != nil {
		return fmt.Errorf("enqueue evaluation for rule %s: %w", ruleID, err)
	}
	log.Printf("TASKQUEUE: Enqueued task %s to evaluate rule %s", info.ID, ruleID)
	return nil
}
