package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"homepanel/internal/models"
)

// Runner is the event-driven entry point of the automation engine. One
// instance serves both the transport consumer and the periodic evaluator;
// it holds no mutable state, so concurrent calls are safe.
type Runner struct {
	rules    RuleStore
	executor *Executor
	now      Clock
}

// NewRunner creates a runner. A nil clock defaults to time.Now.
func NewRunner(rules RuleStore, executor *Executor, now Clock) *Runner {
	if now == nil {
		now = time.Now
	}
	return &Runner{rules: rules, executor: executor, now: now}
}

// HandleDeviceUpdated processes one device-state sample against all rules.
// Action failures are absorbed per rule so one bad rule cannot block the
// rest of the scan; only a rule-store failure is returned.
func (r *Runner) HandleDeviceUpdated(ctx context.Context, sample models.StateSample) error {
	rules, err := r.rules.GetAllRules(ctx)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.EvaluateRule(ctx, rule, sample) {
			log.Printf("ENGINE: Rule %s (%s) fired for device %s", rule.ID, rule.Name, sample.DeviceID)
		}
	}
	return nil
}

// EvaluateRule runs one rule against one sample and executes its action on
// a match. Returns whether the rule fired. Shared by the event-driven and
// periodic paths so both fire identically once a sample exists.
func (r *Runner) EvaluateRule(ctx context.Context, rule models.Rule, sample models.StateSample) bool {
	if !rule.Enabled {
		return false
	}
	if !referencesDevice(rule.Trigger.Conditions, sample.DeviceID) {
		return false
	}
	if rule.Trigger.Window != nil && !rule.Trigger.Window.Contains(r.now()) {
		return false
	}
	value, ok := ComparableValue(sample, rule.Trigger.Conditions)
	if !ok {
		log.Printf("ENGINE: Device %s sample has no comparable value, skipping rule %s", sample.DeviceID, rule.ID)
		return false
	}
	if !AreConditionsSatisfied(rule.Trigger.Conditions, sample, value) {
		return false
	}

	r.executor.Execute(ctx, rule)
	return true
}
