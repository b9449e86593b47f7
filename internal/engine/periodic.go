package engine

import (
	"context"
	"log"
	"strings"
	"time"

	"homepanel/internal/models"
)

// PeriodicEvaluator re-checks every enabled rule against the latest known
// device state on a fixed tick, so rules fire even when no fresh
// notification arrives (a temperature that is still above the threshold at
// 22:00 when a time window opens, for example). It replays store state
// through the same per-rule path as the event-driven runner.
type PeriodicEvaluator struct {
	rules    RuleStore
	states   DeviceStateStore
	runner   *Runner
	cooldown *CooldownTracker
	interval time.Duration
}

// NewPeriodicEvaluator creates the evaluator
func NewPeriodicEvaluator(rules RuleStore, states DeviceStateStore, runner *Runner, cooldown *CooldownTracker, interval time.Duration) *PeriodicEvaluator {
	return &PeriodicEvaluator{
		rules:    rules,
		states:   states,
		runner:   runner,
		cooldown: cooldown,
		interval: interval,
	}
}

// Run ticks until the context is cancelled. Sweep failures are logged and
// the next tick still happens; the loop must outlive any single bad sweep.
func (p *PeriodicEvaluator) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log.Printf("ENGINE: Periodic evaluator started (interval %s)", p.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("ENGINE: Periodic evaluator stopped")
			return
		case <-ticker.C:
			if err := p.Sweep(ctx); err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Printf("ENGINE: Periodic sweep failed: %v", err)
			}
		}
	}
}

// Sweep evaluates all enabled rules once against the state store
func (p *PeriodicEvaluator) Sweep(ctx context.Context) error {
	rules, err := p.rules.GetAllRules(ctx)
	if err != nil {
		return err
	}

	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !rule.Enabled || len(rule.Trigger.Conditions) == 0 {
			continue
		}
		if !p.cooldown.Allow(rule.ID) {
			continue
		}
		if p.EvaluateRuleNow(ctx, rule) {
			p.cooldown.MarkFired(rule.ID)
		}
	}
	return nil
}

// EvaluateRuleNow samples every device the rule's conditions reference and
// replays each sample through the shared evaluation path. Returns whether
// the rule fired. A lookup failure on one device skips only that device.
func (p *PeriodicEvaluator) EvaluateRuleNow(ctx context.Context, rule models.Rule) bool {
	for _, deviceID := range conditionDevices(rule.Trigger.Conditions) {
		state, err := p.states.GetDeviceState(ctx, deviceID)
		if err != nil {
			log.Printf("ENGINE: State lookup for device %s failed: %v", deviceID, err)
			continue
		}
		if state == nil {
			continue
		}
		sample := models.StateSample{
			DeviceID:       deviceID,
			Value:          state.Value,
			Unit:           state.Unit,
			Malfunctioning: state.Malfunctioning,
		}
		if p.runner.EvaluateRule(ctx, rule, sample) {
			log.Printf("ENGINE: Rule %s (%s) fired on periodic sweep via device %s", rule.ID, rule.Name, deviceID)
			return true
		}
	}
	return false
}

// conditionDevices lists the distinct devices a condition set references,
// in first-seen order. Deduplicated so two conditions on one device cannot
// fire the rule twice in a tick.
func conditionDevices(conditions []models.Condition) []string {
	seen := make(map[string]bool, len(conditions))
	var devices []string
	for _, cond := range conditions {
		key := strings.ToLower(cond.DeviceID)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		devices = append(devices, cond.DeviceID)
	}
	return devices
}
