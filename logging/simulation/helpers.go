package simulation

import (
	"context"

	"newomega/server/logging"
)

const (
	// EventBudgetOverrun is emitted when a single fight takes longer to simulate than allowed.
	EventBudgetOverrun logging.EventType = "simulation.budget_overrun"
)

// BudgetOverrunPayload captures timing details for a simulation budget breach.
type BudgetOverrunPayload struct {
	DurationMillis int64   `json:"durationMillis"`
	BudgetMillis   int64   `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
	Rounds         int     `json:"rounds"`
}

// BudgetOverrun publishes a warning when a fight exceeds the configured budget.
func BudgetOverrun(ctx context.Context, pub logging.Publisher, round int, payload BudgetOverrunPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventBudgetOverrun,
		Round:    round,
		Actor:    logging.EntityRef{ID: "simulator", Kind: logging.EntityKindSystem},
		Severity: logging.SeverityWarn,
		Category: logging.CategorySimulation,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
