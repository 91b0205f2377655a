package domain

type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "high"
	TierMedium ConfidenceTier = "medium"
	TierLow    ConfidenceTier = "low"
)

// Workflow gating thresholds. These are deliberately distinct from the
// classifier's viability floor (0.2) and the reasoning labels (0.7/0.4/0.2):
// they gate UI behavior, not classification.
const (
	autoProceedThreshold = 0.9
	countdownThreshold   = 0.7
	mediumCountdownSecs  = 10
)

// WorkflowDecision tells callers how to treat a detection result:
// auto-proceed, confirm with a countdown, or require manual selection.
type WorkflowDecision struct {
	Tier                 ConfidenceTier `json:"confidence_level"`
	RequiresConfirmation bool           `json:"requires_confirmation"`
	AutoProceedSeconds   int            `json:"auto_process_countdown,omitempty"`
}

func ResolveWorkflowDecision(confidence float64) WorkflowDecision {
	switch {
	case confidence >= autoProceedThreshold:
		return WorkflowDecision{Tier: TierHigh}
	case confidence >= countdownThreshold:
		return WorkflowDecision{
			Tier:                 TierMedium,
			RequiresConfirmation: true,
			AutoProceedSeconds:   mediumCountdownSecs,
		}
	default:
		return WorkflowDecision{Tier: TierLow, RequiresConfirmation: true}
	}
}
