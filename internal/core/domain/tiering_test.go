package domain

import "testing"

func TestResolveWorkflowDecision(t *testing.T) {
	cases := []struct {
		name       string
		confidence float64
		want       WorkflowDecision
	}{
		{"high auto proceeds", 0.95, WorkflowDecision{Tier: TierHigh}},
		{"high boundary inclusive", 0.9, WorkflowDecision{Tier: TierHigh}},
		{"medium counts down", 0.75, WorkflowDecision{Tier: TierMedium, RequiresConfirmation: true, AutoProceedSeconds: 10}},
		{"medium boundary inclusive", 0.7, WorkflowDecision{Tier: TierMedium, RequiresConfirmation: true, AutoProceedSeconds: 10}},
		{"low requires manual pick", 0.69, WorkflowDecision{Tier: TierLow, RequiresConfirmation: true}},
		{"zero confidence", 0, WorkflowDecision{Tier: TierLow, RequiresConfirmation: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveWorkflowDecision(tc.confidence)
			if got != tc.want {
				t.Fatalf("ResolveWorkflowDecision(%v) = %+v, want %+v", tc.confidence, got, tc.want)
			}
		})
	}
}
