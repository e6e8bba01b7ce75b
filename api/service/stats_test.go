package service

import (
	"testing"

	"github.com/tia-gather/gatherd/gather"
)

func TestStats(t *testing.T) {
	fs := newFakeStore(t)
	fs.gatherings = []gather.Gathering{
		{
			ID:         "open",
			GoalAmount: 10_000_000,
			Status:     gather.StatusActive,
			EndsAt:     "2030-01-01T00:00:00Z",
			CreatedAt:  "2025-01-01T00:00:00.000000Z",
		},
		{
			ID:         "funded",
			GoalAmount: 1_000_000,
			Status:     gather.StatusActive,
			EndsAt:     "2030-01-01T00:00:00Z",
			CreatedAt:  "2025-01-02T00:00:00.000000Z",
		},
		{
			ID:         "lapsed",
			GoalAmount: 1_000_000,
			Status:     gather.StatusActive,
			EndsAt:     "2020-01-01T00:00:00Z",
			CreatedAt:  "2025-01-03T00:00:00.000000Z",
		},
	}
	fs.contributions = []gather.Contribution{
		{
			ID:          "c1",
			GatheringID: "open",
			Contributor: "celestia1a",
			Amount:      2_000_000,
			CreatedAt:   "2025-01-04T00:00:00.000000Z",
		},
		{
			ID:          "c2",
			GatheringID: "funded",
			Contributor: "celestia1b",
			Amount:      1_500_000,
			CreatedAt:   "2025-01-05T00:00:00.000000Z",
		},
	}
	s := newTestService(fs)

	resp, err := s.Stats(testCtx("/"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.TotalGatherings != 3 {
		t.Errorf("total gatherings = %d", resp.TotalGatherings)
	}
	if resp.ActiveGatherings != 1 {
		t.Errorf("active gatherings = %d", resp.ActiveGatherings)
	}
	if resp.CompletedGatherings != 1 {
		t.Errorf("completed gatherings = %d", resp.CompletedGatherings)
	}
	if resp.TotalRaisedUtia != 3_500_000 {
		t.Errorf("total raised = %d utia", resp.TotalRaisedUtia)
	}
	if resp.TotalRaisedTia != 3.5 {
		t.Errorf("total raised = %v tia", resp.TotalRaisedTia)
	}
	if resp.TotalContributors != 2 {
		t.Errorf("total contributors = %d", resp.TotalContributors)
	}
}
