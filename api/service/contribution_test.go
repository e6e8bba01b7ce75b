package service

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/tia-gather/gatherd/api/pagination"
	"github.com/tia-gather/gatherd/gather"
)

func TestContributeWithoutProof(t *testing.T) {
	fs := newFakeStore(t)
	fs.quoteTia = 0.01
	fs.gatherings = []gather.Gathering{{
		ID:     "g1",
		Status: gather.StatusActive,
		EndsAt: "2030-01-01T00:00:00Z",
	}}
	s := newTestService(fs)

	_, err := s.Contribute(gatheringCtx("g1"), &contributeReq{
		Amount:      1000,
		Contributor: "celestia1a",
	})

	pr := &PaymentRequired{}
	if !errors.As(err, &pr) {
		t.Fatalf("expected PaymentRequired, got %v", err)
	}
	if pr.AmountUtia != 10000 {
		t.Errorf("amount = %d, want 10000", pr.AmountUtia)
	}
	if fs.storeCalls != 0 {
		t.Errorf("store written before payment")
	}
}

func TestContributeGuards(t *testing.T) {
	cases := []struct {
		name      string
		gathering *gather.Gathering
		wantErr   error
	}{
		{
			name:    "unknown gathering",
			wantErr: errGatheringNotFound,
		},
		{
			name: "stored seed already completed",
			gathering: &gather.Gathering{
				ID:     "g1",
				Status: gather.StatusCompleted,
				EndsAt: "2030-01-01T00:00:00Z",
			},
			wantErr: gather.ErrCompleted,
		},
		{
			name: "deadline passed",
			gathering: &gather.Gathering{
				ID:     "g1",
				Status: gather.StatusActive,
				EndsAt: "2020-01-01T00:00:00Z",
			},
			wantErr: gather.ErrExpired,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fs := newFakeStore(t)
			if tc.gathering != nil {
				fs.gatherings = []gather.Gathering{*tc.gathering}
			}
			s := newTestService(fs)

			_, err := s.Contribute(gatheringCtx("g1"), &contributeReq{
				Amount:       1000,
				Contributor:  "celestia1a",
				PaymentProof: testProof,
			})
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
			if fs.storeCalls != 0 {
				t.Errorf("rejected contribution reached the store")
			}
		})
	}
}

func TestContribute(t *testing.T) {
	fs := newFakeStore(t)
	fs.gatherings = []gather.Gathering{{
		ID:         "g1",
		GoalAmount: 1_000_000,
		Status:     gather.StatusActive,
		EndsAt:     "2030-01-01T00:00:00Z",
	}}
	s := newTestService(fs)

	resp, err := s.Contribute(gatheringCtx("g1"), &contributeReq{
		Amount:       250_000,
		Contributor:  "celestia1a",
		Message:      "good luck",
		PaymentProof: testProof,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.GatheringID != "g1" {
		t.Errorf("gathering id = %q", resp.GatheringID)
	}
	if resp.PaymentTxHash != testProof.PaymentTxHash {
		t.Errorf("tx hash = %q", resp.PaymentTxHash)
	}
	if len(resp.ID) != 12 {
		t.Errorf("id = %q, want 12 hex chars", resp.ID)
	}
	if len(resp.Blockchain) == 0 {
		t.Errorf("missing commit receipt")
	}
	// Only the contribution is written; the gathering row is immutable.
	if fs.storeCalls != 1 {
		t.Errorf("store calls = %d, want 1", fs.storeCalls)
	}
	if len(fs.gatherings) != 1 {
		t.Errorf("gathering rewritten")
	}
}

func TestContributions(t *testing.T) {
	fs := newFakeStore(t)
	fs.contributions = []gather.Contribution{
		{
			ID:          "c1",
			GatheringID: "g1",
			Amount:      100,
			CreatedAt:   "2025-01-01T00:00:00.000000Z",
		},
		{
			ID:          "c2",
			GatheringID: "g1",
			Amount:      200,
			CreatedAt:   "2025-01-03T00:00:00.000000Z",
		},
		{
			ID:          "c3",
			GatheringID: "g2",
			Amount:      300,
			CreatedAt:   "2025-01-02T00:00:00.000000Z",
		},
	}
	s := newTestService(fs)

	resp, err := s.Contributions(gatheringCtx("g1"), &pagination.Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	contributions := resp.Data.([]gather.Contribution)
	if len(contributions) != 2 {
		t.Fatalf("contributions = %d, want 2", len(contributions))
	}
	if contributions[0].ID != "c2" || contributions[1].ID != "c1" {
		t.Errorf("not newest first: %+v", contributions)
	}
}

func TestRecentContributions(t *testing.T) {
	fs := newFakeStore(t)
	fs.contributions = []gather.Contribution{
		{ID: "c1", GatheringID: "g1", CreatedAt: "2025-01-01T00:00:00.000000Z"},
		{ID: "c2", GatheringID: "g2", CreatedAt: "2025-01-03T00:00:00.000000Z"},
		{ID: "c3", GatheringID: "g1", CreatedAt: "2025-01-02T00:00:00.000000Z"},
	}
	s := newTestService(fs)

	resp, err := s.RecentContributions(
		testCtx("/"),
		&pagination.Query{Limit: 2},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	contributions := resp.Data.([]gather.Contribution)
	if len(contributions) != 2 {
		t.Fatalf("contributions = %d, want 2", len(contributions))
	}
	if contributions[0].ID != "c2" || contributions[1].ID != "c3" {
		t.Errorf("not newest first: %+v", contributions)
	}
}

func TestUserContributions(t *testing.T) {
	fs := newFakeStore(t)
	fs.contributions = []gather.Contribution{
		{
			ID:          "c1",
			GatheringID: "g1",
			Contributor: "celestia1me",
			CreatedAt:   "2025-01-01T00:00:00.000000Z",
		},
		{
			ID:          "c2",
			GatheringID: "g2",
			Contributor: "celestia1other",
			CreatedAt:   "2025-01-02T00:00:00.000000Z",
		},
	}
	s := newTestService(fs)

	resp, err := s.UserContributions(
		addressCtx("celestia1me"),
		&pagination.Query{},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	contributions := resp.Data.([]gather.Contribution)
	if len(contributions) != 1 || contributions[0].ID != "c1" {
		t.Errorf("unexpected listing: %+v", contributions)
	}
}
