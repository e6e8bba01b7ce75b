package service

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/tia-gather/gatherd/onchaindb"
)

func TestPayloadSizeKb(t *testing.T) {
	type payload struct {
		Data string `json:"data"`
	}

	// The JSON envelope {"data":"..."} adds 11 bytes around the string.
	cases := []struct {
		name    string
		payload interface{}
		want    int
	}{
		{
			name:    "tiny payload rounds up to one",
			payload: &payload{Data: "x"},
			want:    1,
		},
		{
			name:    "exactly one kilobyte",
			payload: &payload{Data: strings.Repeat("a", 1013)},
			want:    1,
		},
		{
			name:    "one byte over rounds up",
			payload: &payload{Data: strings.Repeat("a", 1014)},
			want:    2,
		},
		{
			name:    "forty kilobytes",
			payload: &payload{Data: strings.Repeat("a", 40*1024-11)},
			want:    40,
		},
		{
			name:    "unencodable falls back to one",
			payload: func() {},
			want:    1,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := payloadSizeKb(tc.payload); got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRawSizeKb(t *testing.T) {
	cases := []struct {
		n    int
		want int
	}{
		{0, 1},
		{1, 1},
		{1024, 1},
		{1025, 2},
		{100 * 1024, 100},
	}
	for _, tc := range cases {
		if got := rawSizeKb(tc.n); got != tc.want {
			t.Errorf("rawSizeKb(%d) = %d, want %d", tc.n, got, tc.want)
		}
	}
}

func TestQuoteOrProceed(t *testing.T) {
	cases := []struct {
		name       string
		proof      *onchaindb.PaymentProof
		wantQuoted bool
	}{
		{
			name:       "nil proof is quoted",
			proof:      nil,
			wantQuoted: true,
		},
		{
			name:       "proof without tx hash is quoted",
			proof:      &onchaindb.PaymentProof{UserAddress: "celestia1user"},
			wantQuoted: true,
		},
		{
			name:       "proof with tx hash proceeds",
			proof:      &onchaindb.PaymentProof{PaymentTxHash: "ABCDEF"},
			wantQuoted: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fs := newFakeStore(t)
			fs.quoteTia = 0.1234567
			s := newTestService(fs)

			err := s.quoteOrProceed(
				context.Background(),
				collGatherings,
				1,
				tc.proof,
				"test write",
			)

			if !tc.wantQuoted {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if fs.quoteCalls != 0 {
					t.Errorf("oracle consulted despite proof")
				}
				return
			}

			pr := &PaymentRequired{}
			if !errors.As(err, &pr) {
				t.Fatalf("expected PaymentRequired, got %v", err)
			}
			// 0.1234567 TIA floors to 123456 utia.
			if pr.AmountUtia != 123456 {
				t.Errorf("amount = %d, want 123456", pr.AmountUtia)
			}
			if pr.PayTo != "celestia1broker" {
				t.Errorf("pay_to = %q", pr.PayTo)
			}
			if fs.quoteCalls != 1 {
				t.Errorf("quote calls = %d, want 1", fs.quoteCalls)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abcd" {
		t.Errorf("got %q", got)
	}
	if got := truncate("ab", 4); got != "ab" {
		t.Errorf("got %q", got)
	}
}
