package service

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/tia-gather/gatherd/onchaindb"
)

// utiaPerTia converts the oracle's TIA quotes to minor units.
const utiaPerTia = 1_000_000

// payloadSizeKb is the billable size of a write payload: kilobytes of
// its JSON encoding, rounded up, never below 1.
func payloadSizeKb(payload interface{}) int {
	b, err := json.Marshal(payload)
	if err != nil || len(b) == 0 {
		return 1
	}

	kb := (len(b) + 1023) / 1024
	if kb < 1 {
		kb = 1
	}

	return kb
}

// rawSizeKb is payloadSizeKb for already-encoded bytes (blob uploads).
func rawSizeKb(n int) int {
	kb := (n + 1023) / 1024
	if kb < 1 {
		kb = 1
	}

	return kb
}

// quoteOrProceed is the gate in front of every store write. With a proof
// referencing a payment transaction it proceeds (validity is the store's
// concern); without one it quotes the price of the write and returns a
// PaymentRequired carrying it, and the caller must resubmit with proof.
func (s *Service) quoteOrProceed(
	ctx context.Context,
	collection string,
	sizeKb int,
	proof *onchaindb.PaymentProof,
	description string,
) error {
	if proof.HasTxHash() {
		return nil
	}

	quote, err := s.db.PricingQuote(ctx, collection, "write", sizeKb)
	if err != nil {
		return errors.Wrap(err, "request pricing quote")
	}

	return &PaymentRequired{
		AmountUtia:  int64(quote.CostTia() * utiaPerTia),
		PayTo:       s.cfg.Celestia.BrokerAddress,
		Description: description,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n]
}
