package service

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

type pricingResp struct {
	Operation     string  `json:"operation,omitempty"`
	SizeKb        int     `json:"size_kb"`
	AmountUtia    int64   `json:"amount_utia"`
	AmountTia     float64 `json:"amount_tia"`
	BrokerAddress string  `json:"broker_address"`
}

// Pricing handles the /pricing request: what a write of the given size
// would cost right now, straight from the store's pricing oracle.
func (s *Service) Pricing(c *gin.Context) (*pricingResp, error) {
	operation := c.DefaultQuery("operation", "contribute")
	sizeKb, err := strconv.Atoi(c.DefaultQuery("size_kb", "1"))
	if err != nil || sizeKb < 1 {
		sizeKb = 1
	}

	collection := collContributions
	if operation == "create" {
		collection = collGatherings
	}

	quote, err := s.db.PricingQuote(
		c.Request.Context(),
		collection,
		"write",
		sizeKb,
	)
	if err != nil {
		return nil, err
	}

	costTia := quote.CostTia()
	return &pricingResp{
		Operation:     operation,
		SizeKb:        sizeKb,
		AmountUtia:    int64(costTia * utiaPerTia),
		AmountTia:     costTia,
		BrokerAddress: s.cfg.Celestia.BrokerAddress,
	}, nil
}
