// Package service implements the operations of the money gathering API:
// payment-gated writes against the OnChainDB store, read-time stat
// derivation, and the listing pipelines over gatherings and
// contributions.
package service

import (
	"encoding/hex"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tia-gather/gatherd/celestia"
	"github.com/tia-gather/gatherd/config"
	"github.com/tia-gather/gatherd/onchaindb"
)

// Collections owned by this application on the store.
const (
	collGatherings    = "gatherings"
	collContributions = "contributions"
	collImages        = "images"
)

// Service handles the API requests. It holds no mutable state of its
// own; every aggregate is recomputed from the store per request.
type Service struct {
	db    *onchaindb.Client
	chain *celestia.Client
	cfg   *config.Config
}

// New creates a new service instance.
func New(cfg *config.Config) *Service {
	return &Service{
		db:    onchaindb.NewClient(cfg.OnChainDB),
		chain: celestia.NewClient(cfg.Celestia.REST),
		cfg:   cfg,
	}
}

// newID generates a fresh 12-hex-char record id.
func newID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:6])
}

type pingResp struct {
	Pong string `json:"pong"`
}

func (s *Service) Ping(_ *gin.Context) (*pingResp, error) {
	return &pingResp{Pong: "pong"}, nil
}

type configResp struct {
	AppName             string `json:"app_name"`
	ChainID             string `json:"chain_id"`
	RPC                 string `json:"rpc"`
	REST                string `json:"rest"`
	BrokerAddress       string `json:"broker_address"`
	MinContributionUtia int64  `json:"min_contribution_utia"`
	CreationFeeUtia     int64  `json:"creation_fee_utia"`
}

// Config handles the /config request with the public settings the
// frontend needs to connect a wallet and show fee hints.
func (s *Service) Config(_ *gin.Context) (*configResp, error) {
	return &configResp{
		AppName:             s.cfg.AppName,
		ChainID:             s.cfg.Celestia.ChainID,
		RPC:                 s.cfg.Celestia.RPC,
		REST:                s.cfg.Celestia.REST,
		BrokerAddress:       s.cfg.Celestia.BrokerAddress,
		MinContributionUtia: s.cfg.Pricing.MinContributionUtia,
		CreationFeeUtia:     s.cfg.Pricing.CreationFeeUtia,
	}, nil
}
