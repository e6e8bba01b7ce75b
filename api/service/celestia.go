package service

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
)

// CelestiaBalance handles the /celestia/balance/:address request,
// proxying the chain's bank balances for the frontend.
func (s *Service) CelestiaBalance(c *gin.Context) (json.RawMessage, error) {
	address := c.Param("address")
	if address == "" {
		return nil, errMissingAddress
	}

	return s.chain.Balances(c.Request.Context(), address)
}

// CelestiaAccount handles the /celestia/account/:address request with
// the account info wallets need for signing.
func (s *Service) CelestiaAccount(c *gin.Context) (json.RawMessage, error) {
	address := c.Param("address")
	if address == "" {
		return nil, errMissingAddress
	}

	return s.chain.Account(c.Request.Context(), address)
}

type broadcastReq struct {
	TxBytes string `json:"tx_bytes" binding:"required"`
	Mode    string `json:"mode"`
}

// CelestiaBroadcast handles the POST /celestia/broadcast request,
// relaying a signed transaction to the chain.
func (s *Service) CelestiaBroadcast(
	c *gin.Context,
	req *broadcastReq,
) (json.RawMessage, error) {
	return s.chain.BroadcastTx(c.Request.Context(), req.TxBytes, req.Mode)
}
