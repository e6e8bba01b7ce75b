// Package celestia proxies the handful of Celestia REST endpoints the
// frontend needs without tripping over CORS: balances, account info for
// signing, and transaction broadcast.
package celestia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const (
	balancesPath  = "cosmos/bank/v1beta1/balances"
	accountsPath  = "cosmos/auth/v1beta1/accounts"
	broadcastPath = "cosmos/tx/v1beta1/txs"

	queryTimeout     = 10 * time.Second
	broadcastTimeout = 30 * time.Second
)

// Client reads from and broadcasts to a Celestia REST endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient returns a new Celestia REST client.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{},
	}
}

// Balances fetches the bank balances of address, returned verbatim.
func (c *Client) Balances(
	ctx context.Context,
	address string,
) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/%s/%s", c.endpoint, balancesPath, address)
	return c.get(ctx, url)
}

// Account fetches the auth account record of address, which wallets need
// for sequence numbers when signing.
func (c *Client) Account(
	ctx context.Context,
	address string,
) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/%s/%s", c.endpoint, accountsPath, address)
	return c.get(ctx, url)
}

// BroadcastError carries the chain's rejection of a broadcast tx.
type BroadcastError struct {
	Code       int             `json:"code"`
	RawLog     string          `json:"raw_log"`
	TxResponse json.RawMessage `json:"tx_response"`
}

func (e *BroadcastError) Error() string {
	if e.RawLog == "" {
		return "transaction failed"
	}

	return e.RawLog
}

type broadcastRequest struct {
	TxBytes string `json:"tx_bytes"`
	Mode    string `json:"mode"`
}

type broadcastResponse struct {
	TxResponse struct {
		Code   int    `json:"code"`
		RawLog string `json:"raw_log"`
	} `json:"tx_response"`
}

// BroadcastTx submits signed transaction bytes to the chain. A non-zero
// tx_response code is returned as a BroadcastError carrying the raw log.
func (c *Client) BroadcastTx(
	ctx context.Context,
	txBytes string,
	mode string,
) (json.RawMessage, error) {
	if mode == "" {
		mode = "BROADCAST_MODE_SYNC"
	}

	encoded, err := json.Marshal(&broadcastRequest{
		TxBytes: txBytes,
		Mode:    mode,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, broadcastTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s", c.endpoint, broadcastPath)
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		url,
		bytes.NewReader(encoded),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "broadcast transaction")
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	br := &broadcastResponse{}
	if err := json.Unmarshal(body, br); err != nil {
		return nil, errors.Wrap(err, "decode broadcast response")
	}

	if br.TxResponse.Code != 0 {
		return nil, &BroadcastError{
			Code:       br.TxResponse.Code,
			RawLog:     br.TxResponse.RawLog,
			TxResponse: body,
		}
	}

	return body, nil
}

func (c *Client) get(ctx context.Context, url string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request celestia rest")
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf(
			"celestia rest request failed, status:%d, body:%s",
			resp.StatusCode,
			body,
		)
	}

	return body, nil
}
