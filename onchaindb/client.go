// Package onchaindb is the typed HTTP client for the OnChainDB ledger
// store. The store is the system of record for every collection; this
// client only submits and reads, it never caches or retries.
package onchaindb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const defaultTimeout = 10 * time.Second

// ErrNotFound reports a lookup miss on the store.
var ErrNotFound = errors.New("record not found")

// Config holds the OnChainDB connection settings.
type Config struct {
	Endpoint string `yaml:"endpoint"`
	AppID    string `yaml:"app_id"`
	AppKey   string `yaml:"app_key"`
}

// Client talks to a single OnChainDB application namespace.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient returns a new store client.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{},
	}
}

// PaymentProof carries the external payment reference that authorizes a
// write. The store validates it; this client only forwards it.
type PaymentProof struct {
	PaymentTxHash string `json:"payment_tx_hash"`
	UserAddress   string `json:"user_address,omitempty"`
	BrokerAddress string `json:"broker_address,omitempty"`
	AmountUtia    int64  `json:"amount_utia,omitempty"`
}

// HasTxHash reports whether the proof references a payment transaction.
// A proof without one is treated the same as no proof at all.
func (p *PaymentProof) HasTxHash() bool {
	return p != nil && p.PaymentTxHash != ""
}

type storeRequest struct {
	Collection   string        `json:"collection"`
	Data         interface{}   `json:"data"`
	PaymentProof *PaymentProof `json:"payment_proof"`
}

// Store appends records to a collection. The write is submitted exactly
// once; the receipt is the store's commit acknowledgement and is passed
// through untouched.
func (c *Client) Store(
	ctx context.Context,
	collection string,
	records interface{},
	proof *PaymentProof,
) (json.RawMessage, error) {
	var receipt json.RawMessage
	url := fmt.Sprintf("%s/api/apps/%s/store", c.cfg.Endpoint, c.cfg.AppID)
	req := &storeRequest{
		Collection:   collection,
		Data:         records,
		PaymentProof: proof,
	}
	if err := c.post(ctx, url, req, &receipt); err != nil {
		return nil, errors.Wrap(err, "store records")
	}

	return receipt, nil
}

type findUniqueRequest struct {
	Collection string            `json:"collection"`
	Where      map[string]string `json:"where"`
}

// FindUnique fetches the single record where field equals value, decoding
// it into out. It returns false without error on a miss.
func (c *Client) FindUnique(
	ctx context.Context,
	collection string,
	field string,
	value string,
	out interface{},
) (bool, error) {
	url := fmt.Sprintf(
		"%s/api/apps/%s/find-unique",
		c.cfg.Endpoint,
		c.cfg.AppID,
	)
	req := &findUniqueRequest{
		Collection: collection,
		Where:      map[string]string{field: value},
	}

	var raw json.RawMessage
	if err := c.post(ctx, url, req, &raw); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}

		return false, errors.Wrap(err, "find unique record")
	}

	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}

	return true, json.Unmarshal(raw, out)
}

// Quote is a pricing oracle response. OnChainDB reports the total cost in
// TIA under total_cost_tia, older deployments under total_cost.
type Quote struct {
	TotalCostTia float64 `json:"total_cost_tia"`
	TotalCost    float64 `json:"total_cost"`
}

// CostTia returns the quoted total in TIA, preferring the newer field.
func (q *Quote) CostTia() float64 {
	if q.TotalCostTia != 0 {
		return q.TotalCostTia
	}

	return q.TotalCost
}

type quoteRequest struct {
	AppID         string `json:"app_id"`
	Collection    string `json:"collection"`
	OperationType string `json:"operation_type"`
	SizeKb        int    `json:"size_kb"`
}

// PricingQuote asks the store's pricing oracle what a write of sizeKb
// kilobytes to collection costs. A response body that fails to decode
// yields a zero quote rather than an error.
func (c *Client) PricingQuote(
	ctx context.Context,
	collection string,
	operationType string,
	sizeKb int,
) (*Quote, error) {
	url := fmt.Sprintf("%s/api/pricing/quote", c.cfg.Endpoint)
	req := &quoteRequest{
		AppID:         c.cfg.AppID,
		Collection:    collection,
		OperationType: operationType,
		SizeKb:        sizeKb,
	}

	body, err := c.do(ctx, http.MethodPost, url, req)
	if err != nil {
		return nil, errors.Wrap(err, "request pricing quote")
	}

	quote := &Quote{}
	if err := json.Unmarshal(body, quote); err != nil {
		// Fail open: a malformed quote never blocks the caller.
		return &Quote{}, nil
	}

	return quote, nil
}

// StoreBlob uploads raw blob bytes to a blob collection, gated by the
// same payment proof mechanism as record writes.
func (c *Client) StoreBlob(
	ctx context.Context,
	collection string,
	data []byte,
	filename string,
	contentType string,
	proof *PaymentProof,
) (json.RawMessage, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(data); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"content_type":    contentType,
		"payment_tx_hash": proof.PaymentTxHash,
		"user_address":    proof.UserAddress,
		"broker_address":  proof.BrokerAddress,
		"amount_utia":     fmt.Sprintf("%d", proof.AmountUtia),
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	url := fmt.Sprintf(
		"%s/api/apps/%s/blobs/%s",
		c.cfg.Endpoint,
		c.cfg.AppID,
		collection,
	)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-App-Key", c.cfg.AppKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "upload blob")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf(
			"store request failed, status:%d, body:%s",
			resp.StatusCode,
			body,
		)
	}

	return body, nil
}

// FetchBlob retrieves blob bytes and their content type by blob id.
// A store miss maps to ErrNotFound.
func (c *Client) FetchBlob(
	ctx context.Context,
	collection string,
	blobID string,
) ([]byte, string, error) {
	url := fmt.Sprintf(
		"%s/api/apps/%s/blobs/%s/%s",
		c.cfg.Endpoint,
		c.cfg.AppID,
		collection,
		blobID,
	)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("X-App-Key", c.cfg.AppKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", errors.Wrap(err, "fetch blob")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", ErrNotFound
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", errors.Errorf(
			"fetch blob failed, status:%d, body:%s",
			resp.StatusCode,
			body,
		)
	}

	return body, resp.Header.Get("Content-Type"), nil
}

func (c *Client) post(
	ctx context.Context,
	url string,
	payload interface{},
	result interface{},
) error {
	body, err := c.do(ctx, http.MethodPost, url, payload)
	if err != nil {
		return err
	}

	if result == nil {
		return nil
	}

	return json.Unmarshal(body, result)
}

func (c *Client) do(
	ctx context.Context,
	method string,
	url string,
	payload interface{},
) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}

		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-App-Key", c.cfg.AppKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}

	if resp.StatusCode < http.StatusOK ||
		resp.StatusCode >= http.StatusMultipleChoices {
		return nil, errors.Errorf(
			"store request failed, status:%d, body:%s",
			resp.StatusCode,
			body,
		)
	}

	return body, nil
}
