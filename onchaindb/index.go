package onchaindb

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Index describes a secondary index on a collection field.
type Index struct {
	Name             string `json:"name"`
	Collection       string `json:"collection"`
	FieldName        string `json:"field_name"`
	IndexType        string `json:"index_type"`
	UniqueConstraint bool   `json:"unique_constraint,omitempty"`
	StoreValues      bool   `json:"store_values,omitempty"`
	SortEnabled      bool   `json:"sort_enabled,omitempty"`
	Description      string `json:"description,omitempty"`
}

// View describes a server-side materialized view joining collections.
type View struct {
	Name              string                 `json:"name"`
	SourceCollections []string               `json:"source_collections"`
	Query             map[string]interface{} `json:"query"`
	GroupBy           []string               `json:"group_by,omitempty"`
	Aggregate         map[string]interface{} `json:"aggregate,omitempty"`
}

// ErrAlreadyExists reports that an index or view with the same name is
// already registered on the store.
var ErrAlreadyExists = errors.New("already exists")

// CreateIndex registers idx on the store. Re-creating an existing index
// returns ErrAlreadyExists so setup runs stay idempotent.
func (c *Client) CreateIndex(ctx context.Context, idx Index) error {
	url := fmt.Sprintf("%s/api/apps/%s/indexes", c.cfg.Endpoint, c.cfg.AppID)
	if err := c.post(ctx, url, idx, nil); err != nil {
		return asAlreadyExists(err)
	}

	return nil
}

// CreateView registers v on the store, with the same idempotency
// behavior as CreateIndex.
func (c *Client) CreateView(ctx context.Context, v View) error {
	url := fmt.Sprintf("%s/api/apps/%s/views", c.cfg.Endpoint, c.cfg.AppID)
	if err := c.post(ctx, url, v, nil); err != nil {
		return asAlreadyExists(err)
	}

	return nil
}

func asAlreadyExists(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "already exists") ||
		strings.Contains(msg, "duplicate") {
		return ErrAlreadyExists
	}

	return err
}
