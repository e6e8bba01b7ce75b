package onchaindb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// Query builds an equality-filtered read against one collection. The
// store returns at most the limit of matching records in no particular
// order; any ordering the caller needs happens client side.
type Query struct {
	client     *Client
	collection string
	where      map[string]string
	selectAll  bool
	limit      int
}

// Query starts a query against collection.
func (c *Client) Query(collection string) *Query {
	return &Query{
		client:     c,
		collection: collection,
		where:      make(map[string]string),
	}
}

// WhereEquals adds an equality predicate on field.
func (q *Query) WhereEquals(field, value string) *Query {
	q.where[field] = value
	return q
}

// SelectAll requests every field of the matching records.
func (q *Query) SelectAll() *Query {
	q.selectAll = true
	return q
}

// Limit caps the number of returned records.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

type queryRequest struct {
	Collection string            `json:"collection"`
	Where      map[string]string `json:"where,omitempty"`
	Select     string            `json:"select,omitempty"`
	Limit      int               `json:"limit,omitempty"`
}

type queryResponse struct {
	Records json.RawMessage `json:"records"`
}

// Execute runs the query and decodes the record array into out, which
// must be a pointer to a slice.
func (q *Query) Execute(ctx context.Context, out interface{}) error {
	url := fmt.Sprintf(
		"%s/api/apps/%s/query",
		q.client.cfg.Endpoint,
		q.client.cfg.AppID,
	)
	req := &queryRequest{
		Collection: q.collection,
		Limit:      q.limit,
	}
	if len(q.where) > 0 {
		req.Where = q.where
	}
	if q.selectAll {
		req.Select = "*"
	}

	resp := &queryResponse{}
	if err := q.client.post(ctx, url, req, resp); err != nil {
		return errors.Wrap(err, "execute query")
	}

	if len(resp.Records) == 0 {
		return nil
	}

	return json.Unmarshal(resp.Records, out)
}
