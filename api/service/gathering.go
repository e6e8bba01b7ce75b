package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/tia-gather/gatherd/api/pagination"
	"github.com/tia-gather/gatherd/gather"
	"github.com/tia-gather/gatherd/onchaindb"
)

// contributionFetchCap bounds the nested contribution fetch used to
// derive a single gathering's stats.
const contributionFetchCap = 1000

type createGatheringReq struct {
	Title        string                  `json:"title" binding:"required"`
	Description  string                  `json:"description" binding:"required"`
	GoalAmount   int64                   `json:"goal_amount" binding:"min=0"`
	EndsAt       string                  `json:"ends_at" binding:"required"`
	Creator      string                  `json:"creator" binding:"required"`
	ImageURL     string                  `json:"image_url"`
	PaymentProof *onchaindb.PaymentProof `json:"payment_proof"`
}

// gatheringQuotePayload is the subset of the record the creation fee is
// quoted on.
type gatheringQuotePayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	GoalAmount  int64  `json:"goal_amount"`
	EndsAt      string `json:"ends_at"`
}

type createGatheringResp struct {
	gather.View
	Blockchain json.RawMessage `json:"blockchain"`
}

// CreateGathering handles the POST /gatherings request. The write is
// payment gated: without proof the response is the price quote.
func (s *Service) CreateGathering(
	c *gin.Context,
	req *createGatheringReq,
) (*createGatheringResp, error) {
	ctx := c.Request.Context()

	quoted := &gatheringQuotePayload{
		Title:       req.Title,
		Description: req.Description,
		GoalAmount:  req.GoalAmount,
		EndsAt:      req.EndsAt,
	}
	if err := s.quoteOrProceed(
		ctx,
		collGatherings,
		payloadSizeKb(quoted),
		req.PaymentProof,
		"Create gathering: "+truncate(req.Title, 30),
	); err != nil {
		return nil, err
	}

	g := gather.Gathering{
		ID:          newID(),
		Title:       req.Title,
		Description: req.Description,
		GoalAmount:  req.GoalAmount,
		Creator:     req.Creator,
		Status:      gather.StatusActive,
		EndsAt:      req.EndsAt,
		CreatedAt:   gather.FormatTime(time.Now()),
		ImageURL:    req.ImageURL,
	}

	receipt, err := s.db.Store(
		ctx,
		collGatherings,
		[]gather.Gathering{g},
		req.PaymentProof,
	)
	if err != nil {
		return nil, err
	}

	// A fresh gathering has no contributions yet, so its view carries
	// the seed values as-is.
	return &createGatheringResp{
		View:       gather.View{Gathering: g},
		Blockchain: receipt,
	}, nil
}

type gatheringResp struct {
	gather.View
	Contributions []gather.Contribution `json:"contributions"`
}

// Gathering handles the /gatherings/:gathering_id request: the record
// plus its derived stats and contribution list.
func (s *Service) Gathering(c *gin.Context) (*gatheringResp, error) {
	id := c.Param("gathering_id")
	if id == "" {
		return nil, errMissingGatheringID
	}

	ctx := c.Request.Context()
	g := gather.Gathering{}
	found, err := s.db.FindUnique(ctx, collGatherings, "id", id, &g)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errGatheringNotFound
	}

	contributions, err := s.fetchContributions(ctx, id, contributionFetchCap)
	if err != nil {
		return nil, err
	}

	return &gatheringResp{
		View:          gather.DeriveView(g, contributions, time.Now()),
		Contributions: contributions,
	}, nil
}

// Gatherings handles the /gatherings listing. The optional status filter
// runs on derived statuses, so it cannot be pushed down to the store.
func (s *Service) Gatherings(
	c *gin.Context,
	page *pagination.Query,
) (*pagination.Result, error) {
	page.Clamp(50, 100)

	status := c.DefaultQuery("status", gather.StatusActive)
	views, total, err := s.listGatherings(
		c.Request.Context(),
		status,
		c.Query("creator"),
		page.Limit,
		page.Offset,
	)
	if err != nil {
		return nil, err
	}

	return &pagination.Result{
		Data:  views,
		Total: int64(total),
	}, nil
}

// UserGatherings handles the /user/:address/gatherings request: every
// gathering created by the address, regardless of status.
func (s *Service) UserGatherings(
	c *gin.Context,
	page *pagination.Query,
) (*pagination.Result, error) {
	address := c.Param("address")
	if address == "" {
		return nil, errMissingAddress
	}

	page.Clamp(50, 100)
	views, total, err := s.listGatherings(
		c.Request.Context(),
		"all",
		address,
		page.Limit,
		page.Offset,
	)
	if err != nil {
		return nil, err
	}

	return &pagination.Result{
		Data:  views,
		Total: int64(total),
	}, nil
}

// listGatherings is the listing pipeline: over-fetch raw candidates,
// dedupe by id, derive each survivor's view with its own contribution
// fetch, filter on the derived status, sort newest first, then apply the
// paging window. Cost is linear in the candidate count, one sub-query
// each; the over-fetch factor keeps the window full after filtering.
func (s *Service) listGatherings(
	ctx context.Context,
	status string,
	creator string,
	limit int,
	offset int,
) ([]gather.View, int, error) {
	q := s.db.Query(collGatherings)
	if creator != "" {
		q = q.WhereEquals("creator", creator)
	}

	records := make([]gather.Gathering, 0)
	if err := q.SelectAll().
		Limit(limit * 5).
		Execute(ctx, &records); err != nil {
		return nil, 0, errors.Wrap(err, "query gatherings")
	}

	// First occurrence wins; storage order is preserved for the rest.
	seen := make(map[string]struct{}, len(records))
	unique := make([]gather.Gathering, 0, len(records))
	for _, g := range records {
		if g.ID == "" {
			continue
		}
		if _, ok := seen[g.ID]; ok {
			continue
		}

		seen[g.ID] = struct{}{}
		unique = append(unique, g)
	}

	now := time.Now()
	views := make([]gather.View, 0, len(unique))
	for _, g := range unique {
		contributions, err := s.fetchContributions(
			ctx,
			g.ID,
			contributionFetchCap,
		)
		if err != nil {
			return nil, 0, err
		}

		v := gather.DeriveView(g, contributions, now)
		if status != "" && status != "all" && v.Status != status {
			continue
		}

		views = append(views, v)
	}

	// Stored timestamps are fixed-width UTC, so lexicographic order is
	// chronological order.
	sort.Slice(views, func(i, j int) bool {
		return views[i].CreatedAt > views[j].CreatedAt
	})

	total := len(views)
	if offset >= total {
		return []gather.View{}, total, nil
	}

	views = views[offset:]
	if len(views) > limit {
		views = views[:limit]
	}

	return views, total, nil
}
