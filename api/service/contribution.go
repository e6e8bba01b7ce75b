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

type contributeReq struct {
	Amount       int64                   `json:"amount" binding:"required,gt=0"`
	Contributor  string                  `json:"contributor" binding:"required"`
	Message      string                  `json:"message"`
	PaymentProof *onchaindb.PaymentProof `json:"payment_proof"`
}

// contributionQuotePayload is the subset of the record the storage fee is
// quoted on.
type contributionQuotePayload struct {
	GatheringID string `json:"gathering_id"`
	Amount      int64  `json:"amount"`
	Message     string `json:"message"`
}

type contributeResp struct {
	gather.Contribution
	Blockchain json.RawMessage `json:"blockchain"`
}

// Contribute handles the POST /gatherings/:gathering_id/contribute
// request. The flow is quote, validate, commit: the payment gate runs
// first, then the gathering is checked by its stored seed status and
// deadline, and only then is the contribution written. The gathering
// record itself is never touched.
func (s *Service) Contribute(
	c *gin.Context,
	req *contributeReq,
) (*contributeResp, error) {
	id := c.Param("gathering_id")
	if id == "" {
		return nil, errMissingGatheringID
	}

	ctx := c.Request.Context()
	quoted := &contributionQuotePayload{
		GatheringID: id,
		Amount:      req.Amount,
		Message:     req.Message,
	}
	if err := s.quoteOrProceed(
		ctx,
		collContributions,
		payloadSizeKb(quoted),
		req.PaymentProof,
		"Contribute to gathering",
	); err != nil {
		return nil, err
	}

	g := gather.Gathering{}
	found, err := s.db.FindUnique(ctx, collGatherings, "id", id, &g)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errGatheringNotFound
	}

	if err := gather.ValidateOpen(g, time.Now()); err != nil {
		return nil, err
	}

	contribution := gather.Contribution{
		ID:            newID(),
		GatheringID:   id,
		Contributor:   req.Contributor,
		Amount:        req.Amount,
		Message:       req.Message,
		PaymentTxHash: req.PaymentProof.PaymentTxHash,
		CreatedAt:     gather.FormatTime(time.Now()),
	}

	receipt, err := s.db.Store(
		ctx,
		collContributions,
		[]gather.Contribution{contribution},
		req.PaymentProof,
	)
	if err != nil {
		return nil, err
	}

	return &contributeResp{
		Contribution: contribution,
		Blockchain:   receipt,
	}, nil
}

// Contributions handles the /gatherings/:gathering_id/contributions
// request, newest first.
func (s *Service) Contributions(
	c *gin.Context,
	page *pagination.Query,
) (*pagination.Result, error) {
	id := c.Param("gathering_id")
	if id == "" {
		return nil, errMissingGatheringID
	}

	page.Clamp(100, 500)
	contributions, err := s.fetchContributions(
		c.Request.Context(),
		id,
		page.Limit,
	)
	if err != nil {
		return nil, err
	}

	return &pagination.Result{
		Data:  contributions,
		Total: int64(len(contributions)),
	}, nil
}

// RecentContributions handles the /recent-contributions request: the
// newest contributions across all gatherings.
func (s *Service) RecentContributions(
	c *gin.Context,
	page *pagination.Query,
) (*pagination.Result, error) {
	page.Clamp(10, 50)

	// Over-fetch: the store returns rows unordered, so the newest ones
	// are only known after the client-side sort.
	contributions := make([]gather.Contribution, 0)
	if err := s.db.Query(collContributions).
		SelectAll().
		Limit(page.Limit * 3).
		Execute(c.Request.Context(), &contributions); err != nil {
		return nil, errors.Wrap(err, "query contributions")
	}

	sortContributionsByCreatedAt(contributions)
	if len(contributions) > page.Limit {
		contributions = contributions[:page.Limit]
	}

	return &pagination.Result{
		Data:  contributions,
		Total: int64(len(contributions)),
	}, nil
}

// UserContributions handles the /user/:address/contributions request.
func (s *Service) UserContributions(
	c *gin.Context,
	page *pagination.Query,
) (*pagination.Result, error) {
	address := c.Param("address")
	if address == "" {
		return nil, errMissingAddress
	}

	page.Clamp(50, 100)
	contributions := make([]gather.Contribution, 0)
	if err := s.db.Query(collContributions).
		WhereEquals("contributor", address).
		SelectAll().
		Limit(page.Limit).
		Execute(c.Request.Context(), &contributions); err != nil {
		return nil, errors.Wrap(err, "query contributions")
	}

	sortContributionsByCreatedAt(contributions)

	return &pagination.Result{
		Data:  contributions,
		Total: int64(len(contributions)),
	}, nil
}

func (s *Service) fetchContributions(
	ctx context.Context,
	gatheringID string,
	limit int,
) ([]gather.Contribution, error) {
	contributions := make([]gather.Contribution, 0)
	if err := s.db.Query(collContributions).
		WhereEquals("gathering_id", gatheringID).
		SelectAll().
		Limit(limit).
		Execute(ctx, &contributions); err != nil {
		return nil, errors.Wrap(err, "query contributions")
	}

	sortContributionsByCreatedAt(contributions)
	return contributions, nil
}

func sortContributionsByCreatedAt(cs []gather.Contribution) {
	sort.Slice(cs, func(i, j int) bool {
		return cs[i].CreatedAt > cs[j].CreatedAt
	})
}
