package service

import (
	"github.com/gin-gonic/gin"

	"github.com/tia-gather/gatherd/gather"
)

// statsScanLimit bounds the platform-wide stats scan.
const statsScanLimit = 1000

type statsResp struct {
	ActiveGatherings    int     `json:"active_gatherings"`
	CompletedGatherings int     `json:"completed_gatherings"`
	TotalGatherings     int     `json:"total_gatherings"`
	TotalRaisedUtia     int64   `json:"total_raised_utia"`
	TotalRaisedTia      float64 `json:"total_raised_tia"`
	TotalContributors   int     `json:"total_contributors"`
}

// Stats handles the /stats request. Platform totals are folded from the
// same derived views the listing serves, so they can never drift from the
// contribution history.
func (s *Service) Stats(c *gin.Context) (*statsResp, error) {
	views, _, err := s.listGatherings(
		c.Request.Context(),
		"all",
		"",
		statsScanLimit,
		0,
	)
	if err != nil {
		return nil, err
	}

	resp := &statsResp{TotalGatherings: len(views)}
	for _, v := range views {
		switch v.Status {
		case gather.StatusActive:
			resp.ActiveGatherings++
		case gather.StatusCompleted:
			resp.CompletedGatherings++
		}

		resp.TotalRaisedUtia += v.CurrentAmount
		resp.TotalContributors += v.ContributorCount
	}

	resp.TotalRaisedTia = float64(resp.TotalRaisedUtia) / utiaPerTia
	return resp, nil
}
