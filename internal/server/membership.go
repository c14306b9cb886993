package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	membershipdomain "github.com/smallbiznis/branchdesk/internal/membership/domain"
	"github.com/smallbiznis/branchdesk/pkg/datatable"
)

type upgradeRequest struct {
	BranchID     string `json:"branch_id"`
	LevelID      string `json:"level_id"`
	PeriodMonths int    `json:"period_months"`
}

func (s *Server) QuoteUpgrade(c *gin.Context) {
	var req upgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.membershipSvc.Quote(c.Request.Context(), membershipdomain.QuoteUpgradeRequest{
		BranchID:     strings.TrimSpace(req.BranchID),
		LevelID:      strings.TrimSpace(req.LevelID),
		PeriodMonths: req.PeriodMonths,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpgradeMembership(c *gin.Context) {
	var req upgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.membershipSvc.Upgrade(c.Request.Context(), membershipdomain.QuoteUpgradeRequest{
		BranchID:     strings.TrimSpace(req.BranchID),
		LevelID:      strings.TrimSpace(req.LevelID),
		PeriodMonths: req.PeriodMonths,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMemberships(c *gin.Context) {
	var query datatable.Query
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.membershipSvc.List(c.Request.Context(), membershipdomain.ListMembershipRequest{Query: query})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, datatable.Response{
		Draw:            query.Draw,
		RecordsTotal:    resp.RecordsTotal,
		RecordsFiltered: resp.RecordsFiltered,
		Data:            resp.Memberships,
	})
}
