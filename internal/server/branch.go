package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	branchdomain "github.com/smallbiznis/branchdesk/internal/branch/domain"
	"github.com/smallbiznis/branchdesk/pkg/datatable"
)

type createBranchRequest struct {
	CustomerID  string `json:"customer_id"`
	OwnerUserID string `json:"owner_user_id"`
	Name        string `json:"name"`
	City        string `json:"city"`
	Phone       string `json:"phone"`
}

func (s *Server) CreateBranch(c *gin.Context) {
	var req createBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.branchSvc.Create(c.Request.Context(), branchdomain.CreateBranchRequest{
		CustomerID:  strings.TrimSpace(req.CustomerID),
		OwnerUserID: strings.TrimSpace(req.OwnerUserID),
		Name:        strings.TrimSpace(req.Name),
		City:        strings.TrimSpace(req.City),
		Phone:       strings.TrimSpace(req.Phone),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBranches(c *gin.Context) {
	var query datatable.Query
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.branchSvc.List(c.Request.Context(), branchdomain.ListBranchRequest{Query: query})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, datatable.Response{
		Draw:            query.Draw,
		RecordsTotal:    resp.RecordsTotal,
		RecordsFiltered: resp.RecordsFiltered,
		Data:            resp.Branches,
	})
}

func (s *Server) GetBranch(c *gin.Context) {
	resp, err := s.branchSvc.GetByID(c.Request.Context(), branchdomain.GetBranchRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateBranchRequest struct {
	Name  *string `json:"name"`
	City  *string `json:"city"`
	Phone *string `json:"phone"`
}

func (s *Server) UpdateBranch(c *gin.Context) {
	var req updateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.branchSvc.Update(c.Request.Context(), branchdomain.UpdateBranchRequest{
		ID:    strings.TrimSpace(c.Param("id")),
		Name:  req.Name,
		City:  req.City,
		Phone: req.Phone,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ArchiveBranch(c *gin.Context) {
	if err := s.branchSvc.Archive(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"status": "archived"}})
}

func (s *Server) GetBranchMembership(c *gin.Context) {
	resp, err := s.membershipSvc.GetByBranch(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
