package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	employeedomain "github.com/smallbiznis/branchdesk/internal/employee/domain"
	"github.com/smallbiznis/branchdesk/pkg/datatable"
)

type createEmployeeRequest struct {
	BranchID string `json:"branch_id"`
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
}

func (s *Server) CreateEmployee(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.employeeSvc.Create(c.Request.Context(), employeedomain.CreateEmployeeRequest{
		BranchID: strings.TrimSpace(req.BranchID),
		UserID:   strings.TrimSpace(req.UserID),
		FullName: strings.TrimSpace(req.FullName),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListEmployees(c *gin.Context) {
	var query datatable.Query
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.employeeSvc.List(c.Request.Context(), employeedomain.ListEmployeeRequest{Query: query})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, datatable.Response{
		Draw:            query.Draw,
		RecordsTotal:    resp.RecordsTotal,
		RecordsFiltered: resp.RecordsFiltered,
		Data:            resp.Employees,
	})
}

func (s *Server) DeactivateEmployee(c *gin.Context) {
	if err := s.employeeSvc.Deactivate(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"status": "inactive"}})
}
