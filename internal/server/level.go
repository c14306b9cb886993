package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	leveldomain "github.com/smallbiznis/branchdesk/internal/level/domain"
)

type createLevelRequest struct {
	Code          string         `json:"code"`
	Name          string         `json:"name"`
	PricePerMonth int64          `json:"price_per_month"`
	SortOrder     int            `json:"sort_order"`
	Capabilities  map[string]any `json:"capabilities"`
}

func (s *Server) CreateLevel(c *gin.Context) {
	var req createLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.levelSvc.Create(c.Request.Context(), leveldomain.CreateLevelRequest{
		Code:          strings.TrimSpace(req.Code),
		Name:          strings.TrimSpace(req.Name),
		PricePerMonth: req.PricePerMonth,
		SortOrder:     req.SortOrder,
		Capabilities:  req.Capabilities,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListLevels(c *gin.Context) {
	resp, err := s.levelSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetLevel(c *gin.Context) {
	resp, err := s.levelSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateLevelRequest struct {
	Name          *string `json:"name"`
	PricePerMonth *int64  `json:"price_per_month"`
	SortOrder     *int    `json:"sort_order"`
	Status        *string `json:"status"`
}

func (s *Server) UpdateLevel(c *gin.Context) {
	var req updateLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.levelSvc.Update(c.Request.Context(), leveldomain.UpdateLevelRequest{
		ID:            strings.TrimSpace(c.Param("id")),
		Name:          req.Name,
		PricePerMonth: req.PricePerMonth,
		SortOrder:     req.SortOrder,
		Status:        req.Status,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
