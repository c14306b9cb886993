package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/branchdesk/internal/actorctx"
	invoicedomain "github.com/smallbiznis/branchdesk/internal/invoice/domain"
	"github.com/smallbiznis/branchdesk/pkg/datatable"
)

func (s *Server) ListInvoices(c *gin.Context) {
	var query datatable.Query
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{Query: query})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, datatable.Response{
		Draw:            query.Draw,
		RecordsTotal:    resp.RecordsTotal,
		RecordsFiltered: resp.RecordsFiltered,
		Data:            resp.Invoices,
	})
}

func (s *Server) GetInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), invoicedomain.GetInvoiceRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type payInvoiceRequest struct {
	Method    string `json:"method"`
	Reference string `json:"reference"`
}

func (s *Server) PayInvoice(c *gin.Context) {
	if userID, ok := actorctx.UserIDFromContext(c.Request.Context()); ok {
		allowed, retryAfter := s.paymentLimiter.Allow(c.Request.Context(), userID.String())
		if !allowed {
			s.obsMetrics.RecordRateLimitDenied("invoice_pay")
			if retryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			}
			AbortWithError(c, ErrRateLimited)
			return
		}
	}

	// The body is optional; an empty POST pays with the default method.
	var req payInvoiceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	resp, err := s.invoiceSvc.Pay(c.Request.Context(), invoicedomain.PayInvoiceRequest{
		ID:        strings.TrimSpace(c.Param("id")),
		Method:    strings.TrimSpace(req.Method),
		Reference: strings.TrimSpace(req.Reference),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ValidateInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.Validate(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.Cancel(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
