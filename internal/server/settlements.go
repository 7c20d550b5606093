package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	settlementdomain "github.com/smallbiznis/remag/internal/settlement/domain"
)

func (s *Server) CreateSettlement(c *gin.Context) {
	var req settlementdomain.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.OrderRef = strings.TrimSpace(req.OrderRef)
	req.SellerID = strings.TrimSpace(req.SellerID)
	req.Tier = strings.TrimSpace(req.Tier)
	req.Currency = strings.TrimSpace(req.Currency)

	resp, err := s.settlements.Record(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set(ctxKeyCommissionTier, resp.Tier)
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListSettlements(c *gin.Context) {
	var req settlementdomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.settlements.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      resp.Settlements,
		"page_info": resp.PageInfo,
	})
}

func (s *Server) GetSettlementByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.settlements.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSellerSettlementSummary(c *gin.Context) {
	resp, err := s.settlements.SellerSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isSettlementValidationError(err error) bool {
	switch err {
	case settlementdomain.ErrInvalidOrderRef,
		settlementdomain.ErrInvalidSeller,
		settlementdomain.ErrInvalidCurrency,
		settlementdomain.ErrInvalidPrice,
		settlementdomain.ErrInvalidID,
		settlementdomain.ErrInvalidPageToken:
		return true
	default:
		return false
	}
}
