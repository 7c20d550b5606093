package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	commissiondomain "github.com/smallbiznis/remag/internal/commission/domain"
)

const (
	ctxKeyCommissionTier = "commission_tier"

	maxBatchQuoteItems = 100
)

type batchQuoteItem struct {
	Price *float64 `json:"price"`
	Tier  string   `json:"tier"`
}

type batchQuoteRequest struct {
	Items []batchQuoteItem `json:"items"`
}

func (s *Server) ListCommissionTiers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.commission.Tiers()})
}

func (s *Server) GetCommissionQuote(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("price"))
	if raw == "" {
		AbortWithError(c, newValidationError("price", "required", "price is required"))
		return
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		AbortWithError(c, newValidationError("price", "invalid_price", "price must be a number"))
		return
	}

	quote, err := s.quote(c, price, c.Query("tier"), "quote")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set(ctxKeyCommissionTier, quote.Tier)
	c.JSON(http.StatusOK, gin.H{"data": quote})
}

func (s *Server) CreateCommissionQuotes(c *gin.Context) {
	var req batchQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(req.Items) == 0 || len(req.Items) > maxBatchQuoteItems {
		AbortWithError(c, newValidationError("items", "invalid_items",
			fmt.Sprintf("items must contain between 1 and %d entries", maxBatchQuoteItems)))
		return
	}

	quotes := make([]commissiondomain.Quote, 0, len(req.Items))
	for i, item := range req.Items {
		field := fmt.Sprintf("items[%d].price", i)
		if item.Price == nil {
			AbortWithError(c, newValidationError(field, "required", "price is required"))
			return
		}
		quote, err := s.quote(c, *item.Price, item.Tier, "batch_quote")
		if err != nil {
			AbortWithError(c, newValidationError(field, "invalid_amount", validationErrorMessage("invalid_amount")))
			return
		}
		quotes = append(quotes, quote)
	}

	c.JSON(http.StatusOK, gin.H{"data": quotes})
}

// quote trims the tier before lookup so " premium" from a query string
// still resolves to premium.
func (s *Server) quote(c *gin.Context, price float64, tier, source string) (commissiondomain.Quote, error) {
	ctx := c.Request.Context()
	quote, err := s.commission.Quote(price, strings.TrimSpace(tier))
	if err != nil {
		s.obsMetrics.RecordInvalidAmount(ctx, source)
		return commissiondomain.Quote{}, err
	}
	s.obsMetrics.RecordQuote(ctx, quote.Tier, string(quote.Bound), quote.Commission)
	return quote, nil
}

func isCommissionValidationError(err error) bool {
	switch err {
	case commissiondomain.ErrInvalidAmount:
		return true
	default:
		return false
	}
}
