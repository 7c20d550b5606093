package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/remag/pkg/db/pagination"
)

type Service interface {
	Record(ctx context.Context, req RecordRequest) (*Settlement, error)
	Get(ctx context.Context, id string) (*Settlement, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	SellerSummary(ctx context.Context, sellerID string) (*SellerSummary, error)
}

type RecordRequest struct {
	OrderRef string         `json:"order_ref"`
	SellerID string         `json:"seller_id"`
	Tier     string         `json:"tier"`
	Price    *float64       `json:"price"`
	Currency string         `json:"currency"`
	Metadata map[string]any `json:"metadata"`
}

type ListRequest struct {
	SellerID  string `form:"seller_id"`
	Tier      string `form:"tier"`
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
}

type ListResponse struct {
	Settlements []Settlement `json:"settlements"`
	pagination.PageInfo
}

var (
	ErrInvalidOrderRef      = errors.New("invalid_order_ref")
	ErrInvalidSeller        = errors.New("invalid_seller")
	ErrInvalidCurrency      = errors.New("invalid_currency")
	ErrInvalidPrice         = errors.New("invalid_price")
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidPageToken     = errors.New("invalid_page_token")
	ErrDuplicateOrder       = errors.New("duplicate_order")
	ErrSettlementInProgress = errors.New("settlement_in_progress")
	ErrNotFound             = errors.New("not_found")
)
