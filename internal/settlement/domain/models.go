package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Settlement is the recorded commission split of one completed transaction.
type Settlement struct {
	ID            snowflake.ID      `json:"id" gorm:"primaryKey"`
	OrderRef      string            `json:"order_ref" gorm:"type:varchar(128);not null;uniqueIndex"`
	SellerID      string            `json:"seller_id" gorm:"type:varchar(64);not null;index"`
	RequestedTier string            `json:"requested_tier" gorm:"type:varchar(64);not null;default:''"`
	Tier          string            `json:"tier" gorm:"type:varchar(64);not null;index"`
	Price         float64           `json:"price" gorm:"not null"`
	Percentage    float64           `json:"percentage" gorm:"not null"`
	Commission    float64           `json:"commission" gorm:"not null"`
	SellerAmount  float64           `json:"seller_amount" gorm:"not null"`
	Bound         string            `json:"bound" gorm:"type:varchar(16);not null"`
	Currency      string            `json:"currency" gorm:"type:varchar(3);not null"`
	Metadata      datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"created_at" gorm:"not null"`
}

func (Settlement) TableName() string { return "settlements" }

// SellerSummary aggregates every settlement recorded for one seller.
type SellerSummary struct {
	SellerID        string  `json:"seller_id"`
	Count           int64   `json:"count"`
	GrossAmount     float64 `json:"gross_amount"`
	CommissionTotal float64 `json:"commission_total"`
	PayoutTotal     float64 `json:"payout_total"`
}

type ListFilter struct {
	SellerID string
	Tier     string
	AfterID  snowflake.ID
	Limit    int
}
