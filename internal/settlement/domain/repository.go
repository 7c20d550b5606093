package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, settlement *Settlement) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Settlement, error)
	FindByOrderRef(ctx context.Context, db *gorm.DB, orderRef string) (*Settlement, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Settlement, error)
	SummarizeSeller(ctx context.Context, db *gorm.DB, sellerID string) (*SellerSummary, error)
}
