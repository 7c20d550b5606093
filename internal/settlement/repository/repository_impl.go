package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	settlementdomain "github.com/smallbiznis/remag/internal/settlement/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() settlementdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, s *settlementdomain.Settlement) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO settlements (
			id, order_ref, seller_id, requested_tier, tier, price, percentage,
			commission, seller_amount, bound, currency, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID,
		s.OrderRef,
		s.SellerID,
		s.RequestedTier,
		s.Tier,
		s.Price,
		s.Percentage,
		s.Commission,
		s.SellerAmount,
		s.Bound,
		s.Currency,
		s.Metadata,
		s.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*settlementdomain.Settlement, error) {
	return r.findOne(ctx, db, "id = ?", id)
}

func (r *repo) FindByOrderRef(ctx context.Context, db *gorm.DB, orderRef string) (*settlementdomain.Settlement, error) {
	return r.findOne(ctx, db, "order_ref = ?", orderRef)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, where string, arg any) (*settlementdomain.Settlement, error) {
	var item settlementdomain.Settlement
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_ref, seller_id, requested_tier, tier, price, percentage,
		 commission, seller_amount, bound, currency, metadata, created_at
		 FROM settlements WHERE `+where,
		arg,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter settlementdomain.ListFilter) ([]settlementdomain.Settlement, error) {
	var items []settlementdomain.Settlement
	stmt := db.WithContext(ctx).Model(&settlementdomain.Settlement{})
	if filter.SellerID != "" {
		stmt = stmt.Where("seller_id = ?", filter.SellerID)
	}
	if filter.Tier != "" {
		stmt = stmt.Where("tier = ?", filter.Tier)
	}
	if filter.AfterID != 0 {
		stmt = stmt.Where("id > ?", filter.AfterID)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	if err := stmt.Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) SummarizeSeller(ctx context.Context, db *gorm.DB, sellerID string) (*settlementdomain.SellerSummary, error) {
	var summary settlementdomain.SellerSummary
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS count,
		 COALESCE(SUM(price), 0) AS gross_amount,
		 COALESCE(SUM(commission), 0) AS commission_total,
		 COALESCE(SUM(seller_amount), 0) AS payout_total
		 FROM settlements WHERE seller_id = ?`,
		sellerID,
	).Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	summary.SellerID = sellerID
	return &summary, nil
}
