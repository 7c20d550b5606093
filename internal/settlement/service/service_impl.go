package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/remag/internal/clock"
	commissiondomain "github.com/smallbiznis/remag/internal/commission/domain"
	"github.com/smallbiznis/remag/internal/config"
	obsmetrics "github.com/smallbiznis/remag/internal/observability/metrics"
	"github.com/smallbiznis/remag/internal/ratelimit"
	settlementdomain "github.com/smallbiznis/remag/internal/settlement/domain"
	"github.com/smallbiznis/remag/pkg/db"
	"github.com/smallbiznis/remag/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	keySettlementLock = "settlement:lock:%s"

	maxOrderRefLen = 128
	maxSellerIDLen = 64
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    settlementdomain.Repository
	Engine  commissiondomain.Engine
	Clock   clock.Clock
	Config  config.Config
	Locker  *ratelimit.Locker   `optional:"true"`
	Metrics *obsmetrics.Metrics `optional:"true"`
}

// orderLocker serialises Record calls for one order reference.
type orderLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	repo            settlementdomain.Repository
	engine          commissiondomain.Engine
	clock           clock.Clock
	locker          orderLocker
	metrics         *obsmetrics.Metrics
	defaultCurrency string
	lockTTL         time.Duration
}

func New(p Params) settlementdomain.Service {
	currency := strings.ToUpper(strings.TrimSpace(p.Config.Settlement.DefaultCurrency))
	if currency == "" {
		currency = "EUR"
	}
	lockTTL := time.Duration(p.Config.Settlement.LockTTLSeconds) * time.Second
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	c := p.Clock
	if c == nil {
		c = clock.NewSystemClock()
	}

	svc := &Service{
		db:              p.DB,
		log:             p.Log.Named("settlement.service"),
		genID:           p.GenID,
		repo:            p.Repo,
		engine:          p.Engine,
		clock:           c,
		metrics:         p.Metrics,
		defaultCurrency: currency,
		lockTTL:         lockTTL,
	}
	if p.Locker != nil {
		svc.locker = p.Locker
	}
	return svc
}

func (s *Service) Record(ctx context.Context, req settlementdomain.RecordRequest) (*settlementdomain.Settlement, error) {
	orderRef := strings.TrimSpace(req.OrderRef)
	if orderRef == "" || len(orderRef) > maxOrderRefLen {
		return nil, settlementdomain.ErrInvalidOrderRef
	}

	sellerID := strings.TrimSpace(req.SellerID)
	if sellerID == "" || len(sellerID) > maxSellerIDLen {
		return nil, settlementdomain.ErrInvalidSeller
	}

	if req.Price == nil {
		return nil, settlementdomain.ErrInvalidPrice
	}

	currency, err := s.normalizeCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	requestedTier := strings.TrimSpace(req.Tier)
	quote, err := s.engine.Quote(*req.Price, requestedTier)
	if err != nil {
		s.metrics.RecordInvalidAmount(ctx, "settlement")
		return nil, err
	}

	if s.locker != nil {
		key := fmt.Sprintf(keySettlementLock, orderRef)
		token, ok, err := s.locker.TryLock(ctx, key, s.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire settlement lock: %w", err)
		}
		if !ok {
			return nil, settlementdomain.ErrSettlementInProgress
		}
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
				s.log.Warn("release settlement lock failed", zap.String("order_ref", orderRef), zap.Error(err))
			}
		}()
	}

	existing, err := s.repo.FindByOrderRef(ctx, s.db, orderRef)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, settlementdomain.ErrDuplicateOrder
	}

	entity := &settlementdomain.Settlement{
		ID:            s.genID.Generate(),
		OrderRef:      orderRef,
		SellerID:      sellerID,
		RequestedTier: requestedTier,
		Tier:          quote.Tier,
		Price:         quote.Price,
		Percentage:    quote.Rule.Percentage,
		Commission:    quote.Commission,
		SellerAmount:  quote.SellerAmount,
		Bound:         string(quote.Bound),
		Currency:      currency,
		CreatedAt:     s.clock.Now().UTC(),
	}
	if req.Metadata != nil {
		entity.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, settlementdomain.ErrDuplicateOrder
		}
		return nil, err
	}

	fields := []zap.Field{
		zap.String("settlement_id", entity.ID.String()),
		zap.String("order_ref", orderRef),
		zap.String("seller_id", sellerID),
		zap.String("tier", entity.Tier),
		zap.Float64("price", entity.Price),
		zap.Float64("commission", entity.Commission),
		zap.Float64("seller_amount", entity.SellerAmount),
	}
	if quote.FloorExceedsPrice {
		s.log.Warn("settlement recorded with negative seller payout", fields...)
	} else {
		s.log.Info("settlement recorded", fields...)
	}
	s.metrics.RecordSettlement(ctx, entity.Tier, entity.Bound)

	return entity, nil
}

func (s *Service) Get(ctx context.Context, id string) (*settlementdomain.Settlement, error) {
	settlementID, err := parseID(id)
	if err != nil {
		return nil, settlementdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, settlementID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, settlementdomain.ErrNotFound
	}
	return item, nil
}

func (s *Service) List(ctx context.Context, req settlementdomain.ListRequest) (*settlementdomain.ListResponse, error) {
	page := pagination.Pagination{PageToken: strings.TrimSpace(req.PageToken), PageSize: req.PageSize}.Normalize()

	filter := settlementdomain.ListFilter{
		SellerID: strings.TrimSpace(req.SellerID),
		Tier:     strings.TrimSpace(req.Tier),
		Limit:    page.PageSize + 1,
	}
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, settlementdomain.ErrInvalidPageToken
		}
		afterID, err := parseID(cursor.ID)
		if err != nil {
			return nil, settlementdomain.ErrInvalidPageToken
		}
		filter.AfterID = afterID
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, page.PageSize, func(item settlementdomain.Settlement) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: item.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if len(items) > page.PageSize {
		items = items[:page.PageSize]
	}
	if items == nil {
		items = []settlementdomain.Settlement{}
	}

	return &settlementdomain.ListResponse{
		Settlements: items,
		PageInfo:    *pageInfo,
	}, nil
}

func (s *Service) SellerSummary(ctx context.Context, sellerID string) (*settlementdomain.SellerSummary, error) {
	sellerID = strings.TrimSpace(sellerID)
	if sellerID == "" || len(sellerID) > maxSellerIDLen {
		return nil, settlementdomain.ErrInvalidSeller
	}
	return s.repo.SummarizeSeller(ctx, s.db, sellerID)
}

func (s *Service) normalizeCurrency(raw string) (string, error) {
	currency := strings.ToUpper(strings.TrimSpace(raw))
	if currency == "" {
		return s.defaultCurrency, nil
	}
	if len(currency) != 3 {
		return "", settlementdomain.ErrInvalidCurrency
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return "", settlementdomain.ErrInvalidCurrency
		}
	}
	return currency, nil
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
