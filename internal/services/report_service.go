package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/metrics"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/models"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/store"
)

const (
	StatsCacheKey            = "dashboard:stats"
	DefaultInventoryPageSize = 20
	recentLimit              = 5
)

// ReportStore is the read-only side of the ledger used for reporting.
type ReportStore interface {
	ActiveLoanSummary(ctx context.Context) (int64, decimal.Decimal, decimal.Decimal, error)
	CountTransactionsByStatus(ctx context.Context, status models.TransactionStatus) (int64, error)
	CountCustomers(ctx context.Context) (int64, error)
	RecentCustomers(ctx context.Context, limit int) ([]models.Customer, error)
	RecentTransactions(ctx context.Context, limit int) ([]models.Transaction, error)
	ListInventory(ctx context.Context, p store.Page) ([]models.InventoryItem, int64, error)
}

type ReportService struct {
	store             ReportStore
	redis             *redis.Client
	cacheTTL          time.Duration
	inventoryPageSize int
	logger            *zap.Logger
	metrics           *metrics.Metrics
}

// NewReportService caches stats in redis for cacheTTL. A nil client or a
// zero TTL disables caching.
func NewReportService(st ReportStore, rdb *redis.Client, cacheTTL time.Duration, inventoryPageSize int, logger *zap.Logger, m *metrics.Metrics) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if inventoryPageSize <= 0 {
		inventoryPageSize = DefaultInventoryPageSize
	}
	return &ReportService{
		store:             st,
		redis:             rdb,
		cacheTTL:          cacheTTL,
		inventoryPageSize: inventoryPageSize,
		logger:            logger.Named("report"),
		metrics:           m,
	}
}

func (s *ReportService) cacheEnabled() bool {
	return s.redis != nil && s.cacheTTL > 0
}

// Stats summarizes the ledger for the dashboard. The aggregate queries run
// concurrently; any failure fails the whole call.
func (s *ReportService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	if s.cacheEnabled() {
		if stats, ok := s.cachedStats(ctx); ok {
			return stats, nil
		}
	}

	var stats models.DashboardStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, total, profit, err := s.store.ActiveLoanSummary(gctx)
		stats.ActiveLoansCount, stats.ActiveLoansTotal, stats.PotentialProfit = count, total, profit
		return err
	})
	g.Go(func() error {
		n, err := s.store.CountTransactionsByStatus(gctx, models.StatusOverdue)
		stats.OverdueCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.CountCustomers(gctx)
		stats.TotalCustomers = n
		return err
	})
	g.Go(func() error {
		customers, err := s.store.RecentCustomers(gctx, recentLimit)
		stats.RecentCustomers = customers
		return err
	})
	g.Go(func() error {
		txs, err := s.store.RecentTransactions(gctx, recentLimit)
		stats.RecentTransactions = txs
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if stats.RecentCustomers == nil {
		stats.RecentCustomers = []models.Customer{}
	}
	if stats.RecentTransactions == nil {
		stats.RecentTransactions = []models.Transaction{}
	}

	if s.cacheEnabled() {
		s.storeStats(ctx, &stats)
	}
	return &stats, nil
}

func (s *ReportService) cachedStats(ctx context.Context) (*models.DashboardStats, bool) {
	data, err := s.redis.Get(ctx, StatsCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("stats cache read failed", zap.Error(err))
			s.metrics.RecordStatsCache("error")
		} else {
			s.metrics.RecordStatsCache("miss")
		}
		return nil, false
	}

	var stats models.DashboardStats
	if err := json.Unmarshal(data, &stats); err != nil {
		s.logger.Warn("stats cache entry is corrupt", zap.Error(err))
		s.metrics.RecordStatsCache("error")
		return nil, false
	}
	s.metrics.RecordStatsCache("hit")
	return &stats, true
}

func (s *ReportService) storeStats(ctx context.Context, stats *models.DashboardStats) {
	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, StatsCacheKey, data, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("stats cache write failed", zap.Error(err))
	}
}

// InvalidateStats drops the cached dashboard stats after a ledger write.
func (s *ReportService) InvalidateStats(ctx context.Context) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.redis.Del(ctx, StatsCacheKey).Err(); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}

// ListInventory pages through items currently held as collateral.
func (s *ReportService) ListInventory(ctx context.Context, page int) (models.Page[models.InventoryItem], error) {
	p := store.Page{Number: page, PerPage: s.inventoryPageSize}.Normalize(s.inventoryPageSize)
	items, total, err := s.store.ListInventory(ctx, p)
	if err != nil {
		return models.Page[models.InventoryItem]{}, err
	}
	return models.NewPage(items, p.Number, p.PerPage, total), nil
}
