package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/marketkart/backoffice-backend/pkg/config"
	"github.com/marketkart/backoffice-backend/pkg/db/models"
	pkgerrors "github.com/marketkart/backoffice-backend/pkg/errors"
	"github.com/marketkart/backoffice-backend/pkg/logger"
	"github.com/marketkart/backoffice-backend/pkg/money"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// cache is the slice of the redis client the settings service needs. A nil
// cache disables caching entirely.
type cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SettingsKey() string
}

// Service reads and updates the platform settings singleton.
type Service interface {
	Get(ctx context.Context) (*models.AppSettings, error)
	Update(ctx context.Context, input UpdateInput) (*models.AppSettings, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	cache    cache
	cacheTTL time.Duration
	defaults config.CommissionConfig
	logg     *logger.Logger
}

// UpdateInput carries the admin-editable settings fields. Rates are
// percentages (0-100); the km rate is a currency amount per kilometer.
type UpdateInput struct {
	SellerCommissionRate      decimal.Decimal `json:"seller_commission_rate"`
	DeliveryBoyCommissionRate decimal.Decimal `json:"delivery_boy_commission_rate"`
	MinimumWithdrawal         decimal.Decimal `json:"minimum_withdrawal"`
	IsDistanceBased           bool            `json:"is_distance_based"`
	DeliveryBoyKmRate         decimal.Decimal `json:"delivery_boy_km_rate"`
}

// NewService wires a settings service. cache may be nil.
func NewService(repo Repository, tx txRunner, cacheClient cache, cfg config.CommissionConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		cache:    cacheClient,
		cacheTTL: cfg.SettingsCacheTTL,
		defaults: cfg,
		logg:     logg,
	}, nil
}

// Get returns the settings singleton, creating it with platform defaults on
// first read. The lazy create runs inside a transaction so two racing first
// reads produce a single row.
func (s *service) Get(ctx context.Context) (*models.AppSettings, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	settings, err := s.repo.Find(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings, err = s.createDefaults(ctx)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settings")
	}

	s.warmCache(ctx, settings)
	return settings, nil
}

func (s *service) createDefaults(ctx context.Context) (*models.AppSettings, error) {
	settings := &models.AppSettings{
		ID:                        models.SettingsSingletonID,
		SellerCommissionRate:      decimal.NewFromFloat(s.defaults.DefaultSellerRate),
		DeliveryBoyCommissionRate: decimal.NewFromFloat(s.defaults.DefaultDeliveryRate),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.Find(ctx)
		if err == nil {
			settings = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return repo.Create(ctx, settings)
	})
	if err != nil {
		// A concurrent first read may have created the row between our check
		// and insert; re-read before giving up.
		if existing, readErr := s.repo.Find(ctx); readErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return settings, nil
}

// Update persists the new settings and invalidates the cache so every
// subsequent read reflects the committed values.
func (s *service) Update(ctx context.Context, input UpdateInput) (*models.AppSettings, error) {
	if err := validateUpdate(input); err != nil {
		return nil, err
	}

	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	settings.SellerCommissionRate = input.SellerCommissionRate
	settings.DeliveryBoyCommissionRate = input.DeliveryBoyCommissionRate
	settings.MinimumWithdrawalCents = money.ToCents(input.MinimumWithdrawal)
	settings.IsDistanceBased = input.IsDistanceBased
	settings.DeliveryBoyKmRate = input.DeliveryBoyKmRate

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Save(ctx, settings)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save settings")
	}

	s.invalidateCache(ctx)
	return settings, nil
}

func validateUpdate(input UpdateInput) error {
	for name, rate := range map[string]decimal.Decimal{
		"seller_commission_rate":       input.SellerCommissionRate,
		"delivery_boy_commission_rate": input.DeliveryBoyCommissionRate,
	} {
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
			return pkgerrors.New(pkgerrors.CodeValidation, "commission rate must be between 0 and 100").
				WithDetails(map[string]string{name: rate.String()})
		}
	}
	if input.MinimumWithdrawal.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum withdrawal cannot be negative")
	}
	if input.DeliveryBoyKmRate.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "per-km rate cannot be negative")
	}
	return nil
}

func (s *service) fromCache(ctx context.Context) *models.AppSettings {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, s.cache.SettingsKey())
	if err != nil || raw == "" {
		return nil
	}
	var settings models.AppSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil
	}
	return &settings
}

func (s *service) warmCache(ctx context.Context, settings *models.AppSettings) {
	if s.cache == nil || settings == nil {
		return
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.SettingsKey(), string(raw), s.cacheTTL); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "settings cache write failed")
	}
}

func (s *service) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cache.SettingsKey()); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "settings cache invalidation failed")
	}
}
