package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"wishpact/contexts/impact-governance/impact-treasury/domain/entities"
	domainerrors "wishpact/contexts/impact-governance/impact-treasury/domain/errors"
	"wishpact/contexts/impact-governance/impact-treasury/ports"
	"wishpact/contracts/apperrors"
	"wishpact/internal/platform/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// accountRowID identifies the single treasury account row.
const accountRowID = 1

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func Models() []any {
	return []any{&creditModel{}, &allocationModel{}, &accountModel{}}
}

func (r *Repository) RecordCredit(ctx context.Context, credit entities.Credit) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := creditModel{
			WishID:      credit.WishID,
			Amount:      credit.Amount,
			Beneficiary: credit.Beneficiary,
			CreditedAt:  credit.CreditedAt.UTC(),
		}
		if err := tx.Create(&row).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return domainerrors.ErrAlreadyCredited
			}
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"total_funds":  gorm.Expr("treasury_account.total_funds + ?", credit.Amount),
				"credit_count": gorm.Expr("treasury_account.credit_count + ?", 1),
				"updated_at":   credit.CreditedAt.UTC(),
			}),
		}).Create(&accountModel{
			ID:          accountRowID,
			TotalFunds:  credit.Amount,
			CreditCount: 1,
			UpdatedAt:   credit.CreditedAt.UTC(),
		}).Error
	})
	if err != nil {
		return r.classify("treasury_repo_record_credit_failed", err,
			"wish_id", credit.WishID,
			"amount", credit.Amount,
		)
	}
	return nil
}

// RecordAllocation inserts the allocation row first so a repeated proposal
// reports ErrAlreadyAllocated, then applies the guarded balance update.
func (r *Repository) RecordAllocation(ctx context.Context, allocation entities.Allocation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := allocationModel{
			ProposalID:  allocation.ProposalID,
			Amount:      allocation.Amount,
			Beneficiary: allocation.Beneficiary,
			AllocatedAt: allocation.AllocatedAt.UTC(),
		}
		if err := tx.Create(&row).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return domainerrors.ErrAlreadyAllocated
			}
			return err
		}
		result := tx.Model(&accountModel{}).
			Where("id = ? AND total_funds - allocated_funds >= ?", accountRowID, allocation.Amount).
			Updates(map[string]any{
				"allocated_funds": gorm.Expr("allocated_funds + ?", allocation.Amount),
				"updated_at":      allocation.AllocatedAt.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrInsufficientFunds
		}
		return nil
	})
	if err != nil {
		return r.classify("treasury_repo_record_allocation_failed", err,
			"proposal_id", allocation.ProposalID,
			"amount", allocation.Amount,
		)
	}
	return nil
}

func (r *Repository) GetAccount(ctx context.Context) (entities.Account, error) {
	var row accountModel
	err := r.db.WithContext(ctx).Where("id = ?", accountRowID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Account{}, nil
		}
		return entities.Account{}, r.logError("treasury_repo_get_account_failed", err)
	}
	return entities.Account{
		TotalFunds:     row.TotalFunds,
		AllocatedFunds: row.AllocatedFunds,
		CreditCount:    row.CreditCount,
	}, nil
}

func (r *Repository) ListCredits(ctx context.Context, limit int) ([]entities.Credit, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []creditModel
	if err := r.db.WithContext(ctx).
		Order("credited_at DESC").
		Order("wish_id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("treasury_repo_list_credits_failed", err, "limit", limit)
	}
	items := make([]entities.Credit, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.Credit{
			WishID:      row.WishID,
			Amount:      row.Amount,
			Beneficiary: row.Beneficiary,
			CreditedAt:  row.CreditedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) classify(event string, err error, attrs ...any) error {
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return r.logError(event, err, attrs...)
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "impact-governance/impact-treasury",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("treasury repository operation failed", fields...)
	return err
}

type creditModel struct {
	WishID      string    `gorm:"column:wish_id;primaryKey"`
	Amount      int64     `gorm:"column:amount"`
	Beneficiary string    `gorm:"column:beneficiary"`
	CreditedAt  time.Time `gorm:"column:credited_at;index"`
}

func (creditModel) TableName() string {
	return "treasury_credits"
}

type allocationModel struct {
	ProposalID  uint64    `gorm:"column:proposal_id;primaryKey;autoIncrement:false"`
	Amount      int64     `gorm:"column:amount"`
	Beneficiary string    `gorm:"column:beneficiary"`
	AllocatedAt time.Time `gorm:"column:allocated_at"`
}

func (allocationModel) TableName() string {
	return "treasury_allocations"
}

type accountModel struct {
	ID             int       `gorm:"column:id;primaryKey;autoIncrement:false"`
	TotalFunds     int64     `gorm:"column:total_funds"`
	AllocatedFunds int64     `gorm:"column:allocated_funds"`
	CreditCount    int       `gorm:"column:credit_count"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (accountModel) TableName() string {
	return "treasury_account"
}

var _ ports.Repository = (*Repository)(nil)
