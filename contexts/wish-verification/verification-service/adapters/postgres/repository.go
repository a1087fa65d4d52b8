package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"wishpact/contexts/wish-verification/verification-service/domain/entities"
	domainerrors "wishpact/contexts/wish-verification/verification-service/domain/errors"
	"wishpact/contexts/wish-verification/verification-service/ports"
	"wishpact/contracts/apperrors"
	"wishpact/internal/platform/db"

	"gorm.io/gorm"
)

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

// Models lists the tables owned by this repository for schema migration.
func Models() []any {
	return []any{&wishModel{}, &pledgeModel{}, &proofModel{}, &voteModel{}}
}

func (r *Repository) CreateWish(ctx context.Context, wish entities.Wish) error {
	row := wishModelFromEntity(wish)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("verification_repo_create_wish_failed", err, "wish_id", row.WishID)
	}
	return nil
}

func (r *Repository) GetWish(ctx context.Context, wishID string) (entities.Wish, error) {
	var row wishModel
	err := r.db.WithContext(ctx).
		Where("wish_id = ?", strings.TrimSpace(wishID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Wish{}, domainerrors.ErrWishNotFound
		}
		return entities.Wish{}, r.logError("verification_repo_get_wish_failed", err, "wish_id", strings.TrimSpace(wishID))
	}
	return row.toEntity(), nil
}

func (r *Repository) ListWishes(ctx context.Context) ([]entities.Wish, error) {
	var rows []wishModel
	if err := r.db.WithContext(ctx).Order("wish_id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("verification_repo_list_wishes_failed", err)
	}
	return toWishEntities(rows), nil
}

func (r *Repository) ListPledges(ctx context.Context) ([]entities.Pledge, error) {
	var rows []pledgeModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("verification_repo_list_pledges_failed", err)
	}
	items := make([]entities.Pledge, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListWishesByStatus(
	ctx context.Context,
	status entities.WishStatus,
	afterID string,
	limit int,
) ([]entities.Wish, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []wishModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND wish_id > ?", string(status), strings.TrimSpace(afterID)).
		Order("wish_id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("verification_repo_list_wishes_by_status_failed", err,
			"status", string(status),
			"after_id", strings.TrimSpace(afterID),
		)
	}
	return toWishEntities(rows), nil
}

func (r *Repository) ListOverdueWishes(
	ctx context.Context,
	status entities.WishStatus,
	now time.Time,
	limit int,
) ([]entities.Wish, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []wishModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND deadline < ?", string(status), now.UTC()).
		Order("deadline ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("verification_repo_list_overdue_wishes_failed", err, "status", string(status))
	}
	return toWishEntities(rows), nil
}

func (r *Repository) RecordPledge(ctx context.Context, pledge entities.Pledge) (entities.Wish, error) {
	var updated wishModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&wishModel{}).
			Where("wish_id = ? AND status IN ?", pledge.WishID, []string{
				string(entities.WishStatusActive),
				string(entities.WishStatusPendingVerification),
			}).
			Updates(map[string]any{
				"pledge_total": gorm.Expr("pledge_total + ?", pledge.Amount),
				"pledge_count": gorm.Expr("pledge_count + ?", 1),
				"updated_at":   pledge.CreatedAt.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return missingOr(tx, pledge.WishID, domainerrors.ErrWishFinalized)
		}
		row := pledgeModelFromEntity(pledge)
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return tx.Where("wish_id = ?", pledge.WishID).First(&updated).Error
	})
	if err != nil {
		return entities.Wish{}, r.classify("verification_repo_record_pledge_failed", err,
			"wish_id", pledge.WishID,
			"pledge_id", pledge.PledgeID,
		)
	}
	return updated.toEntity(), nil
}

func (r *Repository) HasPledge(ctx context.Context, wishID string, supporterID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&pledgeModel{}).
		Where("wish_id = ? AND supporter_id = ?", strings.TrimSpace(wishID), strings.TrimSpace(supporterID)).
		Count(&count).Error; err != nil {
		return false, r.logError("verification_repo_has_pledge_failed", err,
			"wish_id", strings.TrimSpace(wishID),
			"supporter_id", strings.TrimSpace(supporterID),
		)
	}
	return count > 0, nil
}

func (r *Repository) SubmitProof(ctx context.Context, proof entities.Proof, at time.Time) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&wishModel{}).
			Where("wish_id = ? AND status = ?", proof.WishID, string(entities.WishStatusActive)).
			Updates(map[string]any{
				"status":     string(entities.WishStatusPendingVerification),
				"updated_at": at.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return missingOr(tx, proof.WishID, domainerrors.ErrWishNotActive)
		}
		row := proofModelFromEntity(proof)
		return tx.Create(&row).Error
	})
	if err != nil {
		return r.classify("verification_repo_submit_proof_failed", err,
			"wish_id", proof.WishID,
			"proof_id", proof.ProofID,
		)
	}
	return nil
}

func (r *Repository) GetLatestProof(ctx context.Context, wishID string) (entities.Proof, error) {
	var row proofModel
	err := r.db.WithContext(ctx).
		Where("wish_id = ?", strings.TrimSpace(wishID)).
		Order("created_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Proof{}, domainerrors.ErrProofNotFound
		}
		return entities.Proof{}, r.logError("verification_repo_get_latest_proof_failed", err, "wish_id", strings.TrimSpace(wishID))
	}
	return row.toEntity(), nil
}

// InsertVote bumps the wish vote count under a status guard before inserting,
// so a vote can never land after the wish left verification and SettleWish
// sees every accepted vote. The (wish_id, voter_id) unique index rejects
// duplicates and rolls the count back with the transaction.
func (r *Repository) InsertVote(ctx context.Context, vote entities.Vote) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&wishModel{}).
			Where("wish_id = ? AND status = ?", vote.WishID, string(entities.WishStatusPendingVerification)).
			Updates(map[string]any{
				"vote_count": gorm.Expr("vote_count + ?", 1),
				"updated_at": vote.CreatedAt.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return missingOr(tx, vote.WishID, domainerrors.ErrWishNotPendingVerification)
		}
		row := voteModelFromEntity(vote)
		if err := tx.Create(&row).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return domainerrors.ErrDuplicateVote
			}
			return err
		}
		return nil
	})
	if err != nil {
		return r.classify("verification_repo_insert_vote_failed", err,
			"wish_id", vote.WishID,
			"voter_id", vote.VoterID,
		)
	}
	return nil
}

func (r *Repository) ListVotes(ctx context.Context, wishID string) ([]entities.Vote, error) {
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Where("wish_id = ?", strings.TrimSpace(wishID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("verification_repo_list_votes_failed", err, "wish_id", strings.TrimSpace(wishID))
	}
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) TransitionWishStatus(
	ctx context.Context,
	wishID string,
	from entities.WishStatus,
	to entities.WishStatus,
	at time.Time,
) (bool, error) {
	updates := map[string]any{
		"status":     string(to),
		"updated_at": at.UTC(),
	}
	if to.Terminal() {
		updates["resolved_at"] = at.UTC()
	}
	result := r.db.WithContext(ctx).
		Model(&wishModel{}).
		Where("wish_id = ? AND status = ?", strings.TrimSpace(wishID), string(from)).
		Updates(updates)
	if result.Error != nil {
		return false, r.logError("verification_repo_transition_wish_failed", result.Error,
			"wish_id", strings.TrimSpace(wishID),
			"from", string(from),
			"to", string(to),
		)
	}
	if result.RowsAffected == 1 {
		return true, nil
	}
	if err := missingOr(r.db.WithContext(ctx), strings.TrimSpace(wishID), nil); err != nil {
		return false, r.classify("verification_repo_transition_wish_lookup_failed", err, "wish_id", strings.TrimSpace(wishID))
	}
	return false, nil
}

func (r *Repository) SettleWish(
	ctx context.Context,
	wishID string,
	voteCount int,
	to entities.WishStatus,
	at time.Time,
) (entities.Wish, bool, error) {
	id := strings.TrimSpace(wishID)
	var settled wishModel
	won := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&wishModel{}).
			Where("wish_id = ? AND status = ? AND vote_count = ?", id, string(entities.WishStatusPendingVerification), voteCount).
			Updates(map[string]any{
				"status":      string(to),
				"updated_at":  at.UTC(),
				"resolved_at": at.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return missingOr(tx, id, nil)
		}
		won = true
		return tx.Where("wish_id = ?", id).First(&settled).Error
	})
	if err != nil {
		return entities.Wish{}, false, r.classify("verification_repo_settle_wish_failed", err,
			"wish_id", id,
			"vote_count", voteCount,
			"to", string(to),
		)
	}
	if !won {
		return entities.Wish{}, false, nil
	}
	return settled.toEntity(), true, nil
}

// missingOr returns ErrWishNotFound when the wish does not exist and fallback
// otherwise. It runs on the caller's transaction handle.
func missingOr(tx *gorm.DB, wishID string, fallback error) error {
	var count int64
	if err := tx.Model(&wishModel{}).Where("wish_id = ?", wishID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domainerrors.ErrWishNotFound
	}
	return fallback
}

// classify passes domain errors through and logs infrastructure failures.
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
		"module", "wish-verification/verification-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("verification repository operation failed", fields...)
	return err
}

type wishModel struct {
	WishID        string     `gorm:"column:wish_id;primaryKey"`
	CreatorID     string     `gorm:"column:creator_id;index"`
	Title         string     `gorm:"column:title"`
	StakeAmount   int64      `gorm:"column:stake_amount"`
	PledgeTotal   int64      `gorm:"column:pledge_total"`
	PledgeCount   int        `gorm:"column:pledge_count"`
	VoteCount     int        `gorm:"column:vote_count;not null;default:0"`
	Deadline      time.Time  `gorm:"column:deadline;index"`
	ProofMethod   string     `gorm:"column:proof_method"`
	Status        string     `gorm:"column:status;index"`
	ImpactPercent int        `gorm:"column:impact_percent"`
	Beneficiary   string     `gorm:"column:beneficiary"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
	ResolvedAt    *time.Time `gorm:"column:resolved_at"`
}

func (wishModel) TableName() string {
	return "wishes"
}

func wishModelFromEntity(wish entities.Wish) wishModel {
	row := wishModel{
		WishID:        strings.TrimSpace(wish.WishID),
		CreatorID:     strings.TrimSpace(wish.CreatorID),
		Title:         wish.Title,
		StakeAmount:   wish.StakeAmount,
		PledgeTotal:   wish.PledgeTotal,
		PledgeCount:   wish.PledgeCount,
		VoteCount:     wish.VoteCount,
		Deadline:      wish.Deadline.UTC(),
		ProofMethod:   string(wish.ProofMethod),
		Status:        string(wish.Status),
		ImpactPercent: wish.ImpactPercent,
		Beneficiary:   strings.TrimSpace(wish.Beneficiary),
		CreatedAt:     wish.CreatedAt.UTC(),
		UpdatedAt:     wish.UpdatedAt.UTC(),
		ResolvedAt:    normalizeOptionalTime(wish.ResolvedAt),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m wishModel) toEntity() entities.Wish {
	return entities.Wish{
		WishID:        m.WishID,
		CreatorID:     m.CreatorID,
		Title:         m.Title,
		StakeAmount:   m.StakeAmount,
		PledgeTotal:   m.PledgeTotal,
		PledgeCount:   m.PledgeCount,
		VoteCount:     m.VoteCount,
		Deadline:      m.Deadline.UTC(),
		ProofMethod:   entities.ProofMethod(m.ProofMethod),
		Status:        entities.WishStatus(m.Status),
		ImpactPercent: m.ImpactPercent,
		Beneficiary:   m.Beneficiary,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
		ResolvedAt:    normalizeOptionalTime(m.ResolvedAt),
	}
}

type pledgeModel struct {
	PledgeID    string    `gorm:"column:pledge_id;primaryKey"`
	WishID      string    `gorm:"column:wish_id;index:idx_wish_pledges_wish_supporter"`
	SupporterID string    `gorm:"column:supporter_id;index:idx_wish_pledges_wish_supporter"`
	Amount      int64     `gorm:"column:amount"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (pledgeModel) TableName() string {
	return "wish_pledges"
}

func pledgeModelFromEntity(pledge entities.Pledge) pledgeModel {
	return pledgeModel{
		PledgeID:    strings.TrimSpace(pledge.PledgeID),
		WishID:      strings.TrimSpace(pledge.WishID),
		SupporterID: strings.TrimSpace(pledge.SupporterID),
		Amount:      pledge.Amount,
		CreatedAt:   pledge.CreatedAt.UTC(),
	}
}

func (m pledgeModel) toEntity() entities.Pledge {
	return entities.Pledge{
		PledgeID:    m.PledgeID,
		WishID:      m.WishID,
		SupporterID: m.SupporterID,
		Amount:      m.Amount,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

type proofModel struct {
	ProofID     string    `gorm:"column:proof_id;primaryKey"`
	WishID      string    `gorm:"column:wish_id;index"`
	SubmitterID string    `gorm:"column:submitter_id"`
	Method      string    `gorm:"column:method"`
	Payload     []byte    `gorm:"column:payload"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (proofModel) TableName() string {
	return "wish_proofs"
}

func proofModelFromEntity(proof entities.Proof) proofModel {
	return proofModel{
		ProofID:     strings.TrimSpace(proof.ProofID),
		WishID:      strings.TrimSpace(proof.WishID),
		SubmitterID: strings.TrimSpace(proof.SubmitterID),
		Method:      string(proof.Method),
		Payload:     append([]byte(nil), proof.Payload...),
		CreatedAt:   proof.CreatedAt.UTC(),
	}
}

func (m proofModel) toEntity() entities.Proof {
	return entities.Proof{
		ProofID:     m.ProofID,
		WishID:      m.WishID,
		SubmitterID: m.SubmitterID,
		Method:      entities.ProofMethod(m.Method),
		Payload:     append([]byte(nil), m.Payload...),
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

type voteModel struct {
	VoteID    string    `gorm:"column:vote_id;primaryKey"`
	WishID    string    `gorm:"column:wish_id;uniqueIndex:idx_wish_votes_wish_voter"`
	VoterID   string    `gorm:"column:voter_id;uniqueIndex:idx_wish_votes_wish_voter"`
	Choice    string    `gorm:"column:choice"`
	Weight    int       `gorm:"column:weight"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (voteModel) TableName() string {
	return "wish_votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	return voteModel{
		VoteID:    strings.TrimSpace(vote.VoteID),
		WishID:    strings.TrimSpace(vote.WishID),
		VoterID:   strings.TrimSpace(vote.VoterID),
		Choice:    string(vote.Choice),
		Weight:    vote.Weight,
		CreatedAt: vote.CreatedAt.UTC(),
	}
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:    m.VoteID,
		WishID:    m.WishID,
		VoterID:   m.VoterID,
		Choice:    entities.VoteChoice(m.Choice),
		Weight:    m.Weight,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func toWishEntities(rows []wishModel) []entities.Wish {
	items := make([]entities.Wish, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

var _ ports.WishRepository = (*Repository)(nil)
