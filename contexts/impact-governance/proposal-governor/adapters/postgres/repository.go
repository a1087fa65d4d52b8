package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"wishpact/contexts/impact-governance/proposal-governor/domain/entities"
	domainerrors "wishpact/contexts/impact-governance/proposal-governor/domain/errors"
	"wishpact/contexts/impact-governance/proposal-governor/domain/services"
	"wishpact/contexts/impact-governance/proposal-governor/ports"
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

func Models() []any {
	return []any{&proposalModel{}, &ballotModel{}}
}

func (r *Repository) CreateProposal(ctx context.Context, proposal entities.Proposal) (entities.Proposal, error) {
	row := proposalModelFromEntity(proposal)
	row.ProposalID = 0
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return entities.Proposal{}, r.logError("governance_repo_create_proposal_failed", err, "proposer_id", row.ProposerID)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetProposal(ctx context.Context, proposalID uint64) (entities.Proposal, error) {
	var row proposalModel
	err := r.db.WithContext(ctx).Where("proposal_id = ?", proposalID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Proposal{}, domainerrors.ErrProposalNotFound
		}
		return entities.Proposal{}, r.logError("governance_repo_get_proposal_failed", err, "proposal_id", proposalID)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListProposals(ctx context.Context, status entities.ProposalStatus, limit int) ([]entities.Proposal, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.db.WithContext(ctx).Model(&proposalModel{})
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	var rows []proposalModel
	if err := query.Order("proposal_id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_proposals_failed", err, "status", string(status))
	}
	return toProposalEntities(rows), nil
}

// RecordBallot applies the counters, quorum and settled status in one guarded
// UPDATE so concurrent ballots serialize on the proposal row.
func (r *Repository) RecordBallot(
	ctx context.Context,
	ballot entities.Ballot,
	quorum int,
	at time.Time,
) (entities.Proposal, error) {
	if quorum <= 0 {
		quorum = services.DefaultQuorum
	}
	forDelta, againstDelta := 0, 1
	if ballot.InFavor {
		forDelta, againstDelta = 1, 0
	}

	var updated proposalModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&proposalModel{}).
			Where("proposal_id = ? AND status = ? AND voting_deadline >= ?",
				ballot.ProposalID, string(entities.ProposalStatusActive), at.UTC()).
			Updates(map[string]any{
				"votes_for":     gorm.Expr("votes_for + ?", forDelta),
				"votes_against": gorm.Expr("votes_against + ?", againstDelta),
				"total_votes":   gorm.Expr("total_votes + 1"),
				"quorum_reached": gorm.Expr(
					"CASE WHEN total_votes + 1 >= ? THEN ? ELSE quorum_reached END",
					quorum, true,
				),
				"status": gorm.Expr(
					"CASE WHEN total_votes + 1 >= ? THEN (CASE WHEN votes_for + ? > votes_against + ? THEN ? ELSE ? END) ELSE status END",
					quorum, forDelta, againstDelta,
					string(entities.ProposalStatusPassed), string(entities.ProposalStatusFailed),
				),
				"updated_at": at.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return missingOr(tx, ballot.ProposalID, domainerrors.ErrProposalNotActive)
		}
		row := ballotModelFromEntity(ballot)
		if err := tx.Create(&row).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return domainerrors.ErrDuplicateBallot
			}
			return err
		}
		return tx.Where("proposal_id = ?", ballot.ProposalID).First(&updated).Error
	})
	if err != nil {
		return entities.Proposal{}, r.classify("governance_repo_record_ballot_failed", err,
			"proposal_id", ballot.ProposalID,
			"voter_id", strings.TrimSpace(ballot.VoterID),
		)
	}
	return updated.toEntity(), nil
}

func (r *Repository) TransitionStatus(
	ctx context.Context,
	proposalID uint64,
	from entities.ProposalStatus,
	to entities.ProposalStatus,
	at time.Time,
) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&proposalModel{}).
		Where("proposal_id = ? AND status = ?", proposalID, string(from)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": at.UTC(),
		})
	if result.Error != nil {
		return false, r.logError("governance_repo_transition_failed", result.Error,
			"proposal_id", proposalID,
			"from", string(from),
			"to", string(to),
		)
	}
	if result.RowsAffected == 1 {
		return true, nil
	}
	if err := missingOr(r.db.WithContext(ctx), proposalID, nil); err != nil {
		return false, r.classify("governance_repo_transition_lookup_failed", err, "proposal_id", proposalID)
	}
	return false, nil
}

func (r *Repository) MarkExecuted(ctx context.Context, proposalID uint64, executorID string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&proposalModel{}).
		Where("proposal_id = ? AND status = ? AND executed_at IS NULL", proposalID, string(entities.ProposalStatusPassed)).
		Updates(map[string]any{
			"status":      string(entities.ProposalStatusExecuted),
			"executed_at": at.UTC(),
			"executed_by": strings.TrimSpace(executorID),
			"updated_at":  at.UTC(),
		})
	if result.Error != nil {
		return false, r.logError("governance_repo_mark_executed_failed", result.Error, "proposal_id", proposalID)
	}
	if result.RowsAffected == 1 {
		return true, nil
	}
	if err := missingOr(r.db.WithContext(ctx), proposalID, nil); err != nil {
		return false, r.classify("governance_repo_mark_executed_lookup_failed", err, "proposal_id", proposalID)
	}
	return false, nil
}

func (r *Repository) ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]entities.Proposal, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []proposalModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND voting_deadline < ?", string(entities.ProposalStatusActive), now.UTC()).
		Order("proposal_id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_expired_failed", err)
	}
	return toProposalEntities(rows), nil
}

func (r *Repository) CountByStatus(ctx context.Context) (entities.StatusCounts, error) {
	var rows []struct {
		Status string
		Count  int
	}
	if err := r.db.WithContext(ctx).
		Model(&proposalModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return entities.StatusCounts{}, r.logError("governance_repo_count_by_status_failed", err)
	}
	var counts entities.StatusCounts
	for _, row := range rows {
		counts.Add(entities.ProposalStatus(row.Status), row.Count)
	}
	return counts, nil
}

func missingOr(tx *gorm.DB, proposalID uint64, fallback error) error {
	var count int64
	if err := tx.Model(&proposalModel{}).Where("proposal_id = ?", proposalID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domainerrors.ErrProposalNotFound
	}
	return fallback
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
		"module", "impact-governance/proposal-governor",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("governance repository operation failed", fields...)
	return err
}

type proposalModel struct {
	ProposalID      uint64     `gorm:"column:proposal_id;primaryKey;autoIncrement"`
	ProposerID      string     `gorm:"column:proposer_id;index"`
	Title           string     `gorm:"column:title"`
	PlanRef         string     `gorm:"column:plan_ref"`
	AmountRequested int64      `gorm:"column:amount_requested"`
	Beneficiary     string     `gorm:"column:beneficiary"`
	Status          string     `gorm:"column:status;index"`
	VotesFor        int        `gorm:"column:votes_for"`
	VotesAgainst    int        `gorm:"column:votes_against"`
	TotalVotes      int        `gorm:"column:total_votes"`
	QuorumReached   bool       `gorm:"column:quorum_reached"`
	VotingDeadline  time.Time  `gorm:"column:voting_deadline;index"`
	ExecutedAt      *time.Time `gorm:"column:executed_at"`
	ExecutedBy      string     `gorm:"column:executed_by"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (proposalModel) TableName() string {
	return "governance_proposals"
}

func proposalModelFromEntity(proposal entities.Proposal) proposalModel {
	return proposalModel{
		ProposalID:      proposal.ProposalID,
		ProposerID:      strings.TrimSpace(proposal.ProposerID),
		Title:           proposal.Title,
		PlanRef:         proposal.PlanRef,
		AmountRequested: proposal.AmountRequested,
		Beneficiary:     strings.TrimSpace(proposal.Beneficiary),
		Status:          string(proposal.Status),
		VotesFor:        proposal.VotesFor,
		VotesAgainst:    proposal.VotesAgainst,
		TotalVotes:      proposal.TotalVotes,
		QuorumReached:   proposal.QuorumReached,
		VotingDeadline:  proposal.VotingDeadline.UTC(),
		ExecutedAt:      normalizeOptionalTime(proposal.ExecutedAt),
		ExecutedBy:      proposal.ExecutedBy,
		CreatedAt:       proposal.CreatedAt.UTC(),
		UpdatedAt:       proposal.UpdatedAt.UTC(),
	}
}

func (m proposalModel) toEntity() entities.Proposal {
	return entities.Proposal{
		ProposalID:      m.ProposalID,
		ProposerID:      m.ProposerID,
		Title:           m.Title,
		PlanRef:         m.PlanRef,
		AmountRequested: m.AmountRequested,
		Beneficiary:     m.Beneficiary,
		Status:          entities.ProposalStatus(m.Status),
		VotesFor:        m.VotesFor,
		VotesAgainst:    m.VotesAgainst,
		TotalVotes:      m.TotalVotes,
		QuorumReached:   m.QuorumReached,
		VotingDeadline:  m.VotingDeadline.UTC(),
		ExecutedAt:      normalizeOptionalTime(m.ExecutedAt),
		ExecutedBy:      m.ExecutedBy,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

type ballotModel struct {
	BallotID   string    `gorm:"column:ballot_id;primaryKey"`
	ProposalID uint64    `gorm:"column:proposal_id;uniqueIndex:idx_governance_ballots_proposal_voter"`
	VoterID    string    `gorm:"column:voter_id;uniqueIndex:idx_governance_ballots_proposal_voter"`
	InFavor    bool      `gorm:"column:in_favor"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (ballotModel) TableName() string {
	return "governance_ballots"
}

func ballotModelFromEntity(ballot entities.Ballot) ballotModel {
	return ballotModel{
		BallotID:   strings.TrimSpace(ballot.BallotID),
		ProposalID: ballot.ProposalID,
		VoterID:    strings.TrimSpace(ballot.VoterID),
		InFavor:    ballot.InFavor,
		CreatedAt:  ballot.CreatedAt.UTC(),
	}
}

func toProposalEntities(rows []proposalModel) []entities.Proposal {
	items := make([]entities.Proposal, 0, len(rows))
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

var _ ports.Repository = (*Repository)(nil)
