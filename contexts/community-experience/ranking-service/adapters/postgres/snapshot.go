package postgresadapter

import (
	"context"
	"log/slog"

	"wishpact/contexts/community-experience/ranking-service/domain/ranking"
	"wishpact/contexts/community-experience/ranking-service/ports"

	"gorm.io/gorm"
)

// SnapshotReader reads the wish and pledge tables owned by the verification
// service. It never writes.
type SnapshotReader struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewSnapshotReader(db *gorm.DB, logger *slog.Logger) *SnapshotReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotReader{db: db, logger: logger}
}

func (r *SnapshotReader) LoadSnapshot(ctx context.Context) (ranking.Snapshot, error) {
	var wishes []struct {
		WishID    string
		CreatorID string
		Status    string
	}
	if err := r.db.WithContext(ctx).
		Table("wishes").
		Select("wish_id, creator_id, status").
		Order("wish_id ASC").
		Scan(&wishes).Error; err != nil {
		return ranking.Snapshot{}, r.logError("ranking_snapshot_wishes_failed", err)
	}

	var pledges []struct {
		SupporterID string
		Amount      int64
	}
	if err := r.db.WithContext(ctx).
		Table("wish_pledges").
		Select("supporter_id, amount").
		Order("pledge_id ASC").
		Scan(&pledges).Error; err != nil {
		return ranking.Snapshot{}, r.logError("ranking_snapshot_pledges_failed", err)
	}

	snapshot := ranking.Snapshot{
		Wishes:  make([]ranking.WishRecord, 0, len(wishes)),
		Pledges: make([]ranking.PledgeRecord, 0, len(pledges)),
	}
	for _, row := range wishes {
		snapshot.Wishes = append(snapshot.Wishes, ranking.WishRecord{
			WishID:    row.WishID,
			CreatorID: row.CreatorID,
			Status:    row.Status,
		})
	}
	for _, row := range pledges {
		snapshot.Pledges = append(snapshot.Pledges, ranking.PledgeRecord{
			SupporterID: row.SupporterID,
			Amount:      row.Amount,
		})
	}
	snapshot.Users = ranking.CollectUsers(snapshot.Wishes, snapshot.Pledges)
	return snapshot, nil
}

func (r *SnapshotReader) logError(event string, err error) error {
	r.logger.Error("ranking snapshot read failed",
		"event", event,
		"module", "community-experience/ranking-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	return err
}

var _ ports.SnapshotReader = (*SnapshotReader)(nil)
