package memory

import (
	"context"
	"sync"

	"wishpact/contexts/community-experience/ranking-service/domain/ranking"
	"wishpact/contexts/community-experience/ranking-service/ports"
)

type Store struct {
	mu      sync.RWMutex
	wishes  []ranking.WishRecord
	pledges []ranking.PledgeRecord
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) PutWish(record ranking.WishRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.wishes {
		if s.wishes[i].WishID == record.WishID {
			s.wishes[i] = record
			return
		}
	}
	s.wishes = append(s.wishes, record)
}

func (s *Store) AddPledge(record ranking.PledgeRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pledges = append(s.pledges, record)
}

func (s *Store) LoadSnapshot(context.Context) (ranking.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wishes := append([]ranking.WishRecord(nil), s.wishes...)
	pledges := append([]ranking.PledgeRecord(nil), s.pledges...)
	return ranking.Snapshot{
		Users:   ranking.CollectUsers(wishes, pledges),
		Wishes:  wishes,
		Pledges: pledges,
	}, nil
}

var _ ports.SnapshotReader = (*Store)(nil)
