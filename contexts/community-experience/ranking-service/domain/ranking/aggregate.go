package ranking

import (
	"sort"
	"strings"
)

// SuccessStatus is the wish status counted as a successful dream.
const SuccessStatus = "verified"

type WishRecord struct {
	WishID    string
	CreatorID string
	Status    string
}

type PledgeRecord struct {
	SupporterID string
	Amount      int64
}

type Snapshot struct {
	Users   []string
	Wishes  []WishRecord
	Pledges []PledgeRecord
}

type Entry struct {
	Rank             int
	UserID           string
	TotalPledged     int64
	DreamsCreated    int
	SuccessfulDreams int
	SuccessRate      int
}

// Aggregate ranks users by total pledged amount. Users with no wishes and no
// pledges are left out. Ties keep the order of snapshot.Users and still get
// distinct ranks.
func Aggregate(snapshot Snapshot) []Entry {
	pledged := make(map[string]int64, len(snapshot.Users))
	for _, pledge := range snapshot.Pledges {
		pledged[strings.TrimSpace(pledge.SupporterID)] += pledge.Amount
	}
	created := make(map[string]int, len(snapshot.Users))
	successful := make(map[string]int, len(snapshot.Users))
	for _, wish := range snapshot.Wishes {
		creator := strings.TrimSpace(wish.CreatorID)
		created[creator]++
		if wish.Status == SuccessStatus {
			successful[creator]++
		}
	}

	seen := make(map[string]struct{}, len(snapshot.Users))
	entries := make([]Entry, 0, len(snapshot.Users))
	for _, raw := range snapshot.Users {
		userID := strings.TrimSpace(raw)
		if userID == "" {
			continue
		}
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}
		if pledged[userID] == 0 && created[userID] == 0 {
			continue
		}
		entries = append(entries, Entry{
			UserID:           userID,
			TotalPledged:     pledged[userID],
			DreamsCreated:    created[userID],
			SuccessfulDreams: successful[userID],
			SuccessRate:      SuccessRate(successful[userID], created[userID]),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalPledged > entries[j].TotalPledged
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// SuccessRate is successful/created as a percentage rounded half up.
func SuccessRate(successful int, created int) int {
	if created <= 0 {
		return 0
	}
	return (200*successful + created) / (2 * created)
}

// CollectUsers lists every creator and supporter once, sorted by id.
func CollectUsers(wishes []WishRecord, pledges []PledgeRecord) []string {
	set := make(map[string]struct{}, len(wishes)+len(pledges))
	for _, wish := range wishes {
		if id := strings.TrimSpace(wish.CreatorID); id != "" {
			set[id] = struct{}{}
		}
	}
	for _, pledge := range pledges {
		if id := strings.TrimSpace(pledge.SupporterID); id != "" {
			set[id] = struct{}{}
		}
	}
	users := make([]string, 0, len(set))
	for id := range set {
		users = append(users, id)
	}
	sort.Strings(users)
	return users
}
