package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type LeaderboardRequest struct {
	Limit  string
	Offset string
}

type LeaderboardEntryDTO struct {
	Rank             int    `json:"rank"`
	UserID           string `json:"user_id"`
	TotalPledged     int64  `json:"total_pledged"`
	DreamsCreated    int    `json:"dreams_created"`
	SuccessfulDreams int    `json:"successful_dreams"`
	SuccessRate      int    `json:"success_rate"`
}

type LeaderboardResponse struct {
	Status string `json:"status"`
	Data   struct {
		Leaderboard []LeaderboardEntryDTO `json:"leaderboard"`
		TotalUsers  int                   `json:"total_users"`
		YourRank    int                   `json:"your_rank,omitempty"`
	} `json:"data"`
}
