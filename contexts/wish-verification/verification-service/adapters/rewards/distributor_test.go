package rewards

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"wishpact/contexts/wish-verification/verification-service/domain/entities"
	"wishpact/internal/platform/chainbridge"

	"github.com/stretchr/testify/require"
)

func TestDistributorPostsRewardRelease(t *testing.T) {
	received := make(chan map[string]any, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		body["path"] = r.URL.Path
		received <- body
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	distributor := Distributor{Relay: chainbridge.NewClient(server.URL, chainbridge.WithBackoff(0))}
	err := distributor.DistributeRewards(context.Background(), entities.Wish{
		WishID:      "wish_1",
		CreatorID:   "creator",
		StakeAmount: 500,
		PledgeTotal: 250,
	})
	require.NoError(t, err)

	body := <-received
	require.Equal(t, "/v1/rewards/distribute", body["path"])
	require.Equal(t, "wish_1", body["wish_id"])
	require.EqualValues(t, 250, body["pledge_total"])
}
