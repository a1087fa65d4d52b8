package monitoring

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMonitorCountsAndLogs(t *testing.T) {
	var buf bytes.Buffer
	monitor := New(prometheus.NewRegistry(), slog.New(slog.NewJSONHandler(&buf, nil)))
	ctx := context.Background()

	monitor.Audit(ctx, "vote_cast", map[string]any{"wish_id": "wish_1"})
	monitor.Audit(ctx, "vote_cast", nil)
	monitor.Error(ctx, "notification failed", errors.New("smtp down"), nil)

	require.Equal(t, float64(2), testutil.ToFloat64(monitor.AuditCount("vote_cast")))
	require.Equal(t, float64(1), testutil.ToFloat64(monitor.ErrorCount("notification failed")))
	require.Contains(t, buf.String(), `"event":"vote_cast"`)
	require.Contains(t, buf.String(), `"error":"smtp down"`)
}
