package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"quiz-progress-service/internal/domain"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.PersistenceFailure("progress", "write")
	r.PersistenceFailure("progress", "write")
	r.ResultSaved(domain.BadgeGold)
	r.AttemptOpened()
	r.AttemptOpened()
	r.AttemptClosed()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.persistenceFailures.WithLabelValues("progress", "write")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.resultsSaved.WithLabelValues("gold")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.activeAttempts))
}
