// internal/common/metrics/metrics_test.go
package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Job Metric Tests
// ==========================

func TestJobCompleted_IncrementsCounterAndObservesDuration(t *testing.T) {
	before := testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues("test-task"))

	JobCompleted("test-task", time.Now().Add(-10*time.Millisecond))

	assert.Equal(t, before+1, testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues("test-task")))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(WorkerJobDuration), 1)
}

func TestJobFailed_CountsPerErrorCode(t *testing.T) {
	before := testutil.ToFloat64(WorkerJobsFailed.WithLabelValues("test-task", "ADVISOR_API_TIMEOUT"))

	JobFailed("test-task", "ADVISOR_API_TIMEOUT")
	JobFailed("test-task", "ADVISOR_API_TIMEOUT")

	assert.Equal(t, before+2, testutil.ToFloat64(WorkerJobsFailed.WithLabelValues("test-task", "ADVISOR_API_TIMEOUT")))

	// A different code counts under its own series.
	other := testutil.ToFloat64(WorkerJobsFailed.WithLabelValues("test-task", "MERGE_FAILED"))
	JobFailed("test-task", "MERGE_FAILED")
	assert.Equal(t, other+1, testutil.ToFloat64(WorkerJobsFailed.WithLabelValues("test-task", "MERGE_FAILED")))
}
