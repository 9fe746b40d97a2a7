package jobqueue

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CourseHubApp/CourseHub/internal/pkg/cache"
)

// TestDequeueJob_MovesToProcessing verifies the BRPopLPush handoff: a
// dequeued job leaves the pending list and its id sits on the processing
// list until the worker finishes. Skips when no Redis endpoint is reachable.
func TestDequeueJob_MovesToProcessing(t *testing.T) {
	host, port, password := resolveTestRedis(t)
	configureTestCache(host, port, password)
	resetJobQueueRedis(t)
	t.Cleanup(func() { resetJobQueueRedis(t) })

	queue := NewQueue(1)
	ctx := context.Background()

	payload := EnrollmentEmailJobPayload{UserID: 7, CourseID: 42, Email: "jane@example.com"}
	enqueued, err := queue.EnqueueJob(JobTypeEnrollmentEmail, payload.ToMap())
	require.NoError(t, err)

	job, err := queue.dequeueJob(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, enqueued.ID, job.ID)
	assert.Equal(t, JobTypeEnrollmentEmail, job.Type)

	size, err := queue.GetQueueSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)

	processing, err := cache.GetClient().LRange(ctx, JobProcessingKey, 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{enqueued.ID}, processing)

	queue.removeFromProcessing(ctx, job.ID)
	processing, err = cache.GetClient().LRange(ctx, JobProcessingKey, 0, -1).Result()
	require.NoError(t, err)
	assert.Empty(t, processing)
}

// TestDequeueJob_EmptyQueue verifies the blocking pop times out with
// redis.Nil when nothing is pending.
func TestDequeueJob_EmptyQueue(t *testing.T) {
	host, port, password := resolveTestRedis(t)
	configureTestCache(host, port, password)
	resetJobQueueRedis(t)
	t.Cleanup(func() { resetJobQueueRedis(t) })

	queue := NewQueue(1)

	job, err := queue.dequeueJob(context.Background())
	assert.ErrorIs(t, err, redis.Nil)
	assert.Nil(t, job)
}

// TestDequeueJob_DanglingID verifies that an id whose job key expired is
// dropped from the processing list instead of being handed to a worker.
func TestDequeueJob_DanglingID(t *testing.T) {
	host, port, password := resolveTestRedis(t)
	configureTestCache(host, port, password)
	resetJobQueueRedis(t)
	t.Cleanup(func() { resetJobQueueRedis(t) })

	queue := NewQueue(1)
	ctx := context.Background()

	require.NoError(t, cache.GetClient().LPush(ctx, JobQueueKey, "job-gone").Err())

	job, err := queue.dequeueJob(ctx)
	assert.Error(t, err)
	assert.Nil(t, job)

	processing, err := cache.GetClient().LRange(ctx, JobProcessingKey, 0, -1).Result()
	require.NoError(t, err)
	assert.Empty(t, processing)
}
