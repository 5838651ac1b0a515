package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/femar/gestao/internal/jobs"
)

func samplePayload() SecurityAlertPayload {
	return SecurityAlertPayload{
		EventID:     "evt-1",
		Action:      "Upload de fatura acima do limite",
		User:        "admin@femar.org.br",
		Destination: "seguranca@femar.org.br",
		OccurredAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestNewSecurityAlertTaskRequiresEventID(t *testing.T) {
	_, err := NewSecurityAlertTask(SecurityAlertPayload{})
	assert.Error(t, err)

	task, err := NewSecurityAlertTask(samplePayload())
	require.NoError(t, err)
	assert.Equal(t, TaskTypeSecurityAlert, task.Type())
}

func TestSecurityAlertJobHandle(t *testing.T) {
	job := NewSecurityAlertJob(nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewSecurityAlertTask(samplePayload())
	require.NoError(t, err)
	assert.NoError(t, job.Handle(context.Background(), task))

	bad := asynq.NewTask(TaskTypeSecurityAlert, []byte("{not json"))
	assert.True(t, errors.Is(job.Handle(context.Background(), bad), asynq.SkipRetry))

	noDestination := samplePayload()
	noDestination.Destination = ""
	task, err = NewSecurityAlertTask(noDestination)
	require.NoError(t, err)
	assert.True(t, errors.Is(job.Handle(context.Background(), task), asynq.SkipRetry))
}

func TestClientEnqueueSecurityAlert(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	info, err := client.EnqueueSecurityAlert(context.Background(), samplePayload())
	require.NoError(t, err)
	assert.Equal(t, QueueDefault, info.Queue)
	assert.Equal(t, TaskTypeSecurityAlert, info.Type)

	pending, err := mr.List("asynq:{default}:pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestNewWorkerRequiresHandlers(t *testing.T) {
	_, err := NewWorker(WorkerConfig{})
	assert.Error(t, err)
}
