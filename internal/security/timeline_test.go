package security

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimelinePaging(t *testing.T) {
	l := NewLog(WithIDGenerator(sequentialIDs()))
	for i := 0; i < 25; i++ {
		appendEvent(t, l, "a@femar.org.br", "Login", RiskLow)
	}

	first := l.Timeline(Filter{}, 1, 0)
	assert.Len(t, first.Events, DefaultPageSize)
	assert.Equal(t, "evt-25", first.Events[0].ID)
	assert.Equal(t, 25, first.Paging.Total)
	assert.Equal(t, 2, first.Paging.TotalPages)

	second := l.Timeline(Filter{}, 2, 0)
	assert.Len(t, second.Events, 5)
	assert.Equal(t, "evt-5", second.Events[0].ID)

	beyond := l.Timeline(Filter{}, 9, 10)
	assert.Empty(t, beyond.Events)

	clamped := l.Timeline(Filter{}, 1, 500)
	assert.Equal(t, MaxPageSize, clamped.Paging.PerPage)
	assert.Len(t, clamped.Events, 25)
}

func TestTimelineHugePageIsEmpty(t *testing.T) {
	l := NewLog()
	appendEvent(t, l, "a@femar.org.br", "Login", RiskLow)

	var res Result
	require.NotPanics(t, func() { res = l.Timeline(Filter{}, 461168601842738792, 20) })
	assert.Empty(t, res.Events)
	assert.Equal(t, 1, res.Paging.Total)
}

func TestTimelineFilters(t *testing.T) {
	l := NewLog()
	appendEvent(t, l, "a@femar.org.br", "Login", RiskLow)
	appendEvent(t, l, "a@femar.org.br", "Upload", RiskHigh)

	res := l.Timeline(Filter{PendingOnly: true}, 1, 10)
	require.Len(t, res.Events, 1)
	assert.Equal(t, "Upload", res.Events[0].Action)
	assert.Equal(t, 1, res.Paging.Total)
}

func TestWriteCSV(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)}
	l := NewLog(WithClock(clock.Now), WithIDGenerator(sequentialIDs()))
	appendEvent(t, l, "a@femar.org.br", "Login", RiskLow)
	high, err := l.Append(context.Background(), NewEvent{User: "b@femar.org.br", Action: "Upload de fatura", Details: "Valor R$ 45.000,00, acima do limite", Risk: RiskHigh})
	require.NoError(t, err)
	_, err = l.Authorize(context.Background(), high.ID, "admin@femar.org.br", "Conferido")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, l.Events()))
	assert.Contains(t, buf.String(), "\r\n")

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{
		"evt-2", "2026-05-04T09:30:00Z", "b@femar.org.br", "Upload de fatura",
		"Valor R$ 45.000,00, acima do limite", "Alto", "authorized",
		"admin@femar.org.br", "2026-05-04T09:30:00Z", "Conferido",
	}, rows[1])
	assert.Equal(t, []string{
		"evt-1", "2026-05-04T09:30:00Z", "a@femar.org.br", "Login", "", "Baixo", "unflagged", "", "", "",
	}, rows[2])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
