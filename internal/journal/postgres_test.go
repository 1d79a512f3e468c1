package journal

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Set TRADESIM_TEST_POSTGRES_DSN to run against a live database.
func newTestPostgres(t *testing.T) *Postgres {
	t.Helper()

	dsn := os.Getenv("TRADESIM_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TRADESIM_TEST_POSTGRES_DSN not set")
	}
	j, err := NewPostgres(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestPostgresAppendAndList(t *testing.T) {
	j := newTestPostgres(t)
	ctx := context.Background()
	account := "acc-" + uuid.NewString()
	at := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)

	e := sampleEntry(account, "order-1", at)
	require.NoError(t, j.Append(ctx, e))
	require.NoError(t, j.Append(ctx, sampleEntry(account, "", at.Add(time.Second))))

	got, err := j.ListByAccount(ctx, account)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, e.EntryID, got[0].EntryID)
	assert.True(t, got[0].Net.Equal(e.Net))
	assert.True(t, got[0].ExecutedAt.Equal(at))
	assert.Equal(t, "", got[1].OrderID)
}
