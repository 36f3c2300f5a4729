package firestore

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/domain"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/store"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/store/storetest"
)

func TestChunks(t *testing.T) {
	entries := make([]domain.Entry, 1001)
	got := chunks(entries, maxWritesPerTransaction)
	require.Len(t, got, 3)
	assert.Len(t, got[0], 500)
	assert.Len(t, got[1], 500)
	assert.Len(t, got[2], 1)

	assert.Empty(t, chunks(nil, maxWritesPerTransaction))
}

func TestEntryDocRoundTrip(t *testing.T) {
	e := storetest.Entry("a", "2024-04-01", 1500, domain.TransactionTypeExpense, "fp")
	assert.Equal(t, e, toDoc(e).entry())
}

// TestRepositoryContract runs against the Firestore emulator when
// FIRESTORE_EMULATOR_HOST is set. Each subtest uses its own collection.
func TestRepositoryContract(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	storetest.Run(t, func(t *testing.T) store.Repository {
		collection := fmt.Sprintf("entries-test-%s", uuid.NewString())
		c, err := NewClient(context.Background(), "kakeibo-test", "", WithCollection(collection))
		require.NoError(t, err)
		t.Cleanup(func() { c.Close() })
		return c
	})
}
