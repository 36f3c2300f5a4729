// Package storetest holds the behaviour every store.Repository must satisfy
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/domain"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/store"
)

// Factory returns an empty repository. It is called once per subtest.
type Factory func(t *testing.T) store.Repository

// Entry returns a valid entry for tests
func Entry(id, date string, amount int64, txnType domain.TransactionType, fingerprint string) domain.Entry {
	return domain.Entry{
		ID:          id,
		Date:        date,
		Description: "desc " + id,
		Amount:      amount,
		Type:        txnType,
		CategoryID:  domain.CategoryExpenseOther,
		Source:      "bank-format-a",
		Memo:        "memo " + id,
		Fingerprint: fingerprint,
		CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Run exercises the repository contract against repositories built by newRepo
func Run(t *testing.T, newRepo Factory) {
	ctx := context.Background()

	t.Run("save and get", func(t *testing.T) {
		repo := newRepo(t)
		want := Entry("a", "2024-04-01", 1500, domain.TransactionTypeExpense, "fp-a")
		require.NoError(t, repo.SaveEntries(ctx, []domain.Entry{want}))

		got, err := repo.GetEntry(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Date, got.Date)
		assert.Equal(t, want.Description, got.Description)
		assert.Equal(t, want.Amount, got.Amount)
		assert.Equal(t, want.Type, got.Type)
		assert.Equal(t, want.CategoryID, got.CategoryID)
		assert.Equal(t, want.Source, got.Source)
		assert.Equal(t, want.Memo, got.Memo)
		assert.Equal(t, want.Fingerprint, got.Fingerprint)
		assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "createdAt %v != %v", got.CreatedAt, want.CreatedAt)
	})

	t.Run("get missing", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetEntry(ctx, "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate ID rejects batch", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.SaveEntries(ctx, []domain.Entry{
			Entry("a", "2024-04-01", 100, domain.TransactionTypeExpense, "fp-a"),
		}))

		err := repo.SaveEntries(ctx, []domain.Entry{
			Entry("b", "2024-04-02", 200, domain.TransactionTypeExpense, "fp-b"),
			Entry("a", "2024-04-03", 300, domain.TransactionTypeExpense, "fp-c"),
		})
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)

		_, err = repo.GetEntry(ctx, "b")
		assert.ErrorIs(t, err, store.ErrNotFound, "batch must not be partially saved")
	})

	t.Run("fingerprints", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.SaveEntries(ctx, []domain.Entry{
			Entry("a", "2024-04-01", 100, domain.TransactionTypeExpense, "fp-a"),
		}))

		ok, err := repo.HasFingerprint(ctx, "fp-a")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.HasFingerprint(ctx, "fp-z")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, repo.DeleteEntry(ctx, "a"))
		ok, err = repo.HasFingerprint(ctx, "fp-a")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("list filters and order", func(t *testing.T) {
		repo := newRepo(t)
		later := Entry("c", "2024-04-10", 300, domain.TransactionTypeExpense, "fp-c")
		later.CreatedAt = later.CreatedAt.Add(time.Minute)
		require.NoError(t, repo.SaveEntries(ctx, []domain.Entry{
			Entry("d", "2024-05-01", 400, domain.TransactionTypeIncome, "fp-d"),
			later,
			Entry("b", "2024-04-10", 200, domain.TransactionTypeIncome, "fp-b"),
			Entry("a", "2024-03-31", 100, domain.TransactionTypeExpense, "fp-a"),
		}))

		all, err := repo.ListEntries(ctx, store.Filter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c", "d"}, ids(all))

		april, err := repo.ListEntries(ctx, store.Filter{From: "2024-04-01", To: "2024-04-30"})
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c"}, ids(april))

		income, err := repo.ListEntries(ctx, store.Filter{Type: domain.TransactionTypeIncome})
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "d"}, ids(income))

		none, err := repo.ListEntries(ctx, store.Filter{From: "2025-01-01"})
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("delete", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.SaveEntries(ctx, []domain.Entry{
			Entry("a", "2024-04-01", 100, domain.TransactionTypeExpense, "fp-a"),
		}))

		require.NoError(t, repo.DeleteEntry(ctx, "a"))
		assert.ErrorIs(t, repo.DeleteEntry(ctx, "a"), store.ErrNotFound)
	})
}

func ids(entries []domain.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}
