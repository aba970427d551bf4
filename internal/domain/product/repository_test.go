package product

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktabat-alamal/storefront/internal/docstore"
)

func seed(t *testing.T, r *Repository, p Product) string {
	t.Helper()
	id, err := r.Create(context.Background(), p)
	require.NoError(t, err)
	return id
}

func TestRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(docstore.NewMemory())

	id := seed(t, repo, Product{
		Name:        "مصحف التجويد",
		Description: "مصحف بأحكام التجويد الملونة",
		Price:       decimal.RequireFromString("85.00"),
		Stock:       25,
		Category:    "كتب",
		Images:      []string{"/img/quran.jpg"},
	})

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "مصحف التجويد", got.Name)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("85.00")))
	assert.Equal(t, 25, got.Stock)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestRepository_GetMissing(t *testing.T) {
	repo := NewRepository(docstore.NewMemory())

	_, err := repo.GetByID(context.Background(), "nope")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_ListByCategory(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(docstore.NewMemory())

	seed(t, repo, Product{Name: "كتاب", Category: "كتب", Price: decimal.New(10, 0)})
	seed(t, repo, Product{Name: "قلم", Category: "قرطاسية", Price: decimal.New(5, 0)})
	seed(t, repo, Product{Name: "أطلس", Category: "كتب", Price: decimal.New(20, 0)})

	books, err := repo.List(ctx, ListQuery{Category: "كتب"})
	require.NoError(t, err)
	assert.Len(t, books, 2)

	// "all" and empty behave identically: no category filter.
	all, err := repo.List(ctx, ListQuery{Category: "all"})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	unfiltered, err := repo.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, unfiltered, 3)
}

func TestRepository_ListSearch(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(docstore.NewMemory())

	seed(t, repo, Product{Name: "Atlas of History", Description: "maps", Price: decimal.New(1, 0)})
	seed(t, repo, Product{Name: "Notebook", Description: "an atlas-sized pad", Price: decimal.New(1, 0)})
	seed(t, repo, Product{Name: "Pen", Description: "ink", Price: decimal.New(1, 0)})

	// Case-insensitive, matches name or description.
	got, err := repo.List(ctx, ListQuery{Search: "ATLAS"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	none, err := repo.List(ctx, ListQuery{Search: "globe"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(docstore.NewMemory())

	id := seed(t, repo, Product{Name: "قلم", Price: decimal.New(5, 0), Stock: 10})

	newName := "قلم حبر"
	newPrice := decimal.RequireFromString("7.50")
	err := repo.Update(ctx, id, Patch{Name: &newName, Price: &newPrice})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "قلم حبر", got.Name)
	assert.True(t, got.Price.Equal(newPrice))
	assert.Equal(t, 10, got.Stock, "unpatched fields unchanged")
}

func TestRepository_UpdateEmptyPatch(t *testing.T) {
	repo := NewRepository(docstore.NewMemory())

	// An empty patch is a no-op even for a missing product.
	err := repo.Update(context.Background(), "nope", Patch{})

	assert.NoError(t, err)
}

func TestRepository_UpdateMissing(t *testing.T) {
	repo := NewRepository(docstore.NewMemory())

	name := "x"
	err := repo.Update(context.Background(), "nope", Patch{Name: &name})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_SetStock(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(docstore.NewMemory())

	id := seed(t, repo, Product{Name: "كتاب", Stock: 10, Price: decimal.New(10, 0)})

	require.NoError(t, repo.SetStock(ctx, id, 3))

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(docstore.NewMemory())

	id := seed(t, repo, Product{Name: "كتاب", Price: decimal.New(10, 0)})

	require.NoError(t, repo.Delete(ctx, id))
	require.NoError(t, repo.Delete(ctx, id), "deleting twice is fine")

	_, err := repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}
