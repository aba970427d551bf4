package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(id string, price int64, stock int) Snapshot {
	return Snapshot{
		ProductID: id,
		Name:      "Book " + id,
		Category:  "books",
		Price:     decimal.NewFromInt(price),
		Stock:     stock,
		Images:    []string{"https://cdn.example.com/" + id + ".jpg"},
	}
}

func TestState_AddTwiceMergesQuantity(t *testing.T) {
	s := Empty().Add(snap("a", 10, 5), 1).Add(snap("a", 10, 5), 1)

	require.Equal(t, 1, s.Len())
	it, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, it.Quantity)
}

func TestState_AddKeepsOriginalSnapshot(t *testing.T) {
	first := snap("a", 10, 5)
	changed := snap("a", 99, 1)
	changed.Name = "renamed"

	s := Empty().Add(first, 1).Add(changed, 2)

	it, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, 3, it.Quantity)
	assert.Equal(t, "Book a", it.Name, "merge must not overwrite the stored snapshot")
	assert.True(t, decimal.NewFromInt(10).Equal(it.Price))
}

func TestState_AddDefaultsQuantityToOne(t *testing.T) {
	s := Empty().Add(snap("a", 10, 5), 0)

	it, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, it.Quantity)
}

func TestState_SetQuantityNonPositiveRemoves(t *testing.T) {
	for _, q := range []int{0, -1, -100} {
		s := Empty().Add(snap("a", 10, 5), 2).SetQuantity("a", q)
		_, ok := s.Get("a")
		assert.False(t, ok, "quantity %d must remove the item", q)
		assert.Equal(t, 0, s.Len())
	}
}

func TestState_SetQuantityAbsolute(t *testing.T) {
	s := Empty().Add(snap("a", 10, 5), 2).SetQuantity("a", 7)

	it, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, 7, it.Quantity)
}

func TestState_SetQuantityUnknownIsNoop(t *testing.T) {
	s := Empty().Add(snap("a", 10, 5), 2)
	s2 := s.SetQuantity("missing", 3)

	assert.Equal(t, s.Items(), s2.Items())
}

func TestState_RemoveUnknownIsNoop(t *testing.T) {
	s := Empty().Add(snap("a", 10, 5), 2)
	s2 := s.Remove("missing")

	assert.Equal(t, 1, s2.Len())
}

func TestState_EmptyTotals(t *testing.T) {
	s := Empty()
	assert.Equal(t, 0, s.TotalItems())
	assert.True(t, s.TotalPrice().IsZero())
}

func TestState_Scenario_SingleItemLifecycle(t *testing.T) {
	s := Empty().Add(snap("a", 10, 5), 2)
	assert.Equal(t, 2, s.TotalItems())
	assert.True(t, decimal.NewFromInt(20).Equal(s.TotalPrice()))

	s = s.Add(snap("a", 10, 5), 1)
	it, _ := s.Get("a")
	assert.Equal(t, 3, it.Quantity)
	assert.True(t, decimal.NewFromInt(30).Equal(s.TotalPrice()))

	s = s.SetQuantity("a", 0)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.TotalItems())
	assert.True(t, s.TotalPrice().IsZero())
}

func TestState_Scenario_TwoItemsAndRemove(t *testing.T) {
	s := Empty().
		Add(snap("b", 5, 10), 1).
		Add(snap("c", 7, 10), 3)

	assert.Equal(t, 4, s.TotalItems())
	assert.True(t, decimal.NewFromInt(26).Equal(s.TotalPrice()))

	s = s.Remove("b")
	assert.Equal(t, 3, s.TotalItems())
	assert.True(t, decimal.NewFromInt(21).Equal(s.TotalPrice()))
}

func TestState_ClearFromAnyState(t *testing.T) {
	s := Empty().
		Add(snap("a", 10, 5), 2).
		Add(snap("b", 5, 10), 1).
		Clear()

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.TotalItems())
	assert.True(t, s.TotalPrice().IsZero())
}

func TestState_TransitionsDoNotAliasInput(t *testing.T) {
	base := Empty().Add(snap("a", 10, 5), 1)
	_ = base.Add(snap("b", 5, 10), 1)
	_ = base.SetQuantity("a", 9)
	_ = base.Remove("a")

	// base must be unchanged by any derived transition.
	assert.Equal(t, 1, base.Len())
	it, _ := base.Get("a")
	assert.Equal(t, 1, it.Quantity)
}

func TestMarshal_RoundTrip(t *testing.T) {
	s := Empty().
		Add(snap("a", 10, 5), 2).
		Add(snap("b", 5, 10), 1)

	data, err := Marshal(s)
	require.NoError(t, err)

	restored, err := Unmarshal(data)
	require.NoError(t, err)

	want := s.Items()
	got := restored.Items()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ProductID, got[i].ProductID)
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.Equal(t, want[i].Stock, got[i].Stock)
		assert.Equal(t, want[i].Images, got[i].Images)
		assert.True(t, want[i].Price.Equal(got[i].Price))
	}
	assert.Equal(t, s.TotalItems(), restored.TotalItems())
	assert.True(t, s.TotalPrice().Equal(restored.TotalPrice()))
}

func TestUnmarshal_DropsInvalidEntries(t *testing.T) {
	payload := []byte(`{"items":[` +
		`{"productId":"a","name":"A","price":"10","stock":5,"quantity":2},` +
		`{"productId":"a","name":"A dup","price":"11","stock":5,"quantity":4},` +
		`{"productId":"z","name":"Z","price":"3","stock":1,"quantity":0}` +
		`]}`)

	s, err := Unmarshal(payload)
	require.NoError(t, err)

	require.Equal(t, 1, s.Len())
	it, _ := s.Get("a")
	assert.Equal(t, 2, it.Quantity, "first occurrence wins on duplicate IDs")
}

func TestUnmarshal_Corrupt(t *testing.T) {
	_, err := Unmarshal([]byte(`{"items":`))
	require.Error(t, err)
}
