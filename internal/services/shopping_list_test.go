package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franciscosanchezn/gin-recipes-api/internal/testutil"
)

func TestShoppingListAggregate(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	cart := NewShoppingCartService(db)
	list := NewShoppingListService(db)

	user := testutil.CreateUser(t, db, "alice")
	salt := testutil.CreateIngredient(t, db, "Salt", "g")
	saltSpoon := testutil.CreateIngredient(t, db, "Salt", "tsp")
	eggs := testutil.CreateIngredient(t, db, "Eggs", "pcs")

	omelette := testutil.CreateRecipe(t, db, user, "omelette", map[uint]int{salt.ID: 5, eggs.ID: 3})
	bread := testutil.CreateRecipe(t, db, user, "bread", map[uint]int{salt.ID: 10, saltSpoon.ID: 1})
	testutil.CreateRecipe(t, db, user, "not in cart", map[uint]int{salt.ID: 100})

	_, err := cart.Add(ctx, user.ID, omelette.ID)
	require.NoError(t, err)
	_, err = cart.Add(ctx, user.ID, bread.ID)
	require.NoError(t, err)

	lines, err := list.Aggregate(ctx, user.ID)
	require.NoError(t, err)

	rendered := make([]string, len(lines))
	for i, l := range lines {
		rendered[i] = l.String()
	}
	assert.Equal(t, []string{
		"Eggs (pcs) - 3",
		"Salt (g) - 15",
		"Salt (tsp) - 1",
	}, rendered)
}

func TestShoppingListEmptyCart(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "alice")

	_, err := NewShoppingListService(db).Aggregate(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrEmptyShoppingCart)
}

func TestShoppingListIgnoresOtherUsersCarts(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	cart := NewShoppingCartService(db)

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	flour := testutil.CreateIngredient(t, db, "Flour", "g")
	pie := testutil.CreateRecipe(t, db, alice, "pie", map[uint]int{flour.ID: 200})

	_, err := cart.Add(ctx, alice.ID, pie.ID)
	require.NoError(t, err)
	_, err = cart.Add(ctx, bob.ID, pie.ID)
	require.NoError(t, err)

	lines, err := NewShoppingListService(db).Aggregate(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(200), lines[0].Total)
}
