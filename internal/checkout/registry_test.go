package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/nebulashop-backend/internal/payments"
	"github.com/angelmondragon/nebulashop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/nebulashop-backend/pkg/errors"
)

func TestRegistry_ReturnsOneShopPerShopper(t *testing.T) {
	reg, err := NewRegistry(1200, Dependencies{Catalog: testCatalog(t), Sessions: &fakeSessions{}, Waiter: &fakeWaiter{}})
	require.NoError(t, err)

	a, err := reg.Shop("alice")
	require.NoError(t, err)
	again, err := reg.Shop(" alice ")
	require.NoError(t, err)
	b, err := reg.Shop("bob")
	require.NoError(t, err)

	assert.Same(t, a, again)
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, int64(1200), b.State().CoinsBalance)

	_, ok := reg.Lookup("carol")
	assert.False(t, ok)

	_, err = reg.Shop("  ")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestNewRegistryValidation(t *testing.T) {
	_, err := NewRegistry(-1, Dependencies{Catalog: testCatalog(t), Sessions: &fakeSessions{}, Waiter: &fakeWaiter{}})
	assert.Error(t, err)
	_, err = NewRegistry(0, Dependencies{})
	assert.Error(t, err)
}

func TestRegistry_ShoppersWithIdenticalCartsGetDistinctSessions(t *testing.T) {
	manager, err := payments.NewManager(payments.ManagerOptions{
		Store:  payments.NewMemoryStore(),
		Delays: payments.Delays{NebulaPay: 10 * time.Millisecond},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })
	reg, err := NewRegistry(1200, Dependencies{
		Catalog:  testCatalog(t),
		Sessions: manager,
		Waiter:   payments.NewPollingWaiter(manager, 2*time.Millisecond),
	})
	require.NoError(t, err)

	states := make(map[string]State, 2)
	for _, shopperID := range []string{"alice", "bob"} {
		shop, err := reg.Shop(shopperID)
		require.NoError(t, err)
		require.NoError(t, shop.AddItem(hoodie(1)))
		require.NoError(t, shop.SetPaymentMethod(enums.PaymentMethodNebulaPay))
		state := shop.Checkout(context.Background())
		require.Equal(t, enums.CheckoutStatusSucceeded, state.CheckoutStatus, state.CheckoutError)
		states[shopperID] = state
	}

	alice, bob := states["alice"], states["bob"]
	assert.NotEqual(t, alice.PaymentSession.ID, bob.PaymentSession.ID)
	assert.NotEqual(t, alice.PaymentSession.IdempotencyKey, bob.PaymentSession.IdempotencyKey)
	require.Len(t, bob.Orders, 1)
	assert.NotEqual(t, alice.Orders[0].ID, bob.Orders[0].ID)

	aliceShop, _ := reg.Lookup("alice")
	_, found := aliceShop.Order(bob.Orders[0].ID)
	assert.False(t, found)
}

func TestRegistry_DrainWaitsForBackgroundCheckouts(t *testing.T) {
	waiter := &fakeWaiter{
		status:  enums.SessionStatusConfirmed,
		release: make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	reg, err := NewRegistry(1200, Dependencies{Catalog: testCatalog(t), Sessions: &fakeSessions{}, Waiter: waiter})
	require.NoError(t, err)
	shop, err := reg.Shop("alice")
	require.NoError(t, err)
	require.NoError(t, shop.AddItem(hoodie(1)))
	require.NoError(t, shop.SetPaymentMethod(enums.PaymentMethodNebulaPay))

	shop.StartCheckout(context.Background())
	<-waiter.entered

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, reg.Drain(ctx), context.DeadlineExceeded)

	close(waiter.release)
	require.NoError(t, reg.Drain(context.Background()))
	assert.Equal(t, enums.CheckoutStatusSucceeded, shop.State().CheckoutStatus)
}
