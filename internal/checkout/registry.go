package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"

	pkgerrors "github.com/angelmondragon/nebulashop-backend/pkg/errors"
)

// Registry hands out one Shop per shopper, creating it on first use.
type Registry struct {
	deps          Dependencies
	startingCoins int64

	mu    sync.Mutex
	shops map[string]*Shop
}

func NewRegistry(startingCoins int64, deps Dependencies) (*Registry, error) {
	if startingCoins < 0 {
		return nil, fmt.Errorf("starting coins must not be negative")
	}
	deps, err := deps.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Registry{deps: deps, startingCoins: startingCoins, shops: make(map[string]*Shop)}, nil
}

// Shop returns the shopper's shop, opening a fresh one if needed.
func (r *Registry) Shop(shopperID string) (*Shop, error) {
	shopperID = strings.TrimSpace(shopperID)
	if shopperID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shopper id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if shop, ok := r.shops[shopperID]; ok {
		return shop, nil
	}
	shop, err := NewShop(shopperID, r.startingCoins, r.deps)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open shop")
	}
	r.shops[shopperID] = shop
	return shop, nil
}

// Lookup returns an existing shop without creating one.
func (r *Registry) Lookup(shopperID string) (*Shop, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	shop, ok := r.shops[strings.TrimSpace(shopperID)]
	return shop, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shops)
}

// Drain waits for every shop's background checkouts to finish. Call it after
// the HTTP server stops accepting requests and before closing the payment
// manager or the event producer.
func (r *Registry) Drain(ctx context.Context) error {
	r.mu.Lock()
	shops := make([]*Shop, 0, len(r.shops))
	for _, shop := range r.shops {
		shops = append(shops, shop)
	}
	r.mu.Unlock()

	for _, shop := range shops {
		if err := shop.Wait(ctx); err != nil {
			return fmt.Errorf("drain checkouts: %w", err)
		}
	}
	return nil
}
