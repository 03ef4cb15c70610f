package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// Reader is the read-only catalog surface the checkout core consumes.
type Reader interface {
	GetProduct(id string) (Product, bool)
	Reward(id string) (RewardTier, bool)
}

// Snapshot is an immutable, in-memory copy of the catalog.
type Snapshot struct {
	products     map[string]Product
	productOrder []string
	rewards      map[string]RewardTier
	rewardOrder  []string
}

type document struct {
	Products []Product    `yaml:"products"`
	Rewards  []RewardTier `yaml:"rewards"`
}

// NewSnapshot validates and indexes the provided products and reward tiers.
func NewSnapshot(products []Product, rewards []RewardTier) (*Snapshot, error) {
	snap := &Snapshot{
		products: make(map[string]Product, len(products)),
		rewards:  make(map[string]RewardTier, len(rewards)),
	}
	for _, product := range products {
		if err := validateProduct(product); err != nil {
			return nil, err
		}
		if _, exists := snap.products[product.ID]; exists {
			return nil, fmt.Errorf("duplicate product id %q", product.ID)
		}
		snap.products[product.ID] = product
		snap.productOrder = append(snap.productOrder, product.ID)
	}
	for _, reward := range rewards {
		if err := validateReward(reward); err != nil {
			return nil, err
		}
		if _, exists := snap.rewards[reward.ID]; exists {
			return nil, fmt.Errorf("duplicate reward id %q", reward.ID)
		}
		snap.rewards[reward.ID] = reward
		snap.rewardOrder = append(snap.rewardOrder, reward.ID)
	}
	return snap, nil
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Snapshot, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return NewSnapshot(doc.Products, doc.Rewards)
}

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Snapshot, error) {
	if strings.TrimSpace(path) == "" {
		return Parse(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

func (s *Snapshot) GetProduct(id string) (Product, bool) {
	product, ok := s.products[id]
	return product, ok
}

// Products returns products in catalog order.
func (s *Snapshot) Products() []Product {
	out := make([]Product, 0, len(s.productOrder))
	for _, id := range s.productOrder {
		out = append(out, s.products[id])
	}
	return out
}

func (s *Snapshot) Reward(id string) (RewardTier, bool) {
	reward, ok := s.rewards[id]
	return reward, ok
}

// Rewards returns reward tiers in catalog order.
func (s *Snapshot) Rewards() []RewardTier {
	out := make([]RewardTier, 0, len(s.rewardOrder))
	for _, id := range s.rewardOrder {
		out = append(out, s.rewards[id])
	}
	return out
}

func validateProduct(p Product) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("product id required")
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("product %q has negative price", p.ID)
	}
	seen := map[string]struct{}{}
	for _, option := range p.ShippingOptions {
		if option.ID == "" {
			return fmt.Errorf("product %q has shipping option without id", p.ID)
		}
		if _, dup := seen[option.ID]; dup {
			return fmt.Errorf("product %q repeats shipping option %q", p.ID, option.ID)
		}
		seen[option.ID] = struct{}{}
	}
	return nil
}

func validateReward(r RewardTier) error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("reward id required")
	}
	if r.Coins < 0 {
		return fmt.Errorf("reward %q has negative coin cost", r.ID)
	}
	if r.MinSpend.IsNegative() || r.DiscountValue.IsNegative() {
		return fmt.Errorf("reward %q has negative amounts", r.ID)
	}
	return nil
}
