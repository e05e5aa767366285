package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/matthieukhl/quotedesk/internal/types"
	"go.uber.org/zap"
)

// Client keeps a transient copy of the remote inventory. Every write is
// followed by a full reload; the local copy is never patched in place.
type Client struct {
	store    types.InventoryStore
	node     *snowflake.Node
	validate *validatorv10.Validate
	log      *zap.Logger

	mu       sync.Mutex
	items    []types.InventoryItem
	inflight int
	// seq numbers refreshes in start order; applied is the newest one whose
	// list is in items
	seq     uint64
	applied uint64
}

// NewClient creates an inventory client. nodeID distinguishes concurrent
// installations when generating identifiers (0-1023).
func NewClient(store types.InventoryStore, nodeID int64, log *zap.Logger) (*Client, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create id generator: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		store:    store,
		node:     node,
		validate: NewValidator(),
		log:      log.Named("inventory"),
		items:    []types.InventoryItem{},
	}, nil
}

// Items returns a copy of the last successfully loaded list
func (c *Client) Items() []types.InventoryItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.InventoryItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Client) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// Refresh replaces the local list with the remote one. On failure the
// previous list is kept. When refreshes overlap, a response never replaces
// the list from a refresh that started later.
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	mine := c.seq
	c.inflight++
	c.mu.Unlock()

	items, err := c.store.ListInventory(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--

	if err != nil {
		c.log.Error("failed to fetch inventory", zap.Error(err))
		return fmt.Errorf("failed to fetch inventory: %w", err)
	}
	if mine < c.applied {
		c.log.Debug("dropping stale inventory response", zap.Uint64("refresh", mine))
		return nil
	}
	c.items = items
	c.applied = mine

	c.log.Debug("inventory refreshed", zap.Int("count", len(items)))
	return nil
}

// Create validates the draft, assigns a time-derived identifier, submits it
// and reloads the list. Invalid drafts never reach the network.
func (c *Client) Create(ctx context.Context, d Draft) (types.InventoryItem, error) {
	d = d.normalized()
	if err := validateDraft(c.validate, d); err != nil {
		c.log.Debug("inventory draft rejected", zap.Error(err))
		return types.InventoryItem{}, err
	}

	item := types.InventoryItem{
		ID:          c.node.Generate().String(),
		Name:        d.Name,
		Category:    string(d.Category),
		Price:       d.Price,
		Unit:        d.Unit,
		Description: d.Description,
	}

	if err := c.store.CreateInventory(ctx, item); err != nil {
		c.log.Error("failed to add inventory item", zap.String("name", item.Name), zap.Error(err))
		return types.InventoryItem{}, fmt.Errorf("failed to add inventory item: %w", err)
	}

	c.log.Info("inventory item added", zap.String("id", item.ID), zap.String("name", item.Name))

	if err := c.Refresh(ctx); err != nil {
		return item, fmt.Errorf("item %s added but reload failed: %w", item.ID, err)
	}
	return item, nil
}

// Delete removes an item remotely and reloads the list. A failed delete
// leaves the local list untouched and skips the reload.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.store.DeleteInventory(ctx, id); err != nil {
		c.log.Error("failed to delete inventory item", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete inventory item %s: %w", id, err)
	}

	c.log.Info("inventory item deleted", zap.String("id", id))

	if err := c.Refresh(ctx); err != nil {
		return fmt.Errorf("item %s deleted but reload failed: %w", id, err)
	}
	return nil
}

// Import creates drafts one at a time and stops at the first failure. It
// returns how many were created.
func (c *Client) Import(ctx context.Context, drafts []Draft) (int, error) {
	for i, d := range drafts {
		if _, err := c.Create(ctx, d); err != nil {
			return i, fmt.Errorf("draft %d (%s): %w", i+1, d.Name, err)
		}
	}
	return len(drafts), nil
}
