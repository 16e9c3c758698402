package cartcache

import (
	"encoding/json"
	"log/slog"

	"github.com/0xVantrex/hillersons-spaces-sub000/internal/client/storage"
	"github.com/0xVantrex/hillersons-spaces-sub000/internal/domain"
)

const itemsKey = "cart.items"

// Cache is the durable local cart slot: the single source of UI truth
// between renders. Reads never fail; anything unreadable degrades to an
// empty list so the cart stays usable.
type Cache struct {
	kv  storage.KV
	log *slog.Logger
}

func New(kv storage.KV, log *slog.Logger) *Cache {
	return &Cache{kv: kv, log: log}
}

func (c *Cache) Read() []domain.CartItem {
	v, ok, err := c.kv.Get(itemsKey)
	if err != nil {
		c.log.Warn("local cart read failed", "err", err)
		return []domain.CartItem{}
	}
	if !ok {
		return []domain.CartItem{}
	}

	var items []domain.CartItem
	if err := json.Unmarshal([]byte(v), &items); err != nil {
		c.log.Warn("dropping corrupted local cart state", "err", err)
		_ = c.kv.Delete(itemsKey)
		return []domain.CartItem{}
	}

	return domain.CloneItems(items)
}

func (c *Cache) Write(items []domain.CartItem) error {
	data, err := json.Marshal(domain.CloneItems(items))
	if err != nil {
		return err
	}
	return c.kv.Set(itemsKey, string(data))
}

func (c *Cache) Clear() error {
	return c.Write(nil)
}
