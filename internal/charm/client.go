// ABOUTME: Charm KV client wrapper for cloud-synced interaction records
// ABOUTME: Stores each LogRecord as JSON under an interaction: key, with SSH key auth
package charm

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/charm/kv"
)

// InteractionPrefix namespaces interaction records in the KV store
const InteractionPrefix = "interaction:"

// Config holds charm client configuration
type Config struct {
	Host     string
	DBName   string
	AutoSync bool
}

// Client wraps charm KV for storage operations
type Client struct {
	kv     *kv.KV
	config *Config
	mu     sync.Mutex
}

// NewClient creates a new charm client with the given config
func NewClient(cfg *Config) (*Client, error) {
	// kv reads the host from the environment
	os.Setenv("CHARM_HOST", cfg.Host)

	db, err := kv.OpenWithDefaults(cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	c := &Client{
		kv:     db,
		config: cfg,
	}

	if cfg.AutoSync {
		_ = db.Sync()
	}

	return c, nil
}

// Close closes the KV database
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv != nil {
		err := c.kv.Close()
		c.kv = nil
		return err
	}
	return nil
}

func (c *Client) syncIfEnabled() {
	if c.config.AutoSync {
		_ = c.kv.Sync()
	}
}

// Set stores a value with the given key
func (c *Client) Set(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv == nil {
		return fmt.Errorf("charm kv is closed")
	}
	if err := c.kv.Set([]byte(key), value); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	c.syncIfEnabled()
	return nil
}

// SetJSON marshals and stores a value as JSON
func (c *Client) SetJSON(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.Set(key, data)
}

// GetJSON loads the value at key and unmarshals it into v
func (c *Client) GetJSON(key string, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv == nil {
		return fmt.Errorf("charm kv is closed")
	}
	data, err := c.kv.Get([]byte(key))
	if err != nil {
		return fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return json.Unmarshal(data, v)
}

// ListKeys returns all keys with the given prefix
func (c *Client) ListKeys(prefix string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv == nil {
		return nil, fmt.Errorf("charm kv is closed")
	}
	keys, err := c.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	var result []string
	for _, key := range keys {
		if keyStr := string(key); strings.HasPrefix(keyStr, prefix) {
			result = append(result, keyStr)
		}
	}
	return result, nil
}

// InteractionKey generates a key for an interaction record
func InteractionKey(id string) string {
	return InteractionPrefix + id
}
