package printing

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DevicePrinter is a printer reported by a client computer.
type DevicePrinter struct {
	Name      string `json:"name" validate:"required"`
	Address   string `json:"address,omitempty"`
	IsDefault bool   `json:"is_default"`
	Online    bool   `json:"online"`
}

// DeviceRegistry caches, per client computer, the printers it last reported.
// Entries expire after the registry TTL unless re-registered.
type DeviceRegistry interface {
	Register(ctx context.Context, computerID string, printers []DevicePrinter) error
	Lookup(ctx context.Context, computerID string) ([]DevicePrinter, error)
}

// ── Redis ─────────────────────────────────────────────────────────────────────

const deviceKeyPrefix = "printing:device:"

type RedisDeviceRegistry struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisDeviceRegistry(rdb *redis.Client, ttl time.Duration) *RedisDeviceRegistry {
	return &RedisDeviceRegistry{rdb: rdb, ttl: ttl}
}

func (r *RedisDeviceRegistry) Register(ctx context.Context, computerID string, printers []DevicePrinter) error {
	data, err := json.Marshal(printers)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, deviceKeyPrefix+computerID, data, r.ttl).Err()
}

func (r *RedisDeviceRegistry) Lookup(ctx context.Context, computerID string) ([]DevicePrinter, error) {
	data, err := r.rdb.Get(ctx, deviceKeyPrefix+computerID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var printers []DevicePrinter
	if err := json.Unmarshal(data, &printers); err != nil {
		return nil, err
	}
	return printers, nil
}

// ── In-memory ─────────────────────────────────────────────────────────────────

type memoryEntry struct {
	printers  []DevicePrinter
	expiresAt time.Time
}

// MemoryDeviceRegistry is used when Redis is unavailable and in tests.
type MemoryDeviceRegistry struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemoryDeviceRegistry(ttl time.Duration) *MemoryDeviceRegistry {
	return &MemoryDeviceRegistry{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

func (m *MemoryDeviceRegistry) Register(_ context.Context, computerID string, printers []DevicePrinter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, id)
		}
	}
	cp := append([]DevicePrinter(nil), printers...)
	m.entries[computerID] = memoryEntry{printers: cp, expiresAt: now.Add(m.ttl)}
	return nil
}

func (m *MemoryDeviceRegistry) Lookup(_ context.Context, computerID string) ([]DevicePrinter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[computerID]
	if !ok {
		return nil, nil
	}
	if m.now().After(e.expiresAt) {
		delete(m.entries, computerID)
		return nil, nil
	}
	return append([]DevicePrinter(nil), e.printers...), nil
}
