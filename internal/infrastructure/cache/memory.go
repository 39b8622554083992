package cache

import (
	"context"
	"sync"
	"time"

	"food-costing/internal/infrastructure/config"
	"food-costing/internal/pkg/common"

	"go.uber.org/zap"
)

// MemoryStore 行程內的成本表儲存，具備 TTL 與 LRU 淘汰
type MemoryStore struct {
	config config.SheetsConfig
	mu     sync.Mutex
	store  map[string]entry
	stats  stats
	now    func() time.Time
	done   chan struct{}
	once   sync.Once
}

// entry 緩存條目
type entry struct {
	value       []byte
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// stats 緩存統計
type stats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewMemoryStore 創建記憶體儲存並啟動清理協程
func NewMemoryStore(cfg config.SheetsConfig) *MemoryStore {
	m := &MemoryStore{
		config: cfg,
		store:  make(map[string]entry),
		now:    time.Now,
		done:   make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		go m.startCleanup()
	}

	common.LogInfo("成本表儲存已初始化",
		zap.String("backend", config.SheetsMemory),
		zap.Int("最大容量", cfg.MaxSize),
		zap.Duration("存活時間", cfg.TTL),
	)
	return m
}

// Get 取得狀態並刷新存活時間
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.store[key]
	now := m.now()
	if !ok || now.After(e.expiresAt) {
		if ok {
			delete(m.store, key)
			m.stats.evictions++
		}
		m.stats.misses++
		return nil, ErrMiss
	}

	e.lastAccess = now
	e.expiresAt = now.Add(m.config.TTL)
	e.accessCount++
	m.store[key] = e
	m.stats.hits++

	return cloneBytes(e.value), nil
}

// Set 保存狀態，容量已滿時先清理過期項目再淘汰最久未使用的項目
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.store[key]; !exists && m.config.MaxSize > 0 && len(m.store) >= m.config.MaxSize {
		if m.cleanup() == 0 {
			m.evictLRU()
		}
	}

	now := m.now()
	prev := m.store[key]
	m.store[key] = entry{
		value:       cloneBytes(value),
		expiresAt:   now.Add(m.config.TTL),
		lastAccess:  now,
		accessCount: prev.accessCount,
	}
	return nil
}

// Delete 刪除狀態
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.store[key]; !ok {
		return ErrMiss
	}
	delete(m.store, key)
	return nil
}

// startCleanup 定期清理過期項目
func (m *MemoryStore) startCleanup() {
	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanup()
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

// cleanup 清理過期的項目，呼叫端需持有鎖
func (m *MemoryStore) cleanup() int {
	now := m.now()
	count := 0
	for key, e := range m.store {
		if now.After(e.expiresAt) {
			delete(m.store, key)
			count++
			m.stats.evictions++
		}
	}

	if count > 0 {
		common.LogInfo("Cleaned up expired sheets",
			zap.Int("count", count),
			zap.Int64("total_evictions", m.stats.evictions),
			zap.Int("remaining_size", len(m.store)),
		)
	}
	return count
}

// evictLRU 淘汰最久未使用的項目，呼叫端需持有鎖
func (m *MemoryStore) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time

	for key, e := range m.store {
		if oldestKey == "" || e.lastAccess.Before(oldestAccess) {
			oldestKey = key
			oldestAccess = e.lastAccess
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
		common.LogWarn("成本表已淘汰(LRU)", zap.String("鍵", oldestKey))
	}
}

// Stats 儲存統計
func (m *MemoryStore) Stats() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]interface{}{
		"size":      len(m.store),
		"max_size":  m.config.MaxSize,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
	}
}

// Close 停止清理協程並清空儲存
func (m *MemoryStore) Close() error {
	m.once.Do(func() { close(m.done) })

	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = make(map[string]entry)
	return nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
