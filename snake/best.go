package snake

import (
	"strconv"
	"sync"
)

// BestKey 是最高分在存储中的键
const BestKey = "cobrinha_best"

// Store 是最高分的键值存储。
// Get 在键不存在时返回 ok=false
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// ParseBest 解析存储的最高分，非法或负数按 0 处理
func ParseBest(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Best 读取存储中的最高分
func (s *Session) Best() (int, error) {
	v, ok, err := s.store.Get(BestKey)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return ParseBest(v), nil
}

// SaveBest 当前分数超过存储的最高分时写入，返回保存后的最高分
func (s *Session) SaveBest() (best int, improved bool, err error) {
	prev, err := s.Best()
	if err != nil {
		return 0, false, err
	}
	if s.score <= prev {
		return prev, false, nil
	}
	if err := s.store.Set(BestKey, strconv.Itoa(s.score)); err != nil {
		return prev, false, err
	}
	return s.score, true, nil
}

// MemoryStore 是进程内的 Store 实现
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}
