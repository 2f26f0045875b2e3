package database

import (
	"context"
	"sync"
)

// MemoryDriver keeps elements in a map. The DSN is ignored.
type MemoryDriver struct {
	mu       sync.RWMutex
	elements map[int64]string
}

func (md *MemoryDriver) Connect(string) error {
	md.mu.Lock()
	defer md.mu.Unlock()
	md.elements = make(map[int64]string)
	return nil
}

func (md *MemoryDriver) Close() error {
	md.mu.Lock()
	defer md.mu.Unlock()
	md.elements = nil
	return nil
}

func (md *MemoryDriver) Reset(context.Context) error {
	md.mu.Lock()
	defer md.mu.Unlock()
	md.elements = make(map[int64]string)
	return nil
}

func (md *MemoryDriver) Insert(_ context.Context, key int64, value string) error {
	md.mu.Lock()
	defer md.mu.Unlock()
	if _, ok := md.elements[key]; ok {
		return ErrDuplicateKey
	}
	if md.elements == nil {
		md.elements = make(map[int64]string)
	}
	md.elements[key] = value
	return nil
}

func (md *MemoryDriver) Select(_ context.Context, key int64) (string, error) {
	md.mu.RLock()
	defer md.mu.RUnlock()
	value, ok := md.elements[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (md *MemoryDriver) Update(_ context.Context, key int64, value string) error {
	md.mu.Lock()
	defer md.mu.Unlock()
	if _, ok := md.elements[key]; !ok {
		return ErrNotFound
	}
	md.elements[key] = value
	return nil
}

func (md *MemoryDriver) Delete(_ context.Context, key int64) error {
	md.mu.Lock()
	defer md.mu.Unlock()
	if _, ok := md.elements[key]; !ok {
		return ErrNotFound
	}
	delete(md.elements, key)
	return nil
}
