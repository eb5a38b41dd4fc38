package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jdg-tools/jdg/internal/parser"
)

// DefaultMemoryEntries is the LRU size used when none is configured.
const DefaultMemoryEntries = 1024

// Memory is an in-process LRU store.
type Memory struct {
	lru *lru.Cache[string, *parser.ClassModel]
}

// NewMemory creates an LRU store holding at most size models.
func NewMemory(size int) (*Memory, error) {
	if size <= 0 {
		size = DefaultMemoryEntries
	}
	c, err := lru.New[string, *parser.ClassModel](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &Memory{lru: c}, nil
}

func (m *Memory) Get(key string) (*parser.ClassModel, bool, error) {
	v, ok := m.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	return v.Clone(), true, nil
}

func (m *Memory) Put(key string, model *parser.ClassModel) error {
	m.lru.Add(key, model.Clone())
	return nil
}

// Len returns the number of cached models.
func (m *Memory) Len() int {
	return m.lru.Len()
}

func (m *Memory) Close() error {
	m.lru.Purge()
	return nil
}
