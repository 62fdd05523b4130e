package storage

import (
	"context"
	"fmt"
	"sync"
)

// Object is a stored blob together with its content type.
type Object struct {
	Body        []byte
	ContentType string
}

// PutCall records one Put against a MemoryStore.
type PutCall struct {
	Bucket      string
	Key         string
	ContentType string
	Size        int
}

// MemoryStore is an in-process ObjectStore. It backs STORE_MODE=memory
// and the package tests.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]Object
	puts    []PutCall
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]Object)}
}

func (m *MemoryStore) Put(_ context.Context, bucket, key string, body []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]byte, len(body))
	copy(cp, body)
	m.objects[objectPath(bucket, key)] = Object{Body: cp, ContentType: contentType}
	m.puts = append(m.puts, PutCall{Bucket: bucket, Key: key, ContentType: contentType, Size: len(body)})
	return nil
}

func (m *MemoryStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.objects[objectPath(bucket, key)]
	if !ok {
		return nil, fmt.Errorf("memory: get %s/%s: %w", bucket, key, ErrNotFound)
	}
	return obj.Body, nil
}

// Object returns the stored object without copying.
func (m *MemoryStore) Object(bucket, key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[objectPath(bucket, key)]
	return obj, ok
}

// Puts returns every Put made so far, in call order.
func (m *MemoryStore) Puts() []PutCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PutCall(nil), m.puts...)
}

// Len is the number of distinct stored objects.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func objectPath(bucket, key string) string {
	return bucket + "/" + key
}
