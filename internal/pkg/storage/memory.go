package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

// Memory is an in-process Store used in tests and local development when
// no bucket is configured. It counts calls so tests can assert that storage
// was never reached.
type Memory struct {
	mu      sync.Mutex
	base    string
	objects map[string]memoryObject

	Uploads int
	Deletes int
}

type memoryObject struct {
	data        []byte
	contentType string
}

func NewMemory(publicBase string) *Memory {
	return &Memory{base: publicBase, objects: map[string]memoryObject{}}
}

func (m *Memory) Upload(_ context.Context, key string, body io.Reader, _ int64, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Uploads++
	m.objects[key] = memoryObject{data: data, contentType: contentType}
	return m.PublicURL(key), nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes++
	delete(m.objects, key)
	return nil
}

func (m *Memory) Open(_ context.Context, key string) (*Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &Object{
		Body:          io.NopCloser(bytes.NewReader(obj.data)),
		ContentType:   obj.contentType,
		ContentLength: int64(len(obj.data)),
	}, nil
}

func (m *Memory) PresignUpload(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return m.PublicURL(key) + "?presigned=1", nil
}

func (m *Memory) PublicURL(key string) string { return PublicURL(m.base, key) }

func (m *Memory) KeyFromURL(raw string) (string, bool) { return KeyFromURL(m.base, raw) }

// Calls returns the number of Upload and Delete calls made so far.
func (m *Memory) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Uploads + m.Deletes
}

// Has reports whether key is stored.
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}
