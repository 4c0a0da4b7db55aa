package services

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/questchain/questchain-api/internal/models"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent map[string]string
	fail bool
}

func (m *recordingMailer) SendOTP(_ context.Context, to, code string) error {
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sent == nil {
		m.sent = map[string]string{}
	}
	m.sent[to] = code
	return nil
}

type memoryPhotoStore struct {
	objects    map[string][]byte
	failDelete bool
	deleted    []string
}

func newMemoryPhotoStore() *memoryPhotoStore {
	return &memoryPhotoStore{objects: map[string][]byte{}}
}

func (m *memoryPhotoStore) Upload(_ context.Context, userID uuid.UUID, filename, _ string, body io.Reader, _ int64) (models.ProfilePhoto, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return models.ProfilePhoto{}, err
	}
	key := photoKey(userID, filename)
	m.objects[key] = data
	return models.ProfilePhoto{PublicID: key, URL: "https://cdn.example.com/" + key}, nil
}

func (m *memoryPhotoStore) Delete(_ context.Context, publicID string) error {
	if m.failDelete {
		return errors.New("bucket unreachable")
	}
	delete(m.objects, publicID)
	m.deleted = append(m.deleted, publicID)
	return nil
}
