package application_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"veilbot/application"
	"veilbot/application/dto"
	"veilbot/infrastructure"
	"veilbot/repository/testutil"
)

// mockPresenter records every presenter call. editErrs are returned by EditVeil in order.
type mockPresenter struct {
	mu          sync.Mutex
	nextID      int64
	posts       []dto.VeilDisplayState
	edits       []dto.VeilDisplayState
	deletes     []int64
	mirrors     []int64
	reveals     []reveal
	postErr     error
	editErrs    []error
	editAttempt int
}

type reveal struct {
	state dto.VeilDisplayState
	image []byte
}

func newMockPresenter() *mockPresenter {
	return &mockPresenter{nextID: 5000}
}

func (m *mockPresenter) PostVeil(ctx context.Context, channelID int64, image []byte, state dto.VeilDisplayState) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postErr != nil {
		return 0, m.postErr
	}
	m.nextID++
	state.VeilID = m.nextID
	m.posts = append(m.posts, state)
	return m.nextID, nil
}

func (m *mockPresenter) EditVeil(ctx context.Context, state dto.VeilDisplayState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.editAttempt++
	if len(m.editErrs) > 0 {
		err := m.editErrs[0]
		m.editErrs = m.editErrs[1:]
		if err != nil {
			return err
		}
	}
	m.edits = append(m.edits, state)
	return nil
}

func (m *mockPresenter) RevealVeil(ctx context.Context, state dto.VeilDisplayState, image []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reveals = append(m.reveals, reveal{state: state, image: image})
	return nil
}

func (m *mockPresenter) DeleteMessage(ctx context.Context, channelID, messageID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, messageID)
	return nil
}

func (m *mockPresenter) MirrorToAdminLog(ctx context.Context, adminChannelID int64, image []byte, state dto.VeilDisplayState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mirrors = append(m.mirrors, adminChannelID)
	return nil
}

func (m *mockPresenter) Edits() []dto.VeilDisplayState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]dto.VeilDisplayState(nil), m.edits...)
}

// stubRenderer returns a fixed image
type stubRenderer struct{}

func (stubRenderer) RenderText(content string) ([]byte, error) {
	return []byte("png:" + content), nil
}

func (stubRenderer) RenderPhoto(photo []byte, skinID int) ([]byte, error) {
	return append([]byte(fmt.Sprintf("skin%d:", skinID)), photo...), nil
}

func (stubRenderer) RenderUnveiledText(content string) ([]byte, error) {
	return []byte("unveiled:" + content), nil
}

func (stubRenderer) RenderUnveiledPhoto(photo []byte) ([]byte, error) {
	return append([]byte("unveiled:"), photo...), nil
}

func (m *mockPresenter) Reveals() []reveal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]reveal(nil), m.reveals...)
}

// stubPhotos returns the URL as the photo bytes
type stubPhotos struct{}

func (stubPhotos) FetchPhoto(ctx context.Context, url string) ([]byte, error) {
	return []byte(url), nil
}

// stubProvider hands out sequential checkout sessions
type stubProvider struct {
	mu    sync.Mutex
	count int
}

func (p *stubProvider) CreateCheckoutSession(ctx context.Context, req dto.CheckoutRequest) (*dto.CheckoutLink, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	id := fmt.Sprintf("cs_test_%d", p.count)
	return &dto.CheckoutLink{
		SessionID:  id,
		URL:        "https://pay.example.com/" + id,
		Coins:      req.Coins,
		PriceCents: req.PriceCents,
	}, nil
}

func setupFactory(t *testing.T) (*testutil.TestDatabase, application.UnitOfWorkFactory) {
	t.Helper()
	testDB := testutil.SetupTestDatabase(t)
	return testDB, infrastructure.NewUnitOfWorkFactory(testDB.DB, infrastructure.NewNoopEventPublisher())
}
