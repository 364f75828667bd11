package credits

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/Samrudhp/renova-backend/internal/events"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetUserStats(ctx context.Context, userID string) (*UserStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UserStats), args.Error(1)
}

func (m *MockRepository) ApplyScanEvent(ctx context.Context, userID string, impact EnvironmentalImpact, now time.Time) error {
	args := m.Called(ctx, userID, impact, now)
	return args.Error(0)
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	redemptions []events.RedemptionEvent
	scans       []events.ScanEvent
}

func (p *recordingPublisher) PublishRedemption(ctx context.Context, event events.RedemptionEvent) error {
	p.redemptions = append(p.redemptions, event)
	return nil
}

func (p *recordingPublisher) PublishScan(ctx context.Context, event events.ScanEvent) error {
	p.scans = append(p.scans, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func newTestService(repo Repository, publisher events.Publisher) *Service {
	return NewService(NewEngine(testFactors()), repo, publisher, zap.NewNop())
}

func TestEstimateRecordsScanEventForKnownUser(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo, &recordingPublisher{})

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	ctx := context.Background()
	expectedImpact := EnvironmentalImpact{
		CO2SavedKg:       4.2,
		WaterSavedLiters: 30,
		LandfillSavedKg:  2,
	}
	mockRepo.On("ApplyScanEvent", ctx, "user-1", expectedImpact, now).Return(nil)

	resp, err := service.Estimate(ctx, &EstimateRequest{
		UserID:            "user-1",
		Material:          "PET",
		EstimatedWeightKg: 2.0,
		CleanlinessScore:  85,
	})

	assert.NoError(t, err)
	assert.Equal(t, 20, resp.Credits)
	assert.Equal(t, expectedImpact, resp.Impact)
	mockRepo.AssertExpectations(t)
}

func TestEstimatePublishesScanEvent(t *testing.T) {
	mockRepo := new(MockRepository)
	publisher := &recordingPublisher{}
	service := newTestService(mockRepo, publisher)

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	ctx := context.Background()
	mockRepo.On("ApplyScanEvent", ctx, "user-1", mock.Anything, now).Return(nil)

	_, err := service.Estimate(ctx, &EstimateRequest{
		UserID:            "user-1",
		Material:          "PET",
		EstimatedWeightKg: 2.0,
		CleanlinessScore:  85,
	})

	assert.NoError(t, err)
	assert.Len(t, publisher.scans, 1)
	assert.Equal(t, events.ScanEvent{
		UserID:            "user-1",
		Material:          "PET",
		EstimatedWeightKg: 2.0,
		Credits:           20,
		CO2SavedKg:        4.2,
		WaterSavedLiters:  30,
		LandfillSavedKg:   2,
		ScannedAt:         now,
	}, publisher.scans[0])
}

func TestEstimateWithoutUserIsAdvisoryOnly(t *testing.T) {
	mockRepo := new(MockRepository)
	publisher := &recordingPublisher{}
	service := newTestService(mockRepo, publisher)

	resp, err := service.Estimate(context.Background(), &EstimateRequest{
		Material:          "PET",
		EstimatedWeightKg: 2.0,
		CleanlinessScore:  85,
	})

	assert.NoError(t, err)
	assert.Equal(t, 20, resp.Credits)
	assert.Empty(t, publisher.scans)
	mockRepo.AssertNotCalled(t, "ApplyScanEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEstimateRejectsUnknownMaterialBeforePersisting(t *testing.T) {
	mockRepo := new(MockRepository)
	publisher := &recordingPublisher{}
	service := newTestService(mockRepo, publisher)

	_, err := service.Estimate(context.Background(), &EstimateRequest{
		UserID:            "user-1",
		Material:          "Styrofoam",
		EstimatedWeightKg: 1.0,
		CleanlinessScore:  70,
	})

	assert.Error(t, err)
	assert.Empty(t, publisher.scans)
	mockRepo.AssertNotCalled(t, "ApplyScanEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetUserStats(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo, &recordingPublisher{})

	ctx := context.Background()
	stats := &UserStats{UserID: "user-1", TokensBalance: 42, TotalScans: 7}
	mockRepo.On("GetUserStats", ctx, "user-1").Return(stats, nil)

	got, err := service.GetUserStats(ctx, "user-1")

	assert.NoError(t, err)
	assert.Equal(t, stats, got)
	mockRepo.AssertExpectations(t)
}
