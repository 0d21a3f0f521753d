package services

import (
	"context"
	"errors"
	"testing"

	"veilbot/domain/entities"
	"veilbot/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGuildSettingsService_SetGuessCap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		guessCap  int
		setupMock func(*testhelpers.MockGuildSettingsRepository)
		wantErr   error
	}{
		{
			name:     "valid cap is stored",
			guessCap: 2,
			setupMock: func(repo *testhelpers.MockGuildSettingsRepository) {
				repo.On("GetOrCreateGuildSettings", mock.Anything, testGuildID).Return(&entities.GuildSettings{GuildID: testGuildID, MaxGuesses: 3, Tier: entities.TierFree}, nil)
				repo.On("UpdateGuildSettings", mock.Anything, mock.MatchedBy(func(s *entities.GuildSettings) bool {
					return s.MaxGuesses == 2
				})).Return(nil)
			},
		},
		{
			name:      "zero is rejected",
			guessCap:  0,
			setupMock: func(repo *testhelpers.MockGuildSettingsRepository) {},
			wantErr:   ErrInvalidGuessCap,
		},
		{
			name:      "four is rejected",
			guessCap:  4,
			setupMock: func(repo *testhelpers.MockGuildSettingsRepository) {},
			wantErr:   ErrInvalidGuessCap,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := new(testhelpers.MockGuildSettingsRepository)
			tt.setupMock(repo)
			service := NewGuildSettingsService(repo)

			settings, err := service.SetGuessCap(context.Background(), testGuildID, tt.guessCap)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, settings)
				repo.AssertNotCalled(t, "UpdateGuildSettings", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.guessCap, settings.GuessCap())
			repo.AssertExpectations(t)
		})
	}
}

func TestGuildSettingsService_SetAdminChannel(t *testing.T) {
	t.Parallel()

	channelID := int64(777)

	tests := []struct {
		name    string
		tier    entities.Tier
		wantErr error
	}{
		{name: "elite guild can set admin log", tier: entities.TierElite},
		{name: "premium guild cannot", tier: entities.TierPremium, wantErr: ErrTierRequired},
		{name: "free guild cannot", tier: entities.TierFree, wantErr: ErrTierRequired},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := new(testhelpers.MockGuildSettingsRepository)
			repo.On("GetOrCreateGuildSettings", mock.Anything, testGuildID).Return(&entities.GuildSettings{GuildID: testGuildID, MaxGuesses: 3, Tier: tt.tier}, nil)
			if tt.wantErr == nil {
				repo.On("UpdateGuildSettings", mock.Anything, mock.Anything).Return(nil)
			}
			service := NewGuildSettingsService(repo)

			settings, err := service.SetAdminChannel(context.Background(), testGuildID, &channelID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, settings.ShouldMirrorToAdminLog())
			repo.AssertExpectations(t)
		})
	}
}

func TestGuildSettingsService_SetTier(t *testing.T) {
	t.Parallel()

	t.Run("unknown tier is rejected", func(t *testing.T) {
		t.Parallel()
		service := NewGuildSettingsService(new(testhelpers.MockGuildSettingsRepository))
		_, err := service.SetTier(context.Background(), testGuildID, entities.Tier("platinum"), nil)
		assert.Error(t, err)
	})

	t.Run("repository error is wrapped", func(t *testing.T) {
		t.Parallel()
		repo := new(testhelpers.MockGuildSettingsRepository)
		repo.On("GetOrCreateGuildSettings", mock.Anything, testGuildID).Return(nil, errors.New("database connection failed"))
		service := NewGuildSettingsService(repo)

		_, err := service.SetTier(context.Background(), testGuildID, entities.TierBasic, nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get guild settings")
	})

	t.Run("tier is stored", func(t *testing.T) {
		t.Parallel()
		repo := new(testhelpers.MockGuildSettingsRepository)
		repo.On("GetOrCreateGuildSettings", mock.Anything, testGuildID).Return(&entities.GuildSettings{GuildID: testGuildID, Tier: entities.TierFree}, nil)
		repo.On("UpdateGuildSettings", mock.Anything, mock.MatchedBy(func(s *entities.GuildSettings) bool {
			return s.Tier == entities.TierPremium
		})).Return(nil)
		service := NewGuildSettingsService(repo)

		settings, err := service.SetTier(context.Background(), testGuildID, entities.TierPremium, nil)

		require.NoError(t, err)
		assert.True(t, settings.Tier.Policy().LeaderboardAccess)
		repo.AssertExpectations(t)
	})
}
