package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/moderation"
)

func TestChatService_Post(t *testing.T) {
	censor, err := moderation.New([]string{"spam"}, '*')
	require.NoError(t, err)

	tests := []struct {
		name        string
		user        string
		message     string
		setupMock   func(*MockMessageRepository)
		wantMessage string
		wantErr     error
		wantInvalid bool
	}{
		{
			name:    "persisted and moderated",
			user:    "A@x.com",
			message: " no spam here ",
			setupMock: func(m *MockMessageRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(msg *model.ChatMessage) bool {
					return msg.User == "a@x.com" && msg.Message == "no **** here"
				})).Return(nil)
			},
			wantMessage: "no **** here",
		},
		{
			name:        "empty message",
			user:        "a@x.com",
			message:     "   ",
			setupMock:   func(m *MockMessageRepository) {},
			wantInvalid: true,
		},
		{
			name:        "message too long",
			user:        "a@x.com",
			message:     strings.Repeat("x", maxMessageLength+1),
			setupMock:   func(m *MockMessageRepository) {},
			wantInvalid: true,
		},
		{
			name:    "store failure",
			user:    "a@x.com",
			message: "hi",
			setupMock: func(m *MockMessageRepository) {
				m.On("Create", mock.Anything, mock.Anything).Return(apperrors.ErrPersistence)
			},
			wantErr: apperrors.ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockMessageRepository)
			tt.setupMock(repo)

			msg, err := NewChatService(repo, censor, 10).Post(context.Background(), tt.user, tt.message)

			switch {
			case tt.wantInvalid:
				var verr *apperrors.ValidationError
				assert.ErrorAs(t, err, &verr)
				repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, msg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantMessage, msg.Message)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestChatService_Recent(t *testing.T) {
	repo := new(MockMessageRepository)
	repo.On("ListRecent", mock.Anything, 2).Return([]model.ChatMessage{{Message: "a"}, {Message: "b"}}, nil)

	msgs, err := NewChatService(repo, nil, 2).Recent(context.Background())
	require.NoError(t, err)
	assert.Len(t, msgs, 2)

	none, err := NewChatService(repo, nil, 0).Recent(context.Background())
	require.NoError(t, err)
	assert.Empty(t, none)
}
