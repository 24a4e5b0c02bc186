package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "travelfeed/internal/errors"
	"travelfeed/internal/model"
)

type MockUserFinder struct {
	mock.Mock
}

func (m *MockUserFinder) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func TestGate_Resolve(t *testing.T) {
	const issued = int64(1700000000)
	valid := "YUB4LmNvbToxNzAwMDAwMDAwOjRyYjRUcjR2M2wxMjM="
	dbDown := errors.New("connection refused")

	tests := []struct {
		name       string
		credential string
		now        int64
		setupMock  func(*MockUserFinder)
		wantID     uint
		wantErr    error
	}{
		{
			name:       "resolves known user",
			credential: valid,
			now:        issued + 10,
			setupMock: func(m *MockUserFinder) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(&model.User{ID: 7, Email: "a@x.com"}, nil)
			},
			wantID: 7,
		},
		{name: "missing", credential: "", now: issued, wantErr: apperrors.ErrMissingCredential},
		{name: "malformed", credential: "@@@", now: issued, wantErr: apperrors.ErrMalformedToken},
		{name: "bad secret", credential: "YUB4LmNvbToxNzAwMDAwMDAwOndyb25n", now: issued, wantErr: apperrors.ErrInvalidCredential},
		{name: "expired", credential: valid, now: issued + 10601, wantErr: apperrors.ErrCredentialExpired},
		{
			name:       "unknown principal",
			credential: valid,
			now:        issued,
			setupMock: func(m *MockUserFinder) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, gorm.ErrRecordNotFound)
			},
			wantErr: apperrors.ErrUnknownPrincipal,
		},
		{
			name:       "store failure",
			credential: valid,
			now:        issued,
			setupMock: func(m *MockUserFinder) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, dbDown)
			},
			wantErr: dbDown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserFinder)
			if tt.setupMock != nil {
				tt.setupMock(users)
			}
			gate := NewGate(NewLegacyCodec(legacySecret).WithClock(fixedClock(tt.now)), users)

			id, err := gate.Resolve(context.Background(), tt.credential)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, id)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}
			users.AssertExpectations(t)
		})
	}
}
