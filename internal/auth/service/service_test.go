package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"pinauth/internal/auth/models"
	userStore "pinauth/internal/auth/store/user"
	"pinauth/internal/token"
	dErrors "pinauth/pkg/domain-errors"
)

func (s *ServiceSuite) TestAuthenticate_Success() {
	u := s.newTestUser()
	ctx := context.Background()

	s.mockDirectory.EXPECT().FindByPinIdentifier(gomock.Any(), "1234").Return(u, nil)
	s.mockVerifier.EXPECT().Verify(gomock.Any(), "1234", u.HashedPin).Return(true, nil)
	s.mockIssuer.EXPECT().Issue(gomock.Any(), token.Identity{
		UserID:     u.ID.String(),
		Name:       u.Name,
		RoleKey:    "sr",
		SchoolSlug: "knn",
		SectorKey:  "comercial",
	}).Return("signed-token", nil)
	s.mockIssuer.EXPECT().TTL().Return(testTokenTTL)

	res, err := s.service.Authenticate(ctx, &models.LoginRequest{Pin: "1234"})
	s.Require().NoError(err)
	s.Equal("signed-token", res.Token)
	s.Equal("knn", res.SchoolSlug)
	s.Equal("Ana Souza", res.Name)
	s.Equal(testTokenTTL, res.ExpiresIn)
}

func (s *ServiceSuite) TestAuthenticate_ExplicitIdentifier() {
	u := s.newTestUser()
	u.PinIdentifier = "ana.souza"

	s.mockDirectory.EXPECT().FindByPinIdentifier(gomock.Any(), "ana.souza").Return(u, nil)
	s.mockVerifier.EXPECT().Verify(gomock.Any(), "1234", u.HashedPin).Return(true, nil)
	s.mockIssuer.EXPECT().Issue(gomock.Any(), gomock.Any()).Return("signed-token", nil)
	s.mockIssuer.EXPECT().TTL().Return(testTokenTTL)

	res, err := s.service.Authenticate(context.Background(), &models.LoginRequest{
		PinIdentifier: "ana.souza",
		Pin:           "1234",
	})
	s.Require().NoError(err)
	s.Equal("knn", res.SchoolSlug)
}

func (s *ServiceSuite) TestAuthenticate_UnknownIdentifierIsGeneric() {
	s.mockDirectory.EXPECT().FindByPinIdentifier(gomock.Any(), "9999").
		Return(nil, fmt.Errorf("pin identifier lookup: %w", userStore.ErrNotFound))

	_, err := s.service.Authenticate(context.Background(), &models.LoginRequest{Pin: "9999"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.Equal("invalid credentials", err.Error())
}

func (s *ServiceSuite) TestAuthenticate_WrongPinIsIndistinguishable() {
	u := s.newTestUser()

	s.mockDirectory.EXPECT().FindByPinIdentifier(gomock.Any(), "1234").Return(u, nil)
	s.mockVerifier.EXPECT().Verify(gomock.Any(), "1234", u.HashedPin).Return(false, nil)

	_, wrongPinErr := s.service.Authenticate(context.Background(), &models.LoginRequest{Pin: "1234"})
	s.Require().Error(wrongPinErr)

	s.mockDirectory.EXPECT().FindByPinIdentifier(gomock.Any(), "9999").
		Return(nil, fmt.Errorf("pin identifier lookup: %w", userStore.ErrNotFound))

	_, missErr := s.service.Authenticate(context.Background(), &models.LoginRequest{Pin: "9999"})
	s.Require().Error(missErr)

	// Anti-enumeration: both failure paths produce identical caller-facing errors.
	s.Equal(wrongPinErr.Error(), missErr.Error())
	s.True(dErrors.HasCode(wrongPinErr, dErrors.CodeUnauthorized))
	s.True(dErrors.HasCode(missErr, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestAuthenticate_DirectoryFailure() {
	s.mockDirectory.EXPECT().FindByPinIdentifier(gomock.Any(), "1234").
		Return(nil, fmt.Errorf("connection refused"))

	_, err := s.service.Authenticate(context.Background(), &models.LoginRequest{Pin: "1234"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestAuthenticate_VerifierFailure() {
	u := s.newTestUser()

	s.mockDirectory.EXPECT().FindByPinIdentifier(gomock.Any(), "1234").Return(u, nil)
	s.mockVerifier.EXPECT().Verify(gomock.Any(), "1234", u.HashedPin).
		Return(false, fmt.Errorf("verification canceled"))

	_, err := s.service.Authenticate(context.Background(), &models.LoginRequest{Pin: "1234"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestAuthenticate_IssuerFailure() {
	u := s.newTestUser()

	s.mockDirectory.EXPECT().FindByPinIdentifier(gomock.Any(), "1234").Return(u, nil)
	s.mockVerifier.EXPECT().Verify(gomock.Any(), "1234", u.HashedPin).Return(true, nil)
	s.mockIssuer.EXPECT().Issue(gomock.Any(), gomock.Any()).Return("", fmt.Errorf("signing failed"))

	_, err := s.service.Authenticate(context.Background(), &models.LoginRequest{Pin: "1234"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestAuthenticate_RejectsShortPin() {
	// No collaborator is consulted for malformed input.
	_, err := s.service.Authenticate(context.Background(), &models.LoginRequest{Pin: "123"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestNew_DefaultsLogger(t *testing.T) {
	svc := New(nil, nil, nil)
	assert.NotNil(t, svc.logger)
}
