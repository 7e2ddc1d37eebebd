package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/middleware"
	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

type authServiceStub struct {
	lastActor   models.Actor
	lastRefresh string
	loginReq    models.LoginRequest
	err         error
}

func (s *authServiceStub) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	s.loginReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.LoginResponse{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (s *authServiceStub) RefreshToken(ctx context.Context, req models.RefreshTokenRequest) (*models.RefreshTokenResponse, error) {
	return &models.RefreshTokenResponse{AccessToken: "access-2"}, s.err
}

func (s *authServiceStub) Logout(ctx context.Context, actor models.Actor, refreshToken string) error {
	s.lastActor = actor
	s.lastRefresh = refreshToken
	return s.err
}

func (s *authServiceStub) ChangePassword(ctx context.Context, actor models.Actor, req models.ChangePasswordRequest) error {
	s.lastActor = actor
	return s.err
}

func (s *authServiceStub) Me(ctx context.Context, actor models.Actor) (*models.UserInfo, error) {
	s.lastActor = actor
	if s.err != nil {
		return nil, s.err
	}
	return &models.UserInfo{ID: actor.UserID, CenterID: actor.CenterID, Role: actor.Role}, nil
}

func TestAuthHandlerLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &authServiceStub{}
	h := NewAuthHandler(svc)

	c, w := newGinContext(http.MethodPost, "/auth/login", []byte(`{"email":"desk@center.test","password":"secret"}`))
	c.Request.Header.Set("User-Agent", "frontdesk")
	h.Login(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "frontdesk", svc.loginReq.UserAgent)
	assert.Contains(t, w.Body.String(), `"access_token":"access"`)

	c, w = newGinContext(http.MethodPost, "/auth/login", []byte(`{"email":`))
	h.Login(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.err = appErrors.Clone(appErrors.ErrUnauthorized, "invalid credentials")
	c, w = newGinContext(http.MethodPost, "/auth/login", []byte(`{"email":"desk@center.test","password":"wrong"}`))
	h.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerMeAdmitsCenterlessSuperadmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &authServiceStub{}
	h := NewAuthHandler(svc)

	c, w := newGinContext(http.MethodGet, "/auth/me", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "root", Role: models.RoleSuperAdmin})
	h.Me(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "root", svc.lastActor.UserID)
	assert.Empty(t, svc.lastActor.CenterID)
}

func TestAuthHandlerLogout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &authServiceStub{}
	h := NewAuthHandler(svc)

	c, w := newGinContext(http.MethodPost, "/auth/logout", []byte(`{"refresh_token":"rt"}`))
	h.Logout(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newGinContext(http.MethodPost, "/auth/logout", []byte(`{}`))
	c.Set(middleware.ContextUserKey, adminClaims)
	h.Logout(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, _ = newGinContext(http.MethodPost, "/auth/logout", []byte(`{"refresh_token":"rt"}`))
	c.Set(middleware.ContextUserKey, adminClaims)
	h.Logout(c)
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, "rt", svc.lastRefresh)
	assert.Equal(t, "c1", svc.lastActor.CenterID)
}

func TestAuthHandlerChangePasswordPropagatesErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &authServiceStub{err: appErrors.Clone(appErrors.ErrForbidden, "old password does not match")}
	h := NewAuthHandler(svc)

	c, w := newGinContext(http.MethodPost, "/auth/change-password", []byte(`{"old_password":"a","new_password":"bbbbbbbb"}`))
	c.Set(middleware.ContextUserKey, adminClaims)
	h.ChangePassword(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "admin", svc.lastActor.UserID)
}
