package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"
	"tixgate/db"
	"tixgate/service/security"
	"tixgate/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubUserStore struct {
	mock.Mock
}

func (m *stubUserStore) CreateUser(ctx context.Context, user *db.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *stubUserStore) UserByEmail(ctx context.Context, email string) (*db.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db.User), args.Error(1)
}

func (m *stubUserStore) UserByID(ctx context.Context, id uuid.UUID) (*db.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db.User), args.Error(1)
}

func newAuthTestServer(users UserStore) *Server {
	gin.SetMode(gin.TestMode)
	jwtService := security.NewJWTService([]byte("test-secret"), time.Minute, time.Hour)
	server := NewServer(&util.Config{}, nil, jwtService, new(stubDistributor), nil, nil, nil)
	server.users = users
	server.RegisterHandler()
	return server
}

func storedUser(t *testing.T, password string) *db.User {
	t.Helper()
	hashed, err := security.BcryptHash(password)
	require.NoError(t, err)
	return &db.User{
		Model:    db.Model{ID: uuid.New()},
		Name:     "Alex Doe",
		Email:    "alex@example.com",
		Password: hashed,
		Role:     db.RoleUser,
	}
}

func TestLogin(t *testing.T) {
	users := new(stubUserStore)
	server := newAuthTestServer(users)
	user := storedUser(t, "correct-password")

	users.On("UserByEmail", mock.Anything, user.Email).Return(user, nil)

	recorder := postJSON(server, "/api/auth/login", map[string]any{
		"email":    user.Email,
		"password": "correct-password",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.Equal(t, user.ID.String(), resp.ID)
	require.Equal(t, db.RoleUser, resp.Role)

	// Both tokens must verify and carry the user's identity
	claims, err := server.jwtService.VerifyToken(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.ID)
	require.Equal(t, security.AccessToken, claims.TokenType)

	claims, err = server.jwtService.VerifyToken(resp.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, security.RefreshToken, claims.TokenType)
}

func TestLoginWrongPassword(t *testing.T) {
	users := new(stubUserStore)
	server := newAuthTestServer(users)
	user := storedUser(t, "correct-password")

	users.On("UserByEmail", mock.Anything, user.Email).Return(user, nil)

	recorder := postJSON(server, "/api/auth/login", map[string]any{
		"email":    user.Email,
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	users := new(stubUserStore)
	server := newAuthTestServer(users)

	users.On("UserByEmail", mock.Anything, mock.Anything).Return(nil, db.ErrUserNotFound)

	recorder := postJSON(server, "/api/auth/login", map[string]any{
		"email":    "nobody@example.com",
		"password": "whatever",
	})

	// Indistinguishable from a wrong password
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}
