package api

import (
	"errors"
	"net/http"
	"tixgate/db"
	"tixgate/service/security"
	"tixgate/service/worker"
	"tixgate/util"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type RegisterResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Role  db.Role `json:"role"`
}

// Register godoc
// @Summary      Register a new user account
// @Description  Creates a new user account and sends a welcome email in the background.
// @Description  Accounts always start with the regular user role; staff and admin roles
// @Description  are granted by an administrator.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "User registration information"
// @Success      200 {object} RegisterResponse "Account created successfully"
// @Failure      400 {object} ErrorResponse "Invalid request body | Email already registered"
// @Failure      500 {object} ErrorResponse "Internal server error"
// @Router       /api/auth/register [post]
func (server *Server) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.LOGGER.Warn("POST /api/auth/register: failed to bind request body", "error", err)
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid request body"})
		return
	}

	hashed, err := security.BcryptHash(req.Password)
	if err != nil {
		util.LOGGER.Error("POST /api/auth/register: failed to hash password", "error", err)
		internalError(ctx)
		return
	}

	user := db.User{
		Model:    db.NewModel(),
		Name:     req.Name,
		Email:    req.Email,
		Password: hashed,
		Role:     db.RoleUser,
	}
	if err := server.users.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, db.ErrEmailRegistered) {
			ctx.JSON(http.StatusBadRequest, ErrorResponse{"Email already registered"})
			return
		}
		util.LOGGER.Error("POST /api/auth/register: failed to create user", "error", err)
		internalError(ctx)
		return
	}

	// Create background task: send welcome email
	err = server.distributor.DistributeTask(ctx, worker.SendWelcomeEmail, worker.SendWelcomeEmailPayload{
		Email: user.Email,
		Name:  user.Name,
	}, asynq.Queue(worker.MEDIUM_IMPACT), asynq.MaxRetry(5))
	if err != nil {
		// The account exists; a lost welcome email is not worth failing the request
		util.LOGGER.Error("POST /api/auth/register: failed to distribute task",
			"task", worker.SendWelcomeEmail, "error", err)
	}

	ctx.JSON(http.StatusOK, RegisterResponse{
		ID:    user.ID.String(),
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	})
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Role         db.Role `json:"role"`
}

// Login godoc
// @Summary      Log in with email and password
// @Description  Verifies the credentials and returns an access and a refresh token.
// @Description  Wrong email and wrong password are indistinguishable in the response.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} LoginResponse "Logged in"
// @Failure      400 {object} ErrorResponse "Invalid request body"
// @Failure      401 {object} ErrorResponse "Invalid email or password"
// @Failure      500 {object} ErrorResponse "Internal server error"
// @Router       /api/auth/login [post]
func (server *Server) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.LOGGER.Warn("POST /api/auth/login: failed to bind request body", "error", err)
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid request body"})
		return
	}

	user, err := server.users.UserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			ctx.JSON(http.StatusUnauthorized, ErrorResponse{"Invalid email or password"})
			return
		}
		util.LOGGER.Error("POST /api/auth/login: failed to load user", "error", err)
		internalError(ctx)
		return
	}

	if !security.BcryptCompare(user.Password, req.Password) {
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{"Invalid email or password"})
		return
	}

	accessToken, err := server.jwtService.CreateToken(user.ID, user.Role, security.AccessToken)
	if err != nil {
		util.LOGGER.Error("POST /api/auth/login: failed to create access token", "error", err)
		internalError(ctx)
		return
	}

	refreshToken, err := server.jwtService.CreateToken(user.ID, user.Role, security.RefreshToken)
	if err != nil {
		util.LOGGER.Error("POST /api/auth/login: failed to create refresh token", "error", err)
		internalError(ctx)
		return
	}

	ctx.JSON(http.StatusOK, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ID:           user.ID.String(),
		Name:         user.Name,
		Role:         user.Role,
	})
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// RefreshToken godoc
// @Summary      Refresh the access token
// @Description  Exchanges a valid refresh token for a fresh access token. The user's
// @Description  current role is re-read from storage, so a role change or staff
// @Description  reassignment takes effect at the next refresh.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshRequest true "Refresh token"
// @Success      200 {object} RefreshResponse "New access token"
// @Failure      400 {object} ErrorResponse "Invalid request body"
// @Failure      401 {object} ErrorResponse "Invalid refresh token"
// @Failure      500 {object} ErrorResponse "Internal server error"
// @Router       /api/auth/refresh [post]
func (server *Server) RefreshToken(ctx *gin.Context) {
	var req RefreshRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid request body"})
		return
	}

	claims, err := server.jwtService.VerifyToken(req.RefreshToken)
	if err != nil || claims.TokenType != security.RefreshToken {
		util.LOGGER.Warn("POST /api/auth/refresh: invalid refresh token", "error", err)
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{"Invalid refresh token"})
		return
	}

	user, err := server.users.UserByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			ctx.JSON(http.StatusUnauthorized, ErrorResponse{"Invalid refresh token"})
			return
		}
		util.LOGGER.Error("POST /api/auth/refresh: failed to load user", "error", err)
		internalError(ctx)
		return
	}

	accessToken, err := server.jwtService.CreateToken(user.ID, user.Role, security.AccessToken)
	if err != nil {
		util.LOGGER.Error("POST /api/auth/refresh: failed to create access token", "error", err)
		internalError(ctx)
		return
	}

	ctx.JSON(http.StatusOK, RefreshResponse{AccessToken: accessToken})
}
