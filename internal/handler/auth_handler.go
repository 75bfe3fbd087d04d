package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"referralhub/internal/service"
	"referralhub/pkg/response"
)

type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

type RegisterRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	ReferralCode string `json:"referral_code"`
}

type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	_, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingCredentials),
			errors.Is(err, service.ErrUsernameTaken),
			errors.Is(err, service.ErrEmailTaken),
			errors.Is(err, service.ErrReferralCodeInvalid),
			errors.Is(err, service.ErrReferralCodeExpired):
			response.BadRequest(c, err.Error())
		default:
			h.logger.Error("registration failed", zap.Error(err))
			response.InternalError(c, "registration failed")
		}
		return
	}

	response.Created(c, gin.H{"message": "user registered successfully"})
}

// Token exchanges username and password for a refresh/access pair.
func (h *AuthHandler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	pair, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Unauthorized(c, "invalid credentials")
		case errors.Is(err, service.ErrUserDisabled):
			response.Unauthorized(c, err.Error())
		default:
			h.logger.Error("login failed", zap.Error(err))
			response.InternalError(c, "login failed")
		}
		return
	}

	response.Success(c, pair)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	access, err := h.authService.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshTokenInvalid),
			errors.Is(err, service.ErrUserDisabled):
			response.Unauthorized(c, err.Error())
		default:
			h.logger.Error("token refresh failed", zap.Error(err))
			response.InternalError(c, "token refresh failed")
		}
		return
	}

	response.Success(c, gin.H{"access": access})
}
