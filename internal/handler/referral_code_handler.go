package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"referralhub/internal/service"
	"referralhub/pkg/response"
)

type ReferralCodeHandler struct {
	codeService service.ReferralCodeService
	logger      *zap.Logger
}

func NewReferralCodeHandler(codeService service.ReferralCodeService, logger *zap.Logger) *ReferralCodeHandler {
	return &ReferralCodeHandler{codeService: codeService, logger: logger}
}

type ReferralCodeRequest struct {
	Code           string     `json:"code"`
	ExpirationDate *time.Time `json:"expiration_date"`
}

type ReferralResponse struct {
	RefereeID uuid.UUID `json:"referee_id"`
	Username  string    `json:"username"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *ReferralCodeHandler) Create(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var req ReferralCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	code, err := h.codeService.Create(c.Request.Context(), userID, service.ReferralCodeInput{
		Code:           req.Code,
		ExpirationDate: req.ExpirationDate,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Created(c, code)
}

func (h *ReferralCodeHandler) List(c *gin.Context) {
	codes, err := h.codeService.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, codes)
}

func (h *ReferralCodeHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	code, err := h.codeService.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, code)
}

func (h *ReferralCodeHandler) Update(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req ReferralCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	code, err := h.codeService.Update(c.Request.Context(), userID, id, service.ReferralCodeInput{
		Code:           req.Code,
		ExpirationDate: req.ExpirationDate,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, code)
}

func (h *ReferralCodeHandler) Delete(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.codeService.Delete(c.Request.Context(), userID, id); err != nil {
		h.writeError(c, err)
		return
	}
	response.NoContent(c)
}

// Lookup resolves the referral code owned by the user with ?email=.
func (h *ReferralCodeHandler) Lookup(c *gin.Context) {
	code, err := h.codeService.LookupByEmail(c.Request.Context(), c.Query("email"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, gin.H{"referral_code": code})
}

// ListReferrals returns the users who registered with the caller's code.
func (h *ReferralCodeHandler) ListReferrals(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	referrals, err := h.codeService.ListReferrals(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]ReferralResponse, 0, len(referrals))
	for _, r := range referrals {
		out = append(out, ReferralResponse{
			RefereeID: r.RefereeID,
			Username:  r.Referee.Username,
			Code:      r.Code,
			CreatedAt: r.CreatedAt,
		})
	}
	response.Success(c, out)
}

func (h *ReferralCodeHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReferralCodeFormat),
		errors.Is(err, service.ErrReferralCodeTaken),
		errors.Is(err, service.ErrReferralCodeExists),
		errors.Is(err, service.ErrEmailRequired):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrReferralCodeNotFound),
		errors.Is(err, service.ErrNoCodeForEmail):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrReferralCodeNotOwned):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.Unauthorized(c, err.Error())
	default:
		h.logger.Error("referral code request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		response.InternalError(c, "internal server error")
	}
}

// parseID reads the :id path parameter. A malformed id cannot address any
// record, so it is answered as not found.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, service.ErrReferralCodeNotFound.Error())
		return uuid.Nil, false
	}
	return id, true
}
