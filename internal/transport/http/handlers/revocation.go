package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/core/domain"
	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/infra/security"
	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/transport/http/middleware"
	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/usecase"
)

// RevocationHandler exposes the revocation surface consumed by the blog's
// authentication middleware and admin tooling.
type RevocationHandler struct {
	revocations *usecase.RevocationService
	defaultTTL  time.Duration
}

// NewRevocationHandler constructs the handler. defaultTTL bounds the record
// lifetime when neither the caller nor the token supplies an expiry.
func NewRevocationHandler(revocations *usecase.RevocationService, defaultTTL time.Duration) *RevocationHandler {
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	return &RevocationHandler{revocations: revocations, defaultTTL: defaultTTL}
}

// Logout revokes the bearer token the request was authenticated with. The
// record expiry follows the token's own exp claim when one is present, so the
// blacklist entry lives exactly as long as the token could have.
func (h *RevocationHandler) Logout(c *gin.Context) {
	token, ok := c.Get(middleware.RawTokenKey)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "missing access token"))
		return
	}
	rawToken, _ := token.(string)

	expiresAt := security.ExpiryHint(rawToken, time.Now().UTC().Add(h.defaultTTL))

	if err := h.revocations.Revoke(c.Request.Context(), rawToken, expiresAt, domain.ReasonLogout); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to revoke token"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "logged out"})
}

// Revoke handles administrative revocation of an arbitrary token.
func (h *RevocationHandler) Revoke(c *gin.Context) {
	var req RevokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "token is required"))
		return
	}

	expiresAt := security.ExpiryHint(req.Token, time.Now().UTC().Add(h.defaultTTL))
	if req.ExpiresAt != nil {
		expiresAt = *req.ExpiresAt
	}

	reason := req.Reason
	if reason == "" {
		reason = domain.ReasonAdminRevoke
	}

	if err := h.revocations.Revoke(c.Request.Context(), req.Token, expiresAt, reason); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to revoke token"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "token revoked"})
}

// Check reports revocation membership for a token. Used by sibling services
// that cannot link the revocation core in-process.
func (h *RevocationHandler) Check(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "token is required"))
		return
	}

	c.JSON(http.StatusOK, CheckResponse{
		Revoked: h.revocations.IsRevoked(c.Request.Context(), req.Token),
	})
}
