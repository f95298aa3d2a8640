// Package chat expone el token que el cliente usa contra el servicio de chat.
package chat

import (
	"context"
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/tandem/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/tandem/internal/http/errors"
	"github.com/dropDatabas3/tandem/internal/http/helpers"
	mw "github.com/dropDatabas3/tandem/internal/http/middlewares"
	svc "github.com/dropDatabas3/tandem/internal/http/services/auth"
	"github.com/dropDatabas3/tandem/internal/observability/logger"
)

type TokenService interface {
	ChatToken(ctx context.Context, userID string) (string, error)
}

type TokenController struct {
	svc TokenService
}

func NewTokenController(s TokenService) *TokenController { return &TokenController{svc: s} }

// Token maneja GET /api/chat/token (requiere sesión).
func (c *TokenController) Token(w http.ResponseWriter, r *http.Request) {
	userID := mw.GetUserID(r.Context())
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	tok, err := c.svc.ChatToken(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrUserNotFound):
			httperrors.WriteError(w, httperrors.ErrUserNotFound)
		case errors.Is(err, svc.ErrChatUnavailable):
			httperrors.WriteError(w, httperrors.ErrServiceUnavailable)
		default:
			logger.From(r.Context()).Error("chat token failed", logger.Op("TokenController.Token"), logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError)
		}
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ChatTokenResponse{Token: tok})
}
