package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/tandem/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/tandem/internal/http/errors"
	"github.com/dropDatabas3/tandem/internal/http/helpers"
	mw "github.com/dropDatabas3/tandem/internal/http/middlewares"
	svc "github.com/dropDatabas3/tandem/internal/http/services/auth"
)

// Onboard maneja POST /api/auth/onboarding (requiere sesión).
func (c *Controller) Onboard(w http.ResponseWriter, r *http.Request) {
	userID := mw.GetUserID(r.Context())
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	var req dto.OnboardRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	u, err := c.svc.Onboard(r.Context(), userID, svc.OnboardInput{
		FullName:         req.FullName,
		Bio:              req.Bio,
		NativeLanguage:   req.NativeLanguage,
		LearningLanguage: req.LearningLanguage,
		Location:         req.Location,
	})
	if err != nil {
		c.fail(w, r, "onboarding", err)
		return
	}
	c.ok("onboarding")
	helpers.WriteJSON(w, http.StatusOK, dto.UserResponse{Success: true, User: dto.UserFrom(u)})
}

// Me maneja GET /api/auth/me
func (c *Controller) Me(w http.ResponseWriter, r *http.Request) {
	userID := mw.GetUserID(r.Context())
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	u, err := c.svc.Me(r.Context(), userID)
	if err != nil {
		c.fail(w, r, "me", err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.UserResponse{Success: true, User: dto.UserFrom(u)})
}
