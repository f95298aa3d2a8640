package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/tandem/internal/http/dto/auth"
	"github.com/dropDatabas3/tandem/internal/http/helpers"
	svc "github.com/dropDatabas3/tandem/internal/http/services/auth"
)

// Signup maneja POST /api/auth/signup
func (c *Controller) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	res, err := c.svc.Signup(r.Context(), svc.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		c.fail(w, r, "signup", err)
		return
	}
	c.ok("signup")
	http.SetCookie(w, c.cookie.Build(res.Token))
	helpers.WriteJSON(w, http.StatusCreated, dto.UserResponse{Success: true, User: dto.UserFrom(res.User)})
}

// Login maneja POST /api/auth/login
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	res, err := c.svc.Login(r.Context(), svc.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		c.fail(w, r, "login", err)
		return
	}
	c.ok("login")
	http.SetCookie(w, c.cookie.Build(res.Token))
	helpers.WriteJSON(w, http.StatusOK, dto.UserResponse{Success: true, User: dto.UserFrom(res.User)})
}

// Logout maneja POST /api/auth/logout. No requiere sesión: siempre limpia la cookie.
func (c *Controller) Logout(w http.ResponseWriter, _ *http.Request) {
	c.ok("logout")
	http.SetCookie(w, c.cookie.Deletion())
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Success: true, Message: "Logged out successfully"})
}
