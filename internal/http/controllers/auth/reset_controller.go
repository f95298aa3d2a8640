package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/tandem/internal/http/dto/auth"
	"github.com/dropDatabas3/tandem/internal/http/helpers"
	svc "github.com/dropDatabas3/tandem/internal/http/services/auth"
)

const (
	// mismo texto exista o no la cuenta
	msgForgot      = "If your email is registered, you will receive an email shortly"
	msgResend      = "If your email is registered, you will receive an OTP shortly"
	msgOTPVerified = "OTP Verified successfully"
	msgResetDone   = "Password reset successful. You can now log in with your new password."
)

// ForgotPassword maneja POST /api/auth/forgot-password
func (c *Controller) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.EmailRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	_, err := c.svc.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		c.fail(w, r, "forgot_password", err)
		return
	}
	c.ok("forgot_password")
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Success: true, Message: msgForgot})
}

// ResendOTP maneja POST /api/auth/resend-otp
func (c *Controller) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.EmailRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	_, err := c.svc.ResendOTP(r.Context(), req.Email)
	if err != nil {
		c.fail(w, r, "resend_otp", err)
		return
	}
	c.ok("resend_otp")
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Success: true, Message: msgResend})
}

// VerifyOTP maneja POST /api/auth/verify-otp
func (c *Controller) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyOTPRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if err := c.svc.VerifyOTP(r.Context(), req.Email, req.OTP); err != nil {
		c.fail(w, r, "verify_otp", err)
		return
	}
	c.ok("verify_otp")
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Success: true, Message: msgOTPVerified})
}

// ResetPassword maneja POST /api/auth/reset-password
func (c *Controller) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	err := c.svc.ResetPassword(r.Context(), svc.ResetPasswordInput{
		Email:       req.Email,
		OTP:         req.OTP,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		c.fail(w, r, "reset_password", err)
		return
	}
	c.ok("reset_password")
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Success: true, Message: msgResetDone})
}
