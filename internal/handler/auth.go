package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"blip/internal/client"
	"blip/internal/identity"
	"blip/internal/model"
	"blip/internal/session"
)

// otpWindow is how long an email verification stays good for signup.
const otpWindow = 10 * time.Minute

// AuthHandler serves signup, login, logout, session and OTP routes.
type AuthHandler struct {
	sessions *session.Manager
	otp      *client.OTPClient

	mu       sync.Mutex
	verified map[string]time.Time
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(sessions *session.Manager, otp *client.OTPClient) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		otp:      otp,
		verified: make(map[string]time.Time),
	}
}

// SendOTP handles POST /auth/otp/send
// @Summary      Send verification code
// @Description  Sends a one-time code to the given email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body  model.OTPRequest  true  "Email"
// @Success      200  {object}  map[string]bool
// @Failure      400  {object}  model.ErrorResponse
// @Router       /auth/otp/send [post]
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req model.OTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &model.ValidationError{Field: "body", Message: err.Error()})
		return
	}
	email := identity.NormalizeEmail(req.Email)
	if email == "" {
		writeError(w, &model.ValidationError{Field: "email", Message: "email is required"})
		return
	}

	if err := h.otp.SendCode(r.Context(), email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"sent": true})
}

// VerifyOTP handles POST /auth/otp/verify
// @Summary      Verify code
// @Description  Verifies a one-time code; a success unlocks signup for this email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body  model.OTPVerifyRequest  true  "Email and code"
// @Success      200  {object}  model.OTPVerifyResponse
// @Failure      400  {object}  model.ErrorResponse
// @Router       /auth/otp/verify [post]
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req model.OTPVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &model.ValidationError{Field: "body", Message: err.Error()})
		return
	}
	email := identity.NormalizeEmail(req.Email)
	if email == "" || strings.TrimSpace(req.Code) == "" {
		writeError(w, &model.ValidationError{Field: "code", Message: "email and code are required"})
		return
	}

	result, err := h.otp.VerifyCode(r.Context(), email, strings.TrimSpace(req.Code))
	if err != nil {
		writeError(w, err)
		return
	}
	if result.Verified {
		h.mu.Lock()
		h.verified[email] = time.Now()
		h.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, model.OTPVerifyResponse{Verified: result.Verified})
}

// Signup handles POST /auth/signup
// @Summary      Create account
// @Description  Generates a wallet, funds it, registers the account on chain and creates the profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body  model.SignupRequest  true  "Account data"
// @Success      200  {object}  model.SignupResponse
// @Failure      400  {object}  model.ErrorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &model.ValidationError{Field: "body", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, err)
		return
	}

	email := identity.NormalizeEmail(req.Email)
	if !h.consumeVerified(email) {
		writeError(w, &model.ValidationError{Field: "email", Message: "email is not verified"})
		return
	}

	sess, receipt, err := h.sessions.Signup(r.Context(), email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	// The account exists either way; a failed profile write is reported but
	// does not undo the signup.
	if _, err := sess.Social.CreateProfile(r.Context(), req.Name, email, req.Bio); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.SignupResponse{
		Address: sess.Address().Hex(),
		TxHash:  receipt.TxHash.Hex(),
	})
}

// Login handles POST /auth/login
// @Summary      Log in
// @Description  Verifies credentials, reconstructs or imports the signing key and binds the session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body  model.LoginRequest  true  "Credentials"
// @Success      200  {object}  model.SessionResponse
// @Failure      401  {object}  model.ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &model.ValidationError{Field: "body", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, err)
		return
	}

	sess, err := h.sessions.Login(r.Context(), req.Email, req.Password, req.PrivateKeyHex)
	if err != nil {
		writeError(w, err)
		return
	}

	h.otp.NotifyLogin(sess.Email)

	writeJSON(w, http.StatusOK, model.SessionResponse{
		Active:  true,
		Email:   sess.Email,
		Address: sess.Address().Hex(),
	})
}

// Logout handles POST /auth/logout
// @Summary      Log out
// @Description  Drops the signer binding and erases the stored key
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"loggedOut": true})
}

// Session handles GET /session
// @Summary      Session status
// @Tags         auth
// @Produce      json
// @Success      200  {object}  model.SessionResponse
// @Router       /session [get]
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Current()
	if sess == nil {
		writeJSON(w, http.StatusOK, model.SessionResponse{Active: false})
		return
	}
	writeJSON(w, http.StatusOK, model.SessionResponse{
		Active:  true,
		Email:   sess.Email,
		Address: sess.Address().Hex(),
	})
}

// Resume handles POST /session/resume
// @Summary      Resume session
// @Description  Re-validates the signer binding against the ledger, reconstructing from the keystore if needed
// @Tags         auth
// @Produce      json
// @Success      200  {object}  model.SessionResponse
// @Failure      404  {object}  model.ErrorResponse
// @Router       /session/resume [post]
func (h *AuthHandler) Resume(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Resume(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.SessionResponse{
		Active:  true,
		Email:   sess.Email,
		Address: sess.Address().Hex(),
	})
}

// consumeVerified checks and spends the OTP verification for one signup.
func (h *AuthHandler) consumeVerified(email string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	at, ok := h.verified[email]
	if !ok || time.Since(at) > otpWindow {
		delete(h.verified, email)
		return false
	}
	delete(h.verified, email)
	return true
}
