package handler

import (
	"encoding/json"
	"net/http"

	"blip/internal/avatar"
	"blip/internal/model"
	"blip/internal/session"
	"blip/internal/social"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
)

// ProfileHandler serves profile, avatar and QR routes.
type ProfileHandler struct {
	sessions *session.Manager
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(sessions *session.Manager) *ProfileHandler {
	return &ProfileHandler{sessions: sessions}
}

// Own handles GET /profile
// @Summary      Own profile
// @Tags         profile
// @Produce      json
// @Success      200  {object}  social.ProfileView
// @Failure      401  {object}  model.ErrorResponse
// @Router       /profile [get]
func (h *ProfileHandler) Own(w http.ResponseWriter, r *http.Request) {
	var view *social.ProfileView
	err := h.sessions.WithSession(func(s *session.Session) error {
		var err error
		view, err = s.Social.OwnProfile(r.Context())
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Get handles GET /profile/{address}
// @Summary      Profile by wallet address
// @Tags         profile
// @Produce      json
// @Param        address  path  string  true  "Wallet address"
// @Success      200  {object}  social.ProfileView
// @Failure      404  {object}  model.ErrorResponse
// @Router       /profile/{address} [get]
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	addr := mux.Vars(r)["address"]
	var view *social.ProfileView
	err := h.sessions.WithSession(func(s *session.Session) error {
		var err error
		view, err = s.Social.GetProfile(r.Context(), addr)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetByEmail handles GET /profile/by-email/{email}
// @Summary      Profile by email
// @Description  Resolves an email to its bound wallet and returns that profile
// @Tags         profile
// @Produce      json
// @Param        email  path  string  true  "Email"
// @Success      200  {object}  social.ProfileView
// @Failure      404  {object}  model.ErrorResponse
// @Router       /profile/by-email/{email} [get]
func (h *ProfileHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	var view *social.ProfileView
	err := h.sessions.WithSession(func(s *session.Session) error {
		var err error
		view, err = s.Social.GetProfileByEmail(r.Context(), email)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Update handles PUT /profile
// @Summary      Update profile
// @Description  Updates bio and name as two independent writes and reports field-by-field what landed
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        request  body  model.UpdateProfileRequest  true  "New values"
// @Success      200  {object}  model.UpdateProfileResponse
// @Failure      422  {object}  model.UpdateProfileResponse
// @Router       /profile [put]
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &model.ValidationError{Field: "body", Message: err.Error()})
		return
	}

	var result *model.UpdateProfileResponse
	err := h.sessions.WithSession(func(s *session.Session) error {
		var err error
		result, err = s.Social.UpdateProfile(r.Context(), req.Name, req.Bio)
		return err
	})
	if err != nil {
		if result != nil {
			// Partial outcome: report what changed alongside the failure.
			writeJSON(w, http.StatusUnprocessableEntity, result)
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Avatar handles GET /profile/{address}/avatar
// @Summary      Deterministic avatar features
// @Description  Derives the avatar feature set and renderer URL from the address alone
// @Tags         profile
// @Produce      json
// @Param        address  path  string  true  "Wallet address"
// @Success      200  {object}  model.AvatarResponse
// @Failure      400  {object}  model.ErrorResponse
// @Router       /profile/{address}/avatar [get]
func (h *ProfileHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["address"]
	if !common.IsHexAddress(raw) {
		writeError(w, &model.ValidationError{Field: "address", Message: "not a valid address"})
		return
	}
	features := avatar.Derive(common.HexToAddress(raw))
	writeJSON(w, http.StatusOK, model.AvatarResponse{
		Style:     features.Style,
		Seed:      features.Seed,
		Accessory: features.Accessory,
		Eyes:      features.Eyes,
		Hair:      features.Hair,
		HairColor: features.HairColor,
		Mouth:     features.Mouth,
		SkinColor: features.SkinColor,
		URL:       features.URL(),
	})
}

// QR handles GET /profile/{address}/qr
// @Summary      Share QR code
// @Description  Renders the wallet address as a QR code PNG, base64 encoded
// @Tags         profile
// @Produce      json
// @Param        address  path  string  true  "Wallet address"
// @Success      200  {object}  model.QRResponse
// @Failure      400  {object}  model.ErrorResponse
// @Router       /profile/{address}/qr [get]
func (h *ProfileHandler) QR(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["address"]
	if !common.IsHexAddress(raw) {
		writeError(w, &model.ValidationError{Field: "address", Message: "not a valid address"})
		return
	}
	addr := common.HexToAddress(raw)
	encoded, err := avatar.ShareQR(addr)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.QRResponse{
		Address: addr.Hex(),
		QR:      encoded,
	})
}
