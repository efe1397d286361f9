package handler

import (
	"encoding/json"
	"net/http"

	"blip/internal/model"
	"blip/internal/session"
	"blip/internal/social"

	"github.com/gorilla/mux"
)

// FriendHandler serves friendship and friend-request routes.
type FriendHandler struct {
	sessions *session.Manager
}

// NewFriendHandler creates a new FriendHandler
func NewFriendHandler(sessions *session.Manager) *FriendHandler {
	return &FriendHandler{sessions: sessions}
}

// List handles GET /friends
// @Summary      Friend list with profiles
// @Tags         friends
// @Produce      json
// @Success      200  {array}  social.ProfileView
// @Failure      401  {object}  model.ErrorResponse
// @Router       /friends [get]
func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	var friends []social.ProfileView
	err := h.sessions.WithSession(func(s *session.Session) error {
		var err error
		friends, err = s.Social.Friends(r.Context())
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

// Requests handles GET /friends/requests
// @Summary      Incoming friend requests
// @Description  Pending requests from the ledger, with in-flight ones tagged processing
// @Tags         friends
// @Produce      json
// @Success      200  {array}  social.RequestView
// @Router       /friends/requests [get]
func (h *FriendHandler) Requests(w http.ResponseWriter, r *http.Request) {
	var requests []social.RequestView
	err := h.sessions.WithSession(func(s *session.Session) error {
		var err error
		requests, err = s.Social.ListFriendRequests(r.Context())
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// Send handles POST /friends/requests
// @Summary      Send friend request
// @Tags         friends
// @Accept       json
// @Produce      json
// @Param        request  body  model.FriendRequestAction  true  "Target address"
// @Success      200  {object}  model.TxResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /friends/requests [post]
func (h *FriendHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req model.FriendRequestAction
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &model.ValidationError{Field: "body", Message: err.Error()})
		return
	}
	h.act(w, r, req.Address, func(s *session.Session, addr string) (*model.TxResponse, error) {
		return s.Social.SendFriendRequest(r.Context(), addr)
	})
}

// Accept handles POST /friends/requests/{address}/accept
// @Summary      Accept friend request
// @Tags         friends
// @Produce      json
// @Param        address  path  string  true  "Sender address"
// @Success      200  {object}  model.TxResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /friends/requests/{address}/accept [post]
func (h *FriendHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, mux.Vars(r)["address"], func(s *session.Session, addr string) (*model.TxResponse, error) {
		return s.Social.AcceptFriendRequest(r.Context(), addr)
	})
}

// Reject handles POST /friends/requests/{address}/reject
// @Summary      Reject friend request
// @Tags         friends
// @Produce      json
// @Param        address  path  string  true  "Sender address"
// @Success      200  {object}  model.TxResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /friends/requests/{address}/reject [post]
func (h *FriendHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, mux.Vars(r)["address"], func(s *session.Session, addr string) (*model.TxResponse, error) {
		return s.Social.RejectFriendRequest(r.Context(), addr)
	})
}

// Add handles POST /friends/{address}
// @Summary      Add friend directly
// @Description  Creates the friendship edge without the request handshake
// @Tags         friends
// @Produce      json
// @Param        address  path  string  true  "Friend address"
// @Success      200  {object}  model.TxResponse
// @Failure      400  {object}  model.ErrorResponse
// @Router       /friends/{address} [post]
func (h *FriendHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, mux.Vars(r)["address"], func(s *session.Session, addr string) (*model.TxResponse, error) {
		return s.Social.AddFriend(r.Context(), addr)
	})
}

// Remove handles DELETE /friends/{address}
// @Summary      Remove friend
// @Tags         friends
// @Produce      json
// @Param        address  path  string  true  "Friend address"
// @Success      200  {object}  model.TxResponse
// @Router       /friends/{address} [delete]
func (h *FriendHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, mux.Vars(r)["address"], func(s *session.Session, addr string) (*model.TxResponse, error) {
		return s.Social.RemoveFriend(r.Context(), addr)
	})
}

// IsFriend handles GET /friends/{address}
// @Summary      Friendship status with another user
// @Tags         friends
// @Produce      json
// @Param        address  path  string  true  "Other address"
// @Success      200  {object}  map[string]bool
// @Router       /friends/{address} [get]
func (h *FriendHandler) IsFriend(w http.ResponseWriter, r *http.Request) {
	addr := mux.Vars(r)["address"]
	var isFriend bool
	err := h.sessions.WithSession(func(s *session.Session) error {
		var err error
		isFriend, err = s.Social.IsFriend(r.Context(), addr)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isFriend": isFriend})
}

func (h *FriendHandler) act(w http.ResponseWriter, r *http.Request, addr string, op func(*session.Session, string) (*model.TxResponse, error)) {
	var tx *model.TxResponse
	err := h.sessions.WithSession(func(s *session.Session) error {
		var err error
		tx, err = op(s, addr)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}
