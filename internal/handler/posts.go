package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"blip/internal/model"
	"blip/internal/session"
	"blip/internal/social"

	"github.com/gorilla/mux"
)

// PostHandler serves post, like, comment and share routes.
type PostHandler struct {
	sessions *session.Manager
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(sessions *session.Manager) *PostHandler {
	return &PostHandler{sessions: sessions}
}

// Create handles POST /posts
// @Summary      Create post
// @Description  Records the post locally as pending, submits it, and reports the confirmation
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        request  body  model.CreatePostRequest  true  "Post data"
// @Success      200  {object}  model.TxResponse
// @Failure      400  {object}  model.ErrorResponse
// @Router       /posts [post]
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &model.ValidationError{Field: "body", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, err)
		return
	}

	var tx *model.TxResponse
	err := h.sessions.WithSession(func(s *session.Session) error {
		var err error
		tx, err = s.Social.CreatePost(r.Context(), req.Text, req.IsPublic)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// Get handles GET /posts/{id}
// @Summary      Post by id
// @Description  Reads the post and overlays any local optimistic like state
// @Tags         posts
// @Produce      json
// @Param        id  path  int  true  "Post id"
// @Success      200  {object}  model.Post
// @Failure      404  {object}  model.ErrorResponse
// @Router       /posts/{id} [get]
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	var post *model.Post
	err := h.sessions.WithSession(func(s *session.Session) error {
		var err error
		post, err = s.Social.GetPost(r.Context(), id)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// UserPosts handles GET /posts/user/{address}
// @Summary      Posts by author
// @Tags         posts
// @Produce      json
// @Param        address  path  string  true  "Author wallet address"
// @Success      200  {array}  model.Post
// @Failure      400  {object}  model.ErrorResponse
// @Router       /posts/user/{address} [get]
func (h *PostHandler) UserPosts(w http.ResponseWriter, r *http.Request) {
	addr := mux.Vars(r)["address"]
	var posts []model.Post
	err := h.sessions.WithSession(func(s *session.Session) error {
		var err error
		posts, err = s.Social.UserPosts(r.Context(), addr)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// Pending handles GET /posts/pending
// @Summary      Locally pending posts
// @Tags         posts
// @Produce      json
// @Success      200  {array}  social.PendingPost
// @Router       /posts/pending [get]
func (h *PostHandler) Pending(w http.ResponseWriter, r *http.Request) {
	var pending []*social.PendingPost
	err := h.sessions.WithSession(func(s *session.Session) error {
		pending = s.Social.PendingPosts()
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pending)
}

// Like handles POST /posts/{id}/like
// @Summary      Like post
// @Description  Applies the like optimistically and reconciles with the ledger outcome
// @Tags         posts
// @Produce      json
// @Param        id  path  int  true  "Post id"
// @Success      200  {object}  social.LikeResult
// @Failure      409  {object}  model.ErrorResponse
// @Router       /posts/{id}/like [post]
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	var result *social.LikeResult
	err := h.sessions.WithSession(func(s *session.Session) error {
		var err error
		result, err = s.Social.Like(r.Context(), id)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Comment handles POST /posts/{id}/comment
// @Summary      Comment on post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        id       path  int                  true  "Post id"
// @Param        request  body  model.CommentRequest  true  "Comment text"
// @Success      200  {object}  model.TxResponse
// @Failure      400  {object}  model.ErrorResponse
// @Router       /posts/{id}/comment [post]
func (h *PostHandler) Comment(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	var req model.CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &model.ValidationError{Field: "body", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, err)
		return
	}

	var tx *model.TxResponse
	err := h.sessions.WithSession(func(s *session.Session) error {
		var err error
		tx, err = s.Social.Comment(r.Context(), id, req.Text)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// Comments handles GET /posts/{id}/comments
// @Summary      Comments on post
// @Tags         posts
// @Produce      json
// @Param        id  path  int  true  "Post id"
// @Success      200  {array}  model.Comment
// @Router       /posts/{id}/comments [get]
func (h *PostHandler) Comments(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	var comments []model.Comment
	err := h.sessions.WithSession(func(s *session.Session) error {
		var err error
		comments, err = s.Social.Comments(r.Context(), id)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// Likes handles GET /posts/{id}/likes
// @Summary      Addresses that liked a post
// @Tags         posts
// @Produce      json
// @Param        id  path  int  true  "Post id"
// @Success      200  {array}  string
// @Router       /posts/{id}/likes [get]
func (h *PostHandler) Likes(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	likers := []string{}
	err := h.sessions.WithSession(func(s *session.Session) error {
		addrs, err := s.Social.Likes(r.Context(), id)
		if err != nil {
			return err
		}
		for _, a := range addrs {
			likers = append(likers, a.Hex())
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, likers)
}

// Share handles POST /posts/{id}/share
// @Summary      Share post
// @Tags         posts
// @Produce      json
// @Param        id  path  int  true  "Post id"
// @Success      200  {object}  model.TxResponse
// @Router       /posts/{id}/share [post]
func (h *PostHandler) Share(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	var tx *model.TxResponse
	err := h.sessions.WithSession(func(s *session.Session) error {
		var err error
		tx, err = s.Social.Share(r.Context(), id)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func postID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, &model.ValidationError{Field: "id", Message: "post id must be a non-negative integer"})
		return 0, false
	}
	return id, true
}
