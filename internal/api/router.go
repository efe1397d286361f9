package api

import (
	"net/http"

	"blip/internal/client"
	"blip/internal/handler"
	"blip/internal/session"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRouter sets up router with handlers
func SetupRouter(sessions *session.Manager, otp *client.OTPClient, ipfs *client.IPFSClient) http.Handler {
	auth := handler.NewAuthHandler(sessions, otp)
	profile := handler.NewProfileHandler(sessions)
	posts := handler.NewPostHandler(sessions)
	friends := handler.NewFriendHandler(sessions)
	media := handler.NewMediaHandler(ipfs)

	r := mux.NewRouter()

	// Swagger UI
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	// Auth and session
	r.HandleFunc("/auth/signup", auth.Signup).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", auth.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", auth.Logout).Methods(http.MethodPost)
	r.HandleFunc("/auth/otp/send", auth.SendOTP).Methods(http.MethodPost)
	r.HandleFunc("/auth/otp/verify", auth.VerifyOTP).Methods(http.MethodPost)
	r.HandleFunc("/session", auth.Session).Methods(http.MethodGet)
	r.HandleFunc("/session/resume", auth.Resume).Methods(http.MethodPost)

	// Profiles
	r.HandleFunc("/profile", profile.Own).Methods(http.MethodGet)
	r.HandleFunc("/profile", profile.Update).Methods(http.MethodPut)
	r.HandleFunc("/profile/by-email/{email}", profile.GetByEmail).Methods(http.MethodGet)
	r.HandleFunc("/profile/{address}/avatar", profile.Avatar).Methods(http.MethodGet)
	r.HandleFunc("/profile/{address}/qr", profile.QR).Methods(http.MethodGet)
	r.HandleFunc("/profile/{address}", profile.Get).Methods(http.MethodGet)

	// Posts
	r.HandleFunc("/posts", posts.Create).Methods(http.MethodPost)
	r.HandleFunc("/posts/pending", posts.Pending).Methods(http.MethodGet)
	r.HandleFunc("/posts/user/{address}", posts.UserPosts).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id}/like", posts.Like).Methods(http.MethodPost)
	r.HandleFunc("/posts/{id}/likes", posts.Likes).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id}/comment", posts.Comment).Methods(http.MethodPost)
	r.HandleFunc("/posts/{id}/comments", posts.Comments).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id}/share", posts.Share).Methods(http.MethodPost)
	r.HandleFunc("/posts/{id}", posts.Get).Methods(http.MethodGet)

	// Friends
	r.HandleFunc("/friends", friends.List).Methods(http.MethodGet)
	r.HandleFunc("/friends/requests", friends.Requests).Methods(http.MethodGet)
	r.HandleFunc("/friends/requests", friends.Send).Methods(http.MethodPost)
	r.HandleFunc("/friends/requests/{address}/accept", friends.Accept).Methods(http.MethodPost)
	r.HandleFunc("/friends/requests/{address}/reject", friends.Reject).Methods(http.MethodPost)
	r.HandleFunc("/friends/{address}", friends.IsFriend).Methods(http.MethodGet)
	r.HandleFunc("/friends/{address}", friends.Add).Methods(http.MethodPost)
	r.HandleFunc("/friends/{address}", friends.Remove).Methods(http.MethodDelete)

	// Media
	r.HandleFunc("/media", media.Upload).Methods(http.MethodPost)

	return r
}
