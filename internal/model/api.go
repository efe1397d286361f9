package model

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SignupRequest represents request for POST /auth/signup
type SignupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Bio      string `json:"bio"`
}

// Validate validates signup fields before any network call is made.
func (r *SignupRequest) Validate() error {
	if !emailRe.MatchString(strings.TrimSpace(strings.ToLower(r.Email))) {
		return &ValidationError{Field: "email", Message: "malformed email"}
	}
	if strings.TrimSpace(r.Password) == "" {
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	return nil
}

// LoginRequest represents request for POST /auth/login.
// PrivateKeyHex is only needed when the device has no stored key yet
// (fresh install); it is persisted to the encrypted keystore and never echoed.
type LoginRequest struct {
	Email         string `json:"email" binding:"required"`
	Password      string `json:"password" binding:"required"`
	PrivateKeyHex string `json:"privateKeyHex,omitempty"`
}

// Validate validates login fields before any network call is made.
func (r *LoginRequest) Validate() error {
	if !emailRe.MatchString(strings.TrimSpace(strings.ToLower(r.Email))) {
		return &ValidationError{Field: "email", Message: "malformed email"}
	}
	if strings.TrimSpace(r.Password) == "" {
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	return nil
}

// SessionResponse represents response for GET /session and POST /auth/login
type SessionResponse struct {
	Active  bool   `json:"active"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// SignupResponse represents response for POST /auth/signup
type SignupResponse struct {
	Address string `json:"address"`
	TxHash  string `json:"txHash"`
}

// UpdateProfileRequest represents request for PUT /profile
type UpdateProfileRequest struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

// UpdateProfileResponse reports field-by-field what actually changed on chain.
// The two writes are independent; one can land while the other fails.
type UpdateProfileResponse struct {
	BioUpdated  bool   `json:"bioUpdated"`
	NameUpdated bool   `json:"nameUpdated"`
	Error       string `json:"error,omitempty"`
}

// CreatePostRequest represents request for POST /posts
type CreatePostRequest struct {
	Text     string `json:"text"`
	IsPublic bool   `json:"isPublic"`
}

// Validate rejects empty post text locally, before the ledger is involved.
func (r *CreatePostRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return &ValidationError{Field: "text", Message: "post text cannot be empty"}
	}
	return nil
}

// CommentRequest represents request for POST /posts/{id}/comment
type CommentRequest struct {
	Text string `json:"text"`
}

// Validate rejects empty comment text locally.
func (r *CommentRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return &ValidationError{Field: "text", Message: "comment text cannot be empty"}
	}
	return nil
}

// FriendRequestAction represents request for POST /friends/requests
type FriendRequestAction struct {
	Address string `json:"address" binding:"required"`
}

// TxResponse represents the confirmation of a single write operation.
type TxResponse struct {
	TxHash      string `json:"txHash"`
	BlockNumber uint64 `json:"blockNumber"`
}

// UploadResponse represents response for POST /media
type UploadResponse struct {
	CID string `json:"cid"`
}

// OTPRequest represents request for POST /auth/otp/send
type OTPRequest struct {
	Email string `json:"email" binding:"required"`
}

// OTPVerifyRequest represents request for POST /auth/otp/verify
type OTPVerifyRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// OTPVerifyResponse represents response for POST /auth/otp/verify
type OTPVerifyResponse struct {
	Verified bool `json:"verified"`
}

// AvatarResponse represents response for GET /profile/{address}/avatar
type AvatarResponse struct {
	Style     string `json:"style"`
	Seed      string `json:"seed"`
	Accessory string `json:"accessory"`
	Eyes      string `json:"eyes"`
	Hair      string `json:"hair"`
	HairColor string `json:"hairColor"`
	Mouth     string `json:"mouth"`
	SkinColor string `json:"skinColor"`
	URL       string `json:"url"`
}

// QRResponse represents response for GET /profile/{address}/qr
type QRResponse struct {
	Address string `json:"address"`
	QR      string `json:"qr"` // base64 PNG
}
