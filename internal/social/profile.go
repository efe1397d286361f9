package social

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"blip/internal/avatar"
	"blip/internal/model"

	"github.com/ethereum/go-ethereum/common"
)

// ProfileView is a profile with defensive defaults applied and the derived
// avatar attached. Ledger records may be partially populated; every field
// the UI needs has a usable value here.
type ProfileView struct {
	model.Profile
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

// PartialUpdateError reports an updateProfile call where the two independent
// writes did not both succeed.
type PartialUpdateError struct {
	BioErr  error
	NameErr error
}

func (e *PartialUpdateError) Error() string {
	switch {
	case e.BioErr != nil && e.NameErr != nil:
		return fmt.Sprintf("profile update failed: bio: %v; name: %v", e.BioErr, e.NameErr)
	case e.BioErr != nil:
		return fmt.Sprintf("bio update failed: %v", e.BioErr)
	case e.NameErr != nil:
		return fmt.Sprintf("name update failed (bio was updated): %v", e.NameErr)
	default:
		return "profile update failed"
	}
}

// CreateProfile submits the one-time profile creation. A "profile exists"
// revert is ledger-enforced and surfaced as a domain error.
func (c *Client) CreateProfile(ctx context.Context, name, email, bio string) (*model.TxResponse, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &model.ValidationError{Field: "name", Message: "name is required"}
	}
	receipt, err := c.profiles.CreateProfile(ctx, strings.TrimSpace(name), strings.ToLower(strings.TrimSpace(email)), bio)
	if err != nil {
		return nil, err
	}
	return &model.TxResponse{TxHash: receipt.TxHash.Hex(), BlockNumber: receipt.BlockNumber}, nil
}

// UpdateProfile performs the two independent ledger writes (bio, then name).
// Local state reconciles field-by-field: the response reports exactly which
// fields landed, and a partial failure is an error that still carries the
// successful half.
func (c *Client) UpdateProfile(ctx context.Context, name, bio string) (*model.UpdateProfileResponse, error) {
	resp := &model.UpdateProfileResponse{}

	if _, err := c.profiles.UpdateBio(ctx, bio); err != nil {
		resp.Error = err.Error()
		return resp, &PartialUpdateError{BioErr: err}
	}
	resp.BioUpdated = true

	if _, err := c.profiles.UpdateName(ctx, strings.TrimSpace(name)); err != nil {
		resp.Error = err.Error()
		return resp, &PartialUpdateError{NameErr: err}
	}
	resp.NameUpdated = true

	return resp, nil
}

// GetProfile reads a profile by wallet address with defaults applied.
func (c *Client) GetProfile(ctx context.Context, wallet string) (*ProfileView, error) {
	addr, err := parseAddress(wallet)
	if err != nil {
		return nil, err
	}
	p, err := c.profiles.GetProfile(ctx, addr)
	if err != nil {
		return nil, err
	}
	return c.buildView(addr, p), nil
}

// OwnProfile reads the session identity's profile.
func (c *Client) OwnProfile(ctx context.Context) (*ProfileView, error) {
	p, err := c.profiles.GetProfile(ctx, c.self)
	if err != nil {
		return nil, err
	}
	return c.buildView(c.self, p), nil
}

// GetProfileByEmail resolves a profile through the email lookup. An unbound
// email surfaces as model.ErrNotRegistered.
func (c *Client) GetProfileByEmail(ctx context.Context, email string) (*ProfileView, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, &model.ValidationError{Field: "email", Message: "email is required"}
	}
	p, err := c.profiles.GetProfileByEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if p.Wallet == (common.Address{}) {
		return nil, model.ErrNotRegistered
	}
	return c.buildView(p.Wallet, p), nil
}

// buildView applies defensive defaults: a record with no name renders as the
// truncated address, posts are ordered by ledger timestamp descending, and
// the avatar is derived deterministically from the address.
func (c *Client) buildView(addr common.Address, p *model.Profile) *ProfileView {
	view := &ProfileView{Profile: *p}
	if view.Wallet == (common.Address{}) {
		view.Wallet = addr
	}
	view.DisplayName = strings.TrimSpace(p.Name)
	if view.DisplayName == "" {
		view.DisplayName = model.TruncateAddress(view.Wallet)
	}
	if view.Posts == nil {
		view.Posts = []model.Post{}
	}
	sort.SliceStable(view.Posts, func(i, j int) bool {
		return view.Posts[i].Timestamp.After(view.Posts[j].Timestamp)
	})
	view.AvatarURL = avatar.Derive(view.Wallet).URL()
	return view
}

func parseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, &model.ValidationError{Field: "address", Message: "malformed wallet address"}
	}
	return common.HexToAddress(s), nil
}
