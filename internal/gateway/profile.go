package gateway

import (
	"context"
	"math/big"
	"time"

	"blip/internal/model"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// chainPost mirrors the profile contract's post tuple layout.
type chainPost struct {
	Text      string
	Timestamp *big.Int
	IsPublic  bool
}

// CreateProfile submits the one-time profile creation write.
func (g *Gateway) CreateProfile(ctx context.Context, name, email, bio string) (*Receipt, error) {
	return g.transact(ctx, g.profile, "createProfile", name, email, bio)
}

// UpdateBio submits the bio write. Independent of UpdateName.
func (g *Gateway) UpdateBio(ctx context.Context, bio string) (*Receipt, error) {
	return g.transact(ctx, g.profile, "updateBio", bio)
}

// UpdateName submits the name write. Independent of UpdateBio.
func (g *Gateway) UpdateName(ctx context.Context, name string) (*Receipt, error) {
	return g.transact(ctx, g.profile, "updateName", name)
}

// AddFriend adds a direct friendship edge.
func (g *Gateway) AddFriend(ctx context.Context, friend common.Address) (*Receipt, error) {
	return g.transact(ctx, g.profile, "addFriend", friend)
}

// RemoveFriend removes a direct friendship edge.
func (g *Gateway) RemoveFriend(ctx context.Context, friend common.Address) (*Receipt, error) {
	return g.transact(ctx, g.profile, "removeFriend", friend)
}

// IsFriend reports whether two wallets share a friendship edge.
func (g *Gateway) IsFriend(ctx context.Context, a, b common.Address) (bool, error) {
	var out []interface{}
	if err := g.profile.Call(g.callOpts(ctx), &out, "isFriend", a, b); err != nil {
		return false, &model.NetworkError{Op: "isFriend", Err: err}
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// GetProfile reads a profile record by wallet address.
func (g *Gateway) GetProfile(ctx context.Context, wallet common.Address) (*model.Profile, error) {
	var out []interface{}
	if err := g.profile.Call(g.callOpts(ctx), &out, "getProfile", wallet); err != nil {
		return nil, &model.NetworkError{Op: "getProfile", Err: err}
	}
	return unpackProfile(out), nil
}

// GetProfileByEmail reads a profile record by email.
func (g *Gateway) GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error) {
	var out []interface{}
	if err := g.profile.Call(g.callOpts(ctx), &out, "getProfileByEmail", email); err != nil {
		return nil, &model.NetworkError{Op: "getProfileByEmail", Err: err}
	}
	return unpackProfile(out), nil
}

// GetFriends reads the friend address list of a wallet.
func (g *Gateway) GetFriends(ctx context.Context, wallet common.Address) ([]common.Address, error) {
	var out []interface{}
	if err := g.profile.Call(g.callOpts(ctx), &out, "getFriends", wallet); err != nil {
		return nil, &model.NetworkError{Op: "getFriends", Err: err}
	}
	return *abi.ConvertType(out[0], new([]common.Address)).(*[]common.Address), nil
}

// SendFriendRequest creates a pending edge from the signer to `to`.
func (g *Gateway) SendFriendRequest(ctx context.Context, to common.Address) (*Receipt, error) {
	return g.transact(ctx, g.profile, "sendFriendRequest", to)
}

// AcceptFriendRequest resolves the pending edge from `from` as accepted.
func (g *Gateway) AcceptFriendRequest(ctx context.Context, from common.Address) (*Receipt, error) {
	return g.transact(ctx, g.profile, "acceptFriendRequest", from)
}

// RejectFriendRequest resolves the pending edge from `from` as rejected.
func (g *Gateway) RejectFriendRequest(ctx context.Context, from common.Address) (*Receipt, error) {
	return g.transact(ctx, g.profile, "rejectFriendRequest", from)
}

// ListFriendRequests reads the signer's pending incoming request senders.
// The view reads msg.sender, so the call is issued with From set to the
// bound signer.
func (g *Gateway) ListFriendRequests(ctx context.Context) ([]common.Address, error) {
	if _, ok := g.SignerAddress(); !ok {
		return nil, model.ErrNoSession
	}
	var out []interface{}
	if err := g.profile.Call(g.callOpts(ctx), &out, "listFriendRequests"); err != nil {
		return nil, &model.NetworkError{Op: "listFriendRequests", Err: err}
	}
	return *abi.ConvertType(out[0], new([]common.Address)).(*[]common.Address), nil
}

// unpackProfile maps the raw tuple into an explicit struct. Fields may be
// empty for pre-existing or malformed records; defaulting is the social
// layer's concern.
func unpackProfile(out []interface{}) *model.Profile {
	name := *abi.ConvertType(out[0], new(string)).(*string)
	email := *abi.ConvertType(out[1], new(string)).(*string)
	bio := *abi.ConvertType(out[2], new(string)).(*string)
	wallet := *abi.ConvertType(out[3], new(common.Address)).(*common.Address)
	createdAt := *abi.ConvertType(out[4], new(*big.Int)).(**big.Int)
	rawPosts := *abi.ConvertType(out[5], new([]chainPost)).(*[]chainPost)

	p := &model.Profile{
		Name:   name,
		Email:  email,
		Bio:    bio,
		Wallet: wallet,
		Posts:  make([]model.Post, 0, len(rawPosts)),
	}
	if createdAt != nil && createdAt.Sign() > 0 {
		p.CreatedAt = time.Unix(createdAt.Int64(), 0).UTC()
	}
	for i, rp := range rawPosts {
		post := model.Post{
			ID:       uint64(i),
			Author:   wallet,
			Text:     rp.Text,
			IsPublic: rp.IsPublic,
		}
		if rp.Timestamp != nil && rp.Timestamp.Sign() > 0 {
			post.Timestamp = time.Unix(rp.Timestamp.Int64(), 0).UTC()
		}
		p.Posts = append(p.Posts, post)
	}
	return p
}
