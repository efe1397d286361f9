package gateway

import (
	"context"
	"math/big"
	"time"

	"blip/internal/model"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// chainComment mirrors the post contract's comment tuple layout.
type chainComment struct {
	Commenter common.Address
	Text      string
	Timestamp *big.Int
}

// CreatePost submits a new post write.
func (g *Gateway) CreatePost(ctx context.Context, text string, isPublic bool) (*Receipt, error) {
	return g.transact(ctx, g.post, "createPost", text, isPublic)
}

// LikePost submits a like for the given ledger-assigned post id.
func (g *Gateway) LikePost(ctx context.Context, postID uint64) (*Receipt, error) {
	return g.transact(ctx, g.post, "likePost", new(big.Int).SetUint64(postID))
}

// CommentOnPost submits a comment on the given post.
func (g *Gateway) CommentOnPost(ctx context.Context, postID uint64, comment string) (*Receipt, error) {
	return g.transact(ctx, g.post, "commentOnPost", new(big.Int).SetUint64(postID), comment)
}

// SharePost submits a share of the given post.
func (g *Gateway) SharePost(ctx context.Context, postID uint64) (*Receipt, error) {
	return g.transact(ctx, g.post, "sharePost", new(big.Int).SetUint64(postID))
}

// GetUserPosts reads the ledger-assigned post ids belonging to a user.
func (g *Gateway) GetUserPosts(ctx context.Context, user common.Address) ([]uint64, error) {
	var out []interface{}
	if err := g.post.Call(g.callOpts(ctx), &out, "getUserPosts", user); err != nil {
		return nil, &model.NetworkError{Op: "getUserPosts", Err: err}
	}
	raw := *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int)
	ids := make([]uint64, 0, len(raw))
	for _, id := range raw {
		if id != nil {
			ids = append(ids, id.Uint64())
		}
	}
	return ids, nil
}

// GetComments reads the comments of a post.
func (g *Gateway) GetComments(ctx context.Context, postID uint64) ([]model.Comment, error) {
	var out []interface{}
	if err := g.post.Call(g.callOpts(ctx), &out, "getComments", new(big.Int).SetUint64(postID)); err != nil {
		return nil, &model.NetworkError{Op: "getComments", Err: err}
	}
	raw := *abi.ConvertType(out[0], new([]chainComment)).(*[]chainComment)
	comments := make([]model.Comment, 0, len(raw))
	for _, rc := range raw {
		c := model.Comment{Commenter: rc.Commenter, Text: rc.Text}
		if rc.Timestamp != nil && rc.Timestamp.Sign() > 0 {
			c.Timestamp = time.Unix(rc.Timestamp.Int64(), 0).UTC()
		}
		comments = append(comments, c)
	}
	return comments, nil
}

// GetLikes reads the addresses that liked a post.
func (g *Gateway) GetLikes(ctx context.Context, postID uint64) ([]common.Address, error) {
	var out []interface{}
	if err := g.post.Call(g.callOpts(ctx), &out, "getLikes", new(big.Int).SetUint64(postID)); err != nil {
		return nil, &model.NetworkError{Op: "getLikes", Err: err}
	}
	return *abi.ConvertType(out[0], new([]common.Address)).(*[]common.Address), nil
}

// GetPost reads a single post by id.
func (g *Gateway) GetPost(ctx context.Context, postID uint64) (*model.Post, error) {
	var out []interface{}
	if err := g.post.Call(g.callOpts(ctx), &out, "posts", new(big.Int).SetUint64(postID)); err != nil {
		return nil, &model.NetworkError{Op: "posts", Err: err}
	}
	id := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	author := *abi.ConvertType(out[1], new(common.Address)).(*common.Address)
	text := *abi.ConvertType(out[2], new(string)).(*string)
	timestamp := *abi.ConvertType(out[3], new(*big.Int)).(**big.Int)
	isPublic := *abi.ConvertType(out[4], new(bool)).(*bool)
	likeCount := *abi.ConvertType(out[5], new(*big.Int)).(**big.Int)

	p := &model.Post{
		Author:   author,
		Text:     text,
		IsPublic: isPublic,
	}
	if id != nil {
		p.ID = id.Uint64()
	}
	if timestamp != nil && timestamp.Sign() > 0 {
		p.Timestamp = time.Unix(timestamp.Int64(), 0).UTC()
	}
	if likeCount != nil {
		p.LikeCount = likeCount.Uint64()
	}
	return p, nil
}
