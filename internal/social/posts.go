package social

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"blip/internal/logger"
	"blip/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// PendingPost is a locally created post awaiting ledger confirmation. The
// ledger alone assigns identity and ordering; pending posts carry a local id
// only so the UI can track them until the canonical record appears.
type PendingPost struct {
	LocalID  uint64    `json:"localId"`
	Text     string    `json:"text"`
	IsPublic bool      `json:"isPublic"`
	Created  time.Time `json:"created"`
	State    string    `json:"state"`
}

// LikeResult reflects the post's like state after a Like call.
type LikeResult struct {
	PostID    uint64 `json:"postId"`
	Liked     bool   `json:"liked"`
	LikeCount uint64 `json:"likeCount"`
	TxHash    string `json:"txHash,omitempty"`
}

// CreatePost validates, optimistically records, and submits a new post.
func (c *Client) CreatePost(ctx context.Context, text string, isPublic bool) (*model.TxResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &model.ValidationError{Field: "text", Message: "post text cannot be empty"}
	}

	c.mu.Lock()
	c.nextLocal++
	draft := &PendingPost{
		LocalID:  c.nextLocal,
		Text:     text,
		IsPublic: isPublic,
		Created:  time.Now().UTC(),
		State:    StatePending.String(),
	}
	c.pending = append(c.pending, draft)
	c.mu.Unlock()

	receipt, err := c.posts.CreatePost(ctx, text, isPublic)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		// Roll the draft out entirely; the pre-operation state had no post.
		c.dropPendingLocked(draft.LocalID)
		return nil, err
	}
	// Confirmed: the canonical record (with ledger timestamp) arrives on the
	// next read, so the draft is no longer needed.
	c.dropPendingLocked(draft.LocalID)
	return &model.TxResponse{TxHash: receipt.TxHash.Hex(), BlockNumber: receipt.BlockNumber}, nil
}

// PendingPosts returns drafts still awaiting confirmation.
func (c *Client) PendingPosts() []*PendingPost {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*PendingPost, len(c.pending))
	copy(out, c.pending)
	return out
}

func (c *Client) dropPendingLocked(localID uint64) {
	for i, p := range c.pending {
		if p.LocalID == localID {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

// Like optimistically marks the post liked and submits the write. A second
// like on an optimistically marked post is suppressed locally; an
// "already liked" revert (possible when the marker was lost across restart)
// is absorbed as confirmation rather than surfaced as failure.
func (c *Client) Like(ctx context.Context, postID uint64) (*LikeResult, error) {
	st := c.postStateFor(postID)

	st.mu.Lock()
	if !st.counted {
		// Seed the counter from the ledger before the optimistic bump so the
		// rollback target is the true pre-operation value.
		st.mu.Unlock()
		if post, err := c.posts.GetPost(ctx, postID); err == nil {
			st.mu.Lock()
			if !st.counted {
				st.likeCount = post.LikeCount
				st.counted = true
			}
		} else {
			st.mu.Lock()
		}
	}

	if st.op == StatePending {
		st.mu.Unlock()
		return nil, model.ErrOperationInFlight
	}
	if st.liked {
		res := &LikeResult{PostID: postID, Liked: true, LikeCount: st.likeCount}
		st.mu.Unlock()
		return res, nil
	}

	prevLiked, prevCount := st.liked, st.likeCount
	st.liked = true
	st.likeCount++
	st.op.begin()
	st.mu.Unlock()

	receipt, err := c.posts.LikePost(ctx, postID)

	st.mu.Lock()
	defer st.mu.Unlock()
	if err != nil {
		var revert *model.RevertError
		if errors.As(err, &revert) && isAlreadyLiked(revert.Reason) {
			// The ledger already counts this like; keep the flag, restore the
			// counter read from chain.
			st.liked = true
			st.likeCount = prevCount
			st.op.confirm()
			logger.Debug("like already recorded on chain", zap.Uint64("post", postID))
			return &LikeResult{PostID: postID, Liked: true, LikeCount: st.likeCount}, nil
		}
		st.liked = prevLiked
		st.likeCount = prevCount
		st.op.rollback()
		return nil, err
	}

	st.op.confirm()
	return &LikeResult{PostID: postID, Liked: true, LikeCount: st.likeCount, TxHash: receipt.TxHash.Hex()}, nil
}

// LikeState reports the local optimistic view of a post's like status.
func (c *Client) LikeState(postID uint64) (liked bool, likeCount uint64, state OpState) {
	st := c.postStateFor(postID)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.liked, st.likeCount, st.op
}

// Comment validates and submits a comment on a post.
func (c *Client) Comment(ctx context.Context, postID uint64, text string) (*model.TxResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &model.ValidationError{Field: "text", Message: "comment text cannot be empty"}
	}
	receipt, err := c.posts.CommentOnPost(ctx, postID, text)
	if err != nil {
		return nil, err
	}
	return &model.TxResponse{TxHash: receipt.TxHash.Hex(), BlockNumber: receipt.BlockNumber}, nil
}

// Share submits a share of a post.
func (c *Client) Share(ctx context.Context, postID uint64) (*model.TxResponse, error) {
	receipt, err := c.posts.SharePost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &model.TxResponse{TxHash: receipt.TxHash.Hex(), BlockNumber: receipt.BlockNumber}, nil
}

// GetPost reads one post, overlaying the local optimistic like state and
// seeding it from the ledger on first sight.
func (c *Client) GetPost(ctx context.Context, postID uint64) (*model.Post, error) {
	post, err := c.posts.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	st := c.postStateFor(postID)
	st.mu.Lock()
	if st.op != StatePending {
		st.likeCount = post.LikeCount
		st.counted = true
	}
	post.LikeCount = st.likeCount
	post.Liked = st.liked
	st.mu.Unlock()
	return post, nil
}

// UserPosts reads a user's posts by ledger-assigned id, newest first.
func (c *Client) UserPosts(ctx context.Context, user string) ([]model.Post, error) {
	addr, err := parseAddress(user)
	if err != nil {
		return nil, err
	}
	ids, err := c.posts.GetUserPosts(ctx, addr)
	if err != nil {
		return nil, err
	}
	out := make([]model.Post, 0, len(ids))
	for _, id := range ids {
		post, err := c.GetPost(ctx, id)
		if err != nil {
			logger.Warn("skipping unreadable post", zap.Uint64("id", id), zap.Error(err))
			continue
		}
		out = append(out, *post)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// Comments reads a post's comments.
func (c *Client) Comments(ctx context.Context, postID uint64) ([]model.Comment, error) {
	return c.posts.GetComments(ctx, postID)
}

// Likes returns the addresses that have liked a post.
func (c *Client) Likes(ctx context.Context, postID uint64) ([]common.Address, error) {
	return c.posts.GetLikes(ctx, postID)
}

func isAlreadyLiked(reason string) bool {
	return strings.Contains(strings.ToLower(reason), "already liked")
}
