package social

import (
	"context"

	"blip/internal/gateway"
	"blip/internal/model"

	"github.com/ethereum/go-ethereum/common"
)

// ProfileSurface is the slice of the contract gateway used for profile and
// friendship operations.
type ProfileSurface interface {
	CreateProfile(ctx context.Context, name, email, bio string) (*gateway.Receipt, error)
	UpdateBio(ctx context.Context, bio string) (*gateway.Receipt, error)
	UpdateName(ctx context.Context, name string) (*gateway.Receipt, error)
	GetProfile(ctx context.Context, wallet common.Address) (*model.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error)
	GetFriends(ctx context.Context, wallet common.Address) ([]common.Address, error)
	IsFriend(ctx context.Context, a, b common.Address) (bool, error)
	AddFriend(ctx context.Context, friend common.Address) (*gateway.Receipt, error)
	RemoveFriend(ctx context.Context, friend common.Address) (*gateway.Receipt, error)
	SendFriendRequest(ctx context.Context, to common.Address) (*gateway.Receipt, error)
	AcceptFriendRequest(ctx context.Context, from common.Address) (*gateway.Receipt, error)
	RejectFriendRequest(ctx context.Context, from common.Address) (*gateway.Receipt, error)
	ListFriendRequests(ctx context.Context) ([]common.Address, error)
}

// PostSurface is the slice of the contract gateway used for post operations.
type PostSurface interface {
	CreatePost(ctx context.Context, text string, isPublic bool) (*gateway.Receipt, error)
	LikePost(ctx context.Context, postID uint64) (*gateway.Receipt, error)
	CommentOnPost(ctx context.Context, postID uint64, comment string) (*gateway.Receipt, error)
	SharePost(ctx context.Context, postID uint64) (*gateway.Receipt, error)
	GetUserPosts(ctx context.Context, user common.Address) ([]uint64, error)
	GetComments(ctx context.Context, postID uint64) ([]model.Comment, error)
	GetLikes(ctx context.Context, postID uint64) ([]common.Address, error)
	GetPost(ctx context.Context, postID uint64) (*model.Post, error)
}
