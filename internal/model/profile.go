package model

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Profile is the on-chain profile record mapped into explicit fields.
// CreatedAt is assigned by the ledger at creation and never recomputed locally.
type Profile struct {
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Bio       string         `json:"bio"`
	Wallet    common.Address `json:"wallet"`
	CreatedAt time.Time      `json:"createdAt"`
	Posts     []Post         `json:"posts"`
}

// Post is a single post as confirmed by the ledger. ID and Timestamp are
// ledger-assigned; the client orders posts only by Timestamp descending.
type Post struct {
	ID        uint64         `json:"id"`
	Author    common.Address `json:"author"`
	Text      string         `json:"text"`
	Timestamp time.Time      `json:"timestamp"`
	IsPublic  bool           `json:"isPublic"`
	LikeCount uint64         `json:"likeCount"`
	Liked     bool           `json:"liked"`
}

// Comment is a ledger-confirmed comment on a post.
type Comment struct {
	Commenter common.Address `json:"commenter"`
	Text      string         `json:"text"`
	Timestamp time.Time      `json:"timestamp"`
}

// RequestStatus is the lifecycle state of a friend request as seen locally.
// Processing is a client-side overlay: the on-chain write is in flight and no
// second action on the same edge is allowed until it resolves.
type RequestStatus string

const (
	RequestPending    RequestStatus = "pending"
	RequestAccepted   RequestStatus = "accepted"
	RequestRejected   RequestStatus = "rejected"
	RequestProcessing RequestStatus = "processing"
)

// FriendRequest is a pending edge in the friendship graph.
type FriendRequest struct {
	From   common.Address `json:"from"`
	To     common.Address `json:"to"`
	Status RequestStatus  `json:"status"`
}

// TruncateAddress produces the short display form used when a ledger record
// has no name ("0x1234...abcd").
func TruncateAddress(addr common.Address) string {
	s := addr.Hex()
	if len(s) <= 12 {
		return s
	}
	return s[:6] + "..." + s[len(s)-4:]
}
