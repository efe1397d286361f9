package social

import (
	"context"

	"blip/internal/logger"
	"blip/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// RequestView is a pending friend request enriched with the sender's profile
// fields and the local processing overlay.
type RequestView struct {
	From        common.Address      `json:"from"`
	DisplayName string              `json:"displayName"`
	AvatarURL   string              `json:"avatarUrl"`
	Status      model.RequestStatus `json:"status"`
}

// SendFriendRequest creates a pending edge toward `to`. The edge is tagged
// processing while the write is in flight; a second action on the same edge
// is rejected until it resolves.
func (c *Client) SendFriendRequest(ctx context.Context, to string) (*model.TxResponse, error) {
	addr, err := parseAddress(to)
	if err != nil {
		return nil, err
	}
	if addr == c.self {
		return nil, &model.ValidationError{Field: "address", Message: "cannot friend yourself"}
	}
	return c.resolveRequest(ctx, addr, "", func() (*model.TxResponse, error) {
		receipt, err := c.profiles.SendFriendRequest(ctx, addr)
		if err != nil {
			return nil, err
		}
		return &model.TxResponse{TxHash: receipt.TxHash.Hex(), BlockNumber: receipt.BlockNumber}, nil
	})
}

// AcceptFriendRequest resolves the pending edge from `from` as accepted.
func (c *Client) AcceptFriendRequest(ctx context.Context, from string) (*model.TxResponse, error) {
	addr, err := parseAddress(from)
	if err != nil {
		return nil, err
	}
	return c.resolveRequest(ctx, addr, string(model.RequestAccepted), func() (*model.TxResponse, error) {
		receipt, err := c.profiles.AcceptFriendRequest(ctx, addr)
		if err != nil {
			return nil, err
		}
		return &model.TxResponse{TxHash: receipt.TxHash.Hex(), BlockNumber: receipt.BlockNumber}, nil
	})
}

// RejectFriendRequest resolves the pending edge from `from` as rejected.
func (c *Client) RejectFriendRequest(ctx context.Context, from string) (*model.TxResponse, error) {
	addr, err := parseAddress(from)
	if err != nil {
		return nil, err
	}
	return c.resolveRequest(ctx, addr, string(model.RequestRejected), func() (*model.TxResponse, error) {
		receipt, err := c.profiles.RejectFriendRequest(ctx, addr)
		if err != nil {
			return nil, err
		}
		return &model.TxResponse{TxHash: receipt.TxHash.Hex(), BlockNumber: receipt.BlockNumber}, nil
	})
}

// resolveRequest runs one friend-request write under the edge's optimistic
// guard. resolved is the terminal status recorded locally on success ("" for
// sends, which stay pending until the counterparty acts).
func (c *Client) resolveRequest(ctx context.Context, addr common.Address, resolved string, submit func() (*model.TxResponse, error)) (*model.TxResponse, error) {
	st := c.requestStateFor(addr)

	st.mu.Lock()
	if !st.op.begin() {
		st.mu.Unlock()
		return nil, model.ErrOperationInFlight
	}
	prevStatus := st.status
	st.mu.Unlock()

	resp, err := submit()

	st.mu.Lock()
	defer st.mu.Unlock()
	if err != nil {
		st.status = prevStatus
		st.op.rollback()
		return nil, err
	}
	st.status = resolved
	st.op.confirm()
	return resp, nil
}

// ListFriendRequests reads the pending incoming requests and overlays local
// state: edges with a write in flight show processing, and edges already
// resolved locally are filtered out while the ledger read catches up
// (read-after-write is eventually consistent).
func (c *Client) ListFriendRequests(ctx context.Context) ([]RequestView, error) {
	senders, err := c.profiles.ListFriendRequests(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]RequestView, 0, len(senders))
	for _, from := range senders {
		st := c.requestStateFor(from)
		st.mu.Lock()
		op, status := st.op, st.status
		st.mu.Unlock()

		if status != "" {
			// Locally resolved; drop from the pending list.
			continue
		}

		view := RequestView{From: from, Status: model.RequestPending}
		if op == StatePending {
			view.Status = model.RequestProcessing
		}

		// Each field from the ledger is defensively defaulted; a sender
		// without a readable profile still renders as a truncated address.
		if profile, perr := c.GetProfile(ctx, from.Hex()); perr == nil {
			view.DisplayName = profile.DisplayName
			view.AvatarURL = profile.AvatarURL
		} else {
			view.DisplayName = model.TruncateAddress(from)
			logger.Debug("request sender profile unavailable",
				zap.String("from", from.Hex()), zap.Error(perr))
		}
		views = append(views, view)
	}
	return views, nil
}

// Friends reads the session identity's confirmed friends with profiles.
func (c *Client) Friends(ctx context.Context) ([]ProfileView, error) {
	addrs, err := c.profiles.GetFriends(ctx, c.self)
	if err != nil {
		return nil, err
	}
	out := make([]ProfileView, 0, len(addrs))
	for _, addr := range addrs {
		view, perr := c.GetProfile(ctx, addr.Hex())
		if perr != nil {
			// A friend edge with an unreadable profile still shows up.
			out = append(out, ProfileView{
				Profile:     model.Profile{Wallet: addr, Posts: []model.Post{}},
				DisplayName: model.TruncateAddress(addr),
			})
			continue
		}
		out = append(out, *view)
	}
	return out, nil
}

// IsFriend reports whether the session identity shares an edge with other.
func (c *Client) IsFriend(ctx context.Context, other string) (bool, error) {
	addr, err := parseAddress(other)
	if err != nil {
		return false, err
	}
	return c.profiles.IsFriend(ctx, c.self, addr)
}

// AddFriend creates a friendship edge directly, bypassing the request
// handshake. The contract enforces any consent rules; locally only the
// self-edge is rejected.
func (c *Client) AddFriend(ctx context.Context, other string) (*model.TxResponse, error) {
	addr, err := parseAddress(other)
	if err != nil {
		return nil, err
	}
	if addr == c.self {
		return nil, &model.ValidationError{Field: "address", Message: "cannot friend yourself"}
	}
	receipt, err := c.profiles.AddFriend(ctx, addr)
	if err != nil {
		return nil, err
	}
	return &model.TxResponse{TxHash: receipt.TxHash.Hex(), BlockNumber: receipt.BlockNumber}, nil
}

// RemoveFriend removes a confirmed friendship edge.
func (c *Client) RemoveFriend(ctx context.Context, other string) (*model.TxResponse, error) {
	addr, err := parseAddress(other)
	if err != nil {
		return nil, err
	}
	receipt, err := c.profiles.RemoveFriend(ctx, addr)
	if err != nil {
		return nil, err
	}
	return &model.TxResponse{TxHash: receipt.TxHash.Hex(), BlockNumber: receipt.BlockNumber}, nil
}
