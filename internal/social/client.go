// Package social orchestrates profile, post, like, and friend-request
// operations on top of the contract gateway. Every mutation follows the same
// optimistic pattern: apply a tentative local change, submit the write, then
// reconcile with the confirmed result or roll back to the pre-operation
// value.
package social

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Client is bound to one session identity. The session layer creates a fresh
// Client at login and drops it at logout; it carries no hidden process-wide
// state.
type Client struct {
	self     common.Address
	email    string
	profiles ProfileSurface
	posts    PostSurface

	mu         sync.Mutex
	postStates map[uint64]*postState
	requests   map[common.Address]*requestState
	pending    []*PendingPost
	nextLocal  uint64
}

// NewClient creates a social client for the given identity address.
func NewClient(profiles ProfileSurface, posts PostSurface, self common.Address, email string) *Client {
	return &Client{
		self:       self,
		email:      email,
		profiles:   profiles,
		posts:      posts,
		postStates: make(map[uint64]*postState),
		requests:   make(map[common.Address]*requestState),
	}
}

// Self returns the bound identity address.
func (c *Client) Self() common.Address {
	return c.self
}

// postState is the local optimistic overlay for one ledger post.
type postState struct {
	mu        sync.Mutex
	op        OpState
	liked     bool
	likeCount uint64
	counted   bool // likeCount has been seeded from a ledger read
}

// requestState is the local optimistic overlay for one friend-request edge.
type requestState struct {
	mu     sync.Mutex
	op     OpState
	status string // "", "accepted", "rejected" - resolved edges awaiting chain catch-up
}

func (c *Client) postStateFor(id uint64) *postState {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.postStates[id]
	if !ok {
		st = &postState{}
		c.postStates[id] = st
	}
	return st
}

func (c *Client) requestStateFor(addr common.Address) *requestState {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.requests[addr]
	if !ok {
		st = &requestState{}
		c.requests[addr] = st
	}
	return st
}
