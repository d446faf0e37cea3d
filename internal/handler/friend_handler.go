package handler

import (
	"context"

	"usermanagement_server/internal/service/command"

	"github.com/gin-gonic/gin"
)

// FriendHandler serves /user/friends. Peers are addressed by username.
type FriendHandler struct {
	d *command.Dispatcher
}

func NewFriendHandler(d *command.Dispatcher) *FriendHandler {
	return &FriendHandler{d: d}
}

type pairAction func(ctx context.Context, self, peer int64) (command.Result[command.Empty], error)

// withPeer resolves :username and runs action on (caller, peer).
func (h *FriendHandler) withPeer(c *gin.Context, action pairAction) {
	ctx := c.Request.Context()
	peer, err := h.d.ResolveUserId.Execute(ctx, c.Param("username"))
	if err != nil || !peer.Success {
		HandleResult(c, peer, err)
		return
	}
	res, err := action(ctx, senderID(c), *peer.Data)
	HandleResult(c, res, err)
}

// List returns the caller's friends.
// GET /user/friends
func (h *FriendHandler) List(c *gin.Context) {
	res, err := h.d.GetFriends.Execute(c.Request.Context(), senderID(c))
	HandleResult(c, res, err)
}

// Incoming returns users with a pending request to the caller.
// GET /user/friends/requests
func (h *FriendHandler) Incoming(c *gin.Context) {
	res, err := h.d.GetIncomingRequests.Execute(c.Request.Context(), senderID(c))
	HandleResult(c, res, err)
}

// Outgoing returns users the caller has a pending request to.
// GET /user/friends/requests/outgoing
func (h *FriendHandler) Outgoing(c *gin.Context) {
	res, err := h.d.GetOutgoingRequests.Execute(c.Request.Context(), senderID(c))
	HandleResult(c, res, err)
}

// Request sends a friend request.
// POST /user/friends/requests/outgoing/:username
func (h *FriendHandler) Request(c *gin.Context) {
	h.withPeer(c, h.d.RequestFriend.Execute)
}

// Cancel withdraws the caller's request.
// DELETE /user/friends/requests/outgoing/:username
func (h *FriendHandler) Cancel(c *gin.Context) {
	h.withPeer(c, h.d.CancelFriendRequest.Execute)
}

// Accept accepts a request sent to the caller.
// PUT /user/friends/requests/:username
func (h *FriendHandler) Accept(c *gin.Context) {
	h.withPeer(c, h.d.AcceptFriendRequest.Execute)
}

// Refuse refuses a request sent to the caller.
// DELETE /user/friends/requests/:username
func (h *FriendHandler) Refuse(c *gin.Context) {
	h.withPeer(c, h.d.RefuseFriendRequest.Execute)
}

// Remove ends a friendship.
// DELETE /user/friends/:username
func (h *FriendHandler) Remove(c *gin.Context) {
	h.withPeer(c, h.d.RemoveFriend.Execute)
}
