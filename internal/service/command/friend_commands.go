package command

import (
	"context"
	"slices"

	"usermanagement_server/internal/model"
	"usermanagement_server/internal/service/identity"
	"usermanagement_server/internal/service/notify"
	"usermanagement_server/internal/service/social"
	"usermanagement_server/pkg/errorx"

	"go.uber.org/zap"
)

// friendOps is shared by the commands that act on a pair of users.
type friendOps struct {
	users   *identity.Cache
	graph   *social.Graph
	deliver *notify.Deliverer
}

// pair loads both users. A missing one yields USER_UNDEFINED.
func (f friendOps) pair(ctx context.Context, a, b int64) (model.UserInfo, model.UserInfo, errorx.ErrorCode, error) {
	ua, found, err := f.users.GetOrLoad(ctx, a)
	if err != nil {
		return model.UserInfo{}, model.UserInfo{}, "", err
	}
	if !found {
		return model.UserInfo{}, model.UserInfo{}, errorx.UserUndefined, nil
	}
	ub, found, err := f.users.GetOrLoad(ctx, b)
	if err != nil {
		return model.UserInfo{}, model.UserInfo{}, "", err
	}
	if !found {
		return model.UserInfo{}, model.UserInfo{}, errorx.UserUndefined, nil
	}
	return ua, ub, "", nil
}

// run executes a graph mutation after the existence checks and, on success,
// notifies recipient with payload.
func (f friendOps) run(ctx context.Context, name string, a, b int64,
	mutate func() (errorx.ErrorCode, error),
	notification func(ua, ub model.UserInfo) (int64, notify.Payload),
) (Result[Empty], error) {
	ua, ub, code, err := f.pair(ctx, a, b)
	if err != nil {
		return observe(name, Result[Empty]{}, err)
	}
	if code != "" {
		return observe(name, Fail[Empty](code), nil)
	}
	code, err = mutate()
	if err != nil {
		return observe(name, Result[Empty]{}, err)
	}
	if code != "" {
		zap.L().Debug("friend operation rejected", zap.String("command", name), zap.Int64("a", a), zap.Int64("b", b), zap.String("code", string(code)))
		return observe(name, Fail[Empty](code), nil)
	}
	recipient, payload := notification(ua, ub)
	if err := f.deliver.Notify(ctx, recipient, payload); err != nil {
		zap.L().Warn("queue notification", zap.Int64("recipient", recipient), zap.String("type", payload.Type()), zap.Error(err))
	}
	return observe(name, Done(), nil)
}

// hasPending reports whether from -> to is pending.
func (f friendOps) hasPending(ctx context.Context, from, to int64) (bool, error) {
	if err := f.graph.LoadUser(ctx, to); err != nil {
		return false, err
	}
	return slices.Contains(f.graph.GetPendingIncoming(to), from), nil
}

// RequestFriendCommand sends a friend request.
type RequestFriendCommand struct{ friendOps }

func NewRequestFriendCommand(users *identity.Cache, graph *social.Graph, deliver *notify.Deliverer) *RequestFriendCommand {
	return &RequestFriendCommand{friendOps{users: users, graph: graph, deliver: deliver}}
}

func (c *RequestFriendCommand) Execute(ctx context.Context, senderId, receiverId int64) (Result[Empty], error) {
	return c.run(ctx, "request_friend", senderId, receiverId,
		func() (errorx.ErrorCode, error) { return c.graph.Request(ctx, senderId, receiverId) },
		func(sender, receiver model.UserInfo) (int64, notify.Payload) {
			return receiver.UserId, notify.RequestReceived{From: sender.Name}
		})
}

// AcceptFriendRequestCommand accepts the request senderId sent to receiverId.
type AcceptFriendRequestCommand struct{ friendOps }

func NewAcceptFriendRequestCommand(users *identity.Cache, graph *social.Graph, deliver *notify.Deliverer) *AcceptFriendRequestCommand {
	return &AcceptFriendRequestCommand{friendOps{users: users, graph: graph, deliver: deliver}}
}

func (c *AcceptFriendRequestCommand) Execute(ctx context.Context, receiverId, senderId int64) (Result[Empty], error) {
	return c.run(ctx, "accept_friend_request", receiverId, senderId,
		func() (errorx.ErrorCode, error) { return c.graph.Accept(ctx, receiverId, senderId) },
		func(receiver, sender model.UserInfo) (int64, notify.Payload) {
			return sender.UserId, notify.RequestAccepted{Name: receiver.Name}
		})
}

// RefuseFriendRequestCommand refuses the request senderId sent to receiverId.
type RefuseFriendRequestCommand struct{ friendOps }

func NewRefuseFriendRequestCommand(users *identity.Cache, graph *social.Graph, deliver *notify.Deliverer) *RefuseFriendRequestCommand {
	return &RefuseFriendRequestCommand{friendOps{users: users, graph: graph, deliver: deliver}}
}

func (c *RefuseFriendRequestCommand) Execute(ctx context.Context, receiverId, senderId int64) (Result[Empty], error) {
	return c.run(ctx, "refuse_friend_request", receiverId, senderId,
		func() (errorx.ErrorCode, error) {
			pending, err := c.hasPending(ctx, senderId, receiverId)
			if err != nil || !pending {
				return errorx.RequestUndefined, err
			}
			return c.graph.RefuseOrCancel(ctx, receiverId, senderId)
		},
		func(receiver, sender model.UserInfo) (int64, notify.Payload) {
			return sender.UserId, notify.RequestRefused{Name: receiver.Name}
		})
}

// CancelFriendRequestCommand withdraws the request senderId sent to receiverId.
type CancelFriendRequestCommand struct{ friendOps }

func NewCancelFriendRequestCommand(users *identity.Cache, graph *social.Graph, deliver *notify.Deliverer) *CancelFriendRequestCommand {
	return &CancelFriendRequestCommand{friendOps{users: users, graph: graph, deliver: deliver}}
}

func (c *CancelFriendRequestCommand) Execute(ctx context.Context, senderId, receiverId int64) (Result[Empty], error) {
	return c.run(ctx, "cancel_friend_request", senderId, receiverId,
		func() (errorx.ErrorCode, error) {
			pending, err := c.hasPending(ctx, senderId, receiverId)
			if err != nil || !pending {
				return errorx.RequestUndefined, err
			}
			return c.graph.RefuseOrCancel(ctx, senderId, receiverId)
		},
		func(sender, receiver model.UserInfo) (int64, notify.Payload) {
			return receiver.UserId, notify.RequestCanceled{Name: sender.Name}
		})
}

// RemoveFriendCommand ends a friendship.
type RemoveFriendCommand struct{ friendOps }

func NewRemoveFriendCommand(users *identity.Cache, graph *social.Graph, deliver *notify.Deliverer) *RemoveFriendCommand {
	return &RemoveFriendCommand{friendOps{users: users, graph: graph, deliver: deliver}}
}

func (c *RemoveFriendCommand) Execute(ctx context.Context, userId, friendId int64) (Result[Empty], error) {
	return c.run(ctx, "remove_friend", userId, friendId,
		func() (errorx.ErrorCode, error) { return c.graph.RemoveFriend(ctx, userId, friendId) },
		func(user, friend model.UserInfo) (int64, notify.Payload) {
			return friend.UserId, notify.FriendRemoved{Name: user.Name}
		})
}
