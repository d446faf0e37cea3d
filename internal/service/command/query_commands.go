package command

import (
	"context"

	"usermanagement_server/internal/model"
	"usermanagement_server/internal/service/identity"
	"usermanagement_server/internal/service/notify"
	"usermanagement_server/internal/service/social"
	"usermanagement_server/pkg/errorx"
)

// relationQuery lists the public views of one relation set of a user.
type relationQuery struct {
	name     string
	users    *identity.Cache
	graph    *social.Graph
	relation func(g *social.Graph, userId int64) []int64
}

func (q relationQuery) execute(ctx context.Context, userId int64) (Result[[]model.PublicUserInfo], error) {
	_, found, err := q.users.GetOrLoad(ctx, userId)
	if err != nil {
		return observe(q.name, Result[[]model.PublicUserInfo]{}, err)
	}
	if !found {
		return observe(q.name, Fail[[]model.PublicUserInfo](errorx.DoesNotExist), nil)
	}
	if err := q.graph.LoadUser(ctx, userId); err != nil {
		return observe(q.name, Result[[]model.PublicUserInfo]{}, err)
	}
	views, err := q.users.GetPublicBatch(ctx, q.relation(q.graph, userId))
	if err != nil {
		return observe(q.name, Result[[]model.PublicUserInfo]{}, err)
	}
	return observe(q.name, Ok(views), nil)
}

// GetFriendsCommand lists a user's confirmed friends.
type GetFriendsCommand struct{ relationQuery }

func NewGetFriendsCommand(users *identity.Cache, graph *social.Graph) *GetFriendsCommand {
	return &GetFriendsCommand{relationQuery{name: "get_friends", users: users, graph: graph, relation: (*social.Graph).GetFriendList}}
}

func (c *GetFriendsCommand) Execute(ctx context.Context, userId int64) (Result[[]model.PublicUserInfo], error) {
	return c.execute(ctx, userId)
}

// GetIncomingRequestsCommand lists the users with a pending request to userId.
type GetIncomingRequestsCommand struct{ relationQuery }

func NewGetIncomingRequestsCommand(users *identity.Cache, graph *social.Graph) *GetIncomingRequestsCommand {
	return &GetIncomingRequestsCommand{relationQuery{name: "get_incoming_requests", users: users, graph: graph, relation: (*social.Graph).GetPendingIncoming}}
}

func (c *GetIncomingRequestsCommand) Execute(ctx context.Context, userId int64) (Result[[]model.PublicUserInfo], error) {
	return c.execute(ctx, userId)
}

// GetOutgoingRequestsCommand lists the users userId has a pending request to.
type GetOutgoingRequestsCommand struct{ relationQuery }

func NewGetOutgoingRequestsCommand(users *identity.Cache, graph *social.Graph) *GetOutgoingRequestsCommand {
	return &GetOutgoingRequestsCommand{relationQuery{name: "get_outgoing_requests", users: users, graph: graph, relation: (*social.Graph).GetPendingOutgoing}}
}

func (c *GetOutgoingRequestsCommand) Execute(ctx context.Context, userId int64) (Result[[]model.PublicUserInfo], error) {
	return c.execute(ctx, userId)
}

// PollNotificationsCommand drains a user's queue.
type PollNotificationsCommand struct {
	queue notify.Queue
}

func NewPollNotificationsCommand(queue notify.Queue) *PollNotificationsCommand {
	return &PollNotificationsCommand{queue: queue}
}

func (c *PollNotificationsCommand) Execute(ctx context.Context, userId int64) (Result[[]notify.Message], error) {
	msgs, err := c.queue.Drain(ctx, userId)
	if err != nil {
		return observe("poll_notifications", Result[[]notify.Message]{}, err)
	}
	if msgs == nil {
		msgs = []notify.Message{}
	}
	return observe("poll_notifications", Ok(msgs), nil)
}
