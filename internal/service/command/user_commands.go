package command

import (
	"context"

	"usermanagement_server/internal/model"
	"usermanagement_server/internal/service/identity"
	"usermanagement_server/internal/service/notify"
	"usermanagement_server/internal/service/social"
	"usermanagement_server/pkg/errorx"

	"go.uber.org/zap"
)

// ResolveUserIdCommand maps a username to its id.
type ResolveUserIdCommand struct {
	users *identity.Cache
}

func NewResolveUserIdCommand(users *identity.Cache) *ResolveUserIdCommand {
	return &ResolveUserIdCommand{users: users}
}

func (c *ResolveUserIdCommand) Execute(ctx context.Context, username string) (Result[int64], error) {
	id, found, err := c.users.ResolveUsername(ctx, username)
	if err != nil {
		return observe("resolve_user_id", Result[int64]{}, err)
	}
	if !found {
		return observe("resolve_user_id", Fail[int64](errorx.UserUndefined), nil)
	}
	return observe("resolve_user_id", Ok(id), nil)
}

// OnUserSeenCommand runs before every authenticated request: it refreshes
// activity, creates first-time users and loads their relations. When the user
// comes ONLINE its online friends are told.
type OnUserSeenCommand struct {
	users   *identity.Cache
	graph   *social.Graph
	deliver *notify.Deliverer
}

func NewOnUserSeenCommand(users *identity.Cache, graph *social.Graph, deliver *notify.Deliverer) *OnUserSeenCommand {
	return &OnUserSeenCommand{users: users, graph: graph, deliver: deliver}
}

func (c *OnUserSeenCommand) Execute(ctx context.Context, userId int64) (Result[Empty], error) {
	user, changed, err := c.users.OnSeen(ctx, userId)
	if err != nil {
		return observe("on_user_seen", Result[Empty]{}, err)
	}
	if err := c.graph.LoadUser(ctx, userId); err != nil {
		return observe("on_user_seen", Result[Empty]{}, err)
	}
	if changed {
		c.deliver.NotifyAll(ctx, c.graph.GetFriendList(userId), notify.StatusChanged{
			UserId: user.UserId,
			Name:   user.Name,
			Status: user.Status,
		})
	}
	return observe("on_user_seen", Done(), nil)
}

// InitializeCommand creates a user with a chosen name.
type InitializeCommand struct {
	users     *identity.Cache
	graph     *social.Graph
	validator *UsernameValidator
}

func NewInitializeCommand(users *identity.Cache, graph *social.Graph, validator *UsernameValidator) *InitializeCommand {
	return &InitializeCommand{users: users, graph: graph, validator: validator}
}

func (c *InitializeCommand) Execute(ctx context.Context, userId int64, username string) (Result[model.PublicUserInfo], error) {
	const name = "initialize"
	_, found, err := c.users.GetOrLoad(ctx, userId)
	if err != nil {
		return observe(name, Result[model.PublicUserInfo]{}, err)
	}
	if found {
		return observe(name, Fail[model.PublicUserInfo](errorx.AlreadyExists), nil)
	}
	if codes := c.validator.Validate(username); len(codes) > 0 {
		return observe(name, Fail[model.PublicUserInfo](codes...), nil)
	}
	taken, err := c.users.UsernameExists(ctx, username)
	if err != nil {
		return observe(name, Result[model.PublicUserInfo]{}, err)
	}
	if taken {
		return observe(name, Fail[model.PublicUserInfo](errorx.AlreadyTaken), nil)
	}

	user, err := c.users.CreateDefault(ctx, userId, username)
	if errorx.GetCode(err) == errorx.CodeUserExist {
		// lost a race with another creation of the same id or name
		if _, found, _ := c.users.GetOrLoad(ctx, userId); found {
			return observe(name, Fail[model.PublicUserInfo](errorx.AlreadyExists), nil)
		}
		return observe(name, Fail[model.PublicUserInfo](errorx.AlreadyTaken), nil)
	}
	if err != nil {
		return observe(name, Result[model.PublicUserInfo]{}, err)
	}
	if err := c.graph.LoadUser(ctx, userId); err != nil {
		return observe(name, Result[model.PublicUserInfo]{}, err)
	}
	return observe(name, Ok(user.ToPublic()), nil)
}

// EditUsernameCommand renames a user and tells its online friends.
type EditUsernameCommand struct {
	users     *identity.Cache
	graph     *social.Graph
	deliver   *notify.Deliverer
	validator *UsernameValidator
}

func NewEditUsernameCommand(users *identity.Cache, graph *social.Graph, deliver *notify.Deliverer, validator *UsernameValidator) *EditUsernameCommand {
	return &EditUsernameCommand{users: users, graph: graph, deliver: deliver, validator: validator}
}

func (c *EditUsernameCommand) Execute(ctx context.Context, userId int64, newName string) (Result[Empty], error) {
	const name = "edit_username"
	if codes := c.validator.Validate(newName); len(codes) > 0 {
		return observe(name, Fail[Empty](codes...), nil)
	}
	taken, err := c.users.UsernameExists(ctx, newName)
	if err != nil {
		return observe(name, Result[Empty]{}, err)
	}
	if taken {
		return observe(name, Fail[Empty](errorx.AlreadyTaken), nil)
	}
	user, found, err := c.users.GetOrLoad(ctx, userId)
	if err != nil {
		return observe(name, Result[Empty]{}, err)
	}
	if !found {
		return observe(name, Fail[Empty](errorx.DoesNotExist), nil)
	}

	if err := c.users.Rename(ctx, userId, newName); err != nil {
		if errorx.GetCode(err) == errorx.CodeUserNotExist {
			return observe(name, Fail[Empty](errorx.DoesNotExist), nil)
		}
		return observe(name, Result[Empty]{}, err)
	}
	zap.L().Info("username changed", zap.Int64("user_id", userId), zap.String("from", user.Name), zap.String("to", newName))

	if err := c.graph.LoadUser(ctx, userId); err != nil {
		zap.L().Warn("load friends for rename notification", zap.Int64("user_id", userId), zap.Error(err))
		return observe(name, Done(), nil)
	}
	c.deliver.NotifyAll(ctx, c.graph.GetFriendList(userId), notify.UsernameChanged{
		PrevName: user.Name,
		NewName:  newName,
	})
	return observe(name, Done(), nil)
}

// RemoveUserCommand deletes an account: relations first, then the identity, then its queue.
// Former friends and pending peers are told.
type RemoveUserCommand struct {
	users   *identity.Cache
	graph   *social.Graph
	queue   notify.Queue
	deliver *notify.Deliverer
}

func NewRemoveUserCommand(users *identity.Cache, graph *social.Graph, queue notify.Queue, deliver *notify.Deliverer) *RemoveUserCommand {
	return &RemoveUserCommand{users: users, graph: graph, queue: queue, deliver: deliver}
}

func (c *RemoveUserCommand) Execute(ctx context.Context, userId int64) (Result[Empty], error) {
	const name = "remove_user"
	user, found, err := c.users.GetOrLoad(ctx, userId)
	if err != nil {
		return observe(name, Result[Empty]{}, err)
	}
	if !found {
		return observe(name, Fail[Empty](errorx.DoesNotExist), nil)
	}

	relations, err := c.graph.RemoveUser(ctx, userId)
	if err != nil {
		return observe(name, Result[Empty]{}, err)
	}
	if err := c.users.Remove(ctx, userId); err != nil {
		return observe(name, Result[Empty]{}, err)
	}
	if err := c.queue.Clear(ctx, userId); err != nil {
		zap.L().Warn("clear notification queue", zap.Int64("user_id", userId), zap.Error(err))
	}
	zap.L().Info("user removed", zap.Int64("user_id", userId), zap.String("name", user.Name))

	c.deliver.NotifyAll(ctx, relations.Confirmed, notify.FriendRemoved{Name: user.Name})
	c.deliver.NotifyAll(ctx, relations.Outgoing, notify.RequestCanceled{Name: user.Name})
	c.deliver.NotifyAll(ctx, relations.Incoming, notify.RequestRefused{Name: user.Name})
	return observe(name, Done(), nil)
}

// GetUserDataCommand returns the public view of a user by id.
type GetUserDataCommand struct {
	users *identity.Cache
}

func NewGetUserDataCommand(users *identity.Cache) *GetUserDataCommand {
	return &GetUserDataCommand{users: users}
}

func (c *GetUserDataCommand) Execute(ctx context.Context, userId int64) (Result[model.PublicUserInfo], error) {
	view, found, err := c.users.GetPublic(ctx, userId)
	if err != nil {
		return observe("get_user_data", Result[model.PublicUserInfo]{}, err)
	}
	if !found {
		return observe("get_user_data", Fail[model.PublicUserInfo](errorx.DoesNotExist), nil)
	}
	return observe("get_user_data", Ok(view), nil)
}

// GetUserByNameCommand returns the public view of a user by username.
type GetUserByNameCommand struct {
	users *identity.Cache
}

func NewGetUserByNameCommand(users *identity.Cache) *GetUserByNameCommand {
	return &GetUserByNameCommand{users: users}
}

func (c *GetUserByNameCommand) Execute(ctx context.Context, username string) (Result[model.PublicUserInfo], error) {
	user, found, err := c.users.GetOrLoadByName(ctx, username)
	if err != nil {
		return observe("get_user_by_name", Result[model.PublicUserInfo]{}, err)
	}
	if !found {
		return observe("get_user_by_name", Fail[model.PublicUserInfo](errorx.UserUndefined), nil)
	}
	return observe("get_user_by_name", Ok(user.ToPublic()), nil)
}
