package command

import (
	"usermanagement_server/internal/service/identity"
	"usermanagement_server/internal/service/notify"
	"usermanagement_server/internal/service/presence"
	"usermanagement_server/internal/service/registry"
	"usermanagement_server/internal/service/social"
)

// Components are the registry keys of what commands are built from.
type Components struct {
	Users     registry.Key[*identity.Cache]
	Graph     registry.Key[*social.Graph]
	Queue     registry.Key[notify.Queue]
	Deliverer registry.Key[*notify.Deliverer]
	Sweeper   registry.Key[*presence.Sweeper]
}

var (
	UsernameValidatorKey   = registry.NewKey[*UsernameValidator]("command.username_validator")
	ResolveUserIdKey       = registry.NewKey[*ResolveUserIdCommand]("command.resolve_user_id")
	OnUserSeenKey          = registry.NewKey[*OnUserSeenCommand]("command.on_user_seen")
	InitializeKey          = registry.NewKey[*InitializeCommand]("command.initialize")
	EditUsernameKey        = registry.NewKey[*EditUsernameCommand]("command.edit_username")
	RemoveUserKey          = registry.NewKey[*RemoveUserCommand]("command.remove_user")
	GetUserDataKey         = registry.NewKey[*GetUserDataCommand]("command.get_user_data")
	GetUserByNameKey       = registry.NewKey[*GetUserByNameCommand]("command.get_user_by_name")
	RequestFriendKey       = registry.NewKey[*RequestFriendCommand]("command.request_friend")
	AcceptFriendRequestKey = registry.NewKey[*AcceptFriendRequestCommand]("command.accept_friend_request")
	RefuseFriendRequestKey = registry.NewKey[*RefuseFriendRequestCommand]("command.refuse_friend_request")
	CancelFriendRequestKey = registry.NewKey[*CancelFriendRequestCommand]("command.cancel_friend_request")
	RemoveFriendKey        = registry.NewKey[*RemoveFriendCommand]("command.remove_friend")
	GetFriendsKey          = registry.NewKey[*GetFriendsCommand]("command.get_friends")
	GetIncomingRequestsKey = registry.NewKey[*GetIncomingRequestsCommand]("command.get_incoming_requests")
	GetOutgoingRequestsKey = registry.NewKey[*GetOutgoingRequestsCommand]("command.get_outgoing_requests")
	PollNotificationsKey   = registry.NewKey[*PollNotificationsCommand]("command.poll_notifications")
	ClearCacheKey          = registry.NewKey[*ClearCacheCommand]("command.clear_cache")
)

// Register adds every command to r. Each one declares exactly the components it uses.
func Register(r *registry.Registry, c Components) {
	registry.Provide(r, UsernameValidatorKey, func(*registry.Scope) (*UsernameValidator, error) {
		return NewUsernameValidator(), nil
	})
	registry.Provide(r, ResolveUserIdKey, func(s *registry.Scope) (*ResolveUserIdCommand, error) {
		return NewResolveUserIdCommand(registry.Get(s, c.Users)), nil
	}, c.Users)
	registry.Provide(r, OnUserSeenKey, func(s *registry.Scope) (*OnUserSeenCommand, error) {
		return NewOnUserSeenCommand(registry.Get(s, c.Users), registry.Get(s, c.Graph), registry.Get(s, c.Deliverer)), nil
	}, c.Users, c.Graph, c.Deliverer)
	registry.Provide(r, InitializeKey, func(s *registry.Scope) (*InitializeCommand, error) {
		return NewInitializeCommand(registry.Get(s, c.Users), registry.Get(s, c.Graph), registry.Get(s, UsernameValidatorKey)), nil
	}, c.Users, c.Graph, UsernameValidatorKey)
	registry.Provide(r, EditUsernameKey, func(s *registry.Scope) (*EditUsernameCommand, error) {
		return NewEditUsernameCommand(registry.Get(s, c.Users), registry.Get(s, c.Graph), registry.Get(s, c.Deliverer), registry.Get(s, UsernameValidatorKey)), nil
	}, c.Users, c.Graph, c.Deliverer, UsernameValidatorKey)
	registry.Provide(r, RemoveUserKey, func(s *registry.Scope) (*RemoveUserCommand, error) {
		return NewRemoveUserCommand(registry.Get(s, c.Users), registry.Get(s, c.Graph), registry.Get(s, c.Queue), registry.Get(s, c.Deliverer)), nil
	}, c.Users, c.Graph, c.Queue, c.Deliverer)
	registry.Provide(r, GetUserDataKey, func(s *registry.Scope) (*GetUserDataCommand, error) {
		return NewGetUserDataCommand(registry.Get(s, c.Users)), nil
	}, c.Users)
	registry.Provide(r, GetUserByNameKey, func(s *registry.Scope) (*GetUserByNameCommand, error) {
		return NewGetUserByNameCommand(registry.Get(s, c.Users)), nil
	}, c.Users)

	friendDeps := []registry.Dependency{c.Users, c.Graph, c.Deliverer}
	registry.Provide(r, RequestFriendKey, func(s *registry.Scope) (*RequestFriendCommand, error) {
		return NewRequestFriendCommand(registry.Get(s, c.Users), registry.Get(s, c.Graph), registry.Get(s, c.Deliverer)), nil
	}, friendDeps...)
	registry.Provide(r, AcceptFriendRequestKey, func(s *registry.Scope) (*AcceptFriendRequestCommand, error) {
		return NewAcceptFriendRequestCommand(registry.Get(s, c.Users), registry.Get(s, c.Graph), registry.Get(s, c.Deliverer)), nil
	}, friendDeps...)
	registry.Provide(r, RefuseFriendRequestKey, func(s *registry.Scope) (*RefuseFriendRequestCommand, error) {
		return NewRefuseFriendRequestCommand(registry.Get(s, c.Users), registry.Get(s, c.Graph), registry.Get(s, c.Deliverer)), nil
	}, friendDeps...)
	registry.Provide(r, CancelFriendRequestKey, func(s *registry.Scope) (*CancelFriendRequestCommand, error) {
		return NewCancelFriendRequestCommand(registry.Get(s, c.Users), registry.Get(s, c.Graph), registry.Get(s, c.Deliverer)), nil
	}, friendDeps...)
	registry.Provide(r, RemoveFriendKey, func(s *registry.Scope) (*RemoveFriendCommand, error) {
		return NewRemoveFriendCommand(registry.Get(s, c.Users), registry.Get(s, c.Graph), registry.Get(s, c.Deliverer)), nil
	}, friendDeps...)

	registry.Provide(r, GetFriendsKey, func(s *registry.Scope) (*GetFriendsCommand, error) {
		return NewGetFriendsCommand(registry.Get(s, c.Users), registry.Get(s, c.Graph)), nil
	}, c.Users, c.Graph)
	registry.Provide(r, GetIncomingRequestsKey, func(s *registry.Scope) (*GetIncomingRequestsCommand, error) {
		return NewGetIncomingRequestsCommand(registry.Get(s, c.Users), registry.Get(s, c.Graph)), nil
	}, c.Users, c.Graph)
	registry.Provide(r, GetOutgoingRequestsKey, func(s *registry.Scope) (*GetOutgoingRequestsCommand, error) {
		return NewGetOutgoingRequestsCommand(registry.Get(s, c.Users), registry.Get(s, c.Graph)), nil
	}, c.Users, c.Graph)
	registry.Provide(r, PollNotificationsKey, func(s *registry.Scope) (*PollNotificationsCommand, error) {
		return NewPollNotificationsCommand(registry.Get(s, c.Queue)), nil
	}, c.Queue)
	registry.Provide(r, ClearCacheKey, func(s *registry.Scope) (*ClearCacheCommand, error) {
		return NewClearCacheCommand(registry.Get(s, c.Sweeper)), nil
	}, c.Sweeper)
}

// Dispatcher holds the built command singletons. It is safe for concurrent use.
type Dispatcher struct {
	ResolveUserId       *ResolveUserIdCommand
	OnUserSeen          *OnUserSeenCommand
	Initialize          *InitializeCommand
	EditUsername        *EditUsernameCommand
	RemoveUser          *RemoveUserCommand
	GetUserData         *GetUserDataCommand
	GetUserByName       *GetUserByNameCommand
	RequestFriend       *RequestFriendCommand
	AcceptFriendRequest *AcceptFriendRequestCommand
	RefuseFriendRequest *RefuseFriendRequestCommand
	CancelFriendRequest *CancelFriendRequestCommand
	RemoveFriend        *RemoveFriendCommand
	GetFriends          *GetFriendsCommand
	GetIncomingRequests *GetIncomingRequestsCommand
	GetOutgoingRequests *GetOutgoingRequestsCommand
	PollNotifications   *PollNotificationsCommand
	ClearCache          *ClearCacheCommand
}

// NewDispatcher collects the commands from a container built after Register.
func NewDispatcher(c *registry.Container) *Dispatcher {
	return &Dispatcher{
		ResolveUserId:       registry.MustLookup(c, ResolveUserIdKey),
		OnUserSeen:          registry.MustLookup(c, OnUserSeenKey),
		Initialize:          registry.MustLookup(c, InitializeKey),
		EditUsername:        registry.MustLookup(c, EditUsernameKey),
		RemoveUser:          registry.MustLookup(c, RemoveUserKey),
		GetUserData:         registry.MustLookup(c, GetUserDataKey),
		GetUserByName:       registry.MustLookup(c, GetUserByNameKey),
		RequestFriend:       registry.MustLookup(c, RequestFriendKey),
		AcceptFriendRequest: registry.MustLookup(c, AcceptFriendRequestKey),
		RefuseFriendRequest: registry.MustLookup(c, RefuseFriendRequestKey),
		CancelFriendRequest: registry.MustLookup(c, CancelFriendRequestKey),
		RemoveFriend:        registry.MustLookup(c, RemoveFriendKey),
		GetFriends:          registry.MustLookup(c, GetFriendsKey),
		GetIncomingRequests: registry.MustLookup(c, GetIncomingRequestsKey),
		GetOutgoingRequests: registry.MustLookup(c, GetOutgoingRequestsKey),
		PollNotifications:   registry.MustLookup(c, PollNotificationsKey),
		ClearCache:          registry.MustLookup(c, ClearCacheKey),
	}
}
