// Package social holds the friendship graph of loaded users.
//
// Every node carries three sets: confirmed friends, outgoing pending
// requests and incoming pending requests. Edges are kept symmetric: b in
// a.Confirmed iff a in b.Confirmed, and b in a.Outgoing iff a in b.Incoming.
// A pair owns at most one store row, keyed by model.RequestID.
package social

import (
	"context"
	"sort"
	"sync"

	"usermanagement_server/internal/dao"
	"usermanagement_server/internal/model"
	"usermanagement_server/pkg/enum/friend_request/friend_request_status_enum"
	"usermanagement_server/pkg/errorx"

	"go.uber.org/zap"
)

type idSet map[int64]struct{}

func (s idSet) has(id int64) bool {
	_, ok := s[id]
	return ok
}

func (s idSet) sorted() []int64 {
	out := make([]int64, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type node struct {
	confirmed idSet
	outgoing  idSet
	incoming  idSet
	// confirmed peers this user sent the original request to
	sent idSet
}

func newNode() *node {
	return &node{confirmed: idSet{}, outgoing: idSet{}, incoming: idSet{}, sent: idSet{}}
}

// dropPeer removes every reference n holds to peer.
func (n *node) dropPeer(peer int64) {
	delete(n.confirmed, peer)
	delete(n.outgoing, peer)
	delete(n.incoming, peer)
	delete(n.sent, peer)
}

func (n *node) empty() bool {
	return len(n.confirmed) == 0 && len(n.outgoing) == 0 && len(n.incoming) == 0
}

// Node is a read-only snapshot of one user's relations, each list in ascending id order.
type Node struct {
	Confirmed []int64
	Outgoing  []int64
	Incoming  []int64
}

// Graph is safe for concurrent use. One mutex covers a whole operation,
// store I/O included, so validation and mutation see the same state.
type Graph struct {
	store dao.Store

	mu     sync.Mutex
	nodes  map[int64]*node
	loaded map[int64]bool
}

// NewGraph creates an empty graph over store.
func NewGraph(store dao.Store) *Graph {
	return &Graph{
		store:  store,
		nodes:  make(map[int64]*node),
		loaded: make(map[int64]bool),
	}
}

func (g *Graph) nodeLocked(userId int64) *node {
	n, ok := g.nodes[userId]
	if !ok {
		n = newNode()
		g.nodes[userId] = n
	}
	return n
}

func (n *node) snapshot() Node {
	return Node{
		Confirmed: n.confirmed.sorted(),
		Outgoing:  n.outgoing.sorted(),
		Incoming:  n.incoming.sorted(),
	}
}

// GetNode returns a snapshot of userId, creating an empty node on first touch.
func (g *Graph) GetNode(userId int64) Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nodeLocked(userId).snapshot()
}

// GetFriendList returns the confirmed friends of userId.
func (g *Graph) GetFriendList(userId int64) []int64 {
	return g.GetNode(userId).Confirmed
}

// GetPendingIncoming returns the users with a pending request to userId.
func (g *Graph) GetPendingIncoming(userId int64) []int64 {
	return g.GetNode(userId).Incoming
}

// GetPendingOutgoing returns the users userId has a pending request to.
func (g *Graph) GetPendingOutgoing(userId int64) []int64 {
	return g.GetNode(userId).Outgoing
}

// IsLoaded reports whether userId's rows were read from the store.
func (g *Graph) IsLoaded(userId int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loaded[userId]
}

// LoadUser reads userId's rows from the store once. Peers named by those
// rows get partial nodes until they are loaded themselves. Refused rows are ignored.
func (g *Graph) LoadUser(ctx context.Context, userId int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loadLocked(ctx, userId)
}

func (g *Graph) loadLocked(ctx context.Context, userId int64) error {
	if g.loaded[userId] {
		return nil
	}
	rows, err := g.store.GetFriendRequestsForUser(ctx, userId)
	if err != nil {
		return err
	}
	g.nodeLocked(userId)
	for _, r := range rows {
		g.applyRowLocked(r)
	}
	g.loaded[userId] = true
	return nil
}

func (g *Graph) applyRowLocked(r model.FriendRequest) {
	switch r.Status {
	case friend_request_status_enum.ACCEPTED:
		s := g.nodeLocked(r.SenderId)
		s.confirmed[r.ReceiverId] = struct{}{}
		s.sent[r.ReceiverId] = struct{}{}
		g.nodeLocked(r.ReceiverId).confirmed[r.SenderId] = struct{}{}
	case friend_request_status_enum.PENDING:
		g.nodeLocked(r.SenderId).outgoing[r.ReceiverId] = struct{}{}
		g.nodeLocked(r.ReceiverId).incoming[r.SenderId] = struct{}{}
	}
}

func (g *Graph) loadPairLocked(ctx context.Context, a, b int64) error {
	if err := g.loadLocked(ctx, a); err != nil {
		return err
	}
	return g.loadLocked(ctx, b)
}

// Request creates a pending request sender -> receiver.
// Rule violations come back as an ErrorCode; store failures as error.
func (g *Graph) Request(ctx context.Context, sender, receiver int64) (errorx.ErrorCode, error) {
	if sender == receiver {
		return errorx.RequestSelf, nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.loadPairLocked(ctx, sender, receiver); err != nil {
		return "", err
	}

	s := g.nodes[sender]
	switch {
	case s.confirmed.has(receiver):
		return errorx.FriendAlready, nil
	case s.outgoing.has(receiver), s.incoming.has(receiver):
		return errorx.RequestAlready, nil
	}

	row := model.NewFriendRequest(sender, receiver, friend_request_status_enum.PENDING)
	if err := g.store.SaveFriendRequests(ctx, []model.FriendRequest{row}); err != nil {
		return "", err
	}
	s.outgoing[receiver] = struct{}{}
	g.nodes[receiver].incoming[sender] = struct{}{}
	return "", nil
}

// Accept turns the pending request sender -> receiver into a friendship.
// The row flips to ACCEPTED in a single upsert.
func (g *Graph) Accept(ctx context.Context, receiver, sender int64) (errorx.ErrorCode, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.loadPairLocked(ctx, receiver, sender); err != nil {
		return "", err
	}

	r := g.nodes[receiver]
	if !r.incoming.has(sender) {
		return errorx.RequestUndefined, nil
	}

	row := model.NewFriendRequest(sender, receiver, friend_request_status_enum.ACCEPTED)
	if err := g.store.SaveFriendRequests(ctx, []model.FriendRequest{row}); err != nil {
		return "", err
	}
	s := g.nodes[sender]
	delete(r.incoming, sender)
	delete(s.outgoing, receiver)
	r.confirmed[sender] = struct{}{}
	s.confirmed[receiver] = struct{}{}
	s.sent[receiver] = struct{}{}
	return "", nil
}

// RefuseOrCancel drops the pending request between a and b, whichever way it points.
func (g *Graph) RefuseOrCancel(ctx context.Context, a, b int64) (errorx.ErrorCode, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.loadPairLocked(ctx, a, b); err != nil {
		return "", err
	}

	na, nb := g.nodes[a], g.nodes[b]
	if !na.incoming.has(b) && !na.outgoing.has(b) {
		return errorx.RequestUndefined, nil
	}

	if err := g.store.RemoveFriendRequestsById(ctx, []string{model.RequestID(a, b)}); err != nil {
		return "", err
	}
	delete(na.incoming, b)
	delete(na.outgoing, b)
	delete(nb.incoming, a)
	delete(nb.outgoing, a)
	return "", nil
}

// RemoveFriend ends the friendship between a and b. The row is kept as REFUSED.
func (g *Graph) RemoveFriend(ctx context.Context, a, b int64) (errorx.ErrorCode, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.loadPairLocked(ctx, a, b); err != nil {
		return "", err
	}

	na, nb := g.nodes[a], g.nodes[b]
	if !na.confirmed.has(b) {
		return errorx.FriendNot, nil
	}

	row := model.NewFriendRequest(a, b, friend_request_status_enum.REFUSED)
	if err := g.store.SaveFriendRequests(ctx, []model.FriendRequest{row}); err != nil {
		return "", err
	}
	delete(na.confirmed, b)
	delete(nb.confirmed, a)
	delete(na.sent, b)
	delete(nb.sent, a)
	return "", nil
}

// RemoveUser deletes every row touching userId and strips it from all peers.
// It returns the relations userId had, for notifying the peers. Removing an unknown user is a no-op.
func (g *Graph) RemoveUser(ctx context.Context, userId int64) (Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.loadLocked(ctx, userId); err != nil {
		return Node{}, err
	}
	if err := g.store.RemoveAllUserFriendRequests(ctx, userId); err != nil {
		return Node{}, err
	}

	n := g.nodes[userId]
	before := n.snapshot()
	for peer := range n.confirmed {
		if p, ok := g.nodes[peer]; ok {
			delete(p.confirmed, userId)
			delete(p.sent, userId)
		}
	}
	for peer := range n.outgoing {
		if p, ok := g.nodes[peer]; ok {
			delete(p.incoming, userId)
		}
	}
	for peer := range n.incoming {
		if p, ok := g.nodes[peer]; ok {
			delete(p.outgoing, userId)
		}
	}
	delete(g.nodes, userId)
	delete(g.loaded, userId)
	return before, nil
}

// Unload drops userId from memory. References to it held by partial
// (never loaded) peer nodes go too; loaded peers keep theirs.
func (g *Graph) Unload(userId int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[userId]
	delete(g.loaded, userId)
	if !ok {
		return
	}
	delete(g.nodes, userId)
	for _, set := range []idSet{n.confirmed, n.outgoing, n.incoming} {
		for peer := range set {
			if g.loaded[peer] {
				continue
			}
			p, ok := g.nodes[peer]
			if !ok {
				continue
			}
			p.dropPeer(userId)
			if p.empty() {
				delete(g.nodes, peer)
			}
		}
	}
}

// SaveAll re-persists the rows implied by every loaded node.
// ACCEPTED rows keep the direction of the original request.
func (g *Graph) SaveAll(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	rows := make(map[string]model.FriendRequest)
	for id := range g.loaded {
		n := g.nodes[id]
		if n == nil {
			continue
		}
		for peer := range n.confirmed {
			sender, receiver := peer, id
			if n.sent.has(peer) {
				sender, receiver = id, peer
			}
			r := model.NewFriendRequest(sender, receiver, friend_request_status_enum.ACCEPTED)
			rows[r.RequestId] = r
		}
		for peer := range n.outgoing {
			r := model.NewFriendRequest(id, peer, friend_request_status_enum.PENDING)
			rows[r.RequestId] = r
		}
		for peer := range n.incoming {
			r := model.NewFriendRequest(peer, id, friend_request_status_enum.PENDING)
			rows[r.RequestId] = r
		}
	}
	if len(rows) == 0 {
		return nil
	}
	batch := make([]model.FriendRequest, 0, len(rows))
	for _, r := range rows {
		batch = append(batch, r)
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].RequestId < batch[j].RequestId })
	if err := g.store.SaveFriendRequests(ctx, batch); err != nil {
		return err
	}
	zap.L().Debug("friend graph saved", zap.Int("rows", len(batch)))
	return nil
}

// LoadedCount returns the number of loaded users.
func (g *Graph) LoadedCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.loaded)
}
