package conversation

import (
	"sync"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/message"
	"github.com/google/uuid"
)

type key struct {
	session uuid.UUID
	id      uuid.UUID
}

type node struct {
	msg      *message.Message
	children []uuid.UUID
	order    uint64
}

// Index holds the message tree of every session it has seen. Parent links
// never cross a session boundary.
type Index struct {
	mu      sync.RWMutex
	nodes   map[key]*node
	owner   map[uuid.UUID]uuid.UUID
	leaf    map[uuid.UUID]uuid.UUID
	counter uint64
}

func NewIndex() *Index {
	return &Index{
		nodes: make(map[key]*node),
		owner: make(map[uuid.UUID]uuid.UUID),
		leaf:  make(map[uuid.UUID]uuid.UUID),
	}
}

// Add inserts msg under its parent and makes it the session leaf.
func (x *Index) Add(msg *message.Message) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if msg.ParentID != nil {
		parent, ok := x.nodes[key{msg.SessionID, *msg.ParentID}]
		if !ok {
			if _, elsewhere := x.owner[*msg.ParentID]; elsewhere {
				return domain.ErrCrossSessionParent
			}
			return domain.NewNotFoundError("message", *msg.ParentID)
		}
		parent.children = append(parent.children, msg.ID)
	}
	x.counter++
	x.nodes[key{msg.SessionID, msg.ID}] = &node{msg: msg, order: x.counter}
	x.owner[msg.ID] = msg.SessionID
	x.leaf[msg.SessionID] = msg.ID
	return nil
}

// Load rebuilds a session tree from messages ordered by creation time.
func (x *Index) Load(msgs []message.Message) error {
	for i := range msgs {
		if err := x.Add(&msgs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (x *Index) Get(sessionID, id uuid.UUID) (*message.Message, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	n, ok := x.nodes[key{sessionID, id}]
	if !ok {
		return nil, false
	}
	return n.msg, true
}

// Leaf returns the message the next turn continues from.
func (x *Index) Leaf(sessionID uuid.UUID) (uuid.UUID, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	id, ok := x.leaf[sessionID]
	return id, ok
}

// Select moves the session leaf onto an existing message, starting a branch.
func (x *Index) Select(sessionID, id uuid.UUID) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.nodes[key{sessionID, id}]; !ok {
		return x.missing(sessionID, id)
	}
	x.leaf[sessionID] = id
	return nil
}

// Path returns the messages from the root down to leaf.
func (x *Index) Path(sessionID, leaf uuid.UUID) []*message.Message {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var rev []*message.Message
	cur, ok := x.nodes[key{sessionID, leaf}]
	for ok {
		rev = append(rev, cur.msg)
		if cur.msg.ParentID == nil {
			break
		}
		cur, ok = x.nodes[key{sessionID, *cur.msg.ParentID}]
	}
	out := make([]*message.Message, len(rev))
	for i, m := range rev {
		out[len(rev)-1-i] = m
	}
	return out
}

// Context returns the path ending at the current session leaf.
func (x *Index) Context(sessionID uuid.UUID) []*message.Message {
	leaf, ok := x.Leaf(sessionID)
	if !ok {
		return nil
	}
	return x.Path(sessionID, leaf)
}

func (x *Index) Children(sessionID, id uuid.UUID) []*message.Message {
	x.mu.RLock()
	defer x.mu.RUnlock()
	n, ok := x.nodes[key{sessionID, id}]
	if !ok {
		return nil
	}
	out := make([]*message.Message, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, x.nodes[key{sessionID, c}].msg)
	}
	return out
}

// Delete removes id and its whole subtree, returning the removed ids.
func (x *Index) Delete(sessionID, id uuid.UUID) ([]uuid.UUID, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	n, ok := x.nodes[key{sessionID, id}]
	if !ok {
		return nil, x.missing(sessionID, id)
	}
	if n.msg.ParentID != nil {
		if parent, ok := x.nodes[key{sessionID, *n.msg.ParentID}]; ok {
			parent.children = without(parent.children, id)
		}
	}
	removed := x.removeSubtree(sessionID, id)
	if x.contains(removed, x.leaf[sessionID]) {
		if n.msg.ParentID != nil {
			x.leaf[sessionID] = *n.msg.ParentID
		} else {
			x.resetLeaf(sessionID)
		}
	}
	return removed, nil
}

// TruncateAfter drops every descendant of id and makes id the leaf.
func (x *Index) TruncateAfter(sessionID, id uuid.UUID) ([]uuid.UUID, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	n, ok := x.nodes[key{sessionID, id}]
	if !ok {
		return nil, x.missing(sessionID, id)
	}
	var removed []uuid.UUID
	for _, c := range n.children {
		removed = append(removed, x.removeSubtree(sessionID, c)...)
	}
	n.children = nil
	x.leaf[sessionID] = id
	return removed, nil
}

// Forget drops everything held for a session.
func (x *Index) Forget(sessionID uuid.UUID) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for k := range x.nodes {
		if k.session == sessionID {
			delete(x.nodes, k)
			delete(x.owner, k.id)
		}
	}
	delete(x.leaf, sessionID)
}

func (x *Index) Len(sessionID uuid.UUID) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	count := 0
	for k := range x.nodes {
		if k.session == sessionID {
			count++
		}
	}
	return count
}

func (x *Index) removeSubtree(sessionID, id uuid.UUID) []uuid.UUID {
	stack := []uuid.UUID{id}
	var removed []uuid.UUID
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, ok := x.nodes[key{sessionID, cur}]
		if !ok {
			continue
		}
		removed = append(removed, cur)
		stack = append(stack, n.children...)
		delete(x.nodes, key{sessionID, cur})
		delete(x.owner, cur)
	}
	return removed
}

// resetLeaf picks the most recently added message left in the session.
func (x *Index) resetLeaf(sessionID uuid.UUID) {
	var best *node
	for k, n := range x.nodes {
		if k.session == sessionID && (best == nil || n.order > best.order) {
			best = n
		}
	}
	if best == nil {
		delete(x.leaf, sessionID)
		return
	}
	x.leaf[sessionID] = best.msg.ID
}

func (x *Index) missing(sessionID, id uuid.UUID) error {
	if owner, ok := x.owner[id]; ok && owner != sessionID {
		return domain.ErrCrossSessionParent
	}
	return domain.NewNotFoundError("message", id)
}

func (x *Index) contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
