package conversation_test

import (
	"testing"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/message"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/conversation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func add(t *testing.T, idx *conversation.Index, sessionID uuid.UUID, parent *message.Message, role message.Role, text string) *message.Message {
	t.Helper()
	var parentID *uuid.UUID
	if parent != nil {
		parentID = &parent.ID
	}
	msg := message.New(sessionID, parentID, role, message.ContentTypeText, text)
	require.NoError(t, idx.Add(msg))
	return msg
}

func contents(msgs []*message.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Content)
	}
	return out
}

func TestIndex_PathFollowsParentLinks(t *testing.T) {
	idx := conversation.NewIndex()
	sid := uuid.New()

	root := add(t, idx, sid, nil, message.RoleUser, "hi")
	answer := add(t, idx, sid, root, message.RoleAssistant, "hello")
	follow := add(t, idx, sid, answer, message.RoleUser, "weather?")

	assert.Equal(t, []string{"hi", "hello", "weather?"}, contents(idx.Path(sid, follow.ID)))
	assert.Equal(t, []string{"hi", "hello", "weather?"}, contents(idx.Context(sid)))

	leaf, ok := idx.Leaf(sid)
	require.True(t, ok)
	assert.Equal(t, follow.ID, leaf)
}

func TestIndex_BranchSelection(t *testing.T) {
	idx := conversation.NewIndex()
	sid := uuid.New()

	root := add(t, idx, sid, nil, message.RoleUser, "hi")
	first := add(t, idx, sid, root, message.RoleAssistant, "first")

	require.NoError(t, idx.Select(sid, root.ID))
	second := add(t, idx, sid, root, message.RoleAssistant, "second")

	assert.Equal(t, []string{"first", "second"}, contents(idx.Children(sid, root.ID)))
	assert.Equal(t, []string{"hi", "second"}, contents(idx.Context(sid)))
	assert.Equal(t, []string{"hi", "first"}, contents(idx.Path(sid, first.ID)))
	assert.NotEqual(t, first.ID, second.ID)
}

func TestIndex_RejectsCrossSessionParent(t *testing.T) {
	idx := conversation.NewIndex()
	a, b := uuid.New(), uuid.New()

	foreign := add(t, idx, a, nil, message.RoleUser, "in a")

	msg := message.New(b, &foreign.ID, message.RoleUser, message.ContentTypeText, "in b")
	err := idx.Add(msg)
	assert.ErrorIs(t, err, domain.ErrCrossSessionParent)
	assert.Equal(t, 0, idx.Len(b))

	missing := uuid.New()
	err = idx.Add(message.New(b, &missing, message.RoleUser, message.ContentTypeText, "orphan"))
	assert.True(t, domain.IsNotFoundError(err))
}

func TestIndex_DeleteRemovesSubtree(t *testing.T) {
	idx := conversation.NewIndex()
	sid := uuid.New()

	root := add(t, idx, sid, nil, message.RoleUser, "hi")
	answer := add(t, idx, sid, root, message.RoleAssistant, "hello")
	follow := add(t, idx, sid, answer, message.RoleUser, "more")

	removed, err := idx.Delete(sid, answer.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{answer.ID, follow.ID}, removed)
	assert.Equal(t, 1, idx.Len(sid))
	assert.Empty(t, idx.Children(sid, root.ID))

	leaf, ok := idx.Leaf(sid)
	require.True(t, ok)
	assert.Equal(t, root.ID, leaf)

	_, err = idx.Delete(sid, answer.ID)
	assert.True(t, domain.IsNotFoundError(err))
}

func TestIndex_DeleteRootResetsLeaf(t *testing.T) {
	idx := conversation.NewIndex()
	sid := uuid.New()

	first := add(t, idx, sid, nil, message.RoleSystem, "rules")
	require.NoError(t, idx.Select(sid, first.ID))
	second := add(t, idx, sid, nil, message.RoleUser, "standalone")

	_, err := idx.Delete(sid, second.ID)
	require.NoError(t, err)

	leaf, ok := idx.Leaf(sid)
	require.True(t, ok)
	assert.Equal(t, first.ID, leaf)

	_, err = idx.Delete(sid, first.ID)
	require.NoError(t, err)
	_, ok = idx.Leaf(sid)
	assert.False(t, ok)
}

func TestIndex_TruncateAfter(t *testing.T) {
	idx := conversation.NewIndex()
	sid := uuid.New()

	root := add(t, idx, sid, nil, message.RoleUser, "hi")
	answer := add(t, idx, sid, root, message.RoleAssistant, "hello")
	add(t, idx, sid, answer, message.RoleUser, "more")

	removed, err := idx.TruncateAfter(sid, root.ID)
	require.NoError(t, err)
	assert.Len(t, removed, 2)
	assert.Equal(t, []string{"hi"}, contents(idx.Context(sid)))
}

func TestIndex_LoadAndForget(t *testing.T) {
	idx := conversation.NewIndex()
	sid := uuid.New()

	root := message.New(sid, nil, message.RoleUser, message.ContentTypeText, "hi")
	reply := message.New(sid, &root.ID, message.RoleAssistant, message.ContentTypeText, "hello")
	require.NoError(t, idx.Load([]message.Message{*root, *reply}))
	assert.Equal(t, []string{"hi", "hello"}, contents(idx.Context(sid)))

	idx.Forget(sid)
	assert.Equal(t, 0, idx.Len(sid))
	assert.Empty(t, idx.Context(sid))
}
