package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationIDSymmetry(t *testing.T) {
	a := "0b6f3a52-9e63-4a6b-8a6e-111111111111"
	b := "f2d8c0de-1b7a-4f7e-9c2d-222222222222"

	ab, err := ConversationID(a, b)
	require.NoError(t, err)
	ba, err := ConversationID(b, a)
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
	assert.Equal(t, a+"_"+b, ab)
}

func TestConversationIDDistinctPairs(t *testing.T) {
	first, err := ConversationID("aaa", "bbb")
	require.NoError(t, err)
	second, err := ConversationID("aaa", "ccc")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestConversationIDRejectsSelf(t *testing.T) {
	_, err := ConversationID("same-user", "same-user")
	assert.ErrorIs(t, err, ErrInvalidParticipants)
}

func TestConversationIDRejectsEmpty(t *testing.T) {
	_, err := ConversationID("", "someone")
	assert.ErrorIs(t, err, ErrInvalidParticipants)

	_, err = ConversationID("someone", "")
	assert.ErrorIs(t, err, ErrInvalidParticipants)
}
