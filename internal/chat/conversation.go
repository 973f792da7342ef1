// Package chat derives canonical conversation identities for user pairs.
package chat

import "errors"

// ErrInvalidParticipants is returned when a conversation id is requested for
// an empty identifier or for a user paired with themself.
var ErrInvalidParticipants = errors.New("invalid conversation participants")

// conversationSeparator joins the two participant ids. User ids are UUIDs and
// never contain an underscore, so the combined key is unambiguous.
const conversationSeparator = "_"

// ConversationID maps an unordered pair of user ids to the canonical
// conversation id. It is symmetric: ConversationID(a, b) == ConversationID(b, a).
func ConversationID(userA, userB string) (string, error) {
	if userA == "" || userB == "" || userA == userB {
		return "", ErrInvalidParticipants
	}
	if userB < userA {
		userA, userB = userB, userA
	}
	return userA + conversationSeparator + userB, nil
}
