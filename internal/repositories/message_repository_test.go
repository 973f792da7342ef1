package repositories

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var messageRows = []string{
	"id", "conversation_id", "sender_id", "receiver_id", "body", "kind",
	"media_kind", "media_url", "is_read", "read_at", "edited", "edited_at",
	"reply_to", "created_at",
}

func newMessageRepoMock(t *testing.T) (*MessageRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMessageRepo(sqlx.NewDb(db, "postgres")), mock
}

func messageRow(id int64, conversationID, senderID, receiverID, body string, createdAt time.Time) []driver.Value {
	return []driver.Value{id, conversationID, senderID, receiverID, body, "text",
		nil, nil, false, nil, false, nil, nil, createdAt}
}

func TestCreateMessageStoredUnread(t *testing.T) {
	repo, mock := newMessageRepoMock(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)INSERT INTO messages\s+\(conversation_id, sender_id, receiver_id, body, kind, media_kind, media_url, reply_to\)\s+VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8\)\s+RETURNING`).
		WithArgs("a_b", "a", "b", "hi", "text", nil, nil, nil).
		WillReturnRows(sqlmock.NewRows(messageRows).
			AddRow(messageRow(1, "a_b", "a", "b", "hi", created)...))

	msg, err := repo.CreateMessage(context.Background(), CreateMessageParams{
		ConversationID: "a_b", SenderID: "a", ReceiverID: "b", Body: "hi", Kind: "text",
	})
	require.NoError(t, err)
	assert.False(t, msg.IsRead)
	assert.Nil(t, msg.ReadAt)
	assert.Equal(t, created, msg.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryReversesNewestFirstWindow(t *testing.T) {
	repo, mock := newMessageRepoMock(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// A higher serial id committed with an earlier timestamp: the returned
	// order must follow the window's created_at ordering, not the ids.
	mock.ExpectQuery(`(?s)SELECT .+ FROM messages\s+WHERE conversation_id = \$1\s+ORDER BY created_at DESC, id DESC\s+LIMIT \$2 OFFSET \$3`).
		WithArgs("a_b", 50, 0).
		WillReturnRows(sqlmock.NewRows(messageRows).
			AddRow(messageRow(5, "a_b", "a", "b", "third", base.Add(2*time.Minute))...).
			AddRow(messageRow(7, "a_b", "b", "a", "second", base.Add(time.Minute))...).
			AddRow(messageRow(2, "a_b", "a", "b", "first", base)...))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM messages WHERE conversation_id = \$1`).
		WithArgs("a_b").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	msgs, total, err := repo.History(context.Background(), "a_b", 1, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"first", "second", "third"},
		[]string{msgs[0].Body, msgs[1].Body, msgs[2].Body})
	assert.Equal(t, int64(2), msgs[0].ID)
	assert.Equal(t, int64(7), msgs[1].ID)
	assert.Equal(t, int64(5), msgs[2].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryBreaksTimestampTiesByID(t *testing.T) {
	repo, mock := newMessageRepoMock(t)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)SELECT .+ FROM messages\s+WHERE conversation_id = \$1`).
		WithArgs("a_b", 50, 0).
		WillReturnRows(sqlmock.NewRows(messageRows).
			AddRow(messageRow(4, "a_b", "b", "a", "later", at)...).
			AddRow(messageRow(3, "a_b", "a", "b", "earlier", at)...))
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("a_b").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	msgs, _, err := repo.History(context.Background(), "a_b", 1, 50)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, int64(3), msgs[0].ID)
	assert.Equal(t, int64(4), msgs[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkReadOnlyTouchesUnreadRows(t *testing.T) {
	repo, mock := newMessageRepoMock(t)

	// One set-based UPDATE gated on is_read = FALSE: already-read rows keep
	// their original read_at, so repeating the call changes nothing.
	query := `(?s)UPDATE messages\s+SET is_read = TRUE, read_at = NOW\(\)\s+WHERE conversation_id = \$1 AND receiver_id = \$2 AND is_read = FALSE`
	mock.ExpectExec(query).
		WithArgs("a_b", "b").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(query).
		WithArgs("a_b", "b").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.MarkRead(context.Background(), "a_b", "b"))
	require.NoError(t, repo.MarkRead(context.Background(), "a_b", "b"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationsForMergesUnreadCounts(t *testing.T) {
	repo, mock := newMessageRepoMock(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)SELECT DISTINCT ON \(conversation_id\) .+ FROM messages\s+WHERE sender_id = \$1 OR receiver_id = \$1\s+ORDER BY conversation_id, created_at DESC, id DESC`).
		WithArgs("b").
		WillReturnRows(sqlmock.NewRows(messageRows).
			AddRow(messageRow(9, "a_b", "a", "b", "ping", base)...).
			AddRow(messageRow(12, "b_c", "c", "b", "pong", base.Add(time.Hour))...))
	mock.ExpectQuery(`(?s)SELECT conversation_id, COUNT\(\*\) AS count\s+FROM messages\s+WHERE receiver_id = \$1 AND is_read = FALSE\s+GROUP BY conversation_id`).
		WithArgs("b").
		WillReturnRows(sqlmock.NewRows([]string{"conversation_id", "count"}).
			AddRow("a_b", 3))

	summaries, err := repo.ConversationsFor(context.Background(), "b")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Newest activity first; the conversation with no unread rows counts zero.
	assert.Equal(t, "b_c", summaries[0].ConversationID)
	assert.Equal(t, int64(0), summaries[0].UnreadCount)
	assert.Equal(t, "a_b", summaries[1].ConversationID)
	assert.Equal(t, int64(3), summaries[1].UnreadCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMessageRejectsNonSender(t *testing.T) {
	repo, mock := newMessageRepoMock(t)

	mock.ExpectQuery(`(?s)SELECT .+ FROM messages WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(messageRows).
			AddRow(messageRow(9, "a_b", "a", "b", "mine", time.Now())...))

	err := repo.DeleteMessage(context.Background(), 9, "b")
	assert.ErrorIs(t, err, ErrNotMessageSender)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMessageNotFound(t *testing.T) {
	repo, mock := newMessageRepoMock(t)

	mock.ExpectQuery(`(?s)SELECT .+ FROM messages WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(messageRows))

	err := repo.DeleteMessage(context.Background(), 404, "a")
	assert.ErrorIs(t, err, ErrMessageNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
