package repositories

import (
	"testing"
	"time"

	"sanctuary/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func chatMessages(sessionID string, at time.Time) []domain.ChatMessage {
	content := "this message will self destruct in 5 seconds"
	return []domain.ChatMessage{
		{ID: uuid.New(), SessionID: sessionID, SenderID: "u-alice", Alias: "Alice", Content: content, Type: "text", CreatedAt: at},
		{ID: uuid.New(), SessionID: sessionID, SenderID: "u-bob", Alias: "Bob", Content: content, Type: "text", CreatedAt: at.Add(1 * time.Minute)},
		{ID: uuid.New(), SessionID: sessionID, SenderID: "u-clara", Alias: "Clara", Content: content, Type: "text", CreatedAt: at.Add(2 * time.Minute)},
	}
}

func Test_Record_Multiple_Message(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), discardLogger(), nil)

	// Given three messages stored in the same session
	at := time.Now().UTC()
	messages := chatMessages("session-1", at)
	for _, m := range messages {
		req.NoError(repository.StoreMessage(m))
	}

	// When fetching the history
	fetched, cursor, err := repository.GetMessages("session-1", nil)

	// Then all messages are returned newest first
	req.NoError(err)
	req.NotNil(cursor)
	req.Len(fetched, len(messages))
	req.Equal(messages[2].ID, fetched[0].ID)
	req.Equal(messages[0].ID, fetched[2].ID)
	req.True(messages[1].CreatedAt.Equal(fetched[1].CreatedAt))
}

func Test_Record_Multiple_Message_And_Paginate(t *testing.T) {
	req := require.New(t)
	limit := 2
	repository := NewMessageRepository(openDB(t), discardLogger(), &limit)

	// Given three messages and a page size of two
	messages := chatMessages("session-1", time.Now().UTC())
	for _, m := range messages {
		req.NoError(repository.StoreMessage(m))
	}

	// When reading the first page
	page, cursor, err := repository.GetMessages("session-1", nil)
	req.NoError(err)
	req.Len(page, limit)
	req.NotNil(cursor)

	// Then the next page resumes after the cursor
	next, _, err := repository.GetMessages("session-1", cursor)
	req.NoError(err)
	req.Len(next, 1)
	req.Equal(messages[0].ID, next[0].ID)
}

func Test_Messages_Are_Scoped_By_Session(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), discardLogger(), nil)

	for _, m := range chatMessages("session-1", time.Now().UTC()) {
		req.NoError(repository.StoreMessage(m))
	}

	fetched, cursor, err := repository.GetMessages("session-2", nil)
	req.NoError(err)
	req.Empty(fetched)
	req.Nil(cursor)
}

func Test_Session_Ids_Sharing_A_Prefix_Do_Not_Overlap(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), discardLogger(), nil)

	// Given messages stored under a session id containing a colon
	for _, m := range chatMessages("a:1", time.Now().UTC()) {
		req.NoError(repository.StoreMessage(m))
	}

	// When the shorter session id is read
	fetched, cursor, err := repository.GetMessages("a", nil)

	// Then none of the other session's messages leak into it
	req.NoError(err)
	req.Empty(fetched)
	req.Nil(cursor)

	fetched, _, err = repository.GetMessages("a:1", nil)
	req.NoError(err)
	req.Len(fetched, 3)
}
