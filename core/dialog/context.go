package dialog

import (
	"context"
	"sync"

	"github.com/trezcool/altedy/core/classroom"
)

// conversation is the explicit per-chat context threaded through handlers:
// the last bot message id (for edits), messages pending cleanup, and the
// flow data accumulated between transitions.
type conversation struct {
	sync.Mutex

	chatID    int64
	lastMsgID int
	cleanup   []int

	// teacher task-authoring flow
	classroomID string
	draft       *classroom.TaskDraft

	// student submission flow
	submitClassroomID string
	submitTaskID      string
}

func (c *conversation) cache(msgIDs ...int) {
	c.cleanup = append(c.cleanup, msgIDs...)
}

// conversation returns the context for a chat, creating it on first contact.
// Handlers hold the conversation lock for the whole event, so events for one
// user are interpreted strictly sequentially.
//
// Entries are retained for the life of the process, one per chat id. Only a
// pending task draft holds bulky data (attached files), and it is dropped as
// soon as its flow settles; everything else is a handful of ints and strings.
func (m *Machine) conversation(chatID int64) *conversation {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.convs[chatID]
	if !ok {
		conv = &conversation{chatID: chatID}
		m.convs[chatID] = conv
	}
	return conv
}

// cleanChat deletes all messages pending cleanup for this conversation.
// Transport failures are logged and skipped.
func (m *Machine) cleanChat(ctx context.Context, conv *conversation) {
	for _, msgID := range conv.cleanup {
		if err := m.chat.DeleteMessage(ctx, conv.chatID, msgID); err != nil {
			m.logger.Warn("deleting message", err)
		}
	}
	conv.cleanup = conv.cleanup[:0]
}
