// Package chat holds the conversation state and the controller that drives
// one exchange at a time against a transport.
package chat

import (
	"time"

	"github.com/diogo/purrfect/internal/models"
)

// noPending marks a conversation without a pending model turn
const noPending = -1

// Conversation is an append-only sequence of turns with at most one
// pending model turn. It is not safe for concurrent use; Session guards it.
type Conversation struct {
	turns   []models.ChatTurn
	pending int
	now     func() time.Time
}

// NewConversation creates an empty conversation
func NewConversation() *Conversation {
	return &Conversation{pending: noPending, now: time.Now}
}

func (c *Conversation) append(turn models.ChatTurn) int {
	c.turns = append(c.turns, turn)
	return len(c.turns) - 1
}

// AppendUser appends a user turn stamped with the current time
func (c *Conversation) AppendUser(text string) int {
	return c.append(models.ChatTurn{Role: models.RoleUser, Text: text, Timestamp: c.now()})
}

// AppendModel appends an already resolved model turn
func (c *Conversation) AppendModel(text string) int {
	return c.append(models.ChatTurn{Role: models.RoleModel, Text: text, Timestamp: c.now()})
}

// AppendPendingModelTurn appends an empty model turn and makes it the
// pending slot
func (c *Conversation) AppendPendingModelTurn() int {
	c.pending = c.append(models.ChatTurn{Role: models.RoleModel, Timestamp: c.now()})
	return c.pending
}

// UpdatePending replaces the text of the pending turn while a reply is
// still arriving. It reports false when there is no pending turn.
func (c *Conversation) UpdatePending(text string) bool {
	if c.pending == noPending {
		return false
	}
	c.turns[c.pending].Text = text
	return true
}

// ResolvePending sets the final text of the pending turn. Without a pending
// slot the most recent empty model turn is used, and failing that a new
// resolved turn is appended. A resolved turn is never overwritten.
func (c *Conversation) ResolvePending(text string) int {
	idx := c.pending
	if idx == noPending {
		idx = c.lastEmptyModelTurn()
	}
	c.pending = noPending

	if idx == noPending {
		return c.AppendModel(text)
	}
	c.turns[idx].Text = text
	c.turns[idx].Timestamp = c.now()
	return idx
}

// FailPending turns the pending turn into an error turn. Without a pending
// slot the error is appended.
func (c *Conversation) FailPending(message string) int {
	idx := c.pending
	c.pending = noPending

	if idx == noPending {
		return c.AppendError(message)
	}
	c.turns[idx].Text = message
	c.turns[idx].IsError = true
	c.turns[idx].Timestamp = c.now()
	return idx
}

// AppendError appends an error turn. The pending turn keeps its empty text
// but no longer holds the pending slot.
func (c *Conversation) AppendError(message string) int {
	c.pending = noPending
	return c.append(models.ChatTurn{
		Role:      models.RoleModel,
		Text:      message,
		Timestamp: c.now(),
		IsError:   true,
	})
}

func (c *Conversation) lastEmptyModelTurn() int {
	for i := len(c.turns) - 1; i >= 0; i-- {
		if c.turns[i].IsPending() {
			return i
		}
	}
	return noPending
}

// PendingIndex returns the index of the pending turn, or -1
func (c *Conversation) PendingIndex() int {
	return c.pending
}

// Turns returns a copy of the turns in display order
func (c *Conversation) Turns() []models.ChatTurn {
	out := make([]models.ChatTurn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns
func (c *Conversation) Len() int {
	return len(c.turns)
}
