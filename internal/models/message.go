package models

import "time"

// Participant is one factory taking part in a conversation.
type Participant struct {
	FactoryID    int64  `json:"factory_id"`
	UserID       int64  `json:"user_id"`
	FactoryName  string `json:"factory_name"`
	IndustryType string `json:"industry_type"`
	Email        string `json:"email"`
}

// Message is one entry of a conversation's history.
type Message struct {
	ID           int64     `json:"id"`
	SenderUserID int64     `json:"sender_user_id"`
	Body         string    `json:"body"`
	CreatedAt    time.Time `json:"created_at"`
}

// Thread is a conversation summary with its participants and the latest
// message for preview.
type Thread struct {
	ConversationID int64         `json:"conversation_id"`
	CreatedAt      time.Time     `json:"created_at"`
	Participants   []Participant `json:"participants"`
	LastMessage    *Message      `json:"last_message"`
}

// Conversation is the full history returned for one thread.
type Conversation struct {
	ConversationID int64         `json:"conversation_id"`
	Participants   []Participant `json:"participants"`
	Messages       []Message     `json:"messages"`
}

// StartMessageRequest is the body of POST /api/messages/start.
type StartMessageRequest struct {
	TargetFactoryID int64  `json:"target_factory_id"`
	FromFactoryID   int64  `json:"from_factory_id"`
	Body            string `json:"body"`
}

// SendMessageRequest is the body of POST /api/messages/:id.
type SendMessageRequest struct {
	Body string `json:"body"`
}
