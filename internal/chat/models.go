package chat

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SentinelNewConversation is the reserved conversation id meaning
// "create a new conversation" instead of addressing an existing one.
const SentinelNewConversation = "0"

type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turns is the full ordered history of a conversation, stored as one JSON
// column so an exchange lands in a single update.
type Turns []Turn

func (t Turns) Value() (driver.Value, error) {
	if t == nil {
		t = Turns{}
	}
	return json.Marshal(t)
}

func (t *Turns) Scan(v any) error {
	switch data := v.(type) {
	case nil:
		*t = Turns{}
		return nil
	case []byte:
		return json.Unmarshal(data, t)
	case string:
		return json.Unmarshal([]byte(data), t)
	default:
		return fmt.Errorf("turns: cannot scan %T", v)
	}
}

type Conversation struct {
	ID        string    `gorm:"primaryKey;size:26" json:"id"` // ULID length
	UserID    string    `gorm:"size:64;index;not null" json:"-"`
	Name      string    `gorm:"type:varchar(128);not null" json:"name"`
	History   Turns     `gorm:"type:json" json:"history"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Conversation) TableName() string { return "conversations" }
