// Package models provides canonical type definitions for Curio API entities.
// These types are used throughout the session layer and CLI for API responses.
package models

// User represents a Curio account identity.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname,omitempty"`
	Role     string `json:"role,omitempty"` // "admin", "curator", "user"
}

// IsAdmin reports whether the user may use admin surfaces.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == "admin"
}

// Banner represents a promotional banner shown in the client.
type Banner struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url,omitempty"`
	LinkURL  string `json:"link_url,omitempty"`
	Status   string `json:"status,omitempty"` // "live", "scheduled", "retired"
	StartsAt string `json:"starts_at,omitempty"`
	EndsAt   string `json:"ends_at,omitempty"`
}

// Curator represents a curator profile.
type Curator struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Bio       string `json:"bio,omitempty"`
	Approved  bool   `json:"approved"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Payment represents a payment record.
type Payment struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Amount    int64  `json:"amount"` // minor currency units
	Currency  string `json:"currency"`
	Status    string `json:"status"` // "pending", "paid", "refunded", "failed"
	CreatedAt string `json:"created_at,omitempty"`
}

// Notice represents a public announcement. Notices are readable without a
// session, which is why the notices route sits on the public allow-list.
type Notice struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Exhibition represents a curated exhibition.
type Exhibition struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CuratorID string `json:"curator_id,omitempty"`
	Status    string `json:"status,omitempty"` // "draft", "open", "closed"
	OpensAt   string `json:"opens_at,omitempty"`
	ClosesAt  string `json:"closes_at,omitempty"`
}

// ChatRoom represents a chat room between a user and a curator.
type ChatRoom struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CuratorID string `json:"curator_id,omitempty"`
	UnreadCnt int    `json:"unread_count,omitempty"`
}

// ChatMessage represents a single chat message.
type ChatMessage struct {
	ID        string `json:"id"`
	RoomID    string `json:"room_id"`
	AuthorID  string `json:"author_id"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at,omitempty"`
}
