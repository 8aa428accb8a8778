package store

// User owns an id-ordered collection of files and one of targets.
// Usernames are stored lower-case and are unique case-insensitively.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // Do not expose this in JSON responses
}

// File is a saved piece of editor source code.
type File struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	Title      string `json:"title"`
	SourceCode string `json:"code"`
}

func (f File) ItemID() int64 { return f.ID }

// Target is one user's mailbox view of a conversation partner. Name holds
// the counterpart's username (lower-case) and is unique per owning user.
// Both participants of a conversation have their own Target row.
type Target struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

func (t Target) ItemID() int64 { return t.ID }

// Message belongs to exactly one Target. A send produces two rows with the
// same text/title/code: sent=true under the sender's target and sent=false
// under the recipient's mirror target. The rows have independent lifecycles.
type Message struct {
	ID       int64  `json:"id"`
	TargetID int64  `json:"target_id"`
	Sent     bool   `json:"sent"`
	Text     string `json:"text"`
	Code     bool   `json:"code"`
	Title    string `json:"title"`
}

func (m Message) ItemID() int64 { return m.ID }
