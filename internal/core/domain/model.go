package domain

import "strings"

type Status string

const (
	StatusOK        Status = "Ok"
	StatusNoMessage Status = "No message"
)

// Update is a single webhook delivery. Message is nil for platform events that carry no chat message.
type Update struct {
	Message *Message
}

type Message struct {
	ID       int
	ChatID   int64
	ChatType string
	From     *User
	Text     string
}

type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Username     string
	LanguageCode string
}

// DisplayName joins first and last name and appends the @username when the user has one.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)

	if u.Username == "" {
		return name
	}

	if name == "" {
		return "@" + u.Username
	}

	return name + " (@" + u.Username + ")"
}
