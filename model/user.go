package model

import "time"

const RoleAdmin = "admin"

type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	Blocked   bool      `json:"blocked"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) IsAdmin() bool {
	for _, r := range u.Roles {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}

func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Username: u.Username, Email: u.Email}
}

type Comment struct {
	ID         int       `json:"id"`
	TemplateID int       `json:"templateId"`
	Username   string    `json:"username"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}
