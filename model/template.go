package model

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

type Topic string

const (
	TopicEducation Topic = "Education"
	TopicQuiz      Topic = "Quiz"
	TopicOther     Topic = "Other"
)

var Topics = []Topic{TopicEducation, TopicQuiz, TopicOther}

type UserRef struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Template struct {
	ID           int        `json:"id,omitempty"`
	Version      int        `json:"version,omitempty"`
	Owner        string     `json:"owner,omitempty"`
	Title        string     `json:"title" validate:"notblank"`
	Description  string     `json:"description" validate:"notblank"`
	Topic        Topic      `json:"topic" validate:"required,oneof=Education Quiz Other"`
	Tags         []string   `json:"tags"`
	IsPublic     bool       `json:"isPublic"`
	AllowedUsers []UserRef  `json:"allowedUsers,omitempty"`
	Questions    []Question `json:"questions"`
	Likes        int        `json:"likes"`
	CreatedAt    time.Time  `json:"createdAt,omitempty"`
	UpdatedAt    time.Time  `json:"updatedAt,omitempty"`
}

func (t Template) Clone() Template {
	c := t
	c.Tags = cloneStrings(t.Tags)
	if t.AllowedUsers != nil {
		c.AllowedUsers = append([]UserRef(nil), t.AllowedUsers...)
	}
	if t.Questions != nil {
		c.Questions = make([]Question, len(t.Questions))
		for i, q := range t.Questions {
			c.Questions[i] = q.Clone()
		}
	}
	return c
}

func (t Template) QuestionByID(id string) (Question, bool) {
	for _, q := range t.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

func (t Template) QuestionIDs() []string {
	ids := make([]string, len(t.Questions))
	for i, q := range t.Questions {
		ids[i] = q.ID
	}
	return ids
}

// CanBeFilledBy tells whether username may open the template in fill mode.
// An empty username is an anonymous visitor.
func (t Template) CanBeFilledBy(username string, admin bool) bool {
	if t.IsPublic || admin {
		return true
	}
	if username == "" {
		return false
	}
	if username == t.Owner {
		return true
	}
	for _, u := range t.AllowedUsers {
		if u.Username == username {
			return true
		}
	}
	return false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// ValidateMeta checks the top-level template fields (title, description, topic).
func ValidateMeta(t Template) error {
	return validate.Struct(t)
}
