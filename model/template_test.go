package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMeta(t *testing.T) {
	ok := Template{Title: "Survey", Description: "About things", Topic: TopicQuiz}
	assert.NoError(t, ValidateMeta(ok))

	blankTitle := ok
	blankTitle.Title = "   "
	assert.Error(t, ValidateMeta(blankTitle))

	noDescription := ok
	noDescription.Description = ""
	assert.Error(t, ValidateMeta(noDescription))

	badTopic := ok
	badTopic.Topic = "Sports"
	assert.Error(t, ValidateMeta(badTopic))

	noTopic := ok
	noTopic.Topic = ""
	assert.Error(t, ValidateMeta(noTopic))
}

func TestCanBeFilledBy(t *testing.T) {
	private := Template{
		Owner:        "alice",
		IsPublic:     false,
		AllowedUsers: []UserRef{{ID: 2, Username: "bob"}},
	}

	assert.True(t, private.CanBeFilledBy("alice", false))
	assert.True(t, private.CanBeFilledBy("bob", false))
	assert.True(t, private.CanBeFilledBy("carol", true))
	assert.False(t, private.CanBeFilledBy("carol", false))
	assert.False(t, private.CanBeFilledBy("", false))

	public := Template{Owner: "alice", IsPublic: true}
	assert.True(t, public.CanBeFilledBy("", false))
}

func TestTemplateClone(t *testing.T) {
	tmpl := Template{Tags: []string{"a"}, Questions: []Question{{ID: "1", Options: []string{"x"}}}}
	c := tmpl.Clone()
	c.Tags[0] = "b"
	c.Questions[0].Options[0] = "y"
	assert.Equal(t, "a", tmpl.Tags[0])
	assert.Equal(t, "x", tmpl.Questions[0].Options[0])
}
