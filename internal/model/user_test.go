package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserFirstName(t *testing.T) {
	assert.Equal(t, "Jamie", (&User{FullName: "Jamie Rivera"}).FirstName())
	assert.Equal(t, "Jamie", (&User{FullName: "Jamie"}).FirstName())
	assert.Equal(t, "", (&User{FullName: ""}).FirstName())
}

func TestUserPublicProfileHidesPassword(t *testing.T) {
	u := &User{
		Email:    "jamie@example.com",
		Password: "hashed-secret",
		FullName: "Jamie Rivera",
	}

	profile := u.GetPublicProfile()

	assert.Equal(t, "jamie@example.com", profile["email"])
	assert.Equal(t, "Jamie Rivera", profile["full_name"])
	assert.NotContains(t, profile, "password")
}
