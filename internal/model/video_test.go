package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVideoPlayable(t *testing.T) {
	free := &Video{Title: "Intro to Welding", IsFree: true}
	gated := &Video{Title: "Advanced TIG Techniques", IsFree: false}

	assert.True(t, free.Playable(false), "free videos play for everyone")
	assert.True(t, free.Playable(true))

	assert.False(t, gated.Playable(false), "gated videos need a subscription")
	assert.True(t, gated.Playable(true))
}

func TestVideoAccessIsValid(t *testing.T) {
	now := time.Now()
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	unexpired := &VideoAccess{ExpiresAt: &future}
	expired := &VideoAccess{ExpiresAt: &past}
	schoolLicense := &VideoAccess{ExpiresAt: nil, AccessType: "school_license"}

	assert.True(t, unexpired.IsValid(now))
	assert.False(t, expired.IsValid(now))
	assert.True(t, schoolLicense.IsValid(now), "nil expiry never expires")
	assert.True(t, schoolLicense.IsValid(now.AddDate(10, 0, 0)))
}

func TestVideoSetTags(t *testing.T) {
	v := &Video{}

	err := v.SetTags([]string{"safety", "osha"})
	assert.NoError(t, err)
	assert.JSONEq(t, `["safety","osha"]`, string(v.Tags))

	err = v.SetTags(nil)
	assert.NoError(t, err)
	assert.JSONEq(t, `[]`, string(v.Tags))
}
