package server

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mapperinfluences/backend/internal/domain"
)

func TestShouldRecordActivityDefaults(t *testing.T) {
	prefs := domain.DefaultActivityPreferences()

	assert.False(t, shouldRecordActivity(prefs, domain.EventLogin))
	assert.True(t, shouldRecordActivity(prefs, domain.EventAddInfluence))
	assert.False(t, shouldRecordActivity(prefs, domain.EventRemoveInfluence))
	assert.True(t, shouldRecordActivity(prefs, domain.EventAddInfluenceBeatmap))
	assert.False(t, shouldRecordActivity(prefs, domain.EventRemoveInfluenceBeatmap))
	assert.True(t, shouldRecordActivity(prefs, domain.EventAddUserBeatmap))
	assert.False(t, shouldRecordActivity(prefs, domain.EventRemoveUserBeatmap))
	assert.True(t, shouldRecordActivity(prefs, domain.EventEditBio))
	assert.True(t, shouldRecordActivity(prefs, domain.EventEditInfluenceDesc))
	assert.True(t, shouldRecordActivity(prefs, domain.EventEditInfluenceType))
}

func TestShouldRecordActivityRespectsOverride(t *testing.T) {
	prefs := domain.DefaultActivityPreferences()
	prefs.Login = true
	prefs.AddInfluence = false

	assert.True(t, shouldRecordActivity(prefs, domain.EventLogin))
	assert.False(t, shouldRecordActivity(prefs, domain.EventAddInfluence))
}

func TestShouldRecordActivityUnknownEventDefaultsTrue(t *testing.T) {
	prefs := domain.ActivityPreferences{}
	assert.True(t, shouldRecordActivity(prefs, domain.EventType("SOMETHING_ELSE")))
}
