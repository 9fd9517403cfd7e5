package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mapperinfluences/backend/internal/domain"
)

const actorU = 1

func editBio(actor uint32, text string) domain.Activity {
	bio := text
	return domain.Activity{Actor: domain.Small{ID: actor}, EventType: domain.EventEditBio, Bio: &bio}
}

func addUserBeatmap(actor uint32, beatmapID uint32) domain.Activity {
	return domain.Activity{Actor: domain.Small{ID: actor}, EventType: domain.EventAddUserBeatmap, Beatmap: &domain.BeatmapRef{ID: beatmapID}}
}

func addInfluence(actor, target uint32) domain.Activity {
	return domain.Activity{Actor: domain.Small{ID: actor}, EventType: domain.EventAddInfluence, Influence: &domain.Small{ID: target}}
}

func editInfluenceDesc(actor, target uint32, text string) domain.Activity {
	desc := text
	return domain.Activity{Actor: domain.Small{ID: actor}, EventType: domain.EventEditInfluenceDesc, Influence: &domain.Small{ID: target}, Description: &desc}
}

func login(actor uint32) domain.Activity {
	return domain.Activity{Actor: domain.Small{ID: actor}, EventType: domain.EventLogin}
}

func addInfluenceBeatmap(actor, target, beatmapID uint32) domain.Activity {
	return domain.Activity{Actor: domain.Small{ID: actor}, EventType: domain.EventAddInfluenceBeatmap, Influence: &domain.Small{ID: target}, Beatmap: &domain.BeatmapRef{ID: beatmapID}}
}

func TestSpamFilterTable(t *testing.T) {
	t.Run("a: repeated EDIT_BIO rejected", func(t *testing.T) {
		queue := []domain.Activity{editBio(actorU, "first")}
		assert.True(t, IsSpam(queue, editBio(actorU, "x")))
	})

	t.Run("b: three ADD_USER_BEATMAP for different ids rejects a fourth", func(t *testing.T) {
		queue := []domain.Activity{
			addUserBeatmap(actorU, 1),
			addUserBeatmap(actorU, 2),
			addUserBeatmap(actorU, 3),
		}
		assert.True(t, IsSpam(queue, addUserBeatmap(actorU, 4)))
	})

	t.Run("c: ADD_INFLUENCE then EDIT_INFLUENCE_DESC same target rejected", func(t *testing.T) {
		queue := []domain.Activity{addInfluence(actorU, 7)}
		assert.True(t, IsSpam(queue, editInfluenceDesc(actorU, 7, "hi")))
	})

	t.Run("d: ADD_INFLUENCE different target accepted", func(t *testing.T) {
		queue := []domain.Activity{addInfluence(actorU, 7)}
		assert.False(t, IsSpam(queue, addInfluence(actorU, 8)))
	})

	t.Run("e: LOGIN then EDIT_BIO accepted", func(t *testing.T) {
		queue := []domain.Activity{login(actorU)}
		assert.False(t, IsSpam(queue, editBio(actorU, "x")))
	})

	t.Run("f: empty queue ADD_USER_BEATMAP accepted", func(t *testing.T) {
		assert.False(t, IsSpam(nil, addUserBeatmap(actorU, 1)))
	})
}

func TestAddUserBeatmapSameIDAlwaysRejected(t *testing.T) {
	queue := []domain.Activity{addUserBeatmap(actorU, 5)}
	assert.True(t, IsSpam(queue, addUserBeatmap(actorU, 5)))
}

func TestAddInfluenceBeatmapRequiresTwoDifferentPriorForSameTarget(t *testing.T) {
	queue := []domain.Activity{addInfluenceBeatmap(actorU, 7, 1)}
	assert.False(t, IsSpam(queue, addInfluenceBeatmap(actorU, 7, 2)), "only one prior differing entry: not yet spam")

	queue = append(queue, addInfluenceBeatmap(actorU, 7, 2))
	assert.True(t, IsSpam(queue, addInfluenceBeatmap(actorU, 7, 3)))
}

func TestDifferentActorsDoNotInteract(t *testing.T) {
	queue := []domain.Activity{editBio(actorU, "x")}
	assert.False(t, IsSpam(queue, editBio(2, "y")))
}

func TestSpamFilterIsDeterministic(t *testing.T) {
	queue := []domain.Activity{addInfluence(actorU, 7)}
	newActivity := editInfluenceDesc(actorU, 7, "hi")
	first := IsSpam(queue, newActivity)
	second := IsSpam(queue, newActivity)
	assert.Equal(t, first, second)
}
