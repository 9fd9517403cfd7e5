package db

import (
	"fmt"

	"github.com/mapperinfluences/backend/internal/apperror"
	"github.com/mapperinfluences/backend/internal/domain"
	"github.com/mapperinfluences/backend/internal/osuapi"
)

// UpsertUser idempotently inserts or updates a user record by id,
// recomputing the ranked-mapper flag and, when authenticated is true,
// flipping the authenticated flag on. Existing bio/beatmaps/influence
// order/activity preferences are preserved across a refresh because
// the UPSERT only SETs the upstream-sourced fields.
func (s *Store) UpsertUser(user osuapi.User, authenticated bool) error {
	groups := make([]map[string]interface{}, len(user.Groups))
	for i, g := range user.Groups {
		groups[i] = map[string]interface{}{
			"colour":     g.Colour,
			"name":       g.Name,
			"short_name": g.ShortName,
		}
	}

	vars := map[string]interface{}{
		"id":                  user.ID,
		"username":            user.Username,
		"avatar_url":          user.AvatarURL,
		"country_code":        user.Country.Code,
		"country_name":        user.Country.Name,
		"groups":              groups,
		"previous_usernames":  user.PreviousUsernames,
		"ranked_count":        user.RankedAndApprovedBeatmapsetCount,
		"loved_count":         user.LovedBeatmapsetCount,
		"guest_count":         user.GuestBeatmapsetCount,
		"favourite_count":     user.FavouriteBeatmapsetCount,
		"pending_count":       user.PendingBeatmapsetCount,
		"graveyard_count":     user.GraveyardBeatmapsetCount,
		"ranked_mapper":       user.IsRankedMapper(),
		"authenticated":       authenticated,
	}

	query := `
		UPSERT type::thing("user", $id) SET
			username = $username,
			avatar_url = $avatar_url,
			country = { code: $country_code, name: $country_name },
			groups = $groups,
			previous_usernames = $previous_usernames,
			ranked_beatmapset_count = $ranked_count,
			loved_beatmapset_count = $loved_count,
			guest_beatmapset_count = $guest_count,
			favourite_beatmapset_count = $favourite_count,
			pending_beatmapset_count = $pending_count,
			graveyard_beatmapset_count = $graveyard_count,
			ranked_mapper = $ranked_mapper,
			bio = bio OR '',
			beatmaps = beatmaps OR [],
			influence_order = influence_order OR [],
			authenticated = (authenticated OR false) OR $authenticated,
			updated_at = time::now()
	`
	if _, err := s.conn.Query(query, vars); err != nil {
		return apperror.Internal(fmt.Errorf("upsert user: %w", err))
	}
	return nil
}

// SetAuthenticated flips the authenticated flag true for userID.
func (s *Store) SetAuthenticated(userID uint32) error {
	query := `UPDATE type::thing("user", $id) SET authenticated = true`
	if _, err := s.conn.Query(query, map[string]interface{}{"id": userID}); err != nil {
		return apperror.Internal(fmt.Errorf("set authenticated: %w", err))
	}
	return nil
}

// UpdateBio sets a user's free-text bio. Callers must enforce the
// 5000-byte bound before calling this.
func (s *Store) UpdateBio(userID uint32, bio string) error {
	query := `UPDATE type::thing("user", $id) SET bio = $bio, updated_at = time::now()`
	if _, err := s.conn.Query(query, map[string]interface{}{"id": userID, "bio": bio}); err != nil {
		return apperror.Internal(fmt.Errorf("update bio: %w", err))
	}
	return nil
}

// AddBeatmapToUser appends beatmapID to the user's showcase list if
// not already present.
func (s *Store) AddBeatmapToUser(userID, beatmapID uint32) error {
	query := `
		UPDATE type::thing("user", $id) SET
			beatmaps = array::distinct(array::append(beatmaps OR [], $beatmap_id)),
			updated_at = time::now()
	`
	vars := map[string]interface{}{"id": userID, "beatmap_id": beatmapID}
	if _, err := s.conn.Query(query, vars); err != nil {
		return apperror.Internal(fmt.Errorf("add beatmap to user: %w", err))
	}
	return nil
}

// RemoveBeatmapFromUser removes beatmapID from the user's showcase
// list.
func (s *Store) RemoveBeatmapFromUser(userID, beatmapID uint32) error {
	query := `
		UPDATE type::thing("user", $id) SET
			beatmaps = array::complement(beatmaps OR [], [$beatmap_id]),
			updated_at = time::now()
	`
	vars := map[string]interface{}{"id": userID, "beatmap_id": beatmapID}
	if _, err := s.conn.Query(query, vars); err != nil {
		return apperror.Internal(fmt.Errorf("remove beatmap from user: %w", err))
	}
	return nil
}

// SetInfluenceOrder writes the position of each outgoing edge to the
// index of its target id within targetIDs, then bumps updated_at.
func (s *Store) SetInfluenceOrder(userID uint32, targetIDs []uint32) error {
	query := `
		FOR $idx IN array::range(0, array::len($targets)) {
			UPDATE influenced_by SET order = $idx
				WHERE in = type::thing("user", $user_id) AND out = type::thing("user", $targets[$idx]);
		};
		UPDATE type::thing("user", $user_id) SET
			influence_order = $targets,
			updated_at = time::now();
	`
	vars := map[string]interface{}{"user_id": userID, "targets": targetIDs}
	if _, err := s.conn.Query(query, vars); err != nil {
		return apperror.Internal(fmt.Errorf("set influence order: %w", err))
	}
	return nil
}

// GetUserDetails returns the full local record for userID.
func (s *Store) GetUserDetails(userID uint32) (domain.User, error) {
	query := `
		SELECT *, (SELECT count() FROM <-influenced_by GROUP ALL)[0].count OR 0 AS mentions
		FROM ONLY type::thing("user", $id)
	`
	data, err := s.conn.Query(query, map[string]interface{}{"id": userID})
	if err != nil {
		return domain.User{}, apperror.Internal(fmt.Errorf("get user details: %w", err))
	}
	return unmarshalOne[domain.User](data, apperror.MissingUser(userID))
}

// GetMultipleUserDetails returns the full local records for every id
// in userIDs that exists locally.
func (s *Store) GetMultipleUserDetails(userIDs []uint32) ([]domain.User, error) {
	query := `SELECT * FROM user WHERE id IN $ids`
	data, err := s.conn.Query(query, map[string]interface{}{"ids": userIDs})
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("get multiple user details: %w", err))
	}
	return unmarshalRows[domain.User](data)
}

// SetActivityPreferences overwrites the ten activity-recording
// booleans for userID.
func (s *Store) SetActivityPreferences(userID uint32, prefs domain.ActivityPreferences) error {
	query := `UPDATE type::thing("user", $id) SET activity_preferences = $prefs`
	vars := map[string]interface{}{"id": userID, "prefs": prefs}
	if _, err := s.conn.Query(query, vars); err != nil {
		return apperror.Internal(fmt.Errorf("set activity preferences: %w", err))
	}
	return nil
}

// GetActivityPreferences returns userID's stored preferences, or the
// documented defaults if none have been set yet.
func (s *Store) GetActivityPreferences(userID uint32) (domain.ActivityPreferences, error) {
	query := `SELECT VALUE activity_preferences FROM ONLY type::thing("user", $id)`
	data, err := s.conn.Query(query, map[string]interface{}{"id": userID})
	if err != nil {
		return domain.ActivityPreferences{}, apperror.Internal(fmt.Errorf("get activity preferences: %w", err))
	}
	prefs, err := unmarshalOne[*domain.ActivityPreferences](data, apperror.MissingUser(userID))
	if err != nil {
		return domain.ActivityPreferences{}, err
	}
	if prefs == nil {
		return domain.DefaultActivityPreferences(), nil
	}
	return *prefs, nil
}

// GetUsersToUpdate lists ids of users whose updated_at is more than a
// second stale, for the daily update loop.
func (s *Store) GetUsersToUpdate() ([]uint32, error) {
	query := `SELECT VALUE id FROM user WHERE updated_at + 1s < time::now()`
	data, err := s.conn.Query(query, nil)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("get users to update: %w", err))
	}
	return unmarshalRows[uint32](data)
}
