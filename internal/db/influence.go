package db

import (
	"fmt"

	"github.com/mapperinfluences/backend/internal/apperror"
	"github.com/mapperinfluences/backend/internal/domain"
)

// InfluenceOptions carries the optional fields set on influence
// creation.
type InfluenceOptions struct {
	Type        domain.InfluenceType
	Description string
	Beatmaps    []uint32
}

// AddInfluenceRelation creates the influenced_by edge from→to with
// the given options and returns the fully enriched record. The order
// field is set to the source user's current outgoing-edge count, so
// a newly added influence is appended to the end of the existing
// ordering.
func (s *Store) AddInfluenceRelation(from, to uint32, opts InfluenceOptions) (domain.Influence, error) {
	query := `
		LET $order = (SELECT VALUE count() FROM ONLY $from->influenced_by GROUP ALL)[0] OR 0;
		RELATE $from->influenced_by->$to SET
			type = $type,
			description = $description,
			beatmaps = $beatmaps,
			order = $order;
		SELECT *, in.* AS influencer, out.* AS influenced_to FROM ONLY
			(SELECT * FROM influenced_by WHERE in = $from AND out = $to LIMIT 1);
	`
	vars := map[string]interface{}{
		"from":        userThing(from),
		"to":          userThing(to),
		"type":        opts.Type,
		"description": opts.Description,
		"beatmaps":    opts.Beatmaps,
	}
	data, err := s.conn.Query(query, vars)
	if err != nil {
		return domain.Influence{}, apperror.Internal(fmt.Errorf("add influence relation: %w", err))
	}
	return unmarshalOne[domain.Influence](data, apperror.MissingInfluence())
}

// RemoveInfluenceRelation deletes the influenced_by edge from→to and
// returns the removed record.
func (s *Store) RemoveInfluenceRelation(from, to uint32) (domain.Influence, error) {
	query := `
		SELECT *, in.* AS influencer, out.* AS influenced_to FROM ONLY
			(SELECT * FROM influenced_by WHERE in = $from AND out = $to LIMIT 1);
		DELETE influenced_by WHERE in = $from AND out = $to;
	`
	vars := map[string]interface{}{"from": userThing(from), "to": userThing(to)}
	data, err := s.conn.Query(query, vars)
	if err != nil {
		return domain.Influence{}, apperror.Internal(fmt.Errorf("remove influence relation: %w", err))
	}
	return unmarshalOne[domain.Influence](data, apperror.MissingInfluence())
}

// AddBeatmapToInfluence appends beatmapID to the influenced_by edge's
// beatmap set and returns the updated record.
func (s *Store) AddBeatmapToInfluence(from, to, beatmapID uint32) (domain.Influence, error) {
	return s.updateInfluenceBeatmaps(from, to, `array::distinct(array::append(beatmaps OR [], $beatmap_id))`, beatmapID)
}

// RemoveBeatmapFromInfluence removes beatmapID from the edge's
// beatmap set and returns the updated record.
func (s *Store) RemoveBeatmapFromInfluence(from, to, beatmapID uint32) (domain.Influence, error) {
	return s.updateInfluenceBeatmaps(from, to, `array::complement(beatmaps OR [], [$beatmap_id])`, beatmapID)
}

func (s *Store) updateInfluenceBeatmaps(from, to uint32, setExpr string, beatmapID uint32) (domain.Influence, error) {
	query := fmt.Sprintf(`
		UPDATE influenced_by SET beatmaps = %s WHERE in = $from AND out = $to;
		SELECT *, in.* AS influencer, out.* AS influenced_to FROM ONLY
			(SELECT * FROM influenced_by WHERE in = $from AND out = $to LIMIT 1);
	`, setExpr)
	vars := map[string]interface{}{
		"from":       userThing(from),
		"to":         userThing(to),
		"beatmap_id": beatmapID,
	}
	data, err := s.conn.Query(query, vars)
	if err != nil {
		return domain.Influence{}, apperror.Internal(fmt.Errorf("update influence beatmaps: %w", err))
	}
	return unmarshalOne[domain.Influence](data, apperror.MissingInfluence())
}

// UpdateInfluenceType changes the influence edge's categorical type
// and returns the updated record.
func (s *Store) UpdateInfluenceType(from, to uint32, influenceType domain.InfluenceType) (domain.Influence, error) {
	query := `
		UPDATE influenced_by SET type = $type WHERE in = $from AND out = $to;
		SELECT *, in.* AS influencer, out.* AS influenced_to FROM ONLY
			(SELECT * FROM influenced_by WHERE in = $from AND out = $to LIMIT 1);
	`
	vars := map[string]interface{}{"from": userThing(from), "to": userThing(to), "type": influenceType}
	data, err := s.conn.Query(query, vars)
	if err != nil {
		return domain.Influence{}, apperror.Internal(fmt.Errorf("update influence type: %w", err))
	}
	return unmarshalOne[domain.Influence](data, apperror.MissingInfluence())
}

// UpdateInfluenceDescription changes the influence edge's free-text
// description and returns the updated record. Callers must enforce
// the 5000-byte bound before calling this.
func (s *Store) UpdateInfluenceDescription(from, to uint32, description string) (domain.Influence, error) {
	query := `
		UPDATE influenced_by SET description = $description WHERE in = $from AND out = $to;
		SELECT *, in.* AS influencer, out.* AS influenced_to FROM ONLY
			(SELECT * FROM influenced_by WHERE in = $from AND out = $to LIMIT 1);
	`
	vars := map[string]interface{}{"from": userThing(from), "to": userThing(to), "description": description}
	data, err := s.conn.Query(query, vars)
	if err != nil {
		return domain.Influence{}, apperror.Internal(fmt.Errorf("update influence description: %w", err))
	}
	return unmarshalOne[domain.Influence](data, apperror.MissingInfluence())
}

// GetInfluences returns a page of userID's outgoing edges, ordered by
// the source user's `order` field ascending.
func (s *Store) GetInfluences(userID uint32, start, limit int) ([]domain.Influence, error) {
	query := `
		SELECT *, in.* AS influencer, out.* AS influenced_to FROM influenced_by
		WHERE in = $user
		ORDER BY order ASC
		LIMIT $limit START $start
	`
	vars := map[string]interface{}{"user": userThing(userID), "limit": limit, "start": start}
	data, err := s.conn.Query(query, vars)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("get influences: %w", err))
	}
	return unmarshalRows[domain.Influence](data)
}

// GetMentions returns a page of userID's incoming edges (the inverse
// view), ordered by the mentioned user's overall mention-count
// descending.
func (s *Store) GetMentions(userID uint32, start, limit int) ([]domain.Mention, error) {
	query := `
		SELECT *, in.* AS influencer, out.* AS influenced_to,
			(SELECT count() FROM <-influenced_by WHERE in = $parent.in GROUP ALL)[0].count OR 0 AS mention_count
		FROM influenced_by
		WHERE out = $user
		ORDER BY mention_count DESC
		LIMIT $limit START $start
	`
	vars := map[string]interface{}{"user": userThing(userID), "limit": limit, "start": start}
	data, err := s.conn.Query(query, vars)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("get mentions: %w", err))
	}
	return unmarshalRows[domain.Mention](data)
}
