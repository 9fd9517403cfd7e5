package db

import (
	"fmt"

	"github.com/mapperinfluences/backend/internal/apperror"
	"github.com/mapperinfluences/backend/internal/domain"
)

// getUsersForGraph returns every user with at least one in- or
// out-edge, carrying their total incoming-mention count.
func (s *Store) getUsersForGraph() ([]domain.GraphUser, error) {
	query := `
		SELECT id, username, avatar_url,
			count(<-influenced_by) AS mentions,
			count(->influenced_by) AS influenced_by_count
		FROM user
		WHERE count(<-influenced_by) > 0 OR count(->influenced_by) > 0
	`
	data, err := s.conn.Query(query, nil)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("get users for graph: %w", err))
	}
	return unmarshalRows[domain.GraphUser](data)
}

// getInfluencesForGraph returns every influence edge as a bare
// (source, target, type) link.
func (s *Store) getInfluencesForGraph() ([]domain.GraphInfluence, error) {
	query := `SELECT in AS source, out AS target, type FROM influenced_by`
	data, err := s.conn.Query(query, nil)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("get influences for graph: %w", err))
	}
	return unmarshalRows[domain.GraphInfluence](data)
}

// GetGraphData composes the nodes and links queries into the single
// one-shot aggregate handlers serve at GET /graph.
func (s *Store) GetGraphData() (domain.Graph, error) {
	nodes, err := s.getUsersForGraph()
	if err != nil {
		return domain.Graph{}, err
	}
	links, err := s.getInfluencesForGraph()
	if err != nil {
		return domain.Graph{}, err
	}
	return domain.Graph{Nodes: nodes, Links: links}, nil
}
