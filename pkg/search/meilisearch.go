package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"
)

const profilesIndex = "profiles"

// ProfileDocument is the searchable projection of a profile, keyed by owner id.
type ProfileDocument struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Company  string   `json:"company"`
	Location string   `json:"location"`
	Skills   []string `json:"skills"`
	Bio      string   `json:"bio"`
}

type ProfileIndex interface {
	IndexProfile(doc ProfileDocument) error
	DeleteProfile(userID string) error
	// SearchProfiles returns matching owner ids in relevance order.
	SearchProfiles(query string, limit int64) ([]string, error)
}

type meiliProfileIndex struct {
	client meilisearch.ServiceManager
}

func NewMeiliProfileIndex(client meilisearch.ServiceManager) (ProfileIndex, error) {
	s := &meiliProfileIndex{client: client}
	if err := s.initIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewMeiliClient normalises bare hosts the way docker-compose service names are usually given.
func NewMeiliClient(host, apiKey string) meilisearch.ServiceManager {
	if !strings.HasPrefix(host, "http") {
		host = "http://" + host + ":7700"
	}
	return meilisearch.New(host, meilisearch.WithAPIKey(apiKey))
}

func (s *meiliProfileIndex) initIndex() error {
	searchable := []string{"name", "status", "skills", "company", "location", "bio"}
	if _, err := s.client.Index(profilesIndex).UpdateSearchableAttributes(&searchable); err != nil {
		return fmt.Errorf("failed to update profiles searchable attributes: %w", err)
	}
	return nil
}

func (s *meiliProfileIndex) IndexProfile(doc ProfileDocument) error {
	_, err := s.client.Index(profilesIndex).AddDocuments([]ProfileDocument{doc}, strPtr("id"))
	return err
}

func (s *meiliProfileIndex) DeleteProfile(userID string) error {
	_, err := s.client.Index(profilesIndex).DeleteDocument(userID)
	return err
}

func (s *meiliProfileIndex) SearchProfiles(query string, limit int64) ([]string, error) {
	raw, err := s.client.Index(profilesIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Limit:                limit,
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Hits []struct {
			ID string `json:"id"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(*raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func strPtr(s string) *string {
	return &s
}
