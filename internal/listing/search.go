// File: internal/listing/search.go
package listing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"unihomes_backend/internal/platform/elasticsearch"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

// toElasticsearchDoc converts a listing to its Elasticsearch document. Only
// the public tier is indexed; locked fields never leave the database.
func toElasticsearchDoc(l *Listing) (string, error) {
	if l == nil {
		return "", errors.New("listing cannot be nil")
	}

	doc := map[string]interface{}{
		"title":        l.Title,
		"description":  l.Description,
		"area":         l.Area,
		"address_area": l.AddressArea,
		"agent_id":     l.AgentID.String(),
		"status":       l.Status,
		"price":        l.Price,
		"bedrooms":     l.Bedrooms,
		"slug":         l.Slug,
		"created_at":   l.CreatedAt,
		"updated_at":   l.UpdatedAt,
	}

	docBytes, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("error marshalling listing to JSON for ES: %w", err)
	}
	return string(docBytes), nil
}

// indexListing upserts the listing document. Best effort: failures are logged
// and swallowed, the database remains the source of truth.
func (s *Service) indexListing(ctx context.Context, l *Listing) {
	if s.esClient == nil {
		return
	}
	doc, err := toElasticsearchDoc(l)
	if err != nil {
		s.logger.Error("Failed to build ES document for listing",
			zap.Error(err), zap.String("listingID", l.ID.String()))
		return
	}
	req := esapi.IndexRequest{
		Index:      elasticsearch.ListingsIndexName,
		DocumentID: l.ID.String(),
		Body:       strings.NewReader(doc),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, s.esClient.Client)
	if err != nil {
		s.logger.Error("Failed to index listing in ES",
			zap.Error(err), zap.String("listingID", l.ID.String()))
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		s.logger.Error("ES rejected listing index request",
			zap.String("status", res.Status()), zap.String("listingID", l.ID.String()))
	}
}

// removeFromIndex deletes the listing document after a soft delete. Best
// effort, like indexListing.
func (s *Service) removeFromIndex(ctx context.Context, id string) {
	if s.esClient == nil {
		return
	}
	req := esapi.DeleteRequest{
		Index:      elasticsearch.ListingsIndexName,
		DocumentID: id,
	}
	res, err := req.Do(ctx, s.esClient.Client)
	if err != nil {
		s.logger.Error("Failed to remove listing from ES index",
			zap.Error(err), zap.String("listingID", id))
		return
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		s.logger.Error("ES rejected listing delete request",
			zap.String("status", res.Status()), zap.String("listingID", id))
	}
}

type esBulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID     string                 `json:"_id"`
			Status int                    `json:"status"`
			Error  map[string]interface{} `json:"error,omitempty"`
		} `json:"index"`
	} `json:"items"`
}

// ReindexAll rebuilds the search index from the database in batches. Used by
// the sync-listings command after index loss or mapping changes.
func (s *Service) ReindexAll(ctx context.Context, batchSize int, refresh string) error {
	if s.esClient == nil {
		return errors.New("elasticsearch client is not configured")
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	offset := 0
	totalSynced := 0
	totalFailed := 0

	for {
		listings, err := s.repo.FindAllForSync(ctx, offset, batchSize)
		if err != nil {
			return fmt.Errorf("error fetching listings at offset %d: %w", offset, err)
		}
		if len(listings) == 0 {
			break
		}

		var body strings.Builder
		for i := range listings {
			l := &listings[i]
			doc, err := toElasticsearchDoc(l)
			if err != nil {
				s.logger.Error("Skipping listing that cannot be converted for ES",
					zap.Error(err), zap.String("listingID", l.ID.String()))
				totalFailed++
				continue
			}
			fmt.Fprintf(&body, "{ \"index\" : { \"_index\" : %q, \"_id\" : %q } }\n%s\n",
				elasticsearch.ListingsIndexName, l.ID.String(), doc)
		}

		if body.Len() > 0 {
			synced, failed, err := s.sendBulk(ctx, body.String(), refresh)
			if err != nil {
				return err
			}
			totalSynced += synced
			totalFailed += failed
		}

		offset += len(listings)
	}

	s.logger.Info("Listing reindex finished",
		zap.Int("synced", totalSynced), zap.Int("failed", totalFailed))
	if totalFailed > 0 {
		return fmt.Errorf("%d listings failed to reindex", totalFailed)
	}
	return nil
}

func (s *Service) sendBulk(ctx context.Context, body, refresh string) (synced, failed int, err error) {
	req := esapi.BulkRequest{
		Body:    strings.NewReader(body),
		Refresh: refresh,
	}
	res, err := req.Do(ctx, s.esClient.Client)
	if err != nil {
		return 0, 0, fmt.Errorf("ES bulk request failed: %w", err)
	}
	defer res.Body.Close()

	var parsed esBulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, 0, fmt.Errorf("error decoding ES bulk response: %w", err)
	}
	for _, item := range parsed.Items {
		if item.Index.Error != nil {
			s.logger.Error("ES rejected document in bulk batch",
				zap.String("listingID", item.Index.ID),
				zap.Int("status", item.Index.Status),
				zap.Any("error", item.Index.Error))
			failed++
			continue
		}
		synced++
	}
	return synced, failed, nil
}

type esSearchHit struct {
	ID string `json:"_id"`
}

type esSearchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []esSearchHit `json:"hits"`
	} `json:"hits"`
}

// searchIDsViaES runs the text query against the listings index and returns
// matching document IDs in relevance order, plus the total hit count.
func (s *Service) searchIDsViaES(ctx context.Context, filters Filters, from, size int) ([]string, int64, error) {
	must := []map[string]interface{}{
		{
			"multi_match": map[string]interface{}{
				"query":  filters.Query,
				"fields": []string{"title^2", "description", "address_area"},
			},
		},
	}
	filter := []map[string]interface{}{}
	if filters.Area != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"area": filters.Area},
		})
	}
	if filters.Status != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"status": filters.Status},
		})
	}
	priceRange := map[string]interface{}{}
	if filters.MinPrice != nil {
		priceRange["gte"] = *filters.MinPrice
	}
	if filters.MaxPrice != nil {
		priceRange["lte"] = *filters.MaxPrice
	}
	if len(priceRange) > 0 {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"price": priceRange},
		})
	}
	if filters.Bedrooms != nil {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"bedrooms": map[string]interface{}{"gte": *filters.Bedrooms}},
		})
	}

	query := map[string]interface{}{
		"from": from,
		"size": size,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
	}

	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(query); err != nil {
		return nil, 0, fmt.Errorf("error encoding ES search query: %w", err)
	}

	res, err := s.esClient.Search(
		s.esClient.Search.WithContext(ctx),
		s.esClient.Search.WithIndex(elasticsearch.ListingsIndexName),
		s.esClient.Search.WithBody(&body),
		s.esClient.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("ES search request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, 0, fmt.Errorf("ES search returned status %s", res.Status())
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, 0, fmt.Errorf("error decoding ES search response: %w", err)
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, parsed.Hits.Total.Value, nil
}
