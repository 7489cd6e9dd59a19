// Package search mirrors locally managed products into Elasticsearch and
// runs full-text queries against them.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/shopstate/internal/models"
	"github.com/Skotchmaster/shopstate/internal/util"
	"github.com/Skotchmaster/shopstate/pkg/logging"
)

var ErrUnavailable = errors.New("search unavailable")

type Config struct {
	URL      string
	User     string
	Password string
	Index    string

	// Transport replaces the HTTP transport, used by tests.
	Transport http.RoundTripper
}

// NewClient connects and checks the cluster answers.
func NewClient(ctx context.Context, cfg Config) (*elasticsearch.Client, error) {
	l := logging.FromContext(ctx).With("svc", "search.connect")
	l.Info("connecting_to_elasticsearch", "url", cfg.URL)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: new client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("info", res)
	}

	l.Info("connected_to_elasticsearch")
	return client, nil
}

type Results struct {
	Total int64            `json:"total"`
	Items []models.Product `json:"items"`
}

type Index struct {
	ES   *elasticsearch.Client
	Name string
}

func (ix *Index) IndexProduct(ctx context.Context, p models.Product) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("elasticsearch: encode product: %w", err)
	}

	res, err := ix.ES.Index(
		ix.Name,
		bytes.NewReader(body),
		ix.ES.Index.WithContext(ctx),
		ix.ES.Index.WithDocumentID(p.ID),
		ix.ES.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch: index %s: %w", p.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res)
	}
	return nil
}

// DeleteProduct treats a missing document as already deleted.
func (ix *Index) DeleteProduct(ctx context.Context, id string) error {
	res, err := ix.ES.Delete(ix.Name, id, ix.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch: delete %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete", res)
	}
	return nil
}

// Reindex pushes every product; the first failure stops it.
func (ix *Index) Reindex(ctx context.Context, products []models.Product) error {
	for _, p := range products {
		if err := ix.IndexProduct(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (ix *Index) Search(ctx context.Context, query string, page, size int) (Results, error) {
	_, from, limit := util.Calculate(page, size)
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description", "tags", "category"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": limit,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return Results{}, fmt.Errorf("elasticsearch: encode query: %w", err)
	}

	res, err := ix.ES.Search(
		ix.ES.Search.WithContext(ctx),
		ix.ES.Search.WithIndex(ix.Name),
		ix.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return Results{}, fmt.Errorf("elasticsearch: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return Results{}, responseError("search", res)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return Results{}, fmt.Errorf("elasticsearch: decode search: %w", err)
	}

	items := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		items[i] = hit.Source
	}
	return Results{Total: r.Hits.Total.Value, Items: items}, nil
}

func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("elasticsearch: %s: %s: %s: %w", op, res.Status(), body, ErrUnavailable)
}
