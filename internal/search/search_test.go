package search

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shopstate/internal/models"
)

type call struct {
	method string
	path   string
	body   string
}

type fakeES struct {
	mu      sync.Mutex
	calls   []call
	respond func(r *http.Request) (int, string)
}

func (f *fakeES) RoundTrip(r *http.Request) (*http.Response, error) {
	var body string
	if r.Body != nil {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
	}
	f.mu.Lock()
	f.calls = append(f.calls, call{method: r.Method, path: r.URL.Path, body: body})
	f.mu.Unlock()

	status, out := http.StatusOK, `{}`
	if f.respond != nil {
		status, out = f.respond(r)
	}
	h := http.Header{}
	h.Set("X-Elastic-Product", "Elasticsearch")
	h.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(out)),
		Request:    r,
	}, nil
}

func (f *fakeES) last() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func newIndex(t *testing.T, f *fakeES) *Index {
	t.Helper()
	client, err := NewClient(context.Background(), Config{URL: "http://es.test:9200", Transport: f})
	require.NoError(t, err)
	return &Index{ES: client, Name: "product"}
}

func TestIndexProduct(t *testing.T) {
	t.Parallel()
	f := &fakeES{}
	ix := newIndex(t, f)

	err := ix.IndexProduct(context.Background(), models.Product{ID: "p-1", Name: "Scarf", Price: decimal.NewFromInt(35)})
	require.NoError(t, err)

	c := f.last()
	assert.Equal(t, http.MethodPut, c.method)
	assert.Equal(t, "/product/_doc/p-1", c.path)
	assert.Contains(t, c.body, `"name":"Scarf"`)
}

func TestDeleteProduct_MissingIsOK(t *testing.T) {
	t.Parallel()
	f := &fakeES{respond: func(r *http.Request) (int, string) {
		if r.Method == http.MethodDelete {
			return http.StatusNotFound, `{"result":"not_found"}`
		}
		return http.StatusOK, `{}`
	}}
	ix := newIndex(t, f)

	require.NoError(t, ix.DeleteProduct(context.Background(), "gone"))
	assert.Equal(t, "/product/_doc/gone", f.last().path)
}

func TestSearch(t *testing.T) {
	t.Parallel()
	f := &fakeES{respond: func(r *http.Request) (int, string) {
		if strings.HasSuffix(r.URL.Path, "/_search") {
			return http.StatusOK, `{"hits":{"total":{"value":7},"hits":[{"_source":{"id":"9","name":"Leather Belt","price":"28"}}]}}`
		}
		return http.StatusOK, `{}`
	}}
	ix := newIndex(t, f)

	res, err := ix.Search(context.Background(), "belt", 2, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Leather Belt", res.Items[0].Name)
	assert.True(t, res.Items[0].Price.Equal(decimal.NewFromInt(28)))

	c := f.last()
	assert.Equal(t, "/product/_search", c.path)
	assert.Contains(t, c.body, `"from":5`)
	assert.Contains(t, c.body, `"size":5`)
	assert.Contains(t, c.body, `"query":"belt"`)
}

func TestSearch_ErrorResponse(t *testing.T) {
	t.Parallel()
	f := &fakeES{respond: func(r *http.Request) (int, string) {
		if strings.HasSuffix(r.URL.Path, "/_search") {
			return http.StatusInternalServerError, `{"error":"boom"}`
		}
		return http.StatusOK, `{}`
	}}
	ix := newIndex(t, f)

	_, err := ix.Search(context.Background(), "x", 1, 10)
	assert.ErrorIs(t, err, ErrUnavailable)
}
