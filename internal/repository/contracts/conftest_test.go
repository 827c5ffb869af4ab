package contracts

import (
	"net/http"
	"net/http/httptest"
	"testing"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"
)

// newTestRepo spins up a fake engine behind httptest and points a repository
// at it. The handler must behave like Elasticsearch for the endpoints a test
// exercises; the product header keeps the client's compatibility check happy.
func newTestRepo(t *testing.T, handler http.HandlerFunc) *Repository {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	return New(es, "customer_contracts", zap.NewNop())
}
