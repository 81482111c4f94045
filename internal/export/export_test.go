package export

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"bankdash/internal/aggregate"
	"bankdash/internal/dashboard"
	"bankdash/internal/sources/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exportedAt = time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

func fixtureSnapshot(t *testing.T) *dashboard.Snapshot {
	t.Helper()
	txs := memory.Fixture()
	report, err := aggregate.Build(txs, aggregate.Options{})
	require.NoError(t, err)
	return dashboard.NewStore().Publish(&dashboard.Snapshot{
		Source:       "memory",
		Transactions: txs,
		Report:       report,
	})
}

func TestDocuments(t *testing.T) {
	docs := Documents(fixtureSnapshot(t), exportedAt)
	require.Len(t, docs, 5)

	assert.Equal(t, "1", docs[0].ID)
	assert.Equal(t, "2024-03", docs[0].Month)
	assert.Equal(t, -156.78, docs[0].Amount)
	assert.Equal(t, 156.78, docs[0].Magnitude)
	assert.Equal(t, "debit", docs[0].Type)
	assert.Equal(t, "credit", docs[1].Type)
	assert.Equal(t, uint64(1), docs[0].Version)
	assert.Equal(t, exportedAt, docs[0].ExportedAt)
}

func TestOpen(t *testing.T) {
	sink, err := Open("jsonfile:/tmp/out.json", nil)
	require.NoError(t, err)
	assert.IsType(t, &JSONFile{}, sink)

	sink, err = Open("es8:http://a:9200, http://b:9200", nil)
	require.NoError(t, err)
	es, ok := sink.(*ElasticsearchV8)
	require.True(t, ok)
	assert.Equal(t, []string{"http://a:9200", "http://b:9200"}, es.addresses)
	assert.Equal(t, DefaultIndex, es.index)

	for _, bad := range []string{"", "jsonfile", "jsonfile:", "s3:bucket/key"} {
		_, err := Open(bad, nil)
		assert.Error(t, err, bad)
	}
}

func TestJSONFileWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	docs := Documents(fixtureSnapshot(t), exportedAt)

	require.NoError(t, NewJSONFile(path).Write(context.Background(), docs))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []Document
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, docs, got)

	// empty exports still produce a valid array
	require.NoError(t, NewJSONFile(path).Write(context.Background(), nil))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestJSONFileWriteMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.json")
	assert.Error(t, NewJSONFile(path).Write(context.Background(), nil))
}

// fakeES answers index creation and bulk requests the way a cluster would.
type fakeES struct {
	mu      sync.Mutex
	ids     []string
	failIDs map[string]bool
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	if !strings.HasSuffix(r.URL.Path, "/_bulk") {
		// index creation
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"acknowledged":true}`)
		return
	}

	var items []string
	scanner := bufio.NewScanner(r.Body)
	for line := 0; scanner.Scan(); line++ {
		if line%2 == 1 {
			continue
		}
		var action map[string]struct {
			ID string `json:"_id"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &action); err != nil {
			continue
		}
		id := action["index"].ID
		f.mu.Lock()
		f.ids = append(f.ids, id)
		f.mu.Unlock()
		if f.failIDs[id] {
			items = append(items, fmt.Sprintf(`{"index":{"_id":%q,"status":400,"error":{"type":"mapper_parsing_exception","reason":"bad"}}}`, id))
		} else {
			items = append(items, fmt.Sprintf(`{"index":{"_id":%q,"status":201}}`, id))
		}
	}
	fmt.Fprintf(w, `{"took":1,"errors":%t,"items":[%s]}`, len(f.failIDs) > 0, strings.Join(items, ","))
}

func TestElasticsearchV8Write(t *testing.T) {
	fake := &fakeES{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	docs := Documents(fixtureSnapshot(t), exportedAt)
	sink := NewElasticsearchV8(nil, srv.URL)
	require.NoError(t, sink.Write(context.Background(), docs))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.ElementsMatch(t, []string{"1", "2", "3", "4", "5"}, fake.ids)
}

func TestElasticsearchV8WriteReportsFailures(t *testing.T) {
	fake := &fakeES{failIDs: map[string]bool{"3": true}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	err := NewElasticsearchV8(nil, srv.URL).WithIndex("test").Write(context.Background(), Documents(fixtureSnapshot(t), exportedAt))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed indexing 1 of 5 documents")
}
