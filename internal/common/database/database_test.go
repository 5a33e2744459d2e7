package database

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indiamart-audit/internal/common/config"
)

func TestPostgres_WithTxCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO t").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	client := NewPostgresFromDB(db)
	err = client.WithTx(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO t VALUES (1)")
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_WithTxRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = NewPostgresFromDB(db).WithTx(context.Background(), func(tx *sql.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	assert.NoError(t, NewPostgresFromDB(db).Ping(context.Background()))
}

func TestRedis_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}

func TestElasticsearch_New(t *testing.T) {
	client, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{"http://localhost:9200"}, Username: "elastic", Password: "x"})
	require.NoError(t, err)
	assert.NotNil(t, client.Client)
}

func newESTestServer(t *testing.T, existsStatus int, createBody string, created *bool) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(existsStatus)
		case http.MethodPut:
			*created = true
			body, _ := io.ReadAll(r.Body)
			assert.Contains(t, string(body), `"sessionId"`)
			if createBody != "" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(createBody))
				return
			}
			_, _ = w.Write([]byte(`{"acknowledged":true}`))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestElasticsearch_EnsureIndex(t *testing.T) {
	mapping := `{"mappings":{"properties":{"sessionId":{"type":"keyword"}}}}`

	tests := []struct {
		name        string
		exists      int
		createBody  string
		wantCreated bool
		wantErr     bool
	}{
		{name: "already exists", exists: http.StatusOK},
		{name: "created", exists: http.StatusNotFound, wantCreated: true},
		{name: "lost race", exists: http.StatusNotFound, createBody: `{"error":{"type":"resource_already_exists_exception"}}`, wantCreated: true},
		{name: "rejected mapping", exists: http.StatusNotFound, createBody: `{"error":{"type":"mapper_parsing_exception"}}`, wantCreated: true, wantErr: true},
		{name: "forbidden", exists: http.StatusForbidden, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var created bool
			server := newESTestServer(t, tt.exists, tt.createBody, &created)

			client, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{server.URL}})
			require.NoError(t, err)

			err = client.EnsureIndex(context.Background(), "audit-results", mapping)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCreated, created)
		})
	}
}
