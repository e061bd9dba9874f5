package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joacominatel/pgbrowse/internal/app"
	"github.com/joacominatel/pgbrowse/internal/config"
	"github.com/joacominatel/pgbrowse/internal/database"
	"github.com/joacominatel/pgbrowse/internal/database/databasetest"
)

var usersTable = database.Table{Schema: "public", Name: "users"}

func newTestServer(t *testing.T, fake *databasetest.Fake) *Server {
	t.Helper()
	return newTestServerWith(t, fake, Options{SessionSecret: "test-secret", PageSize: 50})
}

func newTestServerWith(t *testing.T, fake *databasetest.Fake, opts Options) *Server {
	t.Helper()
	cfg := &config.Config{Targets: []config.Connection{
		{Name: "primary", URL: "postgresql://app@one/app"},
		{Name: "other", URL: "postgresql://app@two/other"},
	}}
	svc := app.NewService(cfg, func(string) database.Browser { return fake }, nil)
	srv, err := New(svc, opts)
	require.NoError(t, err)
	return srv
}

func do(srv http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestIndex_ListsTables(t *testing.T) {
	fake := &databasetest.Fake{Name: "app", Tables: []database.Table{usersTable, {Schema: "audit", Name: "events"}}}
	srv := newTestServer(t, fake)

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "users")
	assert.Contains(t, body, "events")
	assert.Contains(t, body, "/table/users?schema=public")
	assert.True(t, fake.Closed)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestIndex_ConnectionFailureFlashes(t *testing.T) {
	fake := &databasetest.Fake{TablesErr: &database.ErrConnection{Cause: errors.New("refused")}}
	srv := newTestServer(t, fake)

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to connect to database. Please check your connection.")
	assert.Contains(t, rec.Body.String(), "No tables found.")
}

func TestTable_PassesPagingArguments(t *testing.T) {
	fake := &databasetest.Fake{
		Columns: map[database.Table][]database.Column{
			usersTable: {
				{Name: "id", DataType: "integer", OrdinalPos: 1, IsPrimary: true},
				{Name: "name", DataType: "text", IsNullable: true, OrdinalPos: 2},
			},
		},
		Page: &database.Page{
			Rows: []database.Row{
				{{Column: "id", Value: database.IntValue(11)}, {Column: "name", Value: database.StringValue("alice")}},
				{{Column: "id", Value: database.IntValue(12)}, {Column: "name", Value: database.Null()}},
			},
			Total: 25,
		},
	}
	srv := newTestServer(t, fake)

	q := url.Values{}
	q.Set("page", "2")
	q.Set("per_page", "10")
	q.Set("order_by", "name")
	q.Set("order_dir", "desc")
	q.Set("search", "  ali ")
	rec := do(srv, httptest.NewRequest(http.MethodGet, "/table/users?"+q.Encode(), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, usersTable, fake.LastTable)
	assert.Equal(t, database.FetchOptions{
		Limit:    10,
		Offset:   10,
		OrderBy:  "name",
		OrderDir: "DESC",
		Search:   "ali",
	}, fake.LastFetch)

	body := rec.Body.String()
	assert.Contains(t, body, "alice")
	assert.Contains(t, body, "NULL")
	assert.Contains(t, body, "25 rows, page 2 of 3")
}

func TestTable_InvalidPageDefaultsToFirst(t *testing.T) {
	fake := &databasetest.Fake{Columns: map[database.Table][]database.Column{
		usersTable: {{Name: "id", DataType: "integer", OrdinalPos: 1}},
	}}
	srv := newTestServer(t, fake)

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/table/users?page=abc&per_page=5000", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, fake.LastFetch.Offset)
	assert.Equal(t, MaxPageSize, fake.LastFetch.Limit)
	assert.Equal(t, "ASC", fake.LastFetch.OrderDir)
}

func TestTable_UnknownTableRedirects(t *testing.T) {
	srv := newTestServer(t, &databasetest.Fake{})

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/table/missing", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	follow := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		follow.AddCookie(c)
	}
	assert.Contains(t, do(srv, follow).Body.String(), "Failed to fetch table structure for missing")
}

func TestExecuteQuery_Success(t *testing.T) {
	fake := &databasetest.Fake{Result: &database.QueryResult{
		Columns: []string{"n"},
		Rows:    []database.Row{{{Column: "n", Value: database.IntValue(1)}}},
	}}
	srv := newTestServer(t, fake)

	req := httptest.NewRequest(http.MethodPost, "/execute_query", strings.NewReader(`{"query":"SELECT 1 AS n"}`))
	rec := do(srv, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":[{"n":1}],"columns":["n"],"row_count":1}`, rec.Body.String())
	assert.Equal(t, "SELECT 1 AS n", fake.LastQuery)
}

func TestExecuteQuery_EmptyQuery(t *testing.T) {
	fake := &databasetest.Fake{}
	srv := newTestServer(t, fake)

	rec := do(srv, httptest.NewRequest(http.MethodPost, "/execute_query", strings.NewReader(`{"query":"   "}`)))

	assert.JSONEq(t, `{"success":false,"error":"Query cannot be empty"}`, rec.Body.String())
	assert.Empty(t, fake.LastQuery)
}

func TestExecuteQuery_ReturnsDriverErrorVerbatim(t *testing.T) {
	msg := `ERROR: syntax error at or near "SELEKT" (SQLSTATE 42601)`
	fake := &databasetest.Fake{QueryErr: &database.ErrQuery{Query: "SELEKT 1", Cause: errors.New(msg)}}
	srv := newTestServer(t, fake)

	rec := do(srv, httptest.NewRequest(http.MethodPost, "/execute_query", strings.NewReader(`{"query":"SELEKT 1"}`)))

	out := decode(t, rec)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, msg, out["error"])
}

func TestExecuteQuery_ConnectionFailure(t *testing.T) {
	fake := &databasetest.Fake{QueryErr: &database.ErrConnection{Cause: errors.New("dial tcp: refused")}}
	srv := newTestServer(t, fake)

	rec := do(srv, httptest.NewRequest(http.MethodPost, "/execute_query", strings.NewReader(`{"query":"SELECT 1"}`)))

	out := decode(t, rec)
	assert.Equal(t, database.ConnectionFailedMessage, out["error"])
}

func TestExport_ServesAttachment(t *testing.T) {
	fake := &databasetest.Fake{SQL: "-- Data export for table public.users\n"}
	srv := newTestServer(t, fake)

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/export/users?format=SQL", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/sql", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=users.sql", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, fake.SQL, rec.Body.String())
	assert.Equal(t, usersTable, fake.LastTable)
}

func TestExport_DefaultsToCSV(t *testing.T) {
	fake := &databasetest.Fake{CSV: "id\n1\n"}
	srv := newTestServer(t, fake)

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/export/users?schema=audit", nil))

	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "id\n1\n", rec.Body.String())
	assert.Equal(t, database.Table{Schema: "audit", Name: "users"}, fake.LastTable)
}

func TestExport_InvalidFormatRedirects(t *testing.T) {
	srv := newTestServer(t, &databasetest.Fake{})

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/export/users?format=xml", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/table/users?schema=public", rec.Header().Get("Location"))
}

func TestExport_FailureRedirects(t *testing.T) {
	srv := newTestServer(t, &databasetest.Fake{ExportErr: errors.New("boom")})

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/export/users?format=json", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/table/users?schema=public", rec.Header().Get("Location"))
}

func TestAPITables(t *testing.T) {
	srv := newTestServer(t, &databasetest.Fake{Tables: []database.Table{usersTable}})

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/api/tables", nil))

	assert.JSONEq(t, `{"success":true,"tables":[{"schema":"public","table":"users"}]}`, rec.Body.String())
}

func TestAPITables_Error(t *testing.T) {
	srv := newTestServer(t, &databasetest.Fake{TablesErr: errors.New("boom")})

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/api/tables", nil))

	assert.JSONEq(t, `{"success":false,"error":"Failed to fetch tables"}`, rec.Body.String())
}

func TestAPIStructure(t *testing.T) {
	fake := &databasetest.Fake{Columns: map[database.Table][]database.Column{
		usersTable: {{Name: "id", DataType: "integer", OrdinalPos: 1, IsPrimary: true}},
	}}
	srv := newTestServer(t, fake)

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/api/table/users/structure", nil))

	out := decode(t, rec)
	assert.Equal(t, true, out["success"])
	structure, ok := out["structure"].([]any)
	require.True(t, ok)
	require.Len(t, structure, 1)
	assert.Equal(t, "id", structure[0].(map[string]any)["column_name"])
}

func TestAPIStructure_Error(t *testing.T) {
	srv := newTestServer(t, &databasetest.Fake{ColumnsErr: errors.New("boom")})

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/api/table/users/structure", nil))

	assert.JSONEq(t, `{"success":false,"error":"Failed to fetch table structure"}`, rec.Body.String())
}

func TestSelectTarget_PersistsInSession(t *testing.T) {
	srv := newTestServer(t, &databasetest.Fake{})

	form := url.Values{"target": {"other"}}
	req := httptest.NewRequest(http.MethodPost, "/database", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(srv, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, sessionCookie, cookies[0].Name)

	api := httptest.NewRequest(http.MethodGet, "/api/targets", nil)
	api.AddCookie(cookies[0])
	out := decode(t, do(srv, api))
	assert.Equal(t, "other", out["current"])

	page := httptest.NewRequest(http.MethodGet, "/query", nil)
	page.AddCookie(cookies[0])
	assert.Contains(t, do(srv, page).Body.String(), "Switched to database other")
}

func TestSelectTarget_Unknown(t *testing.T) {
	srv := newTestServer(t, &databasetest.Fake{})

	form := url.Values{"target": {"nope"}}
	req := httptest.NewRequest(http.MethodPost, "/database", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(srv, req)

	api := httptest.NewRequest(http.MethodGet, "/api/targets", nil)
	for _, c := range rec.Result().Cookies() {
		api.AddCookie(c)
	}
	out := decode(t, do(srv, api))
	assert.Equal(t, "primary", out["current"])
}

func TestTamperedSessionIsIgnored(t *testing.T) {
	srv := newTestServer(t, &databasetest.Fake{})

	req := httptest.NewRequest(http.MethodGet, "/api/targets", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "forged"})
	out := decode(t, do(srv, req))
	assert.Equal(t, "primary", out["current"])
}

func TestQueryPage(t *testing.T) {
	srv := newTestServer(t, &databasetest.Fake{})

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/query", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="query-form"`)
	assert.Contains(t, body, "1000")
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t, &databasetest.Fake{})

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")
}

func TestHealthAndReady(t *testing.T) {
	fake := &databasetest.Fake{}
	srv := newTestServer(t, fake)

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(srv, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	fake.ConnectErr = errors.New("refused")
	rec = do(srv, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStaticAssets(t *testing.T) {
	srv := newTestServer(t, &databasetest.Fake{})

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "execute_query")
}

func TestCORS_PreflightAllowsAnyOrigin(t *testing.T) {
	srv := newTestServer(t, &databasetest.Fake{})

	req := httptest.NewRequest(http.MethodOptions, "/api/tables", nil)
	req.Header.Set("Origin", "http://elsewhere.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := do(srv, req)

	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodGet)
}

func TestCORS_SimpleRequest(t *testing.T) {
	srv := newTestServer(t, &databasetest.Fake{})

	req := httptest.NewRequest(http.MethodPost, "/execute_query", strings.NewReader(`{"query":"SELECT 1"}`))
	req.Header.Set("Origin", "http://elsewhere.example")
	rec := do(srv, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_RestrictedOrigins(t *testing.T) {
	srv := newTestServerWith(t, &databasetest.Fake{}, Options{CORSOrigins: []string{"https://dash.example"}})

	allowed := httptest.NewRequest(http.MethodGet, "/api/tables", nil)
	allowed.Header.Set("Origin", "https://dash.example")
	assert.Equal(t, "https://dash.example", do(srv, allowed).Header().Get("Access-Control-Allow-Origin"))

	denied := httptest.NewRequest(http.MethodGet, "/api/tables", nil)
	denied.Header.Set("Origin", "https://evil.example")
	assert.Empty(t, do(srv, denied).Header().Get("Access-Control-Allow-Origin"))
}
