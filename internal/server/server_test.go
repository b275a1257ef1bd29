package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/reoring/dashschema/catalog"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	c, err := catalog.Build(catalog.Options{
		DataSources: []string{"penguin_size"},
		Columns:     []string{"penguin_size:sex", "penguin_size:island"},
	})
	require.NoError(t, err)
	h, err := NewHandler(Config{Catalog: c})
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string, header map[string]string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, b
}

func TestNewHandler(t *testing.T) {
	t.Run("Should require a catalog", func(t *testing.T) {
		_, err := NewHandler(Config{})
		assert.Error(t, err)
	})
}

func TestReadEndpoints(t *testing.T) {
	srv := newTestServer(t)

	t.Run("Should report health", func(t *testing.T) {
		status, body := do(t, srv, http.MethodGet, "/healthz", "", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"status":"ok"}`, string(body))
	})

	t.Run("Should list schemas with titles and graph types", func(t *testing.T) {
		status, body := do(t, srv, http.MethodGet, "/v1/schemas", "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Escalation Graphic Config Generator",
			gjson.GetBytes(body, `schemas.#(name=="graphic_schema").title`).String())
		assert.Equal(t, "plotly_bar", gjson.GetBytes(body, "graph_types.bar").String())
	})

	t.Run("Should return a schema document", func(t *testing.T) {
		status, body := do(t, srv, http.MethodGet, "/v1/schemas/selector_schema", "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Selector List", gjson.GetBytes(body, "title").String())
		assert.Equal(t, "penguin_size:sex", gjson.GetBytes(body, "properties.filter.items.properties.column.enum.0").String())
	})

	t.Run("Should localize unknown schema errors", func(t *testing.T) {
		status, body := do(t, srv, http.MethodGet, "/v1/schemas/nope", "", nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "unknown_schema", gjson.GetBytes(body, "code").String())
		assert.Equal(t, "unknown schema: nope", gjson.GetBytes(body, "error").String())

		_, body = do(t, srv, http.MethodGet, "/v1/schemas/nope", "", map[string]string{"Accept-Language": "ja-JP,ja;q=0.9"})
		assert.Equal(t, "未知のスキーマです: nope", gjson.GetBytes(body, "error").String())
	})
}

func TestSearchRenderDescribe(t *testing.T) {
	srv := newTestServer(t)
	joinKeys := "graphic_schema.properties.data_sources.properties.additional_data_sources.items.properties.join_keys"

	t.Run("Should search by keyword", func(t *testing.T) {
		status, body := do(t, srv, http.MethodGet, "/v1/schemas/graphic_schema/search?q=join", "", nil)
		require.Equal(t, http.StatusOK, status)
		var got searchResponse
		require.NoError(t, gojson.Unmarshal(body, &got))
		assert.Equal(t, []string{"join"}, got.Keywords)
		require.Len(t, got.Results, 4)
		assert.Equal(t, joinKeys, got.Results[1].Path)
		assert.Equal(t, "Escalation Graphic Config Generator.properties.data_sources", got.Results[0].Display)
	})

	t.Run("Should combine repeated and space separated keywords", func(t *testing.T) {
		status, body := do(t, srv, http.MethodGet, "/v1/schemas/graphic_schema/search?q=data+source&q=type", "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, `["data","source","type"]`, gjson.GetBytes(body, "keywords").Raw)
		assert.True(t, gjson.GetBytes(body, "results.#").Int() > 0)
	})

	t.Run("Should reject an empty query", func(t *testing.T) {
		status, body := do(t, srv, http.MethodGet, "/v1/schemas/graphic_schema/search", "", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "invalid_argument", gjson.GetBytes(body, "code").String())
	})

	t.Run("Should render a path", func(t *testing.T) {
		status, body := do(t, srv, http.MethodGet, "/v1/schemas/plotly_scatter/render?path=plotly_scatter.properties.layout", "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "plotly graph definition.properties.Graph layout", gjson.GetBytes(body, "display").String())
	})

	t.Run("Should report the failing segment", func(t *testing.T) {
		status, body := do(t, srv, http.MethodGet, "/v1/schemas/plotly_scatter/render?path=plotly_scatter.properties.missing", "", nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "path_resolution", gjson.GetBytes(body, "code").String())
		assert.Equal(t, "missing", gjson.GetBytes(body, "segment").String())
	})

	t.Run("Should describe a node", func(t *testing.T) {
		status, body := do(t, srv, http.MethodGet, "/v1/schemas/plotly_scatter/describe?path=plotly_scatter.properties.layout.properties.height", "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "type: number<br>minimum: 10", gjson.GetBytes(body, "description").String())
	})

	t.Run("Should map describe failures", func(t *testing.T) {
		status, body := do(t, srv, http.MethodGet, "/v1/schemas/plotly_scatter/describe?path=x.properties.nope", "", nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "node_not_found", gjson.GetBytes(body, "code").String())

		status, _ = do(t, srv, http.MethodGet, "/v1/schemas/plotly_scatter/describe", "", nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestBuildAndValidate(t *testing.T) {
	srv := newTestServer(t)

	t.Run("Should rebuild the editor document", func(t *testing.T) {
		status, body := do(t, srv, http.MethodPost, "/v1/schemas/build",
			`{"data_sources":["mean_penguin_stat"],"columns":["mean_penguin_stat:species"]}`, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "mean_penguin_stat", gjson.GetBytes(body,
			"graphic_schema.properties.data_sources.properties.main_data_source.properties.data_source_type.enum.0").String())
		assert.True(t, gjson.GetBytes(body, "plotly_schema.scatter").IsObject())
	})

	t.Run("Should reject malformed build requests", func(t *testing.T) {
		status, body := do(t, srv, http.MethodPost, "/v1/schemas/build", `{"data_sources":`, nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "parse_error", gjson.GetBytes(body, "code").String())

		status, body = do(t, srv, http.MethodPost, "/v1/schemas/build", `{"columns":[""]}`, nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "invalid_argument", gjson.GetBytes(body, "code").String())
	})

	t.Run("Should accept a valid document", func(t *testing.T) {
		status, body := do(t, srv, http.MethodPost, "/v1/schemas/selector_schema/validate",
			`{"filter":[{"column":"penguin_size:sex"}]}`, nil)
		assert.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"valid":true}`, string(body))
	})

	t.Run("Should list violations", func(t *testing.T) {
		status, body := do(t, srv, http.MethodPost, "/v1/schemas/selector_schema/validate",
			`{"filter":[{"column":"penguin_size:bill"}]}`, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.False(t, gjson.GetBytes(body, "valid").Bool())
		assert.True(t, gjson.GetBytes(body, "issues.#").Int() > 0)
		assert.Equal(t, "schema_violation", gjson.GetBytes(body, "issues.0.code").String())
	})

	t.Run("Should reject malformed documents", func(t *testing.T) {
		status, body := do(t, srv, http.MethodPost, "/v1/schemas/selector_schema/validate", `{`, nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "parse_error", gjson.GetBytes(body, "code").String())
	})
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t)
	status, _ := do(t, srv, http.MethodOptions, "/v1/schemas", "", map[string]string{
		"Origin":                        "http://editor.local",
		"Access-Control-Request-Method": http.MethodGet,
	})
	assert.Less(t, status, 300)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://editor.local")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRun(t *testing.T) {
	t.Run("Should serve until the context ends", func(t *testing.T) {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		port := l.Addr().(*net.TCPAddr).Port
		require.NoError(t, l.Close())

		c, err := catalog.Default()
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() {
			done <- Run(ctx, Config{Host: "127.0.0.1", Port: port, Catalog: c, ShutdownTimeout: time.Second})
		}()

		url := fmt.Sprintf("http://127.0.0.1:%d/healthz", port)
		require.Eventually(t, func() bool {
			resp, err := http.Get(url)
			if err != nil {
				return false
			}
			resp.Body.Close()
			return resp.StatusCode == http.StatusOK
		}, 5*time.Second, 20*time.Millisecond)

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
	})
}
