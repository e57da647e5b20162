package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/fairshare/internal/auth"
	"github.com/mmynk/fairshare/internal/metrics"
)

const (
	whoAmIProcedure = "/test.v1.TestService/WhoAmI"
	openProcedure   = "/test.v1.TestService/Open"
)

type jsonCodec struct{}

func (jsonCodec) Name() string                       { return "json" }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

type empty struct{}

type whoAmI struct {
	SessionID string `json:"session_id"`
}

func echoSession(ctx context.Context, _ *connect.Request[empty]) (*connect.Response[whoAmI], error) {
	return connect.NewResponse(&whoAmI{SessionID: GetSessionID(ctx)}), nil
}

type testClients struct {
	whoAmI *connect.Client[empty, whoAmI]
	open   *connect.Client[empty, whoAmI]
}

func setup(t *testing.T, tokens *auth.SessionTokens, m *metrics.Metrics) testClients {
	t.Helper()

	opts := []connect.HandlerOption{
		connect.WithCodec(jsonCodec{}),
		connect.WithInterceptors(
			MetricsInterceptor(m),
			RequireSession(tokens, openProcedure),
			LoggingInterceptor(),
		),
	}
	mux := http.NewServeMux()
	mux.Handle(whoAmIProcedure, connect.NewUnaryHandler(whoAmIProcedure, echoSession, opts...))
	mux.Handle(openProcedure, connect.NewUnaryHandler(openProcedure, echoSession, opts...))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return testClients{
		whoAmI: connect.NewClient[empty, whoAmI](server.Client(), server.URL+whoAmIProcedure, connect.WithCodec(jsonCodec{})),
		open:   connect.NewClient[empty, whoAmI](server.Client(), server.URL+openProcedure, connect.WithCodec(jsonCodec{})),
	}
}

func withAuth(header string) *connect.Request[empty] {
	req := connect.NewRequest(&empty{})
	if header != "" {
		req.Header().Set("Authorization", header)
	}
	return req
}

func TestRequireSession(t *testing.T) {
	tokens, err := auth.NewSessionTokens("test-secret", time.Hour)
	require.NoError(t, err)
	clients := setup(t, tokens, metrics.New())
	ctx := context.Background()

	valid, err := tokens.Generate("session-1")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantCode   connect.Code
		wantSessID string
	}{
		{name: "valid token", header: "Bearer " + valid, wantSessID: "session-1"},
		{name: "missing header", header: "", wantCode: connect.CodeUnauthenticated},
		{name: "wrong scheme", header: "Basic " + valid, wantCode: connect.CodeUnauthenticated},
		{name: "empty token", header: "Bearer ", wantCode: connect.CodeUnauthenticated},
		{name: "garbage token", header: "Bearer abc.def.ghi", wantCode: connect.CodeUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := clients.whoAmI.CallUnary(ctx, withAuth(tt.header))
			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, connect.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSessID, resp.Msg.SessionID)
		})
	}
}

func TestRequireSession_Exempt(t *testing.T) {
	tokens, err := auth.NewSessionTokens("test-secret", time.Hour)
	require.NoError(t, err)
	clients := setup(t, tokens, metrics.New())

	resp, err := clients.open.CallUnary(context.Background(), withAuth(""))
	require.NoError(t, err)
	assert.Empty(t, resp.Msg.SessionID)
}

func TestMetricsInterceptor(t *testing.T) {
	tokens, err := auth.NewSessionTokens("test-secret", time.Hour)
	require.NoError(t, err)
	m := metrics.New()
	clients := setup(t, tokens, m)
	ctx := context.Background()

	_, err = clients.open.CallUnary(ctx, withAuth(""))
	require.NoError(t, err)
	_, err = clients.whoAmI.CallUnary(ctx, withAuth(""))
	require.Error(t, err)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `fairshare_rpc_requests_total{code="ok",procedure="/test.v1.TestService/Open"} 1`)
	assert.Contains(t, string(body), `fairshare_rpc_requests_total{code="unauthenticated",procedure="/test.v1.TestService/WhoAmI"} 1`)
}

func TestGetSessionID(t *testing.T) {
	assert.Empty(t, GetSessionID(context.Background()))
	assert.Equal(t, "abc", GetSessionID(WithSessionID(context.Background(), "abc")))
}
