package falcon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/de-tools/registry-sync/pkg/models/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	issued      atomic.Int64
	invalidated atomic.Int64
}

func (f *fakeTokens) Token(_ context.Context) (string, error) {
	return fmt.Sprintf("token-%d", f.issued.Add(1)), nil
}

func (f *fakeTokens) Invalidate(_ string) {
	f.invalidated.Add(1)
}

func newTestClient(t *testing.T, baseURL string) (*Client, *fakeTokens) {
	t.Helper()
	tokens := &fakeTokens{}
	client, err := NewClient(Config{
		BaseURL:           baseURL,
		MaxRetries:        3,
		RequestsPerSecond: 1000,
		Burst:             1000,
	}, tokens)
	require.NoError(t, err)
	return client, tokens
}

func TestDo_SendsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"resources": []string{}})
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)

	var out api.QueryResponse
	require.NoError(t, client.get(context.Background(), "/container-security/queries/registries/v1", nil, &out))
	assert.Equal(t, "Bearer token-1", gotAuth)
}

func TestDo_RetriesOnThrottleThenSucceeds(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"resources": []string{"a"}})
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)

	var out api.QueryResponse
	err := client.get(context.Background(), "/path", nil, &out)

	require.NoError(t, err)
	assert.Equal(t, int64(3), calls.Load())
	assert.Equal(t, []string{"a"}, out.Resources)
}

func TestDo_BadRequestIsNotRetried(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"invalid filter"}]}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)

	err := client.get(context.Background(), "/path", nil, nil)

	require.Error(t, err)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, "invalid filter", se.Message)
	assert.Equal(t, int64(1), calls.Load())
}

// A 401 invalidates the token and gets exactly one re-auth pass.
func TestDo_UnauthorizedInvalidatesAndRetriesOnce(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"resources": []string{}})
	}))
	defer server.Close()

	client, tokens := newTestClient(t, server.URL)

	require.NoError(t, client.get(context.Background(), "/path", nil, nil))
	assert.Equal(t, int64(2), calls.Load())
	assert.Equal(t, int64(1), tokens.invalidated.Load())
	assert.Equal(t, int64(2), tokens.issued.Load())
}

func TestDo_PersistentUnauthorizedFails(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)

	err := client.get(context.Background(), "/path", nil, nil)

	require.Error(t, err)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, int64(2), calls.Load())
}

func TestListCloudAccounts_PassesPagingParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cloud-security-registration-aws/entities/account/v1", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("offset"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(api.CloudAccountsResponse{
			Resources: []api.CloudAccount{{AccountID: "111111111111"}},
			Meta:      api.Meta{Pagination: &api.Pagination{Total: 101}},
		})
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)

	resp, err := client.ListCloudAccounts(context.Background(), 100, 50)

	require.NoError(t, err)
	require.Len(t, resp.Resources, 1)
	assert.Equal(t, "111111111111", resp.Resources[0].AccountID)
	assert.Equal(t, 101, resp.Meta.Pagination.Total)
}

func TestDeleteRegistration_SendsIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/container-security/entities/registries/v1", r.URL.Path)
		assert.Equal(t, "reg-1", r.URL.Query().Get("ids"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)

	require.NoError(t, client.DeleteRegistration(context.Background(), "reg-1"))
}

func TestStatusErrorHelpers(t *testing.T) {
	assert.True(t, IsAlreadyExists(&StatusError{StatusCode: http.StatusConflict}))
	assert.True(t, IsAlreadyExists(&StatusError{StatusCode: http.StatusBadRequest, Message: "registry already exists"}))
	assert.False(t, IsAlreadyExists(&StatusError{StatusCode: http.StatusBadRequest, Message: "invalid"}))
	assert.False(t, IsAlreadyExists(fmt.Errorf("plain")))

	assert.True(t, IsNotFound(&StatusError{StatusCode: http.StatusNotFound}))
	assert.False(t, IsNotFound(&StatusError{StatusCode: http.StatusGone}))
}
