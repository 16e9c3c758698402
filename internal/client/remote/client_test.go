package remote

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xVantrex/hillersons-spaces-sub000/internal/client/identity"
	"github.com/0xVantrex/hillersons-spaces-sub000/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetchUserCart_SendsBearer(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"items": []domain.CartItem{{ID: "A", Quantity: 2}},
		})
	}))
	defer ts.Close()

	c := New(ts.URL, testLogger())
	items, err := c.FetchUserCart(context.Background(), identity.Credential{UserID: "u", Token: "tok"})

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].ID)
}

func TestFetch_MalformedBody_FailsOpenToEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>gateway error</html>")
	}))
	defer ts.Close()

	c := New(ts.URL, testLogger())
	items, err := c.FetchGuestCart(context.Background(), "sess-1")

	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFetch_ErrorStatus_IsAnError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := New(ts.URL, testLogger())
	_, err := c.FetchGuestCart(context.Background(), "sess-1")

	assert.Error(t, err)
}

func TestFetch_Unreachable_IsAnError(t *testing.T) {
	c := New("http://127.0.0.1:1", testLogger())
	_, err := c.FetchGuestCart(context.Background(), "sess-1")
	assert.Error(t, err)
}

func TestSaveGuestCart_SendsSessionAndItems(t *testing.T) {
	var got struct {
		Items     []domain.CartItem `json:"items"`
		SessionID string            `json:"sessionId"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cart/guest", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer ts.Close()

	c := New(ts.URL, testLogger())
	items := []domain.CartItem{{ID: "X", Price: 1000, Quantity: 1}}
	require.NoError(t, c.SaveGuestCart(context.Background(), "sess-1", items))

	assert.Equal(t, "sess-1", got.SessionID)
	assert.Equal(t, items, got.Items)
}

func TestSaveGuestCart_EmptyList_SkipsRequest(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	c := New(ts.URL, testLogger())
	require.NoError(t, c.SaveGuestCart(context.Background(), "sess-1", nil))

	assert.False(t, called, "empty guest saves must not go out")
}

func TestClearGuestCart_UsesDeleteWithSessionID(t *testing.T) {
	var method, query string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		query = r.URL.Query().Get("sessionId")
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}))
	defer ts.Close()

	c := New(ts.URL, testLogger())
	require.NoError(t, c.ClearGuestCart(context.Background(), "sess 1"))

	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "sess 1", query)
}

func TestSaveUserCart_PushError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := New(ts.URL, testLogger())
	err := c.SaveUserCart(context.Background(), identity.Credential{Token: "tok"}, []domain.CartItem{{ID: "A", Quantity: 1}})

	assert.Error(t, err)
}
