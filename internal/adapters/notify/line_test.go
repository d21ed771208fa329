package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineNotifierSend(t *testing.T) {
	var gotAuth, gotPath string
	var got linePushRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	n, err := NewLineNotifier("tok", srv.URL)
	require.NoError(t, err)

	require.NoError(t, n.Send(context.Background(), "U1234", "Your itinerary:"))
	require.Equal(t, "Bearer tok", gotAuth)
	require.Equal(t, "/v2/bot/message/push", gotPath)
	require.Equal(t, "U1234", got.To)
	require.Len(t, got.Messages, 1)
	require.Equal(t, "text", got.Messages[0].Type)
	require.Equal(t, "Your itinerary:", got.Messages[0].Text)
}

func TestLineNotifierTruncatesLongText(t *testing.T) {
	var got linePushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	n, err := NewLineNotifier("tok", srv.URL)
	require.NoError(t, err)

	require.NoError(t, n.Send(context.Background(), "U1", strings.Repeat("駅", lineMaxText+10)))
	require.Len(t, []rune(got.Messages[0].Text), lineMaxText)
}

func TestLineNotifierFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Authentication failed"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	n, err := NewLineNotifier("bad", srv.URL)
	require.NoError(t, err)

	err = n.Send(context.Background(), "U1", "hi")
	require.ErrorContains(t, err, "status 401")

	_, err = NewLineNotifier("", "")
	require.Error(t, err)
}
