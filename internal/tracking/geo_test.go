package tracking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocateLoopbackSkipsNetwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("loopback lookup must not hit the network")
	}))
	defer server.Close()

	client := NewLocationClient(server.URL, time.Second)
	require.Equal(t, LocationLocal, client.Locate(context.Background(), "127.0.0.1"))
	require.Equal(t, LocationLocal, client.Locate(context.Background(), ""))
	require.Equal(t, LocationLocal, client.Locate(context.Background(), "localhost"))
	require.Equal(t, LocationLocal, client.Locate(context.Background(), "::1"))
}

func TestLocatePrefersCityThenRegion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/8.8.8.8/json", r.URL.Path)
		_, _ = w.Write([]byte(`{"city":"Mountain View","region":"California"}`))
	}))
	defer server.Close()

	client := NewLocationClient(server.URL, time.Second)
	require.Equal(t, "Mountain View", client.Locate(context.Background(), "8.8.8.8"))
}

func TestLocateFallsBackToRegion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"region":"California"}`))
	}))
	defer server.Close()

	client := NewLocationClient(server.URL, time.Second)
	require.Equal(t, "California", client.Locate(context.Background(), "8.8.8.8"))
}

func TestLocateUnknownWhenDataMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewLocationClient(server.URL, time.Second)
	require.Equal(t, LocationUnknown, client.Locate(context.Background(), "8.8.8.8"))
}

func TestLocateUnknownOnHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewLocationClient(server.URL, time.Second)
	require.Equal(t, LocationUnknown, client.Locate(context.Background(), "8.8.8.8"))
}

func TestLocateUnknownOnNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewLocationClient(server.URL, 100*time.Millisecond)
	require.Equal(t, LocationUnknown, client.Locate(context.Background(), "8.8.8.8"))
}

func TestLocateUnknownWithoutBaseURL(t *testing.T) {
	client := NewLocationClient("", time.Second)
	require.Equal(t, LocationUnknown, client.Locate(context.Background(), "8.8.8.8"))
}
