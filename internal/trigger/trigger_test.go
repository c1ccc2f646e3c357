package trigger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"screener-sync/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func TestFire(t *testing.T) {
	cases := []struct {
		name   string
		status int
		fails  bool
	}{
		{name: "ok", status: http.StatusOK},
		{name: "no content", status: http.StatusNoContent, fails: true},
		{name: "server error", status: http.StatusInternalServerError, fails: true},
		{name: "not found", status: http.StatusNotFound, fails: true},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			methods := make(chan string, 1)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				methods <- r.Method
				w.WriteHeader(test.status)
			}))
			defer server.Close()

			tel := &telemetry.Recorder{}
			client := NewClient(server.URL+"/exec", 5*time.Second, tel)
			status, err := client.Fire(context.Background())

			require.Equal(t, http.MethodGet, <-methods)
			require.Equal(t, test.status, status)
			if test.fails {
				require.Error(t, err)
				require.True(t, tel.Contains("broken", report_client_fire))
				return
			}
			require.NoError(t, err)
			require.True(t, tel.Contains("info", "trigger fired"))
		})
	}
}

func TestFireUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	tel := &telemetry.Recorder{}
	status, err := NewClient(url, time.Second, tel).Fire(context.Background())
	require.Error(t, err)
	require.Equal(t, 0, status)
	require.True(t, tel.Contains("broken", report_client_fire))
}
