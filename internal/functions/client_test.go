package functions_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicetracker/internal/functions"
)

func TestClient_Invoke(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/generate-report", r.URL.Path)
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "weekly", body["type"])

		_, _ = w.Write([]byte(`{"emails_sent": 4}`))
	}))
	defer srv.Close()

	c := functions.NewClient(srv.URL+"/", "key-123", time.Second)

	var resp struct {
		EmailsSent int `json:"emails_sent"`
	}

	err := c.Invoke(context.Background(), "generate-report", map[string]string{"type": "weekly"}, &resp)
	require.NoError(t, err)
	assert.Equal(t, 4, resp.EmailsSent)
}

func TestClient_Invoke_SurfacesErrorsVerbatim(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "ErrorFieldOn200", status: http.StatusOK, body: `{"error":"SMTP quota exceeded"}`, wantMsg: "SMTP quota exceeded"},
		{name: "ErrorFieldOn500", status: http.StatusInternalServerError, body: `{"error":"User not found"}`, wantMsg: "User not found"},
		{name: "PlainTextBody", status: http.StatusBadGateway, body: "upstream down\n", wantMsg: "upstream down"},
		{name: "EmptyBody", status: http.StatusUnauthorized, body: "", wantMsg: "Unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := functions.NewClient(srv.URL, "", time.Second).Invoke(context.Background(), "reset-password", nil, nil)

			var remote *functions.RemoteError
			require.True(t, errors.As(err, &remote))
			assert.Equal(t, tt.wantMsg, remote.Error())
			assert.Equal(t, tt.status, remote.StatusCode)
			assert.Equal(t, "reset-password", remote.Function)
		})
	}
}

func TestClient_NotConfigured(t *testing.T) {
	err := functions.NewClient("", "", time.Second).Invoke(context.Background(), "x", nil, nil)
	assert.ErrorIs(t, err, functions.ErrNotConfigured)
}
