package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/custodia-labs/flightdeck/internal/connectors/google"
	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *gmail.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	svc, err := gmail.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return svc
}

func TestBuildMessage(t *testing.T) {
	raw := string(BuildMessage("me@corp.test", "Daily Flight Deck (fallback delivery)", "line one\nline two"))

	assert.True(t, strings.HasPrefix(raw, "To: me@corp.test\r\n"))
	assert.Contains(t, raw, "Subject: Daily Flight Deck (fallback delivery)\r\n")
	assert.Contains(t, raw, "Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	assert.True(t, strings.HasSuffix(raw, "line one\r\nline two"))
}

func TestBuildMessage_EncodesNonASCIISubject(t *testing.T) {
	raw := string(BuildMessage("me@corp.test", "Brief ✈", "body"))

	assert.Contains(t, raw, "Subject: =?utf-8?q?")
}

func TestSink_Post(t *testing.T) {
	var sent gmail.Message
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/users/me/messages/send"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg-42"}`))
	})

	sink := New(svc, "", "me@corp.test")
	detail, err := sink.Post(context.Background(), domain.Message{Subject: "Fallback", Body: "# Brief"})

	require.NoError(t, err)
	assert.Equal(t, "gmail accepted (id msg-42)", detail)
	assert.Equal(t, "me@corp.test", sink.Recipient())

	decoded, err := base64.URLEncoding.DecodeString(sent.Raw)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "To: me@corp.test")
	assert.Contains(t, string(decoded), "# Brief")
}

func TestSink_PostForbidden(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"insufficient scope"}}`))
	})

	detail, err := New(svc, "me", "me@corp.test").Post(context.Background(), domain.Message{Body: "brief"})

	require.Error(t, err)
	assert.ErrorIs(t, err, google.ErrForbidden)
	assert.Contains(t, detail, "gmail send failed")
}

func TestSink_NotConfigured(t *testing.T) {
	_, err := New(nil, "me", "me@corp.test").Post(context.Background(), domain.Message{Body: "brief"})
	assert.ErrorIs(t, err, domain.ErrSinkNotConfigured)

	svc := newTestService(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("no request expected")
	})
	_, err = New(svc, "me", "").Post(context.Background(), domain.Message{Body: "brief"})
	assert.ErrorIs(t, err, domain.ErrSinkNotConfigured)
}
