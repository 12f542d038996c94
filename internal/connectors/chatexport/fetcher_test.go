package chatexport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

func writeExport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chat.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFetcher_Source(t *testing.T) {
	assert.Equal(t, domain.SourceChat, New("x").Source())
}

func TestFetcher_Fetch(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "list",
			content: `  [{"message_info_str": "a"}, {"message_info_str": "b"}]`,
			want:    []string{"a", "b"},
		},
		{
			name:    "payload object",
			content: `{"slack_results": [{"message_info_str": "c"}], "gmail": [{"id": "ignored"}]}`,
			want:    []string{"c"},
		},
		{
			name:    "object without chat rows",
			content: `{"calendar": []}`,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := New(writeExport(t, tt.content)).Fetch(context.Background())
			require.NoError(t, err)

			var got []string
			for _, r := range rows {
				got = append(got, r.String("message_info_str"))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetcher_Errors(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.json")).Fetch(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = New(writeExport(t, `[1, 2]`)).Fetch(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = New(writeExport(t, `{"chat_results": "nope"}`)).Fetch(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
