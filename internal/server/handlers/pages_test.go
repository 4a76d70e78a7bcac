package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/librarybuilder/internal/history"
)

func TestTruncRunes(t *testing.T) {
	tests := []struct {
		n    int
		in   string
		want string
	}{
		{3, "abcdef", "abc"},
		{10, "abc", "abc"},
		{2, "日本語", "日本"},
		{-2, "日本語", "本語"},
		{0, "abc", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncRunes(tt.n, tt.in), "%d %q", tt.n, tt.in)
	}
}

func TestRenderLibrary_TruncatesMessagesByRune(t *testing.T) {
	pages, err := NewPages()
	require.NoError(t, err)

	message := strings.Repeat("é", 200)
	rec := httptest.NewRecorder()
	require.NoError(t, pages.RenderLibrary(rec, LibraryPage{
		AccountID: "76561198000000000",
		Attempts: []history.Attempt{{
			ID: "a1", AccountID: "76561198000000000", Outcome: "failed",
			Message: message, StartedAt: time.Now(),
		}},
	}))

	body := rec.Body.String()
	assert.True(t, utf8.ValidString(body))
	assert.Contains(t, body, strings.Repeat("é", 120))
	assert.NotContains(t, body, strings.Repeat("é", 121))
}
