package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("supersecret")
	require.NoError(t, err)
	require.NotEqual(t, "supersecret", hash)

	require.True(t, CheckPasswordHash("supersecret", hash))
	require.False(t, CheckPasswordHash("wrong", hash))
}

func TestSnippet(t *testing.T) {
	require.Equal(t, "short", Snippet("short"))

	long := strings.Repeat("a", 80)
	got := Snippet(long)
	require.Equal(t, strings.Repeat("a", 50)+"...", got)

	// Rune-safe truncation of multi-byte text
	multibyte := strings.Repeat("日", 60)
	got = Snippet(multibyte)
	require.Equal(t, strings.Repeat("日", 50)+"...", got)
}

func TestRenderMarkdown(t *testing.T) {
	html := RenderMarkdown("**bold** text")
	require.Contains(t, html, "<strong>bold</strong>")

	// User-submitted scripts never survive sanitization
	html = RenderMarkdown("hello <script>alert(1)</script>")
	require.NotContains(t, html, "<script>")
	require.Contains(t, html, "hello")

	require.Equal(t, "", RenderMarkdown(""))
}
