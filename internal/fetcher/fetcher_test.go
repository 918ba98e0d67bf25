package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><head><style>body{color:red}</style><script>var x = 1;</script></head>
<body>
<header>Site header</header>
<nav>Menu</nav>
<main>
  <h1>Senior   Go Developer</h1>
  <p>We build payment services in Go and PostgreSQL.
     You will own services end to end.</p>
  <ul><li>5+ years of Go</li><li>Kubernetes</li></ul>
</main>
<aside>Related jobs</aside>
<footer>Copyright</footer>
</body></html>`

func TestFetchCleansPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))
		io.WriteString(w, page)
	}))
	defer srv.Close()

	f := New(Config{MinChars: 10}, nil)
	text, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Senior Go Developer We build payment services in Go and PostgreSQL. You will own services end to end. 5+ years of Go Kubernetes", text)
	for _, removed := range []string{"Site header", "Menu", "Related jobs", "Copyright", "var x", "color:red"} {
		assert.NotContains(t, text, removed)
	}
}

func TestFetchTruncates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, "<p>%s</p>", strings.Repeat("ğ", 200))
	}))
	defer srv.Close()

	text, err := New(Config{MaxChars: 150}, nil).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 150, len([]rune(text)))
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		target  error
	}{
		{
			name: "bad status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
		},
		{
			name: "too little text",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				io.WriteString(w, "<html><body><nav>Only navigation</nav><p>Apply now</p></body></html>")
			},
			target: ErrEmptyContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := New(Config{}, nil).Fetch(context.Background(), srv.URL)

			var fetchErr *FetchError
			require.True(t, errors.As(err, &fetchErr), "expected FetchError, got %v", err)
			assert.Equal(t, srv.URL, fetchErr.URL)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := map[string]string{
		"example.com/jobs/1":          "https://example.com/jobs/1",
		"//example.com/jobs/1":        "https://example.com/jobs/1",
		" http://example.com/jobs/1 ": "http://example.com/jobs/1",
		"https://example.com/jobs/1":  "https://example.com/jobs/1",
	}

	for in, want := range tests {
		if got := normalizeURL(in); got != want {
			t.Fatalf("normalizeURL(%q) = %q, want %q", in, got, want)
		}
	}
}
