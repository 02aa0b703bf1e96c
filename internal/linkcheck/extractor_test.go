package linkcheck

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractLinksFromReader(t *testing.T) {
	doc := `<html><head>
<link rel="stylesheet" href="style.css">
<script src="app.js"></script>
</head><body>
<a href="tokenize/report/index.html">tokenize</a>
<a>no target</a>
<img src="plot.svg" alt="plot">
<p data-href="ignored.html">text</p>
</body></html>`

	links, err := ExtractLinksFromReader(strings.NewReader(doc))
	require.NoError(t, err)

	var got []string
	var ordinals []int
	for _, l := range links {
		got = append(got, l.Tag+":"+l.Attribute+"="+l.URL)
		ordinals = append(ordinals, l.Ordinal)
	}
	require.Equal(t, []string{
		"link:href=style.css",
		"script:src=app.js",
		"a:href=tokenize/report/index.html",
		"img:src=plot.svg",
	}, got)
	// html, head, link, script, body, a, a, img
	require.Equal(t, []int{3, 4, 6, 8}, ordinals)
}

func TestShouldVerifyLink(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"tokenize/report/index.html", true},
		{"../escape.html", true},
		{"page.html#section", true},
		{"#top", false},
		{"mailto:a@example.com", false},
		{"javascript:void(0)", false},
		{"data:image/png;base64,AAAA", false},
		{"https://example.com/x", false},
		{"//cdn.example.com/lib.js", false},
		{"/absolute/path", false},
		{"", false},
		{"?query=only", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			require.Equal(t, tt.want, ShouldVerifyLink(Link{URL: tt.url}))
		})
	}
}
