package html

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	assert.Contains(t, mimeTypes, "text/html")
	assert.Contains(t, mimeTypes, "application/xhtml+xml")
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/path/to/document.html",
		MIMEType: "text/html",
		Content:  []byte("<html><head><title>Test Page</title></head><body><p>Hello World</p></body></html>"),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "Test Page", result.Title)
	assert.Equal(t, Kind, result.Kind)
	assert.Equal(t, "Hello World", result.Text)
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_EmptyContent(t *testing.T) {
	for _, content := range []string{"", "<html><body><script>x()</script></body></html>", "   "} {
		_, err := New().Normalise(context.Background(), &domain.RawDocument{
			URI:     "empty.html",
			Content: []byte(content),
		})
		assert.ErrorIs(t, err, domain.ErrExtractionFailure, "content %q", content)
	}
}

func TestNormalise_TitleExtraction(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		uri           string
		expectedTitle string
	}{
		{
			name:          "title tag",
			content:       "<title>Page Title</title><p>x</p>",
			uri:           "page.html",
			expectedTitle: "Page Title",
		},
		{
			name:          "title with entities and whitespace",
			content:       "<title>\n  Tom &amp; Jerry  </title><p>x</p>",
			uri:           "page.html",
			expectedTitle: "Tom & Jerry",
		},
		{
			name:          "first h1 when no title",
			content:       "<body><h1>Heading One</h1><h1>Second</h1></body>",
			uri:           "page.html",
			expectedTitle: "Heading One",
		},
		{
			name:          "empty title falls back to filename",
			content:       "<title>   </title><p>x</p>",
			uri:           "/docs/market-report.html",
			expectedTitle: "market report",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := New().Normalise(context.Background(), &domain.RawDocument{
				URI:     tc.uri,
				Content: []byte(tc.content),
			})
			require.NoError(t, err)
			assert.Equal(t, tc.expectedTitle, result.Title)
		})
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple paragraph", "<p>Hello World</p>", "Hello World"},
		{"nested tags", "<div><p><strong>Bold</strong> text</p></div>", "Bold text"},
		{"script removed", "<p>Before</p><script>alert('evil');</script><p>After</p>", "Before\nAfter"},
		{"style removed", "<style>.foo { color: red; }</style><p>Content</p>", "Content"},
		{"noscript removed", "<p>Content</p><noscript>No JS fallback</noscript>", "Content"},
		{"nav removed", "<nav><a href='/'>Home</a></nav><p>Content</p>", "Content"},
		{"head removed", "<head><meta charset='utf-8'><title>Title</title></head><body>Content</body>", "Content"},
		{"br to newline", "Line 1<br>Line 2<br/>Line 3", "Line 1\nLine 2\nLine 3"},
		{"block elements create newlines", "<div>Block 1</div><div>Block 2</div>", "Block 1\nBlock 2"},
		{"entities decoded", "<p>&lt;tag&gt; &amp; &quot;quotes&quot;</p>", "<tag> & \"quotes\""},
		{"comments removed", "<p>Before</p><!-- comment --><p>After</p>", "Before\nAfter"},
		{"list items", "<ul><li>Item 1</li><li>Item 2</li></ul>", "Item 1\nItem 2"},
		{"headings", "<h1>Title</h1><h2>Subtitle</h2><p>Content</p>", "Title\nSubtitle\nContent"},
		{"links keep text", `<a href="https://example.com">Click here</a>`, "Click here"},
		{"images removed", `<p>See <img src="image.png" alt="Image"> here</p>`, "See here"},
		{"table cells spaced", "<table><tr><td>Cell 1</td><td>Cell 2</td></tr></table>", "Cell 1 Cell 2"},
		{"svg removed", `<p>Before</p><svg width="100"><text>label</text></svg><p>After</p>`, "Before\nAfter"},
		{"nbsp collapsed", "<p>a&nbsp;&nbsp;b</p>", "a b"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, extractText(doc))
		})
	}
}

func TestNormalise_ComplexHTML(t *testing.T) {
	complexHTML := `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Complex Page</title>
    <style>
        body { font-family: Arial; }
    </style>
</head>
<body>
    <header>
        <h1>Main Title</h1>
        <nav>
            <a href="/home">Home</a>
        </nav>
    </header>
    <main>
        <article>
            <h2>Article Title</h2>
            <p>This is a <strong>paragraph</strong> with <em>emphasis</em>.</p>
            <ul>
                <li>First item</li>
                <li>Second item</li>
            </ul>
        </article>
    </main>
    <script>
        console.log('This should be removed');
    </script>
    <!-- This is a comment that should be removed -->
    <footer>
        <p>&copy; 2024 Example Corp</p>
    </footer>
</body>
</html>`

	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:     "/path/complex.html",
		Content: []byte(complexHTML),
	})
	require.NoError(t, err)

	assert.Equal(t, "Complex Page", result.Title)
	assert.Equal(t,
		"Main Title\nArticle Title\nThis is a paragraph with emphasis.\nFirst item\nSecond item\n© 2024 Example Corp",
		result.Text)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}
