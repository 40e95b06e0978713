package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-labs/lore-cli/internal/core/domain"
)

const rssDocument = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>Older entry</title>
      <link>https://example.com/older</link>
      <description>older summary</description>
      <pubDate>Mon, 02 Jan 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Newer entry</title>
      <link>https://example.com/newer</link>
      <description>newer summary</description>
      <pubDate>Tue, 03 Jan 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title></title>
      <link>https://example.com/untitled</link>
    </item>
  </channel>
</rss>`

func rssSource(url string) domain.FeedSource {
	return domain.FeedSource{
		Name:     "test",
		URL:      url,
		Method:   "rss",
		Tier:     1,
		Category: domain.CategoryOfficial,
		Language: "en",
	}
}

func TestFetchParsesAndOrdersNewestFirst(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssDocument)
	}))
	defer server.Close()

	items, err := NewRSSFetcher().Fetch(context.Background(), rssSource(server.URL))
	require.NoError(t, err)
	require.Len(t, items, 2, "untitled entries are dropped")

	assert.Equal(t, "Newer entry", items[0].Title)
	assert.Equal(t, "Older entry", items[1].Title)
	assert.Equal(t, "newer summary", items[0].Summary)
	assert.Equal(t, "test", items[0].SourceName)
	assert.True(t, items[0].Published.After(items[1].Published))
}

func TestFetchRejectsUnsupportedMethod(t *testing.T) {
	source := rssSource("https://example.com/feed")
	source.Method = "scrape"

	_, err := NewRSSFetcher().Fetch(context.Background(), source)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidFeedSource)
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewRSSFetcher().Fetch(context.Background(), rssSource(server.URL))
	require.Error(t, err)
}

func TestFetchHonoursContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewRSSFetcher().Fetch(ctx, rssSource(server.URL))
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFetchCapsItemCount(t *testing.T) {
	var b []byte
	b = append(b, []byte(`<?xml version="1.0"?><rss version="2.0"><channel><title>big</title>`)...)
	for i := 0; i < 50; i++ {
		b = append(b, []byte(fmt.Sprintf(
			`<item><title>entry %d</title><link>https://example.com/%d</link></item>`, i, i))...)
	}
	b = append(b, []byte(`</channel></rss>`)...)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(b)
	}))
	defer server.Close()

	items, err := NewRSSFetcher().Fetch(context.Background(), rssSource(server.URL))
	require.NoError(t, err)
	assert.Len(t, items, maxItemsPerFeed)
}
