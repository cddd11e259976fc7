package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"net/http"

	"github.com/mmcdole/gofeed"

	"boardsync/internal/retrypolicy"
	"boardsync/pkg/utils"
)

// feedItem pairs a parsed RSS/Atom item with the raw element it was
// decoded from, so the stored payload is the source's own XML rather than
// a re-marshaled struct.
type feedItem struct {
	*gofeed.Item
	raw string
}

// RawDocument returns the item's original feed element. If the element
// couldn't be matched back to the parsed item (malformed markup gofeed
// repaired), the parsed shape is serialized as JSON instead.
func (f feedItem) RawDocument() (string, error) {
	if f.raw != "" {
		return f.raw, nil
	}
	b, err := json.Marshal(f.Item)
	return string(b), err
}

// fetchFeed retrieves a feed document, parses it, and pairs each parsed
// item with the raw element it came from, in document order.
func fetchFeed(ctx context.Context, client *http.Client, source string, policy retrypolicy.Policy, url string) ([]RawItem, error) {
	body, err := retrypolicy.Do(ctx, source, policy, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, utils.NewSchemaMismatchError(source, "malformed feed document", err)
	}

	elements := splitFeedItems(body)
	items := make([]RawItem, 0, len(feed.Items))
	for i, it := range feed.Items {
		raw := ""
		if i < len(elements) {
			raw = elements[i]
		}
		items = append(items, feedItem{Item: it, raw: raw})
	}
	return items, nil
}

// splitFeedItems cuts the raw text of every top-level <item> (RSS) or
// <entry> (Atom) element out of a feed document, in document order. Every
// byte belongs to some token, so the span from the decoder's position
// before the opening tag to its position after the closing tag is exactly
// the element's source text.
func splitFeedItems(doc []byte) []string {
	dec := xml.NewDecoder(bytes.NewReader(doc))
	var elements []string
	var start int64
	depth := 0
	inItem := false

	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if !inItem && (t.Name.Local == "item" || t.Name.Local == "entry") {
				inItem = true
				depth = 0
				start = offset
			} else if inItem {
				depth++
			}
		case xml.EndElement:
			if !inItem {
				continue
			}
			if depth == 0 {
				elements = append(elements, string(doc[start:dec.InputOffset()]))
				inItem = false
			} else {
				depth--
			}
		}
	}
	return elements
}
