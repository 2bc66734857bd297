package mirror

import (
	"fmt"
	"io"
	"net/url"
	"path"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Link is one entry of a directory listing, resolved against the page URL.
type Link struct {
	URL *url.URL
}

// String returns the absolute URL.
func (l Link) String() string {
	return l.URL.String()
}

// IsDir reports whether the entry names a subdirectory (trailing slash).
func (l Link) IsDir() bool {
	return strings.HasSuffix(l.URL.String(), "/")
}

// Name returns the final path segment, unescaped. ParseListing only returns
// links whose name is a single safe path element.
func (l Link) Name() string {
	name, _ := segmentName(l.URL)
	return name
}

// ParseListing extracts the entries of a server-generated directory index.
//
// Only anchors inside <table> elements count, which leaves out navigation
// around the listing, and only anchors whose text equals their href, the
// convention of <a href="name/">name/</a>. Every accepted reference must
// resolve to an absolute URL below page; anything else fails the whole parse.
// The result is deduplicated and sorted.
func ParseListing(page *url.URL, body io.Reader) ([]Link, error) {
	doc, err := html.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing %s: %w", page, err)
	}

	prefix := page.String()
	seen := make(map[string]bool)
	var links []Link

	var walk func(n *html.Node, inTable bool) error
	walk = func(n *html.Node, inTable bool) error {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Table:
				inTable = true
			case atom.A:
				if inTable {
					if err := collect(page, prefix, n, seen, &links); err != nil {
						return err
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c, inTable); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(doc, false); err != nil {
		return nil, err
	}

	sort.Slice(links, func(i, j int) bool {
		return links[i].String() < links[j].String()
	})
	return links, nil
}

func collect(page *url.URL, prefix string, a *html.Node, seen map[string]bool, links *[]Link) error {
	href, ok := attr(a, "href")
	if !ok {
		return nil
	}
	text, ok := soleText(a)
	if !ok || text != href {
		return nil
	}

	ref, err := url.Parse(href)
	if err != nil {
		return &ListingError{Page: prefix, Href: href, Reason: "cannot be parsed: " + err.Error()}
	}
	resolved := page.ResolveReference(ref)
	if !resolved.IsAbs() || resolved.Host == "" {
		return &ListingError{Page: prefix, Href: href, Reason: "does not resolve to an absolute URL"}
	}

	full := resolved.String()
	// A link back to the page itself would recurse forever
	if seen[full] || full == prefix {
		return nil
	}
	if !strings.HasPrefix(full, prefix) {
		return &ListingError{Page: prefix, Href: href, Reason: "resolves outside the listing to " + full}
	}
	if _, err := segmentName(resolved); err != nil {
		return &ListingError{Page: prefix, Href: href, Reason: "does not name a single local entry"}
	}
	seen[full] = true
	*links = append(*links, Link{URL: resolved})
	return nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// soleText returns the text of a node that has exactly one child, descending
// through single-child elements until a text node is reached.
func soleText(n *html.Node) (string, bool) {
	for {
		c := n.FirstChild
		if c == nil || c.NextSibling != nil {
			return "", false
		}
		switch c.Type {
		case html.TextNode:
			return c.Data, true
		case html.ElementNode:
			n = c
		default:
			return "", false
		}
	}
}

func lastSegment(p string) string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return ""
	}
	return path.Base(trimmed)
}
