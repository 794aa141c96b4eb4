package extract

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Node is the query surface the extractor needs from a parsed document.
type Node interface {
	// FindFirst returns the first descendant element, in document order,
	// with the given tag that satisfies every attr matcher.
	FindFirst(tag string, attrs ...Attr) (Node, bool)
	// FindAll returns every matching descendant element in document order.
	FindAll(tag string, attrs ...Attr) []Node
	// Text returns the concatenated text of the node and its descendants.
	Text() string
	Attr(name string) (string, bool)
}

// Attr matches a single attribute of an element.
type Attr struct {
	Key   string
	Match func(value string) bool
}

// HasClass matches elements whose class list contains every given class.
func HasClass(classes ...string) Attr {
	return Attr{
		Key: "class",
		Match: func(value string) bool {
			have := strings.Fields(value)
			for _, want := range classes {
				found := false
				for _, h := range have {
					if h == want {
						found = true
						break
					}
				}
				if !found {
					return false
				}
			}
			return true
		},
	}
}

func Equals(key, want string) Attr {
	return Attr{Key: key, Match: func(v string) bool { return v == want }}
}

func Contains(key, substr string) Attr {
	return Attr{Key: key, Match: func(v string) bool { return strings.Contains(v, substr) }}
}

func HasSuffix(key, suffix string) Attr {
	return Attr{Key: key, Match: func(v string) bool { return strings.HasSuffix(strings.TrimRight(v, "/"), suffix) }}
}

// Parse reads an HTML document and returns its root node.
func Parse(r io.Reader) (Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return htmlNode{n: doc}, nil
}

type htmlNode struct {
	n *html.Node
}

func (h htmlNode) FindFirst(tag string, attrs ...Attr) (Node, bool) {
	var found *html.Node
	walk(h.n, func(c *html.Node) bool {
		if matches(c, tag, attrs) {
			found = c
			return false
		}
		return true
	})
	if found == nil {
		return nil, false
	}
	return htmlNode{n: found}, true
}

func (h htmlNode) FindAll(tag string, attrs ...Attr) []Node {
	var out []Node
	walk(h.n, func(c *html.Node) bool {
		if matches(c, tag, attrs) {
			out = append(out, htmlNode{n: c})
		}
		return true
	})
	return out
}

func (h htmlNode) Text() string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(h.n)
	return b.String()
}

func (h htmlNode) Attr(name string) (string, bool) {
	return getAttr(h.n, name)
}

// walk visits the descendants of n in document order until visit returns false.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !visit(c) {
			return false
		}
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func matches(n *html.Node, tag string, attrs []Attr) bool {
	if n.Type != html.ElementNode || n.Data != tag {
		return false
	}
	for _, a := range attrs {
		v, ok := getAttr(n, a.Key)
		if !ok || !a.Match(v) {
			return false
		}
	}
	return true
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
