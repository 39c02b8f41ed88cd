// Package xmltree builds a namespace-aware, document-ordered element
// tree from raw XML bytes. Extractors navigate it by local name so the
// same code handles namespaced and namespace-less NeTEx/SIRI documents.
package xmltree

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// SyntaxError reports malformed XML. It is always fatal, regardless of
// the caller's strict/lenient policy.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("xml syntax error: %s", e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Node is one element of the parsed document. Children preserve
// document order.
type Node struct {
	Space    string
	Local    string
	Attrs    []xml.Attr
	Text     string
	Children []*Node
}

// Parse reads an entire XML document into a Node tree. The decoder is
// charset-aware, so documents declaring non-UTF-8 encodings decode
// correctly. Any syntax error fails the whole parse.
func Parse(reader io.Reader) (*Node, error) {
	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel

	var root *Node
	var stack []*Node

	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &SyntaxError{Err: err}
		}

		switch ty := tok.(type) {
		case xml.StartElement:
			node := &Node{
				Space: ty.Name.Space,
				Local: ty.Name.Local,
				Attrs: copyAttrs(ty.Attr),
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, &SyntaxError{Err: fmt.Errorf("multiple root elements")}
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, &SyntaxError{Err: fmt.Errorf("unexpected end element %s", ty.Name.Local)}
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				text := strings.TrimSpace(string(ty))
				if text != "" {
					current := stack[len(stack)-1]
					if current.Text != "" {
						current.Text += " "
					}
					current.Text += text
				}
			}
		}
	}

	if root == nil {
		return nil, &SyntaxError{Err: fmt.Errorf("document has no root element")}
	}
	if len(stack) != 0 {
		return nil, &SyntaxError{Err: fmt.Errorf("unclosed element %s", stack[len(stack)-1].Local)}
	}

	return root, nil
}

func copyAttrs(attrs []xml.Attr) []xml.Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]xml.Attr, len(attrs))
	copy(out, attrs)
	return out
}

// Attr returns the value of the first attribute whose local name
// matches, or "".
func (n *Node) Attr(name string) string {
	for _, attr := range n.Attrs {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}

// Descendants collects every descendant element (including self) with
// the given local name, in document order.
func (n *Node) Descendants(name string) []*Node {
	var out []*Node
	n.walk(func(node *Node) bool {
		if node.Local == name {
			out = append(out, node)
		}
		return true
	})
	return out
}

// First returns the first descendant (excluding self) whose local name
// matches any of names, in document order.
func (n *Node) First(names ...string) *Node {
	var found *Node
	for _, child := range n.Children {
		child.walk(func(node *Node) bool {
			for _, name := range names {
				if node.Local == name {
					found = node
					return false
				}
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// FindText returns the trimmed text content of the first matching
// descendant, or "".
func (n *Node) FindText(names ...string) string {
	node := n.First(names...)
	if node == nil {
		return ""
	}
	return node.Text
}

// FindRef returns the ref or id attribute of the first matching
// descendant, falling back to its text content. NeTEx reference
// elements carry the target in a ref attribute; SIRI ones usually in
// element text.
func (n *Node) FindRef(names ...string) string {
	node := n.First(names...)
	if node == nil {
		return ""
	}
	if ref := node.Attr("ref"); ref != "" {
		return ref
	}
	if id := node.Attr("id"); id != "" {
		return id
	}
	return node.Text
}

// walk visits nodes depth-first in document order. Returning false
// from fn stops the traversal.
func (n *Node) walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, child := range n.Children {
		if !child.walk(fn) {
			return false
		}
	}
	return true
}
