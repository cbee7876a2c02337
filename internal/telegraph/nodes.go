package telegraph

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Node: элемент содержимого страницы Telegraph: строка или тег.
type Node any

type NodeElement struct {
	Tag      string            `json:"tag"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Children []Node            `json:"children,omitempty"`
}

var allowedTags = map[string]bool{
	"a": true, "aside": true, "b": true, "blockquote": true, "br": true, "code": true,
	"em": true, "figcaption": true, "figure": true, "h3": true, "h4": true, "hr": true,
	"i": true, "iframe": true, "img": true, "li": true, "ol": true, "p": true,
	"pre": true, "s": true, "strong": true, "u": true, "ul": true, "video": true,
}

var allowedAttrs = map[string]bool{"href": true, "src": true}

// InvalidHTMLError: содержимое нельзя отправить в Telegraph.
type InvalidHTMLError struct {
	Reason string
}

func (e *InvalidHTMLError) Error() string { return "invalid html: " + e.Reason }

func (e *InvalidHTMLError) InvalidContent() bool { return true }

// HTMLToNodes разбирает фрагмент HTML в дерево узлов Telegraph.
func HTMLToNodes(src string) ([]Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	roots, err := html.ParseFragment(strings.NewReader(src), body)
	if err != nil {
		return nil, &InvalidHTMLError{Reason: err.Error()}
	}
	out := make([]Node, 0, len(roots))
	for _, n := range roots {
		conv, ok, err := convert(n)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, conv)
		}
	}
	if len(out) == 0 {
		return nil, &InvalidHTMLError{Reason: "empty content"}
	}
	return out, nil
}

func convert(n *html.Node) (Node, bool, error) {
	switch n.Type {
	case html.TextNode:
		return n.Data, n.Data != "", nil
	case html.ElementNode:
		if !allowedTags[n.Data] {
			return nil, false, &InvalidHTMLError{Reason: fmt.Sprintf("tag <%s> is not allowed", n.Data)}
		}
		el := NodeElement{Tag: n.Data}
		for _, a := range n.Attr {
			if allowedAttrs[a.Key] {
				if el.Attrs == nil {
					el.Attrs = map[string]string{}
				}
				el.Attrs[a.Key] = a.Val
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			conv, ok, err := convert(c)
			if err != nil {
				return nil, false, err
			}
			if ok {
				el.Children = append(el.Children, conv)
			}
		}
		return el, true, nil
	}
	// комментарии и прочее пропускаем
	return nil, false, nil
}
