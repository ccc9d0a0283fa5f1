package resolve

import "strings"

// trieNode is one segment of the route tree. Children are keyed by literal
// segment; placeholder segments ({name}) share a single wildcard child per
// node. A literal match always beats the wildcard at the same level.
//
// The tree is built during registration (single-threaded, before serving)
// and read-only in the request path, so matching needs no locking.
type trieNode struct {
	children     map[string]*trieNode
	wildcard     *trieNode
	routes       map[string]*Route
	middleware   []Middleware
	placeholders []string // ordered placeholder names from root to here
}

func newTrieNode() *trieNode {
	return &trieNode{
		children: make(map[string]*trieNode),
		routes:   make(map[string]*Route),
	}
}

type trie struct {
	root *trieNode
}

func newTrie() *trie {
	return &trie{root: newTrieNode()}
}

// matchKind classifies a match result.
type matchKind int

const (
	matchFound matchKind = iota
	matchNotFound
	matchNoMethod
)

// match is the result of walking the tree for a (method, path) pair. On a
// failed match the middleware accumulated along the walked prefix is still
// surfaced, so ancestor middleware (logging, say) runs on 404s too.
type match struct {
	kind       matchKind
	route      *Route
	params     map[string]string
	middleware []Middleware
	allowed    []string
}

// normalizePath ensures a leading slash and strips the trailing slash
// except at the root.
func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

// splitPath splits a normalized path into segments. The root path has none.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// descend walks from the root to the node for path, creating nodes as
// needed and recording placeholder names along the way. Registration only.
func (t *trie) descend(path string) *trieNode {
	node := t.root
	var names []string
	for _, seg := range splitPath(normalizePath(path)) {
		if name, ok := placeholderName(seg); ok {
			if node.wildcard == nil {
				node.wildcard = newTrieNode()
			}
			node = node.wildcard
			names = append(names, name)
			continue
		}
		child, ok := node.children[seg]
		if !ok {
			child = newTrieNode()
			node.children[seg] = child
		}
		node = child
	}
	node.placeholders = names
	return node
}

// register stores the route at its terminal node, keyed by method.
func (t *trie) register(rt *Route) {
	node := t.descend(rt.path)
	node.routes[rt.method] = rt
}

// setMiddleware attaches a middleware list to the node at path, replacing
// any previously attached list at that exact node. An empty path targets
// the root node (application level).
func (t *trie) setMiddleware(path string, mws []Middleware) {
	if path == "" || path == "/" {
		t.root.middleware = mws
		return
	}
	t.descend(path).middleware = mws
}

// lookup walks the tree for a request path, accumulating each visited
// node's middleware and the raw values captured by wildcard segments.
func (t *trie) lookup(path string) (*trieNode, []string, []Middleware) {
	node := t.root
	mws := append([]Middleware(nil), node.middleware...)
	var values []string

	for _, seg := range splitPath(normalizePath(path)) {
		if child, ok := node.children[seg]; ok {
			node = child
		} else if node.wildcard != nil {
			node = node.wildcard
			values = append(values, seg)
		} else {
			return nil, nil, mws
		}
		mws = append(mws, node.middleware...)
	}
	return node, values, mws
}

// match resolves (method, path) into a route, its extracted path
// parameters, and the full ordered middleware list: application level
// first, then each matched node's attached middleware, then the route's
// own.
func (t *trie) match(method, path string) match {
	node, values, mws := t.lookup(path)
	if node == nil || len(node.routes) == 0 {
		return match{kind: matchNotFound, middleware: mws}
	}

	rt, ok := node.routes[method]
	if !ok {
		return match{kind: matchNoMethod, middleware: mws, allowed: sortedKeys(node.routes)}
	}

	params := make(map[string]string, len(values))
	for i, name := range node.placeholders {
		if i < len(values) {
			params[name] = values[i]
		}
	}

	mws = append(mws, rt.middleware...)
	return match{kind: matchFound, route: rt, params: params, middleware: mws}
}

// placeholderName reports whether a segment is a {name} placeholder.
func placeholderName(seg string) (string, bool) {
	if len(seg) >= 2 && seg[0] == '{' && seg[len(seg)-1] == '}' {
		return seg[1 : len(seg)-1], true
	}
	return "", false
}
