package router

import (
	"container/list"
	"strconv"
	"strings"
	"sync"

	"github.com/aetherime/aetherime/pkg/protocol"
)

// cacheKey identifies a cacheable predict request.
type cacheKey struct {
	prefix    string
	suffix    string
	language  protocol.Language
	mode      protocol.Mode
	maxTokens uint32
}

// keyFor builds a cache key from mode, the effective mode the router
// actually dispatches and returns with — not the request's raw, possibly
// absent or pre-coercion, mode field — so that two requests which coerce
// to the same effective mode share one cache entry.
func keyFor(req protocol.PredictRequest, mode protocol.Mode) cacheKey {
	return cacheKey{
		prefix:    req.Prefix,
		suffix:    req.Suffix,
		language:  req.Language,
		mode:      mode,
		maxTokens: req.MaxTokens,
	}
}

func (k cacheKey) String() string {
	var sb strings.Builder
	sb.WriteString(string(k.language))
	sb.WriteByte('|')
	sb.WriteString(string(k.mode))
	sb.WriteByte('|')
	sb.WriteString(strconv.FormatUint(uint64(k.maxTokens), 10))
	sb.WriteByte('|')
	sb.WriteString(k.prefix)
	sb.WriteByte('|')
	sb.WriteString(k.suffix)
	return sb.String()
}

// cache is an insertion-ordered, fixed-capacity map: get is a pure read;
// insert overwrites an existing key's value without moving it in the
// eviction queue, and evicts the oldest entry only when inserting a new
// key at capacity. A capacity-0 cache never stores anything. This exact
// overwrite-without-reposition policy is a deliberate design choice (see
// DESIGN.md) that no off-the-shelf LRU cache reproduces, so it is
// hand-rolled on container/list rather than borrowed from the ecosystem.
type cache struct {
	mu       sync.RWMutex
	capacity int
	order    *list.List // front = oldest
	entries  map[string]*list.Element
}

type cacheElem struct {
	key   string
	value protocol.PredictResponse
}

func newCache(capacity int) *cache {
	return &cache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

func (c *cache) get(k cacheKey) (protocol.PredictResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	elem, ok := c.entries[k.String()]
	if !ok {
		return protocol.PredictResponse{}, false
	}
	return elem.Value.(*cacheElem).value, true
}

func (c *cache) insert(k cacheKey, v protocol.PredictResponse) {
	if c.capacity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := k.String()
	if elem, ok := c.entries[key]; ok {
		elem.Value.(*cacheElem).value = v
		return
	}

	if c.order.Len() >= c.capacity {
		front := c.order.Front()
		if front != nil {
			c.order.Remove(front)
			delete(c.entries, front.Value.(*cacheElem).key)
		}
	}

	elem := c.order.PushBack(&cacheElem{key: key, value: v})
	c.entries[key] = elem
}

func (c *cache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Len()
}
