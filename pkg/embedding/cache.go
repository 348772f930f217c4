package embedding

import (
	"container/list"
	"strconv"
	"strings"
	"sync"
)

// batchKey encodes the model and the exact ordered batch. Every part is
// length-prefixed, so distinct batches never share a key.
func batchKey(model string, texts []string) string {
	var b strings.Builder
	writePart := func(s string) {
		b.WriteString(strconv.Itoa(len(s)))
		b.WriteByte(':')
		b.WriteString(s)
	}
	writePart(model)
	b.WriteString(strconv.Itoa(len(texts)))
	b.WriteByte('#')
	for _, t := range texts {
		writePart(t)
	}
	return b.String()
}

type batchEntry struct {
	key     string
	vectors []Vector
}

// batchCache is a mutex guarded LRU from batch key to the vectors the provider returned for it.
// Values are copied on the way in and out.
type batchCache struct {
	capacity int
	items    map[string]*list.Element
	eviction *list.List
	mu       sync.Mutex
}

func newBatchCache(capacity int) *batchCache {
	return &batchCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
	}
}

func (c *batchCache) get(key string) ([]Vector, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.eviction.MoveToFront(elem)
	return cloneVectors(elem.Value.(*batchEntry).vectors), true
}

func (c *batchCache) put(key string, vectors []Vector) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		elem.Value.(*batchEntry).vectors = cloneVectors(vectors)
		return
	}

	c.items[key] = c.eviction.PushFront(&batchEntry{key: key, vectors: cloneVectors(vectors)})

	if c.eviction.Len() > c.capacity {
		oldest := c.eviction.Back()
		c.eviction.Remove(oldest)
		delete(c.items, oldest.Value.(*batchEntry).key)
	}
}

func (c *batchCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eviction.Len()
}

func (c *batchCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.eviction.Init()
}
