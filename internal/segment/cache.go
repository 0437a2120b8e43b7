package segment

import (
	"crypto/sha1"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"

	"docinsight/internal/domain"
)

// DefaultCacheSize is the number of distinct documents whose segmentation is kept.
const DefaultCacheSize = 64

// Cached memoizes segmentation per distinct document text. Segmentation is a
// pure function of the text, so the content hash is a sufficient key.
type Cached struct {
	inner domain.Segmenter
	cache *lru.Cache[string, domain.Segmentation]
}

var _ domain.Segmenter = (*Cached)(nil)

// NewCached wraps inner with an LRU of the given size.
func NewCached(inner domain.Segmenter, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, domain.Segmentation](size)
	if err != nil {
		return nil, err
	}
	return &Cached{inner: inner, cache: c}, nil
}

// Segment returns the cached segmentation for text, computing it on first use.
func (c *Cached) Segment(text string) domain.Segmentation {
	key := hashString(text)
	if seg, ok := c.cache.Get(key); ok {
		return seg
	}
	seg := c.inner.Segment(text)
	c.cache.Add(key, seg)
	return seg
}

// Len reports how many documents are cached.
func (c *Cached) Len() int { return c.cache.Len() }

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}
