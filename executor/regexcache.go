package executor

import (
	"regexp"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// likeCacheCapacity bounds how many compiled patterns stay resident.
const likeCacheCapacity = 100

// regexCache is process-wide and protected by a mutex; evaluators
// serialize only on cache insertions.
var (
	regexCacheMu sync.Mutex
	regexCache   *lru.Cache[string, *regexp.Regexp]
)

func init() {
	c, err := lru.New[string, *regexp.Regexp](likeCacheCapacity)
	if err != nil {
		panic(err)
	}
	regexCache = c
}

// compileLike compiles pattern once and caches it for reuse across
// records; the second return value is false when pattern does not
// compile at all, which callers treat per the LIKE/NOT LIKE fallback
// rule rather than as a hard error.
func compileLike(pattern string) (*regexp.Regexp, bool) {
	// The LRU cache is itself safe for concurrent lookups; the mutex only
	// guards the compile-and-insert path.
	if re, ok := regexCache.Get(pattern); ok {
		return re, re != nil
	}

	regexCacheMu.Lock()
	defer regexCacheMu.Unlock()

	if re, ok := regexCache.Get(pattern); ok {
		return re, re != nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		regexCache.Add(pattern, nil)
		return nil, false
	}
	regexCache.Add(pattern, re)
	return re, true
}
