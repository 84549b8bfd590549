package analyzer

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/huangsam/reposcope/internal/contract"
)

// metricsCacheMaxAge bounds how long a cached entry is trusted.
const metricsCacheMaxAge = 30 * 24 * time.Hour

// metricsCacheKey identifies a file by family, path and content.
func metricsCacheKey(sf *sourceFile) string {
	h := xxhash.New()
	_, _ = h.WriteString(sf.family.String())
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(sf.path)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(sf.content)
	return strconv.FormatUint(h.Sum64(), 16)
}

// cachedQuality returns the quality outcome of a file, computing and storing
// it on a cache miss.
func (a *Analyzer) cachedQuality(sf *sourceFile) fileQuality {
	if a.cache == nil {
		return analyzeQuality(sf)
	}
	key := metricsCacheKey(sf)
	if q, ok := a.checkCacheHit(key); ok {
		return q
	}
	q := analyzeQuality(sf)
	if data, err := json.Marshal(q); err == nil {
		_ = a.cache.Set(key, data, MetricsCacheVersion, a.now().Unix())
	}
	return q
}

// checkCacheHit validates version and staleness of a cached entry
func (a *Analyzer) checkCacheHit(key string) (fileQuality, bool) {
	data, version, ts, err := a.cache.Get(key)
	if err != nil || version != MetricsCacheVersion {
		return fileQuality{}, false
	}
	if a.now().Sub(time.Unix(ts, 0)) > metricsCacheMaxAge {
		return fileQuality{}, false
	}
	var q fileQuality
	if err := json.Unmarshal(data, &q); err != nil {
		contract.LogDebug("Discarding unreadable metrics cache entry %s", key)
		return fileQuality{}, false
	}
	return q, true
}
