package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HydraulicKey builds the cache key for a single Manning evaluation.
// The four inputs fully determine the outcome (internal/hydraulics is
// a pure function), so rounding to a fixed precision before hashing
// lets near-identical floating point inputs produced by different
// sizer runs share a cache entry.
func HydraulicKey(q, d, s, manningN float64) string {
	return fmt.Sprintf("hyd:%s", QuickHash([]byte(fmt.Sprintf("%.9f:%.9f:%.9f:%.9f", q, d, s, manningN))))
}

// BuildDesignKey builds the cache key for a whole design evaluation —
// a tree signature plus the decoded design vector. The sizer and the
// design evaluator do not call it; they memoize per-arc hydraulic
// results only.
func BuildDesignKey(treeSignature string, design []float64) string {
	h := sha256.New()
	h.Write([]byte(treeSignature))
	for _, v := range design {
		h.Write([]byte(fmt.Sprintf(":%.9f", v)))
	}
	return fmt.Sprintf("design:%s", hex.EncodeToString(h.Sum(nil)[:16]))
}

// QuickHash быстрый хеш для произвольных данных
func QuickHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ShortHash короткий хеш (16 символов)
func ShortHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
