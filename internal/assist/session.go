// Package assist – conversation memory
package assist

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// NameStore remembers the visitor's declared name per conversation. It is a
// bounded LRU with per-entry TTL, so abandoned conversations age out instead
// of accumulating forever. Safe for concurrent use; on concurrent writes for
// the same conversation the last writer wins.
type NameStore struct {
	lru *expirable.LRU[string, string]
}

// NewNameStore builds a NameStore holding at most max conversations, each
// remembered for ttl after its last write.
func NewNameStore(max int, ttl time.Duration) *NameStore {
	if max < 1 {
		max = 1
	}
	return &NameStore{lru: expirable.NewLRU[string, string](max, nil, ttl)}
}

// Set records the visitor's name for a conversation. Empty conversation IDs
// are ignored so anonymous requests never share an entry.
func (n *NameStore) Set(conversationID, name string) {
	if conversationID == "" || name == "" {
		return
	}
	n.lru.Add(conversationID, name)
}

// Get returns the remembered name for a conversation, or "" when unknown
// or expired.
func (n *NameStore) Get(conversationID string) string {
	if conversationID == "" {
		return ""
	}
	if v, ok := n.lru.Get(conversationID); ok {
		return v
	}
	return ""
}

// Len reports how many conversations currently have a remembered name.
func (n *NameStore) Len() int { return n.lru.Len() }
