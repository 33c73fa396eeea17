// Package http exposes the platform's JSON API: prediction reads and
// payment application.
package http

import (
	"container/list"
	"context"
	"net/http"
	"sync"
	"time"

	"buste/internal/core"
	"buste/internal/middleware/ratelimit"
	"buste/internal/middleware/trace"
	"buste/internal/snowball"
)

// PredictionProvider is the read side the server renders.
type PredictionProvider interface {
	PredictAll(ctx context.Context, now time.Time) ([]core.EnvelopePrediction, error)
	PredictEnvelope(ctx context.Context, envelopeID int64, now time.Time) (core.EnvelopePrediction, error)
}

// PaymentApplier is the single write operation the API offers.
type PaymentApplier interface {
	ApplyPayment(ctx context.Context, envelopeID int64, amount core.Money, now time.Time) (snowball.Result, error)
}

// lruCache is a TTL'd LRU for prediction responses; predictions are
// pure over a snapshot, so a short TTL only delays fresh balances, it
// never corrupts anything.
type lruCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
}

type cacheItem[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

func newLRUCache[T any](maxSize int, ttl time.Duration) *lruCache[T] {
	return &lruCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

func (c *lruCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		return zero, false
	}
	item := elem.Value.(*cacheItem[T])
	if time.Now().After(item.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}
	c.lru.MoveToFront(elem)
	return item.data, true
}

func (c *lruCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &cacheItem[T]{key: key, data: data, expiresAt: time.Now().Add(c.ttl)}
	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return
	}
	elem := c.lru.PushFront(item)
	c.items[key] = elem
	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

func (c *lruCache[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.lru.Init()
}

func (c *lruCache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	c.lru.Remove(elem)
}

type Server struct {
	http.Server

	predictions PredictionProvider
	payments    PaymentApplier
	limiter     *ratelimit.Limiter

	allCache *lruCache[[]core.EnvelopePrediction]
	oneCache *lruCache[core.EnvelopePrediction]

	// clock is swapped in tests; handlers never call time.Now directly.
	clock func() time.Time

	shutdownOnce sync.Once
}

// NewServer wires routes, caching and middleware. cacheTTL of zero
// disables the prediction caches.
func NewServer(addr string, predictions PredictionProvider, payments PaymentApplier, cacheTTL time.Duration) *Server {
	s := &Server{
		predictions: predictions,
		payments:    payments,
		limiter:     ratelimit.New(30, time.Minute),
		clock:       time.Now,
	}
	if cacheTTL > 0 {
		s.allCache = newLRUCache[[]core.EnvelopePrediction](4, cacheTTL)
		s.oneCache = newLRUCache[core.EnvelopePrediction](256, cacheTTL)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/predictions", s.handleListPredictions)
	mux.HandleFunc("GET /api/envelopes/{id}/prediction", s.handleGetPrediction)
	mux.Handle("POST /api/envelopes/{id}/payments", s.limiter.Middleware(http.HandlerFunc(s.handleApplyPayment)))

	s.Server = http.Server{
		Addr:    addr,
		Handler: trace.Middleware(mux),
	}
	return s
}

// Shutdown drains connections and stops the limiter's janitor.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() { s.limiter.Close() })
	return s.Server.Shutdown(ctx)
}
