// Package event is an in-process dispatcher for domain events such as
// "discounts.reconciled". Listeners run synchronously in registration order;
// a panicking listener is logged and does not stop the others.
package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/minimalshop/pkg/logger"
)

// Handler receives an event payload.
type Handler func(ctx context.Context, payload any)

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}
)

// Listen registers handler for event.
func Listen(event string, handler Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[event] = append(handlers[event], handler)
}

// Fire dispatches event to its listeners and returns how many ran.
func Fire(ctx context.Context, event string, payload any) int {
	mu.RLock()
	hs := append([]Handler(nil), handlers[event]...)
	mu.RUnlock()

	for _, h := range hs {
		dispatch(ctx, event, h, payload)
	}
	return len(hs)
}

func dispatch(ctx context.Context, event string, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithCtx(ctx).Error("event listener panicked", "event", event, "panic", fmt.Sprint(r))
		}
	}()
	h(ctx, payload)
}

// Flush removes all listeners.
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
}
