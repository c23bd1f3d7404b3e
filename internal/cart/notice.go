package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/zansmarket/storefront-backend/pkg/enums"
)

// Notice is the shopper-facing confirmation emitted after a mutation.
type Notice struct {
	Kind      enums.NoticeKind `json:"kind"`
	ProductID string           `json:"product_id"`
	Message   string           `json:"message"`
}

// Notifier receives notices as they are emitted.
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, notice Notice)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, notice Notice) {
	f(ctx, notice)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Notice) {}

// Collector buffers notices for the lifetime of one request.
type Collector struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify implements Notifier.
func (c *Collector) Notify(_ context.Context, notice Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, notice)
}

// Notices returns the buffered notices in emission order.
func (c *Collector) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notice, len(c.notices))
	copy(out, c.notices)
	return out
}

func addedNotice(item LineItem) Notice {
	return Notice{
		Kind:      enums.NoticeKindAdded,
		ProductID: item.ProductID,
		Message:   fmt.Sprintf("%s added to cart!", item.Name),
	}
}

func quantityUpdatedNotice(item LineItem) Notice {
	return Notice{
		Kind:      enums.NoticeKindQuantityUpdated,
		ProductID: item.ProductID,
		Message:   fmt.Sprintf("%s quantity updated!", item.Name),
	}
}

func removedNotice(item LineItem) Notice {
	return Notice{
		Kind:      enums.NoticeKindRemoved,
		ProductID: item.ProductID,
		Message:   fmt.Sprintf("%s removed from cart", item.Name),
	}
}
