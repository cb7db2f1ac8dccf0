package watch

import (
	"sync"

	"github.com/goliatone/go-choices/pkg/model"
	"github.com/goliatone/go-choices/pkg/reconcile"
)

// Handlers receive the watcher's signals.
type Handlers struct {
	// OnDependency runs when the field's refresh dependency changes.
	OnDependency func(Change)
	// OnValue runs once, for the first non-empty value written to the field
	// by someone other than the field itself.
	OnValue func(value any)
}

// Watcher ties one field to a record.
type Watcher struct {
	mu        sync.Mutex
	subs      []*Subscription
	closed    bool
	valueOnce sync.Once
}

// Watch subscribes the field described by cfg to record. Writes made with
// origin are treated as the field's own and never trigger it.
//
//   - RefreshOn "data": any change of the record calls OnDependency.
//   - RefreshOn set to a key: changes of that key call OnDependency.
//   - RefreshOn empty: the field's own value is watched instead and the
//     first external non-empty write calls OnValue, then detaches.
func Watch(record *Record, cfg model.FieldConfig, origin string, h Handlers) *Watcher {
	w := &Watcher{}
	if record == nil {
		return w
	}

	switch refreshOn := cfg.RefreshOn; {
	case refreshOn == model.RefreshOnRecord:
		w.add(record.Subscribe(All, func(change Change) {
			if origin != "" && change.Origin == origin {
				return
			}
			if change.Key == cfg.Key && !change.Submission {
				return
			}
			w.dependency(h, change)
		}))
	case refreshOn != "":
		w.add(record.Subscribe(refreshOn, func(change Change) {
			w.dependency(h, change)
		}))
	default:
		var sub *Subscription
		sub = record.Subscribe(cfg.Key, func(change Change) {
			if change.Submission {
				return
			}
			if origin != "" && change.Origin == origin {
				return
			}
			if reconcile.IsEmpty(change.New) {
				return
			}
			w.valueOnce.Do(func() {
				sub.Unsubscribe()
				if !w.isClosed() && h.OnValue != nil {
					h.OnValue(change.New)
				}
			})
		})
		w.add(sub)
	}
	return w
}

// Close tears down every subscription. It is safe to call more than once.
func (w *Watcher) Close() {
	w.mu.Lock()
	subs := w.subs
	w.subs = nil
	w.closed = true
	w.mu.Unlock()
	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

func (w *Watcher) add(sub *Subscription) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	w.subs = append(w.subs, sub)
	w.mu.Unlock()
}

func (w *Watcher) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *Watcher) dependency(h Handlers, change Change) {
	if h.OnDependency == nil || w.isClosed() {
		return
	}
	h.OnDependency(change)
}
