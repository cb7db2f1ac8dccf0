// Package watch holds the live form record and the dependency watchers that
// turn record changes into field refreshes.
package watch

import (
	"slices"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/mohae/deepcopy"
)

// All subscribes to every key of the record.
const All = "*"

// Change describes one effective write to the record.
type Change struct {
	Key        string
	Old        any
	New        any
	Origin     string
	Submission bool
}

// Record is the live data of a form together with its submission data.
// Writes publish a Change only when the stored value actually changes. It is
// safe for concurrent use; callbacks run on the writer's goroutine after the
// record lock is released.
type Record struct {
	mu         sync.RWMutex
	data       map[string]any
	submission map[string]any
	subs       map[string]map[uint64]func(Change)
	versions   map[string]uint64
	nextID     uint64
}

// NewRecord copies data and submission into a new record.
func NewRecord(data, submission map[string]any) *Record {
	return &Record{
		data:       cloneMap(data),
		submission: cloneMap(submission),
		subs:       make(map[string]map[uint64]func(Change)),
		versions:   make(map[string]uint64),
	}
}

// Get returns the live value stored under key.
func (r *Record) Get(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.data[key]
	if !ok {
		return nil, false
	}
	return deepcopy.Copy(value), true
}

// Version counts the effective live writes made to key.
func (r *Record) Version(key string) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.versions[key]
}

// Data returns a deep copy of the live data.
func (r *Record) Data() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneMap(r.data)
}

// Submission returns a deep copy of the submission data.
func (r *Record) Submission() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneMap(r.submission)
}

// Set writes a live value with no origin.
func (r *Record) Set(key string, value any) bool {
	return r.SetFrom("", key, value)
}

// SetFrom writes a live value on behalf of origin and reports whether the
// stored value changed.
func (r *Record) SetFrom(origin, key string, value any) bool {
	return r.write(origin, key, value, false)
}

// SetSubmission writes a submission value and reports whether it changed.
func (r *Record) SetSubmission(key string, value any) bool {
	return r.write("", key, value, true)
}

func (r *Record) write(origin, key string, value any, submission bool) bool {
	value = deepcopy.Copy(value)

	r.mu.Lock()
	target := r.data
	if submission {
		target = r.submission
	}
	old, existed := target[key]
	if existed && equalValues(old, value) {
		r.mu.Unlock()
		return false
	}
	target[key] = value
	if !submission {
		r.versions[key]++
	}
	callbacks := r.callbacksLocked(key)
	r.mu.Unlock()

	change := Change{
		Key:        key,
		Old:        old,
		New:        deepcopy.Copy(value),
		Origin:     origin,
		Submission: submission,
	}
	for _, fn := range callbacks {
		fn(change)
	}
	return true
}

func (r *Record) callbacksLocked(key string) []func(Change) {
	var out []func(Change)
	for _, id := range sortedIDs(r.subs[key]) {
		out = append(out, r.subs[key][id])
	}
	if key != All {
		for _, id := range sortedIDs(r.subs[All]) {
			out = append(out, r.subs[All][id])
		}
	}
	return out
}

// Subscribe registers fn for changes of key, or of every key when key is All.
func (r *Record) Subscribe(key string, fn func(Change)) *Subscription {
	if fn == nil {
		return &Subscription{}
	}
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	if r.subs[key] == nil {
		r.subs[key] = make(map[uint64]func(Change))
	}
	r.subs[key][id] = fn
	r.mu.Unlock()

	return &Subscription{cancel: func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs[key], id)
		if len(r.subs[key]) == 0 {
			delete(r.subs, key)
		}
	}}
}

// Subscribers returns the number of active subscriptions.
func (r *Record) Subscribers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, subs := range r.subs {
		n += len(subs)
	}
	return n
}

// Subscription is returned by Record.Subscribe.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe removes the subscription. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

func equalValues(a, b any) bool {
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return map[string]any{}
	}
	out, _ := deepcopy.Copy(src).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}
	return out
}

func sortedIDs(subs map[uint64]func(Change)) []uint64 {
	ids := make([]uint64, 0, len(subs))
	for id := range subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
