package lcuws

import (
	"sort"
	"sync"
)

// Callback получает собственную копию payload события.
// Числа приходят как float64: целые больше 2^53 теряют точность.
type Callback func(data map[string]any)

// Registry — topic -> колбэки в порядке подписки.
// Мьютекс держится только на время операции с картой.
type Registry struct {
	mu   sync.Mutex
	subs map[string][]Callback
}

func NewRegistry() *Registry {
	return &Registry{subs: make(map[string][]Callback)}
}

// Add — дописывает колбэк, возвращает новую длину списка.
func (r *Registry) Add(topic string, cb Callback) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[topic] = append(r.subs[topic], cb)
	return len(r.subs[topic])
}

// Remove — удаляет топик целиком, возвращает число снятых колбэков.
func (r *Registry) Remove(topic string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.subs[topic])
	delete(r.subs, topic)
	return n
}

// Lookup — копия списка, чтобы вызывать колбэки без блокировки.
func (r *Registry) Lookup(topic string) []Callback {
	r.mu.Lock()
	defer r.mu.Unlock()
	cbs := r.subs[topic]
	if len(cbs) == 0 {
		return nil
	}
	out := make([]Callback, len(cbs))
	copy(out, cbs)
	return out
}

func (r *Registry) Has(topic string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.subs[topic]
	return ok
}

func (r *Registry) Topics() []string {
	r.mu.Lock()
	out := make([]string, 0, len(r.subs))
	for t := range r.subs {
		out = append(out, t)
	}
	r.mu.Unlock()
	sort.Strings(out)
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
