package redaction

import "sync"

// Provider implements ports.SensitiveValueProvider.
// It maintains a thread-safe registry of sensitive values.
type Provider struct {
	seen   map[string]bool
	values []string
	mu     sync.RWMutex
}

// NewProvider creates a new sensitive value provider.
func NewProvider() *Provider {
	return &Provider{
		seen:   make(map[string]bool),
		values: make([]string, 0, 8),
	}
}

// Track registers a sensitive value to be protected.
func (p *Provider) Track(value string) {
	if value == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seen[value] {
		return
	}
	p.seen[value] = true
	p.values = append(p.values, value)
}

// AllValues returns all tracked sensitive values.
func (p *Provider) AllValues() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]string, len(p.values))
	copy(result, p.values)
	return result
}
