package records

import "sync"

// Holder keeps the current record set in memory and tracks the fetch and
// export busy flags. It is safe for concurrent use.
type Holder struct {
	mu        sync.RWMutex
	set       RecordSet
	fetching  bool
	exporting bool
}

// NewHolder creates an empty holder.
func NewHolder() *Holder {
	return &Holder{}
}

// Current returns a snapshot of the held record set.
func (h *Holder) Current() RecordSet {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.set.Clone()
}

// Replace swaps in a new record set. The previous set is discarded.
func (h *Holder) Replace(set RecordSet) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.set = set.Clone()
}

// Busy reports whether a fetch is in flight.
func (h *Holder) Busy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.fetching
}

// Exporting reports whether an export is in flight.
func (h *Holder) Exporting() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.exporting
}

// BeginFetch sets the fetch flag. It returns ErrBusy if a fetch is already
// running; otherwise the returned func clears the flag and must be called.
func (h *Holder) BeginFetch() (func(), error) {
	return h.begin(&h.fetching)
}

// BeginExport sets the export flag. It returns ErrBusy if an export is
// already running; otherwise the returned func clears the flag.
func (h *Holder) BeginExport() (func(), error) {
	return h.begin(&h.exporting)
}

func (h *Holder) begin(flag *bool) (func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if *flag {
		return nil, ErrBusy
	}
	*flag = true

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			*flag = false
			h.mu.Unlock()
		})
	}, nil
}
