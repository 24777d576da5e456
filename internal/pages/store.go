package pages

import (
	"sort"
	"sync"
	"time"
)

// Store is the keyed page collection. All mutations are partial patches by
// page number under one lock; callers never replace the collection
// wholesale, which keeps concurrent merges from the detached evaluation
// path race-free.
type Store struct {
	mu    sync.RWMutex
	pages map[int]*Page
}

// NewStore creates an empty page store.
func NewStore() *Store {
	return &Store{pages: make(map[int]*Page)}
}

// Put inserts or replaces a page record.
func (s *Store) Put(p *Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[p.Number] = p.clone()
}

// Get returns a copy of the page, or false if absent.
func (s *Store) Get(number int) (*Page, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pages[number]
	if !ok {
		return nil, false
	}
	return p.clone(), true
}

// List returns copies of all pages ordered by page number.
func (s *Store) List() []*Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Page, 0, len(s.pages))
	for _, p := range s.pages {
		out = append(out, p.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// Len returns the number of pages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pages)
}

// Patch applies fn to the page under the store lock. Returns false without
// calling fn when the page does not exist. fn receives the live record and
// mutates it in place.
func (s *Store) Patch(number int, fn func(*Page)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[number]
	if !ok {
		return false
	}
	fn(p)
	p.UpdatedAt = time.Now()
	return true
}

// PatchIfGeneration applies fn only when the page exists and its generation
// still matches. Detached evaluation results use this so a merge for a page
// that was reset or re-translated in the meantime becomes a no-op.
func (s *Store) PatchIfGeneration(number, generation int, fn func(*Page)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[number]
	if !ok || p.Generation != generation {
		return false
	}
	fn(p)
	p.UpdatedAt = time.Now()
	return true
}

// Remove deletes a page.
func (s *Store) Remove(number int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pages, number)
}

// Reset replaces the whole collection, used by project load and new
// document ingestion. Generation counters restart with the new records.
func (s *Store) Reset(pages []*Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = make(map[int]*Page, len(pages))
	for _, p := range pages {
		s.pages[p.Number] = p.clone()
	}
}

// Numbers returns all page numbers in ascending order.
func (s *Store) Numbers() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nums := make([]int, 0, len(s.pages))
	for n := range s.pages {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}
