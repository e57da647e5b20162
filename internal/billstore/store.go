package billstore

import (
	"errors"
	"sync"

	"github.com/mmynk/fairshare/internal/models"
)

// ErrNoBill is returned by Apply before a bill has been loaded.
var ErrNoBill = errors.New("no bill loaded")

// Op is an edit operation, typically a closure over one of the package
// functions.
type Op func(models.Bill) models.Bill

// Store holds the single bill of one editing session.
// It is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	bill   models.Bill
	loaded bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Load replaces the current bill.
func (s *Store) Load(b models.Bill) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bill = b.Clone()
	s.loaded = true
}

// Reset discards the current bill.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bill = models.Bill{}
	s.loaded = false
}

// Bill returns a copy of the current bill, if one is loaded.
func (s *Store) Bill() (models.Bill, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return models.Bill{}, false
	}
	return s.bill.Clone(), true
}

// Apply runs op against the current bill, stores the result and returns it.
func (s *Store) Apply(op Op) (models.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return models.Bill{}, ErrNoBill
	}
	s.bill = op(s.bill)
	return s.bill.Clone(), nil
}
