package cart

import (
	"sync"

	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one product variation in the visitor's cart.
type Line struct {
	ID          uuid.UUID `json:"id"`
	ProductID   int64     `json:"product_id"`
	VariationID int64     `json:"variation_id"`
	Quantity    int       `json:"quantity"`
}

// Event describes a single change applied to a Store.
type Event struct {
	Kind        enums.CartEventKind
	LineID      uuid.UUID
	VariationID int64
	Quantity    int
	Amount      decimal.Decimal
	Reason      enums.LineRemovalReason
}

// Snapshot is the persisted form of a Store.
type Snapshot struct {
	Lines  []Line                        `json:"lines"`
	Prices map[uuid.UUID]decimal.Decimal `json:"prices"`
}

// Store owns the cart lines and the per-line price map. Prices are never
// derived here; callers set them as variation details resolve.
type Store struct {
	mu          sync.RWMutex
	lines       []Line
	prices      map[uuid.UUID]decimal.Decimal
	subscribers map[int]func(Event)
	nextSub     int
	newID       func() uuid.UUID
}

func NewStore() *Store {
	return &Store{
		prices:      make(map[uuid.UUID]decimal.Decimal),
		subscribers: make(map[int]func(Event)),
		newID:       uuid.New,
	}
}

// Subscribe registers fn for every subsequent change and returns its cancel func.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// AddToCart merges into the line holding variationID or appends a new line.
// Stock and quantity checks are the caller's job.
func (s *Store) AddToCart(productID, variationID int64, quantity int) Line {
	s.mu.Lock()
	for i := range s.lines {
		if s.lines[i].VariationID == variationID {
			s.lines[i].Quantity += quantity
			line := s.lines[i]
			subs := s.subscribersLocked()
			s.mu.Unlock()
			emit(subs, Event{Kind: enums.CartEventQuantityChanged, LineID: line.ID, VariationID: line.VariationID, Quantity: line.Quantity})
			return line
		}
	}
	line := Line{ID: s.newID(), ProductID: productID, VariationID: variationID, Quantity: quantity}
	s.lines = append(s.lines, line)
	subs := s.subscribersLocked()
	s.mu.Unlock()
	emit(subs, Event{Kind: enums.CartEventLineAdded, LineID: line.ID, VariationID: line.VariationID, Quantity: line.Quantity})
	return line
}

// SetQuantity replaces the quantity of lineID; unknown ids are ignored.
func (s *Store) SetQuantity(lineID uuid.UUID, quantity int) bool {
	s.mu.Lock()
	idx := s.indexLocked(lineID)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.lines[idx].Quantity = quantity
	line := s.lines[idx]
	subs := s.subscribersLocked()
	s.mu.Unlock()
	emit(subs, Event{Kind: enums.CartEventQuantityChanged, LineID: line.ID, VariationID: line.VariationID, Quantity: line.Quantity})
	return true
}

// RemoveFromCart drops lineID at the user's request.
func (s *Store) RemoveFromCart(lineID uuid.UUID) bool {
	return s.remove(lineID, enums.LineRemovalUser)
}

// RemoveUnavailable drops lineID because its product no longer exists upstream.
func (s *Store) RemoveUnavailable(lineID uuid.UUID) bool {
	return s.remove(lineID, enums.LineRemovalProductUnavailable)
}

func (s *Store) remove(lineID uuid.UUID, reason enums.LineRemovalReason) bool {
	s.mu.Lock()
	idx := s.indexLocked(lineID)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	line := s.lines[idx]
	s.lines = append(s.lines[:idx:idx], s.lines[idx+1:]...)
	subs := s.subscribersLocked()
	s.mu.Unlock()
	emit(subs, Event{Kind: enums.CartEventLineRemoved, LineID: line.ID, VariationID: line.VariationID, Quantity: line.Quantity, Reason: reason})
	return true
}

// SetPriceMap upserts the subtotal for lineID. Zero marks a line about to be removed.
func (s *Store) SetPriceMap(lineID uuid.UUID, amount decimal.Decimal) {
	s.mu.Lock()
	s.prices[lineID] = amount
	subs := s.subscribersLocked()
	s.mu.Unlock()
	emit(subs, Event{Kind: enums.CartEventPriceChanged, LineID: lineID, Amount: amount})
}

func (s *Store) ClearCart() {
	s.mu.Lock()
	s.lines = nil
	s.prices = make(map[uuid.UUID]decimal.Decimal)
	subs := s.subscribersLocked()
	s.mu.Unlock()
	emit(subs, Event{Kind: enums.CartEventCleared})
}

func (s *Store) Lines() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) PriceMap() map[uuid.UUID]decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]decimal.Decimal, len(s.prices))
	for id, amount := range s.prices {
		out[id] = amount
	}
	return out
}

func (s *Store) Line(lineID uuid.UUID) (Line, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexLocked(lineID); idx >= 0 {
		return s.lines[idx], true
	}
	return Line{}, false
}

func (s *Store) LineByVariation(variationID int64) (Line, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, line := range s.lines {
		if line.VariationID == variationID {
			return line, true
		}
	}
	return Line{}, false
}

// Subtotal sums the price map. Lines whose price has not resolved count as zero.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sumPrices(s.prices)
}

// ItemCount is the total quantity across all lines.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, line := range s.lines {
		total += line.Quantity
	}
	return total
}

// Snapshot captures the store for persistence. Price entries for lines that
// are gone are not carried over.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Lines:  make([]Line, len(s.lines)),
		Prices: make(map[uuid.UUID]decimal.Decimal, len(s.prices)),
	}
	copy(snap.Lines, s.lines)
	for _, line := range s.lines {
		if amount, ok := s.prices[line.ID]; ok {
			snap.Prices[line.ID] = amount
		}
	}
	return snap
}

// Restore replaces the store contents without emitting events.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = make([]Line, len(snap.Lines))
	copy(s.lines, snap.Lines)
	s.prices = make(map[uuid.UUID]decimal.Decimal, len(snap.Prices))
	for id, amount := range snap.Prices {
		s.prices[id] = amount
	}
}

func (s *Store) indexLocked(lineID uuid.UUID) int {
	for i := range s.lines {
		if s.lines[i].ID == lineID {
			return i
		}
	}
	return -1
}

func (s *Store) subscribersLocked() []func(Event) {
	if len(s.subscribers) == 0 {
		return nil
	}
	out := make([]func(Event), 0, len(s.subscribers))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.subscribers[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func emit(subs []func(Event), evt Event) {
	for _, fn := range subs {
		fn(evt)
	}
}

// Subtotal sums the snapshot's price map.
func (s Snapshot) Subtotal() decimal.Decimal {
	return sumPrices(s.Prices)
}

// ItemCount is the total quantity across the snapshot's lines.
func (s Snapshot) ItemCount() int {
	total := 0
	for _, line := range s.Lines {
		total += line.Quantity
	}
	return total
}

func sumPrices(prices map[uuid.UUID]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, amount := range prices {
		total = total.Add(amount)
	}
	return total
}
