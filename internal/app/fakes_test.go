package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/notify"
)

// fakeStore is an in-memory stand-in for the Postgres repositories.
// Transactions are serialized and rolled back by restoring a snapshot, which
// is at least as strict as the row locks the real store takes.
type fakeStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	bookables map[string]domain.Bookable
	tiers     map[string]domain.TicketTier
	holds     map[string]domain.Hold
	purchases map[string]domain.Purchase
	tickets   []domain.Ticket
	payments  []domain.Payment

	createPaymentErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bookables: make(map[string]domain.Bookable),
		tiers:     make(map[string]domain.TicketTier),
		holds:     make(map[string]domain.Hold),
		purchases: make(map[string]domain.Purchase),
	}
}

type fakeSnapshot struct {
	bookables map[string]domain.Bookable
	tiers     map[string]domain.TicketTier
	holds     map[string]domain.Hold
	purchases map[string]domain.Purchase
	tickets   []domain.Ticket
	payments  []domain.Payment
}

func (f *fakeStore) snapshot() fakeSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := fakeSnapshot{
		bookables: make(map[string]domain.Bookable, len(f.bookables)),
		tiers:     make(map[string]domain.TicketTier, len(f.tiers)),
		holds:     make(map[string]domain.Hold, len(f.holds)),
		purchases: make(map[string]domain.Purchase, len(f.purchases)),
		tickets:   append([]domain.Ticket(nil), f.tickets...),
		payments:  append([]domain.Payment(nil), f.payments...),
	}
	for k, v := range f.bookables {
		s.bookables[k] = v
	}
	for k, v := range f.tiers {
		s.tiers[k] = v
	}
	for k, v := range f.holds {
		s.holds[k] = v
	}
	for k, v := range f.purchases {
		s.purchases[k] = v
	}
	return s
}

func (f *fakeStore) restore(s fakeSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookables = s.bookables
	f.tiers = s.tiers
	f.holds = s.holds
	f.purchases = s.purchases
	f.tickets = s.tickets
	f.payments = s.payments
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()
	snap := f.snapshot()
	if err := fn(ctx); err != nil {
		f.restore(snap)
		return err
	}
	return nil
}

func holdKey(tierID, sessionID string) string {
	return tierID + "|" + sessionID
}

func (f *fakeStore) addBookable(b domain.Bookable) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookables[b.ID] = b
}

func (f *fakeStore) addTier(t domain.TicketTier) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tiers[t.ID] = t
}

func (f *fakeStore) addHold(h domain.Hold) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holds[holdKey(h.TierID, h.SessionID)] = h
}

func (f *fakeStore) tier(id string) domain.TicketTier {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tiers[id]
}

func (f *fakeStore) counts() (purchases, tickets, payments, holds int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.purchases), len(f.tickets), len(f.payments), len(f.holds)
}

// InventoryRepository

func (f *fakeStore) GetTierForUpdate(_ context.Context, tierID string) (domain.TicketTier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tiers[tierID]
	if !ok {
		return domain.TicketTier{}, domain.ErrTierNotFound
	}
	return t, nil
}

func (f *fakeStore) SumActiveHolds(_ context.Context, tierID, excludingSession string, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, h := range f.holds {
		if h.TierID == tierID && h.SessionID != excludingSession && h.Active(now) {
			total += h.Quantity
		}
	}
	return total, nil
}

func (f *fakeStore) DecrementRemaining(_ context.Context, tierID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tiers[tierID]
	if !ok {
		return domain.ErrTierNotFound
	}
	if t.RemainingQuantity < quantity {
		return domain.ErrInsufficientInventory
	}
	t.RemainingQuantity -= quantity
	f.tiers[tierID] = t
	return nil
}

// HoldRepository

func (f *fakeStore) PurgeExpiredHolds(_ context.Context, tierIDs []string, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	scope := make(map[string]bool, len(tierIDs))
	for _, id := range tierIDs {
		scope[id] = true
	}
	var n int64
	for k, h := range f.holds {
		if h.Active(now) {
			continue
		}
		if len(scope) > 0 && !scope[h.TierID] {
			continue
		}
		delete(f.holds, k)
		n++
	}
	return n, nil
}

func (f *fakeStore) UpsertHold(_ context.Context, hold domain.Hold) (domain.Hold, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := holdKey(hold.TierID, hold.SessionID)
	if existing, ok := f.holds[key]; ok {
		hold.ID = existing.ID
		hold.CreatedAt = existing.CreatedAt
	}
	f.holds[key] = hold
	return hold, nil
}

func (f *fakeStore) DeleteHold(_ context.Context, tierID, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.holds, holdKey(tierID, sessionID))
	return nil
}

func (f *fakeStore) ListActiveHolds(_ context.Context, bookableID, sessionID string, now time.Time) ([]domain.Hold, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Hold
	for _, h := range f.holds {
		if h.SessionID != sessionID || !h.Active(now) {
			continue
		}
		if f.tiers[h.TierID].BookableID != bookableID {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TierID < out[j].TierID })
	return out, nil
}

// CheckoutRepository

func (f *fakeStore) GetBookable(_ context.Context, bookableID string) (domain.Bookable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookables[bookableID]
	if !ok {
		return domain.Bookable{}, domain.ErrBookableNotFound
	}
	return b, nil
}

func (f *fakeStore) GetTiers(_ context.Context, bookableID string, tierIDs []string) ([]domain.TicketTier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.TicketTier
	for _, id := range tierIDs {
		if t, ok := f.tiers[id]; ok && t.BookableID == bookableID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) CreatePurchase(_ context.Context, p domain.Purchase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purchases[p.ID] = p
	return nil
}

func (f *fakeStore) CreateTickets(_ context.Context, tickets []domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickets = append(f.tickets, tickets...)
	return nil
}

func (f *fakeStore) CreatePayment(_ context.Context, p domain.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createPaymentErr != nil {
		return f.createPaymentErr
	}
	f.payments = append(f.payments, p)
	return nil
}

func (f *fakeStore) UpdatePaymentInstructions(_ context.Context, p domain.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.payments {
		if f.payments[i].ID == p.ID {
			f.payments[i] = p
			return nil
		}
	}
	return domain.ErrPaymentNotFound
}

// RefundRepository / PaymentCallbackRepository / TicketRepository

func (f *fakeStore) GetPurchase(_ context.Context, purchaseID string) (domain.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.purchases[purchaseID]
	if !ok {
		return domain.Purchase{}, domain.ErrPurchaseNotFound
	}
	return p, nil
}

func (f *fakeStore) GetPurchaseForUpdate(ctx context.Context, purchaseID string) (domain.Purchase, error) {
	return f.GetPurchase(ctx, purchaseID)
}

func (f *fakeStore) UpdateRefund(_ context.Context, p domain.Purchase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.purchases[p.ID]; !ok {
		return domain.ErrPurchaseNotFound
	}
	f.purchases[p.ID] = p
	return nil
}

func (f *fakeStore) UpdatePurchaseState(ctx context.Context, p domain.Purchase) error {
	return f.UpdateRefund(ctx, p)
}

func (f *fakeStore) GetPaymentByReferenceForUpdate(_ context.Context, provider, reference string) (domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.Provider == provider && p.ProviderReference == reference {
			return p, nil
		}
	}
	return domain.Payment{}, domain.ErrPaymentNotFound
}

func (f *fakeStore) UpdatePaymentStatus(_ context.Context, paymentID string, status domain.PaymentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.payments {
		if f.payments[i].ID == paymentID {
			f.payments[i].Status = status
			return nil
		}
	}
	return domain.ErrPaymentNotFound
}

func (f *fakeStore) ListTickets(_ context.Context, purchaseID string) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, t := range f.tickets {
		if t.PurchaseID == purchaseID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) paymentsFor(purchaseID string) []domain.Payment {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Payment
	for _, p := range f.payments {
		if p.PurchaseID == purchaseID {
			out = append(out, p)
		}
	}
	return out
}

// CatalogRepository

func (f *fakeStore) CreateBookable(_ context.Context, b domain.Bookable) error {
	f.addBookable(b)
	return nil
}

func (f *fakeStore) ListBookables(_ context.Context) ([]domain.Bookable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Bookable, 0, len(f.bookables))
	for _, b := range f.bookables {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeStore) UpdateBookableStatus(_ context.Context, bookableID string, status domain.BookableStatus) (domain.Bookable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookables[bookableID]
	if !ok {
		return domain.Bookable{}, domain.ErrBookableNotFound
	}
	b.Status = status
	f.bookables[bookableID] = b
	return b, nil
}

func (f *fakeStore) CreateTier(_ context.Context, tier domain.TicketTier) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tiers {
		if t.BookableID == tier.BookableID && t.Name == tier.Name {
			return domain.ErrTierAlreadyExists
		}
	}
	f.tiers[tier.ID] = tier
	return nil
}

func (f *fakeStore) ListTiersByBookable(_ context.Context, bookableID string) ([]domain.TicketTier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.TicketTier
	for _, t := range f.tiers {
		if t.BookableID == bookableID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (n *fakeNotifier) PurchaseCreated(_ context.Context, evt notify.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, evt)
	return n.err
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

type fakeMirror struct {
	mu       sync.Mutex
	stored   map[string][]domain.Hold
	versions map[string]int64
	getErr   error
	// afterVersion runs once the version has been read, standing in for a
	// request that lands in between.
	afterVersion func()
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{stored: make(map[string][]domain.Hold), versions: make(map[string]int64)}
}

func (m *fakeMirror) Version(_ context.Context, bookableID, sessionID string) (int64, error) {
	m.mu.Lock()
	v := m.versions[bookableID+"|"+sessionID]
	hook := m.afterVersion
	m.afterVersion = nil
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
	return v, nil
}

func (m *fakeMirror) StoreHolds(_ context.Context, bookableID, sessionID string, holds []domain.Hold, _ time.Duration, version int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := bookableID + "|" + sessionID
	if m.versions[key] != version {
		return false, nil
	}
	m.stored[key] = holds
	return true, nil
}

func (m *fakeMirror) GetHolds(_ context.Context, bookableID, sessionID string) ([]domain.Hold, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	holds, ok := m.stored[bookableID+"|"+sessionID]
	return holds, ok, nil
}

func (m *fakeMirror) DeleteHolds(_ context.Context, bookableID, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stored, bookableID+"|"+sessionID)
	m.versions[bookableID+"|"+sessionID]++
	return nil
}

func (f *fakeStore) ticketsForTier(tierID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tickets {
		if t.TierID == tierID {
			n++
		}
	}
	return n, nil
}
