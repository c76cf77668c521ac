// Package memory provides an in-process implementation of the ledger
// store. The ledger and reconciliation service tests run against it; the
// API itself always uses the gorm store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	domainRepo "github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/sangkips/studio-ledger/pkg/apperror"
	"github.com/shopspring/decimal"
)

// LedgerStore keeps orders and receipts in memory. Each order has its own
// semaphore; a unit of work buffers its writes and applies them under the
// store mutex when it commits.
type LedgerStore struct {
	mu             sync.RWMutex
	orders         map[entity.OrderRef]entity.Billable
	receipts       map[uint]*entity.PaymentReceipt
	orderNumbers   map[string]struct{}
	receiptNumbers map[string]struct{}

	nextOrderID   map[enum.OrderKind]*atomic.Uint64
	nextReceiptID atomic.Uint64

	locksMu     sync.Mutex
	locks       map[entity.OrderRef]chan struct{}
	lockTimeout time.Duration
}

// NewLedgerStore creates an empty store. lockTimeout bounds how long a unit
// of work waits for an order held by another one.
func NewLedgerStore(lockTimeout time.Duration) *LedgerStore {
	s := &LedgerStore{
		orders:         make(map[entity.OrderRef]entity.Billable),
		receipts:       make(map[uint]*entity.PaymentReceipt),
		orderNumbers:   make(map[string]struct{}),
		receiptNumbers: make(map[string]struct{}),
		nextOrderID:    make(map[enum.OrderKind]*atomic.Uint64),
		locks:          make(map[entity.OrderRef]chan struct{}),
		lockTimeout:    lockTimeout,
	}
	for _, k := range enum.OrderKinds {
		s.nextOrderID[k] = new(atomic.Uint64)
	}
	return s
}

var _ domainRepo.LedgerRepository = (*LedgerStore)(nil)

func (s *LedgerStore) lockFor(ref entity.OrderRef) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	ch, ok := s.locks[ref]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[ref] = ch
	}
	return ch
}

func (s *LedgerStore) acquire(ctx context.Context, ref entity.OrderRef) (chan struct{}, error) {
	ch := s.lockFor(ref)
	select {
	case ch <- struct{}{}:
		return ch, nil
	default:
	}

	var timeout <-chan time.Time
	if s.lockTimeout > 0 {
		timer := time.NewTimer(s.lockTimeout)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case ch <- struct{}{}:
		return ch, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout:
		return nil, apperror.NewConcurrentModificationError(fmt.Errorf("lock wait on %s exceeded %s", ref, s.lockTimeout))
	}
}

func (s *LedgerStore) RunInTx(ctx context.Context, fn func(tx domainRepo.LedgerTx) error) error {
	tx := &ledgerTx{
		store:          s,
		held:           make(map[entity.OrderRef]chan struct{}),
		orders:         make(map[entity.OrderRef]entity.Billable),
		dirty:          make(map[entity.OrderRef]bool),
		deleted:        make(map[entity.OrderRef]bool),
		receiptNumbers: make(map[uint]string),
	}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *LedgerStore) commit(tx *ledgerTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	claim := func(taken map[string]struct{}, n *string) error {
		if n == nil {
			return nil
		}
		if _, dup := taken[*n]; dup {
			return apperror.NewConflictError("Duplicate receipt number " + *n)
		}
		if _, dup := seen[*n]; dup {
			return apperror.NewConflictError("Duplicate receipt number " + *n)
		}
		seen[*n] = struct{}{}
		return nil
	}
	written := tx.written()
	for ref, o := range written {
		if prev, ok := s.orders[ref]; ok && prev.Billing().ReceiptNumber != nil {
			continue
		}
		if err := claim(s.orderNumbers, o.Billing().ReceiptNumber); err != nil {
			return err
		}
	}
	for _, r := range tx.receipts {
		if err := claim(s.receiptNumbers, r.ReceiptNumber); err != nil {
			return err
		}
	}
	for id, n := range tx.receiptNumbers {
		if err := claim(s.receiptNumbers, &n); err != nil {
			return err
		}
		if s.receipts[id] == nil || s.receipts[id].ReceiptNumber != nil {
			return fmt.Errorf("receipt %d cannot be numbered", id)
		}
	}

	for ref, o := range written {
		if n := o.Billing().ReceiptNumber; n != nil {
			s.orderNumbers[*n] = struct{}{}
		}
		s.orders[ref] = o
	}
	for ref := range tx.deleted {
		delete(s.orders, ref)
		for id, r := range s.receipts {
			if owner, ok := r.Order(); ok && owner == ref {
				cp := *r
				cp.OrderID = nil
				s.receipts[id] = &cp
			}
		}
	}
	for _, r := range tx.receipts {
		if r.ReceiptNumber != nil {
			s.receiptNumbers[*r.ReceiptNumber] = struct{}{}
		}
		s.receipts[r.ID] = r
	}
	for id, n := range tx.receiptNumbers {
		cp := *s.receipts[id]
		num := n
		cp.ReceiptNumber = &num
		s.receipts[id] = &cp
		s.receiptNumbers[n] = struct{}{}
	}
	return nil
}

func (s *LedgerStore) GetOrder(_ context.Context, ref entity.OrderRef) (entity.Billable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[ref]
	if !ok {
		return nil, nil
	}
	return entity.CloneBillable(o), nil
}

func (s *LedgerStore) ListReceiptsByOrder(_ context.Context, ref entity.OrderRef, dir domainRepo.SortDirection) ([]entity.PaymentReceipt, error) {
	s.mu.RLock()
	var out []entity.PaymentReceipt
	for _, r := range s.receipts {
		if owner, ok := r.Order(); ok && owner == ref {
			out = append(out, *r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if dir == domainRepo.SortDesc {
			a, b = b, a
		}
		if !a.IssuedAt.Equal(b.IssuedAt) {
			return a.IssuedAt.Before(b.IssuedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (s *LedgerStore) SumReceiptsByOrder(_ context.Context, ref entity.OrderRef) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.receiptSum(ref), nil
}

func (s *LedgerStore) receiptSum(ref entity.OrderRef) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range s.receipts {
		if owner, ok := r.Order(); ok && owner == ref {
			sum = sum.Add(r.PaidAmount)
		}
	}
	return sum
}

func (s *LedgerStore) ClientRemaining(_ context.Context, clientID uint) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum := decimal.Zero
	for _, o := range s.orders {
		if b := o.Billing(); b.ClientID == clientID {
			sum = sum.Add(b.RemainingAmount())
		}
	}
	return sum, nil
}

func (s *LedgerStore) ListOrdersMissingNumber(_ context.Context, kind enum.OrderKind) ([]entity.Billable, error) {
	s.mu.RLock()
	var out []entity.Billable
	for ref, o := range s.orders {
		if ref.Kind() == kind && o.Billing().ReceiptNumber == nil {
			out = append(out, entity.CloneBillable(o))
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Billing().ID < out[j].Billing().ID })
	return out, nil
}

func (s *LedgerStore) ListReceiptsMissingNumber(_ context.Context) ([]entity.PaymentReceipt, error) {
	s.mu.RLock()
	var out []entity.PaymentReceipt
	for _, r := range s.receipts {
		if r.ReceiptNumber == nil {
			out = append(out, *r)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *LedgerStore) ListBalances(_ context.Context, kind enum.OrderKind, afterID uint, limit int) ([]domainRepo.OrderBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domainRepo.OrderBalance
	for ref, o := range s.orders {
		if ref.Kind() != kind || ref.ID() <= afterID {
			continue
		}
		b := o.Billing()
		out = append(out, domainRepo.OrderBalance{
			Ref:         ref,
			Status:      b.Status,
			TotalAmount: b.TotalAmount,
			PaidAmount:  b.PaidAmount,
			ReceiptSum:  s.receiptSum(ref),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref.ID() < out[j].Ref.ID() })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ledgerTx buffers the writes of one unit of work
type ledgerTx struct {
	store          *LedgerStore
	held           map[entity.OrderRef]chan struct{}
	orders         map[entity.OrderRef]entity.Billable
	dirty          map[entity.OrderRef]bool
	deleted        map[entity.OrderRef]bool
	receipts       []*entity.PaymentReceipt
	receiptNumbers map[uint]string
}

// written returns the orders this unit of work changed and did not delete
func (t *ledgerTx) written() map[entity.OrderRef]entity.Billable {
	out := make(map[entity.OrderRef]entity.Billable, len(t.dirty))
	for ref := range t.dirty {
		if o, ok := t.orders[ref]; ok && !t.deleted[ref] {
			out[ref] = o
		}
	}
	return out
}

func (t *ledgerTx) release() {
	for _, ch := range t.held {
		<-ch
	}
}

// pending returns the tx's working copy of an order, nil when it does not exist
func (t *ledgerTx) pending(ref entity.OrderRef) entity.Billable {
	if t.deleted[ref] {
		return nil
	}
	if o, ok := t.orders[ref]; ok {
		return o
	}
	t.store.mu.RLock()
	o, ok := t.store.orders[ref]
	t.store.mu.RUnlock()
	if !ok {
		return nil
	}
	cp := entity.CloneBillable(o)
	t.orders[ref] = cp
	return cp
}

func (t *ledgerTx) LockOrder(ctx context.Context, ref entity.OrderRef) (entity.Billable, error) {
	if _, ok := t.held[ref]; !ok {
		ch, err := t.store.acquire(ctx, ref)
		if err != nil {
			return nil, err
		}
		t.held[ref] = ch
	}
	o := t.pending(ref)
	if o == nil {
		return nil, apperror.NewOrderNotFoundError(ref.String())
	}
	return entity.CloneBillable(o), nil
}

func (t *ledgerTx) SumReceipts(_ context.Context, ref entity.OrderRef) (decimal.Decimal, error) {
	t.store.mu.RLock()
	sum := t.store.receiptSum(ref)
	t.store.mu.RUnlock()
	for _, r := range t.receipts {
		if owner, ok := r.Order(); ok && owner == ref {
			sum = sum.Add(r.PaidAmount)
		}
	}
	return sum, nil
}

func (t *ledgerTx) CreateOrder(_ context.Context, order entity.Billable) error {
	counter, ok := t.store.nextOrderID[order.Kind()]
	if !ok {
		return fmt.Errorf("unknown order kind %q", order.Kind())
	}
	b := order.Billing()
	b.ID = uint(counter.Add(1))
	b.ReceiptNumber = nil
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	ref := entity.RefOf(order)
	t.orders[ref] = entity.CloneBillable(order)
	t.dirty[ref] = true
	return nil
}

func (t *ledgerTx) AssignOrderNumber(_ context.Context, ref entity.OrderRef, number string) error {
	o := t.pending(ref)
	if o == nil {
		return apperror.NewOrderNotFoundError(ref.String())
	}
	b := o.Billing()
	if b.ReceiptNumber != nil {
		return fmt.Errorf("order %s already has a receipt number", ref)
	}
	b.ReceiptNumber = &number
	t.dirty[ref] = true
	return nil
}

func (t *ledgerTx) UpdateBalance(_ context.Context, ref entity.OrderRef, paid decimal.Decimal, status enum.OrderStatus) error {
	o := t.pending(ref)
	if o == nil {
		return apperror.NewOrderNotFoundError(ref.String())
	}
	b := o.Billing()
	b.PaidAmount = paid
	b.Status = status
	b.UpdatedAt = time.Now().UTC()
	t.dirty[ref] = true
	return nil
}

func (t *ledgerTx) CreateReceipt(_ context.Context, receipt *entity.PaymentReceipt) error {
	receipt.ID = uint(t.store.nextReceiptID.Add(1))
	receipt.ReceiptNumber = nil
	if receipt.IssuedAt.IsZero() {
		receipt.IssuedAt = time.Now().UTC()
	}
	cp := *receipt
	t.receipts = append(t.receipts, &cp)
	return nil
}

func (t *ledgerTx) AssignReceiptNumber(_ context.Context, id uint, number string) error {
	for _, r := range t.receipts {
		if r.ID == id {
			if r.ReceiptNumber != nil {
				return fmt.Errorf("receipt %d already has a number", id)
			}
			r.ReceiptNumber = &number
			return nil
		}
	}

	t.store.mu.RLock()
	existing, ok := t.store.receipts[id]
	t.store.mu.RUnlock()
	if !ok {
		return apperror.NewNotFoundError("Receipt")
	}
	if existing.ReceiptNumber != nil {
		return fmt.Errorf("receipt %d already has a number", id)
	}
	t.receiptNumbers[id] = number
	return nil
}

func (t *ledgerTx) DeleteOrder(_ context.Context, ref entity.OrderRef) error {
	if t.pending(ref) == nil {
		return apperror.NewOrderNotFoundError(ref.String())
	}
	delete(t.orders, ref)
	t.deleted[ref] = true
	return nil
}
