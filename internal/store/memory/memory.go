// Package memory provides an in-memory store.Store used by tests. It honors
// the same unit-of-work contract as the Postgres store: the state observed
// after a failed WithinTx call is exactly the state before it.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/example/marketplace/internal/domain"
	"github.com/example/marketplace/internal/store"
)

// errNegativeStock mirrors the CHECK (stock >= 0) constraint of the
// products table.
var errNegativeStock = errors.New("stock would become negative")

type state struct {
	users         map[int64]*domain.User
	refreshTokens map[int64]*domain.RefreshToken
	products      map[int64]*domain.Product
	promos        map[int64]*domain.PromoCode
	orders        map[int64]*domain.Order
	operations    []domain.UserOperation
	seq           int64
}

func newState() *state {
	return &state{
		users:         make(map[int64]*domain.User),
		refreshTokens: make(map[int64]*domain.RefreshToken),
		products:      make(map[int64]*domain.Product),
		promos:        make(map[int64]*domain.PromoCode),
		orders:        make(map[int64]*domain.Order),
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *state) clone() *state {
	c := newState()
	c.seq = s.seq
	for id, u := range s.users {
		cp := *u
		c.users[id] = &cp
	}
	for id, rt := range s.refreshTokens {
		cp := *rt
		c.refreshTokens[id] = &cp
	}
	for id, p := range s.products {
		cp := *p
		if p.SellerID != nil {
			sid := *p.SellerID
			cp.SellerID = &sid
		}
		c.products[id] = &cp
	}
	for id, p := range s.promos {
		cp := *p
		c.promos[id] = &cp
	}
	for id, o := range s.orders {
		c.orders[id] = cloneOrder(o)
	}
	c.operations = append([]domain.UserOperation(nil), s.operations...)
	return c
}

func cloneOrder(o *domain.Order) *domain.Order {
	cp := *o
	if o.PromoCodeID != nil {
		pid := *o.PromoCodeID
		cp.PromoCodeID = &pid
	}
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	return &cp
}

// Store is the in-memory implementation of store.Store.
type Store struct {
	mu sync.Mutex
	st *state
}

func NewStore() *Store {
	return &Store{st: newState()}
}

// WithinTx serializes all transactions behind one mutex and restores a
// pre-transaction snapshot when fn fails, emulating rollback.
func (m *Store) WithinTx(ctx context.Context, fn func(tx store.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.st.clone()
	if err := fn(&memTx{st: m.st}); err != nil {
		m.st = snapshot
		return err
	}
	return nil
}

type memTx struct {
	st *state
}

// ------------------------------------------------------------------
// Users
// ------------------------------------------------------------------

func (t *memTx) CreateUser(ctx context.Context, u *domain.User) error {
	u.ID = t.st.nextID()
	cp := *u
	t.st.users[u.ID] = &cp
	return nil
}

func (t *memTx) UserByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := t.st.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (t *memTx) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range t.st.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (t *memTx) LockUser(ctx context.Context, id int64) error {
	if _, ok := t.st.users[id]; !ok {
		return store.ErrNotFound
	}
	return nil
}

func (t *memTx) CreateRefreshToken(ctx context.Context, rt *domain.RefreshToken) error {
	rt.ID = t.st.nextID()
	cp := *rt
	t.st.refreshTokens[rt.ID] = &cp
	return nil
}

func (t *memTx) RefreshToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	for _, rt := range t.st.refreshTokens {
		if rt.Token == token {
			cp := *rt
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (t *memTx) DeleteRefreshToken(ctx context.Context, id int64) error {
	delete(t.st.refreshTokens, id)
	return nil
}

// ------------------------------------------------------------------
// Products
// ------------------------------------------------------------------

func (t *memTx) CreateProduct(ctx context.Context, p *domain.Product) error {
	p.ID = t.st.nextID()
	t.st.products[p.ID] = cloneProduct(p)
	return nil
}

func (t *memTx) UpdateProduct(ctx context.Context, p *domain.Product) error {
	if _, ok := t.st.products[p.ID]; !ok {
		return store.ErrNotFound
	}
	t.st.products[p.ID] = cloneProduct(p)
	return nil
}

func (t *memTx) ProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, ok := t.st.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneProduct(p), nil
}

func (t *memTx) ProductsForUpdate(ctx context.Context, ids []int64) (map[int64]*domain.Product, error) {
	out := make(map[int64]*domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := t.st.products[id]; ok {
			out[id] = cloneProduct(p)
		}
	}
	return out, nil
}

func (t *memTx) ListProducts(ctx context.Context, f store.ProductFilter) ([]*domain.Product, int, error) {
	var all []*domain.Product
	for _, p := range t.st.products {
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		if f.Category != nil && p.Category != *f.Category {
			continue
		}
		all = append(all, cloneProduct(p))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	start := f.Offset()
	if start > total {
		start = total
	}
	end := start + f.Size
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (t *memTx) AdjustStock(ctx context.Context, productID int64, delta int) error {
	p, ok := t.st.products[productID]
	if !ok {
		return store.ErrNotFound
	}
	if p.Stock+delta < 0 {
		return errNegativeStock
	}
	p.Stock += delta
	return nil
}

func cloneProduct(p *domain.Product) *domain.Product {
	cp := *p
	if p.SellerID != nil {
		sid := *p.SellerID
		cp.SellerID = &sid
	}
	return &cp
}

// ------------------------------------------------------------------
// Promo codes
// ------------------------------------------------------------------

func (t *memTx) CreatePromoCode(ctx context.Context, p *domain.PromoCode) error {
	p.ID = t.st.nextID()
	cp := *p
	t.st.promos[p.ID] = &cp
	return nil
}

func (t *memTx) PromoByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	for _, p := range t.st.promos {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (t *memTx) PromoByCodeForUpdate(ctx context.Context, code string) (*domain.PromoCode, error) {
	return t.PromoByCode(ctx, code)
}

func (t *memTx) PromoByIDForUpdate(ctx context.Context, id int64) (*domain.PromoCode, error) {
	p, ok := t.st.promos[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (t *memTx) SetPromoUses(ctx context.Context, id int64, uses int) error {
	p, ok := t.st.promos[id]
	if !ok {
		return store.ErrNotFound
	}
	p.CurrentUses = uses
	return nil
}

// ------------------------------------------------------------------
// Orders
// ------------------------------------------------------------------

func (t *memTx) CreateOrder(ctx context.Context, o *domain.Order) error {
	o.ID = t.st.nextID()
	for i := range o.Items {
		o.Items[i].ID = t.st.nextID()
		o.Items[i].OrderID = o.ID
	}
	t.st.orders[o.ID] = cloneOrder(o)
	return nil
}

func (t *memTx) OrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	o, ok := t.st.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (t *memTx) OrderByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return t.OrderByID(ctx, id)
}

func (t *memTx) HasActiveOrder(ctx context.Context, userID int64) (bool, error) {
	for _, o := range t.st.orders {
		if o.UserID == userID && o.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) UpdateOrder(ctx context.Context, o *domain.Order) error {
	cur, ok := t.st.orders[o.ID]
	if !ok {
		return store.ErrNotFound
	}
	cp := cloneOrder(o)
	cp.Items = cur.Items
	t.st.orders[o.ID] = cp
	return nil
}

func (t *memTx) ReplaceOrderItems(ctx context.Context, orderID int64, items []domain.OrderItem) error {
	o, ok := t.st.orders[orderID]
	if !ok {
		return store.ErrNotFound
	}
	o.Items = nil
	for i := range items {
		items[i].ID = t.st.nextID()
		items[i].OrderID = orderID
		o.Items = append(o.Items, items[i])
	}
	return nil
}

// ------------------------------------------------------------------
// Operation log
// ------------------------------------------------------------------

func (t *memTx) LastOperation(ctx context.Context, userID int64, op domain.OperationType) (time.Time, bool, error) {
	var (
		latest time.Time
		found  bool
	)
	for _, entry := range t.st.operations {
		if entry.UserID == userID && entry.Type == op && entry.CreatedAt.After(latest) {
			latest = entry.CreatedAt
			found = true
		}
	}
	return latest, found, nil
}

func (t *memTx) AppendOperation(ctx context.Context, userID int64, op domain.OperationType, at time.Time) error {
	t.st.operations = append(t.st.operations, domain.UserOperation{
		ID:        t.st.nextID(),
		UserID:    userID,
		Type:      op,
		CreatedAt: at,
	})
	return nil
}
