package main

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kavica-app/kavica/internal/authz"
	"github.com/kavica-app/kavica/internal/catalog"
	"github.com/kavica-app/kavica/internal/location"
	"github.com/kavica-app/kavica/internal/loyalty"
	"github.com/kavica-app/kavica/internal/order"
	"github.com/kavica-app/kavica/internal/profile"
)

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	log.SetOutput(io.Discard)
}

// setUser plays the part of the JWT middleware in tests.
func setUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

//
// ----- in-memory stubs -----
//

type stubOrderRepo struct {
	orders          map[string]*order.Order
	items           map[string][]order.Item
	lastPendingLocs []string
	pendingCalled   bool
	pending         map[string][]order.PendingOrder // card code -> rows
	finalized       []string
	finalizeErr     error
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		orders:  make(map[string]*order.Order),
		items:   make(map[string][]order.Item),
		pending: make(map[string][]order.PendingOrder),
	}
}

func (s *stubOrderRepo) Create(_ context.Context, o *order.Order, items []order.Item) error {
	cp := *o
	cp.CreatedAt = time.Now().UTC()
	s.orders[o.ID] = &cp
	s.items[o.ID] = append([]order.Item(nil), items...)
	return nil
}

func (s *stubOrderRepo) GetByID(_ context.Context, id string) (*order.Order, []order.Item, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, nil, order.ErrNotFound
	}
	return o, s.items[id], nil
}

func (s *stubOrderRepo) ListByUser(_ context.Context, userID string, _ int) ([]order.Order, error) {
	var out []order.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubOrderRepo) ListPending(_ context.Context, locationIDs []string, _ int) ([]order.Order, error) {
	s.lastPendingLocs = locationIDs
	s.pendingCalled = true
	var out []order.Order
	for _, o := range s.orders {
		if o.Status != order.StatusCreated {
			continue
		}
		if locationIDs == nil {
			out = append(out, *o)
			continue
		}
		for _, id := range locationIDs {
			if o.LocationID == id {
				out = append(out, *o)
				break
			}
		}
	}
	return out, nil
}

func (s *stubOrderRepo) PendingForPickup(_ context.Context, cardCode string) ([]order.PendingOrder, error) {
	return s.pending[cardCode], nil
}

func (s *stubOrderRepo) FinalizeAtPickup(_ context.Context, orderID, cardCode string) error {
	if s.finalizeErr != nil {
		return s.finalizeErr
	}
	s.finalized = append(s.finalized, orderID)
	if o, ok := s.orders[orderID]; ok {
		o.Status = order.StatusPickedUp
	}
	// the customer's pending set shrinks once an order is finalized
	rows := s.pending[cardCode]
	var kept []order.PendingOrder
	for _, r := range rows {
		if r.OrderID != orderID {
			kept = append(kept, r)
		}
	}
	s.pending[cardCode] = kept
	return nil
}

type stubCatalogRepo struct {
	categories []catalog.MenuCategory
	items      map[string]*catalog.MenuItem
}

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{items: make(map[string]*catalog.MenuItem)}
}

func (s *stubCatalogRepo) ListCategories(context.Context) ([]catalog.MenuCategory, error) {
	return s.categories, nil
}

func (s *stubCatalogRepo) CreateCategory(_ context.Context, c *catalog.MenuCategory) error {
	s.categories = append(s.categories, *c)
	return nil
}

func (s *stubCatalogRepo) RenameCategory(_ context.Context, id, name string) error {
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories[i].Name = name
			return nil
		}
	}
	return catalog.ErrNotFound
}

func (s *stubCatalogRepo) ListItems(_ context.Context, activeOnly bool) ([]catalog.MenuItem, error) {
	var out []catalog.MenuItem
	for _, m := range s.items {
		if activeOnly && !m.Active {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (s *stubCatalogRepo) ItemsByIDs(_ context.Context, ids []string) ([]catalog.MenuItem, error) {
	var out []catalog.MenuItem
	for _, id := range ids {
		if m, ok := s.items[id]; ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *stubCatalogRepo) CreateItem(_ context.Context, m *catalog.MenuItem) error {
	cp := *m
	s.items[m.ID] = &cp
	return nil
}

func (s *stubCatalogRepo) UpdateItem(_ context.Context, m *catalog.MenuItem) error {
	if _, ok := s.items[m.ID]; !ok {
		return catalog.ErrNotFound
	}
	cp := *m
	s.items[m.ID] = &cp
	return nil
}

func (s *stubCatalogRepo) SetItemActive(_ context.Context, id string, active bool) error {
	m, ok := s.items[id]
	if !ok {
		return catalog.ErrNotFound
	}
	m.Active = active
	return nil
}

type stubLocationRepo struct {
	locations map[string]*location.Location
}

func newStubLocationRepo(ids ...string) *stubLocationRepo {
	s := &stubLocationRepo{locations: make(map[string]*location.Location)}
	for _, id := range ids {
		s.locations[id] = &location.Location{ID: id, Name: "Loc " + id, IsActive: true}
	}
	return s
}

func (s *stubLocationRepo) List(context.Context) ([]location.Location, error) {
	var out []location.Location
	for _, l := range s.locations {
		out = append(out, *l)
	}
	return out, nil
}

func (s *stubLocationRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := s.locations[id]
	return ok, nil
}

func (s *stubLocationRepo) Create(_ context.Context, l *location.Location) error {
	cp := *l
	s.locations[l.ID] = &cp
	return nil
}

func (s *stubLocationRepo) Update(_ context.Context, l *location.Location) error {
	cur, ok := s.locations[l.ID]
	if !ok {
		return location.ErrNotFound
	}
	if l.Name != "" {
		cur.Name = l.Name
	}
	cur.Address = l.Address
	cur.City = l.City
	return nil
}

func (s *stubLocationRepo) SetActive(_ context.Context, id string, active bool) error {
	l, ok := s.locations[id]
	if !ok {
		return location.ErrNotFound
	}
	l.IsActive = active
	return nil
}

type stubLoyaltyRepo struct {
	accounts map[string]*loyalty.Account // by user id
	ledgers  map[string][]loyalty.LedgerEntry
	settings loyalty.Settings
	updated  *loyalty.Settings
}

func newStubLoyaltyRepo() *stubLoyaltyRepo {
	return &stubLoyaltyRepo{
		accounts: make(map[string]*loyalty.Account),
		ledgers:  make(map[string][]loyalty.LedgerEntry),
		settings: loyalty.Settings{PointsPerEur: 1, EurPer100Points: 5},
	}
}

func (s *stubLoyaltyRepo) CreateAccount(_ context.Context, userID string) (*loyalty.Account, error) {
	a := &loyalty.Account{ID: "acct-" + userID, UserID: userID, CardCode: loyalty.NewCardCode()}
	s.accounts[userID] = a
	return a, nil
}

func (s *stubLoyaltyRepo) AccountByUser(_ context.Context, userID string) (*loyalty.Account, error) {
	a, ok := s.accounts[userID]
	if !ok {
		return nil, loyalty.ErrNotFound
	}
	return a, nil
}

func (s *stubLoyaltyRepo) LedgerByUser(_ context.Context, userID string, _ int) ([]loyalty.LedgerEntry, error) {
	return s.ledgers[userID], nil
}

func (s *stubLoyaltyRepo) Settings(context.Context) (*loyalty.Settings, error) {
	cp := s.settings
	return &cp, nil
}

func (s *stubLoyaltyRepo) UpdateSettings(_ context.Context, set loyalty.Settings, updatedBy string) error {
	set.UpdatedBy = updatedBy
	s.settings = set
	s.updated = &set
	return nil
}

type stubAuthzRepo struct {
	roles     map[string][]authz.Role
	locations map[string][]string
	granted   map[string][]authz.Role
	assigned  map[string][]string
	admins    []authz.AdminListing
}

func newStubAuthzRepo() *stubAuthzRepo {
	return &stubAuthzRepo{
		roles:     make(map[string][]authz.Role),
		locations: make(map[string][]string),
		granted:   make(map[string][]authz.Role),
		assigned:  make(map[string][]string),
	}
}

func (s *stubAuthzRepo) RolesOf(_ context.Context, userID string) ([]authz.Role, error) {
	return s.roles[userID], nil
}

func (s *stubAuthzRepo) LocationsOf(_ context.Context, userID string) ([]string, error) {
	return s.locations[userID], nil
}

func (s *stubAuthzRepo) GrantRole(_ context.Context, userID string, role authz.Role) error {
	s.granted[userID] = append(s.granted[userID], role)
	s.roles[userID] = append(s.roles[userID], role)
	return nil
}

func (s *stubAuthzRepo) AssignLocation(_ context.Context, adminUserID, locationID string) error {
	s.assigned[adminUserID] = append(s.assigned[adminUserID], locationID)
	return nil
}

func (s *stubAuthzRepo) ListAdmins(context.Context) ([]authz.AdminListing, error) {
	return s.admins, nil
}

type stubProfileRepo struct {
	byEmail map[string]*profile.Profile
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{byEmail: make(map[string]*profile.Profile)}
}

func (s *stubProfileRepo) Create(_ context.Context, p *profile.Profile) error {
	if _, ok := s.byEmail[p.Email]; ok {
		return profile.ErrAlreadyExist
	}
	cp := *p
	s.byEmail[p.Email] = &cp
	return nil
}

func (s *stubProfileRepo) GetByID(_ context.Context, userID string) (*profile.Profile, error) {
	for _, p := range s.byEmail {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, profile.ErrNotFound
}

func (s *stubProfileRepo) GetByEmail(_ context.Context, email string) (*profile.Profile, error) {
	p, ok := s.byEmail[email]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return p, nil
}
