package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/dumpster-rentals/internal/invoice"
	"github.com/nurpe/dumpster-rentals/internal/model"
)

var (
	admin   = model.Principal{UserID: uuid.New(), Username: "admin", Role: model.RoleAdmin, TokenID: "t-admin"}
	manager = model.Principal{UserID: uuid.New(), Username: "manager", Role: model.RoleManager}
	viewer  = model.Principal{UserID: uuid.New(), Username: "viewer", Role: model.RoleUser}
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type memStore[T any] struct {
	mu    sync.Mutex
	items []T
	id    func(T) uuid.UUID
	setID func(*T, uuid.UUID)
}

func newMemStore[T any](id func(T) uuid.UUID, setID func(*T, uuid.UUID), items ...T) *memStore[T] {
	return &memStore[T]{items: items, id: id, setID: setID}
}

func (m *memStore[T]) List(context.Context) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]T(nil), m.items...), nil
}

func (m *memStore[T]) Get(_ context.Context, id uuid.UUID) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if m.id(item) == id {
			found := item
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore[T]) Create(_ context.Context, item *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.id(*item) == uuid.Nil {
		m.setID(item, uuid.New())
	}
	m.items = append(m.items, *item)
	return nil
}

func (m *memStore[T]) Update(_ context.Context, item *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.id(m.items[i]) == m.id(*item) {
			m.items[i] = *item
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memStore[T]) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.id(m.items[i]) == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func customerStore(items ...model.Customer) *memStore[model.Customer] {
	return newMemStore(func(c model.Customer) uuid.UUID { return c.ID }, func(c *model.Customer, id uuid.UUID) { c.ID = id }, items...)
}

func workAddressStore(items ...model.WorkAddress) *memStore[model.WorkAddress] {
	return newMemStore(func(w model.WorkAddress) uuid.UUID { return w.ID }, func(w *model.WorkAddress, id uuid.UUID) { w.ID = id }, items...)
}

func dumpsterStore(items ...model.Dumpster) *memStore[model.Dumpster] {
	return newMemStore(func(d model.Dumpster) uuid.UUID { return d.ID }, func(d *model.Dumpster, id uuid.UUID) { d.ID = id }, items...)
}

func statusStore(items ...model.DumpsterStatus) *memStore[model.DumpsterStatus] {
	return newMemStore(func(d model.DumpsterStatus) uuid.UUID { return d.ID }, func(d *model.DumpsterStatus, id uuid.UUID) { d.ID = id }, items...)
}

func fixStore(items ...model.Fix) *memStore[model.Fix] {
	return newMemStore(func(f model.Fix) uuid.UUID { return f.ID }, func(f *model.Fix, id uuid.UUID) { f.ID = id }, items...)
}

type fakeUsers struct {
	*memStore[model.User]
}

func newFakeUsers(items ...model.User) *fakeUsers {
	return &fakeUsers{newMemStore(func(u model.User) uuid.UUID { return u.ID }, func(u *model.User, id uuid.UUID) { u.ID = id }, items...)}
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.items {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// fakeContracts records which column set each edit wrote.
type fakeContracts struct {
	mu        sync.Mutex
	contracts map[uuid.UUID]*model.Contract
	next      int64
	entered   chan struct{}
	block     chan struct{}

	paymentWrites int
	dataWrites    int
	created       []model.Contract
}

func newFakeContracts(contracts ...model.Contract) *fakeContracts {
	f := &fakeContracts{contracts: make(map[uuid.UUID]*model.Contract)}
	for i := range contracts {
		c := contracts[i]
		f.contracts[c.ID] = &c
		if c.InvoiceNumber > f.next {
			f.next = c.InvoiceNumber
		}
	}
	return f
}

func (f *fakeContracts) List(context.Context) ([]model.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Contract, 0, len(f.contracts))
	for _, c := range f.contracts {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeContracts) Get(_ context.Context, id uuid.UUID) (*model.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeContracts) GetFixContract(_ context.Context, id uuid.UUID) (*model.FixContract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.contracts {
		if c.FixContract.ID == id {
			fc := c.FixContract
			return &fc, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeContracts) Create(_ context.Context, c *model.Contract) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, *c)
	if c.CustomerID == uuid.Nil {
		c.CustomerID = uuid.New()
		c.Customer.ID = c.CustomerID
	}
	if c.WorkAddressID == uuid.Nil {
		c.WorkAddressID = uuid.New()
		c.WorkAddress.ID = c.WorkAddressID
		c.WorkAddress.CustomerID = c.CustomerID
	}
	f.next++
	c.ID = uuid.New()
	c.InvoiceNumber = f.next
	c.FixContract.ID = uuid.New()
	c.FixContract.ContractID = c.ID
	stored := *c
	f.contracts[c.ID] = &stored
	return c.ID, nil
}

func (f *fakeContracts) UpdatePayments(_ context.Context, fixContractID uuid.UUID, u model.PaymentsUpdate) error {
	if f.block != nil {
		f.entered <- struct{}{}
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.contracts {
		if c.FixContract.ID != fixContractID {
			continue
		}
		fc := &c.FixContract
		fc.MadePaymentCustomAmount = u.MadePaymentCustomAmount
		fc.MadePaymentLandFillCost = u.MadePaymentLandFillCost
		fc.MadePaymentTonsOverWeightAmount = u.MadePaymentTonsOverWeightAmount
		fc.MadePaymentDaysOverTimeAmount = u.MadePaymentDaysOverTimeAmount
		fc.OverageState = u.OverageState
		if u.PaymentTonsOverWeightAmount != nil {
			fc.PaymentTonsOverWeightAmount = *u.PaymentTonsOverWeightAmount
		}
		if u.PaymentDaysOverTimeAmount != nil {
			fc.PaymentDaysOverTimeAmount = *u.PaymentDaysOverTimeAmount
		}
		f.paymentWrites++
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeContracts) UpdateData(_ context.Context, contractID uuid.UUID, u model.DataUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contracts[contractID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.StartDate = u.StartDate
	c.EndDate = u.EndDate
	c.RemovalDate = u.RemovalDate
	c.ContractStatus = u.ContractStatus
	c.ContractPaymentStatus = u.ContractPaymentStatus
	c.Description = u.Description
	f.dataWrites++
	return nil
}

type fakeRenderer struct {
	calls int
}

func (r *fakeRenderer) Invoice(c model.Contract, b invoice.Breakdown, _ time.Time) ([]byte, error) {
	r.calls++
	return []byte("%PDF-" + invoice.Number(c.InvoiceNumber) + "-" + b.TotalDue.String()), nil
}

type fakeArchive struct {
	names []string
	err   error
}

func (a *fakeArchive) PutInvoice(_ context.Context, name string, _ []byte) error {
	a.names = append(a.names, name)
	return a.err
}

// catalog is a small consistent data set shared by contract and wizard tests.
type catalog struct {
	customer    model.Customer
	address     model.WorkAddress
	lonely      model.Customer
	dumpster    model.Dumpster
	fix         model.Fix
	customers   *memStore[model.Customer]
	addresses   *memStore[model.WorkAddress]
	dumpsters   *memStore[model.Dumpster]
	fixes       *memStore[model.Fix]
	contracts   *fakeContracts
	renderer    *fakeRenderer
	archive     *fakeArchive
	fixedNow    time.Time
	contractSvc *ContractService
}

func newCatalog() *catalog {
	c := &catalog{}
	c.customer = model.Customer{ID: uuid.New(), Name: "Acme Builders", TaxID: "12-345", HomeAddress: "1 Main St", Email: "ops@acme.test", Phone: "555-0100"}
	c.address = model.WorkAddress{ID: uuid.New(), CustomerID: c.customer.ID, AddressName: "Site A", Address: "9 Elm St", AddressCity: "Austin"}
	c.customer.WorkAddress = []model.WorkAddress{c.address}
	c.lonely = model.Customer{ID: uuid.New(), Name: "Solo", TaxID: "99", HomeAddress: "2 Oak", Email: "solo@x.test", Phone: "555-0101"}
	c.dumpster = model.Dumpster{ID: uuid.New(), Name: "RD-20-001", Size: 20}
	c.fix = model.Fix{ID: uuid.New(), CustomAmount: dec("400"), LandFillCost: dec("150"), TonsOverWeightAmount: dec("45"), DaysOverTimeAmount: dec("20"), Description: "20yd standard"}

	c.customers = customerStore(c.customer, c.lonely)
	c.addresses = workAddressStore(c.address)
	c.dumpsters = dumpsterStore(c.dumpster)
	c.fixes = fixStore(c.fix)
	c.contracts = newFakeContracts()
	c.renderer = &fakeRenderer{}
	c.archive = &fakeArchive{}
	c.fixedNow = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	c.contractSvc = NewContractService(ContractDeps{
		Contracts:     c.contracts,
		Customers:     c.customers,
		WorkAddresses: c.addresses,
		Dumpsters:     c.dumpsters,
		Fixes:         c.fixes,
		Renderer:      c.renderer,
		Archive:       c.archive,
		Now:           func() time.Time { return c.fixedNow },
	})
	return c
}
