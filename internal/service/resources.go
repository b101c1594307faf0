package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/dumpster-rentals/internal/listing"
	"github.com/nurpe/dumpster-rentals/internal/model"
	"github.com/nurpe/dumpster-rentals/internal/validation"
)

type Stores struct {
	Customers        Store[model.Customer]
	WorkAddresses    Store[model.WorkAddress]
	DumpsterStatuses Store[model.DumpsterStatus]
	Dumpsters        Store[model.Dumpster]
	Fixes            Store[model.Fix]
	Drivers          Store[model.Driver]
	Transfers        Store[model.Transfer]
	Expenses         Store[model.BusinessExpense]
	Contracts        ContractRepository
}

// Resources groups the CRUD services behind the generic listing routes.
type Resources struct {
	Customers        *Resource[model.Customer]
	WorkAddresses    *Resource[model.WorkAddress]
	DumpsterStatuses *Resource[model.DumpsterStatus]
	Dumpsters        *Resource[model.Dumpster]
	Fixes            *Resource[model.Fix]
	Drivers          *Resource[model.Driver]
	Transfers        *Resource[model.Transfer]
	Expenses         *Resource[model.BusinessExpense]
}

func NewResources(s Stores) *Resources {
	return &Resources{
		Customers: NewResource(s.Customers, ResourceOptions[model.Customer]{
			Name:   "customer",
			Fields: CustomerFields,
			SetID:  func(c *model.Customer, id uuid.UUID) { c.ID = id },
			Prepare: func(_ context.Context, c *model.Customer) error {
				// addresses are managed through their own resource
				c.WorkAddress = nil
				return nil
			},
		}),
		WorkAddresses: NewResource(s.WorkAddresses, ResourceOptions[model.WorkAddress]{
			Name:   "work address",
			Fields: WorkAddressFields,
			SetID:  func(w *model.WorkAddress, id uuid.UUID) { w.ID = id },
			Prepare: func(ctx context.Context, w *model.WorkAddress) error {
				return exists(ctx, s.Customers, w.CustomerID, "customerId")
			},
		}),
		DumpsterStatuses: NewResource(s.DumpsterStatuses, ResourceOptions[model.DumpsterStatus]{
			Name:   "dumpster status",
			Fields: DumpsterStatusFields,
			SetID:  func(d *model.DumpsterStatus, id uuid.UUID) { d.ID = id },
		}),
		Dumpsters: NewResource(s.Dumpsters, ResourceOptions[model.Dumpster]{
			Name:     "dumpster",
			Fields:   DumpsterFields,
			SetID:    func(d *model.Dumpster, id uuid.UUID) { d.ID = id },
			NoDelete: true,
			Prepare: func(ctx context.Context, d *model.Dumpster) error {
				if d.Weight.IsNegative() {
					return validation.Errors{"weight": "must be at least 0"}
				}
				d.DumpsterStatus = model.DumpsterStatus{}
				return exists(ctx, s.DumpsterStatuses, d.DumpsterStatusID, "dumpsterStatusId")
			},
		}),
		Fixes: NewResource(s.Fixes, ResourceOptions[model.Fix]{
			Name:     "fix",
			Fields:   FixFields,
			SetID:    func(f *model.Fix, id uuid.UUID) { f.ID = id },
			NoUpdate: true,
			NoDelete: true,
			Prepare: func(_ context.Context, f *model.Fix) error {
				errs := validation.Errors{}
				for field, v := range map[string]bool{
					"customAmount":         f.CustomAmount.IsNegative(),
					"landFillCost":         f.LandFillCost.IsNegative(),
					"tonsOverWeightAmount": f.TonsOverWeightAmount.IsNegative(),
					"daysOverTimeAmount":   f.DaysOverTimeAmount.IsNegative(),
				} {
					if v {
						errs[field] = "must be at least 0"
					}
				}
				if len(errs) > 0 {
					return errs
				}
				return nil
			},
		}),
		Drivers: NewResource(s.Drivers, ResourceOptions[model.Driver]{
			Name:   "driver",
			Fields: DriverFields,
			SetID:  func(d *model.Driver, id uuid.UUID) { d.ID = id },
			Prepare: func(_ context.Context, d *model.Driver) error {
				d.Transfers = nil
				return nil
			},
		}),
		Transfers: NewResource(s.Transfers, ResourceOptions[model.Transfer]{
			Name:   "transfer",
			Fields: TransferFields,
			SetID:  func(t *model.Transfer, id uuid.UUID) { t.ID = id },
			Prepare: func(ctx context.Context, t *model.Transfer) error {
				pct := t.PaymentPercentage
				if pct.IsNegative() || pct.GreaterThan(hundred) {
					return validation.Errors{"paymentPercentage": "must be between 0 and 100"}
				}
				if t.TransferDate.IsZero() {
					return validation.Errors{"transferDate": "Please enter this field"}
				}
				t.Contract, t.Driver = nil, nil
				if _, err := s.Contracts.Get(ctx, t.ContractID); err != nil {
					return fmt.Errorf("%w: contractId does not exist", ErrInvalidInput)
				}
				return exists(ctx, s.Drivers, t.DriverID, "driverId")
			},
		}),
		Expenses: NewResource(s.Expenses, ResourceOptions[model.BusinessExpense]{
			Name:   "business expense",
			Fields: ExpenseFields,
			SetID:  func(e *model.BusinessExpense, id uuid.UUID) { e.ID = id },
			Prepare: func(_ context.Context, e *model.BusinessExpense) error {
				if e.TotalAmount.IsNegative() {
					return validation.Errors{"totalAmount": "must be at least 0"}
				}
				if e.Date.IsZero() {
					return validation.Errors{"date": "Please enter this field"}
				}
				return nil
			},
		}),
	}
}

var hundred = decimal.NewFromInt(100)

func exists[T any](ctx context.Context, store Store[T], id uuid.UUID, field string) error {
	if id == uuid.Nil {
		return validation.Errors{field: "Please enter this field"}
	}
	if _, err := store.Get(ctx, id); err != nil {
		return fmt.Errorf("%w: %s does not exist", ErrInvalidInput, field)
	}
	return nil
}

var CustomerFields = listing.Fields[model.Customer]{
	"name":        func(c model.Customer) string { return c.Name },
	"taxId":       func(c model.Customer) string { return c.TaxID },
	"homeAddress": func(c model.Customer) string { return c.HomeAddress },
	"city":        func(c model.Customer) string { return c.City },
	"state":       func(c model.Customer) string { return c.State },
	"zipCode":     func(c model.Customer) string { return c.ZipCode },
	"email":       func(c model.Customer) string { return c.Email },
	"phone":       func(c model.Customer) string { return c.Phone },
}

var WorkAddressFields = listing.Fields[model.WorkAddress]{
	"addressName":  func(w model.WorkAddress) string { return w.AddressName },
	"address":      func(w model.WorkAddress) string { return w.Address },
	"addressCity":  func(w model.WorkAddress) string { return w.AddressCity },
	"addressState": func(w model.WorkAddress) string { return w.AddressState },
	"contactName":  func(w model.WorkAddress) string { return w.ContactName },
	"contactPhone": func(w model.WorkAddress) string { return w.ContactPhone },
}

var DumpsterStatusFields = listing.Fields[model.DumpsterStatus]{
	"name":        func(d model.DumpsterStatus) string { return d.Name },
	"description": func(d model.DumpsterStatus) string { return d.Description },
}

var DumpsterFields = listing.Fields[model.Dumpster]{
	"name":           func(d model.Dumpster) string { return d.Name },
	"size":           func(d model.Dumpster) string { return strconv.Itoa(d.Size) },
	"description":    func(d model.Dumpster) string { return d.Description },
	"dumpsterStatus": func(d model.Dumpster) string { return d.DumpsterStatus.Name },
}

var FixFields = listing.Fields[model.Fix]{
	"customAmount": func(f model.Fix) string { return f.CustomAmount.String() },
	"landFillCost": func(f model.Fix) string { return f.LandFillCost.String() },
	"description":  func(f model.Fix) string { return f.Description },
}

var DriverFields = listing.Fields[model.Driver]{
	"firstName":     func(d model.Driver) string { return d.FirstName },
	"lastName":      func(d model.Driver) string { return d.LastName },
	"licenseNumber": func(d model.Driver) string { return d.LicenseNumber },
	"licenseType":   func(d model.Driver) string { return d.LicenseType },
	"phone":         func(d model.Driver) string { return d.Phone },
	"email":         func(d model.Driver) string { return d.Email },
}

var TransferFields = listing.Fields[model.Transfer]{
	"transferType":  func(t model.Transfer) string { return string(t.TransferType) },
	"paymentStatus": func(t model.Transfer) string { return string(t.PaymentStatus) },
	"transferDate":  func(t model.Transfer) string { return t.TransferDate.String() },
	"driver": func(t model.Transfer) string {
		if t.Driver == nil {
			return ""
		}
		return strings.TrimSpace(t.Driver.FirstName + " " + t.Driver.LastName)
	},
	"description": func(t model.Transfer) string { return t.Description },
}

var ExpenseFields = listing.Fields[model.BusinessExpense]{
	"beneficiary":   func(e model.BusinessExpense) string { return e.Beneficiary },
	"invoice":       func(e model.BusinessExpense) string { return e.Invoice },
	"paymentMethod": func(e model.BusinessExpense) string { return string(e.PaymentMethod) },
	"specificArea":  func(e model.BusinessExpense) string { return e.SpecificArea },
	"date":          func(e model.BusinessExpense) string { return e.Date.String() },
	"description":   func(e model.BusinessExpense) string { return e.Description },
}
