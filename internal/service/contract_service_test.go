package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/dumpster-rentals/internal/listing"
	"github.com/nurpe/dumpster-rentals/internal/model"
	"github.com/nurpe/dumpster-rentals/internal/validation"
	"github.com/nurpe/dumpster-rentals/internal/wizard"
)

func existingSubmission(c *catalog) wizard.Submission {
	return wizard.Submission{
		Customer:    wizard.CustomerDraft{ID: wizard.RefTo(c.customer.ID), Name: c.customer.Name},
		WorkAddress: wizard.WorkAddressDraft{ID: wizard.RefTo(c.address.ID), CustomerID: wizard.RefTo(c.customer.ID)},
		DumpsterID:  c.dumpster.ID,
		FixID:       c.fix.ID,
		BaseWeight:  dec("2"),
		StartDate:   model.NewDate(2024, 1, 1),
		EndDate:     model.NewDate(2024, 1, 10),
		Description: " roll-off ",
	}
}

func seedContract(t *testing.T, c *catalog) *ContractView {
	t.Helper()
	view, err := c.contractSvc.Create(context.Background(), manager, existingSubmission(c))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return view
}

func TestCreate_ExistingCustomerAndAddress(t *testing.T) {
	c := newCatalog()
	view := seedContract(t, c)

	if view.InvoiceNo != "000001" {
		t.Errorf("invoice number: %s", view.InvoiceNo)
	}
	if view.ContractStatus != model.ContractStatusActive || view.ContractPaymentStatus != model.PaymentStatusPending {
		t.Errorf("unexpected default statuses %s/%s", view.ContractStatus, view.ContractPaymentStatus)
	}
	if view.Description != "roll-off" {
		t.Errorf("description not trimmed: %q", view.Description)
	}
	if view.FixContract.OverageState != model.OverageNotApplicable {
		t.Errorf("new contracts start with no overage decision, got %s", view.FixContract.OverageState)
	}
	if !view.Amounts.TotalDue.Equal(dec("550")) || view.Amounts.IncludedDays != 9 {
		t.Errorf("unexpected amounts %+v", view.Amounts)
	}
	if view.PDFURL != "/contract/"+view.ID.String()+"/pdf" {
		t.Errorf("pdf url: %s", view.PDFURL)
	}
	created := c.contracts.created[0]
	if created.CustomerID != c.customer.ID || created.WorkAddressID != c.address.ID {
		t.Errorf("existing references must be reused: %+v", created)
	}
}

func TestCreate_NewCustomerAndAddress(t *testing.T) {
	c := newCatalog()
	sub := existingSubmission(c)
	sub.Customer = wizard.CustomerDraft{Name: "New Co", TaxID: "1", HomeAddress: "3 Pine", Email: "new@co.test", Phone: "555"}
	sub.WorkAddress = wizard.WorkAddressDraft{AddressName: "Yard", Address: "4 Pine"}

	if _, err := c.contractSvc.Create(context.Background(), manager, sub); err != nil {
		t.Fatalf("create: %v", err)
	}
	created := c.contracts.created[0]
	if created.CustomerID != uuid.Nil || created.Customer.Name != "New Co" {
		t.Errorf("new customer must be passed for insertion: %+v", created.Customer)
	}
	if created.WorkAddressID != uuid.Nil || created.WorkAddress.CustomerID != uuid.Nil || created.WorkAddress.AddressName != "Yard" {
		t.Errorf("new work address must be passed for insertion: %+v", created.WorkAddress)
	}
}

func TestCreate_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *catalog, s *wizard.Submission)
		who     model.Principal
		wantErr error
		field   string
	}{
		{
			name:    "viewer",
			mutate:  func(*catalog, *wizard.Submission) {},
			who:     viewer,
			wantErr: ErrPermissionDenied,
		},
		{
			name: "invalid new customer email",
			mutate: func(_ *catalog, s *wizard.Submission) {
				s.Customer = wizard.CustomerDraft{Name: "X", TaxID: "1", HomeAddress: "a", Email: "nope", Phone: "1"}
				s.WorkAddress = wizard.WorkAddressDraft{AddressName: "a", Address: "b"}
			},
			who:   manager,
			field: "email",
		},
		{
			name: "address of another customer",
			mutate: func(c *catalog, s *wizard.Submission) {
				s.Customer = wizard.CustomerDraft{ID: wizard.RefTo(c.lonely.ID)}
			},
			who:     manager,
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown dumpster",
			mutate:  func(_ *catalog, s *wizard.Submission) { s.DumpsterID = uuid.New() },
			who:     manager,
			wantErr: ErrInvalidInput,
		},
		{
			name:   "negative base weight",
			mutate: func(_ *catalog, s *wizard.Submission) { s.BaseWeight = dec("-1") },
			who:    manager,
			field:  "baseWeight",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCatalog()
			sub := existingSubmission(c)
			tt.mutate(c, &sub)
			_, err := c.contractSvc.Create(context.Background(), tt.who, sub)
			if tt.field != "" {
				var fieldErrs validation.Errors
				if !errors.As(err, &fieldErrs) || fieldErrs[tt.field] == "" {
					t.Fatalf("expected field error on %s, got %v", tt.field, err)
				}
			} else if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if len(c.contracts.created) != 0 {
				t.Fatalf("nothing must be persisted on rejection")
			}
		})
	}
}

func ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func TestEditPayments_OverageStates(t *testing.T) {
	tests := []struct {
		name      string
		state     model.OverageState
		tons      *decimal.Decimal
		days      *decimal.Decimal
		wantTons  string
		wantDays  string
		wantTotal string
	}{
		{"not applicable keeps recorded", model.OverageNotApplicable, ptr(dec("9")), ptr(dec("9")), "1", "2", "635"},
		{"applicable zero", model.OverageApplicableZero, ptr(dec("9")), nil, "0", "0", "550"},
		{"applicable quantity", model.OverageApplicableQuantity, ptr(dec("1.5")), ptr(dec("0")), "1.5", "0", "617.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCatalog()
			view := seedContract(t, c)
			stored := c.contracts.contracts[view.ID]
			stored.FixContract.PaymentTonsOverWeightAmount = dec("1")
			stored.FixContract.PaymentDaysOverTimeAmount = dec("2")

			got, err := c.contractSvc.EditPayments(context.Background(), manager, EditPaymentsInput{
				FixContractID:               view.FixContract.ID,
				MadePaymentCustomAmount:     true,
				OverageState:                tt.state,
				PaymentTonsOverWeightAmount: tt.tons,
				PaymentDaysOverTimeAmount:   tt.days,
			})
			if err != nil {
				t.Fatal(err)
			}
			fc := got.FixContract
			if !fc.PaymentTonsOverWeightAmount.Equal(dec(tt.wantTons)) || !fc.PaymentDaysOverTimeAmount.Equal(dec(tt.wantDays)) {
				t.Errorf("quantities: tons %s days %s", fc.PaymentTonsOverWeightAmount, fc.PaymentDaysOverTimeAmount)
			}
			if fc.OverageState != tt.state || !fc.MadePaymentCustomAmount || fc.MadePaymentLandFillCost {
				t.Errorf("flags/state not written: %+v", fc)
			}
			if !got.Amounts.TotalDue.Equal(dec(tt.wantTotal)) {
				t.Errorf("total due: got %s want %s", got.Amounts.TotalDue, tt.wantTotal)
			}
		})
	}
}

func TestEditPayments_RejectsBadQuantities(t *testing.T) {
	c := newCatalog()
	view := seedContract(t, c)

	_, err := c.contractSvc.EditPayments(context.Background(), manager, EditPaymentsInput{
		FixContractID:               view.FixContract.ID,
		OverageState:                model.OverageApplicableQuantity,
		PaymentTonsOverWeightAmount: ptr(dec("-1")),
	})
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) || fieldErrs["paymentTonsOverWeightAmount"] == "" || fieldErrs["paymentDaysOverTimeAmount"] == "" {
		t.Fatalf("expected both quantity errors, got %v", err)
	}

	_, err = c.contractSvc.EditPayments(context.Background(), manager, EditPaymentsInput{FixContractID: view.FixContract.ID, OverageState: "MAYBE"})
	if !errors.As(err, &fieldErrs) || fieldErrs["overageState"] == "" {
		t.Fatalf("expected overageState error, got %v", err)
	}
	if c.contracts.paymentWrites != 0 {
		t.Fatalf("rejected edits must not write")
	}
}

func TestEditForms_TouchOnlyTheirOwnColumns(t *testing.T) {
	c := newCatalog()
	view := seedContract(t, c)
	before := *c.contracts.contracts[view.ID]

	afterPayments, err := c.contractSvc.EditPayments(context.Background(), manager, EditPaymentsInput{
		FixContractID:           view.FixContract.ID,
		MadePaymentLandFillCost: true,
		OverageState:            model.OverageApplicableZero,
	})
	if err != nil {
		t.Fatal(err)
	}
	if c.contracts.paymentWrites != 1 || c.contracts.dataWrites != 0 {
		t.Fatalf("edit payments wrote %d payment / %d data updates", c.contracts.paymentWrites, c.contracts.dataWrites)
	}
	if !afterPayments.StartDate.Equal(before.StartDate.Time) || afterPayments.ContractStatus != before.ContractStatus || afterPayments.Description != before.Description {
		t.Fatalf("edit payments changed contract data")
	}

	removal := "2024-01-12"
	afterData, err := c.contractSvc.EditData(context.Background(), manager, EditDataInput{
		ContractID:            view.ID,
		StartDate:             "2024-01-02",
		EndDate:               "2024-01-11",
		RemovalDate:           &removal,
		ContractStatus:        model.ContractStatusInactive,
		ContractPaymentStatus: model.PaymentStatusPaid,
		Description:           "done",
	})
	if err != nil {
		t.Fatal(err)
	}
	if c.contracts.paymentWrites != 1 || c.contracts.dataWrites != 1 {
		t.Fatalf("edit data wrote %d payment / %d data updates", c.contracts.paymentWrites, c.contracts.dataWrites)
	}
	if afterData.FixContract != afterPayments.FixContract {
		t.Fatalf("edit data changed payment fields")
	}
	if afterData.RemovalDate == nil || afterData.RemovalDate.String() != removal || afterData.ContractStatus != model.ContractStatusInactive {
		t.Fatalf("edit data not applied: %+v", afterData.Contract)
	}
}

func TestEditData_Dates(t *testing.T) {
	empty := ""
	bad := "12/01/2024"
	trailing := "2024-01-09Tgarbage"
	tests := []struct {
		name        string
		start       string
		removal     *string
		wantField   string
		wantRemoval bool
	}{
		{"null clears removal", "2024-01-02", nil, "", false},
		{"empty clears removal", "2024-01-02", &empty, "", false},
		{"malformed removal is rejected", "2024-01-02", &bad, "removalDate", false},
		{"malformed start is rejected", "2024/01/02", nil, "startDate", false},
		{"trailing text after removal is rejected", "2024-01-02", &trailing, "removalDate", false},
		{"trailing text after start is rejected", "2024-01-02 not a time", nil, "startDate", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCatalog()
			view := seedContract(t, c)
			previous := model.NewDate(2024, 1, 5)
			c.contracts.contracts[view.ID].RemovalDate = &previous

			got, err := c.contractSvc.EditData(context.Background(), manager, EditDataInput{
				ContractID:            view.ID,
				StartDate:             tt.start,
				EndDate:               "2024-01-10",
				RemovalDate:           tt.removal,
				ContractStatus:        model.ContractStatusActive,
				ContractPaymentStatus: model.PaymentStatusPartial,
			})
			if tt.wantField != "" {
				var fieldErrs validation.Errors
				if !errors.As(err, &fieldErrs) || fieldErrs[tt.wantField] == "" {
					t.Fatalf("expected %s error, got %v", tt.wantField, err)
				}
				if c.contracts.contracts[view.ID].RemovalDate == nil {
					t.Fatalf("a rejected edit must not clear the stored removal date")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got.RemovalDate != nil {
				t.Fatalf("expected removal date cleared, got %v", got.RemovalDate)
			}
		})
	}
}

func TestEditPayments_InFlight(t *testing.T) {
	c := newCatalog()
	view := seedContract(t, c)
	c.contracts.entered = make(chan struct{})
	c.contracts.block = make(chan struct{})
	in := EditPaymentsInput{FixContractID: view.FixContract.ID, OverageState: model.OverageNotApplicable}

	done := make(chan error, 1)
	go func() {
		_, err := c.contractSvc.EditPayments(context.Background(), manager, in)
		done <- err
	}()
	<-c.contracts.entered

	_, err := c.contractSvc.EditPayments(context.Background(), manager, in)
	close(c.contracts.block)
	if !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("expected ErrSubmissionInFlight while first edit runs, got %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("first edit failed: %v", err)
	}
	if c.contracts.paymentWrites != 1 {
		t.Fatalf("expected exactly one write, got %d", c.contracts.paymentWrites)
	}
}

func TestInvoicePDF_ArchivesCopy(t *testing.T) {
	c := newCatalog()
	view := seedContract(t, c)

	file, err := c.contractSvc.InvoicePDF(context.Background(), viewer, view.ID)
	if err != nil {
		t.Fatal(err)
	}
	if file.FileName != "invoice-000001.pdf" || string(file.Content) != "%PDF-000001-550" {
		t.Fatalf("unexpected file %s %q", file.FileName, file.Content)
	}
	if len(c.archive.names) != 1 || c.archive.names[0] != file.FileName {
		t.Fatalf("expected archive copy, got %v", c.archive.names)
	}

	c.archive.err = errors.New("bucket offline")
	if _, err := c.contractSvc.InvoicePDF(context.Background(), viewer, view.ID); err != nil {
		t.Fatalf("archive failure must not fail the download: %v", err)
	}
	if _, err := c.contractSvc.InvoicePDF(context.Background(), viewer, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestContractPage_Search(t *testing.T) {
	c := newCatalog()
	seedContract(t, c)
	seedContract(t, c)

	page, err := c.contractSvc.Page(context.Background(), viewer, listing.Query{Page: 1, Limit: 1, Search: "acme", Field: "customerName"})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 || len(page.Data) != 1 || page.TotalPages != 2 {
		t.Fatalf("unexpected page %+v", page)
	}
	page, _ = c.contractSvc.Page(context.Background(), viewer, listing.Query{Page: 1, Search: "acme", Field: "dumpsterName"})
	if page.Total != 0 {
		t.Fatalf("field-scoped search must not match other fields")
	}
}
