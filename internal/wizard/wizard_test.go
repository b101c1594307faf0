package wizard

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/dumpster-rentals/internal/model"
	"github.com/nurpe/dumpster-rentals/internal/validation"
)

var today = model.NewDate(2024, 1, 1)

func strPtr(s string) *string { return &s }

func customerWithAddresses(n int) model.Customer {
	c := model.Customer{
		ID:          uuid.New(),
		Name:        "Acme Roofing",
		TaxID:       "TX-1",
		HomeAddress: "1 Main St",
		Email:       "ops@acme.test",
		Phone:       "305-555-0100",
	}
	for i := 0; i < n; i++ {
		c.WorkAddress = append(c.WorkAddress, model.WorkAddress{
			ID:          uuid.New(),
			CustomerID:  c.ID,
			AddressName: "Site",
			Address:     "2 Side St",
		})
	}
	return c
}

func validCustomerForm() CustomerForm {
	return CustomerForm{
		Name:        "New Co",
		TaxID:       "TX-9",
		HomeAddress: "9 Ninth Ave",
		Email:       "hello@newco.test",
		Phone:       "305-555-0199",
	}
}

func validTerms() TermsForm {
	return TermsForm{BaseWeight: "2", StartDate: "2024-01-01", EndDate: "2024-01-10"}
}

func TestCustomerSlot_MergeKeepsEarlierKeys(t *testing.T) {
	var d Draft
	d.Customer.Merge(CustomerPatch{Name: strPtr("A")})
	d.Customer.Merge(CustomerPatch{Email: strPtr("x@y.com")})
	if d.Customer.Value.Name != "A" || d.Customer.Value.Email != "x@y.com" {
		t.Fatalf("merge lost keys: %+v", d.Customer.Value)
	}
}

func TestReplaceableSlot(t *testing.T) {
	var d Draft
	if _, ok := d.FixID.Get(); ok {
		t.Fatalf("fresh slot must be unset")
	}
	first, second := uuid.New(), uuid.New()
	d.FixID.Replace(first)
	d.FixID.Replace(second)
	if got, ok := d.FixID.Get(); !ok || got != second {
		t.Fatalf("expected %s, got %s", second, got)
	}
}

func TestCustomerMode_NewResetsForm(t *testing.T) {
	w := New(uuid.New())
	if err := w.SetCustomerMode(ModeNew); err != nil {
		t.Fatal(err)
	}
	w.CustomerForm = validCustomerForm()
	if err := w.SetCustomerMode(ModeExisting); err != nil {
		t.Fatal(err)
	}
	if err := w.SetCustomerMode(ModeNew); err != nil {
		t.Fatal(err)
	}
	if w.CustomerForm != (CustomerForm{}) {
		t.Fatalf("expected empty form, got %+v", w.CustomerForm)
	}
}

func TestCustomerMode_ExistingKeepsSelection(t *testing.T) {
	w := New(uuid.New())
	c := customerWithAddresses(1)
	if err := w.SelectCustomer(c); err != nil {
		t.Fatal(err)
	}
	if err := w.SetCustomerMode(ModeExisting); err != nil {
		t.Fatal(err)
	}
	if w.SelectedCustomer == nil || w.SelectedCustomer.ID != c.ID {
		t.Fatalf("selection must survive switching to existing")
	}
	if err := w.SetCustomerMode(ModeNew); err != nil {
		t.Fatal(err)
	}
	if w.SelectedCustomer != nil {
		t.Fatalf("switching to new must clear the selection")
	}
}

func TestSubmitCustomer_ExistingRequiresSelection(t *testing.T) {
	w := New(uuid.New())
	err := w.SubmitCustomer(CustomerForm{})
	if !errors.Is(err, ErrSelectionRequired) {
		t.Fatalf("expected ErrSelectionRequired, got %v", err)
	}
	if w.Step != StepCustomer {
		t.Fatalf("must stay on customer step")
	}
}

func TestSubmitCustomer_NewValidatesForm(t *testing.T) {
	w := New(uuid.New())
	_ = w.SetCustomerMode(ModeNew)
	form := validCustomerForm()
	form.Email = "not-an-email"
	form.Phone = ""

	err := w.SubmitCustomer(form)
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if verrs["email"] == "" || verrs["phone"] == "" {
		t.Fatalf("expected email and phone errors, got %v", verrs)
	}
	if w.Step != StepCustomer {
		t.Fatalf("must stay on customer step")
	}
}

func TestSubmitCustomer_NewTagsNullID(t *testing.T) {
	w := New(uuid.New())
	_ = w.SetCustomerMode(ModeNew)
	if err := w.SubmitCustomer(validCustomerForm()); err != nil {
		t.Fatal(err)
	}
	if w.Draft.Customer.Value.ID.Valid {
		t.Fatalf("new customer must carry a null id")
	}
	if w.WorkAddressMode != ModeNew || w.ExistingWorkAddressEnabled() {
		t.Fatalf("new customer has no addresses to pick from")
	}
	if err := w.SubmitWorkAddress(WorkAddressForm{AddressName: "Yard", Address: "3 Third St"}); err != nil {
		t.Fatal(err)
	}
	if w.Draft.WorkAddress.Value.CustomerID.Valid {
		t.Fatalf("work address of a new customer must not reference a customer id")
	}
}

func TestWorkAddressMode_DefaultsAndDisabled(t *testing.T) {
	cases := []struct {
		name      string
		addresses int
		wantMode  Mode
		enabled   bool
	}{
		{"no addresses", 0, ModeNew, false},
		{"one address", 1, ModeExisting, true},
		{"many addresses", 3, ModeExisting, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := New(uuid.New())
			_ = w.SelectCustomer(customerWithAddresses(tc.addresses))
			if err := w.SubmitCustomer(CustomerForm{}); err != nil {
				t.Fatal(err)
			}
			if w.WorkAddressMode != tc.wantMode {
				t.Fatalf("expected mode %s, got %s", tc.wantMode, w.WorkAddressMode)
			}
			if w.ExistingWorkAddressEnabled() != tc.enabled {
				t.Fatalf("expected enabled=%v", tc.enabled)
			}
			err := w.SetWorkAddressMode(ModeExisting)
			if tc.enabled && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.enabled && !errors.Is(err, ErrOptionDisabled) {
				t.Fatalf("expected ErrOptionDisabled, got %v", err)
			}
		})
	}
}

func TestSelectCustomer_ResetsWorkAddressSelection(t *testing.T) {
	w := New(uuid.New())
	first := customerWithAddresses(2)
	_ = w.SelectCustomer(first)
	_ = w.SubmitCustomer(CustomerForm{})
	if err := w.SelectWorkAddress(first.WorkAddress[1].ID); err != nil {
		t.Fatal(err)
	}
	if err := w.Previous(); err != nil {
		t.Fatal(err)
	}
	if err := w.SelectCustomer(customerWithAddresses(1)); err != nil {
		t.Fatal(err)
	}
	if w.SelectedWorkAddress != nil {
		t.Fatalf("selecting a customer must reset the work address selection")
	}
}

func TestSelectWorkAddress_MustBelongToCustomer(t *testing.T) {
	w := New(uuid.New())
	_ = w.SelectCustomer(customerWithAddresses(1))
	_ = w.SubmitCustomer(CustomerForm{})
	if err := w.SelectWorkAddress(uuid.New()); !errors.Is(err, ErrUnknownRecord) {
		t.Fatalf("expected ErrUnknownRecord, got %v", err)
	}
}

func toTerms(t *testing.T) *Wizard {
	t.Helper()
	w := New(uuid.New())
	c := customerWithAddresses(1)
	if err := w.SelectCustomer(c); err != nil {
		t.Fatal(err)
	}
	if err := w.SubmitCustomer(CustomerForm{}); err != nil {
		t.Fatal(err)
	}
	if err := w.SelectWorkAddress(c.WorkAddress[0].ID); err != nil {
		t.Fatal(err)
	}
	if err := w.SubmitWorkAddress(WorkAddressForm{}); err != nil {
		t.Fatal(err)
	}
	return w
}

func TestSubmitTerms_RequiresBothSelections(t *testing.T) {
	cases := []struct {
		name     string
		dumpster bool
		fix      bool
	}{
		{"neither", false, false},
		{"dumpster only", true, false},
		{"fix only", false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := toTerms(t)
			if tc.dumpster {
				_ = w.SelectDumpster(model.Dumpster{ID: uuid.New()})
			}
			if tc.fix {
				_ = w.SelectFix(model.Fix{ID: uuid.New()})
			}
			err := w.SubmitTerms(validTerms(), today)
			if !errors.Is(err, ErrSelectionRequired) {
				t.Fatalf("expected ErrSelectionRequired, got %v", err)
			}
			if w.Step != StepDumpsterFix {
				t.Fatalf("must stay on dumpster step")
			}
		})
	}
}

func TestSubmitTerms_ValidatesForm(t *testing.T) {
	w := toTerms(t)
	_ = w.SelectDumpster(model.Dumpster{ID: uuid.New()})
	_ = w.SelectFix(model.Fix{ID: uuid.New()})

	err := w.SubmitTerms(TermsForm{BaseWeight: "heavy", StartDate: "2023-12-31", EndDate: "01/10/2024"}, today)
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	for _, field := range []string{"baseWeight", "startDate", "endDate"} {
		if verrs[field] == "" {
			t.Fatalf("expected error for %s, got %v", field, verrs)
		}
	}
}

func TestFullFlow_Submission(t *testing.T) {
	w := toTerms(t)
	dumpster := model.Dumpster{ID: uuid.New()}
	fix := model.Fix{ID: uuid.New()}
	_ = w.SelectDumpster(dumpster)
	_ = w.SelectFix(fix)
	if err := w.SubmitTerms(validTerms(), today); err != nil {
		t.Fatal(err)
	}
	if w.Step != StepConfirmation {
		t.Fatalf("expected confirmation step, got %s", w.Step)
	}
	sub, err := w.Submission()
	if err != nil {
		t.Fatal(err)
	}
	if sub.DumpsterID != dumpster.ID || sub.FixID != fix.ID {
		t.Fatalf("selections not carried: %+v", sub)
	}
	if !sub.BaseWeight.Equal(decimal.NewFromInt(2)) || sub.StartDate.String() != "2024-01-01" {
		t.Fatalf("terms not carried: %+v", sub)
	}
	if !sub.Customer.ID.Valid || sub.WorkAddress.CustomerID != sub.Customer.ID {
		t.Fatalf("work address must reference the existing customer")
	}
}

func TestPrevious_RetainsEnteredData(t *testing.T) {
	w := New(uuid.New())
	_ = w.SetCustomerMode(ModeNew)
	_ = w.SubmitCustomer(validCustomerForm())
	if err := w.Previous(); err != nil {
		t.Fatal(err)
	}
	if w.CustomerForm.Name != "New Co" || w.Draft.Customer.Value.Email != "hello@newco.test" {
		t.Fatalf("going back must keep entered values")
	}
	if err := w.Previous(); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("expected ErrWrongStep at first step, got %v", err)
	}
}

func TestSubmission_OnlyFromConfirmation(t *testing.T) {
	w := New(uuid.New())
	if _, err := w.Submission(); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("expected ErrWrongStep, got %v", err)
	}
}

func TestWizard_JSONRoundTrip(t *testing.T) {
	w := toTerms(t)
	raw, err := json.Marshal(w)
	if err != nil {
		t.Fatal(err)
	}
	var restored Wizard
	if err := json.Unmarshal(raw, &restored); err != nil {
		t.Fatal(err)
	}
	if restored.Step != StepDumpsterFix || restored.Draft.Customer.Value.ID != w.Draft.Customer.Value.ID {
		t.Fatalf("state lost in round trip: %+v", restored)
	}
}

func TestReset(t *testing.T) {
	w := toTerms(t)
	id := w.ID
	owner := uuid.New()
	w.OwnerID = owner
	w.Reset()
	if w.ID != id || w.OwnerID != owner || w.Step != StepCustomer || w.SelectedCustomer != nil {
		t.Fatalf("reset must return to a fresh wizard with the same id")
	}
}
