// Package wizard implements the four-step contract creation flow: customer,
// work address, dumpster and fix with usage terms, then confirmation. Each
// step merges its values into a Draft that is submitted as a single request.
package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/dumpster-rentals/internal/model"
	"github.com/nurpe/dumpster-rentals/internal/validation"
)

type Step int

const (
	StepCustomer Step = iota
	StepWorkAddress
	StepDumpsterFix
	StepConfirmation
)

var stepNames = map[Step]string{
	StepCustomer:     "CUSTOMER",
	StepWorkAddress:  "WORK_ADDRESS",
	StepDumpsterFix:  "DUMPSTER_FIX",
	StepConfirmation: "CONFIRMATION",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

func (s Step) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Step) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for step, name := range stepNames {
		if name == raw {
			*s = step
			return nil
		}
	}
	return fmt.Errorf("unknown wizard step %q", raw)
}

// Mode selects between picking an existing record and entering a new one.
type Mode string

const (
	ModeExisting Mode = "existing"
	ModeNew      Mode = "new"
)

var (
	ErrWrongStep         = errors.New("action not allowed at current step")
	ErrSelectionRequired = errors.New("a selection is required")
	ErrOptionDisabled    = errors.New("option is disabled")
	ErrUnknownRecord     = errors.New("record not found")
	ErrInvalidMode       = errors.New("invalid mode")
)

type CustomerForm struct {
	Name        string `json:"name" validate:"required"`
	TaxID       string `json:"taxId" validate:"required"`
	HomeAddress string `json:"homeAddress" validate:"required"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zipCode"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required"`
	Description string `json:"description"`
}

type WorkAddressForm struct {
	AddressName    string  `json:"addressName" validate:"required"`
	Address        string  `json:"address" validate:"required"`
	AddressCity    string  `json:"addressCity"`
	AddressState   string  `json:"addressState"`
	AddressZipCode string  `json:"addressZipCode"`
	ContactName    string  `json:"contactName"`
	ContactPhone   string  `json:"contactPhone"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
}

type TermsForm struct {
	BaseWeight  string `json:"baseWeight" validate:"required"`
	StartDate   string `json:"startDate" validate:"required"`
	EndDate     string `json:"endDate" validate:"required"`
	Description string `json:"description"`
}

// Wizard is the per-session state. It is a plain value: callers serialize
// access and persist it between requests.
type Wizard struct {
	ID      uuid.UUID `json:"id"`
	OwnerID uuid.UUID `json:"ownerId"`
	Step    Step      `json:"step"`

	CustomerMode     Mode            `json:"customerMode"`
	SelectedCustomer *model.Customer `json:"selectedCustomer"`
	CustomerForm     CustomerForm    `json:"customerForm"`

	WorkAddressMode     Mode               `json:"workAddressMode"`
	SelectedWorkAddress *model.WorkAddress `json:"selectedWorkAddress"`
	WorkAddressForm     WorkAddressForm    `json:"workAddressForm"`

	SelectedDumpster *model.Dumpster `json:"selectedDumpster"`
	SelectedFix      *model.Fix      `json:"selectedFix"`
	TermsForm        TermsForm       `json:"termsForm"`

	Draft Draft `json:"draft"`
}

func New(id uuid.UUID) *Wizard {
	return &Wizard{
		ID:              id,
		Step:            StepCustomer,
		CustomerMode:    ModeExisting,
		WorkAddressMode: ModeNew,
	}
}

// Reset discards all entered data and returns to the first step.
func (w *Wizard) Reset() {
	owner := w.OwnerID
	*w = *New(w.ID)
	w.OwnerID = owner
}

func (w *Wizard) require(step Step) error {
	if w.Step != step {
		return fmt.Errorf("%w: expected %s, at %s", ErrWrongStep, step, w.Step)
	}
	return nil
}

// Previous moves back one step, keeping everything entered so far.
func (w *Wizard) Previous() error {
	if w.Step == StepCustomer {
		return fmt.Errorf("%w: already at first step", ErrWrongStep)
	}
	w.Step--
	return nil
}

// SetCustomerMode switches step 1 between existing and new. Any switch clears
// the work-address form; switching to new also drops the selection and resets
// the customer form.
func (w *Wizard) SetCustomerMode(mode Mode) error {
	if err := w.require(StepCustomer); err != nil {
		return err
	}
	if mode != ModeExisting && mode != ModeNew {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	w.CustomerMode = mode
	w.WorkAddressForm = WorkAddressForm{}
	if mode == ModeNew {
		w.SelectedCustomer = nil
		w.CustomerForm = CustomerForm{}
	}
	return nil
}

// SelectCustomer picks an existing customer and drops any work-address pick.
func (w *Wizard) SelectCustomer(c model.Customer) error {
	if err := w.require(StepCustomer); err != nil {
		return err
	}
	if w.CustomerMode != ModeExisting {
		return fmt.Errorf("%w: customer selection needs existing mode", ErrInvalidMode)
	}
	w.SelectedCustomer = &c
	w.SelectedWorkAddress = nil
	w.Draft.Customer.Merge(customerPatchFrom(c))
	return nil
}

// SubmitCustomer validates step 1 and advances to step 2.
func (w *Wizard) SubmitCustomer(form CustomerForm) error {
	if err := w.require(StepCustomer); err != nil {
		return err
	}

	switch w.CustomerMode {
	case ModeExisting:
		if w.SelectedCustomer == nil {
			return fmt.Errorf("%w: customer", ErrSelectionRequired)
		}
		w.Draft.Customer.Merge(customerPatchFrom(*w.SelectedCustomer))
	case ModeNew:
		form = trimCustomerForm(form)
		if err := validation.Struct(form); err != nil {
			return err
		}
		w.CustomerForm = form
		null := Ref{}
		w.Draft.Customer.Merge(CustomerPatch{
			ID:          &null,
			Name:        &form.Name,
			TaxID:       &form.TaxID,
			HomeAddress: &form.HomeAddress,
			City:        &form.City,
			State:       &form.State,
			ZipCode:     &form.ZipCode,
			Email:       &form.Email,
			Phone:       &form.Phone,
			Description: &form.Description,
		})
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, w.CustomerMode)
	}

	if w.ExistingWorkAddressEnabled() {
		w.WorkAddressMode = ModeExisting
	} else {
		w.WorkAddressMode = ModeNew
		w.SelectedWorkAddress = nil
	}
	w.Step = StepWorkAddress
	return nil
}

// ExistingWorkAddressEnabled reports whether step 2 may pick a stored address:
// only for an existing customer with at least one work address.
func (w *Wizard) ExistingWorkAddressEnabled() bool {
	return w.CustomerMode == ModeExisting &&
		w.SelectedCustomer != nil &&
		len(w.SelectedCustomer.WorkAddress) > 0
}

func (w *Wizard) SetWorkAddressMode(mode Mode) error {
	if err := w.require(StepWorkAddress); err != nil {
		return err
	}
	switch mode {
	case ModeExisting:
		if !w.ExistingWorkAddressEnabled() {
			return fmt.Errorf("%w: customer has no work addresses", ErrOptionDisabled)
		}
	case ModeNew:
		w.SelectedWorkAddress = nil
		w.WorkAddressForm = WorkAddressForm{}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	w.WorkAddressMode = mode
	return nil
}

// SelectWorkAddress picks one of the selected customer's addresses.
func (w *Wizard) SelectWorkAddress(id uuid.UUID) error {
	if err := w.require(StepWorkAddress); err != nil {
		return err
	}
	if w.WorkAddressMode != ModeExisting || !w.ExistingWorkAddressEnabled() {
		return fmt.Errorf("%w: work address selection needs existing mode", ErrInvalidMode)
	}
	for _, addr := range w.SelectedCustomer.WorkAddress {
		if addr.ID == id {
			picked := addr
			w.SelectedWorkAddress = &picked
			w.Draft.WorkAddress.Merge(workAddressPatchFrom(picked))
			return nil
		}
	}
	return fmt.Errorf("%w: work address %s", ErrUnknownRecord, id)
}

// SubmitWorkAddress validates step 2 and advances. The address is tied to the
// step-1 customer, or to none when that customer is still to be created.
func (w *Wizard) SubmitWorkAddress(form WorkAddressForm) error {
	if err := w.require(StepWorkAddress); err != nil {
		return err
	}
	customerID := w.Draft.Customer.Value.ID

	switch w.WorkAddressMode {
	case ModeExisting:
		if w.SelectedWorkAddress == nil {
			return fmt.Errorf("%w: work address", ErrSelectionRequired)
		}
		patch := workAddressPatchFrom(*w.SelectedWorkAddress)
		patch.CustomerID = &customerID
		w.Draft.WorkAddress.Merge(patch)
	case ModeNew:
		form = trimWorkAddressForm(form)
		if err := validation.Struct(form); err != nil {
			return err
		}
		w.WorkAddressForm = form
		null := Ref{}
		w.Draft.WorkAddress.Merge(WorkAddressPatch{
			ID:             &null,
			CustomerID:     &customerID,
			AddressName:    &form.AddressName,
			Address:        &form.Address,
			AddressCity:    &form.AddressCity,
			AddressState:   &form.AddressState,
			AddressZipCode: &form.AddressZipCode,
			ContactName:    &form.ContactName,
			ContactPhone:   &form.ContactPhone,
			Latitude:       &form.Latitude,
			Longitude:      &form.Longitude,
		})
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, w.WorkAddressMode)
	}

	w.Step = StepDumpsterFix
	return nil
}

func (w *Wizard) SelectDumpster(d model.Dumpster) error {
	if err := w.require(StepDumpsterFix); err != nil {
		return err
	}
	w.SelectedDumpster = &d
	w.Draft.DumpsterID.Replace(d.ID)
	return nil
}

func (w *Wizard) SelectFix(f model.Fix) error {
	if err := w.require(StepDumpsterFix); err != nil {
		return err
	}
	w.SelectedFix = &f
	w.Draft.FixID.Replace(f.ID)
	return nil
}

// SubmitTerms advances past step 3. Both a dumpster and a fix must be selected
// before the form itself is looked at; dates may not be before today.
func (w *Wizard) SubmitTerms(form TermsForm, today model.Date) error {
	if err := w.require(StepDumpsterFix); err != nil {
		return err
	}
	if w.SelectedDumpster == nil {
		return fmt.Errorf("%w: dumpster", ErrSelectionRequired)
	}
	if w.SelectedFix == nil {
		return fmt.Errorf("%w: fix", ErrSelectionRequired)
	}

	form.BaseWeight = strings.TrimSpace(form.BaseWeight)
	if err := validation.Struct(form); err != nil {
		return err
	}

	fieldErrs := validation.Errors{}
	baseWeight, err := decimal.NewFromString(form.BaseWeight)
	if err != nil {
		fieldErrs["baseWeight"] = "must be a number"
	} else if baseWeight.IsNegative() {
		fieldErrs["baseWeight"] = "must be at least 0"
	}
	start, err := model.ParseDate(form.StartDate)
	if err != nil {
		fieldErrs["startDate"] = "must be a date (YYYY-MM-DD)"
	} else if start.Before(today.Time) {
		fieldErrs["startDate"] = "must not be before today"
	}
	end, err := model.ParseDate(form.EndDate)
	if err != nil {
		fieldErrs["endDate"] = "must be a date (YYYY-MM-DD)"
	} else if end.Before(today.Time) {
		fieldErrs["endDate"] = "must not be before today"
	}
	if len(fieldErrs) > 0 {
		return fieldErrs
	}

	w.TermsForm = form
	w.Draft.BaseWeight.Replace(baseWeight)
	w.Draft.StartDate.Replace(start)
	w.Draft.EndDate.Replace(end)
	w.Draft.Description.Replace(strings.TrimSpace(form.Description))
	w.Step = StepConfirmation
	return nil
}

// Submission flattens the draft for contract creation. It is only available
// from the confirmation step.
func (w *Wizard) Submission() (Submission, error) {
	if err := w.require(StepConfirmation); err != nil {
		return Submission{}, err
	}
	dumpsterID, ok := w.Draft.DumpsterID.Get()
	if !ok {
		return Submission{}, fmt.Errorf("%w: dumpster", ErrSelectionRequired)
	}
	fixID, ok := w.Draft.FixID.Get()
	if !ok {
		return Submission{}, fmt.Errorf("%w: fix", ErrSelectionRequired)
	}
	baseWeight, _ := w.Draft.BaseWeight.Get()
	start, _ := w.Draft.StartDate.Get()
	end, _ := w.Draft.EndDate.Get()
	description, _ := w.Draft.Description.Get()

	return Submission{
		Customer:    w.Draft.Customer.Value,
		WorkAddress: w.Draft.WorkAddress.Value,
		DumpsterID:  dumpsterID,
		FixID:       fixID,
		BaseWeight:  baseWeight,
		StartDate:   start,
		EndDate:     end,
		Description: description,
	}, nil
}

func trimCustomerForm(f CustomerForm) CustomerForm {
	f.Name = strings.TrimSpace(f.Name)
	f.TaxID = strings.TrimSpace(f.TaxID)
	f.HomeAddress = strings.TrimSpace(f.HomeAddress)
	f.City = strings.TrimSpace(f.City)
	f.State = strings.TrimSpace(f.State)
	f.ZipCode = strings.TrimSpace(f.ZipCode)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Description = strings.TrimSpace(f.Description)
	return f
}

func trimWorkAddressForm(f WorkAddressForm) WorkAddressForm {
	f.AddressName = strings.TrimSpace(f.AddressName)
	f.Address = strings.TrimSpace(f.Address)
	f.AddressCity = strings.TrimSpace(f.AddressCity)
	f.AddressState = strings.TrimSpace(f.AddressState)
	f.AddressZipCode = strings.TrimSpace(f.AddressZipCode)
	f.ContactName = strings.TrimSpace(f.ContactName)
	f.ContactPhone = strings.TrimSpace(f.ContactPhone)
	return f
}
