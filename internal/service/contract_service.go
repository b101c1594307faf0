package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nurpe/dumpster-rentals/internal/guard"
	"github.com/nurpe/dumpster-rentals/internal/invoice"
	"github.com/nurpe/dumpster-rentals/internal/listing"
	"github.com/nurpe/dumpster-rentals/internal/model"
	"github.com/nurpe/dumpster-rentals/internal/validation"
	"github.com/nurpe/dumpster-rentals/internal/wizard"
)

// ContractRepository persists contracts together with their FixContract.
// Create inserts the customer and work address too when their ids are nil.
type ContractRepository interface {
	List(ctx context.Context) ([]model.Contract, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	GetFixContract(ctx context.Context, id uuid.UUID) (*model.FixContract, error)
	Create(ctx context.Context, c *model.Contract) (uuid.UUID, error)
	UpdatePayments(ctx context.Context, fixContractID uuid.UUID, u model.PaymentsUpdate) error
	UpdateData(ctx context.Context, contractID uuid.UUID, u model.DataUpdate) error
}

type InvoiceRenderer interface {
	Invoice(c model.Contract, b invoice.Breakdown, issued time.Time) ([]byte, error)
}

// InvoiceArchive keeps a copy of every rendered invoice.
type InvoiceArchive interface {
	PutInvoice(ctx context.Context, name string, content []byte) error
}

// ContractView is a contract with its derived amounts.
type ContractView struct {
	model.Contract
	InvoiceNo string            `json:"invoiceNo"`
	Amounts   invoice.Breakdown `json:"amounts"`
	PDFURL    string            `json:"pdfUrl"`
}

func NewContractView(c model.Contract) ContractView {
	return ContractView{
		Contract:  c,
		InvoiceNo: invoice.Number(c.InvoiceNumber),
		Amounts:   invoice.Compute(c),
		PDFURL:    fmt.Sprintf("/contract/%s/pdf", c.ID),
	}
}

type ContractDeps struct {
	Contracts     ContractRepository
	Customers     Store[model.Customer]
	WorkAddresses Store[model.WorkAddress]
	Dumpsters     Store[model.Dumpster]
	Fixes         Store[model.Fix]
	Renderer      InvoiceRenderer
	Archive       InvoiceArchive
	Guard         guard.Guard
	Now           func() time.Time
}

type ContractService struct {
	deps ContractDeps
}

func NewContractService(deps ContractDeps) *ContractService {
	if deps.Guard == nil {
		deps.Guard = guard.NewMemory()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &ContractService{deps: deps}
}

var ContractFields = listing.Fields[ContractView]{
	"customerName":          func(c ContractView) string { return c.Customer.Name },
	"workAddressName":       func(c ContractView) string { return c.WorkAddress.AddressName },
	"dumpsterName":          func(c ContractView) string { return c.Dumpster.Name },
	"fixDescription":        func(c ContractView) string { return c.FixContract.Fix.Description },
	"contractStatus":        func(c ContractView) string { return string(c.ContractStatus) },
	"contractPaymentStatus": func(c ContractView) string { return string(c.ContractPaymentStatus) },
	"description":           func(c ContractView) string { return c.Description },
	"invoiceNo":             func(c ContractView) string { return c.InvoiceNo },
}

func (s *ContractService) List(ctx context.Context, _ model.Principal) ([]ContractView, error) {
	contracts, err := s.deps.Contracts.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]ContractView, 0, len(contracts))
	for _, c := range contracts {
		views = append(views, NewContractView(c))
	}
	return views, nil
}

func (s *ContractService) Page(ctx context.Context, principal model.Principal, q listing.Query) (listing.Page[ContractView], error) {
	views, err := s.List(ctx, principal)
	if err != nil {
		return listing.Page[ContractView]{}, err
	}
	return listing.Paginate(views, ContractFields, q), nil
}

func (s *ContractService) Get(ctx context.Context, _ model.Principal, id uuid.UUID) (*ContractView, error) {
	c, err := s.deps.Contracts.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "contract")
	}
	view := NewContractView(*c)
	return &view, nil
}

// Create persists a wizard submission as one contract. A customer or work
// address with a null id is created in the same transaction.
func (s *ContractService) Create(ctx context.Context, principal model.Principal, sub wizard.Submission) (*ContractView, error) {
	if !principal.CanManage() {
		return nil, ErrPermissionDenied
	}
	contract, err := s.buildContract(ctx, sub)
	if err != nil {
		return nil, err
	}
	id, err := s.deps.Contracts.Create(ctx, contract)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, principal, id)
}

func (s *ContractService) buildContract(ctx context.Context, sub wizard.Submission) (*model.Contract, error) {
	c := &model.Contract{
		ContractStatus:        model.ContractStatusActive,
		ContractPaymentStatus: model.PaymentStatusPending,
		StartDate:             sub.StartDate,
		EndDate:               sub.EndDate,
		Description:           strings.TrimSpace(sub.Description),
		BaseWeight:            sub.BaseWeight,
	}

	errs := validation.Errors{}
	if sub.StartDate.IsZero() {
		errs["startDate"] = "Please enter this field"
	}
	if sub.EndDate.IsZero() {
		errs["endDate"] = "Please enter this field"
	}
	if sub.BaseWeight.IsNegative() {
		errs["baseWeight"] = "must be at least 0"
	}
	if len(errs) > 0 {
		return nil, errs
	}

	if sub.Customer.ID.Valid {
		customer, err := s.deps.Customers.Get(ctx, sub.Customer.ID.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: customer does not exist", ErrInvalidInput)
		}
		c.CustomerID = customer.ID
		c.Customer = *customer
	} else {
		c.Customer = customerFromDraft(sub.Customer)
		if err := validation.Struct(c.Customer); err != nil {
			return nil, err
		}
	}

	wa := sub.WorkAddress
	if wa.CustomerID.Valid && (!sub.Customer.ID.Valid || wa.CustomerID.ID != c.CustomerID) {
		return nil, fmt.Errorf("%w: work address belongs to another customer", ErrInvalidInput)
	}
	if wa.ID.Valid {
		if !sub.Customer.ID.Valid {
			return nil, fmt.Errorf("%w: a new customer cannot use an existing work address", ErrInvalidInput)
		}
		address, err := s.deps.WorkAddresses.Get(ctx, wa.ID.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: work address does not exist", ErrInvalidInput)
		}
		if address.CustomerID != c.CustomerID {
			return nil, fmt.Errorf("%w: work address belongs to another customer", ErrInvalidInput)
		}
		c.WorkAddressID = address.ID
		c.WorkAddress = *address
	} else {
		c.WorkAddress = workAddressFromDraft(wa)
		c.WorkAddress.CustomerID = c.CustomerID
		if err := validation.Struct(c.WorkAddress); err != nil {
			return nil, err
		}
	}

	if sub.DumpsterID == uuid.Nil {
		return nil, fmt.Errorf("%w: dumpster is required", ErrInvalidInput)
	}
	dumpster, err := s.deps.Dumpsters.Get(ctx, sub.DumpsterID)
	if err != nil {
		return nil, fmt.Errorf("%w: dumpster does not exist", ErrInvalidInput)
	}
	c.DumpsterID = dumpster.ID

	if sub.FixID == uuid.Nil {
		return nil, fmt.Errorf("%w: fix is required", ErrInvalidInput)
	}
	fix, err := s.deps.Fixes.Get(ctx, sub.FixID)
	if err != nil {
		return nil, fmt.Errorf("%w: fix does not exist", ErrInvalidInput)
	}
	c.FixContract = model.FixContract{
		FixID:                       fix.ID,
		Fix:                         *fix,
		PaymentTonsOverWeightAmount: decimal.Zero,
		PaymentDaysOverTimeAmount:   decimal.Zero,
		OverageState:                model.OverageNotApplicable,
	}
	return c, nil
}

type EditPaymentsInput struct {
	FixContractID                   uuid.UUID          `json:"fixContractID"`
	MadePaymentCustomAmount         bool               `json:"madePaymentCustomAmount"`
	MadePaymentLandFillCost         bool               `json:"madePaymentLandFillCost"`
	MadePaymentTonsOverWeightAmount bool               `json:"madePaymentTonsOverWeightAmount"`
	MadePaymentDaysOverTimeAmount   bool               `json:"madePaymentDaysOverTimeAmount"`
	OverageState                    model.OverageState `json:"overageState"`
	PaymentTonsOverWeightAmount     *decimal.Decimal   `json:"paymentTonsOverWeightAmount"`
	PaymentDaysOverTimeAmount       *decimal.Decimal   `json:"paymentDaysOverTimeAmount"`
}

// EditPayments writes payment flags and the overage decision. Nothing outside
// the FixContract is touched.
func (s *ContractService) EditPayments(ctx context.Context, principal model.Principal, in EditPaymentsInput) (*ContractView, error) {
	if !principal.CanManage() {
		return nil, ErrPermissionDenied
	}
	if in.FixContractID == uuid.Nil {
		return nil, fmt.Errorf("%w: fixContractID is required", ErrInvalidInput)
	}
	update, err := paymentsUpdate(in)
	if err != nil {
		return nil, err
	}

	release, err := s.hold(ctx, "contract:editpayments:"+in.FixContractID.String())
	if err != nil {
		return nil, err
	}
	defer release()

	fc, err := s.deps.Contracts.GetFixContract(ctx, in.FixContractID)
	if err != nil {
		return nil, notFound(err, "fix contract")
	}
	if err := s.deps.Contracts.UpdatePayments(ctx, fc.ID, update); err != nil {
		return nil, err
	}
	return s.Get(ctx, principal, fc.ContractID)
}

func paymentsUpdate(in EditPaymentsInput) (model.PaymentsUpdate, error) {
	u := model.PaymentsUpdate{
		MadePaymentCustomAmount:         in.MadePaymentCustomAmount,
		MadePaymentLandFillCost:         in.MadePaymentLandFillCost,
		MadePaymentTonsOverWeightAmount: in.MadePaymentTonsOverWeightAmount,
		MadePaymentDaysOverTimeAmount:   in.MadePaymentDaysOverTimeAmount,
		OverageState:                    in.OverageState,
	}
	switch in.OverageState {
	case model.OverageNotApplicable:
	case model.OverageApplicableZero:
		zero := decimal.Zero
		u.PaymentTonsOverWeightAmount = &zero
		u.PaymentDaysOverTimeAmount = &zero
	case model.OverageApplicableQuantity:
		errs := validation.Errors{}
		if in.PaymentTonsOverWeightAmount == nil {
			errs["paymentTonsOverWeightAmount"] = "Please enter this field"
		} else if in.PaymentTonsOverWeightAmount.IsNegative() {
			errs["paymentTonsOverWeightAmount"] = "must be at least 0"
		}
		if in.PaymentDaysOverTimeAmount == nil {
			errs["paymentDaysOverTimeAmount"] = "Please enter this field"
		} else if in.PaymentDaysOverTimeAmount.IsNegative() {
			errs["paymentDaysOverTimeAmount"] = "must be at least 0"
		}
		if len(errs) > 0 {
			return u, errs
		}
		u.PaymentTonsOverWeightAmount = in.PaymentTonsOverWeightAmount
		u.PaymentDaysOverTimeAmount = in.PaymentDaysOverTimeAmount
	default:
		return u, validation.Errors{"overageState": "must be one of: NOT_APPLICABLE APPLICABLE_ZERO APPLICABLE_QUANTITY"}
	}
	return u, nil
}

// EditDataInput carries dates as text so a malformed value is rejected
// instead of being dropped. An empty or null removalDate clears it.
type EditDataInput struct {
	ContractID            uuid.UUID            `json:"contractID"`
	StartDate             string               `json:"startDate"`
	EndDate               string               `json:"endDate"`
	RemovalDate           *string              `json:"removalDate"`
	ContractStatus        model.ContractStatus `json:"contractStatus"`
	ContractPaymentStatus model.PaymentStatus  `json:"contractPaymentStatus"`
	Description           string               `json:"description"`
}

// EditData writes dates, statuses and description. Nothing outside the
// Contract row is touched.
func (s *ContractService) EditData(ctx context.Context, principal model.Principal, in EditDataInput) (*ContractView, error) {
	if !principal.CanManage() {
		return nil, ErrPermissionDenied
	}
	if in.ContractID == uuid.Nil {
		return nil, fmt.Errorf("%w: contractID is required", ErrInvalidInput)
	}
	update, err := dataUpdate(in)
	if err != nil {
		return nil, err
	}

	release, err := s.hold(ctx, "contract:editdata:"+in.ContractID.String())
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := s.deps.Contracts.Get(ctx, in.ContractID); err != nil {
		return nil, notFound(err, "contract")
	}
	if err := s.deps.Contracts.UpdateData(ctx, in.ContractID, update); err != nil {
		return nil, err
	}
	return s.Get(ctx, principal, in.ContractID)
}

func dataUpdate(in EditDataInput) (model.DataUpdate, error) {
	u := model.DataUpdate{
		ContractStatus:        in.ContractStatus,
		ContractPaymentStatus: in.ContractPaymentStatus,
		Description:           strings.TrimSpace(in.Description),
	}
	errs := validation.Errors{}

	if strings.TrimSpace(in.StartDate) == "" {
		errs["startDate"] = "Please enter this field"
	} else if d, err := model.ParseDate(in.StartDate); err != nil {
		errs["startDate"] = "must be a date (YYYY-MM-DD)"
	} else {
		u.StartDate = d
	}
	if strings.TrimSpace(in.EndDate) == "" {
		errs["endDate"] = "Please enter this field"
	} else if d, err := model.ParseDate(in.EndDate); err != nil {
		errs["endDate"] = "must be a date (YYYY-MM-DD)"
	} else {
		u.EndDate = d
	}
	if in.RemovalDate != nil && strings.TrimSpace(*in.RemovalDate) != "" {
		d, err := model.ParseDate(*in.RemovalDate)
		if err != nil {
			errs["removalDate"] = "must be a date (YYYY-MM-DD)"
		} else {
			u.RemovalDate = &d
		}
	}
	if !in.ContractStatus.Valid() {
		errs["contractStatus"] = "must be one of: ACTIVE INACTIVE PENDING CANCELLED"
	}
	if !in.ContractPaymentStatus.Valid() {
		errs["contractPaymentStatus"] = "must be one of: PENDING_PAYMENT PARTIAL_PAYMENT PAID DELAY_PAYMENT"
	}
	if len(errs) > 0 {
		return u, errs
	}
	return u, nil
}

type InvoiceFile struct {
	FileName string
	Content  []byte
}

// InvoicePDF renders the contract's invoice and, when an archive is
// configured, stores a copy. Archive failures do not fail the download.
func (s *ContractService) InvoicePDF(ctx context.Context, principal model.Principal, id uuid.UUID) (*InvoiceFile, error) {
	view, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	content, err := s.deps.Renderer.Invoice(view.Contract, view.Amounts, s.deps.Now())
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("invoice-%s.pdf", view.InvoiceNo)
	if s.deps.Archive != nil {
		if err := s.deps.Archive.PutInvoice(ctx, name, content); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("invoice", view.InvoiceNo).Msg("failed to archive invoice")
		}
	}
	return &InvoiceFile{FileName: name, Content: content}, nil
}

func (s *ContractService) hold(ctx context.Context, key string) (func(), error) {
	release, err := s.deps.Guard.Acquire(ctx, key)
	if errors.Is(err, guard.ErrInFlight) {
		return nil, ErrSubmissionInFlight
	}
	if err != nil {
		return nil, err
	}
	return release, nil
}

func customerFromDraft(d wizard.CustomerDraft) model.Customer {
	return model.Customer{
		Name:        strings.TrimSpace(d.Name),
		TaxID:       strings.TrimSpace(d.TaxID),
		HomeAddress: strings.TrimSpace(d.HomeAddress),
		City:        strings.TrimSpace(d.City),
		State:       strings.TrimSpace(d.State),
		ZipCode:     strings.TrimSpace(d.ZipCode),
		Email:       strings.TrimSpace(d.Email),
		Phone:       strings.TrimSpace(d.Phone),
		Description: strings.TrimSpace(d.Description),
	}
}

func workAddressFromDraft(d wizard.WorkAddressDraft) model.WorkAddress {
	return model.WorkAddress{
		AddressName:    strings.TrimSpace(d.AddressName),
		Address:        strings.TrimSpace(d.Address),
		AddressCity:    strings.TrimSpace(d.AddressCity),
		AddressState:   strings.TrimSpace(d.AddressState),
		AddressZipCode: strings.TrimSpace(d.AddressZipCode),
		ContactName:    strings.TrimSpace(d.ContactName),
		ContactPhone:   strings.TrimSpace(d.ContactPhone),
		Latitude:       d.Latitude,
		Longitude:      d.Longitude,
	}
}
