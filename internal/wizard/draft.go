package wizard

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/dumpster-rentals/internal/model"
)

// Ref is a nullable reference to a persisted record. It encodes as the id or
// as JSON null.
type Ref struct {
	ID    uuid.UUID
	Valid bool
}

func RefTo(id uuid.UUID) Ref {
	return Ref{ID: id, Valid: true}
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID.String())
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		*r = Ref{}
		return nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return err
	}
	*r = RefTo(id)
	return nil
}

// Patcher is implemented by slot values that accept partial updates.
type Patcher[T any, P any] interface {
	Apply(P) T
}

// MergeableSlot accumulates patches: fields a patch leaves unset keep their
// earlier value.
type MergeableSlot[T Patcher[T, P], P any] struct {
	Value T `json:"value"`
}

func (s *MergeableSlot[T, P]) Merge(patch P) {
	s.Value = s.Value.Apply(patch)
}

// ReplaceableSlot holds a scalar that each submission overwrites wholesale.
type ReplaceableSlot[T any] struct {
	Value T    `json:"value"`
	Set   bool `json:"set"`
}

func (s *ReplaceableSlot[T]) Replace(v T) {
	s.Value = v
	s.Set = true
}

func (s ReplaceableSlot[T]) Get() (T, bool) {
	return s.Value, s.Set
}

type CustomerDraft struct {
	ID          Ref    `json:"id"`
	Name        string `json:"name"`
	TaxID       string `json:"taxId"`
	HomeAddress string `json:"homeAddress"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zipCode"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Description string `json:"description"`
}

// CustomerPatch carries only the fields being changed; nil means keep.
type CustomerPatch struct {
	ID          *Ref
	Name        *string
	TaxID       *string
	HomeAddress *string
	City        *string
	State       *string
	ZipCode     *string
	Email       *string
	Phone       *string
	Description *string
}

func (c CustomerDraft) Apply(p CustomerPatch) CustomerDraft {
	if p.ID != nil {
		c.ID = *p.ID
	}
	setString(&c.Name, p.Name)
	setString(&c.TaxID, p.TaxID)
	setString(&c.HomeAddress, p.HomeAddress)
	setString(&c.City, p.City)
	setString(&c.State, p.State)
	setString(&c.ZipCode, p.ZipCode)
	setString(&c.Email, p.Email)
	setString(&c.Phone, p.Phone)
	setString(&c.Description, p.Description)
	return c
}

type WorkAddressDraft struct {
	ID             Ref     `json:"id"`
	CustomerID     Ref     `json:"customerId"`
	AddressName    string  `json:"addressName"`
	Address        string  `json:"address"`
	AddressCity    string  `json:"addressCity"`
	AddressState   string  `json:"addressState"`
	AddressZipCode string  `json:"addressZipCode"`
	ContactName    string  `json:"contactName"`
	ContactPhone   string  `json:"contactPhone"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
}

type WorkAddressPatch struct {
	ID             *Ref
	CustomerID     *Ref
	AddressName    *string
	Address        *string
	AddressCity    *string
	AddressState   *string
	AddressZipCode *string
	ContactName    *string
	ContactPhone   *string
	Latitude       *float64
	Longitude      *float64
}

func (w WorkAddressDraft) Apply(p WorkAddressPatch) WorkAddressDraft {
	if p.ID != nil {
		w.ID = *p.ID
	}
	if p.CustomerID != nil {
		w.CustomerID = *p.CustomerID
	}
	setString(&w.AddressName, p.AddressName)
	setString(&w.Address, p.Address)
	setString(&w.AddressCity, p.AddressCity)
	setString(&w.AddressState, p.AddressState)
	setString(&w.AddressZipCode, p.AddressZipCode)
	setString(&w.ContactName, p.ContactName)
	setString(&w.ContactPhone, p.ContactPhone)
	if p.Latitude != nil {
		w.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		w.Longitude = *p.Longitude
	}
	return w
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// Draft is the composite record the wizard submits in one request.
type Draft struct {
	Customer    MergeableSlot[CustomerDraft, CustomerPatch]       `json:"customer"`
	WorkAddress MergeableSlot[WorkAddressDraft, WorkAddressPatch] `json:"workAddress"`
	DumpsterID  ReplaceableSlot[uuid.UUID]                        `json:"dumpsterId"`
	FixID       ReplaceableSlot[uuid.UUID]                        `json:"fixId"`
	BaseWeight  ReplaceableSlot[decimal.Decimal]                  `json:"baseWeight"`
	StartDate   ReplaceableSlot[model.Date]                       `json:"startDate"`
	EndDate     ReplaceableSlot[model.Date]                       `json:"endDate"`
	Description ReplaceableSlot[string]                           `json:"description"`
}

// Submission is the flattened draft sent to contract creation. The same shape
// is accepted by POST /contract.
type Submission struct {
	Customer    CustomerDraft    `json:"customer"`
	WorkAddress WorkAddressDraft `json:"workAddress"`
	DumpsterID  uuid.UUID        `json:"dumpsterId"`
	FixID       uuid.UUID        `json:"fixId"`
	BaseWeight  decimal.Decimal  `json:"baseWeight"`
	StartDate   model.Date       `json:"startDate"`
	EndDate     model.Date       `json:"endDate"`
	Description string           `json:"description"`
}

func customerPatchFrom(c model.Customer) CustomerPatch {
	ref := RefTo(c.ID)
	return CustomerPatch{
		ID:          &ref,
		Name:        &c.Name,
		TaxID:       &c.TaxID,
		HomeAddress: &c.HomeAddress,
		City:        &c.City,
		State:       &c.State,
		ZipCode:     &c.ZipCode,
		Email:       &c.Email,
		Phone:       &c.Phone,
		Description: &c.Description,
	}
}

func workAddressPatchFrom(w model.WorkAddress) WorkAddressPatch {
	ref := RefTo(w.ID)
	return WorkAddressPatch{
		ID:             &ref,
		AddressName:    &w.AddressName,
		Address:        &w.Address,
		AddressCity:    &w.AddressCity,
		AddressState:   &w.AddressState,
		AddressZipCode: &w.AddressZipCode,
		ContactName:    &w.ContactName,
		ContactPhone:   &w.ContactPhone,
		Latitude:       &w.Latitude,
		Longitude:      &w.Longitude,
	}
}
