package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/dumpster-rentals/internal/guard"
	"github.com/nurpe/dumpster-rentals/internal/model"
	"github.com/nurpe/dumpster-rentals/internal/validation"
	"github.com/nurpe/dumpster-rentals/internal/wizard"
)

type WizardDeps struct {
	Store     wizard.Store
	Contracts *ContractService
	Customers Store[model.Customer]
	Dumpsters Store[model.Dumpster]
	Fixes     Store[model.Fix]
	Guard     guard.Guard
	Now       func() time.Time
}

// WizardService drives server-held contract wizard sessions. Every call loads
// the draft, applies one transition and saves it back; a failed transition
// leaves the stored draft as it was.
type WizardService struct {
	deps WizardDeps
}

func NewWizardService(deps WizardDeps) *WizardService {
	if deps.Guard == nil {
		deps.Guard = guard.NewMemory()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &WizardService{deps: deps}
}

type SubmitResult struct {
	Contract ContractView   `json:"contract"`
	PDFURL   string         `json:"pdfUrl"`
	Wizard   *wizard.Wizard `json:"wizard"`
}

func (s *WizardService) Start(ctx context.Context, principal model.Principal) (*wizard.Wizard, error) {
	if !principal.CanManage() {
		return nil, ErrPermissionDenied
	}
	w := wizard.New(uuid.New())
	w.OwnerID = principal.UserID
	if err := s.deps.Store.Save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *WizardService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*wizard.Wizard, error) {
	return s.load(ctx, principal, id)
}

func (s *WizardService) Discard(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if _, err := s.load(ctx, principal, id); err != nil {
		return err
	}
	return s.deps.Store.Delete(ctx, id)
}

func (s *WizardService) SetCustomerMode(ctx context.Context, principal model.Principal, id uuid.UUID, mode wizard.Mode) (*wizard.Wizard, error) {
	return s.mutate(ctx, principal, id, func(w *wizard.Wizard) error {
		return w.SetCustomerMode(mode)
	})
}

func (s *WizardService) SelectCustomer(ctx context.Context, principal model.Principal, id, customerID uuid.UUID) (*wizard.Wizard, error) {
	return s.mutate(ctx, principal, id, func(w *wizard.Wizard) error {
		customer, err := s.deps.Customers.Get(ctx, customerID)
		if err != nil {
			return notFound(err, "customer")
		}
		return w.SelectCustomer(*customer)
	})
}

func (s *WizardService) SubmitCustomer(ctx context.Context, principal model.Principal, id uuid.UUID, form wizard.CustomerForm) (*wizard.Wizard, error) {
	return s.mutate(ctx, principal, id, func(w *wizard.Wizard) error {
		return w.SubmitCustomer(form)
	})
}

func (s *WizardService) SetWorkAddressMode(ctx context.Context, principal model.Principal, id uuid.UUID, mode wizard.Mode) (*wizard.Wizard, error) {
	return s.mutate(ctx, principal, id, func(w *wizard.Wizard) error {
		return w.SetWorkAddressMode(mode)
	})
}

func (s *WizardService) SelectWorkAddress(ctx context.Context, principal model.Principal, id, workAddressID uuid.UUID) (*wizard.Wizard, error) {
	return s.mutate(ctx, principal, id, func(w *wizard.Wizard) error {
		return w.SelectWorkAddress(workAddressID)
	})
}

func (s *WizardService) SubmitWorkAddress(ctx context.Context, principal model.Principal, id uuid.UUID, form wizard.WorkAddressForm) (*wizard.Wizard, error) {
	return s.mutate(ctx, principal, id, func(w *wizard.Wizard) error {
		return w.SubmitWorkAddress(form)
	})
}

func (s *WizardService) SelectDumpster(ctx context.Context, principal model.Principal, id, dumpsterID uuid.UUID) (*wizard.Wizard, error) {
	return s.mutate(ctx, principal, id, func(w *wizard.Wizard) error {
		dumpster, err := s.deps.Dumpsters.Get(ctx, dumpsterID)
		if err != nil {
			return notFound(err, "dumpster")
		}
		return w.SelectDumpster(*dumpster)
	})
}

func (s *WizardService) SelectFix(ctx context.Context, principal model.Principal, id, fixID uuid.UUID) (*wizard.Wizard, error) {
	return s.mutate(ctx, principal, id, func(w *wizard.Wizard) error {
		fix, err := s.deps.Fixes.Get(ctx, fixID)
		if err != nil {
			return notFound(err, "fix")
		}
		return w.SelectFix(*fix)
	})
}

func (s *WizardService) SubmitTerms(ctx context.Context, principal model.Principal, id uuid.UUID, form wizard.TermsForm) (*wizard.Wizard, error) {
	return s.mutate(ctx, principal, id, func(w *wizard.Wizard) error {
		return w.SubmitTerms(form, model.DateOf(s.deps.Now()))
	})
}

func (s *WizardService) Previous(ctx context.Context, principal model.Principal, id uuid.UUID) (*wizard.Wizard, error) {
	return s.mutate(ctx, principal, id, func(w *wizard.Wizard) error {
		return w.Previous()
	})
}

func (s *WizardService) Reset(ctx context.Context, principal model.Principal, id uuid.UUID) (*wizard.Wizard, error) {
	return s.mutate(ctx, principal, id, func(w *wizard.Wizard) error {
		w.Reset()
		return nil
	})
}

// Submit creates the contract from the confirmed draft. On success the draft
// is reset; on failure it stays on the confirmation step untouched.
func (s *WizardService) Submit(ctx context.Context, principal model.Principal, id uuid.UUID) (*SubmitResult, error) {
	release, err := s.hold(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	w, err := s.load(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	sub, err := w.Submission()
	if err != nil {
		return nil, wizardError(err)
	}
	view, err := s.deps.Contracts.Create(ctx, principal, sub)
	if err != nil {
		return nil, err
	}

	// The contract is committed; the draft must not stay submittable.
	w.Reset()
	if err := s.deps.Store.Save(ctx, w); err != nil {
		log := zerolog.Ctx(ctx)
		log.Warn().Err(err).Str("wizard", id.String()).Msg("failed to reset submitted wizard, discarding it")
		if err := s.deps.Store.Delete(ctx, id); err != nil {
			log.Error().Err(err).Str("wizard", id.String()).Msg("failed to discard submitted wizard")
		}
	}
	return &SubmitResult{Contract: *view, PDFURL: view.PDFURL, Wizard: w}, nil
}

func (s *WizardService) mutate(ctx context.Context, principal model.Principal, id uuid.UUID, apply func(*wizard.Wizard) error) (*wizard.Wizard, error) {
	release, err := s.hold(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	w, err := s.load(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if err := apply(w); err != nil {
		return nil, wizardError(err)
	}
	if err := s.deps.Store.Save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *WizardService) load(ctx context.Context, principal model.Principal, id uuid.UUID) (*wizard.Wizard, error) {
	w, err := s.deps.Store.Load(ctx, id)
	if errors.Is(err, wizard.ErrDraftNotFound) {
		return nil, fmt.Errorf("%w: wizard session", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if w.OwnerID != principal.UserID && !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	return w, nil
}

func (s *WizardService) hold(ctx context.Context, id uuid.UUID) (func(), error) {
	release, err := s.deps.Guard.Acquire(ctx, "wizard:"+id.String())
	if errors.Is(err, guard.ErrInFlight) {
		return nil, ErrSubmissionInFlight
	}
	if err != nil {
		return nil, err
	}
	return release, nil
}

// wizardError maps state machine failures onto service errors. Field errors
// and already-mapped errors pass through.
func wizardError(err error) error {
	var fieldErrs validation.Errors
	switch {
	case errors.As(err, &fieldErrs):
		return err
	case errors.Is(err, wizard.ErrWrongStep):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, wizard.ErrSelectionRequired),
		errors.Is(err, wizard.ErrOptionDisabled),
		errors.Is(err, wizard.ErrInvalidMode),
		errors.Is(err, wizard.ErrUnknownRecord):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return err
	}
}
