package repository

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/dumpster-rentals/internal/config"
	"github.com/nurpe/dumpster-rentals/internal/db"
	"github.com/nurpe/dumpster-rentals/internal/model"
)

// These tests need a disposable Postgres database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run database tests")
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		t.Skip("DB_DSN is not set")
	}
	database, err := db.New(&config.Config{DB: config.DBConfig{DSN: dsn, MaxOpenConns: 5, MaxIdleConns: 1}}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	return database
}

func seedCatalog(t *testing.T, database *gorm.DB) (model.Dumpster, model.Fix) {
	t.Helper()
	ctx := context.Background()

	status := model.DumpsterStatus{Name: "Available", IsActive: true}
	if err := NewDumpsterStatuses(database).Create(ctx, &status); err != nil {
		t.Fatalf("create status: %v", err)
	}
	dumpster := model.Dumpster{
		Name:             "D-" + uuid.NewString()[:8],
		Size:             20,
		Weight:           decimal.NewFromInt(2),
		DumpsterStatusID: status.ID,
	}
	if err := NewDumpsters(database).Create(ctx, &dumpster); err != nil {
		t.Fatalf("create dumpster: %v", err)
	}
	fix := model.Fix{
		CustomAmount:         decimal.NewFromInt(350),
		LandFillCost:         decimal.NewFromInt(75),
		TonsOverWeightAmount: decimal.NewFromInt(90),
		DaysOverTimeAmount:   decimal.NewFromInt(15),
		Description:          "standard",
	}
	if err := NewFixes(database).Create(ctx, &fix); err != nil {
		t.Fatalf("create fix: %v", err)
	}
	return dumpster, fix
}

func TestContractRepository_CreateAndEdit(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	dumpster, fix := seedCatalog(t, database)
	repo := NewContractRepository(database)

	c := &model.Contract{
		Customer: model.Customer{
			Name: "Acme", TaxID: "T-1", HomeAddress: "1 Main", Email: "a@acme.test", Phone: "555",
		},
		WorkAddress:           model.WorkAddress{AddressName: "Yard", Address: "2 Side"},
		DumpsterID:            dumpster.ID,
		StartDate:             model.NewDate(2026, 3, 1),
		EndDate:               model.NewDate(2026, 3, 8),
		ContractStatus:        model.ContractStatusActive,
		ContractPaymentStatus: model.PaymentStatusPending,
		BaseWeight:            decimal.NewFromInt(2),
		FixContract:           model.FixContract{FixID: fix.ID, OverageState: model.OverageNotApplicable},
	}
	id, err := repo.Create(ctx, c)
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("get contract: %v", err)
	}
	if got.InvoiceNumber == 0 {
		t.Fatalf("expected an invoice number to be assigned")
	}
	if got.Customer.Name != "Acme" || got.WorkAddress.CustomerID != got.CustomerID {
		t.Fatalf("customer and work address were not linked: %+v", got)
	}
	if !got.FixContract.Fix.CustomAmount.Equal(fix.CustomAmount) {
		t.Fatalf("fix not preloaded: %+v", got.FixContract)
	}

	tons := decimal.NewFromInt(3)
	if err := repo.UpdatePayments(ctx, got.FixContract.ID, model.PaymentsUpdate{
		MadePaymentCustomAmount:     true,
		OverageState:                model.OverageApplicableQuantity,
		PaymentTonsOverWeightAmount: &tons,
	}); err != nil {
		t.Fatalf("update payments: %v", err)
	}

	removal := model.NewDate(2026, 3, 9)
	if err := repo.UpdateData(ctx, id, model.DataUpdate{
		StartDate:             got.StartDate,
		EndDate:               got.EndDate,
		RemovalDate:           &removal,
		ContractStatus:        model.ContractStatusInactive,
		ContractPaymentStatus: model.PaymentStatusPartial,
		Description:           "picked up",
	}); err != nil {
		t.Fatalf("update data: %v", err)
	}

	got, err = repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("reload contract: %v", err)
	}
	if !got.FixContract.MadePaymentCustomAmount || !got.FixContract.PaymentTonsOverWeightAmount.Equal(tons) {
		t.Fatalf("payments not written: %+v", got.FixContract)
	}
	if !got.FixContract.PaymentDaysOverTimeAmount.IsZero() {
		t.Fatalf("days should be untouched, got %s", got.FixContract.PaymentDaysOverTimeAmount)
	}
	if got.RemovalDate == nil || got.RemovalDate.String() != "2026-03-09" {
		t.Fatalf("removal date not written: %v", got.RemovalDate)
	}
	if got.ContractStatus != model.ContractStatusInactive {
		t.Fatalf("status not written: %s", got.ContractStatus)
	}
}

func TestTable_MissingRows(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	customers := NewCustomers(database)

	if _, err := customers.Get(ctx, uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if err := customers.Delete(ctx, uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestUserRepository_FindByUsername(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(database)

	user := model.User{Username: "u-" + uuid.NewString()[:8], PasswordHash: "x", Role: model.RoleUser}
	if err := users.Create(ctx, &user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	found, err := users.FindByUsername(ctx, user.Username)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if found.ID != user.ID {
		t.Fatalf("expected %s, got %s", user.ID, found.ID)
	}
	dup := model.User{Username: user.Username, PasswordHash: "y", Role: model.RoleUser}
	if err := users.Create(ctx, &dup); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected ErrDuplicatedKey, got %v", err)
	}
}
