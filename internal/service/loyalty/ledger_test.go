package loyalty

import (
	"errors"
	"testing"

	"github.com/nucoffee/orders/internal/domain"
	"github.com/nucoffee/orders/internal/storage/memory"
)

func TestLedger_AddPoints(t *testing.T) {
	customers := memory.NewCustomerRepository()
	customers.Put(domain.Customer{ID: "customer-1"})
	ledger := NewLedger(customers, nil)

	got, err := ledger.AddPoints("customer-1", 150)
	if err != nil {
		t.Fatalf("add points: %v", err)
	}
	if got.LoyaltyPoints != 150 || got.MembershipLevel != domain.MembershipSilver {
		t.Fatalf("after +150: %+v", got)
	}

	got, err = ledger.AddPoints("customer-1", 400)
	if err != nil {
		t.Fatalf("add points: %v", err)
	}
	if got.MembershipLevel != domain.MembershipGold {
		t.Fatalf("after +400: level = %s, want gold", got.MembershipLevel)
	}
}

func TestLedger_AddPointsInvalid(t *testing.T) {
	ledger := NewLedger(memory.NewCustomerRepository(), nil)

	for _, points := range []int64{0, -10} {
		_, err := ledger.AddPoints("customer-1", points)
		if !domain.IsValidation(err) {
			t.Fatalf("points=%d: expected validation error, got %v", points, err)
		}
		if !errors.Is(err, domain.ErrPointsInvalid) {
			t.Fatalf("points=%d: expected ErrPointsInvalid, got %v", points, err)
		}
	}
}

func TestLedger_AddPointsUnknownCustomer(t *testing.T) {
	ledger := NewLedger(memory.NewCustomerRepository(), nil)

	if _, err := ledger.AddPoints("missing", 10); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestLedger_AddSpend(t *testing.T) {
	customers := memory.NewCustomerRepository()
	customers.Put(domain.Customer{ID: "customer-1"})
	ledger := NewLedger(customers, nil)

	got, err := ledger.AddSpend("customer-1", 900)
	if err != nil {
		t.Fatalf("add spend: %v", err)
	}
	if got.TotalSpent != 900 {
		t.Fatalf("TotalSpent = %d, want 900", got.TotalSpent)
	}

	if _, err := ledger.AddSpend("customer-1", -1); !errors.Is(err, domain.ErrSpendInvalid) {
		t.Fatalf("expected ErrSpendInvalid, got %v", err)
	}
}
