package memory

import (
	"errors"
	"testing"

	"github.com/nucoffee/orders/internal/domain"
)

func TestCustomerRepository_PutRecomputesLevel(t *testing.T) {
	repo := NewCustomerRepository()
	repo.Put(domain.Customer{ID: "customer-1", LoyaltyPoints: 600})

	got, err := repo.Get("customer-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MembershipLevel != domain.MembershipGold {
		t.Fatalf("level = %s, want gold", got.MembershipLevel)
	}
}

func TestCustomerRepository_GetMissing(t *testing.T) {
	repo := NewCustomerRepository()
	if _, err := repo.Get("nope"); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestCustomerRepository_AddPoints(t *testing.T) {
	repo := NewCustomerRepository()
	repo.Put(domain.Customer{ID: "customer-1"})

	got, err := repo.AddPoints("customer-1", 150)
	if err != nil {
		t.Fatalf("add points: %v", err)
	}
	if got.LoyaltyPoints != 150 || got.MembershipLevel != domain.MembershipSilver {
		t.Fatalf("after +150: %+v", got)
	}

	got, err = repo.AddPoints("customer-1", 400)
	if err != nil {
		t.Fatalf("add points: %v", err)
	}
	if got.LoyaltyPoints != 550 || got.MembershipLevel != domain.MembershipGold {
		t.Fatalf("after +400: %+v", got)
	}

	if _, err := repo.AddPoints("missing", 10); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestCustomerRepository_AddSpend(t *testing.T) {
	repo := NewCustomerRepository()
	repo.Put(domain.Customer{ID: "customer-1", TotalSpent: 1000})

	got, err := repo.AddSpend("customer-1", 700)
	if err != nil {
		t.Fatalf("add spend: %v", err)
	}
	if got.TotalSpent != 1700 {
		t.Fatalf("TotalSpent = %d, want 1700", got.TotalSpent)
	}

	if _, err := repo.AddSpend("missing", 10); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}
