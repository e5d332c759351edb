package billing

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRef is the minimal customer projection billing needs
type CustomerRef struct {
	ID     uuid.UUID
	Name   string
	Email  string
	Active bool
}

// CustomerLookup resolves customers owned by another bounded context
type CustomerLookup interface {
	FindByIDForTenant(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerRef, error)
}

// NumberGenerator issues sequential document numbers such as INV-20260828-00042
type NumberGenerator interface {
	NextInvoiceNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
	NextPaymentNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// AccountResolver maps payment methods to ledger account codes for posting
type AccountResolver interface {
	ResolveForMethod(ctx context.Context, tenantID uuid.UUID, method PaymentMethod) (string, error)
}
