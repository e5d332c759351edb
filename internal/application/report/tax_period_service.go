package report

import (
	"context"
	"errors"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/erp/ledger/internal/domain/tax"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaxPeriodService aggregates tax records into period returns
type TaxPeriodService struct {
	recordRepo tax.TaxRecordRepository
	returnRepo tax.TaxReturnRepository
	txm        shared.TransactionManager
	logger     *zap.Logger
}

// NewTaxPeriodService creates a new TaxPeriodService
func NewTaxPeriodService(
	recordRepo tax.TaxRecordRepository,
	returnRepo tax.TaxReturnRepository,
	txm shared.TransactionManager,
	logger *zap.Logger,
) *TaxPeriodService {
	return &TaxPeriodService{
		recordRepo: recordRepo,
		returnRepo: returnRepo,
		txm:        txm,
		logger:     logger,
	}
}

// GenerateReturn aggregates the period's tax records into a return. An
// existing DRAFT for the period is regenerated in place; a FILED return
// cannot be touched. At most one return exists per tenant and period.
func (s *TaxPeriodService) GenerateReturn(ctx context.Context, tenantID uuid.UUID, period string, currencyCode valueobject.Currency) (*tax.TaxReturn, error) {
	start, end, err := tax.PeriodBounds(period)
	if err != nil {
		return nil, err
	}
	if currencyCode == "" {
		currencyCode = valueobject.DefaultCurrency
	}

	var ret *tax.TaxReturn
	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		records, err := s.recordRepo.ListByPeriod(ctx, tenantID, start, end)
		if err != nil {
			return err
		}
		figures := aggregateFigures(records)

		existing, err := s.returnRepo.FindByPeriod(ctx, tenantID, period)
		switch {
		case err == nil:
			if err := existing.Regenerate(figures); err != nil {
				return err
			}
			ret = existing
			return s.returnRepo.SaveWithLock(ctx, existing)
		case isNotFound(err):
			ret, err = tax.NewTaxReturn(tenantID, period, currencyCode, figures)
			if err != nil {
				return err
			}
			return s.returnRepo.Save(ctx, ret)
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tax return generated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("period", period),
		zap.Int("records", ret.RecordCount),
		zap.String("net_tax_due", ret.NetTaxDue.String()))

	return ret, nil
}

// FileReturn freezes the period's return
func (s *TaxPeriodService) FileReturn(ctx context.Context, tenantID uuid.UUID, period string, filedBy *uuid.UUID) (*tax.TaxReturn, error) {
	var ret *tax.TaxReturn
	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ret, err = s.returnRepo.FindByPeriod(ctx, tenantID, period)
		if err != nil {
			return err
		}
		if err := ret.File(filedBy); err != nil {
			return err
		}
		return s.returnRepo.SaveWithLock(ctx, ret)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tax return filed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("period", period))

	return ret, nil
}

// GetReturn returns the period's return if it exists
func (s *TaxPeriodService) GetReturn(ctx context.Context, tenantID uuid.UUID, period string) (*tax.TaxReturn, error) {
	if err := tax.ValidatePeriod(period); err != nil {
		return nil, err
	}
	return s.returnRepo.FindByPeriod(ctx, tenantID, period)
}

// ListReturns returns stored returns for the tenant
func (s *TaxPeriodService) ListReturns(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[tax.TaxReturn], error) {
	return s.returnRepo.List(ctx, tenantID, filter)
}

// aggregateFigures folds tax records into return figures. Reverse charge
// records contribute to their own line instead of plain output tax.
func aggregateFigures(records []tax.TaxRecord) tax.ReturnFigures {
	var f tax.ReturnFigures
	for i := range records {
		r := &records[i]
		switch r.Direction {
		case tax.TaxDirectionOutput:
			if r.ReverseCharge {
				f.ReverseChargeTax = f.ReverseChargeTax.Add(r.TaxAmount)
			} else {
				f.OutputTax = f.OutputTax.Add(r.TaxAmount)
			}
			switch r.Category() {
			case tax.TaxCategoryZeroRated:
				f.ZeroRatedSales = f.ZeroRatedSales.Add(r.TaxableAmount)
			case tax.TaxCategoryExempt:
				f.ExemptSales = f.ExemptSales.Add(r.TaxableAmount)
			default:
				f.TaxableSales = f.TaxableSales.Add(r.TaxableAmount)
			}
		case tax.TaxDirectionInput:
			f.InputTax = f.InputTax.Add(r.TaxAmount)
			f.TaxablePurchases = f.TaxablePurchases.Add(r.TaxableAmount)
		}
		f.RecordCount++
	}
	return f
}

func isNotFound(err error) bool {
	var de *shared.DomainError
	return errors.As(err, &de) && de.Code == "NOT_FOUND"
}
