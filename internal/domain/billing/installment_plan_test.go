package billing

import (
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlan(t *testing.T, balance string, count int, freq PlanFrequency, rate *decimal.Decimal) (*InstallmentPlan, []Installment) {
	t.Helper()
	inv := newTestInvoice(t, balance, "0", "0")
	plan, installments, err := NewInstallmentPlan(NewInstallmentPlanParams{
		TenantID:             inv.TenantID,
		Invoice:              inv,
		PlanName:             "Quarterly settlement",
		NumberOfInstallments: count,
		Frequency:            freq,
		StartDate:            time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		ProcessingFee:        decimal.Zero,
		InterestRate:         rate,
	})
	require.NoError(t, err)
	return plan, installments
}

func TestNewInstallmentPlan(t *testing.T) {
	t.Run("splits evenly with remainder on last installment", func(t *testing.T) {
		plan, installments := newTestPlan(t, "1000.00", 3, FrequencyMonthly, nil)

		require.Len(t, installments, 3)
		assert.True(t, installments[0].Amount.Equal(decimal.RequireFromString("333.33")))
		assert.True(t, installments[1].Amount.Equal(decimal.RequireFromString("333.33")))
		assert.True(t, installments[2].Amount.Equal(decimal.RequireFromString("333.34")))

		sum := decimal.Zero
		for _, in := range installments {
			sum = sum.Add(in.Amount)
		}
		assert.True(t, sum.Equal(plan.TotalAmount))
		assert.True(t, plan.RemainingBalance.Equal(plan.TotalAmount))
		assert.Equal(t, PlanStatusActive, plan.Status)
	})

	t.Run("monthly schedule advances by calendar months", func(t *testing.T) {
		plan, installments := newTestPlan(t, "1200.00", 4, FrequencyMonthly, nil)

		assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), installments[0].DueDate)
		assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), installments[3].DueDate)
		assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), plan.EndDate)
	})

	t.Run("weekly schedule advances by seven days", func(t *testing.T) {
		_, installments := newTestPlan(t, "400.00", 4, FrequencyWeekly, nil)

		assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), installments[0].DueDate)
		assert.Equal(t, time.Date(2026, 3, 29, 0, 0, 0, 0, time.UTC), installments[3].DueDate)
	})

	t.Run("simple interest scales with frequency-derived months", func(t *testing.T) {
		// 12% annual on 1200 over 12 monthly installments: 1% per month for 12
		// months = 144.00 interest.
		rate := decimal.RequireFromString("12")
		plan, _ := newTestPlan(t, "1200.00", 12, FrequencyMonthly, &rate)

		assert.True(t, plan.InterestAmount.Equal(decimal.RequireFromString("144.00")))
		assert.True(t, plan.TotalAmount.Equal(decimal.RequireFromString("1344.00")))
	})

	t.Run("weekly count counts as quarter months for interest", func(t *testing.T) {
		// 12 weekly installments = 3 months equivalent: 1200 * 1% * 3 = 36.00
		rate := decimal.RequireFromString("12")
		plan, _ := newTestPlan(t, "1200.00", 12, FrequencyWeekly, &rate)

		assert.True(t, plan.InterestAmount.Equal(decimal.RequireFromString("36.00")))
	})

	t.Run("rejects out-of-range installment count", func(t *testing.T) {
		inv := newTestInvoice(t, "100.00", "0", "0")
		for _, count := range []int{0, 1, 25} {
			_, _, err := NewInstallmentPlan(NewInstallmentPlanParams{
				TenantID:             inv.TenantID,
				Invoice:              inv,
				NumberOfInstallments: count,
				Frequency:            FrequencyMonthly,
				StartDate:            time.Now(),
			})
			require.Error(t, err)
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, "INVALID_INSTALLMENT_COUNT", de.Code)
		}
	})

	t.Run("rejects invoice without outstanding balance", func(t *testing.T) {
		inv := newTestInvoice(t, "100.00", "0", "0")
		require.NoError(t, inv.ApplyPayment(decimal.RequireFromString("100.00")))

		_, _, err := NewInstallmentPlan(NewInstallmentPlanParams{
			TenantID:             inv.TenantID,
			Invoice:              inv,
			NumberOfInstallments: 3,
			Frequency:            FrequencyMonthly,
			StartDate:            time.Now(),
		})
		assert.Error(t, err)
	})

	t.Run("rejects invalid frequency", func(t *testing.T) {
		inv := newTestInvoice(t, "100.00", "0", "0")
		_, _, err := NewInstallmentPlan(NewInstallmentPlanParams{
			TenantID:             inv.TenantID,
			Invoice:              inv,
			NumberOfInstallments: 3,
			Frequency:            PlanFrequency("DAILY"),
			StartDate:            time.Now(),
		})
		require.Error(t, err)
	})
}

func TestInstallmentPlanApplyCollection(t *testing.T) {
	t.Run("reduces remaining balance", func(t *testing.T) {
		plan, _ := newTestPlan(t, "300.00", 3, FrequencyMonthly, nil)

		require.NoError(t, plan.ApplyCollection(decimal.RequireFromString("100.00")))
		assert.True(t, plan.RemainingBalance.Equal(decimal.RequireFromString("200.00")))
		assert.Equal(t, PlanStatusActive, plan.Status)
	})

	t.Run("completes at zero balance", func(t *testing.T) {
		plan, _ := newTestPlan(t, "300.00", 3, FrequencyMonthly, nil)

		require.NoError(t, plan.ApplyCollection(decimal.RequireFromString("300.00")))
		assert.Equal(t, PlanStatusCompleted, plan.Status)
		assert.True(t, plan.RemainingBalance.IsZero())
	})

	t.Run("rejects collection on inactive plan", func(t *testing.T) {
		plan, _ := newTestPlan(t, "300.00", 3, FrequencyMonthly, nil)
		require.NoError(t, plan.Cancel(PlanStatusCancelled, "customer request", false))

		assert.Error(t, plan.ApplyCollection(decimal.RequireFromString("10.00")))
	})
}

func TestInstallmentPlanCancel(t *testing.T) {
	t.Run("cancels active plan", func(t *testing.T) {
		plan, _ := newTestPlan(t, "300.00", 3, FrequencyMonthly, nil)

		require.NoError(t, plan.Cancel(PlanStatusCancelled, "customer request", false))
		assert.Equal(t, PlanStatusCancelled, plan.Status)
		require.NotNil(t, plan.CancelledAt)
	})

	t.Run("rejects cancel with paid installments", func(t *testing.T) {
		plan, _ := newTestPlan(t, "300.00", 3, FrequencyMonthly, nil)

		err := plan.Cancel(PlanStatusCancelled, "customer request", true)
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "HAS_PAID_INSTALLMENTS", de.Code)
	})

	t.Run("early completion zeroes remaining balance", func(t *testing.T) {
		plan, _ := newTestPlan(t, "300.00", 3, FrequencyMonthly, nil)

		require.NoError(t, plan.Cancel(PlanStatusCompleted, "settled in full", true))
		assert.Equal(t, PlanStatusCompleted, plan.Status)
		assert.True(t, plan.RemainingBalance.IsZero())
	})

	t.Run("idempotent against same target", func(t *testing.T) {
		plan, _ := newTestPlan(t, "300.00", 3, FrequencyMonthly, nil)
		require.NoError(t, plan.Cancel(PlanStatusCancelled, "customer request", false))
		assert.NoError(t, plan.Cancel(PlanStatusCancelled, "again", false))
	})
}

func TestInstallmentMarkPaid(t *testing.T) {
	_, installments := newTestPlan(t, "300.00", 3, FrequencyMonthly, nil)
	in := installments[0]

	require.NoError(t, in.MarkPaid())
	assert.Equal(t, InstallmentStatusPaid, in.Status)
	require.NotNil(t, in.PaidAt)

	assert.Error(t, in.MarkPaid())
}
