package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/billing"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	TenantAggregateModel
	InvoiceNumber     string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_tenant_number,priority:2"`
	CustomerID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	CustomerName      string                `gorm:"type:varchar(200);not null"`
	SourceOrderID     *uuid.UUID            `gorm:"type:uuid;index"`
	SourceOrderNumber string                `gorm:"type:varchar(50)"`
	Type              billing.InvoiceType   `gorm:"type:varchar(20);not null;default:'STANDARD'"`
	Subtotal          decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	TaxAmount         decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	DiscountAmount    decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	TotalAmount       decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	CurrencyCode      string                `gorm:"type:varchar(3);not null;default:'AED'"`
	PaidAmount        decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	BalanceDue        decimal.Decimal       `gorm:"type:decimal(18,4);not null;index"`
	IssueDate         time.Time             `gorm:"not null;index"`
	DueDate           *time.Time            `gorm:"index"`
	Status            billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PriorStatus       billing.InvoiceStatus `gorm:"type:varchar(20)"`
	Remark            string                `gorm:"type:text"`
	PaidAt            *time.Time
	CancelledAt       *time.Time
	CancelReason      string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	return &billing.Invoice{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		InvoiceNumber:       m.InvoiceNumber,
		CustomerID:          m.CustomerID,
		CustomerName:        m.CustomerName,
		SourceOrderID:       m.SourceOrderID,
		SourceOrderNumber:   m.SourceOrderNumber,
		Type:                m.Type,
		Subtotal:            m.Subtotal,
		TaxAmount:           m.TaxAmount,
		DiscountAmount:      m.DiscountAmount,
		TotalAmount:         m.TotalAmount,
		CurrencyCode:        valueobject.Currency(m.CurrencyCode),
		PaidAmount:          m.PaidAmount,
		BalanceDue:          m.BalanceDue,
		IssueDate:           m.IssueDate,
		DueDate:             m.DueDate,
		Status:              m.Status,
		PriorStatus:         m.PriorStatus,
		Remark:              m.Remark,
		PaidAt:              m.PaidAt,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
	}
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.CustomerID = inv.CustomerID
	m.CustomerName = inv.CustomerName
	m.SourceOrderID = inv.SourceOrderID
	m.SourceOrderNumber = inv.SourceOrderNumber
	m.Type = inv.Type
	m.Subtotal = inv.Subtotal
	m.TaxAmount = inv.TaxAmount
	m.DiscountAmount = inv.DiscountAmount
	m.TotalAmount = inv.TotalAmount
	m.CurrencyCode = inv.CurrencyCode.String()
	m.PaidAmount = inv.PaidAmount
	m.BalanceDue = inv.BalanceDue
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.Status = inv.Status
	m.PriorStatus = inv.PriorStatus
	m.Remark = inv.Remark
	m.PaidAt = inv.PaidAt
	m.CancelledAt = inv.CancelledAt
	m.CancelReason = inv.CancelReason
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// PaymentModel is the persistence model for the Payment entity.
type PaymentModel struct {
	BaseModel
	TenantID         uuid.UUID             `gorm:"type:uuid;not null;index;uniqueIndex:idx_payment_tenant_number,priority:1"`
	InvoiceID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	PaymentNumber    string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_payment_tenant_number,priority:2"`
	Amount           decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	CurrencyCode     string                `gorm:"type:varchar(3);not null"`
	Method           billing.PaymentMethod `gorm:"type:varchar(20);not null"`
	OriginalAmount   decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	OriginalCurrency string                `gorm:"type:varchar(3);not null"`
	ExchangeRate     decimal.Decimal       `gorm:"type:decimal(18,8);not null;default:1"`
	LateFeeAmount    decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	TransactionRef   string                `gorm:"type:varchar(100)"`
	Notes            string                `gorm:"type:text"`
	PaymentDate      time.Time             `gorm:"not null;index"`
	CreatedBy        *uuid.UUID            `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseEntity:       m.BaseModel.ToDomain(),
		TenantID:         m.TenantID,
		InvoiceID:        m.InvoiceID,
		PaymentNumber:    m.PaymentNumber,
		Amount:           m.Amount,
		CurrencyCode:     valueobject.Currency(m.CurrencyCode),
		Method:           m.Method,
		OriginalAmount:   m.OriginalAmount,
		OriginalCurrency: valueobject.Currency(m.OriginalCurrency),
		ExchangeRate:     m.ExchangeRate,
		LateFeeAmount:    m.LateFeeAmount,
		TransactionRef:   m.TransactionRef,
		Notes:            m.Notes,
		PaymentDate:      m.PaymentDate,
		CreatedBy:        m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.TenantID = p.TenantID
	m.InvoiceID = p.InvoiceID
	m.PaymentNumber = p.PaymentNumber
	m.Amount = p.Amount
	m.CurrencyCode = p.CurrencyCode.String()
	m.Method = p.Method
	m.OriginalAmount = p.OriginalAmount
	m.OriginalCurrency = p.OriginalCurrency.String()
	m.ExchangeRate = p.ExchangeRate
	m.LateFeeAmount = p.LateFeeAmount
	m.TransactionRef = p.TransactionRef
	m.Notes = p.Notes
	m.PaymentDate = p.PaymentDate
	m.CreatedBy = p.CreatedBy
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// LateFeeModel is the persistence model for the LateFeeCharge entity.
type LateFeeModel struct {
	BaseModel
	TenantID          uuid.UUID             `gorm:"type:uuid;not null;index"`
	InvoiceID         uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount            decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Status            billing.LateFeeStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Reason            string                `gorm:"type:varchar(500)"`
	WaivedAt          *time.Time
	WaivedByPaymentID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (LateFeeModel) TableName() string {
	return "late_fee_charges"
}

// ToDomain converts the persistence model to a domain LateFeeCharge entity.
func (m *LateFeeModel) ToDomain() *billing.LateFeeCharge {
	return &billing.LateFeeCharge{
		BaseEntity:        m.BaseModel.ToDomain(),
		TenantID:          m.TenantID,
		InvoiceID:         m.InvoiceID,
		Amount:            m.Amount,
		Status:            m.Status,
		Reason:            m.Reason,
		WaivedAt:          m.WaivedAt,
		WaivedByPaymentID: m.WaivedByPaymentID,
	}
}

// FromDomain populates the persistence model from a domain LateFeeCharge entity.
func (m *LateFeeModel) FromDomain(f *billing.LateFeeCharge) {
	m.FromDomainBaseEntity(f.BaseEntity)
	m.TenantID = f.TenantID
	m.InvoiceID = f.InvoiceID
	m.Amount = f.Amount
	m.Status = f.Status
	m.Reason = f.Reason
	m.WaivedAt = f.WaivedAt
	m.WaivedByPaymentID = f.WaivedByPaymentID
}

// LateFeeModelFromDomain creates a new persistence model from a domain LateFeeCharge.
func LateFeeModelFromDomain(f *billing.LateFeeCharge) *LateFeeModel {
	m := &LateFeeModel{}
	m.FromDomain(f)
	return m
}

// InstallmentPlanModel is the persistence model for the InstallmentPlan aggregate root.
type InstallmentPlanModel struct {
	TenantAggregateModel
	InvoiceID            uuid.UUID             `gorm:"type:uuid;not null;index"`
	CustomerID           uuid.UUID             `gorm:"type:uuid;not null;index"`
	PlanName             string                `gorm:"type:varchar(200)"`
	NumberOfInstallments int                   `gorm:"not null"`
	Frequency            billing.PlanFrequency `gorm:"type:varchar(20);not null"`
	CurrencyCode         string                `gorm:"type:varchar(3);not null"`
	TotalAmount          decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	InstallmentAmount    decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	ProcessingFee        decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	InterestRate         *decimal.Decimal      `gorm:"type:decimal(8,4)"`
	InterestAmount       decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	StartDate            time.Time             `gorm:"not null"`
	EndDate              time.Time             `gorm:"not null"`
	RemainingBalance     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Status               billing.PlanStatus    `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	AutoPay              bool                  `gorm:"not null;default:false"`
	PaymentMethodHint    billing.PaymentMethod `gorm:"type:varchar(20)"`
	CancelledAt          *time.Time
	CancelReason         string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (InstallmentPlanModel) TableName() string {
	return "installment_plans"
}

// ToDomain converts the persistence model to a domain InstallmentPlan entity.
func (m *InstallmentPlanModel) ToDomain() *billing.InstallmentPlan {
	return &billing.InstallmentPlan{
		TenantAggregateRoot:  m.ToDomainTenantAggregateRoot(),
		InvoiceID:            m.InvoiceID,
		CustomerID:           m.CustomerID,
		PlanName:             m.PlanName,
		NumberOfInstallments: m.NumberOfInstallments,
		Frequency:            m.Frequency,
		CurrencyCode:         valueobject.Currency(m.CurrencyCode),
		TotalAmount:          m.TotalAmount,
		InstallmentAmount:    m.InstallmentAmount,
		ProcessingFee:        m.ProcessingFee,
		InterestRate:         m.InterestRate,
		InterestAmount:       m.InterestAmount,
		StartDate:            m.StartDate,
		EndDate:              m.EndDate,
		RemainingBalance:     m.RemainingBalance,
		Status:               m.Status,
		AutoPay:              m.AutoPay,
		PaymentMethodHint:    m.PaymentMethodHint,
		CancelledAt:          m.CancelledAt,
		CancelReason:         m.CancelReason,
	}
}

// FromDomain populates the persistence model from a domain InstallmentPlan entity.
func (m *InstallmentPlanModel) FromDomain(pl *billing.InstallmentPlan) {
	m.FromDomainTenantAggregateRoot(pl.TenantAggregateRoot)
	m.InvoiceID = pl.InvoiceID
	m.CustomerID = pl.CustomerID
	m.PlanName = pl.PlanName
	m.NumberOfInstallments = pl.NumberOfInstallments
	m.Frequency = pl.Frequency
	m.CurrencyCode = pl.CurrencyCode.String()
	m.TotalAmount = pl.TotalAmount
	m.InstallmentAmount = pl.InstallmentAmount
	m.ProcessingFee = pl.ProcessingFee
	m.InterestRate = pl.InterestRate
	m.InterestAmount = pl.InterestAmount
	m.StartDate = pl.StartDate
	m.EndDate = pl.EndDate
	m.RemainingBalance = pl.RemainingBalance
	m.Status = pl.Status
	m.AutoPay = pl.AutoPay
	m.PaymentMethodHint = pl.PaymentMethodHint
	m.CancelledAt = pl.CancelledAt
	m.CancelReason = pl.CancelReason
}

// InstallmentPlanModelFromDomain creates a new persistence model from a domain InstallmentPlan.
func InstallmentPlanModelFromDomain(pl *billing.InstallmentPlan) *InstallmentPlanModel {
	m := &InstallmentPlanModel{}
	m.FromDomain(pl)
	return m
}

// InstallmentModel is the persistence model for a single scheduled installment.
type InstallmentModel struct {
	BaseModel
	TenantID uuid.UUID                 `gorm:"type:uuid;not null;index"`
	PlanID   uuid.UUID                 `gorm:"type:uuid;not null;index;uniqueIndex:idx_installment_plan_seq,priority:1"`
	Sequence int                       `gorm:"not null;uniqueIndex:idx_installment_plan_seq,priority:2"`
	DueDate  time.Time                 `gorm:"not null;index"`
	Amount   decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	Status   billing.InstallmentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaidAt   *time.Time
}

// TableName returns the table name for GORM
func (InstallmentModel) TableName() string {
	return "installments"
}

// ToDomain converts the persistence model to a domain Installment entity.
func (m *InstallmentModel) ToDomain() *billing.Installment {
	return &billing.Installment{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		PlanID:     m.PlanID,
		Sequence:   m.Sequence,
		DueDate:    m.DueDate,
		Amount:     m.Amount,
		Status:     m.Status,
		PaidAt:     m.PaidAt,
	}
}

// FromDomain populates the persistence model from a domain Installment entity.
func (m *InstallmentModel) FromDomain(i *billing.Installment) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.TenantID = i.TenantID
	m.PlanID = i.PlanID
	m.Sequence = i.Sequence
	m.DueDate = i.DueDate
	m.Amount = i.Amount
	m.Status = i.Status
	m.PaidAt = i.PaidAt
}

// InstallmentModelFromDomain creates a new persistence model from a domain Installment.
func InstallmentModelFromDomain(i *billing.Installment) *InstallmentModel {
	m := &InstallmentModel{}
	m.FromDomain(i)
	return m
}
