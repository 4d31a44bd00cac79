package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransactionType tags the business meaning of a transaction
type TransactionType string

const (
	TransactionTypePayment        TransactionType = "payment"
	TransactionTypeApproval       TransactionType = "approval"
	TransactionTypeAdvancePayment TransactionType = "advance_payment"
	TransactionTypeDebtSettlement TransactionType = "debt_settlement"
	TransactionTypePettyCash      TransactionType = "petty_cash"
	TransactionTypeReversal       TransactionType = "reversal"
)

// IsValid checks if the type is a valid TransactionType
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypePayment, TransactionTypeApproval, TransactionTypeAdvancePayment,
		TransactionTypeDebtSettlement, TransactionTypePettyCash, TransactionTypeReversal:
		return true
	}
	return false
}

// EntrySource identifies the subsystem that produced an entry
type EntrySource string

const (
	SourceExpenseAccrual      EntrySource = "expense_accrual"
	SourceRentAccrual         EntrySource = "rent_accrual"
	SourceDeferredRecognition EntrySource = "deferred_recognition"
	SourcePayment             EntrySource = "payment"
	SourceVendorPayment       EntrySource = "vendor_payment"
	SourcePettyCashAllocation EntrySource = "petty_cash_allocation"
	SourcePettyCashExpense    EntrySource = "petty_cash_expense"
	SourceReversal            EntrySource = "reversal"
)

// CashMoving returns true if entries from this source represent actual
// cash movement (used by the cash-basis transaction listing)
func (s EntrySource) CashMoving() bool {
	switch s {
	case SourcePayment, SourceVendorPayment, SourcePettyCashAllocation, SourcePettyCashExpense:
		return true
	}
	return false
}

// EntryStatus represents the lifecycle state of a transaction entry
type EntryStatus string

const (
	EntryStatusDraft    EntryStatus = "draft"
	EntryStatusPosted   EntryStatus = "posted"
	EntryStatusReversed EntryStatus = "reversed"
)

// IsValid checks if the status is a valid EntryStatus
func (s EntryStatus) IsValid() bool {
	switch s {
	case EntryStatusDraft, EntryStatusPosted, EntryStatusReversed:
		return true
	}
	return false
}

// LineEntry is one debit or credit line inside a transaction entry.
// Exactly one of Debit/Credit is positive; the other is zero.
// Period carries the billing period ("2006-01") a rent line settles or
// defers, empty for lines with no period attribution.
type LineEntry struct {
	AccountCode string          `json:"account_code"`
	AccountType AccountType     `json:"account_type"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	Period      string          `json:"period,omitempty"`
}

// DebitLine builds a debit line
func DebitLine(accountCode string, accountType AccountType, amount decimal.Decimal, description string) LineEntry {
	return LineEntry{
		AccountCode: accountCode,
		AccountType: accountType,
		Debit:       amount,
		Credit:      decimal.Zero,
		Description: description,
	}
}

// CreditLine builds a credit line
func CreditLine(accountCode string, accountType AccountType, amount decimal.Decimal, description string) LineEntry {
	return LineEntry{
		AccountCode: accountCode,
		AccountType: accountType,
		Debit:       decimal.Zero,
		Credit:      amount,
		Description: description,
	}
}

// WithPeriod returns a copy of the line tagged with a billing period
func (l LineEntry) WithPeriod(period string) LineEntry {
	l.Period = period
	return l
}

// Metadata is free-form key/value context attached to an entry
// (payment month, student id, whether a liability was settled, ...)
type Metadata map[string]string

// Value implements driver.Valuer for database storage
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for database retrieval
func (m *Metadata) Scan(value any) error {
	if value == nil {
		*m = Metadata{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Metadata", value)
	}
	return json.Unmarshal(data, m)
}

// Common metadata keys
const (
	MetaCategory         = "category"
	MetaStudentID        = "student_id"
	MetaPaymentMethod    = "payment_method"
	MetaPaymentPeriod    = "payment_period"
	MetaClassification   = "classification"
	MetaVendorID         = "vendor_id"
	MetaExpenseID        = "expense_id"
	MetaSettledLiability = "settled_liability"
	MetaReversedEntryID  = "reversed_entry_id"
)

// Transaction is the header record for one posted business event.
// The economic date may differ from the creation time. Every transaction
// must be attributable to exactly one residence. It owns one
// TransactionEntry.
type Transaction struct {
	shared.BaseAggregateRoot
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Type        TransactionType `json:"type"`
	Reference   string          `json:"reference"`
	ResidenceID uuid.UUID       `json:"residence_id"`
	CreatedBy   string          `json:"created_by"`
	Entry       *TransactionEntry
}

// NewTransaction creates a transaction header. ResidenceID is mandatory;
// callers with a default-residence fallback must resolve it before this.
func NewTransaction(date time.Time, description string, txType TransactionType, reference string, residenceID uuid.UUID, createdBy string) (*Transaction, error) {
	if residenceID == uuid.Nil {
		return nil, shared.ErrMissingResidence
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", fmt.Sprintf("Transaction type %q is not valid", txType))
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Date:              date,
		Description:       description,
		Type:              txType,
		Reference:         reference,
		ResidenceID:       residenceID,
		CreatedBy:         createdBy,
	}, nil
}

// TransactionEntry is an immutable, balanced posting: an ordered list of
// line entries whose debits and credits are equal. Corrections are made
// by posting an offsetting entry, never by mutation.
type TransactionEntry struct {
	shared.BaseAggregateRoot
	TransactionID uuid.UUID       `json:"transaction_id"`
	Lines         []LineEntry     `json:"lines"`
	TotalDebit    decimal.Decimal `json:"total_debit"`
	TotalCredit   decimal.Decimal `json:"total_credit"`
	Source        EntrySource     `json:"source"`
	SourceID      string          `json:"source_id"`
	// StudentID tags entries that belong to one student's ledger so the
	// receivable balance and per-period allocations can be derived by query.
	StudentID *uuid.UUID  `json:"student_id,omitempty"`
	Status    EntryStatus `json:"status"`
	Metadata  Metadata    `json:"metadata"`
}

// NewTransactionEntry builds a posted entry for the given transaction,
// validating the balance invariant. An unbalanced line set is a
// programming error on the caller's side and fails loudly.
func NewTransactionEntry(transactionID uuid.UUID, source EntrySource, sourceID string, lines []LineEntry, metadata Metadata) (*TransactionEntry, error) {
	if transactionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TRANSACTION", "Transaction ID cannot be empty")
	}
	if source == "" {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Entry source cannot be empty")
	}
	if len(lines) < 2 {
		return nil, shared.NewDomainError("INVALID_LINES", "An entry requires at least one debit and one credit line")
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for i, line := range lines {
		if line.AccountCode == "" {
			return nil, shared.NewDomainError("INVALID_LINES", fmt.Sprintf("Line %d has no account code", i))
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return nil, shared.NewDomainError("INVALID_LINES", fmt.Sprintf("Line %d has a negative amount", i))
		}
		if line.Debit.IsPositive() == line.Credit.IsPositive() {
			return nil, shared.NewDomainError("INVALID_LINES", fmt.Sprintf("Line %d must have exactly one of debit or credit set", i))
		}
		totalDebit = totalDebit.Add(line.Debit)
		totalCredit = totalCredit.Add(line.Credit)
	}

	if !totalDebit.Equal(totalCredit) {
		return nil, shared.ErrUnbalancedEntry
	}
	if totalDebit.IsZero() {
		return nil, shared.NewDomainError("INVALID_LINES", "Entry total cannot be zero")
	}

	if metadata == nil {
		metadata = Metadata{}
	}

	e := &TransactionEntry{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TransactionID:     transactionID,
		Lines:             lines,
		TotalDebit:        totalDebit,
		TotalCredit:       totalCredit,
		Source:            source,
		SourceID:          sourceID,
		Status:            EntryStatusPosted,
		Metadata:          metadata,
	}

	e.AddDomainEvent(NewEntryPostedEvent(e))

	return e, nil
}

// TagStudent attributes the entry to a student's ledger
func (e *TransactionEntry) TagStudent(studentID uuid.UUID) {
	e.StudentID = &studentID
}

// IsPosted returns true if the entry is posted
func (e *TransactionEntry) IsPosted() bool {
	return e.Status == EntryStatusPosted
}

// MarkReversed records that an offsetting entry has been posted for this
// one. The lines themselves are never touched.
func (e *TransactionEntry) MarkReversed(offsetEntryID uuid.UUID) error {
	if e.Status != EntryStatusPosted {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reverse entry in %s status", e.Status))
	}
	e.Status = EntryStatusReversed
	e.Metadata[MetaReversedEntryID] = offsetEntryID.String()
	e.IncrementVersion()
	e.AddDomainEvent(NewEntryReversedEvent(e, offsetEntryID))
	return nil
}

// OffsetLines returns the mirror image of the entry's lines, used to
// build the offsetting correction entry.
func (e *TransactionEntry) OffsetLines() []LineEntry {
	offset := make([]LineEntry, len(e.Lines))
	for i, line := range e.Lines {
		offset[i] = LineEntry{
			AccountCode: line.AccountCode,
			AccountType: line.AccountType,
			Debit:       line.Credit,
			Credit:      line.Debit,
			Description: "Reversal: " + line.Description,
			Period:      line.Period,
		}
	}
	return offset
}

// CreditedAccount returns the account code of the first credit line
// matching the given type, or empty if none. Used to locate the liability
// account an accrual originally credited.
func (e *TransactionEntry) CreditedAccount(accountType AccountType) string {
	for _, line := range e.Lines {
		if line.AccountType == accountType && line.Credit.IsPositive() {
			return line.AccountCode
		}
	}
	return ""
}
