package models

type MatchStatus string

const (
	MatchMatched      MatchStatus = "matched"
	MatchException    MatchStatus = "exception"
	MatchManualReview MatchStatus = "manual_review"
	MatchApproved     MatchStatus = "approved"
	MatchRejected     MatchStatus = "rejected"
)

type ExceptionType string

const (
	ExceptionQuantity        ExceptionType = "quantity"
	ExceptionPrice           ExceptionType = "price"
	ExceptionAmount          ExceptionType = "amount"
	ExceptionVendor          ExceptionType = "vendor"
	ExceptionMissingDocument ExceptionType = "missing_document"
)

type ExceptionSeverity string

const (
	SeverityLow      ExceptionSeverity = "low"
	SeverityMedium   ExceptionSeverity = "medium"
	SeverityHigh     ExceptionSeverity = "high"
	SeverityCritical ExceptionSeverity = "critical"
)

type BillingFrequency string

const (
	FrequencyMonthly    BillingFrequency = "monthly"
	FrequencyQuarterly  BillingFrequency = "quarterly"
	FrequencySemiannual BillingFrequency = "semiannual"
	FrequencyAnnual     BillingFrequency = "annual"
)

type BillingRunStatus string

const (
	RunPending   BillingRunStatus = "pending"
	RunRunning   BillingRunStatus = "running"
	RunCompleted BillingRunStatus = "completed"
	RunFailed    BillingRunStatus = "failed"
)

type ReceivableStatus string

const (
	ReceivableOpen    ReceivableStatus = "open"
	ReceivablePartial ReceivableStatus = "partial"
	ReceivablePaid    ReceivableStatus = "paid"
)

type ChargeType string

const (
	ChargeAssessment ChargeType = "assessment"
	ChargeLateFee    ChargeType = "late_fee"
)

type CreditType string

const (
	CreditOverpayment CreditType = "overpayment"
)

type LateFeeMode string

const (
	LateFeePercentage LateFeeMode = "percentage"
	LateFeeDaily      LateFeeMode = "daily"
	LateFeeCompound   LateFeeMode = "compound"
)
