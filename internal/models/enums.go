package models

type DeclarationType string

const (
	DeclarationInbound  DeclarationType = "inbound"
	DeclarationOutbound DeclarationType = "outbound"
)

type DeclarationStatus string

const (
	DeclarationDraft    DeclarationStatus = "draft"
	DeclarationPending  DeclarationStatus = "pending"
	DeclarationApproved DeclarationStatus = "approved"
	DeclarationRejected DeclarationStatus = "rejected"
)

type CustomerType string

const (
	CustomerDistributor  CustomerType = "distributor"
	CustomerManufacturer CustomerType = "manufacturer"
	CustomerRetailer     CustomerType = "retailer"
	CustomerTrader       CustomerType = "trader"
)

// Severity tags a user-facing notification.
type Severity string

const (
	SeverityDefault     Severity = "default"
	SeverityDestructive Severity = "destructive"
)

// CheckOutcome is the verdict of a single geo validation stage.
type CheckOutcome string

const (
	CheckPass CheckOutcome = "pass"
	CheckFail CheckOutcome = "fail"
)
