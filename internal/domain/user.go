package domain

import "time"

type KYCStatus string

const (
	KYCPending  KYCStatus = "pending"
	KYCApproved KYCStatus = "approved"
	KYCRejected KYCStatus = "rejected"
)

// User carries only what the ledger core consumes: identity, role, and the
// KYC flag that gates investments, loans, and large deposits. Account
// management lives in an external collaborator.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	KYCStatus KYCStatus `json:"kyc_status"`
	CreatedAt time.Time `json:"created_at"`
}
