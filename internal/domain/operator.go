package domain

import "time"

// OperatorRole gates access to the audit API.
type OperatorRole string

const (
	RoleOperator OperatorRole = "OPERATOR"
	RoleAdmin    OperatorRole = "ADMIN"
)

// Operator is a staff account that reads the event log and alert history.
type Operator struct {
	ID           string
	Email        string
	PasswordHash string
	Role         OperatorRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
