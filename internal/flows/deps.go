package flows

import (
	"context"
	"strconv"
	"time"
)

// UserRecord is the flow-local account projection.
type UserRecord struct {
	ID            string
	Email         string
	PasswordHash  string
	EmailVerified bool
	Status        string
}

// TokenPair is the flow-local credential pair shape.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// LinkRecord identifies a validated single-use link token.
type LinkRecord struct {
	ID     string
	UserID string
}

// LoginOutcome is the result of any flow that ends logged in.
type LoginOutcome struct {
	User   UserRecord
	Tokens TokenPair
}

// MessageOutcome is the uniform response of enumeration-safe flows.
type MessageOutcome struct {
	Message string
}

// EmitAuditFunc is the audit hook shared by all flows.
type EmitAuditFunc func(ctx context.Context, eventType string, success bool, userID string, err error, metadata func() map[string]string)

func noopEmitAudit(context.Context, string, bool, string, error, func() map[string]string) {}

func noopMetricInc(int) {}

func noopWarn(string, ...any) {}

func formatInt64(v int64) string {
	return strconv.FormatInt(v, 10)
}
