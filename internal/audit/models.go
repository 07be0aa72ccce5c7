package audit

import (
	"time"

	"github.com/mssola/useragent"
)

// Event is emitted from domain logic to capture security-relevant actions.
// IP is stored pre-anonymized; callers never pass a raw address.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	Actor     string    `json:"actor,omitempty"`
	Success   bool      `json:"success"`
	Detail    string    `json:"detail,omitempty"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

type Action string

const (
	ActionLoginSucceeded   Action = "login_succeeded"
	ActionLoginFailed      Action = "login_failed"
	ActionLoginRateLimited Action = "login_rate_limited"
	ActionLoginBlocked     Action = "login_blocked"
	ActionLogout           Action = "logout"
	ActionTokenRefreshed   Action = "token_refreshed"
	ActionPasswordChanged  Action = "password_changed"
	ActionProfileUpdated   Action = "profile_updated"
	ActionIPBlocked        Action = "ip_blocked"
	ActionIPUnblocked      Action = "ip_unblocked"
)

// SummarizeUserAgent reduces a raw User-Agent header to "browser/os" so audit
// rows stay readable and bounded.
func SummarizeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		return "unknown"
	}
	summary := name
	if version != "" {
		summary += " " + version
	}
	if os := ua.OS(); os != "" {
		summary += " on " + os
	}
	return summary
}
