package lifecycle

import (
	"fmt"
	"time"
)

// RejectReason identifies why an operation's preconditions failed.
// Rejections are ordinary values reported back to the actor, never errors.
type RejectReason string

const (
	RejectNotConfigured    RejectReason = "not-configured"
	RejectBlacklisted      RejectReason = "blacklisted"
	RejectMaintenance      RejectReason = "maintenance"
	RejectRateLimited      RejectReason = "rate-limited"
	RejectQuotaExceeded    RejectReason = "quota-exceeded"
	RejectCategoryMissing  RejectReason = "category-missing"
	RejectChannelForbidden RejectReason = "channel-creation-forbidden"
	RejectNotSupportStaff  RejectReason = "not-support-staff"
	RejectAlreadyClaimed   RejectReason = "already-claimed"
	RejectNotTicketChannel RejectReason = "not-ticket-channel"
	RejectNotPermitted     RejectReason = "not-permitted"
)

// Rejection carries the reason plus whatever context the presentation
// layer needs to phrase it for the actor.
type Rejection struct {
	Reason     RejectReason
	RetryAfter time.Duration // rate-limited
	Count      int           // quota-exceeded
	Limit      int           // quota-exceeded
	HolderID   string        // already-claimed
}

// Message renders the default human-readable form of the rejection.
func (r *Rejection) Message() string {
	switch r.Reason {
	case RejectNotConfigured:
		return "The ticket system is not configured for this server. Ask an administrator to run `/setup-tickets`."
	case RejectBlacklisted:
		return "You are not allowed to create tickets on this server."
	case RejectMaintenance:
		return "The ticket system is in maintenance mode. Please try again later."
	case RejectRateLimited:
		return fmt.Sprintf("Please wait %d seconds before creating another ticket.", int(r.RetryAfter.Seconds())+1)
	case RejectQuotaExceeded:
		return fmt.Sprintf("You already have %d of %d allowed open tickets. Close one before creating another.", r.Count, r.Limit)
	case RejectCategoryMissing:
		return "That ticket category no longer exists. Please pick another from the panel."
	case RejectChannelForbidden:
		return "The bot lacks permission to create the ticket channel. Ask an administrator to check its permissions."
	case RejectNotSupportStaff:
		return "Only support staff can do that."
	case RejectAlreadyClaimed:
		if r.HolderID != "" {
			return fmt.Sprintf("This ticket has already been claimed by <@%s>.", r.HolderID)
		}
		return "This ticket has already been claimed."
	case RejectNotTicketChannel:
		return "This command only works inside a ticket channel."
	case RejectNotPermitted:
		return "You don't have permission to do that."
	}
	return "Request rejected."
}
