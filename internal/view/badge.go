package view

import "procurement/domain"

// Badge tones map to the console stylesheet.
const (
	ToneNeutral = "neutral"
	ToneInfo    = "info"
	ToneSuccess = "success"
	ToneWarning = "warning"
	ToneDanger  = "danger"
)

// Badge is the label/tone pair templates render next to a status value.
// It is also embedded in JSON list payloads so API consumers do not have
// to duplicate the mapping.
type Badge struct {
	Label string `json:"label"`
	Tone  string `json:"tone"`
}

// StatusBadge maps a purchase-order status to its badge.
func StatusBadge(status string) Badge {
	switch status {
	case domain.StatusPending:
		return Badge{Label: "Pending verification", Tone: ToneWarning}
	case domain.StatusVerified:
		return Badge{Label: "Verified", Tone: ToneSuccess}
	case domain.StatusRejected:
		return Badge{Label: "Rejected", Tone: ToneDanger}
	case domain.StatusFulfilled:
		return Badge{Label: "Fulfilled", Tone: ToneInfo}
	case domain.StatusCancelled:
		return Badge{Label: "Cancelled", Tone: ToneNeutral}
	}
	return Badge{Label: status, Tone: ToneNeutral}
}

// RequestBadge maps a custom item request status to its badge.
func RequestBadge(status string) Badge {
	switch status {
	case domain.RequestOpen:
		return Badge{Label: "Open", Tone: ToneWarning}
	case domain.RequestApproved:
		return Badge{Label: "Approved", Tone: ToneSuccess}
	case domain.RequestRejected:
		return Badge{Label: "Rejected", Tone: ToneDanger}
	case domain.RequestConverted:
		return Badge{Label: "Converted", Tone: ToneInfo}
	}
	return Badge{Label: status, Tone: ToneNeutral}
}

// PayoutBadge maps a payout status to its badge.
func PayoutBadge(status string) Badge {
	switch status {
	case domain.PayoutRequested:
		return Badge{Label: "Requested", Tone: ToneInfo}
	case domain.PayoutSent:
		return Badge{Label: "Sent", Tone: ToneSuccess}
	case domain.PayoutFailed:
		return Badge{Label: "Failed", Tone: ToneDanger}
	}
	return Badge{Label: status, Tone: ToneNeutral}
}
