package risk

import (
	"regexp"
	"strings"
)

// =============================================================================
// RTO RISK EVALUATOR
// =============================================================================
// Cash-on-delivery and prepaid orders with junk shipping details are the main
// source of return-to-origin losses. Evaluate runs a cheap heuristic over the
// shipping contact before an order is released for fulfilment.

// Verdict is the outcome of a risk evaluation.
type Verdict struct {
	Safe    bool     `json:"safe"`
	Reasons []string `json:"reasons,omitempty"`
}

// Input carries the shipping contact fields under evaluation.
type Input struct {
	Phone   string
	Address string
	Pincode string
}

var (
	nonDigitRegex = regexp.MustCompile(`\D`)
	pincodeRegex  = regexp.MustCompile(`^\d{6}$`)
)

const minAddressLength = 10

// Evaluate applies the heuristic checks:
//   - phone must contain 10 to 12 digits once separators are stripped
//   - trimmed address must be at least 10 characters
//   - pincode must be exactly 6 digits
//
// A Verdict with Safe=false lists every failed check, not just the first.
func Evaluate(in Input) Verdict {
	var reasons []string

	digits := nonDigitRegex.ReplaceAllString(in.Phone, "")
	if len(digits) < 10 || len(digits) > 12 {
		reasons = append(reasons, "invalid phone number")
	}

	if len(strings.TrimSpace(in.Address)) < minAddressLength {
		reasons = append(reasons, "address too short")
	}

	if !pincodeRegex.MatchString(in.Pincode) {
		reasons = append(reasons, "invalid pincode")
	}

	return Verdict{
		Safe:    len(reasons) == 0,
		Reasons: reasons,
	}
}
