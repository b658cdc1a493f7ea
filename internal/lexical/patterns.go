package lexical

import "regexp"

// fraudPattern pairs a named regex with the weight it contributes to the
// pattern component of the score. Patterns run against lowercased text.
type fraudPattern struct {
	Name   string
	Regex  *regexp.Regexp
	Weight float64
	Reason string
}

var fraudPatterns = []fraudPattern{
	{
		Name:   "phone_number_in_text",
		Regex:  regexp.MustCompile(`\b\d{10}\b|\b\+91[\s-]?\d{10}\b`),
		Weight: 0.2,
		Reason: "Contains phone number (unusual for legitimate posts)",
	},
	{
		Name:   "multiple_payment_methods",
		Regex:  regexp.MustCompile(`(upi|paytm|phonepe|googlepay|gpay|bhim)`),
		Weight: 0.15,
		Reason: "Mentions payment methods",
	},
	{
		Name:   "excessive_discounts",
		Regex:  regexp.MustCompile(`([567890]\d%\s*(off|discount))|((off|discount)\s*[567890]\d%)`),
		Weight: 0.25,
		Reason: "Unrealistic discount (50%+ off)",
	},
	{
		Name:   "urgency_pressure",
		Regex:  regexp.MustCompile(`(urgent|hurry|limited|today only|last chance|act now)`),
		Weight: 0.2,
		Reason: "Urgency/pressure tactics",
	},
	{
		Name:   "guaranteed_returns",
		Regex:  regexp.MustCompile(`(guaranteed|100%|risk[- ]?free|double your money)`),
		Weight: 0.3,
		Reason: "Unrealistic guarantees",
	},
}
