package lexical

import (
	"strings"

	"github.com/christiano-developer/gaur/internal/models"
)

// fraudCategory binds a fraud type label to the trigger substrings that
// select it. Categories are evaluated in slice order and the first match
// wins, so earlier entries take priority over later ones.
type fraudCategory struct {
	Label    string
	Triggers []string
}

var fraudCategories = []fraudCategory{
	{models.FraudTypeHotelBooking, []string{"hotel", "booking", "resort", "stay", "accommodation"}},
	{models.FraudTypeInvestment, []string{"investment", "returns", "profit", "earn", "income"}},
	{models.FraudTypeGambling, []string{"lottery", "jackpot", "satta", "bet", "casino"}},
	{models.FraudTypeAdultServices, []string{"massage", "escort", "companion", "service"}},
	{models.FraudTypeFakeDocuments, []string{"certificate", "passport", "license", "aadhaar", "pan"}},
	{models.FraudTypeCrypto, []string{"bitcoin", "crypto", "forex", "trading"}},
	{models.FraudTypeAdvancePayment, []string{"advance", "payment", "upi", "transfer"}},
}

// classifyFraudType picks the fraud type for a set of matched keywords.
// Triggers are tested against the joined keyword string, not the full post
// text, so only keywords that actually matched influence the category.
func classifyFraudType(matchedKeywords []string) string {
	joined := strings.ToLower(strings.Join(matchedKeywords, " "))

	for _, cat := range fraudCategories {
		for _, trigger := range cat.Triggers {
			if strings.Contains(joined, trigger) {
				return cat.Label
			}
		}
	}
	return models.FraudTypeGeneric
}
