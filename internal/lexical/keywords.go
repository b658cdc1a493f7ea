package lexical

// fraudKeywords is the curated indicator list. Matching is case-insensitive
// substring containment, so multi-word entries match across whitespace exactly
// as written.
var fraudKeywords = []string{
	// Payment/Financial - English
	"advance payment", "advance", "upfront payment", "send money", "transfer money",
	"upi", "paytm", "phonepe", "googlepay", "gpay", "payment first", "pay now",
	"bank transfer", "wire transfer", "deposit now", "booking amount",

	// Tourism/Hotel - English
	"cheap hotel", "hotel booking", "cheap accommodation", "discounted stay",
	"limited offer", "book now", "hurry", "only few left", "last rooms",
	"free trip", "free stay", "urgent booking", "70% off", "80% off", "90% off",
	"luxury resort", "beachfront", "sea view", "private pool",

	// Urgency/Pressure
	"urgent", "immediately", "today only", "expires today", "last chance",
	"limited time", "act now", "don't miss", "exclusive deal", "special offer",

	// Investment scams
	"guaranteed returns", "double your money", "triple your investment",
	"risk-free", "no risk", "100% profit", "passive income", "work from home",
	"earn lakhs", "earn crores", "get rich quick", "easy money",

	// Marketplace/Trade
	"cash on delivery not available", "advance only", "no cod",
	"original product", "brand new", "sealed pack", "factory price",
	"wholesale price", "dealer price", "imported", "usa imported",

	// Contact red flags
	"whatsapp only", "call me", "dm for details", "inbox me",
	"telegram", "chat now", "message for price", "serious buyers only",

	// Hindi (Devanagari)
	"पैसे भेजो", "एडवांस", "बुकिंग", "सस्ता होटल", "मुफ्त",
	"तुरंत", "आज ही", "गारंटीड", "रिटर्न", "पैसा कमाएं",

	// Marathi (Devanagari)
	"पैसे पाठवा", "बुकिंग", "स्वस्त", "मोफत",

	// Romanized Hindi/Marathi
	"paise bhejo", "booking karo", "sasta hotel", "muft",
	"guarantee", "paisa kamao", "jaldi karo",

	// Gambling
	"bet", "betting", "satta", "matka", "lottery", "jackpot",
	"casino", "poker", "roulette", "gambling", "games", "earn by playing",

	// Adult services
	"massage service", "escort", "female companion", "full service",
	"call girl", "vip service", "private service", "24/7 available",

	// Fake documents
	"fake certificate", "duplicate", "passport", "driving license",
	"aadhaar", "pan card", "marksheet", "degree certificate",

	// Cryptocurrency
	"bitcoin", "crypto", "trading bot", "forex", "binary options",
	"mining", "nft", "web3", "pump and dump",
}
