// Package categorize infers a spending category from a transaction
// description using a fixed, ordered keyword table.
package categorize

// Rule maps one category label to the keywords that select it.
type Rule struct {
	Category string
	Keywords []string
}

// DefaultRules is the keyword table shipped with the engine. Declaration order
// is a behavioral invariant: keywords overlap across categories, and when more
// than one category matches a description the earliest declared one wins, so
// more specific categories must stay above more general ones. Bump tableVersion
// when editing.
const tableVersion = 3

func DefaultRules() []Rule {
	return []Rule{
		{"Income", []string{"payroll", "direct dep", "salary", "paycheck", "dividend", "interest payment"}},
		{"Rent", []string{"rent", "landlord", "property mgmt", "apartment"}},
		{"Mortgage", []string{"mortgage", "home loan", "escrow"}},
		{"Gas", []string{"shell", "chevron", "exxon", "mobil", "bp ", "sunoco", "fuel", "gas station", "76 "}},
		{"Groceries", []string{"grocery", "supermarket", "whole foods", "trader joe", "safeway", "kroger", "aldi", "wegmans", "market"}},
		{"Dining", []string{"restaurant", "cafe", "coffee", "starbucks", "mcdonald", "chipotle", "pizza", "doordash", "grubhub", "uber eats", "bar & grill"}},
		{"Transport", []string{"uber", "lyft", "transit", "metro", "parking", "toll", "amtrak"}},
		{"Utilities", []string{"electric", "water", "sewer", "utility", "power co", "con ed", "pg&e", "internet", "comcast", "verizon", "t-mobile"}},
		{"Insurance", []string{"insurance", "geico", "allstate", "state farm", "premium"}},
		{"Health", []string{"pharmacy", "cvs", "walgreens", "clinic", "dental", "medical", "doctor"}},
		{"Entertainment", []string{"netflix", "spotify", "hulu", "cinema", "theater", "steam", "playstation", "xbox"}},
		{"Shopping", []string{"amazon", "walmart", "target", "costco", "best buy", "ebay"}},
		{"Fees", []string{"service fee", "overdraft", "maintenance fee", "atm fee", "wire fee"}},
	}
}
