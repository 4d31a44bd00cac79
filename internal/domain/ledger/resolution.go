package ledger

import "strings"

// ResolutionInput carries the attributes of a business event the expense
// account is resolved from. All fields are optional; resolution walks the
// rule table in priority order and stops at the first match.
type ResolutionInput struct {
	Description     string
	Category        string // explicit category supplied by the caller
	RequestCategory string // category on the originating request
	RequestType     string // e.g. "maintenance", "operational", "supply"
}

// categoryAccounts is the fixed category -> account table consulted before
// any free-text matching.
var categoryAccounts = map[string]string{
	"maintenance":       AccountMaintenance,
	"repairs":           AccountMaintenance,
	"cleaning":          AccountCleaning,
	"security":          AccountSecurity,
	"landscaping":       AccountLandscaping,
	"supplies":          AccountSupplies,
	"utilities":         AccountUtilities,
	"professional_fees": AccountProfessionalFee,
	"services":          AccountProfessionalFee,
	"general":           AccountGeneralExpense,
}

// keywordRule maps free-text description keywords to an account code
type keywordRule struct {
	keywords []string
	code     string
}

// keywordRules is ordered: earlier rules win. Maintenance trades come
// first so "plumbing service call" resolves to maintenance, not fees.
var keywordRules = []keywordRule{
	{[]string{"plumb", "electric", "hvac", "aircon", "repair", "leak", "geyser", "roof", "paint"}, AccountMaintenance},
	{[]string{"clean", "laundry", "hygiene", "pest"}, AccountCleaning},
	{[]string{"security", "guard", "alarm", "access control"}, AccountSecurity},
	{[]string{"landscap", "garden", "lawn", "tree"}, AccountLandscaping},
	{[]string{"fuel", "petrol", "diesel", "food", "grocer", "stationery", "supplies", "consumable"}, AccountSupplies},
	{[]string{"water", "electricity bill", "municipal", "rates"}, AccountUtilities},
	{[]string{"service", "inspect", "audit", "legal", "consult", "assessment"}, AccountProfessionalFee},
}

// requestTypeAccounts maps the request type to an account when neither the
// category nor the description resolved one.
var requestTypeAccounts = map[string]string{
	"maintenance": AccountMaintenance,
	"supply":      AccountSupplies,
	"service":     AccountProfessionalFee,
	"utility":     AccountUtilities,
}

// ResolveExpenseCode resolves the expense account code for a business
// event. Resolution order: explicit category, description keywords,
// request category for operational requests, request type, then the
// general property-maintenance fallback.
func ResolveExpenseCode(in ResolutionInput) string {
	if code, ok := categoryAccounts[normalize(in.Category)]; ok {
		return code
	}

	desc := normalize(in.Description)
	if desc != "" {
		for _, rule := range keywordRules {
			for _, kw := range rule.keywords {
				if strings.Contains(desc, kw) {
					return rule.code
				}
			}
		}
	}

	if normalize(in.RequestType) == "operational" {
		if code, ok := categoryAccounts[normalize(in.RequestCategory)]; ok {
			return code
		}
	}

	if code, ok := requestTypeAccounts[normalize(in.RequestType)]; ok {
		return code
	}

	return AccountMaintenance
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeName folds case and whitespace for fuzzy business-name
// matching when resolving vendor sub-ledgers.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
