package ledger

import "fmt"

// Domain identifies one of the five core record collections tracked per user.
type Domain int

const (
	// DomainExpenses covers individual expense entries.
	DomainExpenses Domain = iota
	// DomainIncome covers income entries.
	DomainIncome
	// DomainCategories covers the user's expense categories.
	DomainCategories
	// DomainForValues covers the free-form "for" labels attached to expenses.
	DomainForValues
	// DomainCards covers registered payment cards.
	DomainCards
)

// AllDomains returns every domain in a stable order. The order matches the
// field order of Dataset so iteration and serialization stay aligned.
func AllDomains() []Domain {
	return []Domain{DomainExpenses, DomainIncome, DomainCategories, DomainForValues, DomainCards}
}

// String returns the wire name of the domain.
func (d Domain) String() string {
	switch d {
	case DomainExpenses:
		return "expenses"
	case DomainIncome:
		return "income"
	case DomainCategories:
		return "categories"
	case DomainForValues:
		return "forValues"
	case DomainCards:
		return "cards"
	default:
		return fmt.Sprintf("domain(%d)", int(d))
	}
}

// ParseDomain converts a wire name back into a Domain.
// It accepts the exact names produced by String.
func ParseDomain(s string) (Domain, error) {
	switch s {
	case "expenses":
		return DomainExpenses, nil
	case "income":
		return DomainIncome, nil
	case "categories":
		return DomainCategories, nil
	case "forValues":
		return DomainForValues, nil
	case "cards":
		return DomainCards, nil
	default:
		return 0, fmt.Errorf("unknown data domain %q (want expenses, income, categories, forValues, or cards)", s)
	}
}
