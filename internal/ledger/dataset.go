package ledger

// Dataset is the complete set of a user's core records across all five
// domains. It is the unit of snapshot persistence and export.
type Dataset struct {
	Expenses   []Expense  `json:"expenses"`
	Income     []Income   `json:"income"`
	Categories []Category `json:"categories"`
	ForValues  []ForValue `json:"forValues"`
	Cards      []Card     `json:"cards"`
}

// Records holds the rows of exactly one domain. At most one field is
// populated; which one is determined by the Domain that produced it.
type Records struct {
	Expenses   []Expense  `json:"expenses,omitempty"`
	Income     []Income   `json:"income,omitempty"`
	Categories []Category `json:"categories,omitempty"`
	ForValues  []ForValue `json:"forValues,omitempty"`
	Cards      []Card     `json:"cards,omitempty"`
}

// Len returns the number of rows held, regardless of domain.
func (r Records) Len() int {
	return len(r.Expenses) + len(r.Income) + len(r.Categories) + len(r.ForValues) + len(r.Cards)
}

// Len returns the total number of rows held across all domains.
func (d Dataset) Len() int {
	return len(d.Expenses) + len(d.Income) + len(d.Categories) + len(d.ForValues) + len(d.Cards)
}

// Slice extracts the records of a single domain from the dataset.
func (d Dataset) Slice(dom Domain) Records {
	switch dom {
	case DomainExpenses:
		return Records{Expenses: d.Expenses}
	case DomainIncome:
		return Records{Income: d.Income}
	case DomainCategories:
		return Records{Categories: d.Categories}
	case DomainForValues:
		return Records{ForValues: d.ForValues}
	case DomainCards:
		return Records{Cards: d.Cards}
	default:
		return Records{}
	}
}

// SetSlice replaces the records of a single domain in the dataset.
func (d *Dataset) SetSlice(dom Domain, r Records) {
	switch dom {
	case DomainExpenses:
		d.Expenses = r.Expenses
	case DomainIncome:
		d.Income = r.Income
	case DomainCategories:
		d.Categories = r.Categories
	case DomainForValues:
		d.ForValues = r.ForValues
	case DomainCards:
		d.Cards = r.Cards
	}
}

// Counts returns the per-domain row counts in AllDomains order.
func (d Dataset) Counts() map[Domain]int {
	return map[Domain]int{
		DomainExpenses:   len(d.Expenses),
		DomainIncome:     len(d.Income),
		DomainCategories: len(d.Categories),
		DomainForValues:  len(d.ForValues),
		DomainCards:      len(d.Cards),
	}
}
