package domain

import (
	"fmt"
	"strings"
)

// Category is a node in the ledger category tree.
// ParentID is empty for top-level categories.
type Category struct {
	ID       string          `json:"id" yaml:"id"`
	Name     string          `json:"name" yaml:"name"`
	ParentID string          `json:"parentId,omitempty" yaml:"parent_id,omitempty"`
	Type     TransactionType `json:"type" yaml:"type"`
}

// Category IDs referenced from code
const (
	CategoryExpenseOther = "cat-expense-other"
	CategoryIncomeOther  = "cat-income-other"
)

var defaultCategories = []Category{
	{ID: "cat-expense-food", Name: "食費", Type: TransactionTypeExpense},
	{ID: "cat-expense-food-groceries", Name: "食料品", ParentID: "cat-expense-food", Type: TransactionTypeExpense},
	{ID: "cat-expense-food-dining", Name: "外食", ParentID: "cat-expense-food", Type: TransactionTypeExpense},
	{ID: "cat-expense-daily", Name: "日用品", Type: TransactionTypeExpense},
	{ID: "cat-expense-transport", Name: "交通費", Type: TransactionTypeExpense},
	{ID: "cat-expense-transport-train", Name: "電車・バス", ParentID: "cat-expense-transport", Type: TransactionTypeExpense},
	{ID: "cat-expense-transport-car", Name: "車・ガソリン", ParentID: "cat-expense-transport", Type: TransactionTypeExpense},
	{ID: "cat-expense-housing", Name: "住居費", Type: TransactionTypeExpense},
	{ID: "cat-expense-utilities", Name: "水道光熱費", Type: TransactionTypeExpense},
	{ID: "cat-expense-utilities-electric", Name: "電気", ParentID: "cat-expense-utilities", Type: TransactionTypeExpense},
	{ID: "cat-expense-utilities-gas", Name: "ガス", ParentID: "cat-expense-utilities", Type: TransactionTypeExpense},
	{ID: "cat-expense-utilities-water", Name: "水道", ParentID: "cat-expense-utilities", Type: TransactionTypeExpense},
	{ID: "cat-expense-communication", Name: "通信費", Type: TransactionTypeExpense},
	{ID: "cat-expense-medical", Name: "医療費", Type: TransactionTypeExpense},
	{ID: "cat-expense-education", Name: "教育費", Type: TransactionTypeExpense},
	{ID: "cat-expense-entertainment", Name: "娯楽費", Type: TransactionTypeExpense},
	{ID: "cat-expense-clothing", Name: "衣服・美容", Type: TransactionTypeExpense},
	{ID: "cat-expense-insurance", Name: "保険", Type: TransactionTypeExpense},
	{ID: "cat-expense-loan", Name: "ローン返済", Type: TransactionTypeExpense},
	{ID: CategoryExpenseOther, Name: "その他支出", Type: TransactionTypeExpense},
	{ID: "cat-income-salary", Name: "給与", Type: TransactionTypeIncome},
	{ID: "cat-income-bonus", Name: "賞与", Type: TransactionTypeIncome},
	{ID: "cat-income-sidejob", Name: "副業", Type: TransactionTypeIncome},
	{ID: "cat-income-investment", Name: "投資収益", Type: TransactionTypeIncome},
	{ID: "cat-income-temporary", Name: "臨時収入", Type: TransactionTypeIncome},
	{ID: CategoryIncomeOther, Name: "その他収入", Type: TransactionTypeIncome},
}

// DefaultCategories returns the system category tree
func DefaultCategories() []Category {
	return append([]Category(nil), defaultCategories...)
}

// CategoryTree indexes categories by ID
type CategoryTree struct {
	ordered []Category
	byID    map[string]Category
}

// NewCategoryTree builds a tree, rejecting duplicate IDs, unknown parents and
// children whose type differs from their parent.
func NewCategoryTree(categories []Category) (*CategoryTree, error) {
	t := &CategoryTree{
		ordered: append([]Category(nil), categories...),
		byID:    make(map[string]Category, len(categories)),
	}
	for _, c := range categories {
		if c.ID == "" || c.Name == "" {
			return nil, fmt.Errorf("invalid category: ID and Name are required")
		}
		if !ValidateTransactionType(c.Type) {
			return nil, fmt.Errorf("category %s: invalid type %q", c.ID, c.Type)
		}
		if _, dup := t.byID[c.ID]; dup {
			return nil, fmt.Errorf("category %s: %w", c.ID, ErrAlreadyExists)
		}
		t.byID[c.ID] = c
	}
	for _, c := range categories {
		if c.ParentID == "" {
			continue
		}
		parent, ok := t.byID[c.ParentID]
		if !ok {
			return nil, fmt.Errorf("category %s references unknown parent %s", c.ID, c.ParentID)
		}
		if parent.Type != c.Type {
			return nil, fmt.Errorf("category %s type %s differs from parent %s type %s", c.ID, c.Type, parent.ID, parent.Type)
		}
	}
	return t, nil
}

// DefaultCategoryTree returns the tree of DefaultCategories
func DefaultCategoryTree() *CategoryTree {
	t, err := NewCategoryTree(defaultCategories)
	if err != nil {
		panic(fmt.Sprintf("default categories are invalid: %v", err))
	}
	return t
}

// Get returns the category with id
func (t *CategoryTree) Get(id string) (Category, bool) {
	c, ok := t.byID[id]
	return c, ok
}

// Path returns the category names from the root to id joined by " > ",
// e.g. "食費 > 外食". Returns "" for an unknown id.
func (t *CategoryTree) Path(id string) string {
	var names []string
	for seen := 0; id != "" && seen < len(t.byID); seen++ {
		c, ok := t.byID[id]
		if !ok {
			break
		}
		names = append([]string{c.Name}, names...)
		id = c.ParentID
	}
	return strings.Join(names, " > ")
}

// Children returns the direct children of parentID in definition order.
// An empty parentID returns the top-level categories.
func (t *CategoryTree) Children(parentID string) []Category {
	var out []Category
	for _, c := range t.ordered {
		if c.ParentID == parentID {
			out = append(out, c)
		}
	}
	return out
}
