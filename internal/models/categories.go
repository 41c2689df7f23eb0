package models

import (
	"errors"
	"strings"
)

var (
	ErrEmptyCategoryName   = errors.New("category name must not be empty")
	ErrDuplicateCategory   = errors.New("a category with this name already exists")
	ErrInvalidCategoryType = errors.New("category type must be income or expense")
)

type Category struct {
	ID        int             `json:"id,omitempty" db:"id,omitempty"`
	UserID    int             `json:"user_id,omitempty" db:"user_id,omitempty"`
	Name      string          `json:"name" db:"name"`
	Type      TransactionType `json:"type" db:"type"`
	IsDefault bool            `json:"isDefault" db:"is_default"`
}

type defaultCategory struct {
	name string
	typ  TransactionType
}

var defaultCategories = []defaultCategory{
	{"Salário", Income},
	{"Freelance", Income},
	{"Investimentos", Income},
	{"Vendas", Income},
	{"Outros", Income},
	{"Alimentação", Expense},
	{"Transporte", Expense},
	{"Moradia", Expense},
	{"Utilidades", Expense},
	{"Lazer", Expense},
	{"Saúde", Expense},
	{"Educação", Expense},
	{"Compras", Expense},
	{"Outros", Expense},
}

// DefaultCategories returns the seed set for a new user.
func DefaultCategories(userID int) []Category {
	out := make([]Category, 0, len(defaultCategories))
	for _, d := range defaultCategories {
		out = append(out, Category{UserID: userID, Name: d.name, Type: d.typ, IsDefault: true})
	}
	return out
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidateCategory checks a candidate against the user's existing set.
// excludeID skips the category being renamed; pass 0 on create.
func ValidateCategory(existing []Category, name string, typ TransactionType, excludeID int) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyCategoryName
	}
	if !typ.Valid() {
		return ErrInvalidCategoryType
	}

	key := normalizeName(name)
	for _, c := range existing {
		if c.ID != 0 && c.ID == excludeID {
			continue
		}
		if c.Type == typ && normalizeName(c.Name) == key {
			return ErrDuplicateCategory
		}
	}
	return nil
}
