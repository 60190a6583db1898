// Package shopping merges the ingredients of the recipes in a user's cart
// into a single downloadable list.
package shopping

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
)

const (
	Filename    = "shopping_list.txt"
	ContentType = "text/plain"
)

// ErrMissingIngredient means a recipe row points at an ingredient that was
// not loaded. It is a storage invariant violation.
var ErrMissingIngredient = errors.New("shopping: recipe ingredient without ingredient")

// DisplayKey is the merge key for a list line. Two ingredient records with
// the same name and unit end up on the same line.
func DisplayKey(name, unit string) string {
	return name + " (" + unit + ")"
}

type Item struct {
	Key    string `json:"name"`
	Amount int    `json:"amount"`
}

// List keeps summed amounts in first-seen key order.
type List struct {
	items []Item
	index map[string]int
}

func NewList() *List {
	return &List{index: make(map[string]int)}
}

func (l *List) Add(key string, amount int) {
	if i, ok := l.index[key]; ok {
		l.items[i].Amount += amount
		return
	}
	l.index[key] = len(l.items)
	l.items = append(l.items, Item{Key: key, Amount: amount})
}

// Amount returns the summed amount for key and whether it is present.
func (l *List) Amount(key string) (int, bool) {
	i, ok := l.index[key]
	if !ok {
		return 0, false
	}
	return l.items[i].Amount, true
}

// Items returns a copy of the lines in insertion order.
func (l *List) Items() []Item {
	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}

func (l *List) Len() int {
	return len(l.items)
}

// Merge adds every line of other into l.
func (l *List) Merge(other *List) {
	for _, it := range other.items {
		l.Add(it.Key, it.Amount)
	}
}

// Aggregate sums ingredient amounts across recipes. Recipes must have
// Ingredients.Ingredient preloaded.
func Aggregate(ctx context.Context, recipes []models.Recipe) (*List, error) {
	list := NewList()
	for _, recipe := range recipes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, ri := range recipe.Ingredients {
			if ri.Ingredient.ID == uuid.Nil {
				return nil, fmt.Errorf("%w: recipe %s ingredient %s", ErrMissingIngredient, recipe.ID, ri.IngredientID)
			}
			list.Add(DisplayKey(ri.Ingredient.Name, ri.Ingredient.MeasurementUnit), ri.Amount)
		}
	}
	return list, nil
}

// Render writes one line per item, "- " key, the dash separator and the
// amount, joined by newlines with no trailing newline.
func Render(l *List) string {
	var b strings.Builder
	for i, it := range l.items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(it.Key)
		b.WriteString(" — ")
		b.WriteString(strconv.Itoa(it.Amount))
	}
	return b.String()
}
