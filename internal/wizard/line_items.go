package wizard

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DefaultUnit is the base mass unit assigned to new line items.
const DefaultUnit = "kg"

// newItemID is swapped in tests that need predictable identifiers.
var newItemID = uuid.NewString

type LineItem struct {
	ID             string `json:"id"`
	HSNCode        string `json:"hsnCode"`
	ProductName    string `json:"productName"`
	ScientificName string `json:"scientificName,omitempty"`
	Quantity       string `json:"quantity"`
	Unit           string `json:"unit"`
	RMID           string `json:"rmId,omitempty"`
}

type ItemField string

const (
	FieldHSNCode        ItemField = "hsnCode"
	FieldProductName    ItemField = "productName"
	FieldScientificName ItemField = "scientificName"
	FieldQuantity       ItemField = "quantity"
	FieldUnit           ItemField = "unit"
	FieldRMID           ItemField = "rmId"
)

func (f ItemField) IsValid() bool {
	switch f {
	case FieldHSNCode, FieldProductName, FieldScientificName, FieldQuantity, FieldUnit, FieldRMID:
		return true
	default:
		return false
	}
}

func NewLineItem() LineItem {
	return LineItem{ID: newItemID(), Unit: DefaultUnit}
}

// ParsedQuantity returns the numeric quantity and whether it is a finite number.
func (i LineItem) ParsedQuantity() (float64, bool) {
	q, err := strconv.ParseFloat(strings.TrimSpace(i.Quantity), 64)
	if err != nil || math.IsNaN(q) || math.IsInf(q, 0) {
		return 0, false
	}
	return q, true
}

// IsValid requires hsnCode, productName and a quantity greater than zero.
func (i LineItem) IsValid() bool {
	if strings.TrimSpace(i.HSNCode) == "" || strings.TrimSpace(i.ProductName) == "" {
		return false
	}
	q, ok := i.ParsedQuantity()
	return ok && q > 0
}

// ValidItems keeps the valid items in display order.
func ValidItems(items []LineItem) []LineItem {
	valid := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.IsValid() {
			valid = append(valid, item)
		}
	}
	return valid
}

func AddItem(s State) State {
	out := s.clone()
	out.Draft.Items = append(out.Draft.Items, NewLineItem())
	return out
}

// RemoveItem drops the item with id. Removing the last item is allowed here;
// callers that need at least one row enforce that themselves.
func RemoveItem(s State, id string) State {
	idx := indexOfItem(s.Draft.Items, id)
	if idx < 0 {
		return s
	}
	out := s.clone()
	out.Draft.Items = slices.Delete(out.Draft.Items, idx, idx+1)
	return out
}

func UpdateItem(s State, id string, field ItemField, value string) State {
	idx := indexOfItem(s.Draft.Items, id)
	if idx < 0 || !field.IsValid() {
		return s
	}
	out := s.clone()
	item := &out.Draft.Items[idx]
	switch field {
	case FieldHSNCode:
		item.HSNCode = value
	case FieldProductName:
		item.ProductName = value
	case FieldScientificName:
		item.ScientificName = value
	case FieldQuantity:
		item.Quantity = value
	case FieldUnit:
		item.Unit = value
	case FieldRMID:
		item.RMID = value
	}
	return out
}

func indexOfItem(items []LineItem, id string) int {
	return slices.IndexFunc(items, func(item LineItem) bool { return item.ID == id })
}
