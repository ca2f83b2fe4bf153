package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_StartsWithSingleBlankItem(t *testing.T) {
	s := New("session-1", "instance-1", "user-1")

	require.Len(t, s.Draft.Items, 1)
	assert.Equal(t, DefaultUnit, s.Draft.Items[0].Unit)
	assert.NotEmpty(t, s.Draft.Items[0].ID)
	assert.Equal(t, StepSource, s.CurrentStep)
	assert.Empty(t, s.CompletedSteps)
}

func TestAddItem_AppendsWithoutRenumbering(t *testing.T) {
	s := New("s", "i", "u")
	firstID := s.Draft.Items[0].ID

	s = AddItem(s)
	s = AddItem(s)

	require.Len(t, s.Draft.Items, 3)
	assert.Equal(t, firstID, s.Draft.Items[0].ID)
	assert.NotEqual(t, s.Draft.Items[1].ID, s.Draft.Items[2].ID)
	assert.Equal(t, DefaultUnit, s.Draft.Items[2].Unit)
}

func TestAddItem_DoesNotMutateInput(t *testing.T) {
	before := New("s", "i", "u")
	after := AddItem(before)

	assert.Len(t, before.Draft.Items, 1)
	assert.Len(t, after.Draft.Items, 2)
}

func TestRemoveItem(t *testing.T) {
	s := AddItem(New("s", "i", "u"))
	keep := s.Draft.Items[1].ID

	s = RemoveItem(s, s.Draft.Items[0].ID)
	require.Len(t, s.Draft.Items, 1)
	assert.Equal(t, keep, s.Draft.Items[0].ID)

	unchanged := RemoveItem(s, "missing")
	assert.Equal(t, s.Draft.Items, unchanged.Draft.Items)

	// the reducer itself allows removing the last row
	empty := RemoveItem(s, keep)
	assert.Empty(t, empty.Draft.Items)
}

func TestUpdateItem(t *testing.T) {
	s := AddItem(New("s", "i", "u"))
	target := s.Draft.Items[1].ID

	s = UpdateItem(s, target, FieldProductName, "Palm Oil")
	s = UpdateItem(s, target, FieldQuantity, "5000")

	assert.Equal(t, "Palm Oil", s.Draft.Items[1].ProductName)
	assert.Equal(t, "5000", s.Draft.Items[1].Quantity)
	assert.Equal(t, DefaultUnit, s.Draft.Items[1].Unit)
	assert.Empty(t, s.Draft.Items[0].ProductName)

	assert.Equal(t, s, UpdateItem(s, "missing", FieldProductName, "x"))
	assert.Equal(t, s, UpdateItem(s, target, ItemField("colour"), "x"))
}

func TestLineItem_IsValid(t *testing.T) {
	tests := []struct {
		name string
		item LineItem
		want bool
	}{
		{"complete", LineItem{HSNCode: "1511.10.00", ProductName: "Palm Oil", Quantity: "5000"}, true},
		{"decimal quantity", LineItem{HSNCode: "0901", ProductName: "Coffee", Quantity: " 12.5 "}, true},
		{"missing hsn", LineItem{ProductName: "Palm Oil", Quantity: "1"}, false},
		{"blank product", LineItem{HSNCode: "1511", ProductName: "   ", Quantity: "1"}, false},
		{"zero quantity", LineItem{HSNCode: "1511", ProductName: "Palm Oil", Quantity: "0"}, false},
		{"negative quantity", LineItem{HSNCode: "1511", ProductName: "Palm Oil", Quantity: "-3"}, false},
		{"not a number", LineItem{HSNCode: "1511", ProductName: "Palm Oil", Quantity: "lots"}, false},
		{"infinite", LineItem{HSNCode: "1511", ProductName: "Palm Oil", Quantity: "Inf"}, false},
		{"empty quantity", LineItem{HSNCode: "1511", ProductName: "Palm Oil"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.IsValid())
		})
	}
}
