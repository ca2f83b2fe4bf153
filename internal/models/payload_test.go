package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func freshRequest() CreateDeclarationRequest {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 6, 0)
	return CreateDeclarationRequest{Fresh: &FreshPayload{
		Type:        DeclarationOutbound,
		ProductName: "Palm Oil",
		HSNCode:     "1511.10.00",
		Quantity:    5000,
		Unit:        "kg",
		DeclarationReferences: DeclarationReferences{
			CustomerID: 7,
			StartDate:  &start,
			EndDate:    &end,
			Status:     DeclarationPending,
		},
		Items: []PayloadItem{{HSNCode: "1511.10.00", ProductName: "Palm Oil", Quantity: 5000, Unit: "kg"}},
	}}
}

func TestCreateDeclarationRequest_RoundTripsBothShapes(t *testing.T) {
	existing := CreateDeclarationRequest{ExistingBased: &ExistingBasedPayload{
		Type:                  DeclarationOutbound,
		BasedOnDeclarationIDs: []int64{3, 5},
		DeclarationReferences: DeclarationReferences{CustomerID: 2, Status: DeclarationDraft, CustomerPONumber: strPtr("PO-9")},
	}}

	for name, req := range map[string]CreateDeclarationRequest{"fresh": freshRequest(), "existing": existing} {
		t.Run(name, func(t *testing.T) {
			raw, err := json.Marshal(req)
			require.NoError(t, err)

			var decoded CreateDeclarationRequest
			require.NoError(t, json.Unmarshal(raw, &decoded))
			assert.Equal(t, req.ExistingBased != nil, decoded.ExistingBased != nil)
			assert.Equal(t, req.Fresh != nil, decoded.Fresh != nil)
			assert.Equal(t, req.References().CustomerID, decoded.References().CustomerID)
		})
	}
}

func TestCreateDeclarationRequest_NullBasedOnIsFresh(t *testing.T) {
	var decoded CreateDeclarationRequest
	require.NoError(t, json.Unmarshal([]byte(`{"type":"outbound","basedOnDeclarationIds":null,"productName":"Coffee"}`), &decoded))

	require.NotNil(t, decoded.Fresh)
	assert.Equal(t, "Coffee", decoded.Fresh.ProductName)
}

func TestCreateDeclarationRequest_MarshalNeedsExactlyOneShape(t *testing.T) {
	_, err := json.Marshal(CreateDeclarationRequest{})
	assert.Error(t, err)

	both := freshRequest()
	both.ExistingBased = &ExistingBasedPayload{}
	_, err = json.Marshal(both)
	assert.Error(t, err)
}

func TestCreateDeclarationRequest_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateDeclarationRequest)
		ok     bool
	}{
		{"valid", func(*CreateDeclarationRequest) {}, true},
		{"inbound type", func(r *CreateDeclarationRequest) { r.Fresh.Type = DeclarationInbound }, false},
		{"zero quantity", func(r *CreateDeclarationRequest) { r.Fresh.Quantity = 0 }, false},
		{"no items", func(r *CreateDeclarationRequest) { r.Fresh.Items = nil }, false},
		{"item without unit", func(r *CreateDeclarationRequest) { r.Fresh.Items[0].Unit = " " }, false},
		{"no customer", func(r *CreateDeclarationRequest) { r.Fresh.CustomerID = 0 }, false},
		{"approved status", func(r *CreateDeclarationRequest) { r.Fresh.Status = DeclarationApproved }, false},
		{"draft status", func(r *CreateDeclarationRequest) { r.Fresh.Status = DeclarationDraft }, true},
		{"end before start", func(r *CreateDeclarationRequest) {
			end := r.Fresh.StartDate.AddDate(0, 0, -1)
			r.Fresh.EndDate = &end
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := freshRequest()
			tt.mutate(&req)
			if tt.ok {
				assert.NoError(t, req.Validate())
			} else {
				assert.Error(t, req.Validate())
			}
		})
	}
}

func TestExistingBased_Validate(t *testing.T) {
	req := CreateDeclarationRequest{ExistingBased: &ExistingBasedPayload{
		Type:                  DeclarationOutbound,
		BasedOnDeclarationIDs: []int64{4},
		DeclarationReferences: DeclarationReferences{CustomerID: 1, Status: DeclarationPending},
	}}
	assert.NoError(t, req.Validate())

	req.ExistingBased.BasedOnDeclarationIDs = []int64{4, -1}
	assert.Error(t, req.Validate())

	req.ExistingBased.BasedOnDeclarationIDs = nil
	assert.Error(t, req.Validate())
}
