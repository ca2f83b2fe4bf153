package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// DeclarationReferences holds the fields shared by both outbound payload shapes.
// Nullable fields are serialized as JSON null rather than omitted.
type DeclarationReferences struct {
	CustomerID        int64             `json:"customerId"`
	CustomerPONumber  *string           `json:"customerPONumber"`
	SONumber          *string           `json:"soNumber"`
	ShipmentNumber    *string           `json:"shipmentNumber"`
	StartDate         *time.Time        `json:"startDate"`
	EndDate           *time.Time        `json:"endDate"`
	Status            DeclarationStatus `json:"status"`
	Comments          *string           `json:"comments"`
	EvidenceDocuments []string          `json:"evidenceDocuments,omitempty"`
	GeoJSONFile       *string           `json:"geoJsonFile,omitempty"`
}

// ExistingBasedPayload creates an outbound declaration from approved inbound ones.
type ExistingBasedPayload struct {
	Type                  DeclarationType `json:"type"`
	BasedOnDeclarationIDs []int64         `json:"basedOnDeclarationIds"`
	DeclarationReferences
}

// FreshPayload creates an outbound declaration from line items. The top-level
// product fields mirror the first valid item.
type FreshPayload struct {
	Type           DeclarationType `json:"type"`
	ProductName    string          `json:"productName"`
	HSNCode        string          `json:"hsnCode"`
	ScientificName *string         `json:"scientificName"`
	Quantity       float64         `json:"quantity"`
	Unit           string          `json:"unit"`
	DeclarationReferences
	Items []PayloadItem `json:"items"`
}

type PayloadItem struct {
	HSNCode        string  `json:"hsnCode"`
	ProductName    string  `json:"productName"`
	ScientificName *string `json:"scientificName"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	RMID           *string `json:"rmId"`
}

// CreateDeclarationRequest is the body accepted by the create-declaration
// boundary. Exactly one of the two shapes is set.
type CreateDeclarationRequest struct {
	ExistingBased *ExistingBasedPayload
	Fresh         *FreshPayload
}

func (r CreateDeclarationRequest) MarshalJSON() ([]byte, error) {
	switch {
	case r.ExistingBased != nil && r.Fresh != nil:
		return nil, errors.New("declaration request carries both payload shapes")
	case r.ExistingBased != nil:
		return json.Marshal(r.ExistingBased)
	case r.Fresh != nil:
		return json.Marshal(r.Fresh)
	default:
		return nil, errors.New("declaration request is empty")
	}
}

func (r *CreateDeclarationRequest) UnmarshalJSON(data []byte) error {
	var probe struct {
		BasedOn json.RawMessage `json:"basedOnDeclarationIds"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("failed to decode declaration request: %w", err)
	}

	if len(probe.BasedOn) > 0 && string(probe.BasedOn) != "null" {
		var payload ExistingBasedPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("failed to decode existing-based declaration: %w", err)
		}
		r.ExistingBased, r.Fresh = &payload, nil
		return nil
	}

	var payload FreshPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("failed to decode fresh declaration: %w", err)
	}
	r.ExistingBased, r.Fresh = nil, &payload
	return nil
}

// References returns the shared fields of whichever shape is set.
func (r CreateDeclarationRequest) References() *DeclarationReferences {
	switch {
	case r.ExistingBased != nil:
		return &r.ExistingBased.DeclarationReferences
	case r.Fresh != nil:
		return &r.Fresh.DeclarationReferences
	default:
		return nil
	}
}

func (r CreateDeclarationRequest) Validate() error {
	if (r.ExistingBased == nil) == (r.Fresh == nil) {
		return errors.New("exactly one of existing-based or fresh payload is required")
	}

	if r.ExistingBased != nil {
		p := r.ExistingBased
		if p.Type != DeclarationOutbound {
			return fmt.Errorf("type must be %q", DeclarationOutbound)
		}
		if len(p.BasedOnDeclarationIDs) == 0 {
			return errors.New("basedOnDeclarationIds must not be empty")
		}
		for _, id := range p.BasedOnDeclarationIDs {
			if id <= 0 {
				return fmt.Errorf("invalid based-on declaration id: %d", id)
			}
		}
		return p.DeclarationReferences.validate()
	}

	p := r.Fresh
	if p.Type != DeclarationOutbound {
		return fmt.Errorf("type must be %q", DeclarationOutbound)
	}
	if err := validatePayloadProduct(p.HSNCode, p.ProductName, p.Quantity, p.Unit); err != nil {
		return err
	}
	if len(p.Items) == 0 {
		return errors.New("items must not be empty")
	}
	for i, item := range p.Items {
		if err := validatePayloadProduct(item.HSNCode, item.ProductName, item.Quantity, item.Unit); err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
	}
	return p.DeclarationReferences.validate()
}

func (d DeclarationReferences) validate() error {
	if d.CustomerID <= 0 {
		return errors.New("customerId is required")
	}
	if d.Status != DeclarationDraft && d.Status != DeclarationPending {
		return fmt.Errorf("status must be %q or %q", DeclarationDraft, DeclarationPending)
	}
	if d.StartDate != nil && d.EndDate != nil && d.EndDate.Before(*d.StartDate) {
		return errors.New("endDate must not be before startDate")
	}
	return nil
}

func validatePayloadProduct(hsnCode, productName string, quantity float64, unit string) error {
	if strings.TrimSpace(hsnCode) == "" {
		return errors.New("hsnCode is required")
	}
	if strings.TrimSpace(productName) == "" {
		return errors.New("productName is required")
	}
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return errors.New("quantity must be greater than 0")
	}
	if strings.TrimSpace(unit) == "" {
		return errors.New("unit is required")
	}
	return nil
}
