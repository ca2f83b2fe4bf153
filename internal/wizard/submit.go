package wizard

import (
	"strings"

	"declaration-service/internal/models"
)

// PayloadStatus is draft when any geo stage failed and pending otherwise,
// whatever the declaration source.
func PayloadStatus(d Draft) models.DeclarationStatus {
	if d.Geo.Failed() {
		return models.DeclarationDraft
	}
	return models.DeclarationPending
}

// CheckSubmit runs the submit preconditions in order: review-step guard,
// validity period order, in-flight geo validation, failed geo validation.
func CheckSubmit(s State) error {
	if s.CurrentStep != StepReview {
		return &BlockedError{
			Kind:    KindValidationBlocked,
			Step:    s.CurrentStep,
			Title:   "Validation Error",
			Message: "Declarations can only be submitted from the review step.",
		}
	}
	if err := ValidateStep(s); err != nil {
		return err
	}

	d := s.Draft
	// dates stay editable after step 2
	if d.StartDate != nil && d.EndDate != nil && d.EndDate.Before(*d.StartDate) {
		return validationError(StepReview, msgValidityOrder)
	}
	if d.Source != SourceFresh || d.Geo == nil {
		return nil
	}
	if d.Geo.InFlight() {
		return &BlockedError{
			Kind:    KindValidationPending,
			Step:    StepReview,
			Title:   "Validation in progress",
			Message: "Please wait for GeoJSON validation to complete before submitting.",
		}
	}
	if d.Geo.Failed() {
		return &BlockedError{
			Kind:    KindComplianceBlocked,
			Step:    StepReview,
			Title:   "Compliance check failed",
			Message: "This declaration failed geo validation and cannot be submitted as compliant. Save it as a draft instead.",
		}
	}
	return nil
}

// Submit checks the preconditions and builds the payload for the create
// boundary.
func Submit(s State) (models.CreateDeclarationRequest, error) {
	if err := CheckSubmit(s); err != nil {
		return models.CreateDeclarationRequest{}, err
	}
	return BuildPayload(s)
}

// BuildPayload assembles the payload shape that matches the draft source. It
// does not apply the submit gates, so a failed geo check yields a draft
// payload here.
func BuildPayload(s State) (models.CreateDeclarationRequest, error) {
	d := s.Draft
	if d.CustomerID == nil {
		return models.CreateDeclarationRequest{}, &BlockedError{
			Kind: KindInternal, Step: s.CurrentStep, Title: "Error", Message: "No customer selected for this declaration.",
		}
	}

	refs := models.DeclarationReferences{
		CustomerID:        *d.CustomerID,
		CustomerPONumber:  optionalString(d.References.CustomerPO),
		SONumber:          optionalString(d.References.SalesOrder),
		ShipmentNumber:    optionalString(d.References.Shipment),
		StartDate:         copyTime(d.StartDate),
		EndDate:           copyTime(d.EndDate),
		Status:            PayloadStatus(d),
		Comments:          optionalString(d.Comments),
		EvidenceDocuments: append([]string(nil), d.Documents...),
	}

	if d.Source == SourceExistingBased {
		return models.CreateDeclarationRequest{
			ExistingBased: &models.ExistingBasedPayload{
				Type:                  models.DeclarationOutbound,
				BasedOnDeclarationIDs: append([]int64(nil), d.BasedOnIDs...),
				DeclarationReferences: refs,
			},
		}, nil
	}

	valid := ValidItems(d.Items)
	if len(valid) == 0 {
		return models.CreateDeclarationRequest{}, &BlockedError{
			Kind: KindInternal, Step: s.CurrentStep, Title: "Error", Message: "No valid product line item found.",
		}
	}

	if d.Geo != nil && d.Geo.ObjectName != "" {
		objectName := d.Geo.ObjectName
		refs.GeoJSONFile = &objectName
	}

	items := make([]models.PayloadItem, 0, len(valid))
	for _, item := range valid {
		quantity, _ := item.ParsedQuantity()
		unit := strings.TrimSpace(item.Unit)
		if unit == "" {
			unit = DefaultUnit
		}
		items = append(items, models.PayloadItem{
			HSNCode:        item.HSNCode,
			ProductName:    item.ProductName,
			ScientificName: optionalString(item.ScientificName),
			Quantity:       quantity,
			Unit:           unit,
			RMID:           optionalString(item.RMID),
		})
	}

	first := items[0]
	return models.CreateDeclarationRequest{
		Fresh: &models.FreshPayload{
			Type:                  models.DeclarationOutbound,
			ProductName:           first.ProductName,
			HSNCode:               first.HSNCode,
			ScientificName:        first.ScientificName,
			Quantity:              first.Quantity,
			Unit:                  first.Unit,
			DeclarationReferences: refs,
			Items:                 items,
		},
	}, nil
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
