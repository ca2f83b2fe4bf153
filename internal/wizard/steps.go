package wizard

import "slices"

const (
	msgSelectDeclarations = "Please select at least one existing declaration."
	msgValidityPeriod     = "Please select a validity period with both a start and an end date."
	msgValidityOrder       = "The validity end date must not be before the start date."
	msgAddProduct         = "Please add at least one product with HSN code, product name and a quantity greater than zero."
	msgUploadGeoJSON      = "Please upload a GeoJSON file describing the production plots."
	msgEvidenceRequired   = "Evidence required: please upload at least one supporting document."
	msgSelectCustomer     = "Please select a customer."
)

// ValidateStep evaluates the gate of the current step.
func ValidateStep(s State) error {
	d := s.Draft
	switch s.CurrentStep {
	case StepSource, StepReview:
		return nil

	case StepDetails:
		if d.Source == SourceExistingBased {
			if len(d.BasedOnIDs) == 0 {
				return validationError(StepDetails, msgSelectDeclarations)
			}
		} else if len(ValidItems(d.Items)) == 0 {
			return validationError(StepDetails, msgAddProduct)
		}
		return checkValidityPeriod(d, StepDetails)

	case StepUpload:
		// Geo upload only has to be started; its outcome gates submission, not navigation.
		if d.Source == SourceFresh && d.Geo == nil {
			return validationError(StepUpload, msgUploadGeoJSON)
		}
		if len(d.Documents) == 0 {
			return validationError(StepUpload, msgEvidenceRequired)
		}
		return nil

	case StepCustomer:
		if d.CustomerID == nil {
			return validationError(StepCustomer, msgSelectCustomer)
		}
		return nil

	default:
		return &BlockedError{Kind: KindInternal, Step: s.CurrentStep, Title: "Error", Message: "Unknown wizard step."}
	}
}

func checkValidityPeriod(d Draft, step Step) error {
	if d.StartDate == nil || d.EndDate == nil {
		return validationError(step, msgValidityPeriod)
	}
	if d.EndDate.Before(*d.StartDate) {
		return validationError(step, msgValidityOrder)
	}
	return nil
}

// Advance moves to the next step when the current step's gate passes. The
// current step joins CompletedSteps, which only ever grows: going back and
// invalidating an earlier answer does not un-complete it.
func Advance(s State) (State, error) {
	if err := ValidateStep(s); err != nil {
		return s, err
	}
	if s.CurrentStep >= StepReview {
		return s, nil
	}

	out := s.clone()
	if !slices.Contains(out.CompletedSteps, out.CurrentStep) {
		out.CompletedSteps = append(out.CompletedSteps, out.CurrentStep)
	}
	out.CurrentStep++
	return out, nil
}

// GoBack steps back once without touching CompletedSteps.
func GoBack(s State) State {
	if s.CurrentStep <= StepSource {
		return s
	}
	out := s.clone()
	out.CurrentStep--
	return out
}
