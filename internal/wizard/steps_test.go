package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"declaration-service/internal/models"
)

func validItem(s State, id string) State {
	s = UpdateItem(s, id, FieldHSNCode, "1511.10.00")
	s = UpdateItem(s, id, FieldProductName, "Palm Oil")
	return UpdateItem(s, id, FieldQuantity, "5000")
}

func withValidity(t *testing.T, s State) State {
	t.Helper()
	s, err := SelectPreset(s, Preset6Months, fixedNow)
	require.NoError(t, err)
	return s
}

func advance(t *testing.T, s State) State {
	t.Helper()
	s, err := Advance(s)
	require.NoError(t, err)
	return s
}

func requireBlocked(t *testing.T, err error, kind ErrorKind, message string) *BlockedError {
	t.Helper()
	blocked, ok := AsBlocked(err)
	require.True(t, ok, "expected *BlockedError, got %v", err)
	assert.Equal(t, kind, blocked.Kind)
	if message != "" {
		assert.Equal(t, message, blocked.Message)
	}
	return blocked
}

func TestAdvance_SourceStepAlwaysPasses(t *testing.T) {
	s := advance(t, New("s", "i", "u"))

	assert.Equal(t, StepDetails, s.CurrentStep)
	assert.True(t, s.IsCompleted(StepSource))
}

func TestAdvance_DetailsFreshNeedsOneValidItemAnywhere(t *testing.T) {
	// the valid row may sit at any position among invalid ones
	for position := 0; position < 4; position++ {
		s := advance(t, New("s", "i", "u"))
		for len(s.Draft.Items) < 4 {
			s = AddItem(s)
		}
		s = UpdateItem(s, s.Draft.Items[0].ID, FieldQuantity, "0")
		s = UpdateItem(s, s.Draft.Items[1].ID, FieldProductName, "Cocoa")
		s = validItem(s, s.Draft.Items[position].ID)
		s = withValidity(t, s)

		next, err := Advance(s)
		require.NoError(t, err, "valid item at position %d", position)
		assert.Equal(t, StepUpload, next.CurrentStep)
	}
}

func TestAdvance_DetailsFreshBlockedWithoutValidItem(t *testing.T) {
	s := advance(t, New("s", "i", "u"))
	s = AddItem(s)
	s = UpdateItem(s, s.Draft.Items[0].ID, FieldHSNCode, "1511")
	s = UpdateItem(s, s.Draft.Items[1].ID, FieldQuantity, "10")
	s = withValidity(t, s)

	out, err := Advance(s)

	requireBlocked(t, err, KindValidationBlocked, msgAddProduct)
	assert.Equal(t, s, out)
}

func TestAdvance_DetailsNeedsValidity(t *testing.T) {
	s := advance(t, New("s", "i", "u"))
	s = validItem(s, s.Draft.Items[0].ID)

	_, err := Advance(s)
	requireBlocked(t, err, KindValidationBlocked, msgValidityPeriod)

	start := fixedNow
	s = SetCustomDates(s, &start, nil)
	_, err = Advance(s)
	requireBlocked(t, err, KindValidationBlocked, msgValidityPeriod)
}

func TestAdvance_DetailsRejectsInvertedDates(t *testing.T) {
	s := advance(t, New("s", "i", "u"))
	s = validItem(s, s.Draft.Items[0].ID)

	start := fixedNow
	end := fixedNow.AddDate(0, 0, -1)
	s = SetCustomDates(s, &start, &end)
	_, err := Advance(s)
	requireBlocked(t, err, KindValidationBlocked, msgValidityOrder)

	s = SetCustomDates(s, &start, &start)
	s = advance(t, s)
	assert.Equal(t, StepUpload, s.CurrentStep)
}

func TestAdvance_DetailsExistingNeedsSelection(t *testing.T) {
	s, err := SetSource(New("s", "i", "u"), SourceExistingBased)
	require.NoError(t, err)
	s = withValidity(t, advance(t, s))

	_, err = Advance(s)
	requireBlocked(t, err, KindValidationBlocked, msgSelectDeclarations)

	s = SetBasedOn(s, []int64{0, -4})
	_, err = Advance(s)
	requireBlocked(t, err, KindValidationBlocked, msgSelectDeclarations)

	s = SetBasedOn(s, []int64{12, 7, 12})
	assert.Equal(t, []int64{7, 12}, s.Draft.BasedOnIDs)
	s = advance(t, s)
	assert.Equal(t, StepUpload, s.CurrentStep)
}

func TestAdvance_UploadFreshNeedsGeoThenEvidence(t *testing.T) {
	s := advance(t, New("s", "i", "u"))
	s = withValidity(t, validItem(s, s.Draft.Items[0].ID))
	s = advance(t, s)

	_, err := Advance(s)
	requireBlocked(t, err, KindValidationBlocked, msgUploadGeoJSON)

	s = StartGeoUpload(s, "plots.geojson", "")
	_, err = Advance(s)
	requireBlocked(t, err, KindValidationBlocked, msgEvidenceRequired)

	// pending geo does not hold navigation back
	s = AddDocument(s, "certificate.pdf")
	s = advance(t, s)
	assert.Equal(t, StepCustomer, s.CurrentStep)
}

func TestAdvance_CustomerStep(t *testing.T) {
	s := State{CurrentStep: StepCustomer, CompletedSteps: []Step{}, Draft: newDraft()}

	_, err := Advance(s)
	requireBlocked(t, err, KindValidationBlocked, msgSelectCustomer)

	s = SelectCustomer(s, 42)
	s = advance(t, s)
	assert.Equal(t, StepReview, s.CurrentStep)

	cleared := SelectCustomer(s, 0)
	assert.Nil(t, cleared.Draft.CustomerID)
}

func TestAdvance_ReviewIsTerminal(t *testing.T) {
	s := State{CurrentStep: StepReview, CompletedSteps: []Step{StepSource}, Draft: newDraft()}

	out, err := Advance(s)

	require.NoError(t, err)
	assert.Equal(t, s, out)
}

func TestGoBack_KeepsCompletedSteps(t *testing.T) {
	s := advance(t, New("s", "i", "u"))
	s = withValidity(t, validItem(s, s.Draft.Items[0].ID))
	s = advance(t, s)

	s = GoBack(s)
	assert.Equal(t, StepDetails, s.CurrentStep)
	assert.Equal(t, []Step{StepSource, StepDetails}, s.CompletedSteps)

	// invalidating an earlier answer leaves the step marked completed
	s = UpdateItem(s, s.Draft.Items[0].ID, FieldQuantity, "")
	assert.True(t, s.IsCompleted(StepDetails))

	s = GoBack(GoBack(s))
	assert.Equal(t, StepSource, s.CurrentStep)
}

func TestClose_ResetsEverything(t *testing.T) {
	s := advance(t, New("s", "i", "u"))
	s = withValidity(t, validItem(s, s.Draft.Items[0].ID))
	s = AddItem(advance(t, s))
	s = StartGeoUpload(s, "plots.geojson", "")
	s = AddDocument(s, "certificate.pdf")
	s = SelectCustomer(s, 9)

	closed := Close(s, "i-2")

	assert.Equal(t, "s", closed.SessionID)
	assert.Equal(t, "i-2", closed.InstanceID)
	assert.Equal(t, StepSource, closed.CurrentStep)
	assert.Empty(t, closed.CompletedSteps)
	require.Len(t, closed.Draft.Items, 1)
	assert.False(t, closed.Draft.Items[0].IsValid())
	assert.Nil(t, closed.Draft.Geo)
	assert.Nil(t, closed.Draft.CustomerID)
	assert.Nil(t, closed.Draft.StartDate)
	assert.Empty(t, closed.Draft.Documents)
	assert.Zero(t, closed.GeoRuns)
}

func TestSetSource_Unknown(t *testing.T) {
	s := New("s", "i", "u")

	out, err := SetSource(s, Source("imported"))

	assert.ErrorIs(t, err, ErrUnknownSource)
	assert.Equal(t, SourceFresh, out.Draft.Source)
}

func TestSetSource_ExistingDropsGeoValidation(t *testing.T) {
	s := StartGeoUpload(New("s", "i", "u"), "plots.geojson", "geo/s/plots.geojson")
	s, _ = ResolveGeometry(s, 1, models.CheckFail)

	out, err := SetSource(s, SourceExistingBased)
	require.NoError(t, err)
	assert.Nil(t, out.Draft.Geo)
	assert.Equal(t, 1, out.GeoRuns)
	assert.Equal(t, models.DeclarationPending, PayloadStatus(out.Draft))

	fresh, err := SetSource(s, SourceFresh)
	require.NoError(t, err)
	assert.NotNil(t, fresh.Draft.Geo)
}

func TestDocuments(t *testing.T) {
	s := AddDocument(New("s", "i", "u"), "a.pdf")
	s = AddDocument(s, "a.pdf")
	s = AddDocument(s, "  ")
	s = AddDocument(s, "b.pdf")
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, s.Draft.Documents)

	s = RemoveDocument(s, "a.pdf")
	assert.Equal(t, []string{"b.pdf"}, s.Draft.Documents)
	assert.Equal(t, s, RemoveDocument(s, "missing.pdf"))
}
