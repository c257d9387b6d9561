package models_test

import (
	"errors"
	"testing"
	"time"

	"diploma360/models"
)

func physicalEvent() models.Event {
	return models.Event{
		EventName:     "Go Meetup",
		Category:      "tech",
		Description:   "monthly meetup",
		Location:      "Main Hall",
		LocationType:  models.LocationPhysical,
		NumberOfSeats: 50,
		Time:          "18:00",
		Date:          time.Now().Add(48 * time.Hour),
	}
}

func onlineEvent() models.Event {
	return models.Event{
		EventName:    "Remote Workshop",
		Category:     "tech",
		Description:  "hands-on session",
		LocationType: models.LocationOnline,
		EventLink:    "https://meet.example/x",
		Date:         time.Now().Add(48 * time.Hour),
	}
}

func wantValidationErr(t *testing.T, err error) {
	t.Helper()
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestEventValidate_Physical_RequiresSeatsAndTime(t *testing.T) {
	e := physicalEvent()
	if err := e.Validate(); err != nil {
		t.Fatalf("valid physical event rejected: %v", err)
	}

	noSeats := physicalEvent()
	noSeats.NumberOfSeats = 0
	wantValidationErr(t, noSeats.Validate())

	noTime := physicalEvent()
	noTime.Time = ""
	wantValidationErr(t, noTime.Validate())
}

func TestEventValidate_Online_RequiresLink(t *testing.T) {
	e := onlineEvent()
	if err := e.Validate(); err != nil {
		t.Fatalf("valid online event rejected: %v", err)
	}

	noLink := onlineEvent()
	noLink.EventLink = ""
	wantValidationErr(t, noLink.Validate())
}

func TestEventValidate_UnknownLocationType(t *testing.T) {
	e := physicalEvent()
	e.LocationType = "hybrid"
	wantValidationErr(t, e.Validate())
}

func baseRegistration() models.Registration {
	return models.Registration{
		Name:  "Alice",
		Email: "alice@b.com",
		Phone: "+77001112233",
	}
}

func TestValidateRegistration_PaidEventRequiresPaymentFields(t *testing.T) {
	e := onlineEvent()
	e.Fee = 5000

	r := baseRegistration()
	wantValidationErr(t, e.ValidateRegistration(&r))

	r.PaymentMethod = "kaspi"
	r.TransactionID = "txn-1"
	if err := e.ValidateRegistration(&r); err != nil {
		t.Fatalf("paid registration with payment fields rejected: %v", err)
	}
}

func TestValidateRegistration_FreeEventNeedsNoPaymentFields(t *testing.T) {
	e := onlineEvent()
	r := baseRegistration()
	if err := e.ValidateRegistration(&r); err != nil {
		t.Fatalf("free registration rejected: %v", err)
	}
}

func TestValidateRegistration_WantToStudyRequiresStudyFields(t *testing.T) {
	e := onlineEvent()

	r := baseRegistration()
	r.StudyStatus = models.StudyWantToStudy
	wantValidationErr(t, e.ValidateRegistration(&r))

	r.SchoolYear = "2026"
	r.Address = "Almaty"
	r.Technology = "Go"
	if err := e.ValidateRegistration(&r); err != nil {
		t.Fatalf("complete want-to-study registration rejected: %v", err)
	}
}

func TestReviewValidate(t *testing.T) {
	ok := models.Review{Email: "a@b.com", Rating: 4, Comment: "great"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid review rejected: %v", err)
	}

	outOfRange := models.Review{Email: "a@b.com", Rating: 6, Comment: "great"}
	wantValidationErr(t, outOfRange.Validate())

	empty := models.Review{Email: "a@b.com", Rating: 3}
	wantValidationErr(t, empty.Validate())
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{models.RoleStudent, models.RoleOrganizer, models.RoleSuperAdmin} {
		if !models.ValidRole(role) {
			t.Fatalf("role %q should be valid", role)
		}
	}
	if models.ValidRole("admin") {
		t.Fatalf("unknown role accepted")
	}
}
