package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	bookingapp "staynest/internal/app/handlers/booking"
	propertiesapp "staynest/internal/app/handlers/properties"
	reviewsapp "staynest/internal/app/handlers/reviews"
	"staynest/internal/app/uow"
	"staynest/internal/domain/availability"
	domainbooking "staynest/internal/domain/booking"
	domainproperty "staynest/internal/domain/property"
	domainreviews "staynest/internal/domain/reviews"
	"staynest/internal/domain/shared/daterange"
	"staynest/internal/infra/validation"
)

// statusForError maps domain failures onto HTTP statuses. Refusal reasons
// keep their code in the response body so clients can branch on them.
func statusForError(err error) int {
	if reason, ok := availability.ReasonOf(err); ok {
		return statusForReason(reason)
	}
	switch {
	case errors.Is(err, domainbooking.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domainbooking.ErrNotAuthorized),
		errors.Is(err, domainreviews.ErrNotStayGuest):
		return http.StatusForbidden
	case errors.Is(err, bookingapp.ErrBookingNotOwned),
		errors.Is(err, propertiesapp.ErrPropertyNotOwned),
		errors.Is(err, reviewsapp.ErrPropertyNotFound):
		return http.StatusNotFound
	case errors.Is(err, reviewsapp.ErrDuplicateReview):
		return http.StatusConflict
	case errors.Is(err, domainreviews.ErrInvalidRating):
		return http.StatusBadRequest
	case errors.Is(err, domainreviews.ErrStayNotCompleted):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainbooking.ErrNotFound),
		errors.Is(err, domainproperty.ErrNotFound),
		errors.Is(err, mongo.ErrNoDocuments):
		return http.StatusNotFound
	case errors.Is(err, domainbooking.ErrInvalidTransition),
		errors.Is(err, domainproperty.ErrInvalidState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainbooking.ErrInvalidGuests),
		errors.Is(err, domainbooking.ErrUnknownStatus),
		errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, validation.ErrInvalidMessage),
		isPropertyValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, uow.ErrUnitOfWorkMissing):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func isPropertyValidationError(err error) bool {
	switch {
	case errors.Is(err, domainproperty.ErrTitleRequired),
		errors.Is(err, domainproperty.ErrHostRequired),
		errors.Is(err, domainproperty.ErrMaxGuests),
		errors.Is(err, domainproperty.ErrAddressRequired),
		errors.Is(err, domainproperty.ErrPricingRequired),
		errors.Is(err, domainproperty.ErrBasePriceRequired),
		errors.Is(err, domainproperty.ErrNegativeFee),
		errors.Is(err, domainproperty.ErrTaxRateRange),
		errors.Is(err, domainproperty.ErrMinimumStay),
		errors.Is(err, domainproperty.ErrMaximumStay),
		errors.Is(err, domainproperty.ErrDiscountRange),
		errors.Is(err, domainproperty.ErrOverlappingRange),
		errors.Is(err, domainproperty.ErrRangeNotFound),
		errors.Is(err, domainproperty.ErrPhotoLimitExceeded):
		return true
	}
	return false
}

func statusForReason(reason availability.Reason) int {
	switch reason {
	case availability.ReasonAlreadyBooked, availability.ReasonDateRangeBlocked:
		return http.StatusConflict
	case availability.ReasonNotPublished:
		return http.StatusNotFound
	case availability.ReasonInvalidDateOrder:
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	body := gin.H{"error": err.Error()}
	if reason, ok := availability.ReasonOf(err); ok {
		body["reason"] = string(reason)
	}
	c.JSON(status, body)
}
