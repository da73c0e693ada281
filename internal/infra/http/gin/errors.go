package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	bookingapp "staypricing/internal/app/handlers/booking"
	pricingapp "staypricing/internal/app/handlers/pricing"
	"staypricing/internal/app/middleware"
	domainbooking "staypricing/internal/domain/booking"
	domainlistings "staypricing/internal/domain/listings"
	domainpricing "staypricing/internal/domain/pricing"
	"staypricing/internal/domain/shared/daterange"
	"staypricing/internal/infra/currency"
)

// respondError maps application errors onto HTTP statuses. Rule rejections,
// blocked steps and publish validation carry their kind or step so the client
// can render the message next to the offending field.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var (
		rejected   *domainpricing.RuleRejectedError
		incomplete *domainlistings.StepIncompleteError
		blocked    *domainlistings.PublishValidationError
	)
	switch {
	case errors.As(err, &rejected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": rejected.Message, "kind": rejected.Kind})
		return
	case errors.As(err, &incomplete):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": incomplete.Reason, "step": incomplete.Step})
		return
	case errors.As(err, &blocked):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": blocked.Message, "step": blocked.Step})
		return
	}

	status := statusFor(err)
	if logger != nil {
		fields := []any{"status", status, "error", err, "path", c.FullPath()}
		if p, ok := currentPrincipal(c); ok {
			fields = append(fields, "user_id", p.ID)
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
		} else {
			logger.Debug("request rejected", fields...)
		}
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, middleware.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, middleware.ErrForbidden),
		errors.Is(err, domainlistings.ErrNotOwner),
		errors.Is(err, domainlistings.ErrHostMismatch),
		errors.Is(err, bookingapp.ErrBookingNotOwned),
		errors.Is(err, domainbooking.ErrQuoteNotOwned),
		errors.Is(err, pricingapp.ErrQuoteNotVisible):
		return http.StatusForbidden
	case errors.Is(err, domainlistings.ErrDraftNotFound),
		errors.Is(err, domainlistings.ErrListingNotFound),
		errors.Is(err, domainpricing.ErrConfigurationNotFound),
		errors.Is(err, domainpricing.ErrQuoteNotFound),
		errors.Is(err, domainbooking.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainlistings.ErrPublishInFlight),
		errors.Is(err, domainlistings.ErrInvalidState),
		errors.Is(err, domainbooking.ErrInvalidState),
		errors.Is(err, pricingapp.ErrListingUnavailable):
		return http.StatusConflict
	case errors.Is(err, domainpricing.ErrQuoteExpired):
		return http.StatusGone
	case errors.Is(err, domainpricing.ErrConfigurationInvalid):
		return http.StatusInternalServerError
	case errors.Is(err, domainlistings.ErrRemoteFailure):
		return http.StatusBadGateway
	case errors.Is(err, pricingapp.ErrCurrencyUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, middleware.ErrInvalidMessage),
		errors.Is(err, domainpricing.ErrInvalidParams),
		errors.Is(err, domainpricing.ErrTooManyGuests),
		errors.Is(err, domainlistings.ErrUnknownStep),
		errors.Is(err, domainlistings.ErrUnknownSection),
		errors.Is(err, domainlistings.ErrSectionNotInFlow),
		errors.Is(err, domainlistings.ErrNotCanonical),
		errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, currency.ErrUnsupportedCurrency):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
