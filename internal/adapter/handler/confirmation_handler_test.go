package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farhn21/tripshare/internal/core/domain"
	"github.com/farhn21/tripshare/internal/core/services"
)

type stubConfirmationAPI struct {
	result *services.RespondResult
	err    error

	gotID     uuid.UUID
	gotOwner  uuid.UUID
	gotAction services.ConfirmationAction
}

func (s *stubConfirmationAPI) Respond(_ context.Context, id, owner uuid.UUID, action services.ConfirmationAction) (*services.RespondResult, error) {
	s.gotID = id
	s.gotOwner = owner
	s.gotAction = action
	return s.result, s.err
}

func respond(t *testing.T, api ConfirmationAPI, confirmationID string, caller uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	router.Post("/confirmations/{id}/respond", NewConfirmationHandler(api).Respond)

	req := httptest.NewRequest(http.MethodPost, "/confirmations/"+confirmationID+"/respond", strings.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), callerKey, caller))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestConfirmationHandlerRespond(t *testing.T) {
	owner := uuid.New()
	confirmationID := uuid.New()
	reservation := domain.Reservation{
		ID:     uuid.New(),
		Status: domain.ReservationConfirmed,
	}

	t.Run("accept returns the confirmed outcome", func(t *testing.T) {
		api := &stubConfirmationAPI{result: &services.RespondResult{
			Outcome:     services.OutcomeConfirmed,
			Reservation: reservation,
			TripStatus:  domain.TripOpen,
		}}

		rec := respond(t, api, confirmationID.String(), owner, `{"action":"accept"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, confirmationID, api.gotID)
		assert.Equal(t, owner, api.gotOwner)
		assert.Equal(t, services.ActionAccept, api.gotAction)

		var resp respondResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, string(services.OutcomeConfirmed), resp.Outcome)
		assert.Equal(t, reservation.ID.String(), resp.ReservationID)
		assert.Empty(t, resp.Code)
	})

	t.Run("losing the capacity race maps to 409", func(t *testing.T) {
		rejected := domain.Reservation{ID: reservation.ID, Status: domain.ReservationCancelled}
		api := &stubConfirmationAPI{result: &services.RespondResult{
			Outcome:     services.OutcomeCapacityExceeded,
			Reservation: rejected,
			TripStatus:  domain.TripFull,
		}}

		rec := respond(t, api, confirmationID.String(), owner, `{"action":"accept"}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
		var resp respondResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, string(services.OutcomeCapacityExceeded), resp.Outcome)
		assert.Equal(t, codeCapacityExceeded, resp.Code)
	})

	t.Run("already resolved echoes the recorded outcome", func(t *testing.T) {
		api := &stubConfirmationAPI{
			result: &services.RespondResult{
				Outcome:     services.OutcomeRejected,
				Reservation: domain.Reservation{ID: reservation.ID, Status: domain.ReservationCancelled},
				TripStatus:  domain.TripOpen,
			},
			err: domain.ErrAlreadyResolved,
		}

		rec := respond(t, api, confirmationID.String(), owner, `{"action":"accept"}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
		var resp respondResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, string(services.OutcomeRejected), resp.Outcome)
		assert.Equal(t, codeAlreadyResolved, resp.Code)
	})

	t.Run("non-owner maps to 403", func(t *testing.T) {
		api := &stubConfirmationAPI{err: domain.ErrForbidden}

		rec := respond(t, api, confirmationID.String(), uuid.New(), `{"action":"accept"}`)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("contended trip maps to 503 with retry hint", func(t *testing.T) {
		api := &stubConfirmationAPI{err: domain.ErrBusy}

		rec := respond(t, api, confirmationID.String(), owner, `{"action":"reject"}`)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	})

	t.Run("invalid id", func(t *testing.T) {
		api := &stubConfirmationAPI{}

		rec := respond(t, api, "not-a-uuid", owner, `{"action":"accept"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		api := &stubConfirmationAPI{}

		rec := respond(t, api, confirmationID.String(), owner, `{`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
