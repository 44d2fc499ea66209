// File: internal/infra/web/handlers.go
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"carta-do-futuro/internal/domain"
	"carta-do-futuro/internal/domain/model"
	"carta-do-futuro/internal/usecase"
)

type createCheckoutRequest struct {
	PlanIdentifier string `json:"planIdentifier"`
}

func (s *Server) handleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())
	if !s.allowCheckout(r.Context(), caller.ID) {
		writeError(w, http.StatusTooManyRequests, "too many checkout attempts", "")
		return
	}

	var req createCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlanIdentifier == "" {
		writeError(w, http.StatusBadRequest, "planIdentifier is required", "")
		return
	}

	session, err := s.checkoutUC.CreateCheckout(r.Context(), *caller, req.PlanIdentifier)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPlan):
			writeError(w, http.StatusBadRequest, "unknown plan identifier", req.PlanIdentifier)
		case errors.Is(err, domain.ErrUnauthenticated):
			writeError(w, http.StatusUnauthorized, "authentication required", "")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create payment preference", err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type resumeTokenRequest struct {
	PlanIdentifier string `json:"planIdentifier"`
}

func (s *Server) handleIssueResumeToken(w http.ResponseWriter, r *http.Request) {
	var req resumeTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlanIdentifier == "" {
		writeError(w, http.StatusBadRequest, "planIdentifier is required", "")
		return
	}
	token, err := s.resumeUC.Issue(r.Context(), req.PlanIdentifier)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPlan) {
			writeError(w, http.StatusBadRequest, "unknown plan identifier", req.PlanIdentifier)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to issue resume token", "")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Token string `json:"token"`
	}{Token: token})
}

type resumeRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleResumeCheckout(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())

	var req resumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeError(w, http.StatusBadRequest, "token is required", "")
		return
	}

	session, err := s.resumeUC.Consume(r.Context(), req.Token, *caller)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrResumeConsumed):
			writeError(w, http.StatusConflict, "resume token already used", "")
		case errors.Is(err, domain.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, "invalid resume token", "")
		case errors.Is(err, domain.ErrProfileNotFound):
			writeError(w, http.StatusNotFound, "profile not registered", "")
		default:
			writeError(w, http.StatusInternalServerError, "failed to resume checkout", err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleRegisterProfile(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())
	profile, err := s.profileUC.Register(r.Context(), *caller)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to register profile", "")
		return
	}
	writeJSON(w, http.StatusCreated, profileResponse(profile))
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())
	profile, err := s.profileUC.Get(r.Context(), caller.ID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "profile not registered", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load profile", "")
		return
	}
	writeJSON(w, http.StatusOK, profileResponse(profile))
}

func profileResponse(p *model.Profile) interface{} {
	return struct {
		ID              string     `json:"id"`
		Email           string     `json:"email"`
		PlanType        string     `json:"planType"`
		AccessExpiresAt *time.Time `json:"accessExpiresAt"`
		PurchasedAt     *time.Time `json:"purchasedAt"`
	}{
		ID:              p.ID,
		Email:           p.Email,
		PlanType:        string(p.PlanType),
		AccessExpiresAt: p.AccessExpiresAt,
		PurchasedAt:     p.PurchasedAt,
	}
}

// ---- Letters ----

type createLetterRequest struct {
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	ScheduledDate time.Time `json:"scheduledDate"`
}

const maxLetterMediaBytes = 10 << 20

func (s *Server) handleCreateLetter(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())

	var (
		req   createLetterRequest
		media *usecase.MediaUpload
	)
	contentType := r.Header.Get("Content-Type")
	if len(contentType) >= 19 && contentType[:19] == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxLetterMediaBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart body", "")
			return
		}
		req.Title = r.FormValue("title")
		req.Body = r.FormValue("body")
		if ts := r.FormValue("scheduledDate"); ts != "" {
			parsed, err := time.Parse(time.RFC3339, ts)
			if err != nil {
				writeError(w, http.StatusBadRequest, "scheduledDate must be RFC 3339", "")
				return
			}
			req.ScheduledDate = parsed
		}
		if file, header, err := r.FormFile("media"); err == nil {
			defer file.Close()
			media = &usecase.MediaUpload{
				ContentType: header.Header.Get("Content-Type"),
				Size:        header.Size,
				Body:        file,
			}
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", "")
			return
		}
	}

	letter, err := s.letterUC.Create(r.Context(), caller.ID, req.Title, req.Body, req.ScheduledDate, media)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoActivePlan):
			writeError(w, http.StatusForbidden, "an active plan is required to write letters", "")
		case errors.Is(err, domain.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, "letter body and a future delivery date are required", "")
		case errors.Is(err, domain.ErrProfileNotFound):
			writeError(w, http.StatusNotFound, "profile not registered", "")
		default:
			writeError(w, http.StatusInternalServerError, "failed to store letter", "")
		}
		return
	}
	writeJSON(w, http.StatusCreated, letter)
}

func (s *Server) handleListLetters(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	letters, total, err := s.letterUC.List(r.Context(), caller.ID, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list letters", "")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data   []*model.Letter `json:"data"`
		Total  int             `json:"total"`
		Offset int             `json:"offset"`
		Limit  int             `json:"limit"`
	}{Data: letters, Total: total, Offset: offset, Limit: limit})
}

func (s *Server) handleGetLetter(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())
	letter, err := s.letterUC.Get(r.Context(), caller.ID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "letter not found", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load letter", "")
		return
	}
	writeJSON(w, http.StatusOK, letter)
}

func (s *Server) handleDeleteLetter(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())
	if err := s.letterUC.Delete(r.Context(), caller.ID, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "letter not found", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete letter", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLetterMedia(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())
	url, err := s.letterUC.MediaURL(r.Context(), caller.ID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "letter media not found", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to resolve media", "")
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}
