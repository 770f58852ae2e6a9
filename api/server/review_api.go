package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"carereviews/core/audit"
	"carereviews/core/auth"
	"carereviews/core/notify"
	"carereviews/core/review"
	"carereviews/core/storage"
	"carereviews/types/ids"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// RegisterReviewAPI registers the review endpoints on mux.
func RegisterReviewAPI(mux *http.ServeMux, s *Server) {
	mux.HandleFunc("POST /api/v1/reviews", s.SubmitReviewHandler)
	mux.HandleFunc("POST /api/v1/reviews/check", s.CheckReviewHandler)
	mux.HandleFunc("GET /api/v1/reviews", s.ListReviewsHandler)
	mux.HandleFunc("GET /api/v1/reviews/{id}", s.GetReviewHandler)
	mux.HandleFunc("POST /api/v1/reviews/{id}/helpful", s.MarkHelpfulHandler)

	deleteHandler := http.Handler(http.HandlerFunc(s.DeleteReviewHandler))
	if s.authorizer != nil {
		deleteHandler = s.authorizer.Middleware(deleteHandler)
	} else {
		deleteHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		})
	}
	mux.Handle("DELETE /api/v1/reviews/{id}", deleteHandler)
}

// allowRequest applies ban and rate-limit checks. It writes the response and
// returns false when the request must stop.
func (s *Server) allowRequest(w http.ResponseWriter, r *http.Request) bool {
	if s.limiter == nil {
		return true
	}
	addr := clientAddr(r)
	banned, err := s.limiter.IsBanned(r.Context(), addr)
	if err != nil {
		// Fail open: losing the limiter must not take submissions down.
		s.logger.Error("rate limiter unavailable", zap.Error(err))
		return true
	}
	if banned {
		writeError(w, http.StatusForbidden, "forbidden: banned")
		return false
	}
	allowed, err := s.limiter.Allow(r.Context(), addr)
	if err != nil {
		s.logger.Error("rate limiter unavailable", zap.Error(err))
		return true
	}
	if !allowed {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return false
	}
	return true
}

func decodeSubmission(w http.ResponseWriter, r *http.Request) (review.Submission, error) {
	var sub review.Submission
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sub); err != nil {
		return sub, err
	}
	return sub, nil
}

// sanitize runs the review pipeline and records the outcome.
func (s *Server) sanitize(sub review.Submission) (review.PatientReview, string, error) {
	id := s.newID()
	rec, err := review.Sanitize(sub, id, s.now())
	var se *review.SchemaError
	switch {
	case errors.As(err, &se):
		audit.LogSchemaViolation(s.audit, id, se.FieldNames())
	case errors.Is(err, review.ErrComplianceRejected):
		audit.LogComplianceRejection(s.audit, id)
		notify.ComplianceRejected(s.notifier, id)
	}
	return rec, id, err
}

// SubmitReviewHandler validates a review and publishes it.
func (s *Server) SubmitReviewHandler(w http.ResponseWriter, r *http.Request) {
	if !s.allowRequest(w, r) {
		return
	}
	sub, err := decodeSubmission(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}
	// votes only come from the helpful endpoint
	sub.HelpfulCount = 0

	rec, _, err := s.sanitize(sub)
	if err != nil {
		writeRejection(w, err)
		return
	}

	if err := s.store.SaveReview(rec); err != nil {
		if errors.Is(err, storage.ErrDuplicateReview) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.logger.Error("failed to save review", zap.String("review_id", rec.ReviewID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save review")
		return
	}
	audit.LogReviewAccepted(s.audit, rec.ReviewID, rec.Rating)
	writeJSON(w, http.StatusCreated, rec)
}

func writeRejection(w http.ResponseWriter, err error) {
	var se *review.SchemaError
	if errors.As(err, &se) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid review", Fields: se.Fields})
		return
	}
	writeError(w, http.StatusUnprocessableEntity, err.Error())
}

// CheckResponse is the result of a dry-run check.
type CheckResponse struct {
	Compliant bool                  `json:"compliant"`
	Review    *review.PatientReview `json:"review,omitempty"`
	Error     string                `json:"error,omitempty"`
	Fields    []review.FieldError   `json:"fields,omitempty"`
}

// CheckReviewHandler runs the pipeline without storing anything.
func (s *Server) CheckReviewHandler(w http.ResponseWriter, r *http.Request) {
	if !s.allowRequest(w, r) {
		return
	}
	sub, err := decodeSubmission(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}
	rec, err := review.Sanitize(sub, s.newID(), s.now())
	writeJSON(w, http.StatusOK, NewCheckResponse(rec, err))
}

// NewCheckResponse builds the dry-run answer for a pipeline result.
func NewCheckResponse(rec review.PatientReview, err error) CheckResponse {
	if err == nil {
		return CheckResponse{Compliant: true, Review: &rec}
	}
	resp := CheckResponse{Error: err.Error()}
	var se *review.SchemaError
	if errors.As(err, &se) {
		resp.Error = "invalid review"
		resp.Fields = se.Fields
	}
	return resp
}

// ListReviewsHandler returns published reviews.
func (s *Server) ListReviewsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.ListFilter{Condition: q.Get("condition"), Limit: defaultListLimit}

	if v := q.Get("minRating"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 5 {
			writeError(w, http.StatusBadRequest, "minRating must be an integer between 1 and 5")
			return
		}
		filter.MinRating = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = min(n, maxListLimit)
	}

	reviews, err := s.store.ListReviews(filter)
	if err != nil {
		s.logger.Error("failed to list reviews", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}
	if reviews == nil {
		reviews = []review.PatientReview{}
	}
	writeJSON(w, http.StatusOK, reviews)
}

// reviewID reads the {id} path value. It writes 400 and returns false when
// the value is not a review ID.
func reviewID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := ids.ParseReviewID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed review id")
		return "", false
	}
	return id, true
}

// GetReviewHandler returns one review.
func (s *Server) GetReviewHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := reviewID(w, r)
	if !ok {
		return
	}
	rec, err := s.store.GetReview(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// MarkHelpfulHandler records a helpful vote.
func (s *Server) MarkHelpfulHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := reviewID(w, r)
	if !ok {
		return
	}
	if !s.allowRequest(w, r) {
		return
	}
	rec, err := s.store.MarkHelpful(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DeleteReviewHandler removes a review; moderator only.
func (s *Server) DeleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := reviewID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteReview(id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	audit.LogReviewDeleted(s.audit, id, auth.SubjectFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.logger.Error("review store error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
