package httpapi

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/net/publicsuffix"

	"DealsTracker/internal/domain"
	"DealsTracker/internal/usecase"
)

// dealView adds presentation-only fields to a stored deal.
type dealView struct {
	domain.Deal
	SourceDomain string `json:"sourceDomain,omitempty"`
}

func viewOf(d domain.Deal) dealView {
	return dealView{Deal: d, SourceDomain: sourceDomain(d.SourceURL)}
}

func viewsOf(deals []domain.Deal) []dealView {
	out := make([]dealView, 0, len(deals))
	for _, d := range deals {
		out = append(out, viewOf(d))
	}
	return out
}

// sourceDomain reduces a provenance URL to its registrable domain, e.g.
// "https://www.bbc.co.uk/news/x" becomes "bbc.co.uk".
func sourceDomain(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return registrable
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	h, err := s.svc.Deals.Health(r.Context())
	if err != nil {
		s.logger.Error("health check", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, h)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) listDeals(w http.ResponseWriter, r *http.Request) {
	var filter domain.ListFilter
	if raw := r.URL.Query().Get("reviewStatus"); raw != "" {
		st, err := domain.ParseReviewStatus(raw)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		filter.ReviewStatus = st
	}
	deals, err := s.svc.Deals.List(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewsOf(deals))
}

func (s *Server) publicDeals(w http.ResponseWriter, r *http.Request) {
	deals, err := s.svc.Deals.Public(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewsOf(deals))
}

func (s *Server) getDeal(w http.ResponseWriter, r *http.Request) {
	deal, err := s.svc.Deals.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(deal))
}

func (s *Server) createDeal(w http.ResponseWriter, r *http.Request) {
	var deal domain.Deal
	if err := decodeJSON(w, r, &deal); err != nil {
		s.fail(w, r, err)
		return
	}
	created, err := s.svc.Intake.Manual(r.Context(), deal)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(created))
}

func (s *Server) updateDeal(w http.ResponseWriter, r *http.Request) {
	var patch domain.DealPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.fail(w, r, err)
		return
	}
	updated, err := s.svc.Deals.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(updated))
}

func (s *Server) deleteDeal(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Deals.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Deals.Dashboard(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) adminStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Deals.AdminStats(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) pendingDeals(w http.ResponseWriter, r *http.Request) {
	deals, err := s.svc.Review.Pending(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewsOf(deals))
}

type reviewRequest struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

type reviewResponse struct {
	Success      bool                `json:"success"`
	ID           string              `json:"id"`
	ReviewStatus domain.ReviewStatus `json:"reviewStatus"`
}

func (s *Server) review(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	action, err := usecase.ParseReviewAction(req.Action)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	status, err := s.svc.Review.Apply(r.Context(), req.ID, action)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviewResponse{Success: true, ID: req.ID, ReviewStatus: status})
}

type extractRequest struct {
	URL     string `json:"url"`
	RawText string `json:"rawText"`
}

type extractResponse struct {
	Success bool     `json:"success"`
	ID      string   `json:"id"`
	Deal    dealView `json:"deal"`
}

func (s *Server) extractDeal(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	var (
		deal domain.Deal
		err  error
	)
	switch {
	case strings.TrimSpace(req.RawText) != "":
		deal, err = s.svc.Intake.FromText(r.Context(), req.RawText, req.URL)
	case strings.TrimSpace(req.URL) != "":
		deal, err = s.svc.Intake.FromURL(r.Context(), req.URL)
	default:
		err = &domain.ValidationError{Field: "url", Reason: "url or rawText required"}
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, extractResponse{Success: true, ID: deal.ID, Deal: viewOf(deal)})
}

type scanResponse struct {
	Success        bool      `json:"success"`
	Candidates     int       `json:"candidates"`
	Added          int       `json:"added"`
	Skipped        int       `json:"skipped"`
	QuotaExhausted bool      `json:"quotaExhausted"`
	Errors         []string  `json:"errors"`
	Timestamp      time.Time `json:"timestamp"`
}

func (s *Server) fetchDeals(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	res, err := s.svc.Ingestor.Run(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scanResponse{
		Success:        true,
		Candidates:     res.Candidates,
		Added:          res.Added,
		Skipped:        res.Skipped,
		QuotaExhausted: res.QuotaExhausted,
		Errors:         res.Errors,
		Timestamp:      res.Timestamp,
	})
}

func (s *Server) authorized(w http.ResponseWriter, r *http.Request) bool {
	var signature string
	if s.schedulerHeader != "" {
		signature = r.Header.Get(s.schedulerHeader)
	}
	if err := s.svc.Trigger.Authorize(r.Header.Get("Authorization"), signature); err != nil {
		s.fail(w, r, err)
		return false
	}
	return true
}

type chatRequest struct {
	Messages []domain.ChatMessage `json:"messages"`
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	reply, err := s.svc.Chat.Reply(r.Context(), req.Messages)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

type seedResponse struct {
	Success bool `json:"success"`
	usecase.SeedResult
}

func (s *Server) seed(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	if s.svc.SeedLoader == nil {
		s.fail(w, r, domain.MissingConfig("seed path"))
		return
	}
	deals, err := s.svc.SeedLoader()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.svc.Maintenance.Seed(r.Context(), deals)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, seedResponse{Success: true, SeedResult: res})
}

func (s *Server) fixDates(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	n, err := s.svc.Maintenance.FixDates(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": n})
}
