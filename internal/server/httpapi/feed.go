package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/pixo/internal/common"
	"github.com/dmitrijs2005/pixo/internal/server/models"
	"github.com/dmitrijs2005/pixo/internal/server/services"
	"github.com/dmitrijs2005/pixo/internal/timex"
	"github.com/gorilla/mux"
)

type publishRequest struct {
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
	SongName string   `json:"songName"`
	SongLink string   `json:"songLink"`
}

type publishResponse struct {
	Message string        `json:"message"`
	Image   *models.Image `json:"image"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("backend on"))
}

func writeImages(w http.ResponseWriter, images []*models.Image) {
	if images == nil {
		images = []*models.Image{}
	}
	writeJSON(w, http.StatusOK, images)
}

func (s *Server) handleGetImages(w http.ResponseWriter, r *http.Request) error {
	var before *time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("before")); raw != "" {
		t, err := timex.ParseTimestamp(raw)
		if err != nil {
			return fmt.Errorf("%w: before must be an ISO 8601 timestamp", common.ErrInvalidInput)
		}
		before = &t
	}

	images, err := s.feed.ListFeed(r.Context(), before)
	if err != nil {
		return err
	}
	writeImages(w, images)
	return nil
}

func (s *Server) handleGetRandomImage(w http.ResponseWriter, r *http.Request) error {
	img, err := s.feed.RandomImage(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, img)
	return nil
}

func (s *Server) handleGetImageByID(w http.ResponseWriter, r *http.Request) error {
	img, err := s.feed.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, img)
	return nil
}

func (s *Server) handleGetUserImages(w http.ResponseWriter, r *http.Request) error {
	images, err := s.feed.ListByAuthor(r.Context(), mux.Vars(r)["author"])
	if err != nil {
		return err
	}
	writeImages(w, images)
	return nil
}

func (s *Server) handleGetAllImages(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	limit := 0
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: limit must be a non-negative integer", common.ErrInvalidInput)
		}
		limit = n
	}

	images, err := s.feed.Search(r.Context(), q.Get("search"), limit)
	if err != nil {
		return err
	}
	writeImages(w, images)
	return nil
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) error {
	identity, _ := IdentityFromContext(r.Context())

	var req publishRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	img, err := s.feed.Publish(r.Context(), identity, services.PublishInput{
		URL:      req.URL,
		Title:    req.Title,
		Tags:     req.Tags,
		SongName: req.SongName,
		SongLink: req.SongLink,
	})
	if err != nil {
		return err
	}

	s.logger.Info(r.Context(), "Image published", "id", img.ID, "author", img.Author)
	writeJSON(w, http.StatusCreated, publishResponse{Message: "image published", Image: img})
	return nil
}

func (s *Server) handleUploadURL(w http.ResponseWriter, r *http.Request) error {
	identity, _ := IdentityFromContext(r.Context())

	ticket, err := s.assets.UploadTicket(r.Context(), identity)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, ticket)
	return nil
}
