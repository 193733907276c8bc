package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

type likeRequest struct {
	ImageID string `json:"imageId"`
	UserID  string `json:"userId"`
}

type likesResponse struct {
	Likes int64 `json:"likes"`
}

// likeTarget resolves the (image, user) pair. A verified identity always
// overrides the body userId.
func (s *Server) likeTarget(w http.ResponseWriter, r *http.Request) (string, string, error) {
	var req likeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return "", "", err
	}
	if identity, ok := IdentityFromContext(r.Context()); ok {
		req.UserID = identity.UserID
	}
	return req.ImageID, req.UserID, nil
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) error {
	imageID, userID, err := s.likeTarget(w, r)
	if err != nil {
		return err
	}

	n, err := s.likes.Like(r.Context(), imageID, userID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, likesResponse{Likes: n})
	return nil
}

func (s *Server) handleDislike(w http.ResponseWriter, r *http.Request) error {
	imageID, userID, err := s.likeTarget(w, r)
	if err != nil {
		return err
	}

	n, err := s.likes.Unlike(r.Context(), imageID, userID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, likesResponse{Likes: n})
	return nil
}

func (s *Server) handleGetImageLikes(w http.ResponseWriter, r *http.Request) error {
	n, err := s.likes.LikeCount(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, likesResponse{Likes: n})
	return nil
}
