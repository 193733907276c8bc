package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/pixo/internal/server/models"
	"github.com/gorilla/mux"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Picture  string `json:"picture"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type protectedResponse struct {
	Message string           `json:"message"`
	User    *models.Identity `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) error {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	u, err := s.users.Register(r.Context(), req.Username, req.Password, req.Picture)
	if err != nil {
		return err
	}

	s.logger.Info(r.Context(), "Registered", "username", u.UserName)
	writeJSON(w, http.StatusCreated, messageResponse{Message: "Registration successful"})
	return nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	token, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, loginResponse{Message: "Login successful", Token: token})
	return nil
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) error {
	p, err := s.users.Profile(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, p)
	return nil
}

func (s *Server) handleProtected(w http.ResponseWriter, r *http.Request) error {
	identity, _ := IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, protectedResponse{Message: "authenticated", User: identity})
	return nil
}
