// Package httpapi exposes the pixo services over HTTP/JSON.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/pixo/internal/logging"
	"github.com/dmitrijs2005/pixo/internal/server/config"
	"github.com/dmitrijs2005/pixo/internal/server/models"
	"github.com/dmitrijs2005/pixo/internal/server/services"
	"github.com/gorilla/mux"
)

const shutdownTimeout = 10 * time.Second

type Users interface {
	Register(ctx context.Context, username, password, picture string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Verify(token string) (*models.Identity, error)
	Profile(ctx context.Context, username string) (*models.Profile, error)
}

type Feed interface {
	ListFeed(ctx context.Context, before *time.Time) ([]*models.Image, error)
	RandomImage(ctx context.Context) (*models.Image, error)
	GetByID(ctx context.Context, id string) (*models.Image, error)
	ListByAuthor(ctx context.Context, author string) ([]*models.Image, error)
	Search(ctx context.Context, query string, limit int) ([]*models.Image, error)
	Publish(ctx context.Context, identity *models.Identity, in services.PublishInput) (*models.Image, error)
}

type Likes interface {
	Like(ctx context.Context, imageID, userID string) (int64, error)
	Unlike(ctx context.Context, imageID, userID string) (int64, error)
	LikeCount(ctx context.Context, imageID string) (int64, error)
}

type Assets interface {
	UploadTicket(ctx context.Context, identity *models.Identity) (*models.UploadTicket, error)
}

type Server struct {
	address         string
	logger          logging.Logger
	users           Users
	feed            Feed
	likes           Likes
	assets          Assets
	corsOrigins     []string
	requireLikeAuth bool
}

func NewServer(cfg *config.Config, l logging.Logger, us Users, fs Feed, ls Likes, as Assets) *Server {
	return &Server{
		address:         cfg.HTTPAddr,
		logger:          l.With("module", "http_server"),
		users:           us,
		feed:            fs,
		likes:           ls,
		assets:          as,
		corsOrigins:     cfg.CORSOrigins,
		requireLikeAuth: cfg.RequireLikeAuth,
	}
}

// Handler returns the full middleware chain around the router.
func (s *Server) Handler() http.Handler {
	return s.cors(s.logRequests(s.router()))
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)

	r.HandleFunc("/get-images", s.makeHandler(s.handleGetImages)).Methods(http.MethodGet)
	r.HandleFunc("/get-random-image", s.makeHandler(s.handleGetRandomImage)).Methods(http.MethodGet)
	r.HandleFunc("/get-image-by-id/{id}", s.makeHandler(s.handleGetImageByID)).Methods(http.MethodGet)
	r.HandleFunc("/get-user-images/{author}", s.makeHandler(s.handleGetUserImages)).Methods(http.MethodGet)
	r.HandleFunc("/get-all-images", s.makeHandler(s.handleGetAllImages)).Methods(http.MethodGet)
	r.HandleFunc("/get-image-likes/{id}", s.makeHandler(s.handleGetImageLikes)).Methods(http.MethodGet)
	r.HandleFunc("/upload-image", s.makeHandler(s.requireAuth(s.handleUploadImage))).Methods(http.MethodPost)
	r.HandleFunc("/upload-url", s.makeHandler(s.requireAuth(s.handleUploadURL))).Methods(http.MethodPost)

	like, dislike := s.handleLike, s.handleDislike
	if s.requireLikeAuth {
		like, dislike = s.requireAuth(like), s.requireAuth(dislike)
	}
	r.HandleFunc("/like-image", s.makeHandler(like)).Methods(http.MethodPost)
	r.HandleFunc("/dislike-image", s.makeHandler(dislike)).Methods(http.MethodPost)

	r.HandleFunc("/register", s.makeHandler(s.handleRegister)).Methods(http.MethodPost)
	r.HandleFunc("/login", s.makeHandler(s.handleLogin)).Methods(http.MethodPost)
	r.HandleFunc("/get-user-by-id/profile/{username}", s.makeHandler(s.handleGetProfile)).Methods(http.MethodGet)
	r.HandleFunc("/protected", s.makeHandler(s.requireAuth(s.handleProtected))).Methods(http.MethodGet)

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
