package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/sharearecipe/internal/auth"
	"github.com/dukerupert/sharearecipe/internal/docstore"
	"github.com/dukerupert/sharearecipe/internal/handler"
	"github.com/dukerupert/sharearecipe/internal/middleware"
	"github.com/dukerupert/sharearecipe/internal/social"
	"github.com/dukerupert/sharearecipe/internal/store"
	ws "github.com/dukerupert/sharearecipe/internal/websocket"
)

// Auth attempts allowed per client IP per window.
const (
	authAttemptLimit  = 10
	authAttemptWindow = time.Minute
)

var errTopicNeedsID = errors.New("topic requires an id")

// Server wires the stores, live feeds and hub behind one router.
type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	provider    *auth.LocalProvider
	feed        *social.RecipeFeed
	authH       *handler.AuthHandler
	recipeH     *handler.RecipeHandler
	commentH    *handler.CommentHandler
	profileH    *handler.ProfileHandler
	groceryH    *handler.GroceryHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

// New wires the services over db (accounts and sessions) and docs (the
// document collections). The feed is not listening until Feed().Listen
// is called.
func New(db *sql.DB, docs docstore.Store, sessionTTL time.Duration, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	provider := auth.NewLocalProvider(store.NewAccountStore(db), store.NewSessionStore(db), sessionTTL, logger.With("component", "auth"))
	feed := social.NewRecipeFeed(docs, logger.With("component", "feed"))
	accounts := social.NewAccounts(docs, logger.With("component", "accounts"))
	comments := social.NewComments(docs, logger.With("component", "comments"))
	groceries := social.NewGroceries(docs, logger.With("component", "groceries"))

	s := &Server{
		db:          db,
		hub:         hub,
		provider:    provider,
		feed:        feed,
		authH:       handler.NewAuthHandler(provider, accounts, logger.With("component", "auth_handler")),
		recipeH:     handler.NewRecipeHandler(feed, accounts, hub, logger.With("component", "recipe")),
		commentH:    handler.NewCommentHandler(comments, accounts, hub, logger.With("component", "comment")),
		profileH:    handler.NewProfileHandler(accounts, feed, hub, logger.With("component", "profile")),
		groceryH:    handler.NewGroceryHandler(groceries, feed, hub, logger.With("component", "grocery")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
	s.registerTopics(accounts, comments, groceries)
	return s
}

// Feed returns the shared recipe feed.
func (s *Server) Feed() *social.RecipeFeed {
	return s.feed
}

// Provider returns the auth provider for session cleanup.
func (s *Server) Provider() *auth.LocalProvider {
	return s.provider
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) registerTopics(accounts *social.Accounts, comments *social.Comments, groceries *social.Groceries) {
	s.hub.Handle("recipes", func(ctx context.Context, uid, id string) (*ws.Stream, error) {
		return ws.Watch(s.feed.Live(), nil), nil
	})
	s.hub.Handle("groceryLists", func(ctx context.Context, uid, id string) (*ws.Stream, error) {
		coll, err := groceries.Listen(ctx, uid)
		if err != nil {
			return nil, err
		}
		return ws.Watch(coll, coll.Stop), nil
	})
	s.hub.Handle("comments", func(ctx context.Context, uid, id string) (*ws.Stream, error) {
		if id == "" {
			return nil, errTopicNeedsID
		}
		coll, err := comments.Listen(ctx, id)
		if err != nil {
			return nil, err
		}
		return ws.Watch(coll, coll.Stop), nil
	})
	s.hub.Handle("users", func(ctx context.Context, uid, id string) (*ws.Stream, error) {
		if id == "" {
			id = uid
		}
		coll, err := accounts.Listen(ctx, id)
		if err != nil {
			return nil, err
		}
		return ws.Watch(coll, coll.Stop), nil
	})
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))

	// Protected routes, wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.provider)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.db.PingContext(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.ByIP, authAttemptLimit, authAttemptWindow)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)

	// Profiles and the follow graph
	mux.HandleFunc("GET /api/me", s.profileH.Me)
	mux.HandleFunc("PUT /api/me", s.profileH.UpdateMe)
	mux.HandleFunc("GET /api/users", s.profileH.Search)
	mux.HandleFunc("GET /api/users/{uid}", s.profileH.Get)
	mux.HandleFunc("POST /api/users/{uid}/follow", s.profileH.ToggleFollow)
	mux.HandleFunc("GET /api/users/{uid}/followers", s.profileH.Followers)
	mux.HandleFunc("GET /api/users/{uid}/following", s.profileH.Following)

	// Recipe API routes
	mux.HandleFunc("GET /api/recipes", s.recipeH.List)
	mux.HandleFunc("POST /api/recipes", s.recipeH.Create)
	mux.HandleFunc("GET /api/recipes/saved", s.recipeH.Saved)
	mux.HandleFunc("GET /api/recipes/{id}", s.recipeH.Get)
	mux.HandleFunc("PUT /api/recipes/{id}", s.recipeH.Update)
	mux.HandleFunc("DELETE /api/recipes/{id}", s.recipeH.Delete)
	mux.HandleFunc("POST /api/recipes/{id}/save", s.recipeH.ToggleSave)
	mux.HandleFunc("POST /api/recipes/{id}/vote", s.recipeH.Vote)

	// Comments
	mux.HandleFunc("GET /api/recipes/{id}/comments", s.commentH.List)
	mux.HandleFunc("POST /api/recipes/{id}/comments", s.commentH.Create)

	// Grocery API routes
	mux.HandleFunc("GET /api/grocery-lists", s.groceryH.List)
	mux.HandleFunc("POST /api/grocery-lists", s.groceryH.Create)
	mux.HandleFunc("POST /api/recipes/{id}/grocery-list", s.groceryH.CreateFromRecipe)
	mux.HandleFunc("DELETE /api/grocery-lists/{id}", s.groceryH.Delete)
	mux.HandleFunc("POST /api/grocery-lists/{id}/items/{item_id}/toggle", s.groceryH.ToggleItem)
	mux.HandleFunc("DELETE /api/grocery-lists/{id}/items/{item_id}", s.groceryH.RemoveItem)
	mux.HandleFunc("POST /api/grocery-lists/{id}/items/remove", s.groceryH.RemoveItems)
	mux.HandleFunc("POST /api/grocery-lists/{id}/clear-checked", s.groceryH.ClearChecked)
	mux.HandleFunc("POST /api/grocery/categorize", s.groceryH.Categorize)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, nil))
}
