// Command sample demonstrates the resolve engine with a small user API
// covering routing, dependencies, validation, middleware, and spec
// generation.
//
// Run:
//
//	go run ./cmd/sample
//
// Generate the OpenAPI spec:
//
//	go run ./cmd/sample -spec                        — print to stdout
//	go run ./cmd/sample -spec -o openapi.json        — write to file
//
// Then explore:
//
//	GET    http://localhost:8080/openapi.json        — OpenAPI spec
//	GET    http://localhost:8080/v1/health           — health check
//	GET    http://localhost:8080/v1/users            — list users
//	POST   http://localhost:8080/v1/users            — create user
//	GET    http://localhost:8080/v1/users/{id}       — get user
//	PUT    http://localhost:8080/v1/users/{id}       — update user
//	DELETE http://localhost:8080/v1/users/{id}       — delete user
//
// Every /v1 endpoint requires an X-API-Key header (any non-empty value).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/bjaus/resolve"
)

func main() {
	specFlag := flag.Bool("spec", false, "Print the OpenAPI spec to stdout and exit")
	outFlag := flag.String("o", "", "Output file for the spec (requires -spec)")
	flag.Parse()

	r := newRouter()

	if *specFlag {
		if err := writeSpec(r, *outFlag); err != nil {
			slog.Error("spec generation failed", "err", err)
			os.Exit(1)
		}
		return
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting server", "addr", ":8080", "spec", "http://localhost:8080/openapi.json")

	if err := r.ListenAndServe(ctx, ":8080"); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "err", err)
	}

	slog.Info("server stopped")
}

func newRouter() *resolve.Router {
	r := resolve.New(
		resolve.WithTitle("Sample API"),
		resolve.WithVersion("1.0.0"),
		resolve.WithSecurityScheme("apiKey", resolve.SecurityScheme{
			Type: "apiKey",
			Name: "X-API-Key",
			In:   "header",
		}),
	)

	// Global middleware.
	r.Use(resolve.Recovery())
	r.Use(resolve.RequestID())
	r.Use(resolve.Logger(slog.Default()))
	r.Use(resolve.CORS())
	r.Use(resolve.RateLimit(resolve.RateLimitConfig{Rate: 50, Burst: 100}))

	// Serve the OpenAPI spec at the root level.
	r.ServeSpec("/openapi.json")
	r.ServeSpecYAML("/openapi.yaml")

	v1 := r.Group("/v1",
		resolve.WithGroupTags("v1"),
		resolve.WithGroupParams(resolve.Params{
			"caller": resolve.Depends(auth),
		}),
	)

	v1.Get("/health", nil, handleHealth,
		resolve.WithSummary("Health check"),
		resolve.WithDescription("Returns the current server time and status."),
		resolve.WithTags("ops"),
	)

	v1.Get("/users", resolve.Params{
		"page": resolve.Depends(pagination),
		"role": resolve.Query(resolve.Optional{Of: resolve.Enum{Values: []string{"admin", "member"}}},
			resolve.WithParamDescription("Filter by role")),
	}, handleListUsers,
		resolve.WithSummary("List users"),
		resolve.WithTags("users"),
	)

	v1.Post("/users", resolve.Params{
		"body": resolve.Body(resolve.Object{
			Fields: map[string]resolve.Validator{
				"name":  resolve.String{MinLen: 1, MaxLen: 100},
				"email": resolve.String{MinLen: 3},
				"role":  resolve.Default{Of: resolve.Enum{Values: []string{"admin", "member"}}, Value: "member"},
			},
			Required: []string{"name", "email"},
		}),
	}, handleCreateUser,
		resolve.WithStatus(http.StatusCreated),
		resolve.WithSummary("Create user"),
		resolve.WithTags("users"),
	)

	v1.Get("/users/{id}", resolve.Params{
		"id": resolve.Path(resolve.Int{}),
	}, handleGetUser,
		resolve.WithSummary("Get user by ID"),
		resolve.WithTags("users"),
	)

	v1.Put("/users/{id}", resolve.Params{
		"id": resolve.Path(resolve.Int{}),
		"body": resolve.Body(resolve.Object{
			Fields: map[string]resolve.Validator{
				"name":  resolve.Optional{Of: resolve.String{MinLen: 1}},
				"email": resolve.Optional{Of: resolve.String{MinLen: 3}},
				"role":  resolve.Optional{Of: resolve.Enum{Values: []string{"admin", "member"}}},
			},
		}),
	}, handleUpdateUser,
		resolve.WithSummary("Update user"),
		resolve.WithTags("users"),
	)

	v1.Delete("/users/{id}", resolve.Params{
		"id": resolve.Path(resolve.Int{}),
	}, handleDeleteUser,
		resolve.WithStatus(http.StatusNoContent),
		resolve.WithSummary("Delete user"),
		resolve.WithTags("users"),
	)

	return r
}

func writeSpec(r *resolve.Router, outFile string) error {
	w := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile) //nolint:gosec // user-provided CLI flag
		if err != nil {
			return err
		}
		defer func() {
			if err := f.Close(); err != nil {
				slog.Error("failed to close output file", "err", err)
			}
		}()
		w = f
	}
	return r.WriteSpec(w)
}

// Dependencies
// ---------------------------------------------------------------------------

// auth rejects requests without an API key. Cached per request, so routes
// and other dependencies can all reference it at the cost of one check.
var auth = resolve.NewDependency(resolve.Params{
	"x_api_key": resolve.Header(resolve.Optional{Of: resolve.String{MinLen: 1}}),
}, func(c *resolve.Context) (any, error) {
	key, _ := c.Arg("x_api_key").(string)
	if key == "" {
		return nil, resolve.JSONResponse(map[string]string{"detail": "missing API key"}, http.StatusUnauthorized)
	}
	return key, nil
}, resolve.WithDependencyName("auth"))

type page struct {
	Limit  int64
	Offset int64
}

// pagination bundles the standard limit/offset query parameters.
var pagination = resolve.NewDependency(resolve.Params{
	"limit":  resolve.Query(resolve.Default{Of: resolve.Int{Max: i64(100)}, Value: int64(50)}),
	"offset": resolve.Query(resolve.Default{Of: resolve.Int{Min: i64(0)}, Value: int64(0)}),
}, func(c *resolve.Context) (any, error) {
	return page{
		Limit:  c.Arg("limit").(int64),
		Offset: c.Arg("offset").(int64),
	}, nil
}, resolve.WithDependencyName("pagination"))

func i64(n int64) *int64 { return &n }

// In-memory store
// ---------------------------------------------------------------------------

var store = &userStore{
	users: map[int64]*User{
		1: {ID: 1, Name: "Alice", Email: "alice@example.com", Role: "admin", CreatedAt: time.Now()},
		2: {ID: 2, Name: "Bob", Email: "bob@example.com", Role: "member", CreatedAt: time.Now()},
	},
	nextID: 3,
}

type userStore struct {
	mu     sync.RWMutex
	users  map[int64]*User
	nextID int64
}

func (s *userStore) list(role string) []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, *u)
	}
	return out
}

func (s *userStore) get(id int64) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	cp := *u
	return &cp, true
}

func (s *userStore) create(name, email, role string) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &User{
		ID:        s.nextID,
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now(),
	}
	s.nextID++
	s.users[u.ID] = u
	cp := *u
	return &cp
}

func (s *userStore) update(id int64, name, email, role string) (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	if name != "" {
		u.Name = name
	}
	if email != "" {
		u.Email = email
	}
	if role != "" {
		u.Role = role
	}
	cp := *u
	return &cp, true
}

func (s *userStore) delete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false
	}
	delete(s.users, id)
	return true
}

// Domain types
// ---------------------------------------------------------------------------

// User is the core domain entity.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Handlers
// ---------------------------------------------------------------------------

func handleHealth(_ *resolve.Context) (any, error) {
	return map[string]any{
		"status": "ok",
		"time":   time.Now(),
	}, nil
}

func handleListUsers(c *resolve.Context) (any, error) {
	role, _ := c.Arg("role").(string)
	p := c.Arg("page").(page)

	users := store.list(role)
	total := len(users)

	if p.Offset > int64(len(users)) {
		users = nil
	} else {
		users = users[p.Offset:]
	}
	if p.Limit < int64(len(users)) {
		users = users[:p.Limit]
	}

	return map[string]any{
		"users": users,
		"total": total,
	}, nil
}

func handleCreateUser(c *resolve.Context) (any, error) {
	body := c.Arg("body").(map[string]any)
	user := store.create(
		body["name"].(string),
		body["email"].(string),
		body["role"].(string),
	)

	// Audit after the response is out the door.
	c.Later(func(resp *resolve.Response) {
		slog.Info("user created", "id", user.ID, "status", resp.Status)
	})

	return user, nil
}

func handleGetUser(c *resolve.Context) (any, error) {
	id := c.Arg("id").(int64)
	user, ok := store.get(id)
	if !ok {
		return nil, resolve.JSONResponse(map[string]string{"detail": fmt.Sprintf("user %d not found", id)}, http.StatusNotFound)
	}
	return user, nil
}

func handleUpdateUser(c *resolve.Context) (any, error) {
	id := c.Arg("id").(int64)
	body := c.Arg("body").(map[string]any)

	name, _ := body["name"].(string)
	email, _ := body["email"].(string)
	role, _ := body["role"].(string)

	user, ok := store.update(id, name, email, role)
	if !ok {
		return nil, resolve.JSONResponse(map[string]string{"detail": fmt.Sprintf("user %d not found", id)}, http.StatusNotFound)
	}
	return user, nil
}

func handleDeleteUser(c *resolve.Context) (any, error) {
	id := c.Arg("id").(int64)
	if !store.delete(id) {
		return nil, resolve.JSONResponse(map[string]string{"detail": fmt.Sprintf("user %d not found", id)}, http.StatusNotFound)
	}
	return resolve.NewResponse(http.StatusNoContent, nil), nil
}
