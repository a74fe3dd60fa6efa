package main

import (
	"context"
	"fmt"
	"html"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	navgate "github.com/navgate/navgate"
	"github.com/navgate/navgate/guard"
	"github.com/navgate/navgate/middleware"
	"github.com/navgate/navgate/route"
	"github.com/navgate/navgate/session"
	"github.com/navgate/navgate/storage"
)

func runServe(ctx context.Context, opts serveOptions) error {
	store, cleanup, err := openStorage(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	routes, err := loadRoutes(opts)
	if err != nil {
		return err
	}

	backend := newStubBackend()

	cfg := navgate.DefaultConfig()
	cfg.Policy.Mode = guard.ModeRouteRoles
	cfg.Login.Endpoint = "http://" + listenHost(opts.Addr) + "/api/login"

	builder := navgate.New().
		WithConfig(cfg).
		WithStorage(store).
		WithRoutes(routes).
		WithHTTPClient(&http.Client{Timeout: 5 * time.Second})
	if opts.AuditJSON {
		builder = builder.WithAuditSink(navgate.NewJSONWriterSink(os.Stdout))
	}

	engine, err := builder.Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	if outcome := engine.Initialize(ctx); outcome == session.RestoreOK {
		log.Printf("restored session for %s", engine.Session().Principal().Username)
	} else {
		log.Printf("starting logged out")
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/login", backend.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/public/login", handleLoginPage).Methods(http.MethodGet)
	r.HandleFunc("/public/login", loginSubmitHandler(engine)).Methods(http.MethodPost)
	r.HandleFunc("/public/logout", logoutHandler(engine))

	protected := r.PathPrefix("/auth").Subrouter()
	protected.Use(middleware.Guard(engine))
	protected.PathPrefix("/").HandlerFunc(sectionHandler)
	protected.HandleFunc("", sectionHandler)

	log.Printf("listening on %s (storage=%s)", opts.Addr, opts.Storage)
	server := &http.Server{Addr: opts.Addr, Handler: r}
	return server.ListenAndServe()
}

func openStorage(opts serveOptions) (storage.Store, func(), error) {
	switch opts.Storage {
	case "memory":
		return storage.NewMemory(), func() {}, nil

	case "file":
		return storage.NewFile(opts.FilePath), func() {}, nil

	case "redis":
		addr := opts.RedisAddr
		cleanup := func() {}
		if addr == "" {
			mr, err := miniredis.Run()
			if err != nil {
				return nil, nil, err
			}
			addr = mr.Addr()
			cleanup = mr.Close
			log.Printf("embedded miniredis on %s", addr)
		}
		client := redis.NewClient(&redis.Options{Addr: addr})
		return storage.NewRedis(client, "navgate"), func() {
			_ = client.Close()
			cleanup()
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", opts.Storage)
	}
}

func loadRoutes(opts serveOptions) (*route.Table, error) {
	if opts.RoutesFile != "" {
		return route.LoadYAML(opts.RoutesFile)
	}

	tbl := route.NewTable()
	tbl.Add(route.Meta{Path: "/auth/products", Roles: []string{"user", "admin"}})
	tbl.Add(route.Meta{Path: "/auth/users", Roles: []string{"admin"}})
	tbl.Add(route.Meta{Path: "/auth/roles", Roles: []string{"admin"}})
	return tbl, nil
}

func listenHost(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "127.0.0.1" + addr
	}
	return addr
}

func handleLoginPage(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, `<form method="post">
<input name="username" placeholder="username">
<input name="password" type="password" placeholder="password">
<button>log in</button>
</form>
<p>try alice/correct-horse (admin) or bob/correct-horse (user)</p>`)
}

func loginSubmitHandler(engine *navgate.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		landing, err := engine.Login(r.Context(), r.FormValue("username"), r.FormValue("password"))
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprintln(w, "invalid credentials, try again")
			return
		}
		http.Redirect(w, r, landing, http.StatusSeeOther)
	}
}

func logoutHandler(engine *navgate.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = engine.Logout(r.Context())
		http.Redirect(w, r, "/public/login", http.StatusSeeOther)
	}
}

func sectionHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFromContext(r.Context())
	name := "unknown"
	if p != nil {
		name = p.Username
	}

	if r.URL.Query().Get("error") == "access-denied" {
		fmt.Fprintf(w, "access denied — %s may not enter that section\n", html.EscapeString(name))
		return
	}

	section := route.Section(r.URL.Path)
	fmt.Fprintf(w, "hello %s, you are in %s\n", html.EscapeString(name), html.EscapeString(section))
}
