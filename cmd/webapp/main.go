// Command webapp is a small HTTP demo built on the assembler package. Each
// request runs its own [assembler.Build], demonstrating global configuration
// injected from the environment and event forwarding from a request-scoped
// unit out to a process-wide audit log. Greeting and RequestHandler carry a
// "request-scoped" tag; the routes are registered directly on the chi
// router and nothing looks units up by that tag.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/pegasusheavy/go-assembler/assembler"
)

// =============================================================================
// Config loading
// =============================================================================

func loadEnv() {
	_ = godotenv.Load(".env")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// =============================================================================
// Domain
// =============================================================================

// Greeting is built fresh per request, picking up via [assembler.GlobalParam]
// the "site_name" global that registerUnits seeds from the SITE_NAME
// environment variable.
type Greeting struct {
	siteName string
}

func (g *Greeting) For(name string) string {
	return "hello, " + name + ", from " + g.siteName
}

// AuditLog embeds [assembler.Emitter] so the unit can emit on its own
// "request" channel; the assembler forwards every emission to the build's
// shared container bus, per the Forwarding rule.
type AuditLog struct {
	assembler.Emitter
}

func (a *AuditLog) Record(method, path string) {
	a.Emit("request", method, path)
}

// RequestLogger subscribes to the container scope's "request" channel via
// its public [assembler.Context], printing one line per forwarded audit
// event. Subscribing in OnInit guarantees the listener is attached before
// RequestHandler.Handle ever gets a chance to emit.
type RequestLogger struct {
	ctx assembler.Context
}

func (l *RequestLogger) OnInit(_ assembler.Configuration) error {
	l.ctx.On("request", func(args ...any) {
		log.Printf("audit: %v %v", args[0], args[1])
	})
	return nil
}

// RequestHandler is the root unit built once per inbound HTTP request.
type RequestHandler struct {
	greeting *Greeting
	audit    *AuditLog
	logger   *RequestLogger
}

func (h *RequestHandler) Handle(method, path, name string) map[string]any {
	h.audit.Record(method, path)
	return map[string]any{
		"message": h.greeting.For(name),
		"method":  method,
		"path":    path,
	}
}

// =============================================================================
// Registration
// =============================================================================

func registerUnits(siteName string) {
	must(assembler.Assemblage[AuditLog](assembler.Definition{
		Events: []string{"request"},
	}, func() *AuditLog {
		return &AuditLog{}
	}))

	must(assembler.Assemblage[RequestLogger](assembler.Definition{}, func(ctx assembler.Context) *RequestLogger {
		return &RequestLogger{ctx: ctx}
	}))

	must(assembler.Assemblage[Greeting](assembler.Definition{
		Global: map[string]any{"site_name": siteName},
		Tags:   []string{"request-scoped"},
	}, func(name string) *Greeting {
		return &Greeting{siteName: name}
	}, assembler.GlobalParam(0, "site_name")))

	transient := false
	must(assembler.Assemblage[RequestHandler](assembler.Definition{
		Singleton: &transient,
		Inject: []assembler.InjectionTuple{
			assembler.Inject[Greeting](),
			assembler.Inject[AuditLog](),
			assembler.Inject[RequestLogger](),
		},
		Tags: []string{"request-scoped"},
	}, func(greeting *Greeting, audit *AuditLog, logger *RequestLogger) *RequestHandler {
		return &RequestHandler{greeting: greeting, audit: audit, logger: logger}
	}))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// =============================================================================
// HTTP
// =============================================================================

func greetHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		name = "friend"
	}

	handler, err := assembler.Build[*RequestHandler]()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	body := handler.Handle(r.Method, r.URL.Path, name)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func main() {
	loadEnv()

	siteName := envOr("SITE_NAME", "assembler-demo")
	port := envIntOr("PORT", 8080)

	registerUnits(siteName)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/healthz", healthHandler)
	r.Get("/greet/{name}", greetHandler)
	r.Get("/greet", greetHandler)

	addr := ":" + strconv.Itoa(port)
	log.Printf("listening on %s (site_name=%s)", addr, siteName)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err)
	}
}
