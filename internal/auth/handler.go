// Package auth serves the login flow, delegating credential checks to the
// remote vendas API.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vendascope/vendascope/internal/salesapi"
	"github.com/vendascope/vendascope/internal/view"
)

// Authenticator is the slice of the vendas API client used for login.
type Authenticator interface {
	Login(ctx context.Context, creds salesapi.Credentials) error
	Logout(ctx context.Context) error
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	client    Authenticator
	templates *view.Engine
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, client Authenticator, templates *view.Engine) *Handler {
	return &Handler{
		logger:    logger,
		client:    client,
		templates: templates,
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/auth/login", h.showLogin)
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)
}

type loginPageData struct {
	Email    string
	ErrorMsg string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, http.StatusOK, loginPageData{})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	creds := salesapi.Credentials{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("senha"),
	}
	if err := h.client.Login(r.Context(), creds); err != nil {
		h.logWarn("login", err)
		data := loginPageData{Email: creds.Email, ErrorMsg: loginErrorMessage(err)}
		h.renderLogin(w, r, loginErrorStatus(err), data)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Logout(r.Context()); err != nil {
		h.logWarn("logout", err)
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data loginPageData) {
	viewData := view.TemplateData{
		Title:       "Entrar",
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, "pages/login.html", viewData); err != nil {
		h.logError("render login", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func loginErrorMessage(err error) string {
	switch salesapi.KindOf(err) {
	case salesapi.KindValidation:
		return "Informe um e-mail válido e a senha."
	case salesapi.KindAPI:
		return "E-mail ou senha inválidos."
	case salesapi.KindTransport:
		return "Não foi possível falar com a API de vendas. Tente novamente."
	default:
		return "Falha no login. Tente novamente."
	}
}

func loginErrorStatus(err error) int {
	switch salesapi.KindOf(err) {
	case salesapi.KindValidation:
		return http.StatusBadRequest
	case salesapi.KindAPI:
		return http.StatusUnauthorized
	case salesapi.KindTransport:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) logWarn(context string, err error) {
	if h.logger != nil {
		h.logger.Warn(context, slog.Any("error", err))
	}
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}

// ShowLoginForTest exposes the GET handler for tests.
func (h *Handler) ShowLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.showLogin(w, r)
}

// HandleLoginForTest exposes the POST handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}
