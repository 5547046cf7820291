package handlers

import "net/http"

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Identity IdentityResolver
	Users    UserStore
	Videos   VideoStore
	Channels ChannelStore
	Genres   GenreStore
	Ledger   CreditLedger
	Workflow WorkflowClient
	Secret   SecretChecker
	Payments CheckoutProvider
	Sealer   OAuthSealer
	Archiver RenderArchiver
	Limiter  RateLimiter
	Version  string
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{Version: deps.Version}
	videos := VideoHandler{Identity: deps.Identity, Videos: deps.Videos, Workflow: deps.Workflow, Limiter: deps.Limiter}
	profile := ProfileHandler{Identity: deps.Identity, Users: deps.Users, Channels: deps.Channels, Ledger: deps.Ledger}
	genres := GenreHandler{Genres: deps.Genres}
	channels := ChannelHandler{Identity: deps.Identity, Channels: deps.Channels, Sealer: deps.Sealer}
	ai := AIHandler{Identity: deps.Identity, Workflow: deps.Workflow, Limiter: deps.Limiter}
	admin := AdminHandler{Identity: deps.Identity, Users: deps.Users, Videos: deps.Videos}
	payments := PaymentsHandler{Identity: deps.Identity, Provider: deps.Payments, Ledger: deps.Ledger, Limiter: deps.Limiter}
	callbacks := CallbackHandler{Secret: deps.Secret, Videos: deps.Videos, Archiver: deps.Archiver}

	mux.HandleFunc("GET /health", health.Handle)

	mux.HandleFunc("POST /videos", videos.Create)
	mux.HandleFunc("GET /videos", videos.List)
	mux.HandleFunc("GET /videos/{id}", videos.Get)
	mux.HandleFunc("PATCH /videos/{id}", videos.Update)

	mux.HandleFunc("GET /me", profile.Me)
	mux.HandleFunc("PATCH /me", profile.UpdateMe)
	mux.HandleFunc("GET /credits", profile.Credits)
	mux.HandleFunc("POST /register/profile", profile.Register)

	mux.HandleFunc("GET /genres", genres.List)

	mux.HandleFunc("GET /youtube/channels", channels.List)
	mux.HandleFunc("POST /youtube/channels", channels.Create)
	mux.HandleFunc("DELETE /youtube/channels/{id}", channels.Delete)

	mux.HandleFunc("POST /ai/screenplay", ai.Screenplay)

	mux.HandleFunc("GET /admin/users", admin.ListUsers)
	mux.HandleFunc("PATCH /admin/users/{id}", admin.UpdateUser)
	mux.HandleFunc("DELETE /admin/users/{id}", admin.DeleteUser)
	mux.HandleFunc("GET /admin/queue", admin.Queue)

	mux.HandleFunc("POST /payments/checkout", payments.Checkout)
	mux.HandleFunc("POST /payments/webhook", payments.Webhook)

	mux.HandleFunc("POST /n8n/screenplay/callback", callbacks.Screenplay)
	mux.HandleFunc("POST /n8n/video/callback", callbacks.Render)
}
