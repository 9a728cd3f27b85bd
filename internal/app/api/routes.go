package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/mindwell/internal/http/handlers/ai"
	"github.com/magabrotheeeer/mindwell/internal/http/handlers/auth/forgotpassword"
	"github.com/magabrotheeeer/mindwell/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/mindwell/internal/http/handlers/auth/profile"
	"github.com/magabrotheeeer/mindwell/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/mindwell/internal/http/handlers/auth/resendverification"
	"github.com/magabrotheeeer/mindwell/internal/http/handlers/auth/resetpassword"
	"github.com/magabrotheeeer/mindwell/internal/http/handlers/auth/verifyemail"
	"github.com/magabrotheeeer/mindwell/internal/http/handlers/community"
	"github.com/magabrotheeeer/mindwell/internal/http/handlers/dashboard"
	"github.com/magabrotheeeer/mindwell/internal/http/handlers/habits"
	"github.com/magabrotheeeer/mindwell/internal/http/handlers/health"
	"github.com/magabrotheeeer/mindwell/internal/http/handlers/journal"
	"github.com/magabrotheeeer/mindwell/internal/http/handlers/mood"
	"github.com/magabrotheeeer/mindwell/internal/http/handlers/payment/paymentinit"
	"github.com/magabrotheeeer/mindwell/internal/http/handlers/payment/paymentlist"
	"github.com/magabrotheeeer/mindwell/internal/http/handlers/payment/paymentverify"
	"github.com/magabrotheeeer/mindwell/internal/http/handlers/payment/paymentwebhook"
	"github.com/magabrotheeeer/mindwell/internal/http/handlers/payment/subscriptioncancel"
	"github.com/magabrotheeeer/mindwell/internal/http/handlers/payment/subscriptionstatus"
	"github.com/magabrotheeeer/mindwell/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mindwell/internal/http/response"
	aiservice "github.com/magabrotheeeer/mindwell/internal/services/ai"
	authservice "github.com/magabrotheeeer/mindwell/internal/services/auth"
	communityservice "github.com/magabrotheeeer/mindwell/internal/services/community"
	paymentservice "github.com/magabrotheeeer/mindwell/internal/services/payment"
	subservice "github.com/magabrotheeeer/mindwell/internal/services/subscription"
	"github.com/magabrotheeeer/mindwell/internal/services/verification"
	"github.com/magabrotheeeer/mindwell/internal/services/wellness"
)

// requestTimeout ограничивает обработку одного запроса.
const requestTimeout = 30 * time.Second

// Services всё, что нужно маршрутам.
type Services struct {
	Auth         *authservice.AuthService
	Verification *verification.Service
	Subscription *subservice.Service
	Payment      *paymentservice.Service
	Mood         *wellness.MoodService
	Journal      *wellness.JournalService
	Habits       *wellness.HabitService
	Dashboard    *wellness.DashboardService
	Community    *communityservice.Service
	AI           *aiservice.Service
	DB           health.Pinger
	Limiter      *middlewarectx.IPLimiter
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(requestTimeout),
		middlewarectx.Metrics,
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.ErrorWithCode("route not found", "not_found"))
	})

	jwtAuth := middlewarectx.JWTMiddleware(s.Auth, logger)
	requirePremium := middlewarectx.RequirePremium(s.Subscription, logger)
	premiumContext := middlewarectx.PremiumContext(s.Subscription, logger)
	rateLimit := middlewarectx.RateLimitMiddleware(s.Limiter, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", health.New(logger, s.DB).ServeHTTP)

		r.Route("/auth", func(r chi.Router) {
			// Открытые конечные точки
			r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
			r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
			r.Post("/verify-email", verifyemail.New(logger, s.Verification, s.Auth).ServeHTTP)
			r.Post("/reset-password", resetpassword.New(logger, s.Verification).ServeHTTP)
			r.With(rateLimit).Post("/resend-verification", resendverification.New(logger, s.Verification).ServeHTTP)
			r.With(rateLimit).Post("/forgot-password", forgotpassword.New(logger, s.Verification).ServeHTTP)

			r.With(jwtAuth).Get("/profile", profile.New(logger, s.Auth, s.Subscription).ServeHTTP)
		})

		moodHandler := mood.New(logger, s.Mood)
		r.Route("/mood", func(r chi.Router) {
			r.Use(jwtAuth)
			r.Post("/log", moodHandler.Log)
			r.With(premiumContext).Get("/history", moodHandler.History)
			r.With(requirePremium).Get("/stats", moodHandler.Stats)
		})

		journalHandler := journal.New(logger, s.Journal)
		r.Route("/journal", func(r chi.Router) {
			r.Use(jwtAuth)
			r.Post("/entry", journalHandler.Create)
			r.Get("/entries", journalHandler.List)
			r.Get("/entry/{id}", journalHandler.Get)
		})

		habitsHandler := habits.New(logger, s.Habits)
		r.Route("/habits", func(r chi.Router) {
			r.Use(jwtAuth)
			r.Post("/create", habitsHandler.Create)
			r.Get("/list", habitsHandler.List)
			r.Post("/log", habitsHandler.Log)
		})

		r.With(jwtAuth, premiumContext).Get("/dashboard/summary", dashboard.New(logger, s.Dashboard).ServeHTTP)

		communityHandler := community.New(logger, s.Community)
		r.Route("/community", func(r chi.Router) {
			r.Get("/posts", communityHandler.List)
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth)
				r.Post("/posts", communityHandler.Create)
				r.Delete("/posts/{id}", communityHandler.Delete)
				r.Post("/posts/{id}/like", communityHandler.Like)
			})
		})

		aiHandler := ai.New(logger, s.AI)
		r.Route("/ai", func(r chi.Router) {
			r.Use(jwtAuth, requirePremium)
			r.Get("/affirmation", aiHandler.Affirmation)
			r.Get("/journal-prompt", aiHandler.JournalPrompt)
		})

		r.Route("/payment", func(r chi.Router) {
			// Webhook endpoint (без аутентификации)
			r.Post("/webhook", paymentwebhook.New(logger, s.Payment).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth)
				r.Post("/initialize", paymentinit.New(logger, s.Payment).ServeHTTP)
				r.With(rateLimit).Post("/verify-payment", paymentverify.New(logger, s.Payment).ServeHTTP)
				r.Get("/subscription-status", subscriptionstatus.New(logger, s.Subscription).ServeHTTP)
				r.Post("/cancel-subscription", subscriptioncancel.New(logger, s.Subscription).ServeHTTP)
				r.Get("/payment-history", paymentlist.New(logger, s.Subscription).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
