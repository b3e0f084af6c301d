// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// CoinPress API. Routes are grouped into public, authenticated and admin
// groups with appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"coinpress/internal/cache"
	"coinpress/internal/handlers"
	"coinpress/internal/middleware"
	"coinpress/internal/session"
)

// Deps holds everything the router wires together.
type Deps struct {
	Sessions   *session.Manager
	Users      middleware.UserFinder
	Cache      *cache.Responses // nil disables response caching
	Limiter    *middleware.RateLimiter
	CronSecret string

	Auth       *handlers.Auth
	UserAdmin  *handlers.Users
	Categories *handlers.Categories
	Posts      *handlers.Posts
	Comments   *handlers.Comments
	Topics     *handlers.Topics
	Generation *handlers.Generation
	SEO        *handlers.SEO
	Uploads    *handlers.Uploads
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadPrincipal(d.Sessions, d.Users))

	limit := func(next http.Handler) http.Handler { return next }
	if d.Limiter != nil {
		limit = d.Limiter.Middleware
	}

	r.Get("/health", handlers.Health)
	r.Get("/robots.txt", d.SEO.Robots)
	r.With(d.Cache.Middleware(staticKey(cache.SitemapKey))).Get("/sitemap.xml", d.SEO.Sitemap)

	// Cron trigger, reachable with and without the /api prefix.
	cron := func(r chi.Router) {
		r.Use(middleware.CronSecret(d.CronSecret))
		r.Use(middleware.NoStore)
		r.Get("/daily-generate", d.Generation.RunDue)
		r.Post("/daily-generate", d.Generation.RunDue)
	}
	r.Route("/cron", cron)

	r.Route("/api", func(r chi.Router) {
		r.Route("/cron", cron)

		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.With(limit).Post("/register", d.Auth.Register)
			r.With(limit).Post("/login", d.Auth.Login)
			r.Post("/logout", d.Auth.Logout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/me", d.Auth.Me)
				r.Put("/profile", d.Auth.UpdateProfile)
			})

			r.Route("/2fa", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/setup", d.Auth.TwoFASetup)
				r.Post("/enable", d.Auth.TwoFAEnable)
				r.Post("/disable", d.Auth.TwoFADisable)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireAdmin, middleware.NoStore)
			r.Get("/", d.UserAdmin.List)
			r.Put("/{id}/admin", d.UserAdmin.SetAdmin)
			r.Delete("/{id}", d.UserAdmin.Delete)
		})

		r.Route("/categories", func(r chi.Router) {
			r.With(d.Cache.Middleware(staticKey(cache.CategoriesKey))).Get("/", d.Categories.List)
			r.Get("/{slug}", d.Categories.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", d.Categories.Create)
				r.Put("/{id}", d.Categories.Update)
				r.Delete("/{id}", d.Categories.Delete)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", d.Posts.List)
			r.With(d.Cache.Middleware(postKey)).Get("/{slug}", d.Posts.Get)
			r.Get("/{slug}/related", d.Posts.Related)
			r.Get("/{slug}/comments", d.Comments.ListForPost)
			r.With(limit).Post("/{slug}/comments", d.Comments.Create)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", d.Posts.Create)
				r.Put("/{id}", d.Posts.Update)
				r.Delete("/{id}", d.Posts.Delete)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Use(middleware.RequireAdmin, middleware.NoStore)
			r.Get("/", d.Comments.List)
			r.Put("/{id}/approve", d.Comments.Approve)
			r.Delete("/{id}", d.Comments.Delete)
		})

		r.Route("/topics", func(r chi.Router) {
			r.With(limit).Post("/", d.Topics.Submit)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin, middleware.NoStore)
				r.Get("/", d.Topics.List)
				r.Put("/{id}/status", d.Topics.SetStatus)
				r.Delete("/{id}", d.Topics.Delete)
			})
		})

		r.Route("/generation/schedule", func(r chi.Router) {
			r.Use(middleware.RequireAdmin, middleware.NoStore)
			r.Post("/", d.Generation.Schedule)
			r.Get("/", d.Generation.ListSchedules)
			r.Delete("/{id}", d.Generation.Cancel)
		})

		r.Get("/seo/posts/{slug}", d.SEO.PostMeta)

		r.With(middleware.RequireAdmin).Post("/uploads/cover", d.Uploads.Cover)
	})

	return r
}

func staticKey(key string) func(*http.Request) string {
	return func(*http.Request) string { return key }
}

func postKey(r *http.Request) string {
	return cache.PostKey(chi.URLParam(r, "slug"))
}
