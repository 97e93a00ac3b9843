package core

import "github.com/go-chi/chi/v5"

// MountRoutes registers the global middleware chain, the versioned API
// group, and the health endpoint.
//
// Middleware order matters:
//  1. Recoverer  - outermost, catches panics from everything below.
//  2. Timeout    - soft deadline before any work starts.
//  3. RequestID  - correlation ID for logging and responses.
//  4. Logger     - structured request logging.
//  5. CORS       - browser security headers.
func (s *Server) MountRoutes() {
	s.router.Use(s.Recoverer)
	s.router.Use(ContextTimeoutMiddleware(requestTimeout))
	s.router.Use(RequestIDMiddleware)
	s.router.Use(s.RequestLogger)
	s.router.Use(s.CORSMiddleware())

	s.router.Route("/v1", s.mountV1)
	s.router.Get("/health", s.HandleHealth)
}

// mountV1 applies the domain route registrars populated by the entry point.
func (s *Server) mountV1(r chi.Router) {
	for _, registrar := range s.V1RouteRegistrars {
		registrar(r)
	}
}
