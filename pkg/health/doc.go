// Package health serves the liveness and readiness probes of the oauthlink
// server.
//
// Liveness only proves the process answers. Readiness pings PostgreSQL (link
// and user storage) and Redis (sessions) concurrently under a shared timeout
// and returns 503 with a per-dependency report when either is down, since
// neither an OAuth callback nor a session lookup can succeed without them.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//		"postgres": db.Healthcheck(pool),
//		"redis":    redis.Healthcheck(client),
//	}, health.WithLogger(log)))
package health
