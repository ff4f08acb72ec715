// Package redis opens the go-redis client that backs the session store.
//
// Connect reads a Config (REDIS_URL plus pool, retry and timeout settings)
// and pings the server, retrying with a growing delay so the service can
// start alongside its Redis container. Healthcheck feeds the readiness
// endpoint and Shutdown closes the client when the server stops.
//
//	client, err := redis.Connect(ctx, cfg.Redis)
//	if err != nil {
//		return err // wraps redis.ErrUnreachable
//	}
//	defer client.Close()
//
//	store := session.NewRedisStore(client)
package redis
