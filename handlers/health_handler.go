package handlers

import (
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"campusmatch/cache"
)

type HealthHandler struct {
	mongoClient *mongo.Client
	cache       *cache.RedisCache
}

func NewHealthHandler(mongoClient *mongo.Client, rc *cache.RedisCache) *HealthHandler {
	return &HealthHandler{mongoClient: mongoClient, cache: rc}
}

// Health reports liveness of the server and its two backing stores.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := map[string]string{"server": "ok", "mongo": "ok", "redis": "ok"}
	code := http.StatusOK

	if err := h.mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		status["mongo"] = "down"
		code = http.StatusServiceUnavailable
	}
	if err := h.cache.Ping(ctx); err != nil {
		status["redis"] = "down"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, status)
}
