package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/config"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/notify"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/redis"
)

// InitBus picks the change-notification transport: Redis, then MQTT, then
// in-process for single-instance deployments.
func InitBus(ctx context.Context, cfg *config.Config) (notify.Bus, error) {
	if cfg.RedisAddress != "" {
		client, err := redis.New(ctx, cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		log.Info().Str("addr", cfg.RedisAddress).Msg("document notifications over Redis")
		return notify.NewRedis(client), nil
	}

	if cfg.MQTTBrokerURL != "" {
		bus, err := notify.NewMQTT(cfg.MQTTBrokerURL, cfg.AppID+"-"+uuid.NewString()[:8])
		if err != nil {
			return nil, err
		}
		log.Info().Str("broker", cfg.MQTTBrokerURL).Msg("document notifications over MQTT")
		return bus, nil
	}

	log.Warn().Msg("no Redis or MQTT configured, document notifications stay in-process")
	return notify.NewLocal(), nil
}
