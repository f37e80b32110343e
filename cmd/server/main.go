// Command server runs the identity & entitlement token service.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	authgin "github.com/open-rails/entkit/adapters/gin"
	"github.com/open-rails/entkit/adapters/ginutil"
	"github.com/open-rails/entkit/config"
	core "github.com/open-rails/entkit/core"
	"github.com/open-rails/entkit/entitlements"
	"github.com/open-rails/entkit/identity"
	jwtkit "github.com/open-rails/entkit/jwt"
	oidckit "github.com/open-rails/entkit/oidc"
	memorylimiter "github.com/open-rails/entkit/ratelimit/memory"
	redislimiter "github.com/open-rails/entkit/ratelimit/redis"
	"github.com/open-rails/entkit/session"
	memorystore "github.com/open-rails/entkit/storage/memory"
	pgstore "github.com/open-rails/entkit/storage/postgres"
)

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	ctx := context.Background()

	var users core.UserStore
	var ents entitlements.Store
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("connect postgres")
		}
		defer pool.Close()
		users = identity.NewStore(pool)
		ents = pgstore.NewEntitlementStore(pool)
	} else {
		log.Warn("DATABASE_URL not set; using in-memory stores")
		users = memorystore.NewUserStore()
		ents = memorystore.NewEntitlementStore()
	}

	keys := jwtkit.NewKeyProvider(jwtkit.KeyConfig{
		PrivateKeyPEM: cfg.EntJWTPrivateKeyPEM,
		KeyID:         cfg.EntJWTKeyID,
	})
	if cfg.EntJWTPrivateKeyPEM == "" {
		log.Warn("ENT_JWT_PRIVATE_KEY_PEM not set; entitlement tokens will use an ephemeral key")
	}

	keySet, err := oidckit.NewCachedRemoteKeySet(ctx, oidckit.GoogleJWKSURL)
	if err != nil {
		log.WithError(err).Fatal("register identity provider key set")
	}
	verifier := oidckit.NewAssertionVerifier(oidckit.GoogleIssuer, cfg.AllowedGoogleClientIDs, keySet)

	var exchanger core.CodeExchanger
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		rp, err := oidckit.NewRelyingParty(ctx, oidckit.GoogleIssuer, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)
		if err != nil {
			log.WithError(err).Warn("oidc discovery failed; code exchange disabled")
		} else {
			exchanger = rp
		}
	}

	svc := core.NewService(core.ServiceConfig{
		Log:       log,
		Verifier:  verifier,
		Exchanger: exchanger,
		Users:     users,
		Ents:      entitlements.NewService(ents),
		Sessions:  session.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer),
		EntTokens: entitlements.NewTokenIssuer(keys, cfg.JWTIssuer),
	})

	var rl ginutil.RateLimiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		rl = redislimiter.New(rdb, map[string]redislimiter.Limit{
			"auth_exchange": {Limit: 20, Window: time.Minute},
			"default":       {Limit: 120, Window: time.Minute},
		})
	} else {
		rl = memorylimiter.New(memorylimiter.DefaultLimits())
	}

	r := gin.New()
	r.Use(gin.Recovery())
	authgin.Routes(r, svc, session.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer), rl)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.WithField("addr", addr).Info("identity-entitlements-api listening")
	if err := r.Run(addr); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
