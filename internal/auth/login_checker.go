package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/coocood/freecache"
	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	sessionCacheSize   = 10 * 1024 * 1024 // 10 MB
	sessionCacheExpire = 60               // seconds
)

// LoginChecker resolves a session token to the logged-in identity.
// A small in-process cache sits in front of redis so that bursts of
// requests with the same token do not hammer it.
type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
	cache       *freecache.Cache
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
		cache:       freecache.NewCache(sessionCacheSize),
	}
}

func (c *LoginChecker) GetSession(ctx context.Context, token string) (*Session, error) {
	if sessionBytes, err := c.cache.Get([]byte(token)); err == nil {
		var session Session
		if err := json.Unmarshal(sessionBytes, &session); err == nil {
			if time.Since(session.CreatedAt) > c.ttl {
				return nil, ErrNotLoggedIn
			}
			return &session, nil
		}
		log.Errorf("login checker, unmarshal cached session: %s", err)
	}

	sessionKey := sessionKeyPrefix + token
	cmd := c.redisClient.Get(ctx, sessionKey)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotLoggedIn
		}
		return nil, err
	}

	var session Session
	if err := json.Unmarshal([]byte(cmd.Val()), &session); err != nil {
		return nil, err
	}

	if time.Since(session.CreatedAt) > c.ttl {
		return nil, ErrNotLoggedIn
	}

	if err := c.cache.Set([]byte(token), []byte(cmd.Val()), sessionCacheExpire); err != nil {
		log.Tracef("login checker, cache session: %s", err)
	}

	return &session, nil
}
