package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"meme-index/internal/config"
	red "meme-index/internal/redis"
)

const rateLimitPrefix = "meme-index:rl:"

// Token bucket held in a hash. Returns {allowed, remaining, retry after ms};
// retry is -1 when the bucket never refills. Idle buckets expire once they
// would be full again.
const rlLua = `
local rate = tonumber(ARGV[2])
local burst = tonumber(ARGV[3])
local now = tonumber(ARGV[1])
local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = burst
local last = now
if state[1] then tokens = tonumber(state[1]) end
if state[2] then last = tonumber(state[2]) end
tokens = math.min(burst, tokens + math.max(0, now - last) * rate / 1000)
local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end
redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', now)
local wait = -1
if rate > 0 then
  redis.call('PEXPIRE', KEYS[1], math.ceil(burst * 1000 / rate) + 1000)
  if allowed == 0 then wait = math.ceil((1 - tokens) * 1000 / rate) end
end
return {allowed, math.floor(tokens), wait}`

// RateLimit throttles each client IP per route group (/api, /metrics, ...)
// with a Redis-held token bucket.
func RateLimit(cfg config.Config, rdb *redis.Client) fiber.Handler {
	limit := strconv.Itoa(cfg.RateLimitBurst)
	return func(c *fiber.Ctx) error {
		key := rateLimitPrefix + routeGroup(c.Path()) + ":" + c.IP()
		res := red.LuaEval(c.Context(), rdb, rlLua, []string{key},
			time.Now().UnixMilli(), cfg.RateLimitRPS, cfg.RateLimitBurst)
		vals, err := res.Int64Slice()
		if err != nil || len(vals) != 3 {
			return fiber.NewError(fiber.StatusInternalServerError, "rate limiter unavailable")
		}

		c.Set("X-RateLimit-Limit", limit)
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(vals[1], 10))
		if vals[0] == 0 {
			if vals[2] >= 0 {
				c.Set(fiber.HeaderRetryAfter, strconv.FormatInt((vals[2]+999)/1000, 10))
			}
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limited")
		}
		return c.Next()
	}
}

func routeGroup(path string) string {
	seg, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if seg == "" {
		return "root"
	}
	return seg
}
