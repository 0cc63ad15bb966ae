package guardrail

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shaonidutta/converge-ai/domain"
	"github.com/shaonidutta/converge-ai/logger"
)

// RateLimiter enforces a token-bucket per user: N requests/minute plus
// M requests/hour, refilled to full on each window boundary. Grounded
// on original_source's RateLimiter, backed here by Redis hashes instead
// of the original's process-local dict so limits hold across replicas.
//
// Redis unavailability fails open (ALLOW): a marketplace chat losing
// its rate limiter for a few seconds is a smaller problem than it
// blocking every user because a cache node blipped.
type RateLimiter struct {
	rdb          *redis.Client
	maxPerMinute int
	maxPerHour   int
	burstSize    int
	logger       logger.Logger
}

func NewRateLimiter(rdb *redis.Client, maxPerMinute, maxPerHour, burstSize int, log logger.Logger) *RateLimiter {
	if maxPerMinute <= 0 {
		maxPerMinute = 20
	}
	if maxPerHour <= 0 {
		maxPerHour = 100
	}
	if burstSize <= 0 {
		burstSize = 5
	}
	return &RateLimiter{
		rdb:          rdb,
		maxPerMinute: maxPerMinute,
		maxPerHour:   maxPerHour,
		burstSize:    burstSize,
		logger:       logger.Component(log, "rate_limiter"),
	}
}

func (r *RateLimiter) Name() string { return "rate_limiter" }

// checkAndConsumeScript performs refill-and-decrement atomically so two
// concurrent turns for the same user never read the same stale token
// count: the whole read-modify-write happens inside one Redis EVAL,
// with no window for a lost update between HGETALL and HSET.
//
// Returns {allowed(0/1), reason, refill_unix, minute_tokens, hour_tokens}.
var checkAndConsumeScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local max_minute = tonumber(ARGV[2])
local max_hour = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local vals = redis.call('HMGET', key, 'minute_tokens', 'minute_refill', 'hour_tokens', 'hour_refill')
local minute_tokens = tonumber(vals[1])
local minute_refill = tonumber(vals[2])
local hour_tokens = tonumber(vals[3])
local hour_refill = tonumber(vals[4])

if minute_tokens == nil then
  minute_tokens = max_minute
  minute_refill = now
end
if hour_tokens == nil then
  hour_tokens = max_hour
  hour_refill = now
end

if now - minute_refill >= 60 then
  minute_tokens = max_minute
  minute_refill = now
end
if now - hour_refill >= 3600 then
  hour_tokens = max_hour
  hour_refill = now
end

local allowed = 1
local reason = ''
local retry_at = 0

if minute_tokens <= 0 then
  allowed = 0
  reason = 'minute'
  retry_at = minute_refill
elseif hour_tokens <= 0 then
  allowed = 0
  reason = 'hour'
  retry_at = hour_refill
else
  minute_tokens = minute_tokens - 1
  hour_tokens = hour_tokens - 1
end

redis.call('HSET', key, 'minute_tokens', minute_tokens, 'minute_refill', minute_refill, 'hour_tokens', hour_tokens, 'hour_refill', hour_refill)
redis.call('EXPIRE', key, ttl)

return {allowed, reason, retry_at, minute_tokens, hour_tokens}
`)

func (r *RateLimiter) Check(ctx context.Context, _ string, gctx Context) domain.GuardrailResult {
	if gctx.UserID == "" {
		return domain.GuardrailResult{
			GuardrailName: r.Name(),
			Action:        domain.ActionAllow,
			Passed:        true,
			Severity:      SeverityLow,
			Message:       "No user_id provided",
		}
	}

	now := time.Now()
	res, err := checkAndConsumeScript.Run(ctx, r.rdb, []string{r.bucketKey(gctx.UserID)},
		now.Unix(), r.maxPerMinute, r.maxPerHour, int((2 * time.Hour).Seconds())).Result()
	if err != nil {
		r.logger.Warn("rate limiter unavailable, failing open", map[string]interface{}{"error": err.Error()})
		return domain.GuardrailResult{
			GuardrailName: r.Name(),
			Action:        domain.ActionAllow,
			Passed:        true,
			Severity:      SeverityLow,
			Message:       "Rate limiter unavailable, allowing request",
		}
	}

	fields, ok := res.([]interface{})
	if !ok || len(fields) != 5 {
		r.logger.Warn("rate limiter script returned unexpected shape, failing open", map[string]interface{}{"result": res})
		return domain.GuardrailResult{
			GuardrailName: r.Name(),
			Action:        domain.ActionAllow,
			Passed:        true,
			Severity:      SeverityLow,
			Message:       "Rate limiter unavailable, allowing request",
		}
	}

	allowed := toInt64(fields[0]) == 1
	reason, _ := fields[1].(string)
	retryAt := toInt64(fields[2])
	minuteTokens := toInt64(fields[3])
	hourTokens := toInt64(fields[4])

	if !allowed && reason == "minute" {
		retryAfter := int(time.Unix(retryAt, 0).Add(time.Minute).Sub(now).Seconds())
		return domain.GuardrailResult{
			GuardrailName:  r.Name(),
			Action:         domain.ActionBlock,
			Passed:         false,
			Severity:       SeverityMedium,
			Message:        "You're sending messages a bit too quickly. Please wait a moment and try again.",
			Details:        map[string]interface{}{"reason": "minute_limit_exceeded", "max_requests_per_minute": r.maxPerMinute},
			RetryAfterSecs: retryAfter,
		}
	}
	if !allowed && reason == "hour" {
		retryAfter := int(time.Unix(retryAt, 0).Add(time.Hour).Sub(now).Seconds())
		return domain.GuardrailResult{
			GuardrailName:  r.Name(),
			Action:         domain.ActionBlock,
			Passed:         false,
			Severity:       SeverityMedium,
			Message:        "You've reached the hourly message limit. Please try again later.",
			Details:        map[string]interface{}{"reason": "hour_limit_exceeded", "max_requests_per_hour": r.maxPerHour},
			RetryAfterSecs: retryAfter,
		}
	}

	return domain.GuardrailResult{
		GuardrailName: r.Name(),
		Action:        domain.ActionAllow,
		Passed:        true,
		Severity:      SeverityLow,
		Message:       "Rate limit check passed",
		Details: map[string]interface{}{
			"minute_tokens_remaining": minuteTokens,
			"hour_tokens_remaining":   hourTokens,
		},
	}
}

func (r *RateLimiter) bucketKey(userID string) string {
	return "guardrail:rate_limit:" + userID
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

var _ Guardrail = (*RateLimiter)(nil)
