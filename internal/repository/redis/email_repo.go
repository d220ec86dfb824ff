package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultEmailCodeTTL = 5 * time.Minute
	EmailCodePrefix     = "email:code"

	ScopeRegister = "register"
	ScopeReset    = "reset"

	PendingSuffix   = "pending"
	ConfirmedSuffix = "confirmed"
)

var (
	ErrCodeNotFound  = errors.New("email code not found")
	ErrCodeNotQueued = errors.New("email code not pending")
)

// promoteScript moves a pending code to the confirmed key once the mail has
// gone out, so a code is never usable before delivery succeeded.
var promoteScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if not val then
  return 0
end
redis.call("SET", KEYS[2], val, "PX", ARGV[1])
redis.call("DEL", KEYS[1])
return 1
`)

// consumeScript compares and deletes in one step, making codes single use.
var consumeScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if not val or val ~= ARGV[1] then
  return 0
end
redis.call("DEL", KEYS[1])
return 1
`)

type EmailRepository struct {
	RDB *redis.Client
	TTL time.Duration
}

func emailCodeKey(scope, stage, email string) string {
	return fmt.Sprintf("%s:%s:%s:%s", EmailCodePrefix, scope, stage, email)
}

func (e *EmailRepository) ttl() time.Duration {
	if e.TTL > 0 {
		return e.TTL
	}
	return DefaultEmailCodeTTL
}

func (e *EmailRepository) SavePending(ctx context.Context, scope, email, code string) error {
	return e.RDB.Set(ctx, emailCodeKey(scope, PendingSuffix, email), code, e.ttl()).Err()
}

func (e *EmailRepository) Confirm(ctx context.Context, scope, email string) error {
	keys := []string{emailCodeKey(scope, PendingSuffix, email), emailCodeKey(scope, ConfirmedSuffix, email)}
	ok, err := promoteScript.Run(ctx, e.RDB, keys, e.ttl().Milliseconds()).Int()
	if err != nil {
		return err
	}
	if ok != 1 {
		return ErrCodeNotQueued
	}
	return nil
}

// DeletePending is idempotent.
func (e *EmailRepository) DeletePending(ctx context.Context, scope, email string) error {
	return e.RDB.Del(ctx, emailCodeKey(scope, PendingSuffix, email)).Err()
}

// Consume returns ErrCodeNotFound when the confirmed code is absent or differs.
func (e *EmailRepository) Consume(ctx context.Context, scope, email, code string) error {
	ok, err := consumeScript.Run(ctx, e.RDB, []string{emailCodeKey(scope, ConfirmedSuffix, email)}, code).Int()
	if err != nil {
		return err
	}
	if ok != 1 {
		return ErrCodeNotFound
	}
	return nil
}
