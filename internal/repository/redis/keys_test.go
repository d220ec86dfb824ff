package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyLayout(t *testing.T) {
	assert.Equal(t, "login:user:token:7c9e", tokenKey("7c9e"))
	assert.Equal(t, "login:user:refresh:7c9e", refreshKey("7c9e"))
	assert.Equal(t, "email:code:register:pending:a@b.c", emailCodeKey(ScopeRegister, PendingSuffix, "a@b.c"))
	assert.Equal(t, "email:code:reset:confirmed:a@b.c", emailCodeKey(ScopeReset, ConfirmedSuffix, "a@b.c"))
	assert.Equal(t, "like:set:post:65a1", likeSetKey("65a1"))
	assert.Equal(t, "like:cnt:post:65a1", likeCntKey("65a1"))
	assert.Equal(t, "lock:like:post:65a1", lockKey("65a1"))
}

func TestEmailCodeTTLFallback(t *testing.T) {
	assert.Equal(t, DefaultEmailCodeTTL, (&EmailRepository{}).ttl())
	assert.Equal(t, 2*DefaultEmailCodeTTL, (&EmailRepository{TTL: 2 * DefaultEmailCodeTTL}).ttl())
}
