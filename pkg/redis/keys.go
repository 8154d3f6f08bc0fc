package redis

import "strings"

const keyNamespace = "edelguur"

// keyspace groups every key the backend writes under one namespace so a
// shared redis can be flushed per service.
type keyspace string

func (k keyspace) join(parts ...string) string {
	var b strings.Builder
	b.WriteString(string(k))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			b.WriteByte(':')
			b.WriteString(part)
		}
	}
	return b.String()
}

// RateLimitKey returns the counter key for a limiter scope.
func (c *Client) RateLimitKey(scope string) string {
	return keyspace(keyNamespace).join("rate_limit", scope)
}

// AccessSessionKey returns the key holding the refresh token of an access session.
func (c *Client) AccessSessionKey(accessID string) string {
	return keyspace(keyNamespace).join("session", "access", accessID)
}

// LockKey returns the key backing a named lease.
func (c *Client) LockKey(name string) string {
	return keyspace(keyNamespace).join("lock", name)
}
