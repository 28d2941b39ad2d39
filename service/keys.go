package service

import "fmt"

// Cache key layout. Every entry is TTL-bearing and self-expires; nothing
// sweeps these keys for correctness.
//
//	heimdall:refresh:<subjectID>   current refresh token, TTL = refresh lifetime
//	heimdall:revoked:<accessJTI>   marker, TTL = remaining access lifetime
//	heimdall:ratelimit:<id>        attempt counter, TTL = window
const keyPrefix = "heimdall:"

func refreshKey(subjectID string) string {
	return fmt.Sprintf("%srefresh:%s", keyPrefix, subjectID)
}

func revokedKey(tokenID string) string {
	return fmt.Sprintf("%srevoked:%s", keyPrefix, tokenID)
}

func rateLimitKey(identifier string) string {
	return fmt.Sprintf("%sratelimit:%s", keyPrefix, identifier)
}
