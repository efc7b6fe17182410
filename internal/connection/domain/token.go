package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashToken derives the stored digest for a bearer session token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(token)))
	return hex.EncodeToString(sum[:])
}

// NormalizeShopDomain canonicalizes merchant-supplied shop domains.
func NormalizeShopDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimSuffix(domain, "/")
	return domain
}
