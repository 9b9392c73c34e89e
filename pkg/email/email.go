// Package email implements the attestation front-end for the email/DKIM
// circuit: deciding whether a claimed (domain, DKIM signature, auth
// results) triple is eligible for a proof, and extracting the domain from
// a raw From header as a convenience for callers that start from a .eml
// file rather than already-parsed fields.
package email

import (
	"fmt"
	"strings"
)

// VerifyAuthResults refuses a proof unless authResults contains "dkim=pass"
// (case-insensitive). This is the only admission gate this front-end
// applies; it does not itself verify the DKIM RSA signature.
func VerifyAuthResults(authResults string) error {
	if !strings.Contains(strings.ToLower(authResults), "dkim=pass") {
		return fmt.Errorf("email: auth-results %q does not contain dkim=pass", authResults)
	}
	return nil
}

// BindingData selects the bytes that get hashed into the circuit's
// dkim_hash witness: the DKIM signature string, or — when that string is
// empty — the auth-results string itself, so a proof is still bound to
// some verifier-observed signal even without a raw DKIM-Signature header.
func BindingData(dkimSignature, authResults string) []byte {
	if dkimSignature == "" {
		return []byte(authResults)
	}
	return []byte(dkimSignature)
}

// ExtractDomain pulls the domain out of a From header value, handling both
// "john@example.com" and "John Doe <john@example.com>" forms.
func ExtractDomain(from string) (string, error) {
	addr := strings.TrimSpace(from)
	if idx := strings.IndexByte(addr, '<'); idx >= 0 {
		rest := addr[idx+1:]
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			return "", fmt.Errorf("email: malformed From header %q", from)
		}
		addr = rest[:end]
	}

	at := strings.IndexByte(addr, '@')
	if at < 0 || at == len(addr)-1 {
		return "", fmt.Errorf("email: no domain in address %q", addr)
	}
	return strings.ToLower(strings.TrimSpace(addr[at+1:])), nil
}

// ExtractDKIMDomain pulls the d= parameter out of a raw DKIM-Signature
// header value (e.g. "v=1; a=rsa-sha256; d=google.com; s=selector; b=...").
func ExtractDKIMDomain(dkimSignature string) (string, bool) {
	for _, part := range strings.Split(dkimSignature, ";") {
		part = strings.TrimSpace(part)
		if domain, ok := strings.CutPrefix(part, "d="); ok {
			return strings.ToLower(strings.TrimSpace(domain)), true
		}
	}
	return "", false
}

// ValidateDKIMSignature is an off-path diagnostic: it checks that a raw
// DKIM-Signature header carries the tags a well-formed signature needs
// (v=, a=, d=, s=, b=). It never gates proof generation — only
// VerifyAuthResults does that — so callers may log its result without
// changing whether a witness gets built.
func ValidateDKIMSignature(dkimSignature string) error {
	required := []string{"v=", "a=", "d=", "s=", "b="}
	for _, tag := range required {
		found := false
		for _, part := range strings.Split(dkimSignature, ";") {
			if strings.HasPrefix(strings.TrimSpace(part), tag) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("email: DKIM signature missing %q tag", tag)
		}
	}
	return nil
}
