// Package verify implements the verification orchestrator: applying item
// rules, checking signatures and expiry, evaluating functionary
// thresholds, recursing into sublayouts, running inspections, driving the
// phases in order, and synthesizing the summary link.
package verify

import (
	"encoding/json"
	"fmt"

	"github.com/ossvet/chainverify/internal/clock"
	"github.com/ossvet/chainverify/internal/keys"
	"github.com/ossvet/chainverify/internal/layout"
	"github.com/ossvet/chainverify/internal/link"
	"github.com/ossvet/chainverify/internal/verrors"
)

// canonicalBytes produces the byte payload a signature is computed over.
// Layouts and links are both signed over their JSON-canonicalized body
// (signatures themselves excluded), matching the wire convention the rest
// of the pack's signing tools (sigstore, go-crypto) already assume a
// stable byte string rather than YAML's non-canonical encoding.
func canonicalBytes(v any) ([]byte, error) {
	return json.Marshal(v)
}

// layoutSignable is the layout body with its Signatures field zeroed, the
// shape that was actually signed.
type layoutSignable struct {
	Keys    map[string]layout.Key `json:"keys"`
	Steps   []layout.Step          `json:"steps"`
	Inspect []layout.Inspection     `json:"inspect"`
	Expires string                  `json:"expires"`
}

func layoutPayload(l *layout.Layout) ([]byte, error) {
	return canonicalBytes(layoutSignable{Keys: l.Keys, Steps: l.Steps, Inspect: l.Inspect, Expires: l.Expires})
}

// VerifyLayoutSignatures requires every key in ownerKeys to carry a valid
// signature on l. A single missing or invalid signature fails the whole
// layout: the caller supplies the full set of owners it trusts, and every
// one of them must have actually signed off.
func VerifyLayoutSignatures(l *layout.Layout, ownerKeys map[string]layout.Key) error {
	if len(ownerKeys) == 0 {
		return verrors.New(verrors.Signature, "layout", "no owner keys supplied to verify against")
	}

	payload, err := layoutPayload(l)
	if err != nil {
		return verrors.Wrap(verrors.IO, "layout", err)
	}

	bySig := make(map[string]layout.Signature, len(l.Signatures))
	for _, s := range l.Signatures {
		bySig[s.KeyID] = s
	}

	for keyID, rec := range ownerKeys {
		sig, ok := bySig[keyID]
		if !ok {
			return verrors.Newf(verrors.Signature, "layout", "missing signature from owner key %s", keyID)
		}
		v, err := keys.Load(rec)
		if err != nil {
			return verrors.Wrap(verrors.Signature, "layout", err)
		}
		if err := v.Verify(payload, []byte(sig.Sig)); err != nil {
			return verrors.Newf(verrors.Signature, "layout", "signature from owner key %s failed verification: %v", keyID, err)
		}
	}

	return nil
}

// VerifyLayoutExpiration fails with verrors.Expired once clk's current
// time passes the layout's declared expiry.
func VerifyLayoutExpiration(l *layout.Layout, clk clock.Clock) error {
	expiry, err := l.ExpiresAt()
	if err != nil {
		return verrors.Wrap(verrors.IO, "layout", fmt.Errorf("parse expires: %w", err))
	}
	if !clk.Now().Before(expiry) {
		return verrors.Newf(verrors.Expired, "layout", "layout expired at %s", expiry)
	}
	return nil
}

// linkPayload is the link body a functionary signs, with Signatures zeroed.
type linkSignable struct {
	Name       string         `json:"name"`
	Command    []string       `json:"command"`
	Materials  map[string]any `json:"materials"`
	Products   map[string]any `json:"products"`
	Byproducts map[string]any `json:"byproducts"`
	Kind       string         `json:"_type"`
}

func linkPayload(lk *link.Link) ([]byte, error) {
	return canonicalBytes(linkSignable{
		Name:       lk.Name,
		Command:    lk.Command,
		Materials:  toAnyMap(lk.Materials),
		Products:   toAnyMap(lk.Products),
		Byproducts: lk.Byproducts,
		Kind:       lk.Kind,
	})
}

func toAnyMap[V any](m map[string]V) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// VerifyAllStepsSignatures checks every loaded link in chain against the
// declared pubkey it was filed under, dropping (rather than failing the
// whole run on) any single functionary's link whose signature doesn't
// verify — unauthorized or corrupt links are excluded from threshold
// counting, not fatal by themselves.
func VerifyAllStepsSignatures(l *layout.Layout, chain link.ChainLinkDict) error {
	for _, step := range l.Steps {
		entries := chain[step.Name]
		for keyID, lk := range entries {
			rec, ok := l.Keys[keyID]
			if !ok {
				delete(entries, keyID)
				continue
			}
			if err := verifyLinkSignature(lk, keyID, rec); err != nil {
				delete(entries, keyID)
				continue
			}
		}
	}
	return nil
}

func verifyLinkSignature(lk *link.Link, keyID string, rec layout.Key) error {
	var sig *link.Signature
	for i := range lk.Signatures {
		if lk.Signatures[i].KeyID == keyID {
			sig = &lk.Signatures[i]
			break
		}
	}
	if sig == nil {
		return verrors.Newf(verrors.Signature, lk.Name, "no signature from keyid %s", keyID)
	}

	payload, err := linkPayload(lk)
	if err != nil {
		return verrors.Wrap(verrors.IO, lk.Name, err)
	}

	v, err := keys.Load(rec)
	if err != nil {
		return verrors.Wrap(verrors.Signature, lk.Name, err)
	}
	if err := v.Verify(payload, []byte(sig.Sig)); err != nil {
		return verrors.Newf(verrors.Signature, lk.Name, "signature from keyid %s failed verification: %v", keyID, err)
	}
	return nil
}
