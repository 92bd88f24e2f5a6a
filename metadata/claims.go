package metadata

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/beevik/etree"
)

// Claim describes one identity attribute the provider may assert about a
// subject.
type Claim struct {
	Name        string // attribute identifier URI
	Description string // human-readable FriendlyName
	CamelCase   string // identifier-safe form of Description
}

// ClaimSchema maps every distinct attribute Name advertised under the
// identity-provider descriptor to its claim descriptor. A claim whose
// FriendlyName cannot be resolved is skipped rather than aborting the whole
// schema, unless ThrowOnError is configured, in which case the error
// propagates and no partial mapping is returned. When the identity-provider
// descriptor itself is missing the schema is empty, not absent.
func (r *Reader) ClaimSchema() (map[string]Claim, error) {
	idp, err := r.idpDescriptor()
	if err != nil {
		if r.cfg.ThrowOnError {
			return nil, err
		}
		return map[string]Claim{}, nil
	}

	attributes := findAll(idp, nsAssertion, "Attribute")
	schema := make(map[string]Claim, len(attributes))
	for _, el := range attributes {
		name, ok := attrValue(el, "Name")
		if !ok || name == "" {
			continue
		}
		if _, seen := schema[name]; seen {
			continue
		}
		friendly, ok := friendlyNameFor(attributes, name)
		if !ok {
			if r.cfg.ThrowOnError {
				return nil, notFound("FriendlyName for claim " + name)
			}
			continue
		}
		schema[name] = Claim{
			Name:        name,
			Description: friendly,
			CamelCase:   camelCase(friendly),
		}
	}
	return schema, nil
}

// friendlyNameFor returns the FriendlyName of the first attribute element in
// document order that carries the given Name and declares one.
func friendlyNameFor(els []*etree.Element, name string) (string, bool) {
	for _, el := range els {
		if n, ok := attrValue(el, "Name"); !ok || n != name {
			continue
		}
		if friendly, ok := attrValue(el, "FriendlyName"); ok {
			return friendly, true
		}
	}
	return "", false
}

// ClaimsToCamelCase rewrites the keys of an assertion attribute map to the
// camel-cased friendly names from the claim schema. Keys without a schema
// entry pass through unchanged.
func ClaimsToCamelCase(claims map[string]string, schema map[string]Claim) map[string]string {
	out := make(map[string]string, len(claims))
	for key, value := range claims {
		if claim, ok := schema[key]; ok && claim.CamelCase != "" {
			out[claim.CamelCase] = value
			continue
		}
		out[key] = value
	}
	return out
}

// camelCase normalizes a friendly name into an identifier-safe key: words are
// split on spaces, hyphens and underscores, the first word is lower-cased and
// every following word is capitalized ("Email Address" -> "emailAddress").
func camelCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '\t'
	})
	var b strings.Builder
	for i, word := range words {
		word = strings.ToLower(word)
		if i == 0 {
			b.WriteString(word)
			continue
		}
		first, size := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(first))
		b.WriteString(word[size:])
	}
	return b.String()
}
