package metadata

import "github.com/beevik/etree"

// Namespace URIs resolved during traversal. Matching is done on the resolved
// URI plus local name, so documents may bind any prefix (or the default
// namespace) to these.
const (
	nsMetadata  = "urn:oasis:names:tc:SAML:2.0:metadata"
	nsAssertion = "urn:oasis:names:tc:SAML:2.0:assertion"
	nsSignature = "http://www.w3.org/2000/09/xmldsig#"
)

// findAll walks el depth-first and collects every element, el included, whose
// namespace URI and local name match. Results are in document order.
func findAll(el *etree.Element, ns, local string) []*etree.Element {
	var out []*etree.Element
	if el.Tag == local && el.NamespaceURI() == ns {
		out = append(out, el)
	}
	for _, child := range el.ChildElements() {
		out = append(out, findAll(child, ns, local)...)
	}
	return out
}

// childElements returns the direct children of el matching namespace URI and
// local name, in document order.
func childElements(el *etree.Element, ns, local string) []*etree.Element {
	var out []*etree.Element
	for _, child := range el.ChildElements() {
		if child.Tag == local && child.NamespaceURI() == ns {
			out = append(out, child)
		}
	}
	return out
}

// attrValue looks up an attribute by local name, ignoring any namespace
// prefix it may carry.
func attrValue(el *etree.Element, name string) (string, bool) {
	for _, a := range el.Attr {
		if a.Key == name {
			return a.Value, true
		}
	}
	return "", false
}

// anyAttrEquals reports whether any attribute of el carries the given value.
// Endpoint selection matches binding URIs this way on purpose: the original
// implementation compared the target URI against every attribute of the
// element, not just Binding, and that observable behavior is kept.
func anyAttrEquals(el *etree.Element, value string) bool {
	for _, a := range el.Attr {
		if a.Value == value {
			return true
		}
	}
	return false
}
