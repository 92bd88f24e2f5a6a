// Package metadata extracts identity-federation configuration from SAML 2.0
// metadata documents: the entity ID, NameID format, single sign-on and
// logout endpoints, signing and encryption certificates, and the claim
// schema the identity provider advertises.
//
// The package is read-only. It does not validate schemas, signatures, or
// certificate trust; the caller stays responsible for fetching a trusted
// document (see Fetch for transport with a backup store).
package metadata

import (
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	xrv "github.com/mattermost/xml-roundtrip-validator"
	errorWrapper "github.com/pkg/errors"
)

// Key descriptor use values, per the SAML 2.0 metadata schema. A key
// descriptor without a use attribute is valid for both.
const (
	useSigning    = "signing"
	useEncryption = "encryption"
)

// Reader extracts configuration from a parsed SAML metadata document. The
// document is parsed once at construction and never mutated afterwards, so a
// Reader is safe for concurrent use from multiple goroutines.
type Reader struct {
	doc *etree.Document
	cfg Config
}

// New parses a SAML metadata document and returns a Reader over it. Empty or
// whitespace-only input fails with ErrInvalidInput before any parsing;
// malformed XML fails with the wrapped parse error regardless of
// Config.ThrowOnError.
func New(document string, cfg ...Config) (*Reader, error) {
	if strings.TrimSpace(document) == "" {
		return nil, ErrInvalidInput
	}
	var c Config
	if len(cfg) > 0 {
		c = cfg[0]
	}
	c = c.withDefaults()

	if err := xrv.Validate(strings.NewReader(document)); err != nil {
		return nil, errorWrapper.Wrap(err, "failed in validating metadata document")
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromString(document); err != nil {
		return nil, errorWrapper.Wrap(err, "failed in parsing metadata document")
	}
	if doc.Root() == nil {
		return nil, errorWrapper.New("metadata document has no root element")
	}
	return &Reader{doc: doc, cfg: c}, nil
}

// softString applies the fail-soft contract shared by every derived string
// property: extraction errors surface only when ThrowOnError is configured,
// otherwise the property reports the absent value.
func (r *Reader) softString(v string, err error) (string, error) {
	if err != nil {
		if r.cfg.ThrowOnError {
			return "", err
		}
		return "", nil
	}
	return v, nil
}

// softList is the fail-soft wrapper for list-valued properties.
func (r *Reader) softList(v []string, err error) ([]string, error) {
	if err != nil {
		if r.cfg.ThrowOnError {
			return nil, err
		}
		return nil, nil
	}
	return v, nil
}

// EntityID returns the entityID attribute of the entity descriptor.
func (r *Reader) EntityID() (string, error) {
	return r.softString(r.entityID())
}

func (r *Reader) entityID() (string, error) {
	descriptors := findAll(r.doc.Root(), nsMetadata, "EntityDescriptor")
	if len(descriptors) == 0 {
		return "", notFound("EntityDescriptor")
	}
	// First match wins when the document is malformed enough to carry more
	// than one.
	v, ok := attrValue(descriptors[0], "entityID")
	if !ok {
		return "", notFound("entityID attribute")
	}
	return v, nil
}

// IdentifierFormat returns the first NameIDFormat advertised by the identity
// provider.
func (r *Reader) IdentifierFormat() (string, error) {
	return r.softString(r.identifierFormat())
}

func (r *Reader) identifierFormat() (string, error) {
	idp, err := r.idpDescriptor()
	if err != nil {
		return "", err
	}
	formats := childElements(idp, nsMetadata, "NameIDFormat")
	if len(formats) == 0 {
		return "", notFound("NameIDFormat")
	}
	return formats[0].Text(), nil
}

// IdentityProviderURL resolves the single sign-on endpoint matching the
// configured AuthnRequestBinding, falling back to the lowest-index endpoint
// when no binding matches.
func (r *Reader) IdentityProviderURL() (string, error) {
	return r.softString(r.serviceLocation("SingleSignOnService"))
}

// LogoutURL resolves the single logout endpoint with the same selection
// rules as IdentityProviderURL.
func (r *Reader) LogoutURL() (string, error) {
	return r.softString(r.serviceLocation("SingleLogoutService"))
}

// serviceLocation implements the shared endpoint selection: collect the
// named service elements under the identity-provider descriptor, sort them
// ascending by index (endpoints without one sort as index 0; the sort is
// stable so ties keep document order), prefer the first whose attributes
// carry the configured binding URI, and otherwise fall back to the first of
// the sorted list. The selected endpoint must carry a Location.
func (r *Reader) serviceLocation(element string) (string, error) {
	idp, err := r.idpDescriptor()
	if err != nil {
		return "", err
	}
	services := childElements(idp, nsMetadata, element)
	if len(services) == 0 {
		return "", notFound(element)
	}
	sort.SliceStable(services, func(i, j int) bool {
		return serviceIndex(services[i]) < serviceIndex(services[j])
	})

	binding := bindingURIPrefix + r.cfg.AuthnRequestBinding
	selected := services[0]
	for _, svc := range services {
		if anyAttrEquals(svc, binding) {
			selected = svc
			break
		}
	}
	location, ok := attrValue(selected, "Location")
	if !ok {
		return "", notFound(element + " Location attribute")
	}
	return location, nil
}

// serviceIndex reads the ordering hint of a service endpoint. Endpoints
// without an index, or with one that does not parse as a number, sort as 0.
func serviceIndex(el *etree.Element) int {
	raw, ok := attrValue(el, "index")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

func (r *Reader) idpDescriptor() (*etree.Element, error) {
	descriptors := findAll(r.doc.Root(), nsMetadata, "IDPSSODescriptor")
	if len(descriptors) == 0 {
		return nil, notFound("IDPSSODescriptor")
	}
	return descriptors[0], nil
}

// SigningCerts returns every certificate blob usable for signature
// verification, in document order. Key descriptors without a use attribute
// count for both signing and encryption. With trimWhitespace set, every
// whitespace character anywhere in the blob is removed.
func (r *Reader) SigningCerts(trimWhitespace bool) ([]string, error) {
	return r.softList(r.certificates(useSigning, trimWhitespace))
}

// SigningCert returns the first signing certificate, with leading and
// trailing whitespace always stripped. Absent when the document carries
// none.
func (r *Reader) SigningCert(trimWhitespace bool) (string, error) {
	return r.softString(r.firstCertificate(useSigning, trimWhitespace))
}

// EncryptionCerts is the encryption-use counterpart of SigningCerts.
func (r *Reader) EncryptionCerts(trimWhitespace bool) ([]string, error) {
	return r.softList(r.certificates(useEncryption, trimWhitespace))
}

// EncryptionCert is the encryption-use counterpart of SigningCert.
func (r *Reader) EncryptionCert(trimWhitespace bool) (string, error) {
	return r.softString(r.firstCertificate(useEncryption, trimWhitespace))
}

func (r *Reader) certificates(use string, trimWhitespace bool) ([]string, error) {
	idp, err := r.idpDescriptor()
	if err != nil {
		return nil, err
	}
	var certs []string
	for _, kd := range childElements(idp, nsMetadata, "KeyDescriptor") {
		if u, ok := attrValue(kd, "use"); ok && u != use {
			continue
		}
		for _, keyInfo := range childElements(kd, nsSignature, "KeyInfo") {
			for _, x509Data := range childElements(keyInfo, nsSignature, "X509Data") {
				for _, cert := range childElements(x509Data, nsSignature, "X509Certificate") {
					text := cert.Text()
					if trimWhitespace {
						text = stripWhitespace(text)
					}
					certs = append(certs, text)
				}
			}
		}
	}
	return certs, nil
}

func (r *Reader) firstCertificate(use string, trimWhitespace bool) (string, error) {
	certs, err := r.certificates(use, trimWhitespace)
	if err != nil {
		return "", err
	}
	if len(certs) == 0 {
		return "", notFound(use + " certificate")
	}
	return strings.TrimSpace(certs[0]), nil
}

// stripWhitespace removes every space, tab, carriage return and newline,
// wherever it appears. Certificate blobs in metadata are routinely wrapped
// across lines.
func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
}
