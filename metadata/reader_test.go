package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleMetadata mixes the default namespace with prefixed assertion and
// xmldsig content, the way Azure AD and Shibboleth documents do. The SSO
// endpoints are deliberately out of index order.
const sampleMetadata = `<?xml version="1.0" encoding="UTF-8"?>
<EntityDescriptor xmlns="urn:oasis:names:tc:SAML:2.0:metadata" xmlns:saml="urn:oasis:names:tc:SAML:2.0:assertion" xmlns:ds="http://www.w3.org/2000/09/xmldsig#" entityID="https://idp.example.com">
  <IDPSSODescriptor protocolSupportEnumeration="urn:oasis:names:tc:SAML:2.0:protocol">
    <KeyDescriptor use="signing">
      <ds:KeyInfo><ds:X509Data><ds:X509Certificate>MIISIGNINGONE
AAAA
BBBB</ds:X509Certificate></ds:X509Data></ds:KeyInfo>
    </KeyDescriptor>
    <KeyDescriptor use="encryption">
      <ds:KeyInfo><ds:X509Data><ds:X509Certificate>  MIIENCRYPTION
CCCC  </ds:X509Certificate></ds:X509Data></ds:KeyInfo>
    </KeyDescriptor>
    <KeyDescriptor>
      <ds:KeyInfo><ds:X509Data><ds:X509Certificate>MIIBOTHUSE</ds:X509Certificate></ds:X509Data></ds:KeyInfo>
    </KeyDescriptor>
    <NameIDFormat>urn:oasis:names:tc:SAML:1.1:nameid-format:emailAddress</NameIDFormat>
    <SingleSignOnService Binding="urn:oasis:names:tc:SAML:2.0:bindings:HTTP-POST" Location="https://idp.example.com/sso/post-two" index="2"/>
    <SingleSignOnService Binding="urn:oasis:names:tc:SAML:2.0:bindings:HTTP-Redirect" Location="https://idp.example.com/sso/redirect" index="0"/>
    <SingleSignOnService Binding="urn:oasis:names:tc:SAML:2.0:bindings:HTTP-POST" Location="https://idp.example.com/sso/post-one" index="1"/>
    <SingleLogoutService Binding="urn:oasis:names:tc:SAML:2.0:bindings:HTTP-Redirect" Location="https://idp.example.com/slo/redirect"/>
    <SingleLogoutService Binding="urn:oasis:names:tc:SAML:2.0:bindings:HTTP-POST" Location="https://idp.example.com/slo/post"/>
    <saml:Attribute Name="urn:email" FriendlyName="Email Address"/>
    <saml:Attribute Name="urn:name" FriendlyName="Full Name"/>
    <saml:Attribute Name="urn:nofriendly"/>
  </IDPSSODescriptor>
</EntityDescriptor>`

const emptyIdPMetadata = `<?xml version="1.0" encoding="UTF-8"?>
<EntityDescriptor xmlns="urn:oasis:names:tc:SAML:2.0:metadata" entityID="https://idp.example.com">
  <IDPSSODescriptor protocolSupportEnumeration="urn:oasis:names:tc:SAML:2.0:protocol"/>
</EntityDescriptor>`

func newReader(t *testing.T, document string, cfg ...Config) *Reader {
	t.Helper()
	r, err := New(document, cfg...)
	require.NoError(t, err)
	return r
}

func TestNew_RejectsEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := New(input)
		require.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestNew_RejectsMalformedXML(t *testing.T) {
	_, err := New("<EntityDescriptor><unclosed></EntityDescriptor>")
	require.Error(t, err)

	// ThrowOnError has no bearing on parse failures.
	_, err = New("not xml at all", Config{ThrowOnError: false})
	require.Error(t, err)
}

func TestEntityID(t *testing.T) {
	r := newReader(t, sampleMetadata)
	entityID, err := r.EntityID()
	require.NoError(t, err)
	assert.Equal(t, "https://idp.example.com", entityID)
}

func TestEntityID_NoEntityDescriptor(t *testing.T) {
	const doc = `<Foo xmlns="urn:example:other"/>`

	r := newReader(t, doc)
	entityID, err := r.EntityID()
	require.NoError(t, err)
	assert.Empty(t, entityID)

	r = newReader(t, doc, Config{ThrowOnError: true})
	_, err = r.EntityID()
	require.Error(t, err)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestIdentifierFormat(t *testing.T) {
	r := newReader(t, sampleMetadata)
	format, err := r.IdentifierFormat()
	require.NoError(t, err)
	assert.Equal(t, "urn:oasis:names:tc:SAML:1.1:nameid-format:emailAddress", format)
}

func TestIdentityProviderURL_DefaultBinding(t *testing.T) {
	r := newReader(t, sampleMetadata)
	url, err := r.IdentityProviderURL()
	require.NoError(t, err)
	assert.Equal(t, "https://idp.example.com/sso/redirect", url)
}

func TestIdentityProviderURL_SortsByIndex(t *testing.T) {
	// Document order is index 2, 0, 1; the POST endpoint with the lowest
	// index must win.
	r := newReader(t, sampleMetadata, Config{AuthnRequestBinding: "HTTP-POST"})
	url, err := r.IdentityProviderURL()
	require.NoError(t, err)
	assert.Equal(t, "https://idp.example.com/sso/post-one", url)
}

func TestIdentityProviderURL_UnknownBindingFallsBack(t *testing.T) {
	// No SOAP endpoint exists; the first endpoint of the sorted list wins.
	r := newReader(t, sampleMetadata, Config{AuthnRequestBinding: "SOAP"})
	url, err := r.IdentityProviderURL()
	require.NoError(t, err)
	assert.Equal(t, "https://idp.example.com/sso/redirect", url)
}

func TestIdentityProviderURL_NoIndexKeepsDocumentOrder(t *testing.T) {
	const doc = `<?xml version="1.0" encoding="UTF-8"?>
<EntityDescriptor xmlns="urn:oasis:names:tc:SAML:2.0:metadata" entityID="https://idp.example.com">
  <IDPSSODescriptor>
    <SingleSignOnService Binding="urn:oasis:names:tc:SAML:2.0:bindings:HTTP-POST" Location="https://idp.example.com/first"/>
    <SingleSignOnService Binding="urn:oasis:names:tc:SAML:2.0:bindings:HTTP-POST" Location="https://idp.example.com/second" index="0"/>
  </IDPSSODescriptor>
</EntityDescriptor>`

	// Both endpoints sort as index 0; stability keeps document order.
	r := newReader(t, doc, Config{AuthnRequestBinding: "HTTP-POST"})
	url, err := r.IdentityProviderURL()
	require.NoError(t, err)
	assert.Equal(t, "https://idp.example.com/first", url)
}

func TestIdentityProviderURL_NoServices(t *testing.T) {
	r := newReader(t, emptyIdPMetadata)
	url, err := r.IdentityProviderURL()
	require.NoError(t, err)
	assert.Empty(t, url)

	r = newReader(t, emptyIdPMetadata, Config{ThrowOnError: true})
	_, err = r.IdentityProviderURL()
	require.Error(t, err)
}

func TestIdentityProviderURL_MissingLocation(t *testing.T) {
	const doc = `<?xml version="1.0" encoding="UTF-8"?>
<EntityDescriptor xmlns="urn:oasis:names:tc:SAML:2.0:metadata" entityID="https://idp.example.com">
  <IDPSSODescriptor>
    <SingleSignOnService Binding="urn:oasis:names:tc:SAML:2.0:bindings:HTTP-Redirect"/>
  </IDPSSODescriptor>
</EntityDescriptor>`

	r := newReader(t, doc)
	url, err := r.IdentityProviderURL()
	require.NoError(t, err)
	assert.Empty(t, url)

	r = newReader(t, doc, Config{ThrowOnError: true})
	_, err = r.IdentityProviderURL()
	require.Error(t, err)
}

func TestIdentityProviderURL_MatchesAnyAttribute(t *testing.T) {
	// The second endpoint carries the redirect binding URI in an attribute
	// other than Binding. Selection still matches it; the original library
	// compared the target URI against every attribute of the element.
	const doc = `<?xml version="1.0" encoding="UTF-8"?>
<EntityDescriptor xmlns="urn:oasis:names:tc:SAML:2.0:metadata" entityID="https://idp.example.com">
  <IDPSSODescriptor>
    <SingleSignOnService Binding="urn:oasis:names:tc:SAML:2.0:bindings:HTTP-POST" Location="https://idp.example.com/post" index="0"/>
    <SingleSignOnService Binding="urn:oasis:names:tc:SAML:2.0:bindings:HTTP-POST" ResponseLocation="urn:oasis:names:tc:SAML:2.0:bindings:HTTP-Redirect" Location="https://idp.example.com/odd" index="1"/>
  </IDPSSODescriptor>
</EntityDescriptor>`

	r := newReader(t, doc)
	url, err := r.IdentityProviderURL()
	require.NoError(t, err)
	assert.Equal(t, "https://idp.example.com/odd", url)
}

func TestLogoutURL(t *testing.T) {
	r := newReader(t, sampleMetadata)
	url, err := r.LogoutURL()
	require.NoError(t, err)
	assert.Equal(t, "https://idp.example.com/slo/redirect", url)

	r = newReader(t, sampleMetadata, Config{AuthnRequestBinding: "HTTP-POST"})
	url, err = r.LogoutURL()
	require.NoError(t, err)
	assert.Equal(t, "https://idp.example.com/slo/post", url)
}

func TestSigningCerts(t *testing.T) {
	r := newReader(t, sampleMetadata)

	certs, err := r.SigningCerts(true)
	require.NoError(t, err)
	// use="signing" plus the use-less descriptor, in document order, with
	// every whitespace character removed.
	assert.Equal(t, []string{"MIISIGNINGONEAAAABBBB", "MIIBOTHUSE"}, certs)

	certs, err = r.SigningCerts(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"MIISIGNINGONE\nAAAA\nBBBB", "MIIBOTHUSE"}, certs)
}

func TestEncryptionCerts(t *testing.T) {
	r := newReader(t, sampleMetadata)

	certs, err := r.EncryptionCerts(true)
	require.NoError(t, err)
	assert.Equal(t, []string{"MIIENCRYPTIONCCCC", "MIIBOTHUSE"}, certs)

	cert, err := r.EncryptionCert(true)
	require.NoError(t, err)
	assert.Equal(t, "MIIENCRYPTIONCCCC", cert)

	// Without interior trimming the edges are still stripped.
	cert, err = r.EncryptionCert(false)
	require.NoError(t, err)
	assert.Equal(t, "MIIENCRYPTION\nCCCC", cert)
}

func TestCerts_AbsentWhenNoneDeclared(t *testing.T) {
	r := newReader(t, emptyIdPMetadata)

	certs, err := r.SigningCerts(true)
	require.NoError(t, err)
	assert.Empty(t, certs)

	cert, err := r.SigningCert(true)
	require.NoError(t, err)
	assert.Empty(t, cert)

	r = newReader(t, emptyIdPMetadata, Config{ThrowOnError: true})
	_, err = r.SigningCert(true)
	require.Error(t, err)
}

func TestReader_Idempotent(t *testing.T) {
	r := newReader(t, sampleMetadata)

	first, err := r.IdentityProviderURL()
	require.NoError(t, err)
	second, err := r.IdentityProviderURL()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	schemaOne, err := r.ClaimSchema()
	require.NoError(t, err)
	schemaTwo, err := r.ClaimSchema()
	require.NoError(t, err)
	assert.Equal(t, schemaOne, schemaTwo)
}

func TestServiceProviderConfig(t *testing.T) {
	r := newReader(t, sampleMetadata)
	sp := r.ServiceProviderConfig()

	assert.Equal(t, "https://idp.example.com/sso/redirect", sp.EntryPoint)
	assert.Equal(t, "https://idp.example.com/slo/redirect", sp.LogoutURL)
	assert.Equal(t, "https://idp.example.com", sp.Issuer)
	assert.Equal(t, "urn:oasis:names:tc:SAML:1.1:nameid-format:emailAddress", sp.IdentifierFormat)
	assert.Equal(t, []string{"MIISIGNINGONEAAAABBBB", "MIIBOTHUSE"}, sp.SigningCerts)
}

func TestServiceProviderConfig_NeverFails(t *testing.T) {
	// Even a throwing reader yields a zero-valued config instead of errors.
	r := newReader(t, `<Foo xmlns="urn:example:other"/>`, Config{ThrowOnError: true})
	sp := r.ServiceProviderConfig()
	assert.Empty(t, sp.EntryPoint)
	assert.Empty(t, sp.Issuer)
	assert.Empty(t, sp.SigningCerts)
}
