package metadata

// DefaultAuthnRequestBinding is the binding short name used when Config does
// not set one.
const DefaultAuthnRequestBinding = "HTTP-Redirect"

// bindingURIPrefix concatenated with a binding short name yields the
// well-known SAML binding URI, e.g.
// urn:oasis:names:tc:SAML:2.0:bindings:HTTP-Redirect.
const bindingURIPrefix = "urn:oasis:names:tc:SAML:2.0:bindings:"

// Config controls endpoint selection and error behavior of a Reader. The
// zero value is usable; it selects the HTTP-Redirect binding and swallows
// extraction errors.
type Config struct {
	// AuthnRequestBinding is the binding short name ("HTTP-Redirect",
	// "HTTP-POST") the authentication request will be sent with. The matching
	// single sign-on endpoint is preferred; any other string falls back to
	// the first endpoint.
	AuthnRequestBinding string

	// ThrowOnError makes derived properties return their underlying errors
	// instead of reporting zero values. Named after the option of the
	// original library so ported configurations map one-to-one.
	ThrowOnError bool
}

func (c Config) withDefaults() Config {
	if c.AuthnRequestBinding == "" {
		c.AuthnRequestBinding = DefaultAuthnRequestBinding
	}
	return c
}

// ServiceProviderConfig carries the extracted values a SAML service provider
// needs to initiate sign-on against the described identity provider.
type ServiceProviderConfig struct {
	EntryPoint       string // single sign-on endpoint the AuthnRequest goes to
	LogoutURL        string
	Issuer           string // the entityID of the identity provider
	IdentifierFormat string
	SigningCerts     []string
}

// ServiceProviderConfig flattens the reader into a ready-to-use
// configuration. It never fails: properties that cannot be resolved stay
// zero, regardless of ThrowOnError.
func (r *Reader) ServiceProviderConfig() ServiceProviderConfig {
	soft := &Reader{doc: r.doc, cfg: r.cfg}
	soft.cfg.ThrowOnError = false

	entryPoint, _ := soft.IdentityProviderURL()
	logoutURL, _ := soft.LogoutURL()
	issuer, _ := soft.EntityID()
	format, _ := soft.IdentifierFormat()
	certs, _ := soft.SigningCerts(true)

	return ServiceProviderConfig{
		EntryPoint:       entryPoint,
		LogoutURL:        logoutURL,
		Issuer:           issuer,
		IdentifierFormat: format,
		SigningCerts:     certs,
	}
}
