package oauth

// Factory elige el GrantHandler por response_type / grant_type. Los
// handlers se construyen una vez y son seguros para uso concurrente.
type Factory struct {
	implicit    *ImplicitGrantHandler
	code        *AuthorizationCodeGrantHandler
	password    *PasswordGrantHandler
	unsupported UnsupportedGrantHandler
	passwordOn  bool
}

func NewFactory(d Deps) *Factory {
	return &Factory{
		implicit:   NewImplicitGrantHandler(d),
		code:       NewAuthorizationCodeGrantHandler(d),
		password:   NewPasswordGrantHandler(d),
		passwordOn: d.Settings.PasswordGrantEnabled,
	}
}

// Handler devuelve UnsupportedGrant(grantType) para keys desconocidas.
func (f *Factory) Handler(grantType string) (GrantHandler, error) {
	kind, ok := ParseGrantKind(grantType)
	if !ok {
		return nil, UnsupportedGrant(grantType)
	}
	switch kind {
	case GrantImplicit:
		return f.implicit, nil
	case GrantAuthorizationCode:
		return f.code, nil
	case GrantPassword:
		if !f.passwordOn {
			return nil, UnsupportedGrant(grantType)
		}
		return f.password, nil
	case GrantRefreshToken:
		return f.unsupported, nil
	}
	return nil, UnsupportedGrant(grantType)
}
