package oauth

// GrantKind enumera las estrategias conocidas. Agregar una requiere tocar
// ParseGrantKind y el switch de Factory.Handler.
type GrantKind int

const (
	GrantImplicit GrantKind = iota + 1
	GrantAuthorizationCode
	GrantPassword
	GrantRefreshToken
)

// Valores de response_type / grant_type.
const (
	GrantTypeToken             = "token"
	GrantTypeCode              = "code"
	GrantTypeAuthorizationCode = "authorization_code"
	GrantTypePassword          = "password"
	GrantTypeRefreshToken      = "refresh_token"
)

// ParseGrantKind mapea response_type / grant_type. Case-sensitive.
func ParseGrantKind(s string) (GrantKind, bool) {
	switch s {
	case GrantTypeToken:
		return GrantImplicit, true
	case GrantTypeCode, GrantTypeAuthorizationCode:
		return GrantAuthorizationCode, true
	case GrantTypePassword:
		return GrantPassword, true
	case GrantTypeRefreshToken:
		return GrantRefreshToken, true
	}
	return 0, false
}

func (k GrantKind) String() string {
	switch k {
	case GrantImplicit:
		return "implicit"
	case GrantAuthorizationCode:
		return "authorization_code"
	case GrantPassword:
		return "password"
	case GrantRefreshToken:
		return "refresh_token"
	}
	return "unknown"
}
