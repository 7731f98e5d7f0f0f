package oauth

import (
	"slices"

	"github.com/dropDatabas3/authcore/internal/validation"
)

// EffectiveScope calcula los scopes a codificar en el token.
//
// Sin scope pedido se otorgan todos los permitidos del cliente. Con scope
// pedido, la intersección en el orden pedido y sin duplicados; los scopes
// no permitidos se descartan. Si no queda ninguno, InvalidScope.
func EffectiveScope(requested string, allowed []string) ([]string, error) {
	want := validation.SplitScope(requested)
	if len(want) == 0 {
		return slices.Clone(allowed), nil
	}
	return narrow(want, allowed)
}

func narrow(want, allowed []string) ([]string, error) {
	out := make([]string, 0, len(want))
	for _, s := range want {
		if slices.Contains(allowed, s) && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, InvalidScope()
	}
	return out, nil
}
