package toolrt

// ParamType names the five user-parameter kinds a tool program's
// settings.params table can declare.
type ParamType string

const (
	ParamBool   ParamType = "bool"
	ParamButton ParamType = "button"
	ParamInt    ParamType = "int"
	ParamFloat  ParamType = "float"
	ParamEnum   ParamType = "enum"
)

// ParamSpec is one declared entry of settings.params, in declaration
// order (order is also carried explicitly since a Lua table's own
// iteration order isn't stable).
type ParamSpec struct {
	Key      string
	Type     ParamType
	Default  any // bool, float64, string depending on Type
	Label    string
	Order    int
	SameLine bool
	Min, Max, Step float64 // Int/Float only
	Items    []string      // Enum only
}

// paramValues holds the host-owned current value for every declared
// parameter, keyed by ParamSpec.Key, preserved across a recompile when
// the parameter's type is unchanged.
type paramValues map[string]any

// reconcile builds the value set for a freshly compiled program's
// params, carrying over old values whose key exists in specs with the
// same type and seeding everything else from spec.Default.
func (old paramValues) reconcile(specs []ParamSpec) paramValues {
	next := make(paramValues, len(specs))
	for _, spec := range specs {
		if v, ok := old[spec.Key]; ok && sameParamValueType(spec.Type, v) {
			next[spec.Key] = v
			continue
		}
		next[spec.Key] = spec.Default
	}
	return next
}

func sameParamValueType(t ParamType, v any) bool {
	switch t {
	case ParamBool, ParamButton:
		_, ok := v.(bool)
		return ok
	case ParamInt, ParamFloat:
		_, ok := v.(float64)
		return ok
	case ParamEnum:
		_, ok := v.(string)
		return ok
	default:
		return false
	}
}

// FireParamButton marks a button parameter pressed for exactly the next
// frame's ctx.params exposure; Runtime clears it immediately after.
func (rt *Runtime) FireParamButton(key string) {
	if spec, ok := rt.paramSpec(key); ok && spec.Type == ParamButton {
		rt.pendingButtons[key] = true
	}
}

func (rt *Runtime) paramSpec(key string) (ParamSpec, bool) {
	for _, s := range rt.settings.Params {
		if s.Key == key {
			return s, true
		}
	}
	return ParamSpec{}, false
}
