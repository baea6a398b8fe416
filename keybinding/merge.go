package keybinding

// Merge layers a persisted override action list onto a built-in default
// action list, matched by action id: a known id has its bindings
// replaced wholesale by the file's bindings, but Title/Category/
// Description are only overwritten when the file supplies a non-empty
// value, and each file binding inherits its default counterpart's
// Repeat flag when the file didn't explicitly set one (matched by
// chord+context+platform). Unknown file action ids are appended
// verbatim. Defaults with no file counterpart pass through unchanged.
func Merge(defaults, overrides []Action) []Action {
	out := make([]Action, len(defaults))
	copy(out, defaults)

	index := make(map[string]int, len(out))
	for i, a := range out {
		index[a.ID] = i
	}

	for _, ov := range overrides {
		i, known := index[ov.ID]
		if !known {
			out = append(out, ov)
			continue
		}
		merged := out[i]
		if ov.Title != "" {
			merged.Title = ov.Title
		}
		if ov.Category != "" {
			merged.Category = ov.Category
		}
		if ov.Description != "" {
			merged.Description = ov.Description
		}
		merged.Bindings = mergeBindings(out[i].Bindings, ov.Bindings)
		out[i] = merged
	}
	return out
}

func mergeBindings(defaults, overrides []Binding) []Binding {
	merged := make([]Binding, len(overrides))
	for i, ob := range overrides {
		b := ob
		if !ob.repeatSet {
			if d, ok := findMatchingDefault(defaults, ob); ok {
				b.Repeat = d.Repeat
			}
		}
		merged[i] = b
	}
	return merged
}

func findMatchingDefault(defaults []Binding, b Binding) (Binding, bool) {
	for _, d := range defaults {
		if d.Chord == b.Chord && d.Context == b.Context && d.Platform == b.Platform {
			return d, true
		}
	}
	return Binding{}, false
}
