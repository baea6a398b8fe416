package keybinding

import "github.com/phosphor-art/phosphor/toml"

// CurrentVersion is the schema version written by Save.
const CurrentVersion = 1

// BindingDTO is a Binding's on-disk shape. Repeat is a *bool rather than
// bool so Load can tell "file omitted repeat" (nil) from "file set
// repeat=false" (non-nil, false), which Merge needs to decide whether to
// inherit the matching default's Repeat.
type BindingDTO struct {
	Enabled  bool   `toml:"enabled"`
	Chord    string `toml:"chord"`
	Context  string `toml:"context,omitempty"`
	Platform string `toml:"platform,omitempty"`
	Repeat   *bool  `toml:"repeat,omitempty"`
}

// ActionDTO is an Action's on-disk shape. Title/Category/Description are
// typically left empty in a user override file so Merge doesn't
// overwrite the default's labeling.
type ActionDTO struct {
	ID          string       `toml:"id"`
	Title       string       `toml:"title,omitempty"`
	Category    string       `toml:"category,omitempty"`
	Description string       `toml:"description,omitempty"`
	Bindings    []BindingDTO `toml:"bindings,omitempty"`
}

// File is the full on-disk override document: a schema version plus the
// action list to merge onto the built-in defaults.
type File struct {
	Version int         `toml:"version"`
	Actions []ActionDTO `toml:"actions,omitempty"`
}

func bindingToDTO(b Binding) BindingDTO {
	dto := BindingDTO{
		Enabled:  b.Enabled,
		Chord:    b.Chord,
		Context:  b.Context.String(),
		Platform: b.Platform.String(),
	}
	if b.repeatSet {
		v := b.Repeat
		dto.Repeat = &v
	}
	return dto
}

func dtoToBinding(d BindingDTO) Binding {
	b := Binding{
		Enabled:  d.Enabled,
		Chord:    d.Chord,
		Context:  contextFromString(d.Context),
		Platform: platformFromString(d.Platform),
	}
	if d.Repeat != nil {
		b.Repeat = *d.Repeat
		b.repeatSet = true
	}
	return b
}

func actionToDTO(a Action) ActionDTO {
	dto := ActionDTO{ID: a.ID, Title: a.Title, Category: a.Category, Description: a.Description}
	dto.Bindings = make([]BindingDTO, len(a.Bindings))
	for i, b := range a.Bindings {
		dto.Bindings[i] = bindingToDTO(b)
	}
	return dto
}

func dtoToAction(d ActionDTO) Action {
	a := Action{ID: d.ID, Title: d.Title, Category: d.Category, Description: d.Description}
	a.Bindings = make([]Binding, len(d.Bindings))
	for i, b := range d.Bindings {
		a.Bindings[i] = dtoToBinding(b)
	}
	return a
}

// Save serializes actions (typically a Registry's current, already
// merged action list) as an override file.
func Save(actions []Action) ([]byte, error) {
	f := File{Version: CurrentVersion}
	f.Actions = make([]ActionDTO, len(actions))
	for i, a := range actions {
		f.Actions[i] = actionToDTO(a)
	}
	return toml.Marshal(f)
}

// Load parses an override file's actions without merging them onto any
// default set; callers pass the result as Merge's overrides argument.
func Load(data []byte) ([]Action, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	out := make([]Action, len(f.Actions))
	for i, d := range f.Actions {
		out[i] = dtoToAction(d)
	}
	return out, nil
}
