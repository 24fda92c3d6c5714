// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package param

// Flags mirrors the original's ParamFlags bitflags (mod.rs): hidden,
// modulable, automatable.
type Flags uint16

const (
	FlagHidden Flags = 1 << iota
	FlagModulable
	FlagAutomatable
)

// FlagsDefault matches the original's Default impl: modulable and
// automatable, not hidden.
const FlagsDefault = FlagModulable | FlagAutomatable

// Has reports whether every bit in want is set in f.
func (f Flags) Has(want Flags) bool { return f&want == want }

// Metadata is a parameter's static description: its natural range,
// normalized default, curve, text converter, and flags.
type Metadata struct {
	Name    string
	Curve   Curve
	Default Normalized
	Flags   Flags
	Text    TextConverter
}

// DefaultMetadata returns a linear [0,1] parameter with the identity
// curve, matching ParamMetadata::CONST_DEFAULT.
func DefaultMetadata(name string) Metadata {
	return Metadata{
		Name:    name,
		Curve:   Linear{Min: 0, Max: 1},
		Default: NormalizedHalf,
		Flags:   FlagsDefault,
		Text:    DefaultTextConverter{Precision: 3},
	}
}

// Descriptor pairs a stable parameter index with its Metadata, the
// unit a schedule/host table indexes parameters by.
type Descriptor struct {
	Index int
	Metadata
}
