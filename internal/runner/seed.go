package runner

import "github.com/frc4121/vvpipeline/internal/value"

// SeedInput is the virtual submission delivered to the seed component's
// inputs when Run is called: either a single value for a Primary input,
// or a named mapping for a Named input.
type SeedInput struct {
	primary value.Value
	named   map[string]value.Value
}

// SeedPrimary builds a SeedInput for a component declaring Primary
// inputs.
func SeedPrimary(v value.Value) SeedInput {
	return SeedInput{primary: v}
}

// SeedNamed builds a SeedInput for a component declaring Named inputs.
// values must cover every declared slot; Run reports MissingInput
// otherwise.
func SeedNamed(values map[string]value.Value) SeedInput {
	named := make(map[string]value.Value, len(values))
	for k, v := range values {
		named[k] = v
	}
	return SeedInput{named: named}
}

func (s SeedInput) isPrimary() bool { return s.named == nil }
