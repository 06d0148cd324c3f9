package core

import (
	"fmt"
	"strings"
)

type AddressMode uint8

const (
	AddressModeClampToEdge AddressMode = iota
	AddressModeRepeat
)

type FilterMode uint8

const (
	FilterModeNearest FilterMode = iota
	FilterModeLinear
)

func (m AddressMode) String() string {
	if m == AddressModeRepeat {
		return "repeat"
	}
	return "clamp-to-edge"
}

func (m FilterMode) String() string {
	if m == FilterModeLinear {
		return "linear"
	}
	return "nearest"
}

func ParseAddressMode(s string) (AddressMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "repeat", "wrap":
		return AddressModeRepeat, nil
	case "clamp-to-edge", "clamp", "":
		return AddressModeClampToEdge, nil
	default:
		return 0, Configf("unknown address mode %q", s)
	}
}

func ParseFilterMode(s string) (FilterMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear":
		return FilterModeLinear, nil
	case "nearest", "":
		return FilterModeNearest, nil
	default:
		return 0, Configf("unknown filter mode %q", s)
	}
}

// SamplerSettings is the discrete sampler state picked by the user.
type SamplerSettings struct {
	AddressU AddressMode
	AddressV AddressMode
	Mag      FilterMode
	Min      FilterMode
}

// Combination returns the per-choice value indices in permutation order:
// U, V, mag, min.
func (s SamplerSettings) Combination() []int {
	return []int{int(s.AddressU), int(s.AddressV), int(s.Mag), int(s.Min)}
}

// SamplerSettingsFrom is the inverse of Combination.
func SamplerSettingsFrom(combination []int) SamplerSettings {
	var s SamplerSettings
	if len(combination) > 0 {
		s.AddressU = AddressMode(combination[0])
	}
	if len(combination) > 1 {
		s.AddressV = AddressMode(combination[1])
	}
	if len(combination) > 2 {
		s.Mag = FilterMode(combination[2])
	}
	if len(combination) > 3 {
		s.Min = FilterMode(combination[3])
	}
	return s
}

func (s SamplerSettings) Desc(label string) SamplerDesc {
	return SamplerDesc{
		Label:    label,
		AddressU: s.AddressU,
		AddressV: s.AddressV,
		Mag:      s.Mag,
		Min:      s.Min,
	}
}

func (s SamplerSettings) String() string {
	return fmt.Sprintf("u=%s v=%s mag=%s min=%s", s.AddressU, s.AddressV, s.Mag, s.Min)
}
