package pe

import (
	"fmt"
	"strings"

	perr "github.com/veilmont/pedump/errors"
)

// MachineType identifies the target CPU architecture of the image.
type MachineType uint16

// String returns the symbolic name of the machine type, or a hex rendering
// for values that never passed through DecodeMachineType.
func (m MachineType) String() string {
	if name, ok := machineNames[m]; ok {
		return name
	}
	return fmt.Sprintf("MachineType(0x%04x)", uint16(m))
}

// DecodeMachineType maps a raw machine code onto the closed machine-type
// table. Any code outside the table is a hard decode error carrying the
// offending value: an unrecognized machine means corruption or an
// architecture the caller must not silently mishandle.
func DecodeMachineType(code uint16) (MachineType, error) {
	m := MachineType(code)
	if _, ok := machineNames[m]; !ok {
		return 0, perr.UnrecognizedMachineType(code)
	}
	return m, nil
}

// CoffFlag is a single COFF characteristics bit.
type CoffFlag uint16

func (f CoffFlag) String() string {
	if name, ok := coffFlagNames[f]; ok {
		return name
	}
	return fmt.Sprintf("CoffFlag(0x%04x)", uint16(f))
}

// CoffFlags is a set of COFF characteristics bits drawn from the closed flag
// vocabulary. A decoded set never contains unknown bits.
type CoffFlags uint16

// Has reports whether the set contains the given flag.
func (s CoffFlags) Has(f CoffFlag) bool {
	return uint16(s)&uint16(f) != 0
}

// List returns the flags present in the set, in the fixed bit-test order.
func (s CoffFlags) List() []CoffFlag {
	var out []CoffFlag
	for _, f := range coffFlagOrder {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// String renders the set as "Flag|Flag|...", or "(none)" when empty.
func (s CoffFlags) String() string {
	flags := s.List()
	if len(flags) == 0 {
		return "(none)"
	}
	names := make([]string, len(flags))
	for i, f := range flags {
		names[i] = f.String()
	}
	return strings.Join(names, "|")
}

// DecodeCoffCharacteristics accumulates the known single-bit masks present
// in bits into a flag set. Unknown bits are ignored, deliberately asymmetric
// with the strict single-value enum decoders: a future characteristics bit
// must not make old files undecodable.
func DecodeCoffCharacteristics(bits uint16) CoffFlags {
	var set CoffFlags
	for _, f := range coffFlagOrder {
		if bits&uint16(f) != 0 {
			set |= CoffFlags(f)
		}
	}
	return set
}

// Subsystem identifies the Windows subsystem required to run the image.
type Subsystem uint16

func (s Subsystem) String() string {
	if name, ok := subsystemNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Subsystem(%d)", uint16(s))
}

// DecodeSubsystem maps a raw subsystem code onto the closed subsystem table.
// Unknown codes fail with the numeric code attached for diagnostics.
func DecodeSubsystem(code uint16) (Subsystem, error) {
	s := Subsystem(code)
	if _, ok := subsystemNames[s]; !ok {
		return 0, perr.UnrecognizedSubsystem(code)
	}
	return s, nil
}

// DllFlag is a single DLL characteristics bit.
type DllFlag uint16

func (f DllFlag) String() string {
	if name, ok := dllFlagNames[f]; ok {
		return name
	}
	return fmt.Sprintf("DllFlag(0x%04x)", uint16(f))
}

// DllFlags is a set of DLL characteristics bits drawn from the closed flag
// vocabulary.
type DllFlags uint16

// Has reports whether the set contains the given flag.
func (s DllFlags) Has(f DllFlag) bool {
	return uint16(s)&uint16(f) != 0
}

// List returns the flags present in the set, in the fixed bit-test order.
func (s DllFlags) List() []DllFlag {
	var out []DllFlag
	for _, f := range dllFlagOrder {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// String renders the set as "Flag|Flag|...", or "(none)" when empty.
func (s DllFlags) String() string {
	flags := s.List()
	if len(flags) == 0 {
		return "(none)"
	}
	names := make([]string, len(flags))
	for i, f := range flags {
		names[i] = f.String()
	}
	return strings.Join(names, "|")
}

// DecodeDllCharacteristics accumulates the known single-bit masks present in
// bits into a flag set. Unknown bits are ignored, same policy as
// DecodeCoffCharacteristics.
func DecodeDllCharacteristics(bits uint16) DllFlags {
	var set DllFlags
	for _, f := range dllFlagOrder {
		if bits&uint16(f) != 0 {
			set |= DllFlags(f)
		}
	}
	return set
}

// ImageMagic identifies the optional-header variant, which in turn fixes the
// width of every pointer-sized field that follows it.
type ImageMagic uint16

func (m ImageMagic) String() string {
	switch m {
	case MagicPE32:
		return "PE32"
	case MagicROM:
		return "ROM"
	case MagicPE32Plus:
		return "PE32+"
	default:
		return fmt.Sprintf("ImageMagic(0x%04x)", uint16(m))
	}
}

// DecodeImageMagic maps a raw magic code onto the three known optional-header
// variants. Any other value fails with the code attached.
func DecodeImageMagic(code uint16) (ImageMagic, error) {
	switch m := ImageMagic(code); m {
	case MagicPE32, MagicROM, MagicPE32Plus:
		return m, nil
	default:
		return 0, perr.UnrecognizedMagic(code)
	}
}
