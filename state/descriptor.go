package state

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Kind tags what a Subsystem Descriptor represents: a travelling optical
// mode, or an internal (e.g. atomic, spin) degree of freedom.
type Kind string

const (
	KindLight    Kind = "light"
	KindInternal Kind = "internal"
)

// Polarization is one of the four polarization tags spec.md allows.
type Polarization string

const (
	PolarizationR Polarization = "R"
	PolarizationL Polarization = "L"
	PolarizationH Polarization = "H"
	PolarizationV Polarization = "V"
)

// Descriptor identifies a single tensor factor of a Joint state: a
// stable id, a truncation dimension, a kind tag, and (for kind=light)
// the wavelength and polarization of the optical mode. Descriptor values
// are immutable once constructed; id uniqueness across a simulation is
// enforced by Joint.Compose, not by Descriptor itself.
type Descriptor struct {
	ID           string       `validate:"required,uuid4"`
	Kind         Kind         `validate:"required,oneof=light internal"`
	Truncation   int          `validate:"required,min=1"`
	Wavelength   float64      `validate:"omitempty"`
	Polarization Polarization `validate:"omitempty,oneof=R L H V"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(validateDescriptor, Descriptor{})
	return v
}

// validateDescriptor enforces the kind-specific presence rule that plain
// struct tags can't express: wavelength and polarization are required
// exactly when Kind is light, and meaningless (ignored) otherwise.
func validateDescriptor(sl validator.StructLevel) {
	d := sl.Current().Interface().(Descriptor)
	if d.Kind != KindLight {
		return
	}
	if d.Wavelength == 0 {
		sl.ReportError(d.Wavelength, "Wavelength", "Wavelength", "required_for_light", "")
	}
	if d.Polarization == "" {
		sl.ReportError(d.Polarization, "Polarization", "Polarization", "required_for_light", "")
	}
}

// NewInternalDescriptor constructs a Descriptor for an internal
// (non-optical) subsystem with the given truncation.
func NewInternalDescriptor(truncation int) (Descriptor, error) {
	d := Descriptor{
		ID:         uuid.NewString(),
		Kind:       KindInternal,
		Truncation: truncation,
	}
	if err := validate.Struct(d); err != nil {
		return Descriptor{}, errors.Wrap(ErrInvalidDescriptor, err.Error())
	}
	return d, nil
}

// NewLightDescriptor constructs a Descriptor for an optical mode with the
// given truncation, wavelength (nanometers), and polarization.
func NewLightDescriptor(truncation int, wavelength float64, polarization Polarization) (Descriptor, error) {
	d := Descriptor{
		ID:           uuid.NewString(),
		Kind:         KindLight,
		Truncation:   truncation,
		Wavelength:   wavelength,
		Polarization: polarization,
	}
	if err := validate.Struct(d); err != nil {
		return Descriptor{}, errors.Wrap(ErrInvalidDescriptor, err.Error())
	}
	return d, nil
}

// ToDict projects the descriptor to a transport dictionary, stringifying
// every field, matching the state_props entries of a state envelope
// (spec.md §6).
func (d Descriptor) ToDict() map[string]string {
	m := map[string]string{
		"state_type": string(d.Kind),
		"truncation": strconv.Itoa(d.Truncation),
		"uuid":       d.ID,
	}
	if d.Kind == KindLight {
		m["wavelength"] = strconv.FormatFloat(d.Wavelength, 'g', -1, 64)
		m["polarization"] = string(d.Polarization)
	}
	return m
}

// DescriptorFromDict reconstructs a Descriptor from a transport
// dictionary as produced by ToDict, restoring typed fields (integer
// truncation, real wavelength, tagged kind and polarization strings).
func DescriptorFromDict(m map[string]string) (Descriptor, error) {
	truncation, err := strconv.Atoi(m["truncation"])
	if err != nil {
		return Descriptor{}, errors.Wrapf(err, "state: invalid truncation %q", m["truncation"])
	}
	d := Descriptor{
		ID:         m["uuid"],
		Kind:       Kind(m["state_type"]),
		Truncation: truncation,
	}
	if d.Kind == KindLight {
		wl, err := strconv.ParseFloat(m["wavelength"], 64)
		if err != nil {
			return Descriptor{}, errors.Wrapf(err, "state: invalid wavelength %q", m["wavelength"])
		}
		d.Wavelength = wl
		d.Polarization = Polarization(m["polarization"])
	}
	if err := validate.Struct(d); err != nil {
		return Descriptor{}, errors.Wrap(err, "state: descriptor failed validation")
	}
	return d, nil
}
