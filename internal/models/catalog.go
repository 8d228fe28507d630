package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownModel is returned for a model name missing from the catalog.
	ErrUnknownModel = errors.New("unknown model")
	// ErrUnsupportedDevice is returned for a device other than cpu, cuda or metal.
	ErrUnsupportedDevice = errors.New("unsupported device")
)

// Precision is the numeric format of the model weights.
type Precision string

const (
	Float16 Precision = "f16"
	Int8    Precision = "q8_0"
	Int5    Precision = "q5_0"
)

// entry is a catalog row. cpu is the quantization used on CPU; empty means
// no quantized weights are published and CPU loads float16.
type entry struct {
	name string
	cpu  Precision
	mb   int
}

var catalog = []entry{
	{"tiny", Int8, 75},
	{"tiny.en", Int8, 75},
	{"base", Int8, 142},
	{"base.en", Int8, 142},
	{"small", Int8, 466},
	{"small.en", Int8, 466},
	{"medium", Int8, 1500},
	{"medium.en", Int8, 1500},
	{"large-v1", "", 2900},
	{"large-v2", Int8, 2900},
	{"large-v3", Int5, 2900},
	{"large-v3-turbo", Int8, 1500},
}

// Spec identifies the weight file for a model size on a device.
type Spec struct {
	Name      string
	Device    string
	Precision Precision
	SizeMB    int // approximate float16 size
}

// Names lists the model sizes in the catalog.
func Names() []string {
	names := make([]string, len(catalog))
	for i, e := range catalog {
		names[i] = e.name
	}
	return names
}

// Resolve picks the weight file for name on device. Accelerators get
// float16 weights, CPU gets the quantized variant where one exists.
func Resolve(name, device string) (Spec, error) {
	var e *entry
	for i := range catalog {
		if catalog[i].name == name {
			e = &catalog[i]
			break
		}
	}
	if e == nil {
		return Spec{}, fmt.Errorf("%w %q (known: %s)", ErrUnknownModel, name, strings.Join(Names(), ", "))
	}

	s := Spec{Name: e.name, Device: device, Precision: Float16, SizeMB: e.mb}
	switch device {
	case "cuda", "metal":
	case "cpu":
		if e.cpu != "" {
			s.Precision = e.cpu
		}
	default:
		return Spec{}, fmt.Errorf("%w %q (supported: cpu, cuda, metal)", ErrUnsupportedDevice, device)
	}
	return s, nil
}

// FileName returns the ggml file name, e.g. "ggml-large-v2-q8_0.bin".
func (s Spec) FileName() string {
	if s.Precision == Float16 || s.Precision == "" {
		return "ggml-" + s.Name + ".bin"
	}
	return "ggml-" + s.Name + "-" + string(s.Precision) + ".bin"
}

// Multilingual reports whether the model can transcribe languages other
// than English.
func (s Spec) Multilingual() bool {
	return !strings.HasSuffix(s.Name, ".en")
}

func (s Spec) String() string {
	return fmt.Sprintf("%s (%s, %s)", s.Name, s.Device, s.Precision)
}
