package flytau

import(
	"fmt"
	"strings"
	"time"
)

type ResourceKind int
const(
	UnknownKind ResourceKind = iota
	Aircraft
	Pilot
	Attendant
)

var AllResourceKinds = []ResourceKind{Aircraft, Pilot, Attendant}

func (k ResourceKind)String() string {
	switch k {
	case Aircraft:  return "aircraft"
	case Pilot:     return "pilot"
	case Attendant: return "attendant"
	default:        return "unknown"
	}
}

func (k ResourceKind)IsCrew() bool { return k == Pilot || k == Attendant }

func ParseResourceKind(s string) (ResourceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "aircraft", "plane", "planes":    return Aircraft, nil
	case "pilot", "pilots":                return Pilot, nil
	case "attendant", "attendants", "fa":  return Attendant, nil
	}
	return UnknownKind, fmt.Errorf("unknown resource kind %q", s)
}

// SizeClass is an aircraft's capability attribute
type SizeClass int
const(
	Small SizeClass = iota
	Large
)

func (s SizeClass)String() string {
	if s == Large { return "large" }
	return "small"
}

func ParseSizeClass(s string) (SizeClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "small": return Small, nil
	case "large": return Large, nil
	}
	return Small, fmt.Errorf("unknown size class %q", s)
}

// Certification is a crew member's capability attribute
type Certification int
const(
	ShortOnly Certification = iota
	LongCapable
)

func (c Certification)String() string {
	if c == LongCapable { return "long" }
	return "short"
}

// The source data used "short", "long" and "both"; anything that can fly long can fly short.
func ParseCertification(s string) (Certification, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "short":        return ShortOnly, nil
	case "long", "both": return LongCapable, nil
	}
	return ShortOnly, fmt.Errorf("unknown certification %q", s)
}

// ResourceRef identifies a single aircraft, pilot or attendant.
type ResourceRef struct {
	Kind ResourceKind
	ID   string
}

func (r ResourceRef)String() string { return r.Kind.String() + ":" + r.ID }

// ParseResourceRef accepts the output of ResourceRef.String, e.g. "pilot:P17"
func ParseResourceRef(s string) (ResourceRef, error) {
	bits := strings.SplitN(s, ":", 2)
	if len(bits) != 2 || bits[1] == "" {
		return ResourceRef{}, fmt.Errorf("bad resource ref %q, want kind:id", s)
	}
	kind,err := ParseResourceKind(bits[0])
	if err != nil { return ResourceRef{}, err }
	return ResourceRef{Kind:kind, ID:bits[1]}, nil
}

// Resource is reference data about something that can be assigned to a flight. The
// capability attribute that matters depends on Kind: Size for aircraft, Cert for crew.
type Resource struct {
	ResourceRef // embedded

	DisplayName string

	Size        SizeClass     // aircraft only
	Producer    string        // aircraft only, e.g. Boeing
	Seats       int           // aircraft only

	Cert        Certification // crew only
	StartDate   time.Time     // crew only
}

func (r Resource)Ref() ResourceRef { return r.ResourceRef }

func (r Resource)Capability() string {
	if r.Kind == Aircraft { return r.Size.String() }
	return r.Cert.String()
}

func (r Resource)String() string {
	return fmt.Sprintf("%s[%s,%s]", r.ResourceRef, r.DisplayName, r.Capability())
}

func (r Resource)Validate() error {
	if r.Kind == UnknownKind {
		return fmt.Errorf("resource %q: unknown kind", r.ID)
	} else if r.ID == "" || strings.Contains(r.ID, ":") {
		return fmt.Errorf("resource %q: bad id", r.ID)
	}
	return nil
}
