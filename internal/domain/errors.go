package domain

import "errors"

var (
	ErrNoConversionPath     = errors.New("no conversion path")
	ErrIncompatibleUnits    = errors.New("incompatible units")
	ErrInvalidWindow        = errors.New("invalid window")
	ErrNotFound             = errors.New("not found")
	ErrCyclicGroup          = errors.New("cyclic group definition")
	ErrUnsupportedRepresent = errors.New("unsupported unit represent")
	ErrStorage              = errors.New("storage failure")
	ErrInvalidArgument      = errors.New("invalid argument")
)

// ErrorKind names the taxonomy entry err belongs to, or "internal".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoConversionPath):
		return "no_conversion_path"
	case errors.Is(err, ErrIncompatibleUnits):
		return "incompatible_units"
	case errors.Is(err, ErrInvalidWindow):
		return "invalid_window"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrCyclicGroup):
		return "cyclic_group"
	case errors.Is(err, ErrUnsupportedRepresent):
		return "unsupported_represent"
	case errors.Is(err, ErrStorage):
		return "storage"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	default:
		return "internal"
	}
}
