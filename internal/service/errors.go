package service

import (
	"errors"
	"fmt"

	"github.com/vcscsvcscs/health-dashboard/internal/azure"
	"github.com/vcscsvcscs/health-dashboard/internal/gateway"
	"github.com/vcscsvcscs/health-dashboard/internal/session"
	"github.com/vcscsvcscs/health-dashboard/internal/window"
)

// Messages shown to users for locally rejected input
const (
	MessageCredentialsRequired = "กรุณากรอกชื่อผู้ใช้และรหัสผ่าน"
	MessagePatientNameRequired = "กรุณากรอกชื่อผู้ป่วย"
	MessagePatientPhoneInvalid = "กรุณากรอกเบอร์โทรศัพท์"
	MessagePatientGender       = "กรุณาระบุเพศ"
	MessagePatientAgeInvalid   = "อายุต้องไม่ติดลบ"
	MessageIDRequired          = "ไม่พบรหัสที่ต้องการ"
	MessageArchivePathInvalid  = "ไม่พบไฟล์ที่ต้องการ"
)

// ErrSuperseded is returned when a newer load has started for the same
// screen. Its result is discarded.
var ErrSuperseded = errors.New("load superseded by a newer request")

// ValidationError is input rejected before any backend call
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ErrorKind is the user-facing class of a failure
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthenticated
	KindUpstream
	KindSuperseded
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindUpstream:
		return "upstream"
	case KindSuperseded:
		return "superseded"
	case KindNotFound:
		return "not found"
	default:
		return "internal"
	}
}

// Classify maps an error to the class the caller should react to
func Classify(err error) ErrorKind {
	if err == nil {
		return KindInternal
	}

	var verr *ValidationError
	var werr *window.ValidationError
	var apiErr *gateway.APIError

	switch {
	case errors.As(err, &verr), errors.As(err, &werr):
		return KindValidation
	case errors.Is(err, ErrSuperseded):
		return KindSuperseded
	case errors.Is(err, azure.ErrNotFound):
		return KindNotFound
	case errors.Is(err, gateway.ErrUnauthenticated),
		errors.Is(err, session.ErrUnauthenticated),
		errors.Is(err, session.ErrLoading),
		gateway.IsUnauthorized(err):
		return KindUnauthenticated
	case errors.As(err, &apiErr),
		errors.Is(err, gateway.ErrTransport),
		errors.Is(err, gateway.ErrEmptyBody):
		return KindUpstream
	default:
		return KindInternal
	}
}

// ValidationMessage returns the user-facing message of a validation error
func ValidationMessage(err error) (field, message string, ok bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Field, verr.Message, true
	}
	var werr *window.ValidationError
	if errors.As(err, &werr) {
		return werr.Field, werr.Message, true
	}
	return "", "", false
}
