// Package rfc3461 validates the parameters of the SMTP Delivery Status Notification extension (RFC 3461): RET and
// ENVID on MAIL, NOTIFY and ORCPT on RCPT. It works on the parameter lists produced by the rfc5321 package.
package rfc3461

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ProtonMail/mailgrammar/param"
	"github.com/ProtonMail/mailgrammar/rfcparser"
	"github.com/bradenaw/juniper/xslices"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var (
	ErrMissingValue    = errors.New("parameter without value")
	ErrDuplicateRet    = errors.New("duplicate RET")
	ErrInvalidRet      = errors.New("invalid RET")
	ErrDuplicateEnvID  = errors.New("duplicate ENVID")
	ErrInvalidEnvID    = errors.New("invalid ENVID")
	ErrDuplicateNotify = errors.New("duplicate NOTIFY")
	ErrInvalidNotify   = errors.New("invalid NOTIFY")
	ErrDuplicateOrcpt  = errors.New("duplicate ORCPT")
	ErrInvalidOrcpt    = errors.New("invalid ORCPT")
)

// ParamError is a DSN parameter that was rejected. Index is the position of the parameter in the list.
type ParamError struct {
	Index int
	Param param.Param
	Kind  rfcparser.Kind
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%v: %v", e.Err, e.Param)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

// Ret is the part of the message returned in a failure notification.
type Ret int

const (
	RetUnspecified Ret = iota
	RetFull
	RetHdrs
)

func (r Ret) String() string {
	switch r {
	case RetFull:
		return "FULL"
	case RetHdrs:
		return "HDRS"
	default:
		return ""
	}
}

type MailParams struct {
	Ret Ret

	// EnvID is the decoded envelope identifier. It is empty when ENVID was not given.
	EnvID string
}

// NotifyType is one of the conditions of the NOTIFY parameter.
type NotifyType int

const (
	NotifySuccess NotifyType = iota
	NotifyFailure
	NotifyDelay
	NotifyNever
)

var notifyTypes = map[string]NotifyType{
	"success": NotifySuccess,
	"failure": NotifyFailure,
	"delay":   NotifyDelay,
	"never":   NotifyNever,
}

func (n NotifyType) String() string {
	switch n {
	case NotifySuccess:
		return "SUCCESS"
	case NotifyFailure:
		return "FAILURE"
	case NotifyDelay:
		return "DELAY"
	case NotifyNever:
		return "NEVER"
	default:
		return fmt.Sprintf("NotifyType(%d)", int(n))
	}
}

type RcptParams struct {
	// Notify holds the requested conditions in the order success, failure, delay, or NotifyNever alone.
	// It is nil when NOTIFY was not given.
	Notify []NotifyType

	Orcpt *Orcpt
}

func rangeError(index int, p param.Param, err error) error {
	return &ParamError{Index: index, Param: p, Kind: rfcparser.KindRange, Err: err}
}

// DSNMailParams extracts RET and ENVID from the parameters of a MAIL command. The other parameters are returned in
// their original order. Keys are matched without regard to case.
func DSNMailParams(params []param.Param, opts ...rfcparser.Option) (MailParams, []param.Param, error) {
	cfg := rfcparser.NewConfig(opts...)

	var (
		result   MailParams
		hasEnvID bool
	)

	for i, p := range params {
		switch {
		case p.Is("RET"):
			if !p.HasValue {
				return result, nil, rangeError(i, p, ErrMissingValue)
			}

			if result.Ret != RetUnspecified {
				return result, nil, rangeError(i, p, ErrDuplicateRet)
			}

			switch strings.ToLower(p.Value) {
			case "full":
				result.Ret = RetFull
			case "hdrs":
				result.Ret = RetHdrs
			default:
				return result, nil, rangeError(i, p, ErrInvalidRet)
			}

		case p.Is("ENVID"):
			if !p.HasValue {
				return result, nil, rangeError(i, p, ErrMissingValue)
			}

			if hasEnvID {
				return result, nil, rangeError(i, p, ErrDuplicateEnvID)
			}

			if err := cfg.Limits.CheckEnvIDLength(len(p.Value)); err != nil {
				return result, nil, rangeError(i, p, err)
			}

			envID, err := decodeParamValue[string](p.Value, parsePrintableXtext, cfg)
			if err != nil {
				return result, nil, &ParamError{Index: i, Param: p, Kind: rfcparser.ErrorKind(err), Err: ErrInvalidEnvID}
			}

			result.EnvID, hasEnvID = envID, true
		}
	}

	return result, passthrough(params, "RET", "ENVID"), nil
}

// DSNRcptParams extracts NOTIFY and ORCPT from the parameters of a RCPT command. The other parameters are returned
// in their original order.
func DSNRcptParams(params []param.Param, opts ...rfcparser.Option) (RcptParams, []param.Param, error) {
	cfg := rfcparser.NewConfig(opts...)

	var result RcptParams

	for i, p := range params {
		switch {
		case p.Is("NOTIFY"):
			if !p.HasValue {
				return result, nil, rangeError(i, p, ErrMissingValue)
			}

			if result.Notify != nil {
				return result, nil, rangeError(i, p, ErrDuplicateNotify)
			}

			notify, err := parseNotify(p.Value)
			if err != nil {
				return result, nil, rangeError(i, p, err)
			}

			result.Notify = notify

		case p.Is("ORCPT"):
			if !p.HasValue {
				return result, nil, rangeError(i, p, ErrMissingValue)
			}

			if result.Orcpt != nil {
				return result, nil, rangeError(i, p, ErrDuplicateOrcpt)
			}

			orcpt, err := decodeParamValue[Orcpt](p.Value, parseOrcpt, cfg)
			if err != nil {
				return result, nil, &ParamError{Index: i, Param: p, Kind: rfcparser.ErrorKind(err), Err: ErrInvalidOrcpt}
			}

			result.Orcpt = &orcpt
		}
	}

	return result, passthrough(params, "NOTIFY", "ORCPT"), nil
}

func parseNotify(value string) ([]NotifyType, error) {
	//	notify-esmtp-value  = "NEVER" / 1#notify-list-element
	//	notify-list-element = "SUCCESS" / "FAILURE" / "DELAY"
	set := make(map[NotifyType]struct{})

	for _, item := range strings.Split(value, ",") {
		notifyType, ok := notifyTypes[strings.ToLower(item)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown condition '%v'", ErrInvalidNotify, item)
		}

		set[notifyType] = struct{}{}
	}

	if _, ok := set[NotifyNever]; ok && len(set) > 1 {
		return nil, fmt.Errorf("%w: NEVER can not be combined with other conditions", ErrInvalidNotify)
	}

	notify := maps.Keys(set)

	slices.Sort(notify)

	return notify, nil
}

// decodeParamValue applies p to the whole of value.
func decodeParamValue[T any](value string, p rfcparser.Func[T], cfg *rfcparser.Config) (T, error) {
	c := rfcparser.NewCursorWithConfig([]byte(value), cfg)

	result, next, err := p(c)
	if err != nil {
		var zero T
		return zero, err
	}

	if !next.AtEOF() {
		var zero T
		return zero, next.MakeError("unexpected input after parameter value")
	}

	return result, nil
}

func passthrough(params []param.Param, keys ...string) []param.Param {
	return xslices.Filter(slices.Clone(params), func(p param.Param) bool {
		return !xslices.Any(keys, func(key string) bool { return p.Is(key) })
	})
}
