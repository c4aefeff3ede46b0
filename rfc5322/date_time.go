package rfc5322

import (
	"fmt"
	"strings"
	"time"

	"github.com/ProtonMail/mailgrammar/rfcparser"
)

// 3.3.  Date and Time Specification

// Date parses the value of an Orig-Date field.
func Date(b []byte, opts ...rfcparser.Option) (time.Time, []byte, error) {
	c := rfcparser.NewCursor(b, opts...)

	dt, next, err := parseDTDateTime(c)
	if err == nil {
		next, err = consumeFieldEnd(next)
	}

	if err != nil {
		return time.Time{}, b, c.Config().Diagnose(err)
	}

	return dt, next.Rest(), nil
}

func parseDTDateTime(c rfcparser.Cursor) (time.Time, rfcparser.Cursor, error) {
	//  date-time       =   [ day-of-week "," ] date time [CFWS]
	_, next, err := tryParseCFWS(c)
	if err != nil {
		return time.Time{}, c, err
	}

	if next.Check(rfcparser.TokenTypeChar) {
		if next, err = parseDTDayOfWeek(next); err != nil {
			return time.Time{}, c, err
		}

		if next, err = next.Consume(rfcparser.TokenTypeComma, "expected ',' after day of the week"); err != nil {
			return time.Time{}, c, err
		}
	}

	year, month, day, next, err := parseDTDate(next)
	if err != nil {
		return time.Time{}, c, err
	}

	hour, min, sec, zone, next, err := parseDTTime(next)
	if err != nil {
		return time.Time{}, c, err
	}

	if _, next, err = tryParseCFWS(next); err != nil {
		return time.Time{}, c, err
	}

	return time.Date(year, month, day, hour, min, sec, 0, zone), next, nil
}

func parseDTDayOfWeek(c rfcparser.Cursor) (rfcparser.Cursor, error) {
	// nolint:dupword
	// day-of-week     =   ([FWS] day-name) / obs-day-of-week
	// obs-day-of-week =   [CFWS] day-name [CFWS]
	//
	dayBytes, next := c.CollectWhile(rfcparser.IsAlpha)

	if _, ok := dateDaySet[strings.ToLower(string(dayBytes))]; !ok {
		return c, c.MakeError(fmt.Sprintf("invalid day name '%v'", string(dayBytes)))
	}

	_, next, err := tryParseCFWS(next)
	if err != nil {
		return c, err
	}

	return next, nil
}

// Return (year, month, day).
func parseDTDate(c rfcparser.Cursor) (int, time.Month, int, rfcparser.Cursor, error) {
	// date            =   day month year
	day, next, err := parseDTDay(c)
	if err != nil {
		return 0, 0, 0, c, err
	}

	month, next, err := parseDTMonth(next)
	if err != nil {
		return 0, 0, 0, c, err
	}

	year, next, err := parseDTYear(next)
	if err != nil {
		return 0, 0, 0, c, err
	}

	return year, month, day, next, nil
}

func parseDTDay(c rfcparser.Cursor) (int, rfcparser.Cursor, error) {
	// day             =   ([FWS] 1*2DIGIT FWS) / obs-day
	//
	// obs-day         =   [CFWS] 1*2DIGIT [CFWS]
	//
	return parseDTNumber(c, 1, 2, 1, 31, "day")
}

func parseDTMonth(c rfcparser.Cursor) (time.Month, rfcparser.Cursor, error) {
	// month           =   "Jan" / "Feb" / "Mar" / "Apr" /
	//                     "May" / "Jun" / "Jul" / "Aug" /
	//                     "Sep" / "Oct" / "Nov" / "Dec"
	//
	month, next := c.CollectWhile(rfcparser.IsAlpha)

	v, ok := dateMonthToTimeMonth[strings.ToLower(string(month))]
	if !ok {
		return 0, c, c.MakeError(fmt.Sprintf("invalid date month '%v'", string(month)))
	}

	return v, next, nil
}

func parseDTYear(c rfcparser.Cursor) (int, rfcparser.Cursor, error) {
	// year            =   (FWS 4*DIGIT FWS) / obs-year
	//
	// obs-year        =   [CFWS] 2*DIGIT [CFWS]
	//
	_, next, err := tryParseCFWS(c)
	if err != nil {
		return 0, c, err
	}

	digits, next := next.CollectBytesWhile(rfcparser.IsDigitByte)
	if len(digits) < 2 {
		return 0, c, next.MakeError("expected at least two digits for year")
	}

	year := 0
	for _, d := range digits {
		year = year*10 + rfcparser.ByteToInt(d)
	}

	// Section 4.3 of RFC 5322.
	switch {
	case len(digits) == 2 && year < 50:
		year += 2000

	case len(digits) < 4:
		year += 1900
	}

	if _, next, err = tryParseCFWS(next); err != nil {
		return 0, c, err
	}

	return year, next, nil
}

func parseDTTime(c rfcparser.Cursor) (int, int, int, *time.Location, rfcparser.Cursor, error) {
	// time            =   time-of-day zone
	//
	// time-of-day     =   hour ":" minute [ ":" second ]
	hour, next, err := parseDTNumber(c, 2, 2, 0, 23, "hour")
	if err != nil {
		return 0, 0, 0, nil, c, err
	}

	if next, err = next.Consume(rfcparser.TokenTypeColon, "expected ':' after hour"); err != nil {
		return 0, 0, 0, nil, c, err
	}

	min, next, err := parseDTNumber(next, 2, 2, 0, 59, "minute")
	if err != nil {
		return 0, 0, 0, nil, c, err
	}

	var sec int

	if after, ok := next.Matches(rfcparser.TokenTypeColon); ok {
		if sec, next, err = parseDTNumber(after, 2, 2, 0, 60, "second"); err != nil {
			return 0, 0, 0, nil, c, err
		}
	}

	loc, next, err := parseDTZone(next)
	if err != nil {
		return 0, 0, 0, nil, c, err
	}

	return hour, min, sec, loc, next, nil
}

// parseDTNumber parses a number surrounded by optional CFWS and checks that it lies within [lo, hi].
func parseDTNumber(c rfcparser.Cursor, minDigits, maxDigits, lo, hi int, what string) (int, rfcparser.Cursor, error) {
	// obs-2digit      =   [CFWS] 2DIGIT [CFWS]
	_, next, err := tryParseCFWS(c)
	if err != nil {
		return 0, c, err
	}

	start := next

	num, next, err := rfcparser.Number(minDigits, maxDigits)(next)
	if err != nil {
		return 0, c, err
	}

	if num < lo || num > hi {
		return 0, c, start.MakeErrorKind(rfcparser.KindRange, fmt.Sprintf("%v out of range: %v", what, num))
	}

	if _, next, err = tryParseCFWS(next); err != nil {
		return 0, c, err
	}

	return num, next, nil
}

func parseDTZone(c rfcparser.Cursor) (*time.Location, rfcparser.Cursor, error) {
	// zone            =   (FWS ( "+" / "-" ) 4DIGIT) / obs-zone
	//
	//     obs-zone        =   "UT" / "GMT" /     ; Universal Time
	//                                            ; North American UT
	//                                            ; offsets
	//                         "EST" / "EDT" /    ; Eastern:  - 5/ - 4
	//                         "CST" / "CDT" /    ; Central:  - 6/ - 5
	//                         "MST" / "MDT" /    ; Mountain: - 7/ - 6
	//                         "PST" / "PDT" /    ; Pacific:  - 8/ - 7
	//                                            ;
	_, next, err := tryParseCFWS(c)
	if err != nil {
		return nil, c, err
	}

	multiplier := 1

	if after, ok := next.Matches(rfcparser.TokenTypePlus); ok {
		next = after
	} else if after, ok := next.Matches(rfcparser.TokenTypeMinus); ok {
		multiplier = -1
		next = after
	} else if next.Check(rfcparser.TokenTypeChar) {
		value, after := next.CollectWhile(rfcparser.IsAlpha)

		loc, ok := obsZoneToLocation[strings.ToLower(string(value))]
		if !ok {
			return nil, c, next.MakeError(fmt.Sprintf("unknown time zone '%v'", string(value)))
		}

		if _, after, err = tryParseCFWS(after); err != nil {
			return nil, c, err
		}

		return loc, after, nil
	} else {
		return nil, c, next.MakeError("expected either '+' or '-' on time zone start")
	}

	zoneHour, next, err := rfcparser.Number(2, 2)(next)
	if err != nil {
		return nil, c, err
	}

	zoneMinute, next, err := rfcparser.Number(2, 2)(next)
	if err != nil {
		return nil, c, err
	}

	zone := (zoneHour*3600 + zoneMinute*60) * multiplier

	return time.FixedZone("", zone), next, nil
}

var obsZoneToLocation = map[string]*time.Location{
	"ut":  time.FixedZone("UT", 0),
	"gmt": time.FixedZone("GMT", 0),
	"est": time.FixedZone("EST", -5*60*60),
	"edt": time.FixedZone("EDT", -4*60*60),
	"cst": time.FixedZone("CST", -6*60*60),
	"cdt": time.FixedZone("CDT", -5*60*60),
	"mst": time.FixedZone("MST", -7*60*60),
	"mdt": time.FixedZone("MDT", -6*60*60),
	"pst": time.FixedZone("PST", -8*60*60),
	"pdt": time.FixedZone("PDT", -7*60*60),
}

var dateMonthToTimeMonth = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

var dateDaySet = map[string]struct{}{
	"mon": {},
	"tue": {},
	"wed": {},
	"thu": {},
	"fri": {},
	"sat": {},
	"sun": {},
}
