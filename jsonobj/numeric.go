package jsonobj

import "strconv"

// parseUnitInt64 parses a numeric getter value: an optional "0x"/"0X"
// hex prefix, decimal digits otherwise, and an optional trailing unit
// suffix k|K (1024), m|M (1024^2), g|G (1024^3).
func parseUnitInt64(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}

	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	if s == "" {
		return 0, false
	}

	mul := int64(1)
	switch s[len(s)-1] {
	case 'k', 'K':
		mul = 1024
		s = s[:len(s)-1]
	case 'm', 'M':
		mul = 1024 * 1024
		s = s[:len(s)-1]
	case 'g', 'G':
		mul = 1024 * 1024 * 1024
		s = s[:len(s)-1]
	}
	if s == "" {
		return 0, false
	}

	var n int64
	var err error
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		n, err = strconv.ParseInt(s[2:], 16, 64)
	} else {
		n, err = strconv.ParseInt(s, 10, 64)
	}
	if err != nil {
		return 0, false
	}
	n *= mul
	if neg {
		n = -n
	}
	return n, true
}

// GetInt64 returns the index'th value under key parsed as a signed
// integer honoring a k|K|m|M|g|G unit suffix and a 0x/0X hex prefix.
func (o *Object) GetInt64(key string, index int) (int64, bool) {
	s, ok := o.GetString(key, index)
	if !ok {
		return 0, false
	}
	return parseUnitInt64(s)
}

// GetInt is GetInt64 truncated to int.
func (o *Object) GetInt(key string, index int) (int, bool) {
	n, ok := o.GetInt64(key, index)
	return int(n), ok
}

// GetFloat64 returns the index'th value under key parsed as a float.
// Unit suffixes are not meaningful on a float getter and are rejected.
func (o *Object) GetFloat64(key string, index int) (float64, bool) {
	s, ok := o.GetString(key, index)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// GetBool interprets "true"/"1"/"yes"/"on" as true and
// "false"/"0"/"no"/"off" as false (case-sensitive, matching the
// original format's conf-file convention).
func (o *Object) GetBool(key string, index int) (bool, bool) {
	s, ok := o.GetString(key, index)
	if !ok {
		return false, false
	}
	switch s {
	case "true", "1", "yes", "on":
		return true, true
	case "false", "0", "no", "off":
		return false, true
	default:
		return false, false
	}
}
