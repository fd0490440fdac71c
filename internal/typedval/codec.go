package typedval

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Encode converts operator-facing text into the byte sequence for t. An
// unrecognized or malformed text for t returns an error; callers that need
// the original's "empty bytes with a diagnostic" behavior should log the
// error and treat the value as absent.
func Encode(t Type, text string) ([]byte, error) {
	switch t {
	case ASCII:
		return []byte(text), nil
	case UTF16BE:
		return zeroExtend(text, 2), nil
	case UTF32BE:
		return zeroExtend(text, 4), nil
	case HEX:
		return encodeHex(text)
	case I32LE, I32BE:
		v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("typedval: parse int: %w", err)
		}
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(int32(v)))
		if t == I32BE {
			reverse(buf)
		}
		return buf, nil
	case I64LE, I64BE:
		v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("typedval: parse long: %w", err)
		}
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, uint64(v))
		if t == I64BE {
			reverse(buf)
		}
		return buf, nil
	case F32LE, F32BE, F32FuzzyLE:
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 32)
		if err != nil {
			return nil, fmt.Errorf("typedval: parse float: %w", err)
		}
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v)))
		if t == F32BE {
			reverse(buf)
		}
		return buf, nil
	case F64LE, F64BE:
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, fmt.Errorf("typedval: parse double: %w", err)
		}
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
		if t == F64BE {
			reverse(buf)
		}
		return buf, nil
	default:
		return nil, fmt.Errorf("typedval: unknown type %v", t)
	}
}

// Decode converts the byte sequence of a TypedValue back into operator-
// facing text.
func Decode(t Type, data []byte) (string, error) {
	switch t {
	case ASCII:
		return string(data), nil
	case UTF16BE:
		return zeroCompress(data, 2), nil
	case UTF32BE:
		return zeroCompress(data, 4), nil
	case HEX:
		return decodeHex(data), nil
	case I32LE, I32BE:
		if len(data) != 4 {
			return "", fmt.Errorf("typedval: int needs 4 bytes, got %d", len(data))
		}
		buf := append([]byte(nil), data...)
		if t == I32BE {
			reverse(buf)
		}
		return strconv.FormatInt(int64(int32(binary.LittleEndian.Uint32(buf))), 10), nil
	case I64LE, I64BE:
		if len(data) != 8 {
			return "", fmt.Errorf("typedval: long needs 8 bytes, got %d", len(data))
		}
		buf := append([]byte(nil), data...)
		if t == I64BE {
			reverse(buf)
		}
		return strconv.FormatInt(int64(binary.LittleEndian.Uint64(buf)), 10), nil
	case F32LE, F32BE, F32FuzzyLE:
		if len(data) != 4 {
			return "", fmt.Errorf("typedval: float needs 4 bytes, got %d", len(data))
		}
		buf := append([]byte(nil), data...)
		if t == F32BE {
			reverse(buf)
		}
		v := math.Float32frombits(binary.LittleEndian.Uint32(buf))
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case F64LE, F64BE:
		if len(data) != 8 {
			return "", fmt.Errorf("typedval: double needs 8 bytes, got %d", len(data))
		}
		buf := append([]byte(nil), data...)
		if t == F64BE {
			reverse(buf)
		}
		v := math.Float64frombits(binary.LittleEndian.Uint64(buf))
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("typedval: cannot decode type %v", t)
	}
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// zeroExtend widens each byte of an ASCII string into an n-byte big-endian
// code point with leading zero padding, matching the original's
// UTF16/UTF32 "encoding" of plain ASCII text.
func zeroExtend(text string, width int) []byte {
	out := make([]byte, 0, len(text)*width)
	for i := 0; i < len(text); i++ {
		for j := 0; j < width-1; j++ {
			out = append(out, 0)
		}
		out = append(out, text[i])
	}
	return out
}

// zeroCompress is the inverse of zeroExtend: it takes the last byte of
// every width-byte code point and drops the leading zero bytes.
func zeroCompress(data []byte, width int) string {
	var sb strings.Builder
	for i := 0; i+width <= len(data); i += width {
		sb.WriteByte(data[i+width-1])
	}
	return sb.String()
}

func encodeHex(text string) ([]byte, error) {
	filtered := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			continue
		}
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if !isHexDigit(c) {
			return nil, fmt.Errorf("typedval: %q is not a hex string", text)
		}
		filtered = append(filtered, c)
	}
	if len(filtered)%2 != 0 {
		return nil, fmt.Errorf("typedval: %q has an odd number of hex digits", text)
	}
	out := make([]byte, len(filtered)/2)
	for i := 0; i < len(out); i++ {
		hi := hexVal(filtered[2*i])
		lo := hexVal(filtered[2*i+1])
		out[i] = hi<<4 | lo
	}
	return out, nil
}

// isHexDigit accepts a character iff it falls in '0'-'9' OR 'a'-'f'. The
// original validator ANDed these two ranges instead of ORing them, which
// can never be true for a single character and so never rejected anything;
// that defect is not reproduced here.
func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f')
}

func hexVal(c byte) byte {
	if c >= '0' && c <= '9' {
		return c - '0'
	}
	return c - 'a' + 10
}

func decodeHex(data []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(data)*2)
	for i, b := range data {
		out[2*i] = digits[b>>4]
		out[2*i+1] = digits[b&0xf]
	}
	return string(out)
}
