package broadcasting

import "errors"

var errMalformedRequest = errors.New("malformed request line")

// parseRequestLine extracts the method and request target from the start of
// an HTTP request. It succeeds as soon as both tokens are complete, without
// waiting for the protocol version or headers. ok is false when more bytes
// are needed.
func parseRequestLine(buf []byte) (method, target string, ok bool, err error) {
	// Leading empty lines are tolerated.
	for len(buf) > 0 && (buf[0] == '\r' || buf[0] == '\n') {
		buf = buf[1:]
	}

	end := 0
	for ; end < len(buf) && buf[end] != ' '; end++ {
		if !isTokenChar(buf[end]) {
			return "", "", false, errMalformedRequest
		}
	}
	if end == len(buf) {
		return "", "", false, nil
	}
	if end == 0 {
		return "", "", false, errMalformedRequest
	}
	method = string(buf[:end])

	rest := buf[end+1:]
	end = 0
	for ; end < len(rest) && rest[end] != ' '; end++ {
		if rest[end] < 0x21 || rest[end] == 0x7f {
			return "", "", false, errMalformedRequest
		}
	}
	if end == len(rest) {
		return "", "", false, nil
	}
	if end == 0 {
		return "", "", false, errMalformedRequest
	}
	return method, string(rest[:end]), true, nil
}

func isTokenChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}
