package response

import "net/http"

// Status keywords accepted in declarations and returned by StatusName.
var statusNames = map[int]string{
	http.StatusOK:                  "ok",
	http.StatusCreated:             "created",
	http.StatusAccepted:            "accepted",
	http.StatusMovedPermanently:    "movedPermanently",
	http.StatusTemporaryRedirect:   "temporaryRedirect",
	http.StatusPermanentRedirect:   "permanentRedirect",
	http.StatusBadRequest:          "badRequest",
	http.StatusUnauthorized:        "unauthorized",
	http.StatusForbidden:           "forbidden",
	http.StatusNotFound:            "notFound",
	http.StatusNotAcceptable:       "notAcceptable",
	http.StatusTooManyRequests:     "tooManyRequests",
	http.StatusInternalServerError: "internalServerError",
}

var statusCodes = func() map[string]int {
	codes := make(map[string]int, len(statusNames)+1)
	for code, name := range statusNames {
		codes[name] = code
	}
	codes["unauthorised"] = http.StatusUnauthorized
	return codes
}()

// StatusName returns the keyword for code, or "" if it has none.
func StatusName(code int) string {
	return statusNames[code]
}

// StatusCode returns the code for a keyword such as "notFound".
func StatusCode(name string) (int, bool) {
	code, ok := statusCodes[name]
	return code, ok
}

// IsRedirect reports whether code needs a target URL.
func IsRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// Status returns an empty Raw response with the given code.
func Status(code int) Raw { return Raw{Status: code} }

// ValidStatus reports whether code can be written as an HTTP status.
func ValidStatus(code int) bool { return code >= 100 && code <= 999 }

// OK returns an empty 200.
func OK() Raw { return Status(http.StatusOK) }

// Created returns an empty 201.
func Created() Raw { return Status(http.StatusCreated) }

// Accepted returns an empty 202.
func Accepted() Raw { return Status(http.StatusAccepted) }

// BadRequest returns an empty 400.
func BadRequest() Raw { return Status(http.StatusBadRequest) }

// Unauthorized returns an empty 401.
func Unauthorized() Raw { return Status(http.StatusUnauthorized) }

// Forbidden returns an empty 403.
func Forbidden() Raw { return Status(http.StatusForbidden) }

// NotFound returns an empty 404.
func NotFound() Raw { return Status(http.StatusNotFound) }

// NotAcceptable returns an empty 406.
func NotAcceptable() Raw { return Status(http.StatusNotAcceptable) }

// TooManyRequests returns an empty 429.
func TooManyRequests() Raw { return Status(http.StatusTooManyRequests) }

// InternalServerError returns an empty 500.
func InternalServerError() Raw { return Status(http.StatusInternalServerError) }

// MovedPermanently returns a 301 redirecting to url.
func MovedPermanently(url string) Raw {
	return Redirect(http.StatusMovedPermanently, url)
}

// TemporaryRedirect returns a 307 redirecting to url.
func TemporaryRedirect(url string) Raw {
	return Redirect(http.StatusTemporaryRedirect, url)
}

// PermanentRedirect returns a 308 redirecting to url.
func PermanentRedirect(url string) Raw {
	return Redirect(http.StatusPermanentRedirect, url)
}

// Redirect returns a response with the given code and a Location header.
func Redirect(code int, url string) Raw {
	return Raw{Status: code, Headers: map[string]string{"Location": url}}
}
