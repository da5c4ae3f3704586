// Package respond renders router-level failures (unmatched routes, wrong
// methods, panics) as RFC 9457 problem details, matching the error format
// the API framework uses for handler errors.
package respond

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	applog "github.com/grappleoss/backend/internal/platform/logging"
)

const (
	contentTypeProblemJSON = "application/problem+json"
	contentTypeProblemCBOR = "application/problem+cbor"

	msgNotFound         = "resource not found"
	msgInternalServer   = "internal server error"
	msgMethodNotAllowed = "method %s not allowed"
)

var probedMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// NotFoundHandler emits a 404 problem response.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, msgNotFound)
	}
}

// MethodNotAllowedHandler emits a 405 problem response listing allowed methods in Allow.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow := allowedMethods(r); len(allow) > 0 {
			w.Header().Set("Allow", strings.Join(allow, ", "))
		}
		writeProblem(w, r, http.StatusMethodNotAllowed, fmt.Sprintf(msgMethodNotAllowed, r.Method))
	}
}

// Recoverer converts panics into 500 problem responses. http.ErrAbortHandler
// is re-panicked so net/http can abort the connection. If the handler already
// started the response nothing more is written.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				var err error
				switch v := rec.(type) {
				case error:
					err = v
				default:
					err = fmt.Errorf("%v", v)
				}
				applog.LogError(r.Context(), "panic recovered", err,
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", debug.Stack()),
				)
				if rw.wroteHeader {
					return
				}
				writeProblem(rw, r, http.StatusInternalServerError, msgInternalServer)
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	problem := &huma.ErrorModel{
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}
	if status >= http.StatusInternalServerError {
		applog.LogError(r.Context(), detail, nil, zap.Int("status", status))
	} else {
		applog.LogWarn(r.Context(), detail, zap.Int("status", status), zap.String("path", r.URL.Path))
	}

	ensureVary(w.Header(), "Accept")

	var (
		body        []byte
		err         error
		contentType = contentTypeProblemJSON
	)
	if selectFormat(r.Header.Get("Accept")) {
		contentType = contentTypeProblemCBOR
		body, err = cbor.Marshal(problem)
	} else {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		err = enc.Encode(problem)
		body = buf.Bytes()
	}
	if err != nil {
		applog.LogError(r.Context(), "failed to encode problem", err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		applog.LogError(r.Context(), "failed to write problem", err)
	}
}

// allowedMethods probes chi's route tree for methods registered on the request path.
func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}
	routePath := rctx.RoutePath
	if routePath == "" {
		routePath = r.URL.RawPath
		if routePath == "" {
			routePath = r.URL.Path
		}
		if routePath == "" {
			routePath = "/"
		}
	}
	var allowed []string
	for _, method := range probedMethods {
		if rctx.Routes.Match(chi.NewRouteContext(), method, routePath) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}

// ensureVary appends values to Vary unless already present.
func ensureVary(h http.Header, values ...string) {
	existing := map[string]struct{}{}
	for _, line := range h.Values("Vary") {
		for part := range strings.SplitSeq(line, ",") {
			if p := strings.TrimSpace(part); p != "" {
				existing[strings.ToLower(p)] = struct{}{}
			}
		}
	}
	for _, v := range values {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := existing[key]; ok {
			continue
		}
		existing[key] = struct{}{}
		h.Add("Vary", v)
	}
}

type mediaRange struct {
	typ, subtype string
	q            float64
}

func parseAccept(header string) []mediaRange {
	var ranges []mediaRange
	for part := range strings.SplitSeq(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		params := strings.Split(part, ";")
		mt := strings.ToLower(strings.TrimSpace(params[0]))
		typ, subtype, ok := strings.Cut(mt, "/")
		if !ok {
			subtype = "*"
		}
		mr := mediaRange{typ: typ, subtype: subtype, q: 1.0}
		for _, p := range params[1:] {
			k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
			if !ok || strings.ToLower(strings.TrimSpace(k)) != "q" {
				continue
			}
			if q, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && q >= 0 && q <= 1 {
				mr.q = q
			}
		}
		ranges = append(ranges, mr)
	}
	return ranges
}

// preference is how a single format ranks against an Accept header: the q of
// the most specific matching range and that range's specificity.
type preference struct {
	q           float64
	specificity int
	matched     bool
}

// specificity ranks a range matching application/<format>: */* is 0,
// application/* is 1, application/<format> and application/*+<format> are 2,
// and a concrete structured suffix like application/problem+<format> is 3.
func specificity(mr mediaRange, format string) (int, bool) {
	switch {
	case mr.typ == "*" && mr.subtype == "*":
		return 0, true
	case mr.typ != "application":
		return 0, false
	case mr.subtype == "*":
		return 1, true
	case mr.subtype == format, mr.subtype == "*+"+format:
		return 2, true
	case strings.HasSuffix(mr.subtype, "+"+format):
		return 3, true
	}
	return 0, false
}

// rank finds the most specific range matching format. Among equally specific
// ranges the highest q counts.
func rank(ranges []mediaRange, format string) preference {
	var best preference
	for _, mr := range ranges {
		spec, ok := specificity(mr, format)
		if !ok {
			continue
		}
		if !best.matched || spec > best.specificity || (spec == best.specificity && mr.q > best.q) {
			best = preference{q: mr.q, specificity: spec, matched: true}
		}
	}
	return best
}

// selectFormat reports whether CBOR should be used. q decides first, then
// specificity; JSON wins remaining ties and is the default when nothing
// matches.
func selectFormat(accept string) bool {
	ranges := parseAccept(accept)
	if len(ranges) == 0 {
		return false
	}
	cborPref := rank(ranges, "cbor")
	if !cborPref.matched || cborPref.q == 0 {
		return false
	}
	jsonPref := rank(ranges, "json")
	if !jsonPref.matched || jsonPref.q == 0 {
		return true
	}
	if cborPref.q != jsonPref.q {
		return cborPref.q > jsonPref.q
	}
	return cborPref.specificity > jsonPref.specificity
}

// responseWriter records whether the response has started.
type responseWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
