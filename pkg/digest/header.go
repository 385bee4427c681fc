package digest

import (
	"errors"
	"fmt"
	"strings"
)

// Scheme is the authentication scheme name.
const Scheme = "Digest"

var (
	// ErrNotDigest is returned when the header uses another scheme.
	ErrNotDigest = errors.New("digest: not a Digest authorization")

	// ErrMalformed is returned when the parameter list cannot be parsed.
	ErrMalformed = errors.New("digest: malformed parameter list")

	// ErrMissingField is returned by Validate when a required field is absent.
	ErrMissingField = errors.New("digest: missing required field")
)

// Credentials are the fields of a client Authorization header.
type Credentials struct {
	Username  string
	Realm     string
	Nonce     string
	URI       string
	Response  string
	Qop       string
	NC        string
	CNonce    string
	Algorithm string
	Opaque    string
}

// ParseAuthorization parses an "Authorization: Digest ..." header value.
func ParseAuthorization(header string) (*Credentials, error) {
	params, err := parseSchemeParams(header)
	if err != nil {
		return nil, err
	}
	return &Credentials{
		Username:  params["username"],
		Realm:     params["realm"],
		Nonce:     params["nonce"],
		URI:       params["uri"],
		Response:  params["response"],
		Qop:       params["qop"],
		NC:        params["nc"],
		CNonce:    params["cnonce"],
		Algorithm: params["algorithm"],
		Opaque:    params["opaque"],
	}, nil
}

// Validate checks that every field required to recompute the response is present.
// realm, username, nonce, uri and response are always required; nc and cnonce
// are required when qop is present.
func (c *Credentials) Validate() error {
	type field struct{ name, value string }
	required := []field{
		{"realm", c.Realm},
		{"username", c.Username},
		{"nonce", c.Nonce},
		{"uri", c.URI},
		{"response", c.Response},
	}
	if c.Qop != "" {
		required = append(required, field{"nc", c.NC}, field{"cnonce", c.CNonce})
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}
	return nil
}

// String renders the credentials as an Authorization header value.
func (c *Credentials) String() string {
	var b strings.Builder
	b.WriteString(Scheme)
	b.WriteString(` username="`)
	b.WriteString(quote(c.Username))
	b.WriteString(`", realm="`)
	b.WriteString(quote(c.Realm))
	b.WriteString(`", nonce="`)
	b.WriteString(quote(c.Nonce))
	b.WriteString(`", uri="`)
	b.WriteString(quote(c.URI))
	b.WriteString(`", response="`)
	b.WriteString(c.Response)
	b.WriteString(`"`)
	if c.Algorithm != "" {
		b.WriteString(`, algorithm=`)
		b.WriteString(c.Algorithm)
	}
	if c.Opaque != "" {
		b.WriteString(`, opaque="`)
		b.WriteString(quote(c.Opaque))
		b.WriteString(`"`)
	}
	if c.Qop != "" {
		b.WriteString(`, qop=`)
		b.WriteString(c.Qop)
		b.WriteString(`, nc=`)
		b.WriteString(c.NC)
		b.WriteString(`, cnonce="`)
		b.WriteString(quote(c.CNonce))
		b.WriteString(`"`)
	}
	return b.String()
}

// Challenge is a server WWW-Authenticate challenge.
type Challenge struct {
	Realm     string
	Nonce     string
	Qop       string
	Algorithm string
	Opaque    string
}

// NewChallenge returns the challenge the server issues: qop="auth", algorithm="MD5".
func NewChallenge(realm, nonce string) Challenge {
	return Challenge{
		Realm:     realm,
		Nonce:     nonce,
		Qop:       QopAuth,
		Algorithm: Algorithm,
	}
}

// String renders the challenge as a WWW-Authenticate header value:
//
//	Digest realm="<realm>", qop="auth", algorithm="MD5", nonce="<nonce>"
func (c Challenge) String() string {
	var b strings.Builder
	b.WriteString(Scheme)
	b.WriteString(` realm="`)
	b.WriteString(quote(c.Realm))
	b.WriteString(`"`)
	if c.Qop != "" {
		b.WriteString(`, qop="`)
		b.WriteString(c.Qop)
		b.WriteString(`"`)
	}
	if c.Algorithm != "" {
		b.WriteString(`, algorithm="`)
		b.WriteString(c.Algorithm)
		b.WriteString(`"`)
	}
	b.WriteString(`, nonce="`)
	b.WriteString(quote(c.Nonce))
	b.WriteString(`"`)
	if c.Opaque != "" {
		b.WriteString(`, opaque="`)
		b.WriteString(quote(c.Opaque))
		b.WriteString(`"`)
	}
	return b.String()
}

// ParseChallenge parses a WWW-Authenticate header value.
func ParseChallenge(header string) (Challenge, error) {
	params, err := parseSchemeParams(header)
	if err != nil {
		return Challenge{}, err
	}
	c := Challenge{
		Realm:     params["realm"],
		Nonce:     params["nonce"],
		Algorithm: params["algorithm"],
		Opaque:    params["opaque"],
	}
	// The server may offer several qop values; only "auth" is supported.
	for _, q := range strings.Split(params["qop"], ",") {
		if strings.TrimSpace(q) == QopAuth {
			c.Qop = QopAuth
			break
		}
	}
	if c.Nonce == "" {
		return Challenge{}, fmt.Errorf("%w: nonce", ErrMissingField)
	}
	if c.Algorithm != "" && !strings.EqualFold(c.Algorithm, Algorithm) {
		return Challenge{}, fmt.Errorf("digest: unsupported algorithm %q", c.Algorithm)
	}
	return c, nil
}

// parseSchemeParams checks the Digest scheme and returns its lowercased parameters.
func parseSchemeParams(header string) (map[string]string, error) {
	header = strings.TrimSpace(header)
	scheme, rest, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, Scheme) {
		return nil, ErrNotDigest
	}
	return ParseParams(rest)
}

// ParseParams parses a comma separated list of key=value pairs. Values may be
// quoted strings containing commas and backslash escapes. Keys are lowercased;
// the last occurrence of a key wins.
func ParseParams(s string) (map[string]string, error) {
	params := make(map[string]string)
	for _, item := range splitList(s) {
		key, value, ok := strings.Cut(item, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return nil, ErrMalformed
		}
		value = strings.TrimSpace(value)
		if strings.HasPrefix(value, `"`) {
			unq, err := unquote(value)
			if err != nil {
				return nil, err
			}
			value = unq
		}
		params[key] = value
	}
	return params, nil
}

// splitList splits on commas that are not inside a quoted string.
func splitList(s string) []string {
	var (
		items  []string
		cur    strings.Builder
		quoted bool
		escape bool
	)
	for _, r := range s {
		switch {
		case escape:
			cur.WriteRune(r)
			escape = false
			continue
		case r == '\\' && quoted:
			cur.WriteRune(r)
			escape = true
			continue
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			if item := strings.TrimSpace(cur.String()); item != "" {
				items = append(items, item)
			}
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	if item := strings.TrimSpace(cur.String()); item != "" {
		items = append(items, item)
	}
	return items
}

func unquote(v string) (string, error) {
	if len(v) < 2 || v[len(v)-1] != '"' {
		return "", fmt.Errorf("%w: unterminated quoted string", ErrMalformed)
	}
	v = v[1 : len(v)-1]
	if !strings.Contains(v, `\`) {
		return v, nil
	}
	var b strings.Builder
	escape := false
	for _, r := range v {
		if escape {
			b.WriteRune(r)
			escape = false
			continue
		}
		if r == '\\' {
			escape = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

func quote(s string) string {
	if !strings.ContainsAny(s, `"\`) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
