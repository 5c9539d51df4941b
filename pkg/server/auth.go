package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/adfharrison1/hippodb/pkg/api"
)

var (
	errUnknownApplication = errors.New("application does not exist")
	errInvalidToken       = errors.New("invalid token")
	errTokenMismatch      = errors.New("token and application do not match")
)

// Token lets an application use the API. Tokens that are not writeable
// may only read.
type Token struct {
	Application string `json:"application"`
	Token       string `json:"token"`
	Writeable   bool   `json:"writeable"`
}

// Credentials is the set of tokens a server accepts. Requests present them
// with HTTP Basic auth: the application as username, the token as password.
type Credentials struct {
	tokens []Token
	apps   map[string]bool
}

// NewCredentials validates tokens and builds a credential set.
func NewCredentials(tokens []Token) (*Credentials, error) {
	c := &Credentials{apps: make(map[string]bool)}
	seen := make(map[string]bool)
	for i, token := range tokens {
		if token.Application == "" || token.Token == "" {
			return nil, fmt.Errorf("token %d: application and token are required", i)
		}
		if seen[token.Token] {
			return nil, fmt.Errorf("token %d: duplicate token for application %s", i, token.Application)
		}
		seen[token.Token] = true
		c.apps[token.Application] = true
		c.tokens = append(c.tokens, token)
	}
	if len(c.tokens) == 0 {
		return nil, errors.New("no tokens configured")
	}
	return c, nil
}

// LoadCredentials reads a JSON file of the form {"tokens": [...]}.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	var file struct {
		Tokens []Token `json:"tokens"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse credentials %s: %w", path, err)
	}
	return NewCredentials(file.Tokens)
}

// Authenticate returns the token matching secret, which must belong to app.
func (c *Credentials) Authenticate(app, secret string) (Token, error) {
	if !c.apps[app] {
		return Token{}, errUnknownApplication
	}
	var match *Token
	for i := range c.tokens {
		// Every token is compared so timing does not reveal which one matched
		if subtle.ConstantTimeCompare([]byte(c.tokens[i].Token), []byte(secret)) == 1 {
			match = &c.tokens[i]
		}
	}
	if match == nil {
		return Token{}, errInvalidToken
	}
	if match.Application != app {
		return Token{}, errTokenMismatch
	}
	return *match, nil
}

// publicPaths are served without credentials.
var publicPaths = map[string]bool{
	"/health": true,
	"/info":   true,
}

// readOnly reports whether a request cannot change stored data.
func readOnly(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		return true
	case http.MethodPost:
		// Filter queries travel in a POST body
		if route := mux.CurrentRoute(r); route != nil {
			tmpl, err := route.GetPathTemplate()
			return err == nil && tmpl == "/collections/{coll}/query"
		}
	}
	return false
}

// authMiddleware rejects requests without valid credentials with 401, and
// writes made with read-only tokens with 403.
func authMiddleware(creds *Credentials) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			app, secret, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="hippodb"`)
				api.WriteJSONError(w, http.StatusUnauthorized, "credentials required")
				return
			}
			token, err := creds.Authenticate(app, secret)
			if err != nil {
				log.Printf("WARN: Rejected credentials for application '%s' on %s %s: %v", app, r.Method, r.URL.Path, err)
				w.Header().Set("WWW-Authenticate", `Basic realm="hippodb"`)
				api.WriteJSONError(w, http.StatusUnauthorized, err.Error())
				return
			}
			if !token.Writeable && !readOnly(r) {
				log.Printf("WARN: Read-only token of application '%s' attempted %s %s", app, r.Method, r.URL.Path)
				api.WriteJSONError(w, http.StatusForbidden, "token is read-only")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
