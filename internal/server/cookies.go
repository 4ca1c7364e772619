package server

import (
	"net/http"
	"time"
)

// identityCookieMaxAge keeps the identifier for as long as browsers allow;
// it is never rotated while the cookie exists.
const identityCookieMaxAge = 400 * 24 * time.Hour

// cookieStore exposes the visitor's cookies as a store.Store. It is the web
// counterpart of browser local storage: one scope per browser profile.
type cookieStore struct {
	r      *http.Request
	w      http.ResponseWriter
	secure bool
}

func (c cookieStore) Get(key string) (string, error) {
	cookie, err := c.r.Cookie(key)
	if err == http.ErrNoCookie {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

func (c cookieStore) Set(key, value string) error {
	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		MaxAge:   int(identityCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.secure,
	})
	// Later reads in the same request must see the new value.
	c.r.AddCookie(&http.Cookie{Name: key, Value: value})
	return nil
}
