package auth

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
)

// swapJar is the session's cookie jar. The *http.Client holds it for its
// whole life; Logout swaps the inner jar rather than the client's field,
// which requests on other goroutines read without a lock.
type swapJar struct {
	mu    sync.RWMutex
	inner *cookiejar.Jar
}

func newSwapJar() *swapJar {
	inner, _ := cookiejar.New(nil)
	return &swapJar{inner: inner}
}

func (j *swapJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	inner := j.inner
	j.mu.RUnlock()
	inner.SetCookies(u, cookies)
}

func (j *swapJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	inner := j.inner
	j.mu.RUnlock()
	return inner.Cookies(u)
}

// reset drops every cookie.
func (j *swapJar) reset() {
	inner, _ := cookiejar.New(nil)
	j.mu.Lock()
	j.inner = inner
	j.mu.Unlock()
}
