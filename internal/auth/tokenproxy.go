// ABOUTME: Token-exchange proxy for public clients lacking a client secret.
// ABOUTME: Injects confidential credentials and relays the upstream response unmodified.

package auth

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// outboundTimeout bounds every outbound call made by the guard.
const outboundTimeout = 30 * time.Second

// maxUpstreamBody caps how much of an upstream token response is relayed.
const maxUpstreamBody = 1 << 20

// HandleTokenProxy forwards a form-encoded token request to the upstream
// authorization server's token endpoint, injecting the gateway's
// confidential client id and secret when the caller supplied none. The
// upstream status and body are returned unmodified so the client sees
// exactly what the authorization server said.
func (g *Guard) HandleTokenProxy(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, `{"error":"invalid_request"}`, http.StatusBadRequest)
		return
	}

	form := url.Values{}
	for k, vs := range r.PostForm {
		for _, v := range vs {
			form.Add(k, v)
		}
	}
	if form.Get("client_id") == "" {
		form.Set("client_id", g.clientID)
	}
	if form.Get("client_secret") == "" {
		form.Set("client_secret", g.clientSecret)
	}

	authServer, err := g.authServerBase(r)
	if err != nil {
		http.Error(w, "Bad Request: unknown tenant", http.StatusBadRequest)
		return
	}

	upstreamURL := authServer + "/oauth2/token"
	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, upstreamURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		g.logger.Error("building upstream token request", "error", err)
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error("forwarding token request", "error", err)
		http.Error(w, `{"error":"server_error","error_description":"token endpoint unreachable"}`,
			http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, io.LimitReader(resp.Body, maxUpstreamBody)); err != nil {
		g.logger.Warn("relaying token response", "error", err)
	}
}
