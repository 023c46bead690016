package handlers

import (
	"bytes"
	_ "embed"
	"fmt"
	"net/http"
	"strings"
	"text/template"

	"github.com/goccy/go-yaml"
)

//go:embed openapi.yaml
var openAPISource string

var openAPITemplate = template.Must(template.New("openapi").Parse(openAPISource))

// OpenAPIInfo is rendered into the embedded Action contract
type OpenAPIInfo struct {
	Version       string
	ServerURL     string
	DefaultLangs  string
	DefaultModel  string
	DefaultWrap   int
	DefaultEngine string
	Engines       []string
	Presets       []string
}

type OpenAPIHandler struct {
	info OpenAPIInfo
}

func NewOpenAPIHandler(info OpenAPIInfo) *OpenAPIHandler {
	return &OpenAPIHandler{info: info}
}

// Render produces the YAML document for serverURL
func (h *OpenAPIHandler) Render(serverURL string) ([]byte, error) {
	info := h.info
	if info.ServerURL == "" {
		info.ServerURL = serverURL
	}
	data := map[string]any{
		"Version":       info.Version,
		"ServerURL":     strings.TrimRight(info.ServerURL, "/"),
		"DefaultLangs":  info.DefaultLangs,
		"DefaultModel":  info.DefaultModel,
		"DefaultWrap":   info.DefaultWrap,
		"DefaultEngine": info.DefaultEngine,
		"Engines":       strings.Join(info.Engines, ", "),
		"Presets":       strings.Join(info.Presets, ", "),
	}
	var buf bytes.Buffer
	if err := openAPITemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render openapi: %w", err)
	}
	return buf.Bytes(), nil
}

func (h *OpenAPIHandler) YAML(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Render(requestBaseURL(r))
	if err != nil {
		jsonError(w, "internal_error", "failed to render openapi document", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(doc)
}

func (h *OpenAPIHandler) JSON(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Render(requestBaseURL(r))
	if err == nil {
		doc, err = yaml.YAMLToJSON(doc)
	}
	if err != nil {
		jsonError(w, "internal_error", "failed to render openapi document", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(doc)
}

// requestBaseURL guesses the public URL when PUBLIC_URL is unset
func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		if p := strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0])); p == "http" || p == "https" {
			scheme = p
		}
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		if h := strings.TrimSpace(strings.Split(fwd, ",")[0]); validHost(h) {
			host = h
		}
	}
	return scheme + "://" + host
}

// validHost accepts a host[:port] made of name, IPv4 or bracketed IPv6 characters
func validHost(host string) bool {
	if host == "" || len(host) > 255 {
		return false
	}
	for _, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '-', r == ':', r == '[', r == ']', r == '_':
		default:
			return false
		}
	}
	return true
}
