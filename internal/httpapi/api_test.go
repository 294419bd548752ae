package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"hrms.org/internal/auth"
	"hrms.org/internal/records"
	"hrms.org/internal/store/memory"
)

type testEnv struct {
	t      *testing.T
	srv    *httptest.Server
	store  *memory.Store
	tokens *auth.TokenService
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	st := memory.New()
	hasher, err := auth.NewHasher(auth.WithBcryptCost(4))
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	tokens, err := auth.NewTokenService("test-secret")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	authSvc, err := auth.NewService(st, hasher, tokens)
	if err != nil {
		t.Fatalf("auth.NewService: %v", err)
	}
	api, err := New(Deps{
		Auth:          authSvc,
		Authenticator: auth.NewAuthenticator(tokens, st),
		Records:       records.NewService(st, st),
		Ready:         st,
	}, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return &testEnv{t: t, srv: srv, store: st, tokens: tokens}
}

type result struct {
	Code   int
	Header http.Header
	Body   []byte
}

func (r result) decode(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("decode %s: %v", r.Body, err)
	}
}

func (r result) detail(t *testing.T) string {
	t.Helper()
	var body errorBody
	r.decode(t, &body)
	return body.Detail
}

func (e *testEnv) do(method, path, token string, body any) result {
	e.t.Helper()
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			e.t.Fatalf("marshal body: %v", err)
		}
		payload = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, payload)
	if err != nil {
		e.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.send(req)
}

func (e *testEnv) upload(path, token, filename, contentType string, data []byte) result {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		e.t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write(data)
	_ = mw.Close()

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+path, &buf)
	if err != nil {
		e.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return e.send(req)
}

func (e *testEnv) send(req *http.Request) result {
	e.t.Helper()
	resp, err := e.srv.Client().Do(req)
	if err != nil {
		e.t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		e.t.Fatalf("read body: %v", err)
	}
	return result{Code: resp.StatusCode, Header: resp.Header, Body: raw}
}

func basePayload(email string) map[string]any {
	return map[string]any{
		"full_name":     "Test User",
		"email":         email,
		"phone_number":  "+10000000000",
		"password":      "s3cret-pass",
		"date_of_birth": "1990-01-01",
		"address":       "1 Main St",
	}
}

func internPayload(email, mentor string) map[string]any {
	p := basePayload(email)
	p["educational_institution"] = "State University"
	p["current_year_semester"] = "3"
	p["major_field_of_study"] = "CS"
	p["internship_start_date"] = "2024-01-01"
	p["internship_end_date"] = "2024-06-30"
	p["area_of_interest"] = "Backend"
	if mentor != "" {
		p["mentor_assigned"] = mentor
	}
	return p
}

func employeePayload(email string) map[string]any {
	p := basePayload(email)
	p["department"] = "Engineering"
	p["designation"] = "Engineer"
	p["joining_date"] = "2023-01-01"
	p["skills_expertise"] = "Go"
	return p
}

func hrPayload(email string) map[string]any {
	p := basePayload(email)
	p["hr_access_level"] = "admin"
	p["departments_overseen"] = "All"
	p["work_experience"] = "10 years"
	p["office_location"] = "HQ"
	return p
}

// signup registers an identity and returns its token and id.
func (e *testEnv) signup(role string, payload map[string]any) (string, auth.Identity) {
	e.t.Helper()
	res := e.do(http.MethodPost, "/api/auth/signup/"+role, "", payload)
	if res.Code != http.StatusOK {
		e.t.Fatalf("signup %s: %d %s", role, res.Code, res.Body)
	}
	var out struct {
		Token string        `json:"token"`
		User  auth.Identity `json:"user"`
	}
	res.decode(e.t, &out)
	return out.Token, out.User
}
