package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/rendering"
)

const taggedResponse = "<TAILORED_RESUME>\n## Experience\n- Built **Go** <services>\n</TAILORED_RESUME>\n" +
	"<GAP_ANALYSIS>\n- Missing AWS cert\n\n* No Python experience\n</GAP_ANALYSIS>"

func TestRender(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	resp := env.request(http.MethodPost, "/render", "", map[string]string{"text": taggedResponse})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out RenderResponse
	decode(t, resp, &out)
	assert.True(t, out.ResumeFound)
	assert.True(t, out.GapsFound)

	require.Len(t, out.Resume, 2)
	assert.Equal(t, rendering.KindHeading, out.Resume[0].Kind)
	assert.Equal(t, "Experience", out.Resume[0].Text)
	assert.Equal(t, rendering.KindList, out.Resume[1].Kind)
	assert.Equal(t, "<strong>Go</strong> &lt;services&gt;", out.Resume[1].Items[0].HTML)
	assert.Contains(t, out.ResumeHTML, "<li><strong>Go</strong> &lt;services&gt;</li>")

	require.Len(t, out.Gaps, 2)
	assert.Equal(t, "Missing AWS cert", out.Gaps[0].Text)
	assert.Equal(t, "No Python experience", out.Gaps[1].Text)
	assert.Contains(t, out.GapsHTML, `class="gap-list"`)
}

func TestRender_Fallbacks(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	resp := env.request(http.MethodPost, "/render", "", map[string]string{"text": "  Plain answer without tags  "})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out RenderResponse
	decode(t, resp, &out)
	assert.False(t, out.ResumeFound)
	require.Len(t, out.Resume, 1)
	assert.Equal(t, "Plain answer without tags", out.Resume[0].Text)
	assert.Empty(t, out.Gaps)
	assert.Empty(t, out.GapsHTML)
}

func TestExportPDF(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	long := strings.Repeat("word ", 2000)
	resp := env.request(http.MethodPost, "/export/pdf", "", map[string]string{
		"text":     "<TAILORED_RESUME>" + long + "</TAILORED_RESUME>",
		"filename": "../../etc/Jane Doe.pdf",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Jane-Doe.pdf"`, resp.Header.Get("Content-Disposition"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Greater(t, r.NumPage(), 1)
}

func TestExportPDF_DefaultFilenameAndValidation(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	resp := env.request(http.MethodPost, "/export/pdf", "", map[string]string{"text": "Jane Doe"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="tailored-resume.pdf"`, resp.Header.Get("Content-Disposition"))

	resp = env.request(http.MethodPost, "/export/pdf", "", map[string]string{"filename": "x.pdf"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportHTMLPDF(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	resp := env.request(http.MethodPost, "/export/html-pdf", "", map[string]string{"text": taggedResponse})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(body))

	assert.Contains(t, env.printer.html, "<h2>Experience</h2>")
	assert.NotContains(t, env.printer.html, "Missing AWS cert", "only the resume is printed")
}

func TestExportHTMLPDF_NotConfigured(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	srv := New(Options{Store: env.store, JWT: env.jwt, Passwords: &config.PasswordConfig{BcryptCost: 4}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/export/html-pdf", strings.NewReader(`{"text":"x"}`)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestExportTeX(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	resp := env.request(http.MethodPost, "/export/tex", "", map[string]string{"text": "## R&D\n- 100% **uptime**", "filename": "cv"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="cv.tex"`, resp.Header.Get("Content-Disposition"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `R\&D`)
	assert.Contains(t, string(body), `100\% \textbf{uptime}`)
}

func TestImportProfile(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	token, _ := env.register("jane@example.com")
	task := env.createTask(token)

	body, contentType := multipartBody(t, "resume.md", "# Jane Doe\r\n\r\n\r\n•  Go   developer\n")
	resp := env.upload("/tasks/"+task.ID.String()+"/profile/import", token, body, contentType)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated db.Task
	decode(t, resp, &updated)
	require.NotNil(t, updated.ExistingProfile)
	assert.Equal(t, "# Jane Doe\n\n- Go developer", *updated.ExistingProfile)
}

func TestImportProfile_Rejections(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	token, _ := env.register("jane@example.com")
	other, _ := env.register("other@example.com")
	task := env.createTask(token)
	path := "/tasks/" + task.ID.String() + "/profile/import"

	body, contentType := multipartBody(t, "resume.pages", "x")
	resp := env.upload(path, token, body, contentType)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorMessage(t, resp), "unsupported file type")

	body, contentType = multipartBody(t, "resume.pdf", "not a pdf")
	resp = env.upload(path, token, body, contentType)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body, contentType = multipartBody(t, "resume.txt", "Jane")
	resp = env.upload(path, other, body, contentType)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.request(http.MethodPost, path, token, `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestImportJob(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	token, _ := env.register("jane@example.com")
	task := env.createTask(token)
	path := "/tasks/" + task.ID.String() + "/job/import"

	env.jobs.text = "Platform Engineer\nWe need Go."
	resp := env.request(http.MethodPost, path, token, map[string]string{"url": "https://jobs.example.com/1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated db.Task
	decode(t, resp, &updated)
	require.NotNil(t, updated.JobDescription)
	assert.Equal(t, "Platform Engineer\nWe need Go.", *updated.JobDescription)

	resp = env.request(http.MethodPost, path, token, map[string]string{"url": "not a url"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env.jobs.err = errors.New("dial tcp: connection refused")
	resp = env.request(http.MethodPost, path, token, map[string]string{"url": "https://jobs.example.com/2"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Could not fetch the job posting.", errorMessage(t, resp))
}
