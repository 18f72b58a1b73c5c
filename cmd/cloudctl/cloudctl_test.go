package cloudctlcmder_test

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	cloudctlcmder "github.com/papercomputeco/cloudctl/cmd/cloudctl"
	"github.com/papercomputeco/cloudctl/cmd/cloudctl/session"
	"github.com/papercomputeco/cloudctl/pkg/cloud"
	"github.com/papercomputeco/cloudctl/pkg/credentials"
	"github.com/papercomputeco/cloudctl/pkg/utils"
	testutils "github.com/papercomputeco/cloudctl/pkg/utils/test"
)

// harness runs the root command against a fake API with an isolated
// .cloudctl directory.
type harness struct {
	server    *testutils.APIServer
	configDir string
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
	stdin     string
}

func newHarness() *harness {
	configDir, err := os.MkdirTemp("", "cloudctl-cmd-test-*")
	Expect(err).NotTo(HaveOccurred())

	return &harness{
		server:    testutils.NewAPIServer(),
		configDir: configDir,
		stdout:    &bytes.Buffer{},
		stderr:    &bytes.Buffer{},
	}
}

func (h *harness) close() {
	h.server.Close()
	os.RemoveAll(h.configDir)
}

func (h *harness) run(args ...string) error {
	h.stdout.Reset()
	h.stderr.Reset()

	cmd := cloudctlcmder.NewCloudctlCmd()
	cmd.SetOut(h.stdout)
	cmd.SetErr(h.stderr)
	cmd.SetIn(strings.NewReader(h.stdin))
	cmd.SetArgs(append(args, "--config-dir", h.configDir, "--api-url", h.server.URL))
	return cmd.Execute()
}

var _ = Describe("NewCloudctlCmd", func() {
	It("registers every top level command", func() {
		cmd := cloudctlcmder.NewCloudctlCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("auth", "config", "apps", "requests", "builds", "secrets", "version"))
	})

	It("declares the registry flags as persistent", func() {
		cmd := cloudctlcmder.NewCloudctlCmd()
		for _, name := range []string{"api-url", "org", "project", "namespace", "rate-limit", "log-json"} {
			Expect(cmd.PersistentFlags().Lookup(name)).NotTo(BeNil(), name)
		}
		Expect(cmd.PersistentFlags().ShorthandLookup("n").Name).To(Equal("namespace"))
	})
})

var _ = Describe("cloudctl", func() {
	var h *harness

	BeforeEach(func() {
		h = newHarness()
		Expect(os.Setenv(credentials.TokenEnvVar, "test-token")).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Unsetenv(credentials.TokenEnvVar)).To(Succeed())
		h.close()
	})

	Describe("version", func() {
		It("prints the build version", func() {
			Expect(h.run("version")).To(Succeed())
			Expect(h.stdout.String()).To(ContainSubstring("cloudctl " + utils.Version))
		})
	})

	Describe("authentication", func() {
		It("sends the token from the environment as a bearer token", func() {
			h.server.JSON(http.MethodGet, "/v1/namespaces/default/applications", http.StatusOK, map[string]any{"applications": []any{}})

			Expect(h.run("apps", "list")).To(Succeed())
			Expect(h.server.Last().Header.Get("Authorization")).To(Equal("Bearer test-token"))
		})

		It("fails with a login hint when no token is configured", func() {
			Expect(os.Unsetenv(credentials.TokenEnvVar)).To(Succeed())

			err := h.run("apps", "list")
			Expect(err).To(MatchError(credentials.ErrNoToken))
			Expect(err.Error()).To(ContainSubstring("cloudctl auth login"))
			Expect(h.server.Requests()).To(BeEmpty())
		})

		It("stores a piped token and uses it", func() {
			Expect(os.Unsetenv(credentials.TokenEnvVar)).To(Succeed())
			h.stdin = "stored-token-1234\n"

			Expect(h.run("auth", "login")).To(Succeed())

			info, err := os.Stat(filepath.Join(h.configDir, "credentials.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))

			Expect(h.run("auth", "status")).To(Succeed())
			Expect(h.stdout.String()).To(ContainSubstring("1234"))
			Expect(h.stdout.String()).NotTo(ContainSubstring("stored-token-1234"))

			h.server.JSON(http.MethodGet, "/v1/namespaces/default/applications", http.StatusOK, map[string]any{"applications": []any{}})
			Expect(h.run("apps", "list")).To(Succeed())
			Expect(h.server.Last().Header.Get("Authorization")).To(Equal("Bearer stored-token-1234"))

			Expect(h.run("auth", "logout")).To(Succeed())
			Expect(h.run("apps", "list")).To(MatchError(credentials.ErrNoToken))
		})

		It("rejects an empty token", func() {
			h.stdin = "   \n"
			Expect(h.run("auth", "login")).To(MatchError(ContainSubstring("cannot be empty")))
		})
	})

	Describe("apps", func() {
		It("lists applications in the selected namespace", func() {
			h.server.JSON(http.MethodGet, "/v1/namespaces/research/applications", http.StatusOK, map[string]any{
				"applications": []map[string]any{
					{"name": "summarize", "version": "v3", "description": "Summarizes pages", "state": "active"},
					{"name": "legacy", "version": "v1", "state": map[string]any{"disabled": map[string]string{"reason": "quota"}}},
				},
				"cursor": "c-2",
			})

			Expect(h.run("apps", "list", "-n", "research", "--limit", "2")).To(Succeed())

			out := h.stdout.String()
			Expect(out).To(ContainSubstring("summarize"))
			Expect(out).To(ContainSubstring("disabled: quota"))
			Expect(out).To(ContainSubstring("--cursor c-2"))
			Expect(h.server.Last().Query.Get("limit")).To(Equal("2"))
		})

		It("prints applications as JSON", func() {
			h.server.JSON(http.MethodGet, "/v1/namespaces/default/applications", http.StatusOK, map[string]any{
				"applications": []map[string]any{{"name": "summarize", "version": "v3"}},
			})

			Expect(h.run("apps", "list", "--json")).To(Succeed())
			Expect(h.stdout.String()).To(ContainSubstring(`"name": "summarize"`))
			Expect(h.stdout.String()).To(ContainSubstring(`"namespace": "default"`))
		})

		It("shows an application with its functions", func() {
			h.server.JSON(http.MethodGet, "/v1/namespaces/default/applications/summarize", http.StatusOK, map[string]any{
				"name":        "summarize",
				"version":     "v3",
				"description": "Summarizes pages",
				"entrypoint":  map[string]any{"function_name": "summarize"},
				"functions": map[string]any{
					"fetch": map[string]any{
						"name":         "fetch",
						"timeout_sec":  30,
						"secret_names": []string{"HF_TOKEN"},
						"resources":    map[string]any{"cpus": 2, "memory_mb": 1024},
					},
				},
			})

			Expect(h.run("apps", "get", "summarize")).To(Succeed())

			out := h.stdout.String()
			Expect(out).To(ContainSubstring("Summarizes pages"))
			Expect(out).To(ContainSubstring("fetch"))
			Expect(out).To(ContainSubstring("HF_TOKEN"))
		})

		It("invokes an application with JSON data", func() {
			h.server.JSON(http.MethodPost, "/v1/namespaces/default/applications/summarize", http.StatusOK, map[string]string{"request_id": "req-1"})

			Expect(h.run("apps", "invoke", "summarize", "--data", `{"url":"https://example.com"}`)).To(Succeed())
			Expect(h.server.Last().Body).To(MatchJSON(`{"url":"https://example.com"}`))
			Expect(h.stdout.String()).To(ContainSubstring("req-1"))
		})

		It("reads invoke input from stdin", func() {
			h.server.JSON(http.MethodPost, "/v1/namespaces/default/applications/summarize", http.StatusOK, map[string]string{"request_id": "req-2"})
			h.stdin = `{"n": 3}`

			Expect(h.run("apps", "invoke", "summarize", "--file", "-")).To(Succeed())
			Expect(h.server.Last().Body).To(MatchJSON(`{"n":3}`))
		})

		It("rejects invalid JSON input before calling the API", func() {
			Expect(h.run("apps", "invoke", "summarize", "--data", "{nope")).To(MatchError(ContainSubstring("not valid JSON")))
			Expect(h.server.Requests()).To(BeEmpty())
		})

		It("deploys a manifest with its code as a multipart form", func() {
			h.server.JSON(http.MethodPost, "/v1/namespaces/default/applications", http.StatusOK, nil)

			manifest := filepath.Join(h.configDir, "app.json")
			Expect(os.WriteFile(manifest, []byte(`{"name":"summarize","version":"v4"}`), 0o600)).To(Succeed())
			code := filepath.Join(h.configDir, "code.zip")
			Expect(os.WriteFile(code, []byte("PK-zip-bytes"), 0o600)).To(Succeed())

			Expect(h.run("apps", "deploy", "--manifest", manifest, "--code", code)).To(Succeed())

			last := h.server.Last()
			Expect(last.Header.Get("Content-Type")).To(HavePrefix("multipart/form-data"))
			Expect(string(last.Body)).To(ContainSubstring("PK-zip-bytes"))
			Expect(string(last.Body)).To(ContainSubstring(`"name":"summarize"`))
		})

		It("surfaces API errors", func() {
			Expect(h.run("apps", "delete", "missing")).To(MatchError(cloud.ErrNotFound))
		})
	})

	Describe("requests", func() {
		const progressPath = "/v1/namespaces/default/applications/summarize/requests/req-1/progress"

		It("shows a request and its function runs", func() {
			h.server.JSON(http.MethodGet, "/v1/namespaces/default/applications/summarize/requests/req-1", http.StatusOK, map[string]any{
				"id":                  "req-1",
				"application_version": "v3",
				"created_at":          1700000000000,
				"outcome":             map[string]string{"failure": "timeout"},
				"function_runs": []map[string]any{
					{"id": "fr-1", "name": "fetch", "status": "completed", "outcome": "failure"},
				},
			})

			Expect(h.run("requests", "get", "summarize", "req-1")).To(Succeed())

			out := h.stdout.String()
			Expect(out).To(ContainSubstring("failure (timeout)"))
			Expect(out).To(ContainSubstring("fetch"))
		})

		It("writes request output to a file", func() {
			h.server.Handle(http.MethodGet, "/v1/namespaces/default/applications/summarize/requests/req-1/output", func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"summary":"ok"}`)
			})
			target := filepath.Join(h.configDir, "out.json")

			Expect(h.run("requests", "output", "summarize", "req-1", "-o", target)).To(Succeed())

			data, err := os.ReadFile(target)
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(MatchJSON(`{"summary":"ok"}`))
		})

		It("follows live progress until the request finishes", func() {
			h.server.Stream(progressPath,
				`data: {"RequestStarted":{"request_id":"req-1","application_version":"v3"}}`+"\n\n",
				`data: {"FunctionRunCreated":{"request_id":"req-1","application_version":"v3",`,
				`"function_name":"fetch","function_run_id":"fr-1"}}`+"\n\n",
				"data: {oops}\n\n",
				`data: {"RequestFinished":{"request_id":"req-1","application_version":"v3","outcome":"success"}}`+"\n\n",
				`data: {"FunctionRunCreated":{"request_id":"req-1","application_version":"v3","function_name":"never-read"}}`+"\n\n",
			)

			Expect(h.run("requests", "progress", "summarize", "req-1", "--follow", "--read-size", "16")).To(Succeed())

			out := h.stdout.String()
			Expect(out).To(ContainSubstring("Request Started"))
			Expect(out).To(ContainSubstring("Function Run Created: fetch"))
			Expect(out).To(ContainSubstring("Request Finished: success"))
			Expect(out).NotTo(ContainSubstring("never-read"))
			Expect(h.stderr.String()).To(ContainSubstring("skipping malformed progress event"))
		})

		It("appends debug logs to --log-file", func() {
			h.server.Stream(progressPath,
				"data: {oops}\n",
				`data: {"RequestFinished":{"request_id":"req-1","application_version":"v3","outcome":"success"}}`+"\n",
			)
			logFile := filepath.Join(h.configDir, "cloudctl.log")

			Expect(h.run("requests", "progress", "summarize", "req-1", "-f", "--log-file", logFile)).To(Succeed())

			data, err := os.ReadFile(logFile)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"msg":"skipping malformed progress event"`))
			Expect(string(data)).To(ContainSubstring(`"level":"DEBUG"`))
		})

		It("fails when the followed request fails", func() {
			h.server.Stream(progressPath,
				`data: {"RequestFinished":{"request_id":"req-1","application_version":"v3","outcome":{"failure":"oom"}}}`+"\n\n",
			)

			err := h.run("requests", "progress", "summarize", "req-1", "-f")
			Expect(err).To(MatchError(ContainSubstring("request failed")))
			Expect(err.Error()).To(ContainSubstring("oom"))
		})

		It("streams progress events as JSON lines", func() {
			h.server.Stream(progressPath,
				`data: {"RequestStarted":{"request_id":"req-1","application_version":"v3"}}`+"\n\n",
				`data: {"RequestFinished":{"request_id":"req-1","application_version":"v3","outcome":"success"}}`+"\n\n",
			)

			Expect(h.run("requests", "progress", "summarize", "req-1", "-f", "--json")).To(Succeed())

			lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
			Expect(lines).To(HaveLen(2))
			Expect(lines[0]).To(MatchJSON(`{"RequestStarted":{"request_id":"req-1","application_version":"v3"}}`))
		})

		It("resumes paginated progress from the saved cursor", func() {
			var finished atomic.Bool
			h.server.Handle(http.MethodGet, progressPath, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				switch {
				case r.URL.Query().Get("next_token") == "":
					fmt.Fprint(w, `{"updates":[{"RequestStarted":{"request_id":"req-1","application_version":"v3"}}],"next_token":"t1"}`)
				case !finished.Load():
					fmt.Fprint(w, `{"updates":[],"next_token":"t1"}`)
				default:
					fmt.Fprint(w, `{"updates":[{"RequestFinished":{"request_id":"req-1","application_version":"v3","outcome":"success"}}]}`)
				}
			})

			Expect(h.run("requests", "progress", "summarize", "req-1", "--resume")).To(Succeed())
			Expect(h.stdout.String()).To(ContainSubstring("Request Started"))

			cursors, err := os.ReadFile(filepath.Join(h.configDir, "cursors.json"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(cursors)).To(ContainSubstring(`"next_token": "t1"`))

			Expect(h.run("requests", "cursors")).To(Succeed())
			Expect(h.stdout.String()).To(ContainSubstring("summarize/req-1"))

			finished.Store(true)
			Expect(h.run("requests", "progress", "summarize", "req-1", "--resume")).To(Succeed())

			out := h.stdout.String()
			Expect(out).NotTo(ContainSubstring("Request Started"))
			Expect(out).To(ContainSubstring("Request Finished: success"))
			Expect(h.server.Last().Query.Get("next_token")).To(Equal("t1"))

			cursors, err = os.ReadFile(filepath.Join(h.configDir, "cursors.json"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(cursors)).NotTo(ContainSubstring("req-1"))
		})

		It("rejects --follow together with --resume", func() {
			Expect(h.run("requests", "progress", "summarize", "req-1", "-f", "--resume")).NotTo(Succeed())
		})
	})

	Describe("builds", func() {
		It("lists builds with filters", func() {
			h.server.JSON(http.MethodGet, "/images/v2/builds", http.StatusOK, map[string]any{
				"items": []map[string]any{
					{"public_id": "b-1", "name": "summarize-fetch", "status": "failed", "creation_time": "2026-01-02T03:04:05Z"},
				},
				"total_items": 1, "page": 1, "page_size": 20, "total_pages": 1,
			})

			Expect(h.run("builds", "list", "--status", "failed", "--app", "summarize")).To(Succeed())

			Expect(h.stdout.String()).To(ContainSubstring("b-1"))
			Expect(h.stdout.String()).To(ContainSubstring("page 1 of 1, 1 builds"))
			Expect(h.server.Last().Query.Get("status")).To(Equal("failed"))
			Expect(h.server.Last().Query.Get("graph_name")).To(Equal("summarize"))
		})

		It("streams build logs and copies the raw stream", func() {
			chunks := []string{
				`data: {"build_id":"b-1","message":"step 1/2","stream":"stdout","sequence_number":1,"build_status":"building"}` + "\n",
				`data: {"build_id":"b-1","message":"done","stream":"stdout","sequence_number":2,"build_status":"succeeded"}` + "\n",
			}
			h.server.Stream("/images/v2/builds/b-1/logs", chunks...)
			raw := filepath.Join(h.configDir, "build.sse")

			Expect(h.run("builds", "logs", "b-1", "--raw", raw)).To(Succeed())

			Expect(h.stdout.String()).To(ContainSubstring("step 1/2"))
			Expect(h.stdout.String()).To(ContainSubstring("done"))

			data, err := os.ReadFile(raw)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal(strings.Join(chunks, "")))
		})

		It("waits for a build to succeed", func() {
			h.server.JSON(http.MethodGet, "/images/v2/builds/b-1", http.StatusOK, map[string]any{
				"id": "b-1", "status": "succeeded", "image_hash": "sha256:abc",
			})

			Expect(h.run("builds", "wait", "b-1", "--interval", "1ms")).To(Succeed())
			Expect(h.stdout.String()).To(ContainSubstring("sha256:abc"))
		})

		It("fails the wait when the build fails", func() {
			h.server.JSON(http.MethodGet, "/images/v2/builds/b-1", http.StatusOK, map[string]any{
				"id": "b-1", "status": "failed", "error_message": "missing base image",
			})

			err := h.run("builds", "wait", "b-1", "--interval", "1ms", "--json")
			Expect(err).To(MatchError(ContainSubstring("missing base image")))
			Expect(h.stdout.String()).To(ContainSubstring(`"status": "failed"`))
		})

		It("cancels a build", func() {
			h.server.JSON(http.MethodPost, "/images/v2/builds/b-1/cancel", http.StatusOK, map[string]string{"status": "canceling"})

			Expect(h.run("builds", "cancel", "b-1")).To(Succeed())
			Expect(h.server.Last().Method).To(Equal(http.MethodPost))
		})
	})

	Describe("secrets", func() {
		const secretsPath = "/platform/v1/organizations/org-1/projects/proj-1/secrets"

		It("requires an organization and project", func() {
			Expect(h.run("secrets", "list")).To(MatchError(session.ErrNoScope))
			Expect(h.server.Requests()).To(BeEmpty())
		})

		It("sets several secrets in one request", func() {
			h.server.JSON(http.MethodPut, secretsPath, http.StatusOK, []map[string]string{
				{"id": "s-1", "name": "A", "createdAt": "2026-01-01T00:00:00Z"},
				{"id": "s-2", "name": "B", "createdAt": "2026-01-01T00:00:00Z"},
			})

			Expect(h.run("secrets", "set", "A=1", "B=x=y", "--org", "org-1", "--project", "proj-1")).To(Succeed())

			Expect(h.server.Last().Body).To(MatchJSON(`[{"name":"A","value":"1"},{"name":"B","value":"x=y"}]`))
			Expect(h.stdout.String()).To(ContainSubstring("s-2"))
		})

		It("rejects malformed assignments", func() {
			Expect(h.run("secrets", "set", "NOVALUE", "--org", "org-1", "--project", "proj-1")).To(MatchError(ContainSubstring("NAME=VALUE")))
			Expect(h.server.Requests()).To(BeEmpty())
		})

		It("deletes a secret by name", func() {
			h.server.JSON(http.MethodGet, secretsPath, http.StatusOK, map[string]any{
				"items":      []map[string]string{{"id": "s-9", "name": "HF_TOKEN"}},
				"pagination": map[string]any{"total": 1},
			})
			h.server.JSON(http.MethodDelete, secretsPath+"/s-9", http.StatusNoContent, nil)

			Expect(h.run("secrets", "delete", "HF_TOKEN", "--org", "org-1", "--project", "proj-1")).To(Succeed())
			Expect(h.server.Last().Method).To(Equal(http.MethodDelete))
			Expect(h.server.Last().Path).To(Equal(secretsPath + "/s-9"))
		})

		It("reads the scope from the config file", func() {
			Expect(h.run("config", "set", "api.organization_id", "org-1")).To(Succeed())
			Expect(h.run("config", "set", "api.project_id", "proj-1")).To(Succeed())
			h.server.JSON(http.MethodGet, secretsPath, http.StatusOK, map[string]any{
				"items":      []map[string]string{},
				"pagination": map[string]any{"total": 0},
			})

			Expect(h.run("secrets", "list")).To(Succeed())
			Expect(h.server.Last().Path).To(Equal(secretsPath))
		})
	})
})
