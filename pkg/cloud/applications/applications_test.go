package applications_test

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/cloudctl/pkg/cloud"
	"github.com/papercomputeco/cloudctl/pkg/cloud/applications"
	testutils "github.com/papercomputeco/cloudctl/pkg/utils/test"
)

var _ = Describe("Client", func() {
	var (
		ctx    context.Context
		server *testutils.APIServer
		client *applications.Client
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = testutils.NewAPIServer()
		DeferCleanup(server.Close)

		api, err := cloud.New(server.URL, cloud.WithToken("tok"))
		Expect(err).NotTo(HaveOccurred())
		client = applications.NewClient(api)
	})

	Describe("List", func() {
		It("sends pagination options and fills in the namespace", func() {
			server.JSON(http.MethodGet, "/v1/namespaces/default/applications", http.StatusOK, map[string]any{
				"applications": []map[string]any{
					{"name": "summarize", "version": "3", "description": "Summarize documents", "state": "active"},
					{"name": "legacy", "version": "1", "state": map[string]any{"disabled": map[string]string{"reason": "quota"}}},
				},
				"cursor": "c2",
			})

			list, err := client.List(ctx, "default", applications.ListOptions{
				Limit:     2,
				Cursor:    "c1",
				Direction: applications.Backward,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(list.Applications).To(HaveLen(2))
			Expect(list.Applications[0].Namespace).To(Equal("default"))
			Expect(list.Applications[0].State.Disabled).To(BeFalse())
			Expect(list.Applications[1].State.String()).To(Equal("disabled: quota"))
			Expect(*list.Cursor).To(Equal("c2"))

			q := server.Last().Query
			Expect(q.Get("limit")).To(Equal("2"))
			Expect(q.Get("cursor")).To(Equal("c1"))
			Expect(q.Get("direction")).To(Equal("backward"))
		})

		It("omits unset options", func() {
			server.JSON(http.MethodGet, "/v1/namespaces/default/applications", http.StatusOK, map[string]any{"applications": []any{}})

			_, err := client.List(ctx, "default", applications.ListOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(server.Last().Query).To(BeEmpty())
		})
	})

	Describe("Get", func() {
		It("wraps not found errors", func() {
			_, err := client.Get(ctx, "default", "missing")
			Expect(errors.Is(err, cloud.ErrNotFound)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("missing"))
		})
	})

	Describe("Upsert", func() {
		It("sends the manifest and code as multipart parts", func() {
			server.JSON(http.MethodPost, "/v1/namespaces/default/applications", http.StatusOK, nil)

			app := &applications.Application{Name: "summarize", Version: "4"}
			Expect(client.Upsert(ctx, "default", app, strings.NewReader("PK-zip-bytes"))).To(Succeed())

			req := server.Last()
			mediaType, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
			Expect(err).NotTo(HaveOccurred())
			Expect(mediaType).To(Equal("multipart/form-data"))

			reader := multipart.NewReader(strings.NewReader(string(req.Body)), params["boundary"])
			parts := map[string]string{}
			files := map[string]string{}
			for {
				part, err := reader.NextPart()
				if errors.Is(err, io.EOF) {
					break
				}
				Expect(err).NotTo(HaveOccurred())
				data, err := io.ReadAll(part)
				Expect(err).NotTo(HaveOccurred())
				parts[part.FormName()] = string(data)
				files[part.FormName()] = part.FileName()
			}
			Expect(parts["application"]).To(ContainSubstring(`"name":"summarize"`))
			Expect(parts["code"]).To(Equal("PK-zip-bytes"))
			Expect(files["code"]).To(Equal("code.zip"))
		})
	})

	Describe("Invoke", func() {
		It("posts the input and returns the request id", func() {
			server.JSON(http.MethodPost, "/v1/namespaces/default/applications/summarize", http.StatusOK, map[string]string{"request_id": "req-1"})

			id, err := client.Invoke(ctx, "default", "summarize", map[string]string{"url": "https://example.com"})
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal("req-1"))
			Expect(server.Last().Body).To(MatchJSON(`{"url":"https://example.com"}`))
		})

		It("accepts an empty response", func() {
			server.JSON(http.MethodPost, "/v1/namespaces/default/applications/summarize", http.StatusAccepted, nil)

			id, err := client.Invoke(ctx, "default", "summarize", map[string]int{"n": 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(BeEmpty())
		})
	})

	Describe("requests", func() {
		It("gets a request with its outcome and function runs", func() {
			server.JSON(http.MethodGet, "/v1/namespaces/default/applications/summarize/requests/req-1", http.StatusOK, map[string]any{
				"id":                  "req-1",
				"application_version": "3",
				"created_at":          1700000000,
				"outcome":             map[string]string{"failure": "functionerror"},
				"request_error":       map[string]string{"function_name": "chunk", "message": "boom"},
				"function_runs": []map[string]any{
					{"id": "fr-1", "name": "chunk", "status": "completed", "outcome": "failure", "allocations": []any{}},
				},
			})

			req, err := client.GetRequest(ctx, "default", "summarize", "req-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Outcome.String()).To(Equal("failure (functionerror)"))
			Expect(req.RequestError.Message).To(Equal("boom"))
			Expect(req.FunctionRuns).To(HaveLen(1))
		})

		It("deletes a request", func() {
			server.JSON(http.MethodDelete, "/v1/namespaces/default/applications/summarize/requests/req-1", http.StatusNoContent, nil)

			Expect(client.DeleteRequest(ctx, "default", "summarize", "req-1")).To(Succeed())
			Expect(server.Last().Method).To(Equal(http.MethodDelete))
		})
	})

	Describe("outputs", func() {
		It("downloads a function output with its content type", func() {
			server.Handle(http.MethodGet, "/v1/namespaces/default/applications/summarize/requests/req-1/output/call-9", func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"summary":"ok"}`))
			})

			out, err := client.DownloadFunctionOutput(ctx, "default", "summarize", "req-1", "call-9")
			Expect(err).NotTo(HaveOccurred())
			Expect(out.ContentType).To(Equal("application/json"))
			Expect(string(out.Content)).To(Equal(`{"summary":"ok"}`))
		})

		It("reports no output for 204", func() {
			server.JSON(http.MethodHead, "/v1/namespaces/default/applications/summarize/requests/req-1/output", http.StatusNoContent, nil)

			ok, err := client.CheckRequestOutput(ctx, "default", "summarize", "req-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("reports output for 200", func() {
			server.JSON(http.MethodHead, "/v1/namespaces/default/applications/summarize/requests/req-1/output", http.StatusOK, nil)

			ok, err := client.CheckRequestOutput(ctx, "default", "summarize", "req-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})
	})

	Describe("ProgressUpdates", func() {
		It("pages with next_token", func() {
			server.JSON(http.MethodGet, "/v1/namespaces/default/applications/summarize/requests/req-1/progress", http.StatusOK, map[string]any{
				"updates": []map[string]any{
					{"RequestStarted": map[string]any{"namespace": "default", "application_name": "summarize", "application_version": "3", "request_id": "req-1"}},
				},
				"next_token": "t2",
			})

			page, err := client.ProgressUpdates(ctx, "default", "summarize", "req-1", "t1")
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Updates).To(HaveLen(1))
			Expect(page.Updates[0].Kind).To(Equal(applications.KindRequestStarted))
			Expect(*page.NextToken).To(Equal("t2"))
			Expect(server.Last().Query.Get("next_token")).To(Equal("t1"))
		})
	})

	Describe("StreamProgress", func() {
		It("decodes events split across chunks until the request finishes", func() {
			server.Stream("/v1/namespaces/default/applications/summarize/requests/req-1/progress",
				": open\n\n",
				`data: {"RequestStarted":{"namespace":"default","application_name":"summarize","application_version":"3","request_id":"req-1","created_at":"2025-01-02T03:04:05"}}`+"\n\n",
				`data: {"RequestProgressUpdated":{"request_id":"req-1","application_version":"3","message":"chunking","st`,
				`ep":"2","total":4}}`+"\n\n",
				`data: {"RequestFinished":{"namespace":"default","application_name":"summarize","application_version":"3","request_id":"req-1","outcome":"success"}}`+"\n\n",
			)

			stream, err := client.StreamProgress(ctx, "default", "summarize", "req-1")
			Expect(err).NotTo(HaveOccurred())
			defer stream.Close()

			var events []applications.RequestStateChangeEvent
			for ev, err := range stream.All(ctx) {
				Expect(err).NotTo(HaveOccurred())
				events = append(events, ev)
				if ev.IsTerminal() {
					break
				}
			}

			Expect(events).To(HaveLen(3))
			Expect(events[0].Metadata().CreatedAt.Hour()).To(Equal(3))
			Expect(*events[1].RequestProgressUpdated.Step).To(Equal(2.0))
			Expect(events[1].Describe()).To(Equal("Request Progress Updated: chunking [2/4]"))
			Expect(events[2].IsTerminal()).To(BeTrue())
			Expect(events[2].RequestFinished.Outcome.String()).To(Equal("success"))
			Expect(server.Last().Header.Get("Accept")).To(Equal("text/event-stream"))
		})
	})
})
