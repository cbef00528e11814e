package agent_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/hospitalchat/pkg/agent"
	"github.com/papercomputeco/hospitalchat/pkg/logger"
	"github.com/papercomputeco/hospitalchat/pkg/utils"
)

var _ = Describe("Client", func() {
	var (
		server  *httptest.Server
		handler http.HandlerFunc
		client  *agent.Client
	)

	BeforeEach(func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))

		var err error
		client, err = agent.NewClient(agent.Config{URL: server.URL + "/hospital-rag-agent"}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("NewClient", func() {
		It("rejects urls without an http scheme", func() {
			_, err := agent.NewClient(agent.Config{URL: "localhost:8000"}, nil)
			Expect(err).To(HaveOccurred())
		})

		It("rejects urls without a host", func() {
			_, err := agent.NewClient(agent.Config{URL: "http:///x"}, nil)
			Expect(err).To(MatchError(ContainSubstring("missing host")))
		})
	})

	Describe("Query", func() {
		It("posts the prompt as JSON with the expected headers", func() {
			var (
				gotMethod, gotPath string
				gotHeaders         http.Header
				gotBody            map[string]any
			)
			handler = func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				gotPath = r.URL.Path
				gotHeaders = r.Header.Clone()
				_ = json.NewDecoder(r.Body).Decode(&gotBody)
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{"input":"x","output":"ok","intermediate_steps":[]}`)
			}

			_, err := client.Query(context.Background(), "Which hospitals are in the hospital system?")
			Expect(err).NotTo(HaveOccurred())

			Expect(gotMethod).To(Equal(http.MethodPost))
			Expect(gotPath).To(Equal("/hospital-rag-agent"))
			Expect(gotBody).To(Equal(map[string]any{"text": "Which hospitals are in the hospital system?"}))
			Expect(gotHeaders.Get("Content-Type")).To(Equal("application/json"))
			Expect(gotHeaders.Get("Accept")).To(Equal("application/json"))
			Expect(gotHeaders.Get("User-Agent")).To(Equal(utils.UserAgent()))
			Expect(gotHeaders.Get(agent.RequestIDHeader)).To(HaveLen(36))
		})

		It("returns output and intermediate steps exactly", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"output":"There are 30 hospitals.","intermediate_steps":["step one",{"tool":"cypher"}]}`)
			}

			resp, err := client.Query(context.Background(), "q")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Output).To(Equal("There are 30 hospitals."))
			Expect(resp.IntermediateSteps).To(MatchJSON(`["step one",{"tool":"cypher"}]`))
		})

		It("returns a StatusError for non-200 responses", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = io.WriteString(w, "agent exploded")
			}

			_, err := client.Query(context.Background(), "q")
			var statusErr *agent.StatusError
			Expect(errors.As(err, &statusErr)).To(BeTrue())
			Expect(statusErr.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(statusErr.Body).To(Equal("agent exploded"))
		})

		It("treats a 200 with non-JSON body as a decode error", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "<html>oops</html>")
			}

			_, err := client.Query(context.Background(), "q")
			Expect(err).To(MatchError(agent.ErrDecode))
		})

		It("treats a 200 without output as a decode error", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"intermediate_steps":[]}`)
			}

			_, err := client.Query(context.Background(), "q")
			Expect(err).To(MatchError(agent.ErrDecode))
		})

		It("truncates long error bodies", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = io.WriteString(w, strings.Repeat("x", 4096))
			}

			_, err := client.Query(context.Background(), "q")
			var statusErr *agent.StatusError
			Expect(errors.As(err, &statusErr)).To(BeTrue())
			Expect(len(statusErr.Body)).To(BeNumerically("<", 600))
		})

		It("honors the configured timeout", func() {
			release := make(chan struct{})
			defer close(release)
			handler = func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-release:
				case <-r.Context().Done():
				}
			}

			slow, err := agent.NewClient(agent.Config{
				URL:     server.URL,
				Timeout: 50 * time.Millisecond,
			}, nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = slow.Query(context.Background(), "q")
			Expect(err).To(MatchError(context.DeadlineExceeded))
		})

		It("wraps transport failures", func() {
			server.Close()
			_, err := client.Query(context.Background(), "q")
			Expect(err).To(MatchError(ContainSubstring("sending request")))
		})
	})

	Describe("SetURL", func() {
		It("routes later calls to the new endpoint", func() {
			other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"output":"from other"}`)
			}))
			defer other.Close()

			Expect(client.SetURL(other.URL)).To(Succeed())
			Expect(client.URL()).To(Equal(other.URL))

			resp, err := client.Query(context.Background(), "q")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Output).To(Equal("from other"))
		})

		It("keeps the old endpoint when the new one is invalid", func() {
			before := client.URL()
			Expect(client.SetURL("not a url")).NotTo(Succeed())
			Expect(client.URL()).To(Equal(before))
		})
	})
})

var _ = Describe("Response.Explanation", func() {
	DescribeTable("renders intermediate steps",
		func(raw string, expected string) {
			r := &agent.Response{IntermediateSteps: json.RawMessage(raw)}
			Expect(r.Explanation()).To(Equal(expected))
		},
		Entry("absent", ``, ""),
		Entry("null", `null`, ""),
		Entry("a JSON string", `"used the reviews tool"`, "used the reviews tool"),
		Entry("an empty list", `[]`, "[]"),
		Entry("a list", `["a",1]`, "[\n  \"a\",\n  1\n]"),
	)
})
