package searchcmder

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/lurker/pkg/reddit"
	"github.com/papercomputeco/lurker/pkg/search"
)

var _ = Describe("NewSearchCmd", func() {
	It("requires exactly one query argument", func() {
		cmd := NewSearchCmd()
		cmd.SetArgs([]string{})
		Expect(cmd.Execute()).NotTo(Succeed())

		cmd = NewSearchCmd()
		cmd.SetArgs([]string{"one", "two"})
		Expect(cmd.Execute()).NotTo(Succeed())
	})

	It("registers the result and scope flags", func() {
		cmd := NewSearchCmd()
		Expect(cmd.Flags().Lookup("top")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("subreddit")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("remote")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("api-target")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("quiet")).NotTo(BeNil())
	})
})

var _ = Describe("SearchAPI", func() {
	It("parses a successful response", func() {
		var gotQuery, gotSubreddit, gotTopK string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/v1/search"))
			gotQuery = r.URL.Query().Get("query")
			gotSubreddit = r.URL.Query().Get("subreddit")
			gotTopK = r.URL.Query().Get("top_k")

			out := search.Output{
				Query: gotQuery,
				Results: []search.Result{
					{Post: reddit.Post{ID: "abc123", Title: "CRM rant", Subreddit: "sales"}, Score: 0.91},
				},
				Count: 1,
			}
			Expect(json.NewEncoder(w).Encode(out)).To(Succeed())
		}))
		defer server.Close()

		output, err := SearchAPI(server.URL, "crm frustration", "sales", 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(gotQuery).To(Equal("crm frustration"))
		Expect(gotSubreddit).To(Equal("sales"))
		Expect(gotTopK).To(Equal("5"))
		Expect(output.Count).To(Equal(1))
		Expect(output.Results[0].Post.ID).To(Equal("abc123"))
		Expect(output.Results[0].Score).To(BeNumerically("~", 0.91, 1e-9))
	})

	It("omits the subreddit parameter when unscoped", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Query().Has("subreddit")).To(BeFalse())
			Expect(json.NewEncoder(w).Encode(search.Output{})).To(Succeed())
		}))
		defer server.Close()

		_, err := SearchAPI(server.URL, "anything", "", 3)
		Expect(err).NotTo(HaveOccurred())
	})

	It("surfaces non-200 responses with the status code", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "search is not configured", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := SearchAPI(server.URL, "anything", "", 3)
		Expect(err).To(MatchError(ContainSubstring("HTTP 503")))
		Expect(err).To(MatchError(ContainSubstring("search is not configured")))
	})

	It("reports connection failures against the target", func() {
		_, err := SearchAPI("http://127.0.0.1:1", "anything", "", 3)
		Expect(err).To(MatchError(ContainSubstring("failed to connect")))
	})
})
