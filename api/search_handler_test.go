package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	lurkerlogger "github.com/papercomputeco/lurker/pkg/logger"
	"github.com/papercomputeco/lurker/pkg/reddit"
	"github.com/papercomputeco/lurker/pkg/search"
	"github.com/papercomputeco/lurker/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/lurker/pkg/utils/test"
	"github.com/papercomputeco/lurker/pkg/vector"
)

var _ = Describe("handleSearchEndpoint", func() {
	var (
		server   *Server
		store    *inmemory.Store
		embedder *testutils.MockEmbedder
		ctx      context.Context
	)

	BeforeEach(func() {
		logger := lurkerlogger.Nop()
		store = inmemory.NewStore()
		embedder = testutils.NewMockEmbedder()
		ctx = context.Background()

		searcher, err := search.New(search.Config{
			Store:    store,
			Embedder: embedder,
		})
		Expect(err).NotTo(HaveOccurred())

		server = NewServer(
			Config{
				ListenAddr: ":0",
				Searcher:   searcher,
			},
			store,
			logger,
		)
	})

	seedPost := func(id, subreddit, title string, embedding []float32) {
		_, err := store.InsertPosts(ctx, []reddit.Post{{
			ID:         id,
			Subreddit:  subreddit,
			Title:      title,
			Author:     "tester",
			CreatedUTC: time.Now().UTC(),
		}})
		Expect(err).NotTo(HaveOccurred())

		err = store.InsertEmbedding(ctx, vector.Embedding{
			PostID:    id,
			Vector:    embedding,
			ModelName: "nomic-embed-text",
		})
		Expect(err).NotTo(HaveOccurred())
	}

	get := func(path string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, path, nil)
		Expect(err).NotTo(HaveOccurred())

		resp, err := server.app.Test(req)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	Context("when search is not configured", func() {
		It("returns 503", func() {
			noSearchServer := NewServer(Config{ListenAddr: ":0"}, store, lurkerlogger.Nop())

			req, err := http.NewRequest(http.MethodGet, "/v1/search?query=test", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := noSearchServer.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusServiceUnavailable))
		})
	})

	Context("when query parameter is missing", func() {
		It("returns 400", func() {
			resp := get("/v1/search")
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("query parameter is required"))
		})
	})

	Context("when top_k is invalid", func() {
		It("rejects a non-numeric top_k", func() {
			resp := get("/v1/search?query=test&top_k=abc")
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("top_k must be a positive integer"))
		})

		It("rejects a zero top_k", func() {
			resp := get("/v1/search?query=test&top_k=0")
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})

		It("rejects a negative top_k", func() {
			resp := get("/v1/search?query=test&top_k=-3")
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})
	})

	Context("with stored posts", func() {
		BeforeEach(func() {
			seedPost("t3_a", "sales", "CRM complaints", []float32{1, 0, 0})
			seedPost("t3_b", "sales", "Commission math", []float32{0, 1, 0})
			seedPost("t3_c", "SDRs", "CRM alternatives", []float32{0.9, 0.1, 0})
		})

		It("returns ranked results", func() {
			embedder.Embeddings["crm tools"] = []float32{1, 0, 0}

			resp := get("/v1/search?query=" + url.QueryEscape("crm tools"))
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var output search.Output
			Expect(json.NewDecoder(resp.Body).Decode(&output)).To(Succeed())
			Expect(output.Query).To(Equal("crm tools"))
			Expect(output.Count).To(Equal(3))
			Expect(output.Results[0].Post.ID).To(Equal("t3_a"))
			Expect(output.Results[1].Post.ID).To(Equal("t3_c"))
			Expect(output.Results[2].Post.ID).To(Equal("t3_b"))
		})

		It("caps results at top_k", func() {
			embedder.Embeddings["query"] = []float32{1, 0, 0}

			resp := get("/v1/search?query=query&top_k=1")
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var output search.Output
			Expect(json.NewDecoder(resp.Body).Decode(&output)).To(Succeed())
			Expect(output.Count).To(Equal(1))
		})

		It("scopes results to a subreddit", func() {
			embedder.Embeddings["query"] = []float32{1, 0, 0}

			resp := get("/v1/search?query=query&subreddit=SDRs")
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var output search.Output
			Expect(json.NewDecoder(resp.Body).Decode(&output)).To(Succeed())
			Expect(output.Count).To(Equal(1))
			Expect(output.Results[0].Post.ID).To(Equal("t3_c"))
		})
	})

	Context("when embedding the query fails", func() {
		It("returns 500 with the wrapped error", func() {
			embedder.FailOn = "broken"

			resp := get("/v1/search?query=broken")
			Expect(resp.StatusCode).To(Equal(fiber.StatusInternalServerError))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("embedding failed"))
		})
	})
})
