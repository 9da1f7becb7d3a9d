package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	lurkerlogger "github.com/papercomputeco/lurker/pkg/logger"
	"github.com/papercomputeco/lurker/pkg/reddit"
	"github.com/papercomputeco/lurker/pkg/search"
	"github.com/papercomputeco/lurker/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/lurker/pkg/utils/test"
	"github.com/papercomputeco/lurker/pkg/vector"
)

var _ = Describe("Search tool", func() {
	var (
		server   *Server
		store    *inmemory.Store
		embedder *testutils.MockEmbedder
		ctx      context.Context
	)

	BeforeEach(func() {
		store = inmemory.NewStore()
		embedder = testutils.NewMockEmbedder()
		ctx = context.Background()

		searcher, err := search.New(search.Config{
			Store:    store,
			Embedder: embedder,
		})
		Expect(err).NotTo(HaveOccurred())

		server, err = NewServer(Config{
			Store:    store,
			Searcher: searcher,
			Logger:   lurkerlogger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
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

	Describe("handleSearch", func() {
		It("returns ranked posts for a query", func() {
			seedPost("t3_a", "sales", "CRM complaints", []float32{1, 0, 0})
			seedPost("t3_b", "sales", "Commission math", []float32{0, 1, 0})

			embedder.Embeddings["crm tools"] = []float32{1, 0, 0}

			result, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "crm tools"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())

			Expect(output.Query).To(Equal("crm tools"))
			Expect(output.Count).To(Equal(2))
			Expect(output.Results[0].Post.ID).To(Equal("t3_a"))
		})

		It("serializes the output into the text content block", func() {
			seedPost("t3_a", "sales", "CRM complaints", []float32{1, 0, 0})
			embedder.Embeddings["query"] = []float32{1, 0, 0}

			result, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "query"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Content).To(HaveLen(1))

			text, ok := result.Content[0].(*mcp.TextContent)
			Expect(ok).To(BeTrue())

			var decoded search.Output
			Expect(json.Unmarshal([]byte(text.Text), &decoded)).To(Succeed())
			Expect(decoded.Count).To(Equal(output.Count))
		})

		It("scopes the search to a subreddit", func() {
			seedPost("t3_a", "sales", "CRM complaints", []float32{1, 0, 0})
			seedPost("t3_b", "SDRs", "Cold call scripts", []float32{1, 0, 0})

			embedder.Embeddings["query"] = []float32{1, 0, 0}

			_, output, err := server.handleSearch(ctx, nil, SearchInput{
				Query:     "query",
				Subreddit: "SDRs",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(output.Count).To(Equal(1))
			Expect(output.Results[0].Post.ID).To(Equal("t3_b"))
		})

		It("flags an empty query as a tool error", func() {
			result, output, err := server.handleSearch(ctx, nil, SearchInput{Query: ""})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(output.Count).To(Equal(0))
		})

		It("flags an embedding failure as a tool error", func() {
			embedder.FailOn = "broken"

			result, _, err := server.handleSearch(ctx, nil, SearchInput{Query: "broken"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
		})
	})

	Describe("handleStatus", func() {
		It("reports an empty corpus", func() {
			result, output, err := server.handleStatus(ctx, nil, StatusInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())

			Expect(output.Posts).To(Equal(0))
			Expect(output.Embeddings).To(Equal(0))
			Expect(output.MissingEmbeddings).To(Equal(0))
		})

		It("reports corpus counts", func() {
			seedPost("t3_a", "sales", "CRM complaints", []float32{1, 0, 0})

			_, err := store.InsertPosts(ctx, []reddit.Post{{
				ID:         "t3_b",
				Subreddit:  "SDRs",
				Title:      "No embedding yet",
				Author:     "tester",
				CreatedUTC: time.Now().UTC(),
			}})
			Expect(err).NotTo(HaveOccurred())

			_, output, err := server.handleStatus(ctx, nil, StatusInput{})
			Expect(err).NotTo(HaveOccurred())

			Expect(output.Posts).To(Equal(2))
			Expect(output.Embeddings).To(Equal(1))
			Expect(output.MissingEmbeddings).To(Equal(1))
			Expect(output.BySubreddit["sales"]).To(Equal(1))
			Expect(output.BySubreddit["SDRs"]).To(Equal(1))
		})
	})
})
