package statuscmder_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	statuscmder "github.com/papercomputeco/lurker/cmd/lurker/status"
	"github.com/papercomputeco/lurker/pkg/dotdir"
	"github.com/papercomputeco/lurker/pkg/reddit"
	"github.com/papercomputeco/lurker/pkg/storage/sqlite"
	"github.com/papercomputeco/lurker/pkg/vector"
)

var _ = Describe("NewStatusCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := statuscmder.NewStatusCmd()
		Expect(cmd.Use).To(Equal("status"))
	})

	It("accepts zero arguments", func() {
		cmd := statuscmder.NewStatusCmd()
		err := cmd.Args(cmd, []string{})
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects any arguments", func() {
		cmd := statuscmder.NewStatusCmd()
		err := cmd.Args(cmd, []string{"extra"})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Status command execution", func() {
	var (
		tmpDir       string
		origDir      string
		origHome     string
		origXDG      string
		origLurkerDB string
		origLurkerSQ string
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "lurker-status-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		origHome = os.Getenv("HOME")
		origXDG = os.Getenv("XDG_DATA_HOME")
		origLurkerDB = os.Getenv("LURKER_DB")
		origLurkerSQ = os.Getenv("LURKER_SQLITE")

		Expect(os.Setenv("HOME", tmpDir)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", "")).To(Succeed())
		Expect(os.Setenv("LURKER_DB", "")).To(Succeed())
		Expect(os.Setenv("LURKER_SQLITE", "")).To(Succeed())

		Expect(os.Chdir(tmpDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		Expect(os.Setenv("HOME", origHome)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", origXDG)).To(Succeed())
		Expect(os.Setenv("LURKER_DB", origLurkerDB)).To(Succeed())
		Expect(os.Setenv("LURKER_SQLITE", origLurkerSQ)).To(Succeed())
		os.RemoveAll(tmpDir)
	})

	It("runs without error when no database exists", func() {
		cmd := statuscmder.NewStatusCmd()
		cmd.SetArgs([]string{})
		Expect(cmd.Execute()).To(Succeed())
	})

	It("reports counts from a populated database", func() {
		ctx := context.Background()
		dbPath := filepath.Join(tmpDir, "lurker.db")

		store, err := sqlite.NewStore(sqlite.Config{Path: dbPath})
		Expect(err).NotTo(HaveOccurred())

		_, err = store.InsertPosts(ctx, []reddit.Post{
			{ID: "p1", Title: "CRM rant", Subreddit: "sales", CreatedUTC: time.Now().UTC()},
			{ID: "p2", Title: "Cold call tips", Subreddit: "SDRs", CreatedUTC: time.Now().UTC()},
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = store.InsertComments(ctx, []reddit.Comment{
			{ID: "c1", PostID: "p1", Body: "same", CreatedUTC: time.Now().UTC()},
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(store.InsertEmbedding(ctx, vector.Embedding{
			PostID:    "p1",
			Vector:    []float32{0.1, 0.2},
			ModelName: "nomic-embed-text",
		})).To(Succeed())
		Expect(store.Close()).To(Succeed())

		cmd := statuscmder.NewStatusCmd()
		cmd.SetArgs([]string{})
		Expect(cmd.Execute()).To(Succeed())
	})

	It("runs without error when sweep state exists", func() {
		dbPath := filepath.Join(tmpDir, "lurker.db")
		store, err := sqlite.NewStore(sqlite.Config{Path: dbPath})
		Expect(err).NotTo(HaveOccurred())
		Expect(store.Close()).To(Succeed())

		lurkerDir := filepath.Join(tmpDir, ".lurker")
		Expect(os.MkdirAll(lurkerDir, 0o755)).To(Succeed())

		state := &dotdir.SweepState{
			RunID:             "20260823-100000",
			StartedAt:         time.Now().Add(-2 * time.Minute),
			CompletedAt:       time.Now(),
			Subreddits:        []string{"sales", "SDRs"},
			Keywords:          []string{"CRM frustrating"},
			PostsCollected:    42,
			CommentsCollected: 84,
			ReportPath:        "reports/collection_report.md",
		}
		data, err := json.MarshalIndent(state, "", "  ")
		Expect(err).NotTo(HaveOccurred())
		Expect(os.WriteFile(filepath.Join(lurkerDir, "sweep.json"), data, 0o644)).To(Succeed())

		cmd := statuscmder.NewStatusCmd()
		cmd.SetArgs([]string{})
		Expect(cmd.Execute()).To(Succeed())
	})
})
