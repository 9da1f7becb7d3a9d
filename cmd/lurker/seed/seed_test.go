package seedcmder

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/lurker/pkg/reddit"
	"github.com/papercomputeco/lurker/pkg/storage/sqlite"
)

var _ = Describe("seed command", func() {
	var (
		origCwd      string
		origLurkerDB string
		origLurkerSQ string
	)

	BeforeEach(func() {
		origLurkerDB = os.Getenv("LURKER_DB")
		origLurkerSQ = os.Getenv("LURKER_SQLITE")
		var err error
		origCwd, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.Setenv("LURKER_DB", origLurkerDB)).To(Succeed())
		Expect(os.Setenv("LURKER_SQLITE", origLurkerSQ)).To(Succeed())
		Expect(os.Chdir(origCwd)).To(Succeed())
	})

	It("seeds into an explicit sqlite path", func() {
		ctx := context.Background()
		baseDir, err := os.MkdirTemp("", "lurker-seed-explicit-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(baseDir)
		})

		dbPath := filepath.Join(baseDir, "lurker.db")

		cmd := NewSeedCmd()
		buf := &bytes.Buffer{}
		cmd.SetOut(buf)
		cmd.SetErr(buf)
		cmd.SetArgs([]string{"--sqlite", dbPath})

		Expect(cmd.ExecuteContext(ctx)).To(Succeed())

		store, err := sqlite.NewStore(sqlite.Config{Path: dbPath})
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		count, err := store.CountPosts(ctx, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(BeNumerically(">", 0))
	})

	It("errors when the default sqlite database already has data", func() {
		ctx := context.Background()
		baseDir, err := os.MkdirTemp("", "lurker-seed-default-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(baseDir)
		})

		Expect(os.Setenv("LURKER_DB", "")).To(Succeed())
		Expect(os.Setenv("LURKER_SQLITE", "")).To(Succeed())
		Expect(os.Chdir(baseDir)).To(Succeed())

		dbPath := filepath.Join(baseDir, "lurker.db")
		store, err := sqlite.NewStore(sqlite.Config{Path: dbPath})
		Expect(err).NotTo(HaveOccurred())
		_, err = store.InsertPosts(ctx, []reddit.Post{{
			ID:         "seeded1",
			Title:      "Already seeded",
			Subreddit:  "sales",
			CreatedUTC: time.Now().UTC(),
		}})
		Expect(err).NotTo(HaveOccurred())
		Expect(store.Close()).To(Succeed())

		cmd := NewSeedCmd()
		buf := &bytes.Buffer{}
		cmd.SetOut(buf)
		cmd.SetErr(buf)
		cmd.SetArgs([]string{})

		err = cmd.ExecuteContext(ctx)
		Expect(err).To(MatchError(ContainSubstring("already has data")))
	})

	It("resolves the demo path when --demo is set", func() {
		cmder := &seedCommander{demo: true}
		Expect(cmder.resolveSQLitePath()).To(Equal("lurker.demo.sqlite"))
	})

	It("prefers an explicit path over --demo", func() {
		cmder := &seedCommander{sqlitePath: "custom.db", demo: true}
		Expect(cmder.resolveSQLitePath()).To(Equal("custom.db"))
	})
})
