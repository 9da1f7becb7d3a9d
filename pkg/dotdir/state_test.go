package dotdir_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/lurker/pkg/dotdir"
)

var _ = Describe("sweep state", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "sweep-state-test-*")
		Expect(err).NotTo(HaveOccurred())

		tmpDir, err = filepath.EvalSymlinks(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("LoadSweepState", func() {
		It("returns nil when no state exists", func() {
			state, err := m.LoadSweepState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})

		It("round-trips a saved state", func() {
			saved := &dotdir.SweepState{
				RunID:             "run-123",
				StartedAt:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
				CompletedAt:       time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC),
				Subreddits:        []string{"golang", "programming"},
				Keywords:          []string{"concurrency"},
				PostsCollected:    42,
				CommentsCollected: 180,
				ReportPath:        filepath.Join(tmpDir, "report.md"),
			}
			Expect(m.SaveSweepState(saved, tmpDir)).To(Succeed())

			loaded, err := m.LoadSweepState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(saved))
		})

		It("errors on malformed state files", func() {
			path := filepath.Join(tmpDir, "sweep.json")
			Expect(os.WriteFile(path, []byte("{not json"), 0o644)).To(Succeed())

			_, err := m.LoadSweepState(tmpDir)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("parsing sweep state"))
		})
	})

	Describe("SaveSweepState", func() {
		It("rejects nil state", func() {
			Expect(m.SaveSweepState(nil, tmpDir)).NotTo(Succeed())
		})
	})

	Describe("ClearSweepState", func() {
		It("removes an existing state file", func() {
			state := &dotdir.SweepState{RunID: "run-456"}
			Expect(m.SaveSweepState(state, tmpDir)).To(Succeed())
			Expect(m.ClearSweepState(tmpDir)).To(Succeed())

			loaded, err := m.LoadSweepState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(BeNil())
		})

		It("is a no-op when no state exists", func() {
			Expect(m.ClearSweepState(tmpDir)).To(Succeed())
		})
	})
})
