package sqlitepath

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ResolveSQLitePath", func() {
	var (
		origHome     string
		origXDG      string
		origLurkerDB string
		origLurkerSQ string
		origCwd      string
	)

	BeforeEach(func() {
		origHome = os.Getenv("HOME")
		origXDG = os.Getenv("XDG_DATA_HOME")
		origLurkerDB = os.Getenv("LURKER_DB")
		origLurkerSQ = os.Getenv("LURKER_SQLITE")
		var err error
		origCwd, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.Setenv("HOME", origHome)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", origXDG)).To(Succeed())
		Expect(os.Setenv("LURKER_DB", origLurkerDB)).To(Succeed())
		Expect(os.Setenv("LURKER_SQLITE", origLurkerSQ)).To(Succeed())
		Expect(os.Chdir(origCwd)).To(Succeed())
	})

	It("returns the override unchanged", func() {
		path, err := ResolveSQLitePath("/somewhere/else.db")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/somewhere/else.db"))
	})

	It("prefers LURKER_SQLITE when set", func() {
		Expect(os.Setenv("LURKER_SQLITE", "/tmp/custom.db")).To(Succeed())
		Expect(os.Setenv("LURKER_DB", "")).To(Succeed())

		path, err := ResolveSQLitePath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/custom.db"))
	})

	It("falls back to LURKER_DB when LURKER_SQLITE is unset", func() {
		Expect(os.Setenv("LURKER_SQLITE", "")).To(Succeed())
		Expect(os.Setenv("LURKER_DB", "/tmp/fallback.db")).To(Succeed())

		path, err := ResolveSQLitePath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/fallback.db"))
	})

	It("resolves ~/.lurker/lurker.db when present", func() {
		homeDir, err := os.MkdirTemp("", "lurker-home-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(homeDir)
		})

		tmpDir, err := os.MkdirTemp("", "lurker-cwd-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(tmpDir)
		})

		Expect(os.Setenv("HOME", homeDir)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", "")).To(Succeed())
		Expect(os.Setenv("LURKER_DB", "")).To(Succeed())
		Expect(os.Setenv("LURKER_SQLITE", "")).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())

		dbPath := filepath.Join(homeDir, ".lurker", "lurker.db")
		Expect(os.MkdirAll(filepath.Dir(dbPath), 0o755)).To(Succeed())
		Expect(os.WriteFile(dbPath, []byte("test"), 0o644)).To(Succeed())

		path, err := ResolveSQLitePath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(dbPath))
	})

	It("resolves lurker.db in the current directory", func() {
		homeDir, err := os.MkdirTemp("", "lurker-home-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(homeDir)
		})

		tmpDir, err := os.MkdirTemp("", "lurker-cwd-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(tmpDir)
		})

		Expect(os.Setenv("HOME", homeDir)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", "")).To(Succeed())
		Expect(os.Setenv("LURKER_DB", "")).To(Succeed())
		Expect(os.Setenv("LURKER_SQLITE", "")).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())

		Expect(os.WriteFile(filepath.Join(tmpDir, "lurker.db"), []byte("test"), 0o644)).To(Succeed())

		path, err := ResolveSQLitePath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("lurker.db"))
	})

	It("resolves the demo database only when no real one exists", func() {
		homeDir, err := os.MkdirTemp("", "lurker-home-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(homeDir)
		})

		tmpDir, err := os.MkdirTemp("", "lurker-cwd-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(tmpDir)
		})

		Expect(os.Setenv("HOME", homeDir)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", "")).To(Succeed())
		Expect(os.Setenv("LURKER_DB", "")).To(Succeed())
		Expect(os.Setenv("LURKER_SQLITE", "")).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())

		Expect(os.WriteFile(filepath.Join(tmpDir, "lurker.demo.sqlite"), []byte("test"), 0o644)).To(Succeed())

		path, err := ResolveSQLitePath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("lurker.demo.sqlite"))

		Expect(os.WriteFile(filepath.Join(tmpDir, "lurker.db"), []byte("test"), 0o644)).To(Succeed())

		path, err = ResolveSQLitePath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("lurker.db"))
	})

	It("errors when nothing resolves", func() {
		homeDir, err := os.MkdirTemp("", "lurker-home-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(homeDir)
		})

		tmpDir, err := os.MkdirTemp("", "lurker-cwd-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(tmpDir)
		})

		Expect(os.Setenv("HOME", homeDir)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", "")).To(Succeed())
		Expect(os.Setenv("LURKER_DB", "")).To(Succeed())
		Expect(os.Setenv("LURKER_SQLITE", "")).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())

		_, err = ResolveSQLitePath("")
		Expect(err).To(MatchError(ContainSubstring("pass --sqlite")))
	})
})
