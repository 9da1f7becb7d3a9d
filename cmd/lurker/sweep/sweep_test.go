package sweepcmder

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/lurker/pkg/credentials"
)

var _ = Describe("NewSweepCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := NewSweepCmd()
		Expect(cmd.Use).To(Equal("sweep"))
	})

	It("rejects positional arguments", func() {
		cmd := NewSweepCmd()
		err := cmd.Args(cmd, []string{"extra"})
		Expect(err).To(HaveOccurred())
	})

	It("registers the sweep flags", func() {
		cmd := NewSweepCmd()
		Expect(cmd.Flags().Lookup("subreddits")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("keywords")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("posts-per-keyword")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("comments-per-post")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("report-dir")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("show")).NotTo(BeNil())
	})

	It("defaults posts-per-keyword to the research default", func() {
		cmd := NewSweepCmd()
		Expect(cmd.Flags().Lookup("posts-per-keyword").DefValue).To(Equal("200"))
	})
})

var _ = Describe("sweep execution", func() {
	var (
		origClientID string
		origSecret   string
	)

	BeforeEach(func() {
		origClientID = os.Getenv(credentials.EnvClientID)
		origSecret = os.Getenv(credentials.EnvClientSecret)
	})

	AfterEach(func() {
		Expect(os.Setenv(credentials.EnvClientID, origClientID)).To(Succeed())
		Expect(os.Setenv(credentials.EnvClientSecret, origSecret)).To(Succeed())
	})

	It("errors when no subreddits are configured", func() {
		cmder := &sweepCommander{
			keywords: []string{"CRM frustrating"},
		}

		err := cmder.run(context.Background())
		Expect(err).To(MatchError(ContainSubstring("no subreddits configured")))
	})

	It("errors when no keywords are configured", func() {
		cmder := &sweepCommander{
			subreddits: []string{"sales"},
		}

		err := cmder.run(context.Background())
		Expect(err).To(MatchError(ContainSubstring("no keywords configured")))
	})

	It("surfaces missing credentials before touching the network", func() {
		Expect(os.Setenv(credentials.EnvClientID, "")).To(Succeed())
		Expect(os.Setenv(credentials.EnvClientSecret, "")).To(Succeed())

		cmder := &sweepCommander{
			subreddits: []string{"sales"},
			keywords:   []string{"CRM frustrating"},
		}

		err := cmder.run(context.Background())
		Expect(err).To(MatchError(credentials.ErrMissingCredentials))
	})
})
