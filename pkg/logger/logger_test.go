package logger_test

import (
	"bytes"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/lurker/pkg/logger"
)

func TestLogger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Logger Suite")
}

var _ = Describe("NewLoggerWithWriters", func() {
	It("writes info logs to the provided writer", func() {
		var buf bytes.Buffer
		l := logger.NewLoggerWithWriters(false, &buf)
		l.Info("hello", zap.String("key", "value"))
		Expect(l.Sync()).To(Succeed())

		output := buf.String()
		Expect(output).To(ContainSubstring("hello"))
		Expect(output).To(ContainSubstring("value"))
	})

	It("emits debug logs when debug is enabled", func() {
		var buf bytes.Buffer
		l := logger.NewLoggerWithWriters(true, &buf)
		l.Debug("debug msg")
		Expect(l.Sync()).To(Succeed())

		Expect(buf.String()).To(ContainSubstring("debug msg"))
	})

	It("filters debug logs when debug is disabled", func() {
		var buf bytes.Buffer
		l := logger.NewLoggerWithWriters(false, &buf)
		l.Debug("hidden")
		Expect(l.Sync()).To(Succeed())

		Expect(buf.String()).To(BeEmpty())
	})

	It("duplicates output across multiple writers", func() {
		var buf1, buf2 bytes.Buffer
		l := logger.NewLoggerWithWriters(false, &buf1, &buf2)
		l.Info("multi")
		Expect(l.Sync()).To(Succeed())

		Expect(buf1.String()).To(ContainSubstring("multi"))
		Expect(buf2.String()).To(ContainSubstring("multi"))
	})
})
