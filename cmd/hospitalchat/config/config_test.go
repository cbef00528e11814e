package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/papercomputeco/hospitalchat/cmd/hospitalchat/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir  string
		origDir string
		out     *bytes.Buffer
	)

	run := func(args ...string) error {
		cmd := configcmder.NewConfigCmd()
		cmd.SetOut(out)
		cmd.SetErr(out)
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "hospitalchat-config-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		// Create a local .hospitalchat dir so the manager picks it up
		err = os.MkdirAll(filepath.Join(tmpDir, ".hospitalchat"), 0o755)
		Expect(err).NotTo(HaveOccurred())

		err = os.Chdir(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		out = &bytes.Buffer{}
	})

	AfterEach(func() {
		err := os.Chdir(origDir)
		Expect(err).NotTo(HaveOccurred())
		os.RemoveAll(tmpDir)
	})

	Describe("set subcommand", func() {
		It("sets a config value successfully", func() {
			Expect(run("set", "agent.url", "http://chatbot_api:8000/hospital-rag-agent")).To(Succeed())

			_, err := os.Stat(filepath.Join(tmpDir, ".hospitalchat", "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(out.String()).To(ContainSubstring("agent.url"))
		})

		It("rejects unknown keys", func() {
			Expect(run("set", "invalid_key", "value")).NotTo(Succeed())
		})

		It("requires exactly two arguments", func() {
			Expect(run("set", "agent.url")).NotTo(Succeed())
		})

		It("rejects zero arguments", func() {
			Expect(run("set")).NotTo(Succeed())
		})

		It("rejects invalid bool values", func() {
			Expect(run("set", "web.mcp", "sometimes")).NotTo(Succeed())
		})

		It("rejects agent urls without a scheme", func() {
			Expect(run("set", "agent.url", "localhost:8000")).NotTo(Succeed())
		})
	})

	Describe("get subcommand", func() {
		It("gets a previously set value", func() {
			Expect(run("set", "agent.timeout", "2m")).To(Succeed())

			out.Reset()
			Expect(run("get", "agent.timeout")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("2m"))
		})

		It("shows the default agent url when unset", func() {
			Expect(run("get", "agent.url")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("http://localhost:8000/hospital-rag-agent"))
		})

		It("rejects unknown keys", func() {
			Expect(run("get", "invalid_key")).NotTo(Succeed())
		})

		It("requires exactly one argument", func() {
			Expect(run("get")).NotTo(Succeed())
		})
	})

	Describe("list subcommand", func() {
		It("lists every key", func() {
			Expect(run("list")).To(Succeed())
			for _, key := range []string{"agent.url", "agent.timeout", "web.listen", "web.mcp", "log.file", "log.json"} {
				Expect(out.String()).To(ContainSubstring(key))
			}
			Expect(out.String()).To(ContainSubstring("agent.timeout = <not set>"))
		})

		It("rejects any arguments", func() {
			Expect(run("list", "extra")).NotTo(Succeed())
		})
	})
})
