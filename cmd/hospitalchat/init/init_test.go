package initcmder_test

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	initcmder "github.com/papercomputeco/hospitalchat/cmd/hospitalchat/init"
	"github.com/papercomputeco/hospitalchat/pkg/config"
)

var _ = Describe("NewInitCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := initcmder.NewInitCmd()
		Expect(cmd.Use).To(Equal("init"))
	})

	It("rejects any arguments", func() {
		cmd := initcmder.NewInitCmd()
		Expect(cmd.Args(cmd, []string{})).To(Succeed())
		Expect(cmd.Args(cmd, []string{"extra"})).NotTo(Succeed())
	})

	It("has a --preset flag", func() {
		cmd := initcmder.NewInitCmd()
		f := cmd.Flags().Lookup("preset")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal(""))
	})
})

var _ = Describe("Init command execution", func() {
	var (
		tmpDir  string
		origDir string
	)

	run := func(args ...string) error {
		cmd := initcmder.NewInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "hospitalchat-init-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		Expect(os.Chdir(tmpDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tmpDir)
	})

	It("creates a .hospitalchat directory with a default config", func() {
		Expect(run()).To(Succeed())

		info, err := os.Stat(filepath.Join(tmpDir, ".hospitalchat"))
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())

		cfg := loadConfig(tmpDir)
		Expect(cfg.Version).To(Equal(config.CurrentV))
		Expect(cfg.Agent.URL).To(Equal(config.DefaultAgentURL))
	})

	It("does not overwrite an existing config without --preset", func() {
		dir := filepath.Join(tmpDir, ".hospitalchat")
		Expect(os.MkdirAll(dir, 0o755)).To(Succeed())
		existing := "[agent]\nurl = \"http://mine:8000/x\"\n"
		Expect(os.WriteFile(filepath.Join(dir, "config.toml"), []byte(existing), 0o600)).To(Succeed())

		Expect(run()).To(Succeed())

		data, err := os.ReadFile(filepath.Join(dir, "config.toml"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(existing))
	})

	Describe("--preset", func() {
		It("writes the compose preset", func() {
			Expect(run("--preset", "compose")).To(Succeed())

			cfg := loadConfig(tmpDir)
			Expect(cfg.Agent.URL).To(Equal("http://chatbot_api:8000/hospital-rag-agent"))
			Expect(cfg.Web.Listen).To(Equal(":8501"))
			Expect(cfg.Log.JSON).To(BeTrue())
		})

		It("overwrites the config when re-run with a different preset", func() {
			Expect(run("--preset", "compose")).To(Succeed())
			Expect(run("--preset", "local")).To(Succeed())

			cfg := loadConfig(tmpDir)
			Expect(cfg.Agent.URL).To(Equal(config.DefaultAgentURL))
		})

		It("rejects unknown preset names", func() {
			err := run("--preset", "invalid")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("unknown preset"))
		})
	})

	Describe("--preset with remote URL", func() {
		It("fetches and writes remote config.toml", func() {
			remoteCfg := `version = 0

[agent]
url = "https://agent.example.com/hospital-rag-agent"
timeout = "2m"

[web]
listen = ":9090"
`
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, remoteCfg)
			}))
			defer server.Close()

			Expect(run("--preset", server.URL)).To(Succeed())

			cfg := loadConfig(tmpDir)
			Expect(cfg.Agent.URL).To(Equal("https://agent.example.com/hospital-rag-agent"))
			Expect(cfg.Agent.Timeout).To(Equal("2m"))
			Expect(cfg.Web.Listen).To(Equal(":9090"))
		})

		It("returns error for non-200 HTTP response", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			err := run("--preset", server.URL)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("HTTP 404"))
		})

		It("returns error for invalid TOML from URL", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, "this is not valid toml [[[")
			}))
			defer server.Close()

			err := run("--preset", server.URL)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("parsing"))
		})

		It("returns error for unreachable URL", func() {
			err := run("--preset", "http://127.0.0.1:1")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("fetching remote config"))
		})
	})
})

// loadConfig reads and parses the config.toml from the .hospitalchat
// directory within baseDir.
func loadConfig(baseDir string) *config.Config {
	data, err := os.ReadFile(filepath.Join(baseDir, ".hospitalchat", "config.toml"))
	ExpectWithOffset(1, err).NotTo(HaveOccurred())

	cfg := &config.Config{}
	ExpectWithOffset(1, toml.Unmarshal(data, cfg)).To(Succeed())
	return cfg
}
