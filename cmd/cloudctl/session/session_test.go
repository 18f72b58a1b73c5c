package session_test

import (
	"bytes"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/cloudctl/cmd/cloudctl/session"
	"github.com/papercomputeco/cloudctl/pkg/config"
	"github.com/papercomputeco/cloudctl/pkg/credentials"
	"github.com/papercomputeco/cloudctl/pkg/eventstream"
)

var _ = Describe("Load", func() {
	var (
		configDir string
		loaded    *session.Session
		out       *bytes.Buffer
	)

	// load executes a throwaway command carrying the same flags as the root
	// command plus --read-size, and captures the resolved session.
	load := func(args ...string) error {
		var (
			apiURL    string
			org       string
			project   string
			namespace string
			readSize  int
		)

		cmd := &cobra.Command{
			Use: "probe",
			RunE: func(cmd *cobra.Command, _ []string) error {
				s, err := session.Load(cmd, config.FlagReadSize)
				loaded = s
				return err
			},
		}
		cmd.PersistentFlags().Bool("debug", false, "")
		cmd.PersistentFlags().String("config-dir", "", "")
		cmd.PersistentFlags().String("profile", "", "")
		cmd.PersistentFlags().Bool("json", false, "")
		config.AddStringFlag(cmd, config.Registry, config.FlagAPIURL, &apiURL)
		config.AddStringFlag(cmd, config.Registry, config.FlagOrg, &org)
		config.AddStringFlag(cmd, config.Registry, config.FlagProject, &project)
		config.AddStringFlag(cmd, config.Registry, config.FlagNamespace, &namespace)
		config.AddIntFlag(cmd, config.Registry, config.FlagReadSize, &readSize)

		cmd.SetOut(out)
		cmd.SetErr(out)
		cmd.SetArgs(append(args, "--config-dir", configDir))
		return cmd.Execute()
	}

	BeforeEach(func() {
		var err error
		configDir, err = os.MkdirTemp("", "cloudctl-session-test-*")
		Expect(err).NotTo(HaveOccurred())
		out = &bytes.Buffer{}
		loaded = nil
	})

	AfterEach(func() {
		os.Unsetenv("CLOUDCTL_API_NAMESPACE")
		os.Unsetenv(credentials.TokenEnvVar)
		os.RemoveAll(configDir)
	})

	It("falls back to defaults", func() {
		Expect(load()).To(Succeed())
		Expect(loaded.Config.API.URL).To(Equal(config.NewDefaultConfig().API.URL))
		Expect(loaded.Namespace()).To(Equal("default"))
		Expect(loaded.Config.Stream.ReadSize).To(Equal(config.NewDefaultConfig().Stream.ReadSize))
		Expect(loaded.ConfigDir).To(Equal(configDir))
	})

	It("applies config file, environment and flags in increasing precedence", func() {
		cfger, err := config.NewConfiger(configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfger.SetConfigValue("api.namespace", "from-file")).To(Succeed())
		Expect(cfger.SetConfigValue("api.project_id", "proj-file")).To(Succeed())
		Expect(cfger.SetConfigValue("stream.read_size", "512")).To(Succeed())

		Expect(load()).To(Succeed())
		Expect(loaded.Namespace()).To(Equal("from-file"))
		Expect(loaded.Config.Stream.ReadSize).To(Equal(512))

		Expect(os.Setenv("CLOUDCTL_API_NAMESPACE", "from-env")).To(Succeed())
		Expect(load()).To(Succeed())
		Expect(loaded.Namespace()).To(Equal("from-env"))
		Expect(loaded.Config.API.ProjectID).To(Equal("proj-file"))

		Expect(load("-n", "from-flag", "--read-size", "64")).To(Succeed())
		Expect(loaded.Namespace()).To(Equal("from-flag"))
		Expect(loaded.Config.Stream.ReadSize).To(Equal(64))
	})

	Describe("Scope", func() {
		It("returns ErrNoScope until both ids are set", func() {
			Expect(load("--org", "org-1")).To(Succeed())
			_, _, err := loaded.Scope()
			Expect(err).To(MatchError(session.ErrNoScope))

			Expect(load("--org", "org-1", "--project", "proj-1")).To(Succeed())
			org, project, err := loaded.Scope()
			Expect(err).NotTo(HaveOccurred())
			Expect(org).To(Equal("org-1"))
			Expect(project).To(Equal("proj-1"))
		})
	})

	Describe("SDK", func() {
		It("fails without a token", func() {
			Expect(load()).To(Succeed())
			_, err := loaded.SDK()
			Expect(err).To(MatchError(credentials.ErrNoToken))
		})

		It("builds a client when a token is available", func() {
			Expect(os.Setenv(credentials.TokenEnvVar, "tok")).To(Succeed())
			Expect(load()).To(Succeed())

			client, err := loaded.SDK()
			Expect(err).NotTo(HaveOccurred())
			Expect(client.Applications).NotTo(BeNil())
			Expect(client.Secrets).NotTo(BeNil())
		})
	})

	Describe("Publisher", func() {
		It("discards events when publishing is disabled", func() {
			Expect(load()).To(Succeed())

			pool, err := loaded.Publisher()
			Expect(err).NotTo(HaveOccurred())

			source := loaded.Source()
			source.RequestID = "req-1"
			loaded.Forward(pool, eventstream.EventTypeRequestProgress, source, map[string]string{"k": "v"})

			Expect(pool.Close()).To(Succeed())
			Expect(pool.Stats().Published).To(Equal(uint64(1)))
		})
	})

	It("writes indented JSON to the command output", func() {
		Expect(load()).To(Succeed())
		out.Reset()
		Expect(loaded.PrintJSON(map[string]int{"n": 1})).To(Succeed())
		Expect(out.String()).To(Equal("{\n  \"n\": 1\n}\n"))
	})
})
