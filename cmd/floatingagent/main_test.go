package main

import (
	"os"
	"testing"

	"github.com/mtlprog/floatingagent/internal/config"
	"github.com/stretchr/testify/suite"
	"github.com/urfave/cli/v2"
)

type AppTestSuite struct {
	suite.Suite
}

func TestAppTestSuite(t *testing.T) {
	suite.Run(t, new(AppTestSuite))
}

// run executes the app with every server action replaced by one that
// captures the loaded config.
func (s *AppTestSuite) run(args ...string) *config.Config {
	var cfg *config.Config
	capture := func(c *cli.Context) error {
		cfg = loadConfig(c)
		return nil
	}

	app := newApp()
	app.Action = capture
	for _, cmd := range app.Commands {
		if cmd.Name == "serve" {
			cmd.Action = capture
		}
	}

	s.Require().NoError(app.Run(append([]string{"floatingagent"}, args...)))
	s.Require().NotNil(cfg)
	return cfg
}

func (s *AppTestSuite) setServerEnv() {
	s.T().Setenv("PORT", "38111")
	s.T().Setenv("CORS_ORIGINS", "https://x.example, https://y.example")
	s.T().Setenv("MAX_BODY_BYTES", "1024")
	s.T().Setenv("WEAVY_URL", "https://weavy.example")
	s.T().Setenv("WEAVY_API_KEY", "wys_key")
}

// Test 1: The root action reads the server environment without serve
func (s *AppTestSuite) TestRootAction_ReadsServerEnv() {
	s.setServerEnv()

	cfg := s.run()

	s.Equal("38111", cfg.Port)
	s.Equal([]string{"https://x.example", "https://y.example"}, cfg.CORSOrigins)
	s.Equal(int64(1024), cfg.MaxBodyBytes)
	s.Equal("https://weavy.example", cfg.WeavyURL)
	s.Equal("wys_key", cfg.WeavyAPIKey)
}

// Test 2: serve reads the same environment
func (s *AppTestSuite) TestServe_ReadsServerEnv() {
	s.setServerEnv()

	cfg := s.run("serve")

	s.Equal("38111", cfg.Port)
	s.Equal([]string{"https://x.example", "https://y.example"}, cfg.CORSOrigins)
	s.Equal(int64(1024), cfg.MaxBodyBytes)
}

// Test 3: Defaults apply when nothing is set
func (s *AppTestSuite) TestRootAction_Defaults() {
	// Setenv restores the variables after the test; unset them until then.
	for _, name := range []string{"PORT", "CORS_ORIGINS", "MAX_BODY_BYTES"} {
		s.T().Setenv(name, "")
		s.Require().NoError(os.Unsetenv(name))
	}

	cfg := s.run()

	s.Equal(config.DefaultPort, cfg.Port)
	s.Equal([]string{"*"}, cfg.CORSOrigins)
	s.Equal(int64(config.DefaultMaxBodyBytes), cfg.MaxBodyBytes)
}

// Test 4: Command line flags win over the environment
func (s *AppTestSuite) TestRootAction_FlagOverridesEnv() {
	s.setServerEnv()

	cfg := s.run("--port", "4000")

	s.Equal("4000", cfg.Port)
}
