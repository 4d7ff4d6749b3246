package config_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/freightlane/sitekit/config"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) TestFromEnvDefaults() {
	cfg, err := config.FromEnv[config.SiteConfig]()
	s.Require().NoError(err)

	s.Equal("info", cfg.LoggingLevel())
	s.Equal(":8080", cfg.HTTPPort)
	s.Equal("en", cfg.DefaultLocale)
	s.Equal([]string{"en", "de"}, cfg.Locales())
	s.Equal("fl_lang", cfg.LocaleCookieName)
	s.Equal("lang", cfg.LocaleQueryParam)
}

func (s *ConfigSuite) TestFromEnvOverrides() {
	s.T().Setenv("LOG_LEVEL", "debug")
	s.T().Setenv("SUPPORTED_LOCALES", "en, de ,fr")
	s.T().Setenv("DEFAULT_LOCALE", "de")

	cfg, err := config.FromEnv[config.SiteConfig]()
	s.Require().NoError(err)

	s.True(cfg.LoggingLevelIsDebug())
	s.Equal("de", cfg.DefaultLocale)
	s.Equal([]string{"en", "de", "fr"}, cfg.Locales())
}

func (s *ConfigSuite) TestContextRoundTrip() {
	cfg := &config.SiteConfig{ServiceName: "site-test"}
	ctx := config.ToContext(context.Background(), cfg)

	got := config.FromContext[*config.SiteConfig](ctx)
	s.Require().NotNil(got)
	s.Equal("site-test", got.Name())

	missing := config.FromContext[*config.SiteConfig](context.Background())
	s.Nil(missing)
}
