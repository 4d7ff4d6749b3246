package localization_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/suite"

	"github.com/freightlane/sitekit/localization"
)

type LoaderSuite struct {
	suite.Suite
}

func TestLoaderSuite(t *testing.T) {
	suite.Run(t, new(LoaderSuite))
}

func (s *LoaderSuite) TestRegisteredFormatIsConsulted() {
	fsys := fstest.MapFS{
		"translations/en/common.conf": &fstest.MapFile{
			Data: []byte("greeting=hello\nfarewell=bye\n"),
		},
	}

	cfg := localization.Config{
		Supported:  []localization.Locale{"en"},
		Default:    "en",
		Namespaces: []string{"common"},
	}
	loader := localization.NewLoader(fsys, "translations", &cfg, nil)
	loader.RegisterUnmarshalFunc("conf", func(data []byte, v any) error {
		tree := map[string]any{}
		for _, line := range strings.Split(string(data), "\n") {
			if key, value, ok := strings.Cut(line, "="); ok {
				tree[key] = value
			}
		}
		*(v.(*map[string]any)) = tree
		return nil
	})

	doc := loader.Namespace(context.Background(), "en", "common")
	value, found := doc.Resolve("greeting")
	s.Require().True(found)
	s.Require().Equal("hello", value)
}

func (s *LoaderSuite) TestBuiltinFormatsKeepPriorityOverLateRegistrations() {
	// The same namespace exists as json and as a custom format; the json
	// decoder was registered first and must win.
	fsys := fstest.MapFS{
		"translations/en/common.json": &fstest.MapFile{
			Data: []byte(`{"greeting": "from json"}`),
		},
		"translations/en/common.conf": &fstest.MapFile{
			Data: []byte("greeting=from conf\n"),
		},
	}

	cfg := localization.Config{
		Supported:  []localization.Locale{"en"},
		Default:    "en",
		Namespaces: []string{"common"},
	}
	loader := localization.NewLoader(fsys, "translations", &cfg, nil)
	loader.RegisterUnmarshalFunc("conf", func(_ []byte, v any) error {
		*(v.(*map[string]any)) = map[string]any{"greeting": "from conf"}
		return nil
	})

	doc := loader.Namespace(context.Background(), "en", "common")
	value, found := doc.Resolve("greeting")
	s.Require().True(found)
	s.Require().Equal("from json", value)
}
