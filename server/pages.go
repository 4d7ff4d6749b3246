package server

import (
	"time"

	"github.com/freightlane/sitekit/tabs"
)

// Page declares one marketing page: its route, template file, the
// translation namespaces it needs and the tab groups it hosts.
type Page struct {
	Name       string
	Path       string
	Template   string
	Namespaces []string
	TabGroups  []tabs.GroupConfig
}

// sitePages is the registry of served pages.
func sitePages() []Page {
	return []Page{
		{
			Name:       "home",
			Path:       "/",
			Template:   "templates/home.html",
			Namespaces: []string{"common", "home"},
			TabGroups: []tabs.GroupConfig{
				{
					Name:            "freight-modes",
					TriggerSelector: ".mode-tab",
					ContentSelector: ".mode-panel",
					TriggerAttr:     "data-mode",
					ContentAttr:     "data-mode-panel",
					QueryParam:      "mode",
					DefaultValue:    "road",
					AutoRotate:      true,
					RotateInterval:  6 * time.Second,
				},
			},
		},
		{
			Name:       "services",
			Path:       "/services",
			Template:   "templates/services.html",
			Namespaces: []string{"common", "services"},
			TabGroups: []tabs.GroupConfig{
				{
					Name:            "service-features",
					TriggerSelector: ".feature-tab",
					ContentSelector: ".feature-panel",
					TriggerAttr:     "data-feature",
					ContentAttr:     "data-feature-panel",
					QueryParam:      "feature",
					DefaultValue:    "fleet",
				},
			},
		},
		{
			Name:       "tracking",
			Path:       "/tracking",
			Template:   "templates/tracking.html",
			Namespaces: []string{"common", "tracking"},
		},
		{
			Name:       "network",
			Path:       "/network",
			Template:   "templates/network.html",
			Namespaces: []string{"common", "network"},
		},
		{
			Name:       "apply",
			Path:       "/apply",
			Template:   "templates/apply.html",
			Namespaces: []string{"common", "apply"},
		},
		{
			Name:       "faq",
			Path:       "/faq",
			Template:   "templates/faq.html",
			Namespaces: []string{"common", "faq"},
			TabGroups: []tabs.GroupConfig{
				{
					Name:            "faq-categories",
					TriggerSelector: ".faq-tab",
					ContentSelector: ".faq-section",
					TriggerAttr:     "data-category",
					ContentAttr:     "data-category-panel",
					QueryParam:      "category",
					DefaultValue:    "shipping",
					ShowAll:         true,
				},
			},
		},
	}
}

// Namespaces returns every translation namespace the registry references,
// deduplicated in first-use order.
func Namespaces() []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range sitePages() {
		for _, ns := range p.Namespaces {
			if !seen[ns] {
				seen[ns] = true
				out = append(out, ns)
			}
		}
	}
	return out
}
