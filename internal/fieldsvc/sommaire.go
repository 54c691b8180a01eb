package fieldsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/atelier-guides/maquette/internal/export"
)

// SommaireServiceID is the id of the built-in table-of-contents handler.
const SommaireServiceID = "sommaire"

// implicitSectionTitle names the section opened when a cluster page appears
// before any section header.
const implicitSectionTitle = "Clusters et lieux"

// sectionHeaderTemplates are template names that always start a new
// sommaire section, in addition to any template whose name contains
// "SECTION".
var sectionHeaderTemplates = map[string]bool{
	"CHAPITRE": true,
}

// SommaireSection is one logical section of the table of contents.
type SommaireSection struct {
	Titre    string          `json:"titre"`
	Page     int             `json:"page"`
	Clusters []SommaireEntry `json:"clusters"`
}

// SommaireEntry is one cluster line under a section.
type SommaireEntry struct {
	Nom  string `json:"nom"`
	Page int    `json:"page"`
}

// Sommaire walks the complete ordered page set and builds the table of
// contents: section-header pages open sections, cluster pages append to the
// currently open one. Output is a JSON-serialized {sections: [...]}.
func Sommaire(_ context.Context, fc *Context) (string, error) {
	var sections []*SommaireSection
	var open *SommaireSection

	for _, page := range fc.Pages {
		switch {
		case isSectionHeader(page):
			open = &SommaireSection{
				Titre:    sectionTitle(page),
				Page:     page.PageNumber,
				Clusters: []SommaireEntry{},
			}
			sections = append(sections, open)
		case isClusterPage(page):
			if open == nil {
				open = &SommaireSection{
					Titre:    implicitSectionTitle,
					Page:     page.PageNumber,
					Clusters: []SommaireEntry{},
				}
				sections = append(sections, open)
			}
			open.Clusters = append(open.Clusters, SommaireEntry{
				Nom:  clusterName(page),
				Page: page.PageNumber,
			})
		}
	}

	out := struct {
		Sections []*SommaireSection `json:"sections"`
	}{Sections: sections}
	if out.Sections == nil {
		out.Sections = []*SommaireSection{}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("sommaire: serialize: %w", err)
	}
	return string(data), nil
}

func isSectionHeader(page *export.Page) bool {
	return strings.Contains(page.Template, "SECTION") || sectionHeaderTemplates[page.Template]
}

func isClusterPage(page *export.Page) bool {
	return page.Template == "CLUSTER" || page.Metadata.PageType == "cluster"
}

func sectionTitle(page *export.Page) string {
	if page.Titre != "" {
		return page.Titre
	}
	if page.Section != "" {
		return page.Section
	}
	return page.Template
}

func clusterName(page *export.Page) string {
	if page.Metadata.ClusterName != "" {
		return page.Metadata.ClusterName
	}
	return page.Titre
}
