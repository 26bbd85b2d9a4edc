// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pages

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// keySlugs are the main landing pages listed with the highest priority.
var keySlugs = map[string]bool{
	"tax-solutions": true,
	"members":       true,
	"services":      true,
	"contact":       true,
}

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// Priority returns the sitemap priority of a page slug.
func Priority(pageSlug string) string {
	switch {
	case keySlugs[pageSlug]:
		return "0.9"
	case strings.Contains(pageSlug, "services"):
		return "0.8"
	default:
		return "0.6"
	}
}

// Sitemap renders the XML sitemap listing the homepage and every published
// page. baseURL is the absolute site origin, without a trailing slash.
func (s *Service) Sitemap(ctx context.Context, baseURL string) ([]byte, error) {
	published, err := s.pages.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("list published pages: %w", err)
	}
	baseURL = strings.TrimRight(baseURL, "/")

	set := urlset{Xmlns: sitemapNS}
	set.URLs = append(set.URLs, sitemapURL{Loc: baseURL + "/", ChangeFreq: "weekly", Priority: "0.8"})
	for _, p := range published {
		if p.Slug == HomeSlug {
			continue
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        baseURL + p.URL(),
			LastMod:    p.UpdatedAt.UTC().Format("2006-01-02"),
			ChangeFreq: "weekly",
			Priority:   Priority(p.Slug),
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// Robots returns the robots.txt body allowing all crawlers and pointing at
// the sitemap.
func Robots(baseURL string) string {
	return "User-agent: *\nAllow: /\n\nSitemap: " + strings.TrimRight(baseURL, "/") + "/sitemap.xml\n"
}
