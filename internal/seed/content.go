// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package seed installs the default HireXFed site content: the banner,
// homepage blocks, intake forms, pages and navigation. The content lives
// in an embedded YAML fixture; Run upserts it by natural key so repeated
// runs converge instead of duplicating rows.
package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"hirexfed/internal/engine"
	"hirexfed/internal/models"
)

//go:embed content.yaml
var contentYAML []byte

// Content is the parsed seed fixture.
type Content struct {
	Banner      Banner       `yaml:"banner"`
	Features    []Feature    `yaml:"features"`
	Posts       []Post       `yaml:"posts"`
	MiniPosts   []MiniPost   `yaml:"mini_posts"`
	Contact     Contact      `yaml:"contact"`
	Footer      Footer       `yaml:"footer"`
	Forms       []Form       `yaml:"forms"`
	Pages       []Page       `yaml:"pages"`
	Navigation  []NavItem    `yaml:"navigation"`
	SocialLinks []SocialLink `yaml:"social_links"`
}

type Banner struct {
	Heading      string `yaml:"heading"`
	Subheading   string `yaml:"subheading"`
	Description1 string `yaml:"description1"`
	Description2 string `yaml:"description2"`
	Description3 string `yaml:"description3"`
	ButtonText   string `yaml:"button_text"`
	ButtonLink   string `yaml:"button_link"`
}

type Feature struct {
	Icon        string `yaml:"icon"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type Post struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	ButtonText  string `yaml:"button_text"`
	ButtonLink  string `yaml:"button_link"`
}

type MiniPost struct {
	Description string `yaml:"description"`
}

type Contact struct {
	Email   string `yaml:"email"`
	Phone   string `yaml:"phone"`
	Address string `yaml:"address"`
}

type Footer struct {
	Copyright string `yaml:"copyright"`
}

// Form is an intake form with its fields in display order.
type Form struct {
	Slug             string   `yaml:"slug"`
	Title            string   `yaml:"title"`
	Description      string   `yaml:"description"`
	SuccessMessage   string   `yaml:"success_message"`
	Recipients       []string `yaml:"recipients"`
	AllowFileUploads bool     `yaml:"allow_file_uploads"`
	Fields           []Field  `yaml:"fields"`
}

type Field struct {
	Name        string   `yaml:"name"`
	Label       string   `yaml:"label"`
	Type        string   `yaml:"type"`
	Placeholder string   `yaml:"placeholder"`
	HelpText    string   `yaml:"help_text"`
	Choices     []string `yaml:"choices"`
	Required    bool     `yaml:"required"`
}

// Page is a published generic page. Its sections are main content blocks
// ordered from 1.
type Page struct {
	Slug            string    `yaml:"slug"`
	Title           string    `yaml:"title"`
	MetaDescription string    `yaml:"meta_description"`
	Sections        []Section `yaml:"sections"`
}

type Section struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
}

// NavItem is a top-level menu entry; children render as its dropdown.
type NavItem struct {
	Title    string    `yaml:"title"`
	URL      string    `yaml:"url"`
	Order    int       `yaml:"order"`
	Children []NavItem `yaml:"children"`
}

type SocialLink struct {
	Platform string `yaml:"platform"`
	URL      string `yaml:"url"`
	Order    int    `yaml:"order"`
}

// Load parses the embedded fixture.
func Load() (*Content, error) {
	return Parse(contentYAML)
}

// Parse decodes and checks a seed fixture. Unknown keys are rejected so a
// typo in the fixture fails loudly instead of seeding empty values.
func Parse(data []byte) (*Content, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Content
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode seed content: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("seed content: %w", err)
	}
	return &c, nil
}

func (c *Content) validate() error {
	forms := map[string]bool{}
	for _, f := range c.Forms {
		if f.Slug == "" || f.Title == "" {
			return fmt.Errorf("form %q: slug and title are required", f.Slug)
		}
		if forms[f.Slug] {
			return fmt.Errorf("form %q: duplicate slug", f.Slug)
		}
		forms[f.Slug] = true

		names := map[string]bool{}
		for _, fd := range f.Fields {
			if fd.Name == "" || fd.Label == "" {
				return fmt.Errorf("form %q: field %q: name and label are required", f.Slug, fd.Name)
			}
			if names[fd.Name] {
				return fmt.Errorf("form %q: duplicate field %q", f.Slug, fd.Name)
			}
			names[fd.Name] = true
			if !models.ValidFieldType(fd.Type) {
				return fmt.Errorf("form %q: field %q: unknown type %q", f.Slug, fd.Name, fd.Type)
			}
			t := models.FieldType(fd.Type)
			if (t == models.FieldSelect || t == models.FieldRadio) && len(fd.Choices) == 0 {
				return fmt.Errorf("form %q: field %q: choices are required", f.Slug, fd.Name)
			}
		}
	}

	pages := map[string]bool{}
	for _, p := range c.Pages {
		if p.Slug == "" || strings.HasPrefix(p.Slug, "/") || strings.HasSuffix(p.Slug, "/") {
			return fmt.Errorf("page %q: invalid slug", p.Slug)
		}
		if pages[p.Slug] {
			return fmt.Errorf("page %q: duplicate slug", p.Slug)
		}
		pages[p.Slug] = true
	}

	for _, n := range c.Navigation {
		for _, child := range n.Children {
			if len(child.Children) > 0 {
				return fmt.Errorf("navigation %q: only two levels are supported", child.Title)
			}
		}
	}

	for _, l := range c.SocialLinks {
		if !slices.Contains(engine.SocialPlatforms, l.Platform) {
			return fmt.Errorf("social link: unknown platform %q", l.Platform)
		}
	}
	return nil
}
