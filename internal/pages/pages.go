// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pages resolves public URLs to published pages and their content
// sections, assembles the site-wide context shared by every public page,
// and creates pages from the admin quick-add endpoint.
package pages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"hirexfed/internal/models"
	"hirexfed/internal/slug"
	"hirexfed/internal/store"
)

var (
	// ErrNotFound is returned when no published page has the slug.
	ErrNotFound = errors.New("pages: not found")

	// ErrSlugTaken is returned when a new page's slug is already in use.
	ErrSlugTaken = errors.New("pages: slug already exists")
)

// InvalidError describes rejected add-page input.
type InvalidError struct {
	Message string
}

func (e *InvalidError) Error() string { return e.Message }

// HomeSlug is the page whose sections, when published, fill the homepage.
const HomeSlug = "home"

// SidebarMiniPosts is how many mini posts the sidebar shows.
const SidebarMiniPosts = 3

// PageRepository reads and creates pages.
type PageRepository interface {
	FindPublishedBySlug(ctx context.Context, slug string) (*models.Page, error)
	ListPublished(ctx context.Context) ([]models.Page, error)
	ListNavigation(ctx context.Context) ([]models.Page, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	CreateWithSection(ctx context.Context, p *models.Page, sec *models.Section) error
}

// SectionRepository reads content sections.
type SectionRepository interface {
	ListActiveByPage(ctx context.Context, page string) ([]models.Section, error)
	ListOrphans(ctx context.Context) ([]models.Section, error)
}

// SiteRepository reads site content singletons and lists.
type SiteRepository interface {
	Banner(ctx context.Context) (*models.Banner, error)
	Features(ctx context.Context) ([]models.Feature, error)
	Posts(ctx context.Context, limit int) ([]models.Post, error)
	MiniPosts(ctx context.Context, limit int) ([]models.MiniPost, error)
	ContactInfo(ctx context.Context) (*models.ContactInfo, error)
	Footer(ctx context.Context) (*models.Footer, error)
}

// NavigationRepository reads navigation items and social links.
type NavigationRepository interface {
	ListActive(ctx context.Context) ([]models.NavigationItem, error)
	SocialLinks(ctx context.Context, activeOnly bool) ([]models.SocialLink, error)
}

// Repositories groups the persistence dependencies of a Service.
type Repositories struct {
	Pages      PageRepository
	Sections   SectionRepository
	Site       SiteRepository
	Navigation NavigationRepository
}

// Service resolves pages and site-wide content.
type Service struct {
	pages    PageRepository
	sections SectionRepository
	site     SiteRepository
	nav      NavigationRepository
}

// NewService creates a Service.
func NewService(r Repositories) *Service {
	return &Service{pages: r.Pages, sections: r.Sections, site: r.Site, nav: r.Navigation}
}

// View is a resolved page ready for rendering.
type View struct {
	Page     *models.Page
	Template models.TemplateType
	Sections []models.Section

	// Home is set for pages using the homepage template.
	Home *HomeContent
}

// SectionsOf returns the view's sections of one type, in display order.
func (v *View) SectionsOf(t string) []models.Section {
	var out []models.Section
	for _, s := range v.Sections {
		if string(s.SectionType) == t {
			out = append(out, s)
		}
	}
	return out
}

// HomeContent is the extra content of homepage-style pages.
type HomeContent struct {
	Banner   *models.Banner
	Features []models.Feature
	Posts    []models.Post
}

// Resolve returns the published page with the slug, its active sections
// and, for homepage-style pages, the banner, features and posts.
func (s *Service) Resolve(ctx context.Context, pageSlug string) (*View, error) {
	pageSlug = strings.Trim(pageSlug, "/")
	if !slug.Valid(pageSlug) {
		return nil, ErrNotFound
	}
	p, err := s.pages.FindPublishedBySlug(ctx, pageSlug)
	if err != nil {
		return nil, fmt.Errorf("resolve page: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return s.view(ctx, p)
}

// Home returns the view for "/". A published page with HomeSlug supplies
// the title and sections; otherwise an empty homepage is used.
func (s *Service) Home(ctx context.Context) (*View, error) {
	p, err := s.pages.FindPublishedBySlug(ctx, HomeSlug)
	if err != nil {
		return nil, fmt.Errorf("resolve homepage: %w", err)
	}
	if p == nil {
		p = &models.Page{Title: "Home", TemplateType: models.TemplateHomepage}
	}
	v, err := s.view(ctx, p)
	if err != nil {
		return nil, err
	}
	if v.Home == nil {
		if v.Home, err = s.homeContent(ctx); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (s *Service) view(ctx context.Context, p *models.Page) (*View, error) {
	v := &View{Page: p, Template: models.ParseTemplateType(string(p.TemplateType))}

	if p.Slug != "" {
		secs, err := s.sections.ListActiveByPage(ctx, p.Slug)
		if err != nil {
			return nil, fmt.Errorf("load sections: %w", err)
		}
		v.Sections = secs
	}

	if v.Template == models.TemplateHomepage {
		home, err := s.homeContent(ctx)
		if err != nil {
			return nil, err
		}
		v.Home = home
	}
	return v, nil
}

func (s *Service) homeContent(ctx context.Context) (*HomeContent, error) {
	banner, err := s.site.Banner(ctx)
	if err != nil {
		return nil, fmt.Errorf("load banner: %w", err)
	}
	features, err := s.site.Features(ctx)
	if err != nil {
		return nil, fmt.Errorf("load features: %w", err)
	}
	posts, err := s.site.Posts(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}
	return &HomeContent{Banner: banner, Features: features, Posts: posts}, nil
}

// NavEntry is one rendered menu entry.
type NavEntry struct {
	Title     string
	URL       string
	IconClass string
	NewWindow bool
	Children  []NavEntry
}

// Global is the content shared by every public page.
type Global struct {
	Contact   *models.ContactInfo
	Footer    *models.Footer
	Social    []models.SocialLink
	Nav       []NavEntry
	MiniPosts []models.MiniPost
}

// Global loads the site-wide context: contact info, footer, active social
// links, the navigation menu and the sidebar mini posts.
func (s *Service) Global(ctx context.Context) (*Global, error) {
	g := &Global{}
	var err error

	if g.Contact, err = s.site.ContactInfo(ctx); err != nil {
		return nil, fmt.Errorf("load contact info: %w", err)
	}
	if g.Footer, err = s.site.Footer(ctx); err != nil {
		return nil, fmt.Errorf("load footer: %w", err)
	}
	if g.Social, err = s.nav.SocialLinks(ctx, true); err != nil {
		return nil, fmt.Errorf("load social links: %w", err)
	}
	if g.MiniPosts, err = s.site.MiniPosts(ctx, SidebarMiniPosts); err != nil {
		return nil, fmt.Errorf("load mini posts: %w", err)
	}

	items, err := s.nav.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load navigation: %w", err)
	}
	navPages, err := s.pages.ListNavigation(ctx)
	if err != nil {
		return nil, fmt.Errorf("load navigation pages: %w", err)
	}
	g.Nav = buildNav(items, navPages)
	return g, nil
}

// buildNav nests active children under their active top-level parents and
// appends navigation pages not already linked by an explicit item. Items
// arrive ordered; children whose parent is inactive are dropped.
func buildNav(items []models.NavigationItem, navPages []models.Page) []NavEntry {
	children := make(map[uuid.UUID][]NavEntry)
	for _, it := range items {
		if it.ParentID != nil {
			children[*it.ParentID] = append(children[*it.ParentID], navEntry(it))
		}
	}

	linked := make(map[string]bool)
	var out []NavEntry
	for _, it := range items {
		if it.ParentID != nil {
			continue
		}
		e := navEntry(it)
		e.Children = children[it.ID]
		out = append(out, e)
		linked[it.URL] = true
		for _, c := range e.Children {
			linked[c.URL] = true
		}
	}

	for _, p := range navPages {
		if linked[p.URL()] {
			continue
		}
		out = append(out, NavEntry{Title: p.Title, URL: p.URL()})
	}
	return out
}

func navEntry(it models.NavigationItem) NavEntry {
	return NavEntry{Title: it.Title, URL: it.URL, IconClass: it.IconClass, NewWindow: it.OpensNewWindow}
}

// NewPage is the input of the admin quick-add endpoint.
type NewPage struct {
	Title        string `json:"title"`
	TemplateType string `json:"template_type"`
	Content      string `json:"content"`
}

// AddPage creates a published page whose slug is generated from the title,
// with an optional main content section. It returns *InvalidError for bad
// input and ErrSlugTaken when the slug is in use.
func (s *Service) AddPage(ctx context.Context, in NewPage) (*models.Page, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, &InvalidError{Message: "Title is required."}
	}
	if in.TemplateType != "" && models.ParseTemplateType(in.TemplateType) != models.TemplateType(in.TemplateType) {
		return nil, &InvalidError{Message: fmt.Sprintf("Unknown template type %q.", in.TemplateType)}
	}
	pageSlug := slug.Generate(title)
	if pageSlug == "" {
		return nil, &InvalidError{Message: "Title must contain letters or digits."}
	}

	exists, err := s.pages.SlugExists(ctx, pageSlug)
	if err != nil {
		return nil, fmt.Errorf("check slug: %w", err)
	}
	if exists {
		return nil, ErrSlugTaken
	}

	p := &models.Page{
		Title:        title,
		Slug:         pageSlug,
		TemplateType: models.ParseTemplateType(in.TemplateType),
		IsPublished:  true,
	}
	var sec *models.Section
	if content := strings.TrimSpace(in.Content); content != "" {
		sec = &models.Section{SectionType: models.SectionMainContent, Title: title, Content: content, IsActive: true}
	}
	if err := s.pages.CreateWithSection(ctx, p, sec); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("create page: %w", err)
	}
	return p, nil
}

// Orphans returns sections whose page slug matches no page.
func (s *Service) Orphans(ctx context.Context) ([]models.Section, error) {
	secs, err := s.sections.ListOrphans(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orphan sections: %w", err)
	}
	return secs, nil
}
