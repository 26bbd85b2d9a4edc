// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"hirexfed/internal/models"
	"hirexfed/internal/store"
)

// ErrResetRefused is returned when a destructive reset is requested
// outside development without Force.
var ErrResetRefused = errors.New("refusing destructive reset outside development; re-run with --reset --force if intentional")

// Stores are the repositories the seeder writes to.
type Stores struct {
	Site       *store.SiteStore
	Navigation *store.NavigationStore
	Pages      *store.PageStore
	Sections   *store.SectionStore
	Forms      *store.FormStore
}

// FormRemover deletes a form together with its submissions and releases
// their stored files. intake.Service satisfies it.
type FormRemover interface {
	DeleteForm(ctx context.Context, id uuid.UUID) error
}

// Options control a seed run.
type Options struct {
	// Reset replaces seeded content instead of merging into it. Resetting
	// a form deletes its submissions.
	Reset bool
	// Force allows Reset outside development.
	Force bool
	// Dev reports whether the app runs in development.
	Dev bool
}

// Report counts what a run wrote.
type Report struct {
	Created int
	Updated int
	Deleted int
}

func (r *Report) saved(created bool) {
	if created {
		r.Created++
	} else {
		r.Updated++
	}
}

type seeder struct {
	stores Stores
	forms  FormRemover
	reset  bool
	report Report
}

// Run writes content to the stores. Safe mode upserts every item by its
// natural key and never deletes submissions; reset mode clears the seeded
// tables first and recreates forms from scratch. Singletons left empty in
// content are not touched.
func Run(ctx context.Context, stores Stores, forms FormRemover, content *Content, opts Options) (*Report, error) {
	if opts.Reset && !opts.Dev && !opts.Force {
		return nil, ErrResetRefused
	}
	s := &seeder{stores: stores, forms: forms, reset: opts.Reset}

	steps := []struct {
		name string
		fn   func(context.Context, *Content) error
	}{
		{"banner", s.banner},
		{"features", s.features},
		{"posts", s.posts},
		{"mini posts", s.miniPosts},
		{"contact info", s.contact},
		{"footer", s.footer},
		{"intake forms", s.intakeForms},
		{"pages", s.pages},
		{"navigation", s.navigation},
		{"social links", s.socialLinks},
	}
	for _, step := range steps {
		if err := step.fn(ctx, content); err != nil {
			return nil, fmt.Errorf("seed %s: %w", step.name, err)
		}
		slog.Info("seeded", "step", step.name)
	}
	return &s.report, nil
}

func (s *seeder) banner(ctx context.Context, c *Content) error {
	if c.Banner == (Banner{}) {
		return nil
	}
	b, err := s.stores.Site.Banner(ctx)
	if err != nil {
		return err
	}
	if b == nil {
		b = &models.Banner{}
	}
	created := b.ID == uuid.Nil
	b.Heading = c.Banner.Heading
	b.Subheading = c.Banner.Subheading
	b.Description1 = c.Banner.Description1
	b.Description2 = c.Banner.Description2
	b.Description3 = c.Banner.Description3
	b.ButtonText = c.Banner.ButtonText
	b.ButtonLink = c.Banner.ButtonLink
	if err := s.stores.Site.SaveBanner(ctx, b); err != nil {
		return err
	}
	s.report.saved(created)
	return nil
}

func (s *seeder) contact(ctx context.Context, c *Content) error {
	if c.Contact == (Contact{}) {
		return nil
	}
	ci, err := s.stores.Site.ContactInfo(ctx)
	if err != nil {
		return err
	}
	if ci == nil {
		ci = &models.ContactInfo{}
	}
	created := ci.ID == uuid.Nil
	ci.Email = c.Contact.Email
	ci.Phone = c.Contact.Phone
	ci.Address = c.Contact.Address
	if err := s.stores.Site.SaveContactInfo(ctx, ci); err != nil {
		return err
	}
	s.report.saved(created)
	return nil
}

func (s *seeder) footer(ctx context.Context, c *Content) error {
	if c.Footer == (Footer{}) {
		return nil
	}
	f, err := s.stores.Site.Footer(ctx)
	if err != nil {
		return err
	}
	if f == nil {
		f = &models.Footer{}
	}
	created := f.ID == uuid.Nil
	f.Copyright = c.Footer.Copyright
	if err := s.stores.Site.SaveFooter(ctx, f); err != nil {
		return err
	}
	s.report.saved(created)
	return nil
}

// clear deletes every row of a site list table in reset mode.
func (s *seeder) clear(ctx context.Context, table string, ids []uuid.UUID) error {
	if !s.reset {
		return nil
	}
	for _, id := range ids {
		if err := s.stores.Site.Delete(ctx, table, id); err != nil {
			return err
		}
		s.report.Deleted++
	}
	return nil
}

func (s *seeder) features(ctx context.Context, c *Content) error {
	existing, err := s.stores.Site.Features(ctx)
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, len(existing))
	for i, f := range existing {
		ids[i] = f.ID
	}
	if err := s.clear(ctx, "features", ids); err != nil {
		return err
	}

	for _, in := range c.Features {
		f, err := s.stores.Site.FindFeatureByTitle(ctx, in.Title)
		if err != nil {
			return err
		}
		if f == nil {
			f = &models.Feature{Title: in.Title}
		}
		created := f.ID == uuid.Nil
		f.Icon = in.Icon
		f.Description = in.Description
		if err := s.stores.Site.SaveFeature(ctx, f); err != nil {
			return err
		}
		s.report.saved(created)
	}
	return nil
}

func (s *seeder) posts(ctx context.Context, c *Content) error {
	existing, err := s.stores.Site.Posts(ctx, 0)
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, len(existing))
	for i, p := range existing {
		ids[i] = p.ID
	}
	if err := s.clear(ctx, "posts", ids); err != nil {
		return err
	}

	for _, in := range c.Posts {
		p, err := s.stores.Site.FindPostByTitle(ctx, in.Title)
		if err != nil {
			return err
		}
		if p == nil {
			p = &models.Post{Title: in.Title}
		}
		created := p.ID == uuid.Nil
		p.Description = in.Description
		p.ButtonText = in.ButtonText
		p.ButtonLink = in.ButtonLink
		if err := s.stores.Site.SavePost(ctx, p); err != nil {
			return err
		}
		s.report.saved(created)
	}
	return nil
}

func (s *seeder) miniPosts(ctx context.Context, c *Content) error {
	existing, err := s.stores.Site.MiniPosts(ctx, 0)
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, len(existing))
	for i, m := range existing {
		ids[i] = m.ID
	}
	if err := s.clear(ctx, "mini_posts", ids); err != nil {
		return err
	}

	for _, in := range c.MiniPosts {
		m, err := s.stores.Site.FindMiniPostByDescription(ctx, in.Description)
		if err != nil {
			return err
		}
		if m != nil {
			// The description is the whole record; nothing to update.
			continue
		}
		m = &models.MiniPost{Description: in.Description}
		if err := s.stores.Site.SaveMiniPost(ctx, m); err != nil {
			return err
		}
		s.report.Created++
	}
	return nil
}

func (s *seeder) intakeForms(ctx context.Context, c *Content) error {
	for _, in := range c.Forms {
		if err := s.intakeForm(ctx, in); err != nil {
			return fmt.Errorf("form %s: %w", in.Slug, err)
		}
	}
	return nil
}

func (s *seeder) intakeForm(ctx context.Context, in Form) error {
	f, err := s.stores.Forms.FindBySlug(ctx, in.Slug)
	if err != nil {
		return err
	}
	if f != nil && s.reset {
		if err := s.forms.DeleteForm(ctx, f.ID); err != nil {
			return err
		}
		s.report.Deleted++
		f = nil
	}

	created := f == nil
	if created {
		f = &models.IntakeForm{Slug: in.Slug}
	}
	f.Title = in.Title
	f.Description = in.Description
	f.SuccessMessage = in.SuccessMessage
	f.EmailRecipients = strings.Join(in.Recipients, "\n")
	f.IsActive = true
	f.AllowFileUploads = in.AllowFileUploads
	if created {
		err = s.stores.Forms.Create(ctx, f)
	} else {
		err = s.stores.Forms.Update(ctx, f)
	}
	if err != nil {
		return err
	}
	s.report.saved(created)

	keep := make([]string, 0, len(in.Fields))
	for i, fd := range in.Fields {
		field := &models.IntakeField{
			FormID:      f.ID,
			Label:       fd.Label,
			Name:        fd.Name,
			FieldType:   models.FieldType(fd.Type),
			Placeholder: fd.Placeholder,
			HelpText:    fd.HelpText,
			Choices:     strings.Join(fd.Choices, "\n"),
			IsRequired:  fd.Required,
			SortOrder:   i + 1,
		}
		if err := s.stores.Forms.UpsertField(ctx, field); err != nil {
			return err
		}
		keep = append(keep, fd.Name)
	}
	if s.reset {
		n, err := s.stores.Forms.DeleteFieldsExcept(ctx, f.ID, keep)
		if err != nil {
			return err
		}
		s.report.Deleted += int(n)
	}
	return nil
}

func (s *seeder) pages(ctx context.Context, c *Content) error {
	for _, in := range c.Pages {
		p, err := s.stores.Pages.FindBySlug(ctx, in.Slug)
		if err != nil {
			return err
		}
		created := p == nil
		if created {
			p = &models.Page{Slug: in.Slug}
		}
		p.Title = in.Title
		p.TemplateType = models.TemplateGeneric
		p.MetaDescription = in.MetaDescription
		p.IsPublished = true
		p.ShowInNavigation = false
		if created {
			err = s.stores.Pages.Create(ctx, p)
		} else {
			err = s.stores.Pages.Update(ctx, p)
		}
		if err != nil {
			return err
		}
		s.report.saved(created)

		if err := s.sections(ctx, in); err != nil {
			return fmt.Errorf("page %s: %w", in.Slug, err)
		}
	}
	return nil
}

func (s *seeder) sections(ctx context.Context, in Page) error {
	if s.reset {
		n, err := s.stores.Sections.DeleteByPage(ctx, in.Slug)
		if err != nil {
			return err
		}
		s.report.Deleted += int(n)
	}

	for i, sec := range in.Sections {
		order := i + 1
		existing, err := s.stores.Sections.FindByPosition(ctx, in.Slug, models.SectionMainContent, order)
		if err != nil {
			return err
		}
		if existing == nil {
			err = s.stores.Sections.Create(ctx, &models.Section{
				Page:        in.Slug,
				SectionType: models.SectionMainContent,
				Title:       sec.Title,
				Content:     sec.Content,
				SortOrder:   order,
				IsActive:    true,
			})
			if err != nil {
				return err
			}
			s.report.Created++
			continue
		}
		existing.Title = sec.Title
		existing.Content = sec.Content
		existing.IsActive = true
		if err := s.stores.Sections.Update(ctx, existing); err != nil {
			return err
		}
		s.report.Updated++
	}
	return nil
}

func (s *seeder) navigation(ctx context.Context, c *Content) error {
	if s.reset {
		items, err := s.stores.Navigation.List(ctx)
		if err != nil {
			return err
		}
		// Children go with their parent through ON DELETE CASCADE, so
		// only top-level items are deleted explicitly.
		var top []uuid.UUID
		for _, it := range items {
			if it.ParentID == nil {
				top = append(top, it.ID)
			}
		}
		if err := s.clear(ctx, "navigation_items", top); err != nil {
			return err
		}
	}

	// The menu is driven by navigation items only.
	if _, err := s.stores.Pages.ClearNavigationFlags(ctx); err != nil {
		return err
	}

	for _, in := range c.Navigation {
		parent, err := s.navItem(ctx, in, nil)
		if err != nil {
			return err
		}
		for _, child := range in.Children {
			if _, err := s.navItem(ctx, child, &parent.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *seeder) navItem(ctx context.Context, in NavItem, parentID *uuid.UUID) (*models.NavigationItem, error) {
	n, err := s.stores.Navigation.FindByTitle(ctx, in.Title, parentID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		n = &models.NavigationItem{Title: in.Title, ParentID: parentID}
	}
	created := n.ID == uuid.Nil
	n.URL = in.URL
	n.SortOrder = in.Order
	n.IsActive = true
	if err := s.stores.Navigation.Save(ctx, n); err != nil {
		return nil, err
	}
	s.report.saved(created)
	return n, nil
}

func (s *seeder) socialLinks(ctx context.Context, c *Content) error {
	if s.reset {
		links, err := s.stores.Navigation.SocialLinks(ctx, false)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(links))
		for i, l := range links {
			ids[i] = l.ID
		}
		if err := s.clear(ctx, "social_links", ids); err != nil {
			return err
		}
	}

	for _, in := range c.SocialLinks {
		l, err := s.stores.Navigation.FindSocialLinkByPlatform(ctx, in.Platform)
		if err != nil {
			return err
		}
		if l == nil {
			l = &models.SocialLink{Platform: in.Platform}
		}
		created := l.ID == uuid.Nil
		l.URL = in.URL
		l.SortOrder = in.Order
		l.IsActive = true
		if err := s.stores.Navigation.SaveSocialLink(ctx, l); err != nil {
			return err
		}
		s.report.saved(created)
	}
	return nil
}
