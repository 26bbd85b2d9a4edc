// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/google/uuid"

	"hirexfed/internal/engine"
	"hirexfed/internal/models"
	"hirexfed/internal/render"
)

// siteSection is the sidebar entry of site content pages.
const siteSection = "site"

// --- Singletons: banner, contact info, footer ---

// BannerEdit renders the homepage banner form.
func (a *Admin) BannerEdit(w http.ResponseWriter, r *http.Request) {
	b, err := a.stores.Site.Banner(r.Context())
	if err != nil {
		slog.Error("load banner failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if b == nil {
		b = &models.Banner{}
	}
	a.renderBannerForm(w, r, http.StatusOK, b, "")
}

func (a *Admin) renderBannerForm(w http.ResponseWriter, r *http.Request, status int, b *models.Banner, errMsg string) {
	a.pageStatus(w, r, status, "banner_form", &render.PageData{
		Title:   "Banner",
		Section: siteSection,
		Data:    map[string]any{"Item": b, "ImageKey": b.ImageKey, "Error": errMsg},
	})
}

// BannerSave updates the homepage banner and its image.
func (a *Admin) BannerSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	b, err := a.stores.Site.Banner(ctx)
	if err != nil {
		slog.Error("load banner failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if b == nil {
		b = &models.Banner{}
	}

	b.Heading = formValue(r, "heading")
	b.Subheading = formValue(r, "subheading")
	b.Description1 = formValue(r, "description1")
	b.Description2 = formValue(r, "description2")
	b.Description3 = formValue(r, "description3")
	b.ButtonText = formValue(r, "button_text")
	b.ButtonLink = formValue(r, "button_link")

	errMsg := ""
	switch {
	case b.Heading == "":
		errMsg = "Heading is required."
	case tooLong(b.Heading, maxTitleLen) || tooLong(b.Subheading, maxTitleLen):
		errMsg = "Heading and subheading are limited to 200 characters."
	default:
		errMsg = validateLink("Button link", b.ButtonLink)
	}
	if errMsg != "" {
		a.renderBannerForm(w, r, http.StatusUnprocessableEntity, b, errMsg)
		return
	}

	img, err := a.imageFromForm(r, b.ImageKey)
	if err != nil {
		a.renderImageError(w, r, err, func(msg string) {
			a.renderBannerForm(w, r, http.StatusUnprocessableEntity, b, msg)
		})
		return
	}
	b.ImageKey = img.key

	if err := a.stores.Site.SaveBanner(ctx, b); err != nil {
		slog.Error("save banner failed", "error", err)
		a.rollbackImage(ctx, img)
		a.renderBannerForm(w, r, http.StatusUnprocessableEntity, b, "Failed to save the banner.")
		return
	}
	a.commitImage(ctx, img)

	a.contentChanged(ctx, "banner")
	a.redirect(w, r, "/admin/site/banner", "Banner saved.")
}

// ContactEdit renders the contact info form.
func (a *Admin) ContactEdit(w http.ResponseWriter, r *http.Request) {
	c, err := a.stores.Site.ContactInfo(r.Context())
	if err != nil {
		slog.Error("load contact info failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if c == nil {
		c = &models.ContactInfo{}
	}
	a.page(w, r, "contact_form", &render.PageData{
		Title:   "Contact Info",
		Section: siteSection,
		Data:    map[string]any{"Item": c},
	})
}

// ContactSave updates the contact info.
func (a *Admin) ContactSave(w http.ResponseWriter, r *http.Request) {
	c := &models.ContactInfo{
		Email:   formValue(r, "email"),
		Phone:   formValue(r, "phone"),
		Address: formValue(r, "address"),
	}
	if tooLong(c.Email, maxShortLen) || tooLong(c.Phone, maxShortLen) || tooLong(c.Address, maxURLLen) {
		a.pageStatus(w, r, http.StatusUnprocessableEntity, "contact_form", &render.PageData{
			Title:   "Contact Info",
			Section: siteSection,
			Data:    map[string]any{"Item": c, "Error": "Contact details are too long."},
		})
		return
	}
	if err := a.stores.Site.SaveContactInfo(r.Context(), c); err != nil {
		slog.Error("save contact info failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.contentChanged(r.Context(), "contact")
	a.redirect(w, r, "/admin/site/contact", "Contact info saved.")
}

// FooterEdit renders the footer form.
func (a *Admin) FooterEdit(w http.ResponseWriter, r *http.Request) {
	f, err := a.stores.Site.Footer(r.Context())
	if err != nil {
		slog.Error("load footer failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if f == nil {
		f = &models.Footer{}
	}
	a.page(w, r, "footer_form", &render.PageData{
		Title:   "Footer",
		Section: siteSection,
		Data:    map[string]any{"Item": f},
	})
}

// FooterSave updates the footer.
func (a *Admin) FooterSave(w http.ResponseWriter, r *http.Request) {
	f := &models.Footer{
		Copyright:      formValue(r, "copyright"),
		DemoImagesLink: formValue(r, "demo_images_link"),
		DesignLink:     formValue(r, "design_link"),
	}
	errMsg := validateLink("Demo images link", f.DemoImagesLink)
	if errMsg == "" {
		errMsg = validateLink("Design link", f.DesignLink)
	}
	if errMsg == "" && tooLong(f.Copyright, maxShortLen) {
		errMsg = "Copyright is too long."
	}
	if errMsg != "" {
		a.pageStatus(w, r, http.StatusUnprocessableEntity, "footer_form", &render.PageData{
			Title:   "Footer",
			Section: siteSection,
			Data:    map[string]any{"Item": f, "Error": errMsg},
		})
		return
	}
	if err := a.stores.Site.SaveFooter(r.Context(), f); err != nil {
		slog.Error("save footer failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.contentChanged(r.Context(), "footer")
	a.redirect(w, r, "/admin/site/footer", "Footer saved.")
}

// --- Features ---

// FeaturesList renders the homepage features.
func (a *Admin) FeaturesList(w http.ResponseWriter, r *http.Request) {
	items, err := a.stores.Site.Features(r.Context())
	if err != nil {
		slog.Error("list features failed", "error", err)
	}
	a.page(w, r, "features_list", &render.PageData{
		Title:   "Features",
		Section: siteSection,
		Data:    map[string]any{"Items": items},
	})
}

// FeatureForm renders the new or edit feature form.
func (a *Admin) FeatureForm(w http.ResponseWriter, r *http.Request) {
	item := &models.Feature{Icon: models.FeatureIcons[0]}
	if !loadItem(w, r, &item, a.stores.Site.FindFeature) {
		return
	}
	a.renderFeatureForm(w, r, http.StatusOK, item, "")
}

func (a *Admin) renderFeatureForm(w http.ResponseWriter, r *http.Request, status int, item *models.Feature, errMsg string) {
	a.pageStatus(w, r, status, "feature_form", &render.PageData{
		Title:   "Feature",
		Section: siteSection,
		Data: map[string]any{
			"Item":  item,
			"IsNew": item.ID == uuid.Nil,
			"Icons": models.FeatureIcons,
			"Error": errMsg,
		},
	})
}

// FeatureSave creates or updates a feature.
func (a *Admin) FeatureSave(w http.ResponseWriter, r *http.Request) {
	item := &models.Feature{}
	if !loadItem(w, r, &item, a.stores.Site.FindFeature) {
		return
	}
	item.Icon = formValue(r, "icon")
	item.Title = formValue(r, "title")
	item.Description = formValue(r, "description")

	errMsg := ""
	switch {
	case item.Title == "":
		errMsg = "Title is required."
	case tooLong(item.Title, maxTitleLen) || tooLong(item.Description, maxContentLen):
		errMsg = "Title or description is too long."
	case !slices.Contains(models.FeatureIcons, item.Icon):
		errMsg = "Choose one of the listed icons."
	}
	if errMsg != "" {
		a.renderFeatureForm(w, r, http.StatusUnprocessableEntity, item, errMsg)
		return
	}

	if err := a.stores.Site.SaveFeature(r.Context(), item); err != nil {
		slog.Error("save feature failed", "error", err)
		a.renderFeatureForm(w, r, http.StatusUnprocessableEntity, item, "Failed to save the feature.")
		return
	}
	a.contentChanged(r.Context(), "feature")
	a.redirect(w, r, "/admin/site/features", "Feature saved.")
}

// FeatureDelete removes a feature.
func (a *Admin) FeatureDelete(w http.ResponseWriter, r *http.Request) {
	a.deleteSiteRow(w, r, "features", "/admin/site/features")
}

// --- Posts ---

// PostsList renders the homepage posts.
func (a *Admin) PostsList(w http.ResponseWriter, r *http.Request) {
	items, err := a.stores.Site.Posts(r.Context(), 0)
	if err != nil {
		slog.Error("list posts failed", "error", err)
	}
	a.page(w, r, "posts_list", &render.PageData{
		Title:   "Posts",
		Section: siteSection,
		Data:    map[string]any{"Items": items},
	})
}

// PostForm renders the new or edit post form.
func (a *Admin) PostForm(w http.ResponseWriter, r *http.Request) {
	item := &models.Post{}
	if !loadItem(w, r, &item, a.stores.Site.FindPost) {
		return
	}
	a.renderPostForm(w, r, http.StatusOK, item, "")
}

func (a *Admin) renderPostForm(w http.ResponseWriter, r *http.Request, status int, item *models.Post, errMsg string) {
	a.pageStatus(w, r, status, "post_form", &render.PageData{
		Title:   "Post",
		Section: siteSection,
		Data: map[string]any{
			"Item":     item,
			"IsNew":    item.ID == uuid.Nil,
			"ImageKey": item.ImageKey,
			"Error":    errMsg,
		},
	})
}

// PostSave creates or updates a post and its image.
func (a *Admin) PostSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	item := &models.Post{}
	if !loadItem(w, r, &item, a.stores.Site.FindPost) {
		return
	}
	item.Title = formValue(r, "title")
	item.Description = formValue(r, "description")
	item.ButtonText = formValue(r, "button_text")
	item.ButtonLink = formValue(r, "button_link")

	errMsg := ""
	switch {
	case item.Title == "":
		errMsg = "Title is required."
	case tooLong(item.Title, maxTitleLen) || tooLong(item.Description, maxContentLen):
		errMsg = "Title or description is too long."
	default:
		errMsg = validateLink("Button link", item.ButtonLink)
	}
	if errMsg != "" {
		a.renderPostForm(w, r, http.StatusUnprocessableEntity, item, errMsg)
		return
	}

	img, err := a.imageFromForm(r, item.ImageKey)
	if err != nil {
		a.renderImageError(w, r, err, func(msg string) {
			a.renderPostForm(w, r, http.StatusUnprocessableEntity, item, msg)
		})
		return
	}
	item.ImageKey = img.key

	if err := a.stores.Site.SavePost(ctx, item); err != nil {
		slog.Error("save post failed", "error", err)
		a.rollbackImage(ctx, img)
		a.renderPostForm(w, r, http.StatusUnprocessableEntity, item, "Failed to save the post.")
		return
	}
	a.commitImage(ctx, img)
	a.contentChanged(ctx, "post")
	a.redirect(w, r, "/admin/site/posts", "Post saved.")
}

// PostDelete removes a post and its image.
func (a *Admin) PostDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	p, err := a.stores.Site.FindPost(r.Context(), id)
	if err != nil {
		slog.Error("find post failed", "error", err)
	}
	if a.deleteSiteRow(w, r, "posts", "/admin/site/posts") && p != nil {
		a.deleteImage(r.Context(), p.ImageKey)
	}
}

// --- Mini posts ---

// MiniPostsList renders the sidebar mini posts.
func (a *Admin) MiniPostsList(w http.ResponseWriter, r *http.Request) {
	items, err := a.stores.Site.MiniPosts(r.Context(), 0)
	if err != nil {
		slog.Error("list mini posts failed", "error", err)
	}
	a.page(w, r, "mini_posts_list", &render.PageData{
		Title:   "Mini Posts",
		Section: siteSection,
		Data:    map[string]any{"Items": items},
	})
}

// MiniPostForm renders the new or edit mini post form.
func (a *Admin) MiniPostForm(w http.ResponseWriter, r *http.Request) {
	item := &models.MiniPost{}
	if !loadItem(w, r, &item, a.stores.Site.FindMiniPost) {
		return
	}
	a.renderMiniPostForm(w, r, http.StatusOK, item, "")
}

func (a *Admin) renderMiniPostForm(w http.ResponseWriter, r *http.Request, status int, item *models.MiniPost, errMsg string) {
	a.pageStatus(w, r, status, "mini_post_form", &render.PageData{
		Title:   "Mini Post",
		Section: siteSection,
		Data: map[string]any{
			"Item":     item,
			"IsNew":    item.ID == uuid.Nil,
			"ImageKey": item.ImageKey,
			"Error":    errMsg,
		},
	})
}

// MiniPostSave creates or updates a mini post and its image.
func (a *Admin) MiniPostSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	item := &models.MiniPost{}
	if !loadItem(w, r, &item, a.stores.Site.FindMiniPost) {
		return
	}
	item.Description = formValue(r, "description")
	if item.Description == "" || tooLong(item.Description, maxContentLen) {
		a.renderMiniPostForm(w, r, http.StatusUnprocessableEntity, item, "Description is required.")
		return
	}

	img, err := a.imageFromForm(r, item.ImageKey)
	if err != nil {
		a.renderImageError(w, r, err, func(msg string) {
			a.renderMiniPostForm(w, r, http.StatusUnprocessableEntity, item, msg)
		})
		return
	}
	item.ImageKey = img.key

	if err := a.stores.Site.SaveMiniPost(ctx, item); err != nil {
		slog.Error("save mini post failed", "error", err)
		a.rollbackImage(ctx, img)
		a.renderMiniPostForm(w, r, http.StatusUnprocessableEntity, item, "Failed to save the mini post.")
		return
	}
	a.commitImage(ctx, img)
	a.contentChanged(ctx, "mini post")
	a.redirect(w, r, "/admin/site/mini-posts", "Mini post saved.")
}

// MiniPostDelete removes a mini post and its image.
func (a *Admin) MiniPostDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	m, err := a.stores.Site.FindMiniPost(r.Context(), id)
	if err != nil {
		slog.Error("find mini post failed", "error", err)
	}
	if a.deleteSiteRow(w, r, "mini_posts", "/admin/site/mini-posts") && m != nil {
		a.deleteImage(r.Context(), m.ImageKey)
	}
}

// --- Navigation ---

// NavigationList renders the navigation items, parents before children.
func (a *Admin) NavigationList(w http.ResponseWriter, r *http.Request) {
	items, err := a.stores.Navigation.List(r.Context())
	if err != nil {
		slog.Error("list navigation failed", "error", err)
	}
	a.page(w, r, "nav_list", &render.PageData{
		Title:   "Navigation",
		Section: siteSection,
		Data:    map[string]any{"Items": nestNavigation(items)},
	})
}

// nestNavigation orders items so each child follows its parent.
func nestNavigation(items []models.NavigationItem) []models.NavigationItem {
	children := make(map[uuid.UUID][]models.NavigationItem)
	var roots []models.NavigationItem
	ids := make(map[uuid.UUID]bool, len(items))
	for _, it := range items {
		ids[it.ID] = true
	}
	for _, it := range items {
		if it.ParentID != nil && ids[*it.ParentID] {
			children[*it.ParentID] = append(children[*it.ParentID], it)
			continue
		}
		roots = append(roots, it)
	}
	out := make([]models.NavigationItem, 0, len(items))
	for _, root := range roots {
		out = append(out, root)
		out = append(out, children[root.ID]...)
	}
	return out
}

// NavigationForm renders the new or edit navigation item form.
func (a *Admin) NavigationForm(w http.ResponseWriter, r *http.Request) {
	item := &models.NavigationItem{IsActive: true}
	if !loadItem(w, r, &item, a.stores.Navigation.FindByID) {
		return
	}
	a.renderNavigationForm(w, r, http.StatusOK, item, "")
}

func (a *Admin) renderNavigationForm(w http.ResponseWriter, r *http.Request, status int, item *models.NavigationItem, errMsg string) {
	all, err := a.stores.Navigation.List(r.Context())
	if err != nil {
		slog.Error("list navigation failed", "error", err)
	}
	// Menus are two levels deep: only top-level items can be parents.
	var parents []models.NavigationItem
	for _, it := range all {
		if it.ParentID == nil && it.ID != item.ID {
			parents = append(parents, it)
		}
	}
	a.pageStatus(w, r, status, "nav_form", &render.PageData{
		Title:   "Navigation Item",
		Section: siteSection,
		Data: map[string]any{
			"Item":    item,
			"IsNew":   item.ID == uuid.Nil,
			"Parents": parents,
			"Error":   errMsg,
		},
	})
}

// NavigationSave creates or updates a navigation item.
func (a *Admin) NavigationSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	item := &models.NavigationItem{}
	if !loadItem(w, r, &item, a.stores.Navigation.FindByID) {
		return
	}
	item.Title = formValue(r, "title")
	item.URL = formValue(r, "url")
	item.ParentID = formUUID(r, "parent_id")
	item.SortOrder = formInt(r, "sort_order", 0)
	item.IconClass = formValue(r, "icon_class")
	item.IsActive = formBool(r, "is_active")
	item.OpensNewWindow = formBool(r, "opens_new_window")

	errMsg := ""
	switch {
	case item.Title == "" || item.URL == "":
		errMsg = "Title and URL are required."
	case tooLong(item.Title, maxTitleLen) || tooLong(item.IconClass, maxShortLen):
		errMsg = "Title or icon class is too long."
	case item.ParentID != nil && *item.ParentID == item.ID:
		errMsg = "An item cannot be its own parent."
	default:
		errMsg = validateLink("URL", item.URL)
	}
	if errMsg == "" && item.ParentID != nil {
		parent, err := a.stores.Navigation.FindByID(ctx, *item.ParentID)
		if err != nil {
			slog.Error("find parent navigation item failed", "error", err)
		}
		if parent == nil || parent.ParentID != nil {
			errMsg = "Parent must be a top-level item."
		}
	}
	if errMsg != "" {
		a.renderNavigationForm(w, r, http.StatusUnprocessableEntity, item, errMsg)
		return
	}

	if err := a.stores.Navigation.Save(ctx, item); err != nil {
		slog.Error("save navigation item failed", "error", err)
		a.renderNavigationForm(w, r, http.StatusUnprocessableEntity, item, "Failed to save the item.")
		return
	}
	a.contentChanged(ctx, "navigation")
	a.redirect(w, r, "/admin/site/navigation", "Navigation item saved.")
}

// NavigationDelete removes a navigation item; its children cascade.
func (a *Admin) NavigationDelete(w http.ResponseWriter, r *http.Request) {
	a.deleteSiteRow(w, r, "navigation_items", "/admin/site/navigation")
}

// --- Social links ---

// SocialList renders the social links.
func (a *Admin) SocialList(w http.ResponseWriter, r *http.Request) {
	items, err := a.stores.Navigation.SocialLinks(r.Context(), false)
	if err != nil {
		slog.Error("list social links failed", "error", err)
	}
	a.page(w, r, "social_list", &render.PageData{
		Title:   "Social Links",
		Section: siteSection,
		Data:    map[string]any{"Items": items},
	})
}

// SocialForm renders the new or edit social link form.
func (a *Admin) SocialForm(w http.ResponseWriter, r *http.Request) {
	item := &models.SocialLink{IsActive: true}
	if !loadItem(w, r, &item, a.stores.Navigation.FindSocialLink) {
		return
	}
	a.renderSocialForm(w, r, http.StatusOK, item, "")
}

func (a *Admin) renderSocialForm(w http.ResponseWriter, r *http.Request, status int, item *models.SocialLink, errMsg string) {
	a.pageStatus(w, r, status, "social_form", &render.PageData{
		Title:   "Social Link",
		Section: siteSection,
		Data: map[string]any{
			"Item":      item,
			"IsNew":     item.ID == uuid.Nil,
			"Platforms": engine.SocialPlatforms,
			"Error":     errMsg,
		},
	})
}

// SocialSave creates or updates a social link.
func (a *Admin) SocialSave(w http.ResponseWriter, r *http.Request) {
	item := &models.SocialLink{}
	if !loadItem(w, r, &item, a.stores.Navigation.FindSocialLink) {
		return
	}
	item.Platform = formValue(r, "platform")
	item.URL = formValue(r, "url")
	item.SortOrder = formInt(r, "sort_order", 0)
	item.IsActive = formBool(r, "is_active")

	errMsg := ""
	switch {
	case !slices.Contains(engine.SocialPlatforms, item.Platform):
		errMsg = "Choose one of the listed platforms."
	case item.URL == "":
		errMsg = "URL is required."
	default:
		errMsg = validateLink("URL", item.URL)
	}
	if errMsg != "" {
		a.renderSocialForm(w, r, http.StatusUnprocessableEntity, item, errMsg)
		return
	}

	if err := a.stores.Navigation.SaveSocialLink(r.Context(), item); err != nil {
		slog.Error("save social link failed", "error", err)
		a.renderSocialForm(w, r, http.StatusUnprocessableEntity, item, "Failed to save the link.")
		return
	}
	a.contentChanged(r.Context(), "social")
	a.redirect(w, r, "/admin/site/social", "Social link saved.")
}

// SocialDelete removes a social link.
func (a *Admin) SocialDelete(w http.ResponseWriter, r *http.Request) {
	a.deleteSiteRow(w, r, "social_links", "/admin/site/social")
}

// --- Shared helpers ---

// loadItem replaces *item with the row named by the "id" URL parameter.
// On "new" routes *item is left as given. It writes 400, 404 or 500 and
// returns false when the row cannot be loaded.
func loadItem[T any](w http.ResponseWriter, r *http.Request, item **T, find func(ctx context.Context, id uuid.UUID) (*T, error)) bool {
	id, ok := optionalID(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return false
	}
	if id == uuid.Nil {
		return true
	}
	found, err := find(r.Context(), id)
	if err != nil {
		slog.Error("load item failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return false
	}
	if found == nil {
		http.NotFound(w, r)
		return false
	}
	*item = found
	return true
}

// deleteSiteRow removes the row named by the "id" URL parameter from a
// site content table and redirects to back. It reports whether the row
// was deleted.
func (a *Admin) deleteSiteRow(w http.ResponseWriter, r *http.Request, table, back string) bool {
	id, ok := urlID(w, r, "id")
	if !ok {
		return false
	}
	if err := a.stores.Site.Delete(r.Context(), table, id); err != nil {
		slog.Error("delete site content failed", "error", err, "table", table)
		a.flash(w, r, "error", "Failed to delete the item.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return false
	}
	a.contentChanged(r.Context(), table)
	a.redirect(w, r, back, "Item deleted.")
	return true
}
