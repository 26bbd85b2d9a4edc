// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"hirexfed/internal/middleware"
	"hirexfed/internal/models"
	"hirexfed/internal/render"
	"hirexfed/internal/session"
	"hirexfed/internal/store"
)

const (
	// totpIssuer labels the account in authenticator apps.
	totpIssuer = "HireXFed"

	loginPath     = "/admin/login"
	setupPath     = "/admin/2fa/setup"
	verifyPath    = "/admin/2fa/verify"
	dashboardPath = "/admin/dashboard"

	badCodeMsg = "Invalid code. Please try again."
)

// totpOpts accepts the previous and next 30 second step to absorb clock
// drift on the staff member's phone.
var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// Auth handles staff sign-in: password, then TOTP enrolment or
// verification, then sign-out.
type Auth struct {
	renderer *render.Renderer
	sessions *session.Store
	users    *store.UserStore
}

func NewAuth(renderer *render.Renderer, sessions *session.Store, users *store.UserStore) *Auth {
	return &Auth{renderer: renderer, sessions: sessions, users: users}
}

// LoginPage shows the sign-in form. Fully verified staff go straight to
// the dashboard; a half-finished sign-in may start over.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil && sess.TwoFADone {
		http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
		return
	}
	a.renderer.Page(w, r, "login", &render.PageData{Title: "Sign In"})
}

// LoginSubmit checks the password and opens a session that still needs
// the second factor.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))

	user, err := a.users.FindByEmail(r.Context(), email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		a.loginError(w, r, http.StatusInternalServerError, email, "An unexpected error occurred.")
		return
	}
	if user == nil || !a.users.CheckPassword(user, r.FormValue("password")) {
		slog.Warn("login failed", "email", email, "ip", middleware.ClientIP(r))
		a.loginError(w, r, http.StatusUnauthorized, email, "Invalid email or password.")
		return
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
	})
	if err != nil {
		internalError(w, "session create failed", err)
		return
	}

	next := verifyPath
	if user.Needs2FASetup() {
		next = setupPath
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (a *Auth) loginError(w http.ResponseWriter, r *http.Request, status int, email, msg string) {
	a.renderer.PageStatus(w, r, status, "login", &render.PageData{
		Title: "Sign In",
		Data:  map[string]any{"Error": msg, "Email": email},
	})
}

// TwoFASetupPage shows the QR code for enrolment. A secret that was issued
// but never confirmed is shown again so a reload does not invalidate a
// code the staff member already scanned.
func (a *Auth) TwoFASetupPage(w http.ResponseWriter, r *http.Request) {
	user, ok := a.sessionUser(w, r)
	if !ok {
		return
	}
	if user.TOTPEnabled {
		http.Redirect(w, r, verifyPath, http.StatusSeeOther)
		return
	}

	secret := ""
	if user.TOTPSecret != nil {
		secret = *user.TOTPSecret
	} else {
		key, err := totp.Generate(totp.GenerateOpts{Issuer: totpIssuer, AccountName: user.Email})
		if err != nil {
			internalError(w, "totp generate failed", err)
			return
		}
		secret = key.Secret()
		if err := a.users.SetTOTPSecret(r.Context(), user.ID, secret); err != nil {
			internalError(w, "save totp secret failed", err)
			return
		}
	}
	a.renderSetup(w, r, http.StatusOK, user.Email, secret, "")
}

func (a *Auth) renderSetup(w http.ResponseWriter, r *http.Request, status int, email, secret, errMsg string) {
	qr, err := qrBase64(otpURL(email, secret))
	if err != nil {
		internalError(w, "qr code generation failed", err)
		return
	}
	data := map[string]any{"QRCode": qr, "Secret": secret}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	a.renderer.PageStatus(w, r, status, "2fa_setup", &render.PageData{
		Title: "Set Up Two-Factor Authentication",
		Data:  data,
	})
}

// TwoFAVerifyPage shows the code form to enrolled staff.
func (a *Auth) TwoFAVerifyPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) == nil {
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
		return
	}
	a.renderer.Page(w, r, "2fa_verify", &render.PageData{Title: "Two-Factor Authentication"})
}

// TwoFAVerifySubmit checks a TOTP code. The first valid code confirms
// enrolment; every valid code completes the session.
func (a *Auth) TwoFAVerifySubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	user, ok := a.sessionUser(w, r)
	if !ok {
		return
	}
	if user.TOTPSecret == nil {
		http.Redirect(w, r, setupPath, http.StatusSeeOther)
		return
	}

	code := strings.TrimSpace(r.FormValue("code"))
	valid, _ := totp.ValidateCustom(code, *user.TOTPSecret, time.Now().UTC(), totpOpts)
	if !valid {
		slog.Warn("invalid 2fa code", "email", user.Email, "ip", middleware.ClientIP(r))
		if !user.TOTPEnabled {
			a.renderSetup(w, r, http.StatusUnauthorized, user.Email, *user.TOTPSecret, badCodeMsg)
			return
		}
		a.renderer.PageStatus(w, r, http.StatusUnauthorized, "2fa_verify", &render.PageData{
			Title: "Two-Factor Authentication",
			Data:  map[string]any{"Error": badCodeMsg},
		})
		return
	}

	if !user.TOTPEnabled {
		if err := a.users.EnableTOTP(r.Context(), user.ID); err != nil {
			internalError(w, "enable totp failed", err)
			return
		}
		slog.Info("2fa enrolled", "email", user.Email)
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		internalError(w, "session update failed", err)
		return
	}
	http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
}

// Logout ends the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

// sessionUser loads the account behind the request's session. It writes
// the response itself and reports false when there is nothing to load.
func (a *Auth) sessionUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
		return nil, false
	}
	user, err := a.users.FindByID(r.Context(), sess.UserID)
	if err != nil {
		internalError(w, "session user lookup failed", err)
		return nil, false
	}
	if user == nil {
		// Account deleted while signed in.
		a.Logout(w, r)
		return nil, false
	}
	return user, true
}

func internalError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// otpURL builds the otpauth:// provisioning URL for secret.
func otpURL(email, secret string) string {
	q := url.Values{}
	q.Set("secret", secret)
	q.Set("issuer", totpIssuer)
	return "otpauth://totp/" + url.PathEscape(totpIssuer+":"+email) + "?" + q.Encode()
}

// qrBase64 encodes content as a base64 PNG QR code.
func qrBase64(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
