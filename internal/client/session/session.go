// Package session holds who is signed in on a client. The storefront keeps
// only its bearer token on disk and refetches the profile on restore; the
// back office keeps both token and profile and trusts them until the API
// says otherwise.
package session

import (
	"context"
	"errors"
	"sync"

	"kicks/internal/client/apiclient"
	"kicks/internal/client/clientstore"
	"kicks/internal/domain"
)

var ErrIncompleteLogin = errors.New("session: login response had no profile")

// Storefront is a shopper session.
type Storefront struct {
	API *apiclient.Client

	store clientstore.Store
	mu    sync.Mutex
	token string
	user  *domain.User
}

// NewStorefront wires a client whose 401 policy logs this session out and
// then calls onUnauthorized, if set.
func NewStorefront(baseURL string, store clientstore.Store, onUnauthorized func()) *Storefront {
	s := &Storefront{store: store}
	s.API = apiclient.New(baseURL, &apiclient.Policy{Teardown: s.Logout, OnUnauthorized: onUnauthorized})
	return s
}

// Restore loads the saved token and refetches the profile. Any failure
// leaves the session fully logged out.
func (s *Storefront) Restore(ctx context.Context) error {
	tok, err := s.store.Get(clientstore.KeyToken)
	if err != nil || tok == "" {
		s.Logout()
		return nil
	}
	u, err := s.API.Profile(ctx, apiclient.Credentials{Token: tok})
	if err != nil || u == nil {
		s.Logout()
		return err
	}
	s.set(tok, u)
	return nil
}

func (s *Storefront) Login(ctx context.Context, email, password string) (*domain.User, error) {
	res, err := s.API.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.adopt(res)
}

// VerifyOTP completes registration; the server signs the shopper in.
func (s *Storefront) VerifyOTP(ctx context.Context, email, code string) (*domain.User, error) {
	res, err := s.API.VerifyOTP(ctx, email, code)
	if err != nil {
		return nil, err
	}
	return s.adopt(res)
}

// Refresh refetches the profile, e.g. after adding an address.
func (s *Storefront) Refresh(ctx context.Context) (*domain.User, error) {
	u, err := s.API.Profile(ctx, s.Credentials())
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
	return u, nil
}

func (s *Storefront) adopt(res apiclient.AuthResult) (*domain.User, error) {
	if res.User == nil {
		return nil, ErrIncompleteLogin
	}
	if err := s.store.Set(clientstore.KeyToken, res.Token); err != nil {
		return nil, err
	}
	s.set(res.Token, res.User)
	return res.User, nil
}

func (s *Storefront) set(tok string, u *domain.User) {
	s.mu.Lock()
	s.token, s.user = tok, u
	s.mu.Unlock()
}

// Logout clears token and profile together.
func (s *Storefront) Logout() {
	_ = s.store.Delete(clientstore.KeyToken)
	s.set("", nil)
}

func (s *Storefront) Credentials() apiclient.Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return apiclient.Credentials{Token: s.token}
}

func (s *Storefront) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Storefront) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != "" && s.user != nil
}

// Admin is a back-office session.
type Admin struct {
	API *apiclient.Client

	store clientstore.Store
	mu    sync.Mutex
	token string
	admin *domain.Admin
}

func NewAdmin(baseURL string, store clientstore.Store, onUnauthorized func()) *Admin {
	s := &Admin{store: store}
	s.API = apiclient.New(baseURL, &apiclient.Policy{Teardown: s.Logout, OnUnauthorized: onUnauthorized})
	return s
}

// Restore reads token and profile from storage without calling the API. A
// half-present or unreadable pair is cleared.
func (s *Admin) Restore() bool {
	tok, err := s.store.Get(clientstore.KeyAdminToken)
	var a domain.Admin
	if err != nil || tok == "" || clientstore.GetJSON(s.store, clientstore.KeyAdminInfo, &a) != nil || a.ID == "" {
		s.Logout()
		return false
	}
	s.set(tok, &a)
	return true
}

func (s *Admin) Login(ctx context.Context, email, password string) (*domain.Admin, error) {
	res, err := s.API.AdminLogin(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.adopt(res)
}

func (s *Admin) Register(ctx context.Context, in apiclient.AdminSignup) (*domain.Admin, error) {
	res, err := s.API.AdminRegister(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.adopt(res)
}

func (s *Admin) adopt(res apiclient.AdminAuth) (*domain.Admin, error) {
	if res.Admin == nil {
		return nil, ErrIncompleteLogin
	}
	if err := s.store.Set(clientstore.KeyAdminToken, res.Token); err != nil {
		return nil, err
	}
	if err := clientstore.SetJSON(s.store, clientstore.KeyAdminInfo, res.Admin); err != nil {
		return nil, err
	}
	s.set(res.Token, res.Admin)
	return res.Admin, nil
}

func (s *Admin) set(tok string, a *domain.Admin) {
	s.mu.Lock()
	s.token, s.admin = tok, a
	s.mu.Unlock()
}

func (s *Admin) Logout() {
	_ = s.store.Delete(clientstore.KeyAdminToken)
	_ = s.store.Delete(clientstore.KeyAdminInfo)
	s.set("", nil)
}

func (s *Admin) Credentials() apiclient.Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return apiclient.Credentials{Token: s.token}
}

func (s *Admin) Profile() *domain.Admin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admin
}

func (s *Admin) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != "" && s.admin != nil
}
