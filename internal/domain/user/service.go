package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"taskflow-server/internal/domain"
	"taskflow-server/internal/domain/fault"
	"taskflow-server/internal/infrastructure/cache"
	"taskflow-server/internal/infrastructure/events"
	"taskflow-server/internal/infrastructure/logclient"
	"taskflow-server/internal/infrastructure/token"
	"taskflow-server/internal/utils/reqctx"
)

// CreateInput is the auth.create payload.
type CreateInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput is the auth.login payload.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StatusReply is the minimal success reply.
type StatusReply struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SessionReply carries a signed token next to the authenticated user. It is
// the reply shape of auth.login and auth.verify-token.
type SessionReply struct {
	Status string `json:"status"`
	Token  string `json:"token"`
	User   Public `json:"user"`
}

// ListReply is the users.findAll reply.
type ListReply struct {
	Status string   `json:"status"`
	Users  []Public `json:"users"`
}

// GetReply is the users.findById reply.
type GetReply struct {
	Status string `json:"status"`
	User   Public `json:"user"`
}

// Service implements the auth/users command handlers.
type Service struct {
	repo      Repository
	tokens    *token.Manager
	store     *cache.Store
	publisher events.Publisher
	audit     *logclient.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
}

// NewService constructs a Service with required dependencies.
func NewService(repo Repository, tokens *token.Manager, store *cache.Store, publisher events.Publisher, audit *logclient.Client, cacheTTL time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		tokens:    tokens,
		store:     store,
		publisher: publisher,
		audit:     audit,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Create registers a new inactive account and publishes user.register so the
// notification service can deliver the activation mail.
func (s *Service) Create(ctx context.Context, in CreateInput) (*StatusReply, error) {
	existing, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fault.Unknown(err, "Internal Server Error")
	}
	if existing != nil {
		err := fault.Validation("User already exists")
		s.audit.Error(ctx, in.Email, "auth.create", err)
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fault.Unknown(err, "Internal Server Error")
	}

	verifyToken, err := randomToken()
	if err != nil {
		return nil, fault.Unknown(err, "Internal Server Error")
	}

	created, err := s.repo.Create(ctx, &User{
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Active:       false,
		VerifyToken:  verifyToken,
	})
	if err != nil {
		return nil, fault.Unknown(err, "Internal Server Error")
	}

	s.store.Invalidate(ctx, "users")

	// Mutation committed; fan out the registration event.
	s.publisher.Publish(ctx, events.TopicUserRegister, events.UserRegistered{
		Email: created.Email,
		Token: verifyToken,
	})

	s.audit.Info(ctx, created.ID, "auth.create", "Create user successfully", map[string]any{
		"userId": created.ID,
		"email":  created.Email,
		"role":   created.Role,
	})

	return &StatusReply{Status: "success", Message: "Create user successfully"}, nil
}

// Login checks credentials and issues a session token. Unknown email and
// wrong password yield the same message so callers cannot probe accounts.
func (s *Service) Login(ctx context.Context, in LoginInput) (*SessionReply, error) {
	u, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fault.Unknown(err, "Internal Server Error")
	}
	if u == nil {
		err := fault.Validation("Email or password incorrect")
		s.audit.Error(ctx, in.Email, "auth.login", err)
		return nil, err
	}
	if !u.Active {
		err := fault.Unauthorized("The account is not active")
		s.audit.Error(ctx, u.ID, "auth.login", err)
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		err := fault.Validation("Email or password incorrect")
		s.audit.Error(ctx, u.ID, "auth.login", err)
		return nil, err
	}

	signed, err := s.tokens.Sign(domain.Principal{ID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return nil, fault.Unknown(err, "Internal Server Error")
	}

	s.audit.Info(ctx, u.ID, "auth.login", "Login successfully", map[string]any{
		"userId": u.ID,
		"email":  u.Email,
		"role":   u.Role,
	})

	return &SessionReply{Status: "success", Token: signed, User: u.Public()}, nil
}

// VerifyToken validates a session token and rotates it, implementing the
// sliding session: every successful verification yields a fresh token.
func (s *Service) VerifyToken(ctx context.Context, raw string) (*SessionReply, error) {
	p, err := s.tokens.Verify(raw)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, fault.Unauthorized("Token expired")
		}
		return nil, fault.Unauthorized("Unauthorized")
	}

	renewed, err := s.tokens.Sign(p)
	if err != nil {
		return nil, fault.Unknown(err, "Internal Server Error")
	}

	return &SessionReply{
		Status: "success",
		Token:  renewed,
		User:   Public{ID: p.ID, Email: p.Email, Role: p.Role},
	}, nil
}

// VerifyAccount activates the account matching an activation token and
// invalidates every cached user listing.
func (s *Service) VerifyAccount(ctx context.Context, verifyToken string) (*StatusReply, error) {
	u, err := s.repo.FindInactiveByToken(ctx, verifyToken)
	if err != nil {
		return nil, fault.Unknown(err, "Internal Server Error")
	}
	if u == nil {
		err := fault.NotFound("User already active")
		s.audit.Error(ctx, verifyToken, "auth.verify-account", err)
		return nil, err
	}

	if err := s.repo.Activate(ctx, u.ID); err != nil {
		return nil, fault.Unknown(err, "Internal Server Error")
	}

	s.store.Invalidate(ctx, "users")

	s.audit.Info(ctx, u.ID, "auth.verify-account", "Account verified", map[string]any{
		"userId": u.ID,
	})

	return &StatusReply{Status: "success", Message: "Account verified"}, nil
}

// FindAll lists users through the cache-aside store. The key incorporates
// the pagination window so distinct pages never collide.
func (s *Service) FindAll(ctx context.Context, limit, page int) (*ListReply, error) {
	key := cache.Key("users")
	if limit > 0 {
		key = cache.Key("users", fmt.Sprintf("limit=%d", limit), fmt.Sprintf("page=%d", page))
	}

	reply, hit, err := cache.GetOrCompute(ctx, s.store, key, s.cacheTTL, func(ctx context.Context) (*ListReply, error) {
		us, err := s.repo.FindAll(ctx, limit, page)
		if err != nil {
			return nil, fault.Unknown(err, "Internal Server Error")
		}
		list := make([]Public, 0, len(us))
		for _, u := range us {
			list = append(list, u.Public())
		}
		return &ListReply{Status: "success", Users: list}, nil
	})
	if err != nil {
		return nil, err
	}

	msg := "Users find all successfully"
	if hit {
		msg += " (cache)"
	}
	s.audit.Info(ctx, reqctx.CallerID(ctx), "users.findAll", msg, map[string]any{
		"count": len(reply.Users),
		"limit": limit,
		"page":  page,
	})

	return reply, nil
}

// FindByID returns one user or a not-found fault.
func (s *Service) FindByID(ctx context.Context, id string) (*GetReply, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fault.Unknown(err, "Internal Server Error")
	}
	if u == nil {
		return nil, fault.NotFound("User not found")
	}
	return &GetReply{Status: "success", User: u.Public()}, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
